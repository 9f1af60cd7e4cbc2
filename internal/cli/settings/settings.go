package settings

import (
	"github.com/julianstephens/easydiary/internal/cli"
	"github.com/julianstephens/easydiary/internal/settings"
)

type SettingsCmd struct {
	Show  ShowCmd  `cmd:"" help:"Show current settings." default:"1"`
	Theme ThemeCmd `cmd:"" help:"Set the color theme (system, light, dark)."`
	View  ViewCmd  `cmd:"" help:"Set the calendar view (month, week, three-day)."`
}

type ShowCmd struct {
	JSON bool `help:"Print the settings as JSON."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Settings.Load()
	if err != nil {
		return err
	}
	if c.JSON {
		return cli.PrintJSON(ctx, st)
	}

	styles := ctx.Styles()
	ctx.Println(styles.Title.Render("Current Settings:"))
	ctx.Printf("  Theme:          %s\n", st.Theme)
	ctx.Printf("  Calendar view:  %s\n", st.CalendarView)
	ctx.Printf("\n%s\n", styles.Muted.Render("Stored in "+ctx.Settings.Path()))
	return nil
}

type ThemeCmd struct {
	Value string `arg:"" help:"Theme name."`
}

func (c *ThemeCmd) Run(ctx *cli.Context) error {
	theme, err := settings.ParseTheme(c.Value)
	if err != nil {
		return err
	}
	if _, err := ctx.Settings.SetTheme(ctx.Context(), theme).Await(ctx.Context()); err != nil {
		return err
	}
	ctx.Printf("%s Theme set to %s\n", ctx.Styles().Success.Render("✓"), theme)
	return nil
}

type ViewCmd struct {
	Value string `arg:"" help:"Calendar view name."`
}

func (c *ViewCmd) Run(ctx *cli.Context) error {
	view, err := settings.ParseCalendarView(c.Value)
	if err != nil {
		return err
	}
	if _, err := ctx.Settings.SetCalendarView(ctx.Context(), view).Await(ctx.Context()); err != nil {
		return err
	}
	ctx.Printf("%s Calendar view set to %s\n", ctx.Styles().Success.Render("✓"), view)
	return nil
}
