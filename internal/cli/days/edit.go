package days

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/easydiary/internal/cli"
	"github.com/julianstephens/easydiary/internal/constants"
	"github.com/julianstephens/easydiary/internal/diary"
	"github.com/julianstephens/easydiary/internal/models"
)

// EditCmd opens the day in an interactive form
type EditCmd struct {
	Date string `arg:"" optional:"" default:"today" help:"Day to edit (YYYY-MM-DD, today, yesterday)."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	if !ctx.Interactive {
		return fmt.Errorf("%w, use 'easydiary save' instead", cli.ErrNotInteractive)
	}

	date, err := cli.ParseDate(c.Date, time.Now())
	if err != nil {
		return err
	}
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	session, err := repo.OpenSession(ctx.Context(), date)
	if err != nil {
		return err
	}
	if err := session.Edit(); err != nil {
		return err
	}

	form := newDayForm(session.Categories(), *session.Draft())
	styles := ctx.Styles()
	err = form.build(date).WithTheme(styles.FormTheme()).RunWithContext(ctx.Context())
	if errors.Is(err, huh.ErrUserAborted) {
		_ = session.Discard()
		ctx.Println(styles.Muted.Render("Discarded changes."))
		return nil
	}
	if err != nil {
		_ = session.Discard()
		return fmt.Errorf("interactive form error: %w", err)
	}

	if err := form.apply(session.Draft()); err != nil {
		_ = session.Discard()
		return err
	}
	if err := session.Save(ctx.Context()); err != nil {
		return err
	}

	ctx.Printf("%s Saved %s\n\n", styles.Success.Render("✓"), date)
	printDay(ctx, session.Categories(), *session.Details())
	return nil
}

type categoryFields struct {
	category models.LogCategory
	text     string
	duration string
	media    string
}

// dayForm holds the string values huh edits
type dayForm struct {
	mood   int
	plan   string
	fields []*categoryFields
}

func newDayForm(categories []models.LogCategory, draft diary.Draft) *dayForm {
	f := &dayForm{
		mood: int(draft.Mood),
		plan: strings.Join(models.NonBlank(draft.Plan), "\n"),
	}
	for _, c := range categories {
		in := draft.Logs[c.ID]
		cf := &categoryFields{
			category: c,
			text:     strings.Join(models.NonBlank(in.Texts), "\n"),
			media:    in.MediaPath,
		}
		if in.Duration > 0 {
			cf.duration = strconv.FormatFloat(in.Duration, 'f', -1, 64)
		}
		f.fields = append(f.fields, cf)
	}
	return f
}

func (f *dayForm) build(date string) *huh.Form {
	moods := make([]huh.Option[int], 0, constants.MaxMood-constants.MinMood+1)
	for m := constants.MinMood; m <= constants.MaxMood; m++ {
		moods = append(moods, huh.NewOption(fmt.Sprintf("%d  %s", m, models.Mood(m)), m))
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Mood on " + date).
				Options(moods...).
				Value(&f.mood),
			huh.NewText().
				Title("Plan for tomorrow").
				Description("One item per line.").
				Value(&f.plan),
		),
	}

	for _, cf := range f.fields {
		var fields []huh.Field
		if cf.category.HasText {
			fields = append(fields, huh.NewText().
				Title(cf.category.Name).
				Description("One entry per line.").
				Value(&cf.text))
		}
		if cf.category.HasDuration {
			fields = append(fields, huh.NewInput().
				Title(cf.category.Name+" hours").
				Placeholder("1.5 or 1h30m").
				Validate(validateHours).
				Value(&cf.duration))
		}
		if cf.category.HasMedia {
			fields = append(fields, huh.NewInput().
				Title(cf.category.Name+" media").
				Placeholder("path to a photo or recording").
				Value(&cf.media))
		}
		if len(fields) > 0 {
			groups = append(groups, huh.NewGroup(fields...))
		}
	}

	return huh.NewForm(groups...)
}

func validateHours(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	h, err := cli.ParseHours(s)
	if err != nil {
		return err
	}
	if h < 0 {
		return diary.ErrInvalidDuration
	}
	return nil
}

// apply copies the form values into the draft
func (f *dayForm) apply(draft *diary.Draft) error {
	draft.Mood = models.Mood(f.mood)
	draft.Plan = cli.SplitLines(f.plan)

	for _, cf := range f.fields {
		in := diary.CategoryInput{
			Texts:     cli.SplitLines(cf.text),
			MediaPath: strings.TrimSpace(cf.media),
		}
		if strings.TrimSpace(cf.duration) != "" {
			h, err := cli.ParseHours(cf.duration)
			if err != nil {
				return fmt.Errorf("%s: %w", cf.category.Name, err)
			}
			in.Duration = h
		}
		draft.Logs[cf.category.ID] = in
	}
	return nil
}
