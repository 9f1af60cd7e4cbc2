package days

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/easydiary/internal/cli"
	"github.com/julianstephens/easydiary/internal/constants"
	"github.com/julianstephens/easydiary/internal/settings"
	"github.com/julianstephens/easydiary/internal/storage"
)

// RangeFlags are shared by the commands that read a span of days
type RangeFlags struct {
	Month string `help:"Only days of this month (YYYY-MM)."`
	From  string `help:"First day, inclusive (YYYY-MM-DD)."`
	To    string `help:"Last day, inclusive (YYYY-MM-DD)."`
	Limit uint64 `help:"Maximum number of rows."`
}

func (r RangeFlags) set() bool {
	return r.Month != "" || r.From != "" || r.To != ""
}

func (r RangeFlags) filter(now time.Time) (storage.EntryFilter, error) {
	f := storage.EntryFilter{Limit: r.Limit}
	var err error
	if r.Month != "" {
		if f.Month, err = cli.ParseMonth(r.Month); err != nil {
			return f, err
		}
	}
	if r.From != "" {
		if f.From, err = cli.ParseDate(r.From, now); err != nil {
			return f, err
		}
	}
	if r.To != "" {
		if f.To, err = cli.ParseDate(r.To, now); err != nil {
			return f, err
		}
	}
	return f, nil
}

// viewWindow maps the calendar view setting to the span shown by default
func viewWindow(view settings.CalendarView, now time.Time) storage.EntryFilter {
	switch view {
	case settings.ViewWeek:
		return storage.EntryFilter{From: now.AddDate(0, 0, -6).Format(constants.DateFormat), To: now.Format(constants.DateFormat)}
	case settings.ViewThreeDay:
		return storage.EntryFilter{From: now.AddDate(0, 0, -2).Format(constants.DateFormat), To: now.Format(constants.DateFormat)}
	default:
		return storage.EntryFilter{Month: now.Format(constants.MonthFormat)}
	}
}

// ListCmd lists day entries newest first. Without a range the calendar view
// setting decides the span.
type ListCmd struct {
	RangeFlags `embed:""`

	All  bool `help:"List every recorded day."`
	JSON bool `help:"Print the entries as JSON."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	now := time.Now()
	f, err := c.filter(now)
	if err != nil {
		return err
	}
	if !c.set() && !c.All {
		st, err := ctx.Settings.Load()
		if err != nil {
			return err
		}
		f = viewWindow(st.CalendarView, now)
		f.Limit = c.Limit
	}

	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	entries, err := repo.Entries(ctx.Context(), f).Await(ctx.Context())
	if err != nil {
		return err
	}

	if c.JSON {
		return cli.PrintJSON(ctx, entries)
	}
	if len(entries) == 0 {
		ctx.Println("No entries found.")
		return nil
	}

	styles := ctx.Styles()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Muted).
		Headers("DATE", "MOOD", "PLAN")
	for _, e := range entries {
		t.Row(e.Date, styles.Mood(e.MoodScore), strings.Join(e.PlanLines(), "; "))
	}
	ctx.Println(t.String())
	ctx.Printf("%d day(s)\n", len(entries))
	return nil
}

// QueryCmd lists log items with their texts, optionally for one category
type QueryCmd struct {
	RangeFlags `embed:""`

	Category string `arg:"" optional:"" help:"Category name or id."`
	JSON     bool   `help:"Print the items as JSON."`
}

func (c *QueryCmd) Run(ctx *cli.Context) error {
	f, err := c.filter(time.Now())
	if err != nil {
		return err
	}
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	categories, err := repo.Categories(ctx.Context()).Await(ctx.Context())
	if err != nil {
		return err
	}

	itemFilter := storage.ItemFilter{EntryFilter: f}
	if c.Category != "" {
		cat, err := cli.ResolveCategory(categories, c.Category)
		if err != nil {
			return err
		}
		itemFilter.CategoryID = cat.ID
	}

	items, err := repo.LogItems(ctx.Context(), itemFilter).Await(ctx.Context())
	if err != nil {
		return err
	}
	if c.JSON {
		return cli.PrintJSON(ctx, items)
	}
	if len(items) == 0 {
		ctx.Println("No log items found.")
		return nil
	}

	names := categoryNames(categories)
	styles := ctx.Styles()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Muted).
		Headers("DATE", "CATEGORY", "HOURS", "TEXT")
	for _, item := range items {
		hours := ""
		if item.LogItem.Duration != nil {
			hours = formatHours(*item.LogItem.Duration)
		}
		t.Row(item.LogItem.DiaryDate, names[item.LogItem.LogTypeID], hours, strings.Join(item.Contents(), "; "))
	}
	ctx.Println(t.String())
	ctx.Printf("%d item(s)\n", len(items))
	return nil
}
