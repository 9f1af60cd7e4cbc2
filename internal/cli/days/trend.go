package days

import (
	"fmt"
	"time"

	"github.com/julianstephens/easydiary/internal/cli"
	"github.com/julianstephens/easydiary/internal/constants"
	"github.com/julianstephens/easydiary/internal/stats"
)

const barWidth = 30

// TrendCmd prints the mood curve, duration totals and category counts
type TrendCmd struct {
	RangeFlags `embed:""`

	Category string `help:"Only this duration category (name or id)."`
	JSON     bool   `help:"Print the report as JSON."`
}

func (c *TrendCmd) options(ctx *cli.Context) (stats.Options, error) {
	f, err := c.filter(time.Now())
	if err != nil {
		return stats.Options{}, err
	}
	opts := stats.Options{Filter: f}
	if c.Category == "" {
		return opts, nil
	}

	repo, err := ctx.Repository()
	if err != nil {
		return opts, err
	}
	categories, err := repo.Categories(ctx.Context()).Await(ctx.Context())
	if err != nil {
		return opts, err
	}
	cat, err := cli.ResolveCategory(categories, c.Category)
	if err != nil {
		return opts, err
	}
	opts.CategoryID = cat.ID
	return opts, nil
}

func (c *TrendCmd) Run(ctx *cli.Context) error {
	opts, err := c.options(ctx)
	if err != nil {
		return err
	}
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	report, err := repo.Trend(ctx.Context(), opts).Await(ctx.Context())
	if err != nil {
		return err
	}

	if c.JSON {
		return cli.PrintJSON(ctx, report)
	}
	printReport(ctx, report)
	return nil
}

func printReport(ctx *cli.Context, report stats.Report) {
	styles := ctx.Styles()

	ctx.Println(styles.Title.Render("Mood"))
	if len(report.Mood) == 0 {
		ctx.Println(styles.Muted.Render("  no days recorded"))
	}
	for _, p := range report.Mood {
		ctx.Printf("  %s  %s\n", p.Date, styles.Bar(float64(p.Mood+1), constants.MaxMood+1, barWidth/3))
	}
	if len(report.Mood) > 0 {
		ctx.Printf("  average %.2f over %d day(s)\n", report.AverageMood, len(report.Mood))
	}

	for _, series := range report.Durations {
		ctx.Println()
		ctx.Println(styles.Title.Render(fmt.Sprintf("%s hours", series.Category.Name)))
		max := 0.0
		for _, p := range series.Points {
			if p.Hours > max {
				max = p.Hours
			}
		}
		for _, p := range series.Points {
			ctx.Printf("  %s  %-*s %s\n", p.Date, barWidth, styles.Bar(p.Hours, max, barWidth), formatHours(p.Hours))
		}
		ctx.Printf("  total %s\n", formatHours(series.Total))
	}

	ctx.Println()
	ctx.Println(styles.Title.Render("Days logged per category"))
	for _, count := range report.Counts {
		ctx.Printf("  %-12s %d\n", count.Category.Name, count.Items)
	}
}
