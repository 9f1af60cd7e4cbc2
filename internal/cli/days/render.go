package days

import (
	"fmt"
	"strings"

	"github.com/julianstephens/easydiary/internal/cli"
	"github.com/julianstephens/easydiary/internal/models"
)

func categoryNames(categories []models.LogCategory) map[int64]string {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

func printDay(ctx *cli.Context, categories []models.LogCategory, d models.DayEntryWithDetails) {
	styles := ctx.Styles()
	names := categoryNames(categories)

	ctx.Printf("%s  %s\n", styles.Title.Render(d.Entry.Date), styles.Mood(d.Entry.MoodScore))

	if lines := d.Entry.PlanLines(); len(lines) > 0 {
		ctx.Println()
		ctx.Println(styles.Label.Render("Plan for tomorrow"))
		for _, line := range lines {
			ctx.Printf("  - %s\n", line)
		}
	}

	for _, item := range d.LogItems {
		ctx.Println()
		header := names[item.LogItem.LogTypeID]
		if header == "" {
			header = fmt.Sprintf("category %d", item.LogItem.LogTypeID)
		}
		var extras []string
		if item.LogItem.Duration != nil {
			extras = append(extras, formatHours(*item.LogItem.Duration))
		}
		if item.LogItem.MediaPath != nil {
			extras = append(extras, *item.LogItem.MediaPath)
		}
		if len(extras) > 0 {
			header += " " + styles.Muted.Render("("+strings.Join(extras, ", ")+")")
		}
		ctx.Println(styles.Label.Render(header))
		for _, text := range item.Contents() {
			ctx.Printf("  %s\n", text)
		}
	}
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.2fh", h)
}
