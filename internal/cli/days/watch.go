package days

import (
	"time"

	"github.com/julianstephens/easydiary/internal/cli"
)

// WatchCmd follows one day, or the entry list, and reprints on every change
// until interrupted
type WatchCmd struct {
	Date string `arg:"" optional:"" help:"Day to follow; the entry list when omitted."`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	watchCtx := ctx.Context()

	if c.Date == "" {
		for snap := range repo.WatchAllEntries(watchCtx) {
			if snap.Err != nil {
				return snap.Err
			}
			ctx.Printf("%s  %d day(s) recorded\n", time.Now().Format(time.TimeOnly), len(snap.Value))
			for i, e := range snap.Value {
				if i == 5 {
					ctx.Println("  ...")
					break
				}
				ctx.Printf("  %s  %s\n", e.Date, ctx.Styles().Mood(e.MoodScore))
			}
		}
		return nil
	}

	date, err := cli.ParseDate(c.Date, time.Now())
	if err != nil {
		return err
	}
	categories, err := repo.Categories(watchCtx).Await(watchCtx)
	if err != nil {
		return err
	}
	for snap := range repo.WatchDay(watchCtx, date) {
		if snap.Err != nil {
			return snap.Err
		}
		ctx.Println(ctx.Styles().Muted.Render("-- " + time.Now().Format(time.TimeOnly)))
		if snap.Value == nil {
			ctx.Printf("No entry for %s.\n", date)
			continue
		}
		printDay(ctx, categories, *snap.Value)
	}
	return nil
}
