package days

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/easydiary/internal/cli"
	"github.com/julianstephens/easydiary/internal/diary"
	"github.com/julianstephens/easydiary/internal/storage"
)

type ShowCmd struct {
	Date string `arg:"" optional:"" default:"today" help:"Day to show (YYYY-MM-DD, today, yesterday)."`
	JSON bool   `help:"Print the day as JSON."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDate(c.Date, time.Now())
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
	details, err := repo.Day(ctx.Context(), date).Await(ctx.Context())
	if errors.Is(err, storage.ErrNotFound) {
		if c.JSON {
			ctx.Println("null")
			return nil
		}
		ctx.Printf("No entry for %s.\n", date)
		return nil
	}
	if err != nil {
		return err
	}

	if c.JSON {
		return cli.PrintJSON(ctx, details)
	}
	printDay(ctx, categories, details)
	return nil
}

type DeleteCmd struct {
	Date string `arg:"" help:"Day to delete (YYYY-MM-DD, today, yesterday)."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
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
	if session.State() != diary.Viewing {
		return fmt.Errorf("no entry for %s: %w", date, storage.ErrNotFound)
	}

	confirmed, err := ctx.Confirm(fmt.Sprintf("Delete %s and everything logged on it?", date), "Delete", "Keep", c.Yes)
	if err != nil {
		return err
	}
	if !confirmed {
		ctx.Println("Delete cancelled.")
		return nil
	}

	if err := session.Delete(ctx.Context()); err != nil {
		return err
	}
	ctx.Printf("%s Deleted %s\n", ctx.Styles().Success.Render("✓"), date)
	return nil
}
