package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/easydiary/internal/cli"
)

type InitCmd struct {
	Force bool `help:"Delete an existing database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	dbPath := ctx.Config.Database.Path

	if c.Force {
		if err := ctx.Reopen(true, nil); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if _, err := os.Stat(dbPath); err == nil {
			for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
				if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("failed to delete existing database: %w", err)
				}
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	} else if err := ctx.Reopen(true, nil); err != nil {
		return err
	}

	store, err := ctx.Store()
	if err != nil {
		return err
	}
	categories, err := store.ListLogCategories(ctx.Context())
	if err != nil {
		return err
	}

	styles := ctx.Styles()
	ctx.Printf("%s %s\n", styles.Success.Render("✓"), fmt.Sprintf("Initialized easydiary storage at: %s", dbPath))
	ctx.Printf("  %d categories available\n", len(categories))
	return nil
}
