package system

import (
	"fmt"

	"github.com/julianstephens/easydiary/internal/cli"
	"github.com/julianstephens/easydiary/internal/migration"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	// reopening routes the upgrade log of the next open to the terminal
	if err := ctx.Reopen(false, func(msg string) { ctx.Println(msg) }); err != nil {
		return err
	}

	store, err := ctx.Store()
	if err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	version, err := migration.Default(store.GetDB()).GetCurrentVersion(ctx.Context())
	if err != nil {
		return err
	}
	ctx.Printf("\nSchema version: %d\n", version)
	return nil
}
