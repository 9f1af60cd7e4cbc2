package backups

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/easydiary/internal/cli"
)

type BackupCmd struct {
	Create  CreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
	List    ListCmd    `cmd:"" help:"List available backups."`
	Restore RestoreCmd `cmd:"" help:"Restore from a backup."`
}

type CreateCmd struct{}

func (c *CreateCmd) Run(ctx *cli.Context) error {
	// opening first brings the file to the current schema
	if _, err := ctx.Store(); err != nil {
		return err
	}

	backupPath, err := ctx.Backups.Create(ctx.Context())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Printf("%s Backup created: %s\n", ctx.Styles().Success.Render("✓"), filepath.Base(backupPath))
	return nil
}

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	backups, err := ctx.Backups.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	styles := ctx.Styles()
	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", ctx.Backups.Dir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), ctx.Config.Backup.MaxBackups)
	for _, b := range backups {
		ctx.Printf("  %s  %s  %s\n",
			b.Timestamp.Format("2006-01-02 15:04:05"),
			filepath.Base(b.Path),
			styles.Muted.Render(fmt.Sprintf("(%.1f KB)", float64(b.Size)/1024.0)))
	}
	ctx.Printf("\nBackup directory: %s\n", ctx.Backups.Dir())
	return nil
}

type RestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *RestoreCmd) Run(ctx *cli.Context) error {
	backupPath := c.BackupFile
	if !filepath.IsAbs(backupPath) {
		candidate := filepath.Join(ctx.Backups.Dir(), c.BackupFile)
		if _, err := os.Stat(candidate); err == nil {
			backupPath = candidate
		}
	}
	if _, err := os.Stat(backupPath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("backup file not found: %s", backupPath)
	}

	styles := ctx.Styles()
	if !c.Yes {
		ctx.Println(styles.Warning.Render("⚠️  WARNING: This will replace your current database with the backup."))
		ctx.Println("A backup of your current database will be created before restoring.")
	}
	confirmed, err := ctx.Confirm("Restore from "+filepath.Base(backupPath)+"?", "Restore", "Cancel", c.Yes)
	if err != nil {
		return err
	}
	if !confirmed {
		ctx.Println("Restore cancelled.")
		return nil
	}

	// the file is replaced underneath the store, so close it first
	if err := ctx.Reopen(false, nil); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	safety, err := ctx.Backups.Restore(ctx.Context(), backupPath)
	if safety != "" {
		ctx.Printf("Created backup of current database: %s\n", filepath.Base(safety))
	}
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	// reopening upgrades a restored legacy file
	if _, err := ctx.Store(); err != nil {
		return fmt.Errorf("restored database could not be opened: %w", err)
	}
	ctx.Printf("%s Database restored successfully!\n", styles.Success.Render("✓"))
	return nil
}
