package system

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/easydiary/internal/cli"
	"github.com/julianstephens/easydiary/internal/logger"
)

// ErrChecksFailed is returned when at least one non-warning check fails
var ErrChecksFailed = errors.New("health checks failed")

type DoctorCmd struct{}

func (c *DoctorCmd) Run(ctx *cli.Context) error {
	styles := ctx.Styles()
	ctx.Println("Running diagnostics...")
	ctx.Println()

	pass := func(name string) {
		ctx.Printf("%s %s: OK\n", styles.Success.Render("✓"), name)
	}
	fail := func(name string, err error) {
		ctx.Printf("%s %s: FAIL\n", styles.Danger.Render("❌"), name)
		ctx.Printf("   Error: %v\n", err)
	}

	hasError := false

	store, err := ctx.Store()
	if err != nil {
		fail("Database reachable", err)
		ctx.Printf("%s Remaining database checks: SKIPPED (database not reachable)\n", styles.Muted.Render("⊘"))
		hasError = true
	} else {
		ctx.Printf("%s %s\n", styles.Label.Render("Database:"), store.Path())
		if f := logger.File(); f != "" {
			ctx.Printf("%s %s\n", styles.Label.Render("Log file:"), f)
		}
		for _, check := range store.Doctor(ctx.Context()) {
			if check.Err != nil {
				fail(check.Name, check.Err)
				hasError = true
				continue
			}
			pass(check.Name)
		}
	}

	// warning only
	if err := checkBackupsPresent(ctx); err != nil {
		ctx.Printf("%s Backups present: WARNING\n", styles.Warning.Render("⚠"))
		ctx.Printf("   %v\n", err)
	} else {
		pass("Backups present")
	}

	if err := checkSettings(ctx); err != nil {
		fail("Settings readable", err)
		hasError = true
	} else {
		pass("Settings readable")
	}

	if err := checkClock(); err != nil {
		fail("Clock/timezone", err)
		hasError = true
	} else {
		pass("Clock/timezone")
	}

	ctx.Println()
	if hasError {
		return ErrChecksFailed
	}
	ctx.Println(styles.Success.Render("All checks passed."))
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	backups, err := ctx.Backups.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s, run 'easydiary backup create'", ctx.Backups.Dir())
	}
	if age := time.Since(backups[0].Timestamp); age > 30*24*time.Hour {
		return fmt.Errorf("newest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	if _, err := os.Stat(ctx.Settings.Path()); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	_, err := ctx.Settings.Load()
	return err
}

func checkClock() error {
	now := time.Now()
	if now.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if now.Location() == nil {
		return fmt.Errorf("no local timezone")
	}
	return nil
}
