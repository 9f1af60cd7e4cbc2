package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/easydiary/internal/cli"
	"github.com/julianstephens/easydiary/internal/cli/backups"
	"github.com/julianstephens/easydiary/internal/cli/categories"
	"github.com/julianstephens/easydiary/internal/cli/days"
	"github.com/julianstephens/easydiary/internal/cli/settings"
	"github.com/julianstephens/easydiary/internal/cli/system"
	"github.com/julianstephens/easydiary/internal/config"
	"github.com/julianstephens/easydiary/internal/constants"
	apperrors "github.com/julianstephens/easydiary/internal/errors"
	"github.com/julianstephens/easydiary/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path (defaults to EASYDIARY_CONFIG or ~/.config/easydiary/config.yaml)." type:"string"`
	DB      string `name:"db" help:"Database file path; overrides the config file." type:"string"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize easydiary storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Upgrade the database to the current schema."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`

	Save   days.SaveCmd   `cmd:"" help:"Save a day from flags."`
	Edit   days.EditCmd   `cmd:"" help:"Edit a day interactively."`
	Show   days.ShowCmd   `cmd:"" help:"Show a day." default:"withargs"`
	Delete days.DeleteCmd `cmd:"" help:"Delete a day and everything logged on it."`
	List   days.ListCmd   `cmd:"" help:"List recorded days."`
	Query  days.QueryCmd  `cmd:"" help:"List log items, optionally for one category."`
	Trend  days.TrendCmd  `cmd:"" help:"Show mood and duration trends."`
	Watch  days.WatchCmd  `cmd:"" help:"Follow a day or the entry list as it changes."`

	Category categories.CategoryCmd `cmd:"" help:"Manage log categories."`
	Settings settings.SettingsCmd   `cmd:"" help:"Manage display settings."`
	Backup   backups.BackupCmd      `cmd:"" help:"Manage database backups."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Personal diary: mood, plans and categorized daily logs"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.DB != "" {
		cfg.SetDatabasePath(CLI.DB)
	}
	if CLI.Debug {
		cfg.Log.Debug = true
	}

	if err := logger.Init(logger.Config{
		Debug: cfg.Log.Debug,
		Dir:   cfg.Log.Dir,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	base, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	appCtx := cli.NewContext(base, cfg)
	logger.Debug("starting", "command", kctx.Command(), "db", cfg.Database.Path)

	runErr := kctx.Run(appCtx)

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := appCtx.Close(shutdown); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	}
	cancel()
	stop()

	apperrors.Fatal(runErr)
}
