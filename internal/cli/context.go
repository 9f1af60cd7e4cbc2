package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/julianstephens/easydiary/internal/backup"
	"github.com/julianstephens/easydiary/internal/config"
	"github.com/julianstephens/easydiary/internal/diary"
	"github.com/julianstephens/easydiary/internal/live"
	"github.com/julianstephens/easydiary/internal/logger"
	"github.com/julianstephens/easydiary/internal/settings"
	"github.com/julianstephens/easydiary/internal/storage/sqlite"
	"github.com/julianstephens/easydiary/internal/worker"
)

// Context is handed to every command. The store is opened lazily so that
// commands which never touch the diary do not create or migrate it.
type Context struct {
	Config   *config.Config
	Bus      *live.Bus
	Pool     *worker.Pool
	Settings *settings.Store
	Backups  *backup.Manager

	Out io.Writer
	// Interactive reports whether prompts may be shown
	Interactive bool

	base context.Context

	mu     sync.Mutex
	handle *sqlite.Handle
	repo   *diary.Repository
}

// NewContext wires the shared services for cfg. base is cancelled on
// interrupt and bounds every command.
func NewContext(base context.Context, cfg *config.Config) *Context {
	bus := live.NewBus()
	pool := worker.New(cfg.Workers.Size)

	c := &Context{
		Config:      cfg,
		Bus:         bus,
		Pool:        pool,
		Settings:    settings.NewStore(cfg.Settings.Path, bus, pool),
		Backups:     backup.NewManager(cfg.Database.Path, cfg.Backup.MaxBackups),
		Out:         os.Stdout,
		Interactive: isTerminal(os.Stdin),
		base:        base,
	}
	c.handle = sqlite.NewHandle(cfg.Database.Path, false, c.StoreOptions(nil))
	return c
}

// Context returns the command-scoped context
func (c *Context) Context() context.Context {
	if c.base == nil {
		return context.Background()
	}
	return c.base
}

// StoreOptions builds the options every store of this process is opened with
func (c *Context) StoreOptions(migrationLog func(string)) sqlite.Options {
	opts := sqlite.Options{
		Bus:          c.Bus,
		MigrationLog: migrationLog,
	}
	if c.Config.Backup.BeforeMigration {
		opts.BeforeMigrate = c.Backups.BeforeMigrate
	}
	return opts
}

// Reopen closes the current store and arranges the next Store call to open
// the file again, creating it when create is set
func (c *Context) Reopen(create bool, migrationLog func(string)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.handle.Close()
	c.handle = sqlite.NewHandle(c.Config.Database.Path, create, c.StoreOptions(migrationLog))
	c.repo = nil
	return err
}

// Store returns the shared store, opening it on first use
func (c *Context) Store() (*sqlite.Store, error) {
	c.mu.Lock()
	h := c.handle
	c.mu.Unlock()
	return h.Store(c.Context())
}

// Repository returns the diary facade over the shared store
func (c *Context) Repository() (*diary.Repository, error) {
	store, err := c.Store()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.repo == nil {
		c.repo = diary.New(store, c.Pool)
	}
	return c.repo, nil
}

// Styles returns the output styles for the stored theme
func (c *Context) Styles() Styles {
	st, err := c.Settings.Load()
	if err != nil {
		logger.Warn("failed to load settings", "error", err)
		st = settings.Defaults()
	}
	return NewStyles(st.Theme)
}

// Close releases the store, the pool and the bus
func (c *Context) Close(ctx context.Context) error {
	c.mu.Lock()
	err := c.handle.Close()
	c.repo = nil
	c.mu.Unlock()

	if poolErr := c.Pool.Close(ctx); poolErr != nil && err == nil {
		err = poolErr
	}
	c.Bus.Close()
	return err
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// PrintJSON writes v as indented JSON
func PrintJSON(c *Context, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	c.Println(string(data))
	return nil
}
