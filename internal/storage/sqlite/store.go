package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/easydiary/internal/live"
	"github.com/julianstephens/easydiary/internal/logger"
	"github.com/julianstephens/easydiary/internal/migration"
	"github.com/julianstephens/easydiary/internal/storage"
)

// Options configures how a Store opens its file
type Options struct {
	// Bus receives the tables touched by every committed write. A private bus
	// is created when nil.
	Bus *live.Bus
	// BeforeMigrate runs when an existing file needs an upgrade, before the
	// upgrade starts. An error aborts the open.
	BeforeMigrate func(ctx context.Context, path string) error
	// MigrationLog receives migration progress lines
	MigrationLog func(string)
}

// Store is the diary access layer over one SQLite file.
// Reads may run concurrently; writes are serialized through InTx.
type Store struct {
	reader

	path string
	db   *sql.DB
	bus  *live.Bus
	opts Options

	writeMu sync.Mutex
}

var _ storage.Provider = (*Store)(nil)

func NewStore(path string, opts Options) *Store {
	bus := opts.Bus
	if bus == nil {
		bus = live.NewBus()
	}
	return &Store{
		path: path,
		bus:  bus,
		opts: opts,
	}
}

// DSN builds the connection string used for every pooled connection
func DSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// Init creates the database file if needed and brings it to the latest schema
func (s *Store) Init(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return s.open(ctx)
}

// Load opens an existing database, upgrading it when it is behind
func (s *Store) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return storage.ErrNotInitialized
	}

	return s.open(ctx)
}

func (s *Store) open(ctx context.Context) error {
	db, err := sql.Open("sqlite", DSN(s.path))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := s.runMigrations(ctx, db); err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.reader = reader{q: db}
	logger.Info("store opened", "path", s.path)
	return nil
}

func (s *Store) runMigrations(ctx context.Context, db *sql.DB) error {
	runner := migration.Default(db)

	needsUpgrade, err := runner.NeedsUpgrade(ctx)
	if err != nil {
		return err
	}
	if needsUpgrade && s.opts.BeforeMigrate != nil {
		if err := s.opts.BeforeMigrate(ctx, s.path); err != nil {
			return fmt.Errorf("pre-migration hook failed: %w", err)
		}
	}

	logFn := s.opts.MigrationLog
	applied, err := runner.ApplyMigrations(ctx, func(msg string) {
		logger.Component("migration").Debug(msg)
		if logFn != nil {
			logFn(msg)
		}
	})
	if err != nil {
		return err
	}
	if applied > 0 {
		logger.Info("schema migrated", "applied", applied, "version", runner.GetLatestVersion())
	}

	return runner.ValidateVersion(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Path is the database file the store was opened on
func (s *Store) Path() string {
	return s.path
}

// GetDB returns the underlying database connection.
// Returns nil if the database has not been initialized or loaded.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// Bus returns the change bus writes are published to
func (s *Store) Bus() *live.Bus {
	return s.bus
}

// InTx runs fn inside one write transaction. Only one write transaction is
// in flight per store. On commit the tables fn touched are published.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	if s.db == nil {
		return storage.ErrNotInitialized
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	tx := &Tx{
		reader:  reader{q: sqlTx},
		tx:      sqlTx,
		touched: make(map[string]struct{}),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return wrapWriteErr("commit", err)
	}

	s.bus.Publish(tx.Touched()...)
	return nil
}

// Handle owns the process-wide Store. The first call to Store opens (and
// migrates) the file; every caller gets the same instance.
type Handle struct {
	mu     sync.Mutex
	path   string
	opts   Options
	create bool
	store  *Store
}

// NewHandle prepares a handle for path. With create set, a missing file is
// initialized instead of reported as storage.ErrNotInitialized.
func NewHandle(path string, create bool, opts Options) *Handle {
	return &Handle{path: path, opts: opts, create: create}
}

// Store returns the shared store, opening it on first use. A failed open is
// not cached, so the next call retries.
func (h *Handle) Store(ctx context.Context) (*Store, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store != nil {
		return h.store, nil
	}

	st := NewStore(h.path, h.opts)
	var err error
	if h.create {
		err = st.Init(ctx)
	} else {
		err = st.Load(ctx)
	}
	if err != nil {
		return nil, err
	}
	h.store = st
	return st, nil
}

// Close closes the shared store if it was opened
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return nil
	}
	err := h.store.Close()
	h.store = nil
	return err
}
