package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrSchemaTooNew means the file was written by a newer release
	ErrSchemaTooNew = errors.New("database schema is newer than supported")
	// ErrMigrationFailed wraps any failure while upgrading; the upgrade is rolled back
	ErrMigrationFailed = errors.New("migration failed")
)

// Migration represents a single forward-only schema step.
// Up runs inside the transaction that also advances the version marker.
type Migration struct {
	Version int
	Name    string
	Up      func(ctx context.Context, tx *sql.Tx) error
}

// Runner manages database schema migrations.
// The version marker is SQLite's user_version header field.
type Runner struct {
	db         *sql.DB
	migrations []Migration
}

// NewRunner creates a new migration runner for the given upgrade steps
func NewRunner(db *sql.DB, migrations ...Migration) *Runner {
	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})
	return &Runner{
		db:         db,
		migrations: sorted,
	}
}

// Default returns a runner carrying every built-in upgrade step
func Default(db *sql.DB) *Runner {
	return NewRunner(db, NormalizeEntries)
}

// GetCurrentVersion returns the current schema version from the database.
// Returns 0 for a fresh database. A file without a marker that holds the
// flat diary table is reported as LegacyVersion.
func (r *Runner) GetCurrentVersion(ctx context.Context) (int, error) {
	var version int
	if err := r.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	if version != 0 {
		return version, nil
	}

	legacy, err := hasLegacyTable(ctx, r.db)
	if err != nil {
		return 0, err
	}
	if legacy {
		return LegacyVersion, nil
	}
	return 0, nil
}

// SetVersion sets the current schema version in the database
func (r *Runner) SetVersion(ctx context.Context, version int) error {
	return setVersion(ctx, r.db, version)
}

// GetLatestVersion returns the highest version this runner can produce
func (r *Runner) GetLatestVersion() int {
	latest := SchemaVersion
	if n := len(r.migrations); n > 0 && r.migrations[n-1].Version > latest {
		latest = r.migrations[n-1].Version
	}
	return latest
}

// NeedsUpgrade reports whether an existing (non-fresh) database has pending steps
func (r *Runner) NeedsUpgrade(ctx context.Context) (bool, error) {
	current, err := r.GetCurrentVersion(ctx)
	if err != nil {
		return false, err
	}
	return current != 0 && current < r.GetLatestVersion(), nil
}

// ApplyMigrations brings the database to the latest version.
// A fresh database gets the normalized schema and default categories in one
// transaction; an older one runs each pending step in its own transaction.
// Returns the number of migrations applied (the fresh create counts as one).
func (r *Runner) ApplyMigrations(ctx context.Context, logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(s string) {} // no-op logger
	}

	currentVersion, err := r.GetCurrentVersion(ctx)
	if err != nil {
		return 0, err
	}

	latestVersion := r.GetLatestVersion()
	if currentVersion > latestVersion {
		return 0, fmt.Errorf("%w: version (%d) is newer than supported version (%d) - please upgrade the application", ErrSchemaTooNew, currentVersion, latestVersion)
	}
	if currentVersion == latestVersion {
		logFn(fmt.Sprintf("Database schema is up to date (version %d)", currentVersion))
		return 0, nil
	}

	startTime := time.Now()
	appliedCount := 0

	if currentVersion == 0 {
		logFn(fmt.Sprintf("Creating schema version %d", SchemaVersion))
		if err := r.inTx(ctx, SchemaVersion, func(tx *sql.Tx) error {
			if err := CreateSchema(ctx, tx); err != nil {
				return err
			}
			_, err := SeedCategories(ctx, tx)
			return err
		}); err != nil {
			return 0, fmt.Errorf("%w: creating schema: %v", ErrMigrationFailed, err)
		}
		currentVersion = SchemaVersion
		appliedCount++
	}

	var pending []Migration
	for _, m := range r.migrations {
		if m.Version > currentVersion {
			pending = append(pending, m)
		}
	}

	if len(pending) > 0 {
		logFn(fmt.Sprintf("Current schema version: %d", currentVersion))
		logFn(fmt.Sprintf("Target schema version: %d", latestVersion))
		logFn(fmt.Sprintf("Applying %d migration(s)...", len(pending)))
	}

	for _, m := range pending {
		logFn(fmt.Sprintf("  Applying migration %d: %s", m.Version, m.Name))

		if err := r.inTx(ctx, m.Version, func(tx *sql.Tx) error {
			return m.Up(ctx, tx)
		}); err != nil {
			return appliedCount, fmt.Errorf("%w: migration %d (%s): %v", ErrMigrationFailed, m.Version, m.Name, err)
		}

		appliedCount++
		logFn(fmt.Sprintf("  ✓ Migration %d applied successfully", m.Version))
	}

	logFn(fmt.Sprintf("Applied %d migration(s) in %v", appliedCount, time.Since(startTime)))
	return appliedCount, nil
}

// ValidateVersion checks if the database version is compatible with the application
func (r *Runner) ValidateVersion(ctx context.Context) error {
	currentVersion, err := r.GetCurrentVersion(ctx)
	if err != nil {
		return err
	}

	latestVersion := r.GetLatestVersion()
	if currentVersion > latestVersion {
		return fmt.Errorf("%w: version (%d) is newer than supported version (%d) - please upgrade the application", ErrSchemaTooNew, currentVersion, latestVersion)
	}
	if currentVersion < latestVersion {
		return fmt.Errorf("database schema version (%d) is behind (%d) - run 'easydiary migrate'", currentVersion, latestVersion)
	}
	return nil
}

// inTx runs fn and advances the marker to version in the same transaction
func (r *Runner) inTx(ctx context.Context, version int, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := setVersion(ctx, tx, version); err != nil {
		return err
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setVersion(ctx context.Context, db execer, version int) error {
	// PRAGMA does not take bound parameters
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("failed to set version: %w", err)
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func hasLegacyTable(ctx context.Context, db querier) (bool, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT 1 FROM pragma_table_info('diary_entries') WHERE name = 'lifeLog'`,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect diary_entries: %w", err)
	}
	return true, nil
}
