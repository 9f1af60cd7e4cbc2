package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/easydiary/internal/migration"
	"github.com/julianstephens/easydiary/internal/storage"
)

// CheckResult is the outcome of one health check; Err is nil on success
type CheckResult struct {
	Name string
	Err  error
}

// Doctor runs the store health checks in order
func (s *Store) Doctor(ctx context.Context) []CheckResult {
	if s.db == nil {
		return []CheckResult{{Name: "Database reachable", Err: storage.ErrNotInitialized}}
	}

	return []CheckResult{
		{Name: "Database reachable", Err: s.checkReachable(ctx)},
		{Name: "Schema version", Err: migration.Default(s.db).ValidateVersion(ctx)},
		{Name: "Integrity", Err: s.checkIntegrity(ctx)},
		{Name: "Foreign keys", Err: s.checkForeignKeys(ctx)},
		{Name: "Categories present", Err: s.checkCategories(ctx)},
	}
}

func (s *Store) checkReachable(ctx context.Context) error {
	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func (s *Store) checkIntegrity(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "PRAGMA integrity_check")
	if err != nil {
		return err
	}
	defer rows.Close()

	var problems []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return err
		}
		if line != "ok" {
			problems = append(problems, line)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(problems) > 0 {
		return fmt.Errorf("integrity check failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (s *Store) checkForeignKeys(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return err
	}
	defer rows.Close()

	violations := 0
	for rows.Next() {
		violations++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if violations > 0 {
		return fmt.Errorf("%d row(s) reference a missing parent", violations)
	}
	return nil
}

func (s *Store) checkCategories(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM log_types`).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no categories configured")
	}
	return nil
}
