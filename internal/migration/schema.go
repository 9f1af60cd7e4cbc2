package migration

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/julianstephens/easydiary/internal/constants"
)

// SchemaVersion is the version of the normalized layout in sql/schema.sql
const SchemaVersion = 2

// LegacyVersion is the flat single-table layout
const LegacyVersion = 1

// Table names of the normalized layout
const (
	TableDiaryEntries = "diary_entries"
	TableLogTypes     = "log_types"
	TableLogItems     = "log_items"
	TableTextEntries  = "text_entries"
)

//go:embed sql/schema.sql
var schemaSQL string

// Schema returns the DDL of the normalized layout. Every statement is
// CREATE ... IF NOT EXISTS, so executing it twice is harmless.
func Schema() string {
	return schemaSQL
}

// CreateSchema executes the normalized DDL inside tx
func CreateSchema(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SeedCategories inserts the default categories in order and returns their ids
func SeedCategories(ctx context.Context, tx *sql.Tx) ([]int64, error) {
	ids := make([]int64, 0, len(constants.DefaultCategories))
	for i, c := range constants.DefaultCategories {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO log_types (name, "order", hasText, hasDuration, hasMedia) VALUES (?, ?, ?, ?, ?)`,
			c.Name, i, c.HasText, c.HasDuration, c.HasMedia,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
