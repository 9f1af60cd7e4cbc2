package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/julianstephens/easydiary/internal/migration"
	"github.com/julianstephens/easydiary/internal/models"
)

var categoryColumns = []string{"id", "name", `"order"`, "hasText", "hasDuration", "hasMedia"}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (models.LogCategory, error) {
	var c models.LogCategory
	err := row.Scan(&c.ID, &c.Name, &c.Order, &c.HasText, &c.HasDuration, &c.HasMedia)
	return c, err
}

func (r reader) GetLogCategory(ctx context.Context, id int64) (models.LogCategory, error) {
	query, args, err := builder.Select(categoryColumns...).
		From(migration.TableLogTypes).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.LogCategory{}, err
	}

	c, err := scanCategory(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return models.LogCategory{}, wrapReadErr(fmt.Sprintf("category %d", id), err)
	}
	return c, nil
}

// ListLogCategories returns categories in display order
func (r reader) ListLogCategories(ctx context.Context) ([]models.LogCategory, error) {
	query, args, err := builder.Select(categoryColumns...).
		From(migration.TableLogTypes).
		OrderBy(`"order" ASC`, "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.LogCategory{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// nextCategoryOrder returns one past the highest order in use
func (r reader) nextCategoryOrder(ctx context.Context) (int, error) {
	var next int
	err := r.q.QueryRowContext(ctx, `SELECT COALESCE(MAX("order"), -1) + 1 FROM log_types`).Scan(&next)
	return next, err
}

// InsertLogCategory inserts c and returns its id. A negative Order appends
// the category after the existing ones.
func (t *Tx) InsertLogCategory(ctx context.Context, c models.LogCategory) (int64, error) {
	if c.Order < 0 {
		next, err := t.nextCategoryOrder(ctx)
		if err != nil {
			return 0, err
		}
		c.Order = next
	}

	query, args, err := builder.Insert(migration.TableLogTypes).
		Columns("name", `"order"`, "hasText", "hasDuration", "hasMedia").
		Values(c.Name, c.Order, c.HasText, c.HasDuration, c.HasMedia).
		ToSql()
	if err != nil {
		return 0, err
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrapWriteErr("insert category", err)
	}
	t.touch(migration.TableLogTypes)
	return res.LastInsertId()
}

func (t *Tx) UpdateLogCategory(ctx context.Context, c models.LogCategory) error {
	query, args, err := builder.Update(migration.TableLogTypes).
		Set("name", c.Name).
		Set(`"order"`, c.Order).
		Set("hasText", c.HasText).
		Set("hasDuration", c.HasDuration).
		Set("hasMedia", c.HasMedia).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapWriteErr("update category", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return wrapReadErr(fmt.Sprintf("category %d", c.ID), sql.ErrNoRows)
	}
	t.touch(migration.TableLogTypes)
	return nil
}

func (s *Store) InsertLogCategory(ctx context.Context, c models.LogCategory) (int64, error) {
	var id int64
	err := s.InTx(ctx, func(tx *Tx) error {
		var err error
		id, err = tx.InsertLogCategory(ctx, c)
		return err
	})
	return id, err
}

func (s *Store) UpdateLogCategory(ctx context.Context, c models.LogCategory) error {
	return s.InTx(ctx, func(tx *Tx) error {
		return tx.UpdateLogCategory(ctx, c)
	})
}
