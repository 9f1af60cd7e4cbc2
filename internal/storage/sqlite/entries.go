package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/julianstephens/easydiary/internal/migration"
	"github.com/julianstephens/easydiary/internal/models"
	"github.com/julianstephens/easydiary/internal/storage"
)

// applyDateFilter bounds col by the filter's month or inclusive date range
func applyDateFilter(b sq.SelectBuilder, col string, f storage.EntryFilter) sq.SelectBuilder {
	if f.Month != "" {
		return b.Where(sq.Like{col: f.Month + "-%"})
	}
	if f.From != "" {
		b = b.Where(sq.GtOrEq{col: f.From})
	}
	if f.To != "" {
		b = b.Where(sq.LtOrEq{col: f.To})
	}
	return b
}

func scanDayEntry(row rowScanner) (models.DayEntry, error) {
	var e models.DayEntry
	var plan sql.NullString
	if err := row.Scan(&e.Date, &e.MoodScore, &plan); err != nil {
		return models.DayEntry{}, err
	}
	if plan.Valid {
		e.TomorrowPlan = &plan.String
	}
	return e, nil
}

func (r reader) GetDayEntry(ctx context.Context, date string) (models.DayEntry, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT date, moodScore, tomorrowPlan FROM diary_entries WHERE date = ?`, date)

	e, err := scanDayEntry(row)
	if err != nil {
		return models.DayEntry{}, wrapReadErr("entry "+date, err)
	}
	return e, nil
}

// ListDayEntries returns entries newest first
func (r reader) ListDayEntries(ctx context.Context, f storage.EntryFilter) ([]models.DayEntry, error) {
	b := builder.Select("date", "moodScore", "tomorrowPlan").
		From(migration.TableDiaryEntries).
		OrderBy("date DESC")
	b = applyDateFilter(b, "date", f)
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.DayEntry{}
	for rows.Next() {
		e, err := scanDayEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpsertDayEntry inserts e or updates the existing row for its date in place.
// The row is never deleted, so its log items survive.
func (t *Tx) UpsertDayEntry(ctx context.Context, e models.DayEntry) error {
	query, args, err := builder.Insert(migration.TableDiaryEntries).
		Columns("date", "moodScore", "tomorrowPlan").
		Values(e.Date, int(e.MoodScore), e.TomorrowPlan).
		Suffix("ON CONFLICT(date) DO UPDATE SET moodScore = excluded.moodScore, tomorrowPlan = excluded.tomorrowPlan").
		ToSql()
	if err != nil {
		return err
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return wrapWriteErr("upsert entry "+e.Date, err)
	}
	t.touch(migration.TableDiaryEntries)
	return nil
}

// DeleteDayEntry removes the entry and, by cascade, its log items and texts
func (t *Tx) DeleteDayEntry(ctx context.Context, date string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM diary_entries WHERE date = ?`, date)
	if err != nil {
		return wrapWriteErr("delete entry "+date, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("entry %s: %w", date, storage.ErrNotFound)
	}
	t.touchDelete(migration.TableDiaryEntries)
	return nil
}

func (s *Store) UpsertDayEntry(ctx context.Context, e models.DayEntry) error {
	return s.InTx(ctx, func(tx *Tx) error {
		return tx.UpsertDayEntry(ctx, e)
	})
}

func (s *Store) DeleteDayEntry(ctx context.Context, date string) error {
	return s.InTx(ctx, func(tx *Tx) error {
		return tx.DeleteDayEntry(ctx, date)
	})
}
