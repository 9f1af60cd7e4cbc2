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

var itemColumns = []string{"li.id", "li.diaryDate", "li.logTypeId", "li.duration", "li.mediaPath"}

func scanLogItem(row rowScanner) (models.LogItem, error) {
	var item models.LogItem
	var duration sql.NullFloat64
	var media sql.NullString
	if err := row.Scan(&item.ID, &item.DiaryDate, &item.LogTypeID, &duration, &media); err != nil {
		return models.LogItem{}, err
	}
	if duration.Valid {
		item.Duration = &duration.Float64
	}
	if media.Valid {
		item.MediaPath = &media.String
	}
	return item, nil
}

func (r reader) queryLogItems(ctx context.Context, b sq.SelectBuilder) ([]models.LogItem, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.LogItem{}
	for rows.Next() {
		item, err := scanLogItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListLogItems returns the items of one date in category order
func (r reader) ListLogItems(ctx context.Context, date string) ([]models.LogItem, error) {
	return r.queryLogItems(ctx, builder.Select(itemColumns...).
		From(migration.TableLogItems+" li").
		Join(migration.TableLogTypes+" lt ON lt.id = li.logTypeId").
		Where(sq.Eq{"li.diaryDate": date}).
		OrderBy(`lt."order" ASC`, "li.id ASC"))
}

// ListLogItemsWithTexts returns items newest date first, each with its texts
func (r reader) ListLogItemsWithTexts(ctx context.Context, f storage.ItemFilter) ([]models.LogItemWithTexts, error) {
	b := builder.Select(itemColumns...).
		From(migration.TableLogItems + " li").
		OrderBy("li.diaryDate DESC", "li.id ASC")
	if f.CategoryID != 0 {
		b = b.Where(sq.Eq{"li.logTypeId": f.CategoryID})
	}
	if f.Date != "" {
		b = b.Where(sq.Eq{"li.diaryDate": f.Date})
	}
	b = applyDateFilter(b, "li.diaryDate", f.EntryFilter)
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}

	items, err := r.queryLogItems(ctx, b)
	if err != nil {
		return nil, err
	}
	return r.attachTexts(ctx, items)
}

// attachTexts loads the texts of all items in one query
func (r reader) attachTexts(ctx context.Context, items []models.LogItem) ([]models.LogItemWithTexts, error) {
	out := make([]models.LogItemWithTexts, len(items))
	if len(items) == 0 {
		return out, nil
	}

	ids := make([]int64, len(items))
	index := make(map[int64]int, len(items))
	for i, item := range items {
		ids[i] = item.ID
		index[item.ID] = i
		out[i] = models.LogItemWithTexts{LogItem: item, Texts: []models.TextEntry{}}
	}

	query, args, err := builder.Select("id", "logItemId", "content", `"order"`).
		From(migration.TableTextEntries).
		Where(sq.Eq{"logItemId": ids}).
		OrderBy("logItemId ASC", `"order" ASC`, "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		te, err := scanTextEntry(rows)
		if err != nil {
			return nil, err
		}
		i := index[te.LogItemID]
		out[i].Texts = append(out[i].Texts, te)
	}
	return out, rows.Err()
}

// InsertLogItem inserts item and returns its id. The day entry and the
// category must exist, otherwise storage.ErrConstraint is returned.
func (t *Tx) InsertLogItem(ctx context.Context, item models.LogItem) (int64, error) {
	query, args, err := builder.Insert(migration.TableLogItems).
		Columns("diaryDate", "logTypeId", "duration", "mediaPath").
		Values(item.DiaryDate, item.LogTypeID, item.Duration, item.MediaPath).
		ToSql()
	if err != nil {
		return 0, err
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrapWriteErr("insert log item", err)
	}
	t.touch(migration.TableLogItems)
	return res.LastInsertId()
}

func (t *Tx) DeleteLogItem(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM log_items WHERE id = ?`, id)
	if err != nil {
		return wrapWriteErr("delete log item", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("log item %d: %w", id, storage.ErrNotFound)
	}
	t.touchDelete(migration.TableLogItems)
	return nil
}

// DeleteLogItemsForDate removes every item of date and their texts
func (t *Tx) DeleteLogItemsForDate(ctx context.Context, date string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM log_items WHERE diaryDate = ?`, date); err != nil {
		return wrapWriteErr("delete log items for "+date, err)
	}
	t.touchDelete(migration.TableLogItems)
	return nil
}

func (s *Store) InsertLogItem(ctx context.Context, item models.LogItem) (int64, error) {
	var id int64
	err := s.InTx(ctx, func(tx *Tx) error {
		var err error
		id, err = tx.InsertLogItem(ctx, item)
		return err
	})
	return id, err
}

func (s *Store) DeleteLogItem(ctx context.Context, id int64) error {
	return s.InTx(ctx, func(tx *Tx) error {
		return tx.DeleteLogItem(ctx, id)
	})
}

func (s *Store) DeleteLogItemsForDate(ctx context.Context, date string) error {
	return s.InTx(ctx, func(tx *Tx) error {
		return tx.DeleteLogItemsForDate(ctx, date)
	})
}
