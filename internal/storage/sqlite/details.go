package sqlite

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/julianstephens/easydiary/internal/migration"
	"github.com/julianstephens/easydiary/internal/models"
	"github.com/julianstephens/easydiary/internal/storage"
)

// Tables GetDayEntryWithDetails reads from
var DetailTables = []string{
	migration.TableDiaryEntries,
	migration.TableLogTypes,
	migration.TableLogItems,
	migration.TableTextEntries,
}

// GetDayEntryWithDetails reads one day with its items in category order and
// each item's texts in order. Returns storage.ErrNotFound when no entry exists.
func (r reader) GetDayEntryWithDetails(ctx context.Context, date string) (models.DayEntryWithDetails, error) {
	entry, err := r.GetDayEntry(ctx, date)
	if err != nil {
		return models.DayEntryWithDetails{}, err
	}

	items, err := r.ListLogItems(ctx, date)
	if err != nil {
		return models.DayEntryWithDetails{}, err
	}

	withTexts, err := r.attachTexts(ctx, items)
	if err != nil {
		return models.DayEntryWithDetails{}, err
	}

	return models.DayEntryWithDetails{Entry: entry, LogItems: withTexts}, nil
}

// ListDurationSeries sums the durations recorded for a category per date, oldest first
func (r reader) ListDurationSeries(ctx context.Context, categoryID int64, f storage.EntryFilter) ([]storage.DurationPoint, error) {
	b := builder.Select("diaryDate", "SUM(COALESCE(duration, 0))").
		From(migration.TableLogItems).
		Where(sq.Eq{"logTypeId": categoryID}).
		GroupBy("diaryDate").
		OrderBy("diaryDate ASC")
	b = applyDateFilter(b, "diaryDate", f)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []storage.DurationPoint{}
	for rows.Next() {
		var p storage.DurationPoint
		if err := rows.Scan(&p.Date, &p.Hours); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// ListMoodSeries returns the mood of every entry, oldest first
func (r reader) ListMoodSeries(ctx context.Context, f storage.EntryFilter) ([]storage.MoodPoint, error) {
	b := builder.Select("date", "moodScore").
		From(migration.TableDiaryEntries).
		OrderBy("date ASC")
	b = applyDateFilter(b, "date", f)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []storage.MoodPoint{}
	for rows.Next() {
		var p storage.MoodPoint
		if err := rows.Scan(&p.Date, &p.Mood); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// CountItemsByCategory returns how many log items each category holds
func (r reader) CountItemsByCategory(ctx context.Context, f storage.EntryFilter) (map[int64]int, error) {
	b := builder.Select("logTypeId", "COUNT(*)").
		From(migration.TableLogItems).
		GroupBy("logTypeId")
	b = applyDateFilter(b, "diaryDate", f)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
