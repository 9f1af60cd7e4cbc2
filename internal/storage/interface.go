package storage

import (
	"context"

	"github.com/julianstephens/easydiary/internal/models"
)

// Provider is the typed access layer over the diary schema.
// Every method is synchronous; the diary package schedules them on a worker pool.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Categories
	InsertLogCategory(ctx context.Context, c models.LogCategory) (int64, error)
	UpdateLogCategory(ctx context.Context, c models.LogCategory) error
	GetLogCategory(ctx context.Context, id int64) (models.LogCategory, error)
	ListLogCategories(ctx context.Context) ([]models.LogCategory, error)

	// Day entries
	UpsertDayEntry(ctx context.Context, e models.DayEntry) error
	GetDayEntry(ctx context.Context, date string) (models.DayEntry, error)
	ListDayEntries(ctx context.Context, f EntryFilter) ([]models.DayEntry, error)
	DeleteDayEntry(ctx context.Context, date string) error

	// Log items
	InsertLogItem(ctx context.Context, item models.LogItem) (int64, error)
	DeleteLogItem(ctx context.Context, id int64) error
	DeleteLogItemsForDate(ctx context.Context, date string) error
	ListLogItems(ctx context.Context, date string) ([]models.LogItem, error)
	ListLogItemsWithTexts(ctx context.Context, f ItemFilter) ([]models.LogItemWithTexts, error)

	// Text entries
	InsertTextEntry(ctx context.Context, te models.TextEntry) (int64, error)
	InsertTextEntries(ctx context.Context, entries []models.TextEntry) error
	ListTextEntries(ctx context.Context, logItemID int64) ([]models.TextEntry, error)

	// Composed reads
	GetDayEntryWithDetails(ctx context.Context, date string) (models.DayEntryWithDetails, error)
	ListDurationSeries(ctx context.Context, categoryID int64, f EntryFilter) ([]DurationPoint, error)
	ListMoodSeries(ctx context.Context, f EntryFilter) ([]MoodPoint, error)

	Path() string
}
