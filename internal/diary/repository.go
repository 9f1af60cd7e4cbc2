// Package diary composes the access layer into day-level operations.
//
// Every operation returns immediately: writes and one-shot reads hand back a
// worker.Future, multi-row reads can also be observed as a stream of
// snapshots that refresh after each committed write.
package diary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/easydiary/internal/constants"
	"github.com/julianstephens/easydiary/internal/live"
	"github.com/julianstephens/easydiary/internal/logger"
	"github.com/julianstephens/easydiary/internal/migration"
	"github.com/julianstephens/easydiary/internal/models"
	"github.com/julianstephens/easydiary/internal/stats"
	"github.com/julianstephens/easydiary/internal/storage"
	"github.com/julianstephens/easydiary/internal/storage/sqlite"
	"github.com/julianstephens/easydiary/internal/worker"
)

var (
	ErrInvalidDuration = errors.New("duration must not be negative")
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyName       = errors.New("category name must not be empty")
)

// CategoryInput is what the user entered for one category on one day
type CategoryInput struct {
	Texts     []string
	Duration  float64 // hours
	MediaPath string
}

// DaySave is a full day as submitted by the editor
type DaySave struct {
	Date string
	Mood models.Mood
	Plan []string
	// Logs is keyed by category id
	Logs map[int64]CategoryInput
}

// Repository is the day-level facade over a Store
type Repository struct {
	store *sqlite.Store
	bus   *live.Bus
	pool  *worker.Pool
}

// New builds a repository publishing and observing through the store's bus
func New(store *sqlite.Store, pool *worker.Pool) *Repository {
	return &Repository{
		store: store,
		bus:   store.Bus(),
		pool:  pool,
	}
}

// SaveDay writes the whole day in one transaction, replacing every log item
// previously stored for the date. Fields a category does not collect are
// dropped, and categories left with nothing to store get no log item.
// The future resolves to the day as re-read after the write.
func (r *Repository) SaveDay(ctx context.Context, in DaySave) *worker.Future[models.DayEntryWithDetails] {
	if err := validateSave(in); err != nil {
		return worker.Resolved(models.DayEntryWithDetails{}, err)
	}

	return worker.Submit(ctx, r.pool, func(ctx context.Context) (models.DayEntryWithDetails, error) {
		var saved models.DayEntryWithDetails
		err := r.store.InTx(ctx, func(tx *sqlite.Tx) error {
			categories, err := tx.ListLogCategories(ctx)
			if err != nil {
				return err
			}
			known := make(map[int64]bool, len(categories))
			for _, c := range categories {
				known[c.ID] = true
			}
			for id := range in.Logs {
				if !known[id] {
					return fmt.Errorf("%w: %d", ErrUnknownCategory, id)
				}
			}

			if err := tx.UpsertDayEntry(ctx, models.DayEntry{
				Date:         in.Date,
				MoodScore:    in.Mood,
				TomorrowPlan: JoinPlan(in.Plan),
			}); err != nil {
				return err
			}

			if err := tx.DeleteLogItemsForDate(ctx, in.Date); err != nil {
				return err
			}

			for _, c := range categories {
				item, texts, ok := gate(c, in.Date, in.Logs[c.ID])
				if !ok {
					continue
				}
				id, err := tx.InsertLogItem(ctx, item)
				if err != nil {
					return fmt.Errorf("category %s: %w", c.Name, err)
				}
				entries := make([]models.TextEntry, len(texts))
				for i, text := range texts {
					entries[i] = models.TextEntry{LogItemID: id, Content: text, Order: i}
				}
				if err := tx.InsertTextEntries(ctx, entries); err != nil {
					return fmt.Errorf("category %s: %w", c.Name, err)
				}
			}

			saved, err = tx.GetDayEntryWithDetails(ctx, in.Date)
			return err
		})
		if err != nil {
			logger.Warn("save failed", "date", in.Date, "error", err)
			return models.DayEntryWithDetails{}, err
		}

		logger.Info("day saved", "date", in.Date, "mood", int(in.Mood), "items", len(saved.LogItems))
		return saved, nil
	})
}

func validateSave(in DaySave) error {
	if err := models.ValidateDate(in.Date); err != nil {
		return err
	}
	if err := models.ValidateMood(in.Mood); err != nil {
		return err
	}
	for id, input := range in.Logs {
		if input.Duration < 0 {
			return fmt.Errorf("%w: category %d has %v", ErrInvalidDuration, id, input.Duration)
		}
	}
	return nil
}

// gate builds the log item for c. Whether an item exists is decided by the
// raw input (non-blank text, non-zero duration or a media path); the
// capability flags then pick which of those fields are stored. ok is false
// when the input carries nothing.
func gate(c models.LogCategory, date string, in CategoryInput) (models.LogItem, []string, bool) {
	texts := models.NonBlank(in.Texts)
	media := strings.TrimSpace(in.MediaPath)
	if len(texts) == 0 && in.Duration == 0 && media == "" {
		return models.LogItem{}, nil, false
	}

	item := models.LogItem{DiaryDate: date, LogTypeID: c.ID}
	if c.HasDuration {
		d := in.Duration
		item.Duration = &d
	}
	if c.HasMedia && media != "" {
		item.MediaPath = &media
	}
	if !c.HasText {
		texts = nil
	}
	return item, texts, true
}

// JoinPlan joins the non-blank plan lines, or returns nil when there are none
func JoinPlan(lines []string) *string {
	kept := models.NonBlank(lines)
	if len(kept) == 0 {
		return nil
	}
	joined := strings.Join(kept, constants.PlanSeparator)
	return &joined
}

// DeleteDay removes the day and everything logged under it
func (r *Repository) DeleteDay(ctx context.Context, date string) *worker.Future[struct{}] {
	if err := models.ValidateDate(date); err != nil {
		return worker.Resolved(struct{}{}, err)
	}
	return r.pool.Go(ctx, func(ctx context.Context) error {
		if err := r.store.DeleteDayEntry(ctx, date); err != nil {
			return err
		}
		logger.Info("day deleted", "date", date)
		return nil
	})
}

// AddCategory appends a new category after the existing ones
func (r *Repository) AddCategory(ctx context.Context, c models.LogCategory) *worker.Future[models.LogCategory] {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return worker.Resolved(models.LogCategory{}, ErrEmptyName)
	}

	return worker.Submit(ctx, r.pool, func(ctx context.Context) (models.LogCategory, error) {
		var added models.LogCategory
		err := r.store.InTx(ctx, func(tx *sqlite.Tx) error {
			c.Order = -1
			id, err := tx.InsertLogCategory(ctx, c)
			if err != nil {
				return err
			}
			added, err = tx.GetLogCategory(ctx, id)
			return err
		})
		if err == nil {
			logger.Info("category added", "id", added.ID, "name", added.Name)
		}
		return added, err
	})
}

// UpdateCategories writes names, order and capability flags of every given
// category in one transaction
func (r *Repository) UpdateCategories(ctx context.Context, categories []models.LogCategory) *worker.Future[struct{}] {
	for _, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return worker.Resolved(struct{}{}, fmt.Errorf("%w: category %d", ErrEmptyName, c.ID))
		}
	}

	return r.pool.Go(ctx, func(ctx context.Context) error {
		return r.store.InTx(ctx, func(tx *sqlite.Tx) error {
			for _, c := range categories {
				c.Name = strings.TrimSpace(c.Name)
				if err := tx.UpdateLogCategory(ctx, c); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// Day reads one day; the future resolves to storage.ErrNotFound when nothing is recorded
func (r *Repository) Day(ctx context.Context, date string) *worker.Future[models.DayEntryWithDetails] {
	return worker.Submit(ctx, r.pool, func(ctx context.Context) (models.DayEntryWithDetails, error) {
		return r.store.GetDayEntryWithDetails(ctx, date)
	})
}

func (r *Repository) Categories(ctx context.Context) *worker.Future[[]models.LogCategory] {
	return worker.Submit(ctx, r.pool, r.store.ListLogCategories)
}

// CategoryByName finds a category by case-insensitive name
func (r *Repository) CategoryByName(ctx context.Context, name string) *worker.Future[models.LogCategory] {
	return worker.Submit(ctx, r.pool, func(ctx context.Context) (models.LogCategory, error) {
		categories, err := r.store.ListLogCategories(ctx)
		if err != nil {
			return models.LogCategory{}, err
		}
		for _, c := range categories {
			if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
				return c, nil
			}
		}
		return models.LogCategory{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	})
}

func (r *Repository) Entries(ctx context.Context, f storage.EntryFilter) *worker.Future[[]models.DayEntry] {
	return worker.Submit(ctx, r.pool, func(ctx context.Context) ([]models.DayEntry, error) {
		return r.store.ListDayEntries(ctx, f)
	})
}

func (r *Repository) LogItems(ctx context.Context, f storage.ItemFilter) *worker.Future[[]models.LogItemWithTexts] {
	return worker.Submit(ctx, r.pool, func(ctx context.Context) ([]models.LogItemWithTexts, error) {
		return r.store.ListLogItemsWithTexts(ctx, f)
	})
}

// Trend builds the chart report
func (r *Repository) Trend(ctx context.Context, opts stats.Options) *worker.Future[stats.Report] {
	return worker.Submit(ctx, r.pool, func(ctx context.Context) (stats.Report, error) {
		return stats.Build(ctx, r.store, opts)
	})
}

// WatchAllEntries observes every day entry, newest first
func (r *Repository) WatchAllEntries(ctx context.Context) <-chan live.Snapshot[[]models.DayEntry] {
	return live.Watch(ctx, r.bus, r.pool, func(ctx context.Context) ([]models.DayEntry, error) {
		return r.store.ListDayEntries(ctx, storage.EntryFilter{})
	}, migration.TableDiaryEntries)
}

// WatchDay observes one day. The value is nil while nothing is recorded.
func (r *Repository) WatchDay(ctx context.Context, date string) <-chan live.Snapshot[*models.DayEntryWithDetails] {
	return live.Watch(ctx, r.bus, r.pool, func(ctx context.Context) (*models.DayEntryWithDetails, error) {
		details, err := r.store.GetDayEntryWithDetails(ctx, date)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &details, nil
	}, sqlite.DetailTables...)
}

func (r *Repository) WatchCategories(ctx context.Context) <-chan live.Snapshot[[]models.LogCategory] {
	return live.Watch(ctx, r.bus, r.pool, r.store.ListLogCategories, migration.TableLogTypes)
}

// WatchLogItemsWithTexts observes the statistics list
func (r *Repository) WatchLogItemsWithTexts(ctx context.Context, f storage.ItemFilter) <-chan live.Snapshot[[]models.LogItemWithTexts] {
	return live.Watch(ctx, r.bus, r.pool, func(ctx context.Context) ([]models.LogItemWithTexts, error) {
		return r.store.ListLogItemsWithTexts(ctx, f)
	}, migration.TableLogItems, migration.TableTextEntries)
}

// WatchTrend observes the chart report
func (r *Repository) WatchTrend(ctx context.Context, opts stats.Options) <-chan live.Snapshot[stats.Report] {
	return live.Watch(ctx, r.bus, r.pool, func(ctx context.Context) (stats.Report, error) {
		return stats.Build(ctx, r.store, opts)
	}, migration.TableDiaryEntries, migration.TableLogItems, migration.TableLogTypes)
}
