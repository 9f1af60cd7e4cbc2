// Package stats aggregates diary rows into chart series.
package stats

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/easydiary/internal/models"
	"github.com/julianstephens/easydiary/internal/storage"
)

// Source is the subset of the access layer the report is built from
type Source interface {
	ListLogCategories(ctx context.Context) ([]models.LogCategory, error)
	ListMoodSeries(ctx context.Context, f storage.EntryFilter) ([]storage.MoodPoint, error)
	ListDurationSeries(ctx context.Context, categoryID int64, f storage.EntryFilter) ([]storage.DurationPoint, error)
	CountItemsByCategory(ctx context.Context, f storage.EntryFilter) (map[int64]int, error)
}

// CategorySeries is the duration curve of one category
type CategorySeries struct {
	Category models.LogCategory     `json:"category"`
	Points   []storage.DurationPoint `json:"points"`
	Total    float64                `json:"total_hours"`
}

// CategoryCount is the number of log items recorded under a category
type CategoryCount struct {
	Category models.LogCategory `json:"category"`
	Items    int                `json:"items"`
}

// Report holds every series of the trend screen
type Report struct {
	Mood        []storage.MoodPoint `json:"mood"`
	AverageMood float64             `json:"average_mood"`
	Durations   []CategorySeries    `json:"durations"`
	Counts      []CategoryCount     `json:"counts"`
}

// Options selects what the report covers
type Options struct {
	Filter storage.EntryFilter
	// CategoryID restricts duration series to one category; 0 means every
	// category that records durations
	CategoryID int64
}

// Build loads all series concurrently
func Build(ctx context.Context, src Source, opts Options) (Report, error) {
	categories, err := src.ListLogCategories(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load categories: %w", err)
	}

	var durationCats []models.LogCategory
	for _, c := range categories {
		if !c.HasDuration {
			continue
		}
		if opts.CategoryID != 0 && c.ID != opts.CategoryID {
			continue
		}
		durationCats = append(durationCats, c)
	}

	var report Report
	var counts map[int64]int
	series := make([]CategorySeries, len(durationCats))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		points, err := src.ListMoodSeries(gctx, opts.Filter)
		if err != nil {
			return fmt.Errorf("failed to load mood series: %w", err)
		}
		report.Mood = points
		return nil
	})

	g.Go(func() error {
		c, err := src.CountItemsByCategory(gctx, opts.Filter)
		if err != nil {
			return fmt.Errorf("failed to count items: %w", err)
		}
		counts = c
		return nil
	})

	for i, c := range durationCats {
		g.Go(func() error {
			points, err := src.ListDurationSeries(gctx, c.ID, opts.Filter)
			if err != nil {
				return fmt.Errorf("failed to load durations for %s: %w", c.Name, err)
			}
			series[i] = CategorySeries{Category: c, Points: points, Total: sumHours(points)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report.AverageMood = averageMood(report.Mood)
	report.Durations = series
	for _, c := range categories {
		report.Counts = append(report.Counts, CategoryCount{Category: c, Items: counts[c.ID]})
	}
	return report, nil
}

func sumHours(points []storage.DurationPoint) float64 {
	total := 0.0
	for _, p := range points {
		total += p.Hours
	}
	return total
}

func averageMood(points []storage.MoodPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	total := 0
	for _, p := range points {
		total += p.Mood
	}
	return float64(total) / float64(len(points))
}
