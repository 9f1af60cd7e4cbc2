// Package settings keeps the display preferences in a small YAML file.
// They live outside the diary database and never affect it.
package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/easydiary/internal/live"
	"github.com/julianstephens/easydiary/internal/logger"
	"github.com/julianstephens/easydiary/internal/worker"
)

// Topic is the bus name published after every settings write
const Topic = "settings"

type Theme string

const (
	ThemeSystem Theme = "SYSTEM"
	ThemeLight  Theme = "LIGHT"
	ThemeDark   Theme = "DARK"
)

var Themes = []Theme{ThemeSystem, ThemeLight, ThemeDark}

type CalendarView string

const (
	ViewMonth    CalendarView = "MONTH"
	ViewWeek     CalendarView = "WEEK"
	ViewThreeDay CalendarView = "THREE_DAY"
)

var CalendarViews = []CalendarView{ViewMonth, ViewWeek, ViewThreeDay}

var ErrInvalidValue = errors.New("invalid setting value")

// ParseTheme accepts a theme name in any case
func ParseTheme(s string) (Theme, error) {
	for _, t := range Themes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: theme %q (expected one of %v)", ErrInvalidValue, s, Themes)
}

// ParseCalendarView accepts a view name in any case; "three-day" is accepted too
func ParseCalendarView(s string) (CalendarView, error) {
	norm := strings.ReplaceAll(strings.TrimSpace(s), "-", "_")
	for _, v := range CalendarViews {
		if strings.EqualFold(string(v), norm) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: calendar view %q (expected one of %v)", ErrInvalidValue, s, CalendarViews)
}

// Settings is the persisted document
type Settings struct {
	Theme        Theme        `yaml:"theme" json:"theme"`
	CalendarView CalendarView `yaml:"calendar_view" json:"calendar_view"`
}

// Defaults returns the settings used before anything is stored
func Defaults() Settings {
	return Settings{Theme: ThemeSystem, CalendarView: ViewMonth}
}

// normalize replaces unknown stored names with the default
func (s Settings) normalize() Settings {
	d := Defaults()
	if t, err := ParseTheme(string(s.Theme)); err == nil {
		d.Theme = t
	}
	if v, err := ParseCalendarView(string(s.CalendarView)); err == nil {
		d.CalendarView = v
	}
	return d
}

// Store reads and writes the settings file. Writes run on the worker pool
// and are announced on the bus under Topic.
type Store struct {
	path string
	bus  *live.Bus
	pool *worker.Pool

	mu sync.Mutex
}

func NewStore(path string, bus *live.Bus, pool *worker.Pool) *Store {
	return &Store{path: path, bus: bus, pool: pool}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored settings, falling back to defaults for a missing
// file and for any unrecognized value
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	var stored Settings
	if err := yaml.Unmarshal(data, &stored); err != nil {
		logger.Warn("unreadable settings file, using defaults", "path", s.path, "error", err)
		return Defaults(), nil
	}
	return stored.normalize(), nil
}

func (s *Store) update(ctx context.Context, apply func(*Settings)) *worker.Future[struct{}] {
	return s.pool.Go(ctx, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		current, err := s.load()
		if err != nil {
			return err
		}
		apply(&current)
		if err := s.write(current); err != nil {
			return err
		}

		s.bus.Publish(Topic)
		return nil
	})
}

// write replaces the file atomically through a temp file
func (s *Store) write(st Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

func (s *Store) SetTheme(ctx context.Context, t Theme) *worker.Future[struct{}] {
	theme, err := ParseTheme(string(t))
	if err != nil {
		return worker.Resolved(struct{}{}, err)
	}
	return s.update(ctx, func(st *Settings) { st.Theme = theme })
}

func (s *Store) SetCalendarView(ctx context.Context, v CalendarView) *worker.Future[struct{}] {
	view, err := ParseCalendarView(string(v))
	if err != nil {
		return worker.Resolved(struct{}{}, err)
	}
	return s.update(ctx, func(st *Settings) { st.CalendarView = view })
}

// Watch observes the whole document
func (s *Store) Watch(ctx context.Context) <-chan live.Snapshot[Settings] {
	return live.Watch(ctx, s.bus, s.pool, func(ctx context.Context) (Settings, error) {
		return s.Load()
	}, Topic)
}

// WatchTheme observes the theme
func (s *Store) WatchTheme(ctx context.Context) <-chan live.Snapshot[Theme] {
	return live.Watch(ctx, s.bus, s.pool, func(ctx context.Context) (Theme, error) {
		st, err := s.Load()
		return st.Theme, err
	}, Topic)
}

// WatchCalendarView observes the calendar view
func (s *Store) WatchCalendarView(ctx context.Context) <-chan live.Snapshot[CalendarView] {
	return live.Watch(ctx, s.bus, s.pool, func(ctx context.Context) (CalendarView, error) {
		st, err := s.Load()
		return st.CalendarView, err
	}, Topic)
}
