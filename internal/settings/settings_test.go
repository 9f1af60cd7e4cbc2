package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/easydiary/internal/live"
	"github.com/julianstephens/easydiary/internal/worker"
)

func setupTestSettings(t *testing.T) *Store {
	t.Helper()
	bus := live.NewBus()
	pool := worker.New(2)
	t.Cleanup(func() {
		pool.Close(context.Background())
		bus.Close()
	})
	return NewStore(filepath.Join(t.TempDir(), "settings.yaml"), bus, pool)
}

func TestLoad_Defaults(t *testing.T) {
	s := setupTestSettings(t)

	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeSystem, st.Theme)
	assert.Equal(t, ViewMonth, st.CalendarView)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	s := setupTestSettings(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("theme: PURPLE\ncalendar_view: week\n"), 0o600))

	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeSystem, st.Theme)
	assert.Equal(t, ViewWeek, st.CalendarView)
}

func TestLoad_CorruptFile(t *testing.T) {
	s := setupTestSettings(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{{{not yaml"), 0o600))

	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), st)
}

func TestSetAndPersist(t *testing.T) {
	s := setupTestSettings(t)
	ctx := context.Background()

	_, err := s.SetTheme(ctx, ThemeDark).Await(ctx)
	require.NoError(t, err)
	_, err = s.SetCalendarView(ctx, ViewThreeDay).Await(ctx)
	require.NoError(t, err)

	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Settings{Theme: ThemeDark, CalendarView: ViewThreeDay}, st)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "theme: DARK")
	assert.Contains(t, string(data), "calendar_view: THREE_DAY")
}

func TestSet_StoresCanonicalNames(t *testing.T) {
	s := setupTestSettings(t)
	ctx := context.Background()

	_, err := s.SetTheme(ctx, Theme("dark")).Await(ctx)
	require.NoError(t, err)
	_, err = s.SetCalendarView(ctx, CalendarView("three-day")).Await(ctx)
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "theme: DARK")
	assert.Contains(t, string(data), "calendar_view: THREE_DAY")

	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Settings{Theme: ThemeDark, CalendarView: ViewThreeDay}, st)
}

func TestSet_RejectsUnknown(t *testing.T) {
	s := setupTestSettings(t)
	ctx := context.Background()

	_, err := s.SetTheme(ctx, Theme("NEON")).Await(ctx)
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = s.SetCalendarView(ctx, CalendarView("YEAR")).Await(ctx)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr), "rejected writes must not create the file")
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want CalendarView
		ok   bool
	}{
		{"month", ViewMonth, true},
		{"WEEK", ViewWeek, true},
		{"three-day", ViewThreeDay, true},
		{"THREE_DAY", ViewThreeDay, true},
		{"year", "", false},
	}
	for _, tt := range tests {
		got, err := ParseCalendarView(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got)
		} else {
			assert.ErrorIs(t, err, ErrInvalidValue)
		}
	}

	theme, err := ParseTheme(" light ")
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)
}

func TestWatchTheme(t *testing.T) {
	s := setupTestSettings(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	themes := s.WatchTheme(ctx)
	views := s.WatchCalendarView(ctx)

	assert.Equal(t, ThemeSystem, receive(t, themes))
	assert.Equal(t, ViewMonth, receive(t, views))

	_, err := s.SetTheme(ctx, ThemeLight).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, receive(t, themes))
	// the view watcher re-reads too but sees the same value
	assert.Equal(t, ViewMonth, receive(t, views))
}

func receive[T any](t *testing.T, ch <-chan live.Snapshot[T]) T {
	t.Helper()
	select {
	case s := <-ch:
		require.NoError(t, s.Err)
		return s.Value
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for settings snapshot")
	}
	var zero T
	return zero
}
