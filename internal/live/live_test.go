package live

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/easydiary/internal/worker"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for emission")
	}
	var zero T
	return zero
}

func TestBus_PublishMatchesTables(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	ctx := context.Background()

	entries, _ := bus.Subscribe(ctx, "diary_entries")
	items, _ := bus.Subscribe(ctx, "log_items", "text_entries")

	bus.Publish("text_entries")

	select {
	case <-items:
	default:
		t.Fatal("expected signal for text_entries subscriber")
	}
	select {
	case <-entries:
		t.Fatal("diary_entries subscriber should not be signalled")
	default:
	}
}

func TestBus_SignalsCoalesce(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, _ := bus.Subscribe(context.Background(), "log_types")
	for i := 0; i < 10; i++ {
		bus.Publish("log_types")
	}

	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single pending signal")
	default:
	}
}

func TestBus_UnsubscribeOnContextCancel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := bus.Subscribe(ctx, "diary_entries")
	assert.Equal(t, 1, bus.Len())

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("subscription was not removed")
	}
	assert.Equal(t, 0, bus.Len())

	// publishing after removal is harmless
	bus.Publish("diary_entries")
}

func TestBus_UnsubscribeReleasesWatcher(t *testing.T) {
	bus := NewBus()
	before := runtime.NumGoroutine()

	ids := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		_, id := bus.Subscribe(context.Background(), "diary_entries")
		ids = append(ids, id)
	}
	for _, id := range ids[:25] {
		bus.Unsubscribe(id)
	}
	bus.Close()
	assert.Equal(t, 0, bus.Len())

	// never-cancelled contexts must not pin a goroutine per subscription
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()
	ch, _ := bus.Subscribe(context.Background(), "diary_entries")
	bus.Close()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := bus.Subscribe(context.Background(), "diary_entries")
	_, ok = <-late
	assert.False(t, ok, "subscriptions after Close are closed immediately")
}

func TestWatch_InitialAndFreshSnapshots(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	pool := worker.New(2)
	defer pool.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rows atomic.Int32
	snaps := Watch(ctx, bus, pool, func(ctx context.Context) (int32, error) {
		return rows.Load(), nil
	}, "diary_entries")

	first := receive(t, snaps)
	require.NoError(t, first.Err)
	assert.Equal(t, int32(0), first.Value)

	rows.Store(1)
	bus.Publish("diary_entries")

	second := receive(t, snaps)
	require.NoError(t, second.Err)
	assert.Equal(t, int32(1), second.Value)
}

func TestWatch_IgnoresUnrelatedTables(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	pool := worker.New(1)
	defer pool.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var loads atomic.Int32
	snaps := Watch(ctx, bus, pool, func(ctx context.Context) (int32, error) {
		return loads.Add(1), nil
	}, "log_types")

	receive(t, snaps)
	bus.Publish("diary_entries")

	select {
	case s := <-snaps:
		t.Fatalf("unexpected emission %v", s)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int32(1), loads.Load())
}

func TestWatch_DeliversLoadErrors(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	pool := worker.New(1)
	defer pool.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ioErr := errors.New("disk I/O error")
	snaps := Watch(ctx, bus, pool, func(ctx context.Context) (string, error) {
		return "", ioErr
	}, "diary_entries")

	s := receive(t, snaps)
	assert.ErrorIs(t, s.Err, ioErr)
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	pool := worker.New(1)
	defer pool.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	snaps := Watch(ctx, bus, pool, func(ctx context.Context) (int, error) {
		return 1, nil
	}, "diary_entries")

	receive(t, snaps)
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-snaps:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel was not closed after cancel")
		}
	}
}
