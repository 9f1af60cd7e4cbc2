package live

import (
	"context"

	"github.com/julianstephens/easydiary/internal/worker"
)

// Snapshot is one emission of an observed query
type Snapshot[T any] struct {
	Value T
	Err   error
}

// Loader runs the observed query
type Loader[T any] func(ctx context.Context) (T, error)

// Watch emits the result of load immediately and again after every change
// to one of tables, until ctx is cancelled. Loads run on pool. Changes that
// arrive while a load is running or while the consumer has not yet received
// the last snapshot collapse into a single reload.
//
// The returned channel is closed when ctx is done or the bus is closed.
func Watch[T any](ctx context.Context, bus *Bus, pool *worker.Pool, load Loader[T], tables ...string) <-chan Snapshot[T] {
	out := make(chan Snapshot[T])

	// subscribe before the first load so no commit slips between them
	dirty, _ := bus.Subscribe(ctx, tables...)

	go func() {
		defer close(out)

		for {
			value, err := worker.Submit(ctx, pool, func(ctx context.Context) (T, error) {
				return load(ctx)
			}).Await(ctx)
			if ctx.Err() != nil {
				return
			}

			select {
			case out <- Snapshot[T]{Value: value, Err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case _, ok := <-dirty:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
