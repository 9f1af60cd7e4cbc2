// Package worker schedules storage calls on a bounded set of goroutines.
// Callers get a Future back immediately and never block on submission.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/julianstephens/easydiary/internal/constants"
	"github.com/julianstephens/easydiary/internal/logger"
)

// ErrPoolClosed is returned by futures submitted after Close
var ErrPoolClosed = errors.New("worker pool closed")

// Pool bounds the number of jobs running at once.
// Submitted jobs run to completion even if the submitting context is cancelled.
type Pool struct {
	sem  *semaphore.Weighted
	size int

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a pool running at most size jobs concurrently
func New(size int) *Pool {
	if size <= 0 {
		size = constants.DefaultWorkers
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

// Size returns the concurrency limit
func (p *Pool) Size() int {
	return p.size
}

// Future is the pending result of a submitted job
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Done is closed once the job has finished
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the job finishes or ctx is done. Giving up on the
// wait does not stop the job.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Resolved returns an already completed future
func Resolved[T any](value T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: value, err: err}
	close(f.done)
	return f
}

// Submit schedules fn on the pool. The job receives a context that keeps the
// values of ctx but ignores its cancellation.
func Submit[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		f.err = ErrPoolClosed
		close(f.done)
		return f
	}
	p.wg.Add(1)
	p.mu.Unlock()

	jobCtx := context.WithoutCancel(ctx)
	go func() {
		defer p.wg.Done()
		defer close(f.done)

		// Acquire only fails on context cancellation, which jobCtx never reports
		if err := p.sem.Acquire(jobCtx, 1); err != nil {
			f.err = err
			return
		}
		defer p.sem.Release(1)

		defer func() {
			if r := recover(); r != nil {
				logger.Error("worker job panicked", "panic", r)
				f.err = fmt.Errorf("worker job panicked: %v", r)
			}
		}()
		f.value, f.err = fn(jobCtx)
	}()
	return f
}

// Go schedules a job without a result
func (p *Pool) Go(ctx context.Context, fn func(ctx context.Context) error) *Future[struct{}] {
	return Submit(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
}

// Close stops accepting jobs and waits for in-flight ones, or for ctx
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for workers: %w", ctx.Err())
	}
}
