package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_ReturnsValue(t *testing.T) {
	p := New(2)
	defer p.Close(context.Background())

	f := Submit(context.Background(), p, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestSubmit_PropagatesError(t *testing.T) {
	p := New(1)
	defer p.Close(context.Background())

	boom := errors.New("boom")
	_, err := Submit(context.Background(), p, func(ctx context.Context) (string, error) {
		return "", boom
	}).Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSubmit_DoesNotBlockCaller(t *testing.T) {
	p := New(1)
	defer p.Close(context.Background())

	release := make(chan struct{})
	first := p.Go(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	})

	submitted := make(chan struct{})
	var second *Future[struct{}]
	go func() {
		second = p.Go(context.Background(), func(ctx context.Context) error { return nil })
		close(submitted)
	}()

	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked while the pool was saturated")
	}

	close(release)
	_, err := first.Await(context.Background())
	require.NoError(t, err)
	_, err = second.Await(context.Background())
	require.NoError(t, err)
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const size = 3
	p := New(size)

	var running, peak int32
	futures := make([]*Future[struct{}], 0, 20)
	for i := 0; i < 20; i++ {
		futures = append(futures, p.Go(context.Background(), func(ctx context.Context) error {
			n := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		}))
	}

	for _, f := range futures {
		_, err := f.Await(context.Background())
		require.NoError(t, err)
	}
	require.NoError(t, p.Close(context.Background()))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(size))
}

func TestSubmit_JobSurvivesCallerCancel(t *testing.T) {
	p := New(1)
	defer p.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	f := Submit(ctx, p, func(jobCtx context.Context) (bool, error) {
		close(started)
		time.Sleep(10 * time.Millisecond)
		return jobCtx.Err() == nil, nil
	})
	<-started
	cancel()

	ok, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "job context should not observe caller cancellation")
}

func TestAwait_StopsWaitingOnContext(t *testing.T) {
	p := New(1)
	defer p.Close(context.Background())

	release := make(chan struct{})
	defer close(release)
	f := p.Go(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubmit_AfterClose(t *testing.T) {
	p := New(1)
	require.NoError(t, p.Close(context.Background()))

	_, err := Submit(context.Background(), p, func(ctx context.Context) (int, error) {
		return 1, nil
	}).Await(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestSubmit_RecoversPanic(t *testing.T) {
	p := New(1)
	defer p.Close(context.Background())

	_, err := Submit(context.Background(), p, func(ctx context.Context) (int, error) {
		panic("bad job")
	}).Await(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad job")
}

func TestResolved(t *testing.T) {
	f := Resolved("done", nil)
	select {
	case <-f.Done():
	default:
		t.Fatal("resolved future should be done")
	}
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}
