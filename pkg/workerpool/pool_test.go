package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_SubmitReturnsTaskError(t *testing.T) {
	p := New(&Config{MaxWorkers: 2, QueueSize: 4}, nil)
	defer p.Shutdown(context.Background())

	boom := errors.New("boom")
	err := p.Submit(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	err = p.Submit(context.Background(), func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestPool_FullQueue(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 1}, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.SubmitAsync(context.Background(), func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	// one slot in the queue, then full
	require.NoError(t, p.SubmitAsync(context.Background(), func(context.Context) error { return nil }))
	assert.ErrorIs(t, p.SubmitAsync(context.Background(), func(context.Context) error { return nil }), ErrWorkerPoolFull)

	close(release)
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestPool_ShutdownDrainsAndRejects(t *testing.T) {
	p := New(&Config{MaxWorkers: 2, QueueSize: 8}, nil)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.SubmitAsync(context.Background(), func(context.Context) error {
			time.Sleep(5 * time.Millisecond)
			ran.Add(1)
			return nil
		}))
	}

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Equal(t, int32(5), ran.Load())
	assert.True(t, p.GetMetrics().IsClosed)
	assert.ErrorIs(t, p.Submit(context.Background(), func(context.Context) error { return nil }), ErrWorkerPoolClosed)
}

func TestPool_CancelledBeforeStart(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 2}, nil)
	defer p.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	done := make(chan error, 1)
	require.NoError(t, p.enqueue(job{ctx: ctx, fn: func(context.Context) error { called = true; return nil }, done: done}))
	assert.ErrorIs(t, <-done, ErrTaskCancelled)
	assert.False(t, called)
}
