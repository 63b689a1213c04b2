package writequeue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SerialisesPerUser(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	var (
		mu      sync.Mutex
		running int
		maxSeen int
		order   []int
	)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := m.Execute(context.Background(), 7, func() error {
				mu.Lock()
				running++
				if running > maxSeen {
					maxSeen = running
				}
				order = append(order, i)
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Len(t, order, 20)
}

func TestManager_IdleWorkerExits(t *testing.T) {
	m := New(&Config{IdleTimeout: 10 * time.Millisecond}, nil)
	defer m.Shutdown(context.Background())

	require.NoError(t, m.Execute(context.Background(), 1, func() error { return nil }))
	assert.Eventually(t, func() bool { return m.ActiveQueues() == 0 }, time.Second, 5*time.Millisecond)

	// a new write after idle exit starts a fresh worker
	require.NoError(t, m.Execute(context.Background(), 1, func() error { return nil }))
}

func TestManager_ClosedRejects(t *testing.T) {
	m := New(nil, nil)
	require.NoError(t, m.Shutdown(context.Background()))
	assert.ErrorIs(t, m.Execute(context.Background(), 1, func() error { return nil }), ErrWriteQueueClosed)
}

func TestManager_PanicBecomesError(t *testing.T) {
	m := New(nil, nil)
	defer m.Shutdown(context.Background())

	err := m.Execute(context.Background(), 3, func() error { panic("bad write") })
	assert.Error(t, err)
	assert.NoError(t, m.Execute(context.Background(), 3, func() error { return nil }))
}
