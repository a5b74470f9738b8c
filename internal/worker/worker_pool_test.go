package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	pool := NewWorkerPool(3, zerolog.Nop())
	require.NoError(t, pool.Start(context.Background()))

	var ran atomic.Int32
	for i := 0; i < 20; i++ {
		require.NoError(t, pool.Submit(func() { ran.Add(1) }))
	}

	require.NoError(t, pool.Stop())
	assert.Equal(t, int32(20), ran.Load())
}

func TestWorkerPool_RecoversFromPanic(t *testing.T) {
	pool := NewWorkerPool(1, zerolog.Nop())
	require.NoError(t, pool.Start(context.Background()))

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, pool.Submit(func() { panic("boom") }))
	require.NoError(t, pool.Submit(func() { wg.Done() }))

	wg.Wait()
	require.NoError(t, pool.Stop())
	assert.Zero(t, pool.GetBusyWorkers())
}

func TestWorkerPool_RejectsAfterStop(t *testing.T) {
	pool := NewWorkerPool(1, zerolog.Nop())
	require.NoError(t, pool.Start(context.Background()))
	require.NoError(t, pool.Stop())
	require.NoError(t, pool.Stop())

	assert.ErrorIs(t, pool.Submit(func() {}), ErrPoolStopped)
	assert.ErrorIs(t, pool.Start(context.Background()), ErrPoolStopped)
}

func TestWorkerPool_FullQueueTimesOut(t *testing.T) {
	pool := NewWorkerPool(1, zerolog.Nop())
	pool.submitTimeout = 10 * time.Millisecond

	// Not started: nothing drains the queue.
	for i := 0; i < cap(pool.tasks); i++ {
		require.NoError(t, pool.Submit(func() {}))
	}
	assert.Equal(t, cap(pool.tasks), pool.GetQueueLength())
	assert.ErrorIs(t, pool.Submit(func() {}), ErrPoolFull)
}
