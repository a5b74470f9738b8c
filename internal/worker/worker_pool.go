package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrPoolFull    = errors.New("worker pool task queue is full")
	ErrPoolStopped = errors.New("worker pool is stopped")
)

type Task func()

type WorkerPool struct {
	tasks         chan Task
	wg            sync.WaitGroup
	busyWorkers   int
	maxWorkers    int
	submitTimeout time.Duration
	logger        zerolog.Logger
	mu            sync.RWMutex
	stateMu       sync.RWMutex
	started       bool
	stopped       bool
}

func NewWorkerPool(maxWorkers int, logger zerolog.Logger) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		tasks:         make(chan Task, maxWorkers*10),
		maxWorkers:    maxWorkers,
		submitTimeout: time.Second,
		logger:        logger,
	}
}

// Start launches the workers. Calling it more than once is a no-op.
func (wp *WorkerPool) Start(ctx context.Context) error {
	wp.stateMu.Lock()
	defer wp.stateMu.Unlock()
	if wp.stopped {
		return ErrPoolStopped
	}
	if wp.started {
		return nil
	}
	wp.started = true

	wp.logger.Info().Int("max_workers", wp.maxWorkers).Msg("Starting worker pool")

	for i := 0; i < wp.maxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}

	return nil
}

// Stop rejects new tasks and waits for queued ones to finish.
func (wp *WorkerPool) Stop() error {
	wp.stateMu.Lock()
	if wp.stopped {
		wp.stateMu.Unlock()
		return nil
	}
	wp.stopped = true
	close(wp.tasks)
	wp.stateMu.Unlock()

	wp.wg.Wait()

	wp.logger.Info().Msg("Worker pool stopped")
	return nil
}

// Submit queues task, waiting up to a second when the queue is full.
func (wp *WorkerPool) Submit(task Task) error {
	wp.stateMu.RLock()
	defer wp.stateMu.RUnlock()
	if wp.stopped {
		return ErrPoolStopped
	}

	select {
	case wp.tasks <- task:
		return nil
	default:
	}

	wp.logger.Warn().Msg("Worker pool task queue is full")
	timer := time.NewTimer(wp.submitTimeout)
	defer timer.Stop()
	select {
	case wp.tasks <- task:
		return nil
	case <-timer.C:
		wp.logger.Error().Msg("Failed to submit task to worker pool (timeout)")
		return ErrPoolFull
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	wp.logger.Debug().Int("worker_id", id).Msg("Worker started")

	for task := range wp.tasks {
		wp.run(id, task)
	}

	wp.logger.Debug().Int("worker_id", id).Msg("Worker stopped")
}

func (wp *WorkerPool) run(id int, task Task) {
	wp.mu.Lock()
	wp.busyWorkers++
	wp.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error().
				Int("worker_id", id).
				Interface("panic", r).
				Msg("Worker recovered from panic")
		}

		wp.mu.Lock()
		wp.busyWorkers--
		wp.mu.Unlock()
	}()

	task()
}

func (wp *WorkerPool) GetBusyWorkers() int {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.busyWorkers
}

func (wp *WorkerPool) GetQueueLength() int {
	return len(wp.tasks)
}
