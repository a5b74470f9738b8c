package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/appgenerator/waitlist-service/internal/worker/queue"
	"github.com/rs/zerolog"
)

type EmailWorker interface {
	Start(ctx context.Context) error
	Stop() error
	GetStats() WorkerStats
}

type WorkerStats struct {
	BusyWorkers    int `json:"busy_workers"`
	TotalProcessed int `json:"total_processed"`
	FailedJobs     int `json:"failed_jobs"`
	QueueLength    int `json:"queue_length"`
}

type emailWorker struct {
	workerPool    *WorkerPool
	queueConsumer queue.RabbitMQConsumer
	handler       queue.TaskHandler
	logger        zerolog.Logger
	stats         WorkerStats
	statsMutex    sync.RWMutex
	startTime     time.Time
	done          chan struct{}
}

func NewEmailWorker(
	workerPool *WorkerPool,
	queueConsumer queue.RabbitMQConsumer,
	handler queue.TaskHandler,
	logger zerolog.Logger,
) EmailWorker {
	return &emailWorker{
		workerPool:    workerPool,
		queueConsumer: queueConsumer,
		handler:       handler,
		logger:        logger,
		startTime:     time.Now(),
		done:          make(chan struct{}),
	}
}

func (w *emailWorker) Start(ctx context.Context) error {
	w.logger.Info().Msg("Starting email worker...")

	if err := w.workerPool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	msgs, err := w.queueConsumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	go w.processMessages(ctx, msgs)

	w.logger.Info().Msg("Email worker started successfully")
	return nil
}

// Stop cancels the consumer first so nothing is submitted to a stopped pool,
// then drains the pool.
func (w *emailWorker) Stop() error {
	w.logger.Info().Msg("Stopping email worker...")

	if err := w.queueConsumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close queue consumer")
	}

	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
		w.logger.Warn().Msg("Timed out waiting for message loop to exit")
	}

	if err := w.workerPool.Stop(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to stop worker pool")
	}

	stats := w.GetStats()
	w.logger.Info().
		Int("total_processed", stats.TotalProcessed).
		Int("failed_jobs", stats.FailedJobs).
		Dur("uptime", time.Since(w.startTime)).
		Msg("Email worker stopped")

	return nil
}

func (w *emailWorker) processMessages(ctx context.Context, msgs <-chan queue.RabbitMQMessage) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping message processing")
			return
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Warn().Msg("Message channel closed")
				return
			}

			err := w.workerPool.Submit(func() {
				w.complete(msg, w.processMessage(ctx, msg))
			})
			if err != nil {
				// Never attempted, so it is safe to hand back to the broker.
				w.logger.Error().Err(err).Msg("Failed to schedule email task")
				if nackErr := msg.Nack(false, true); nackErr != nil {
					w.logger.Error().Err(nackErr).Msg("Failed to nack message")
				}
			}
		}
	}
}

// complete settles a message after its single attempt. Only failures that
// happen before a send could have started are nacked, and never requeued.
func (w *emailWorker) complete(msg queue.RabbitMQMessage, err error) {
	if err == nil {
		if ackErr := msg.Ack(false); ackErr != nil {
			w.logger.Error().Err(ackErr).Msg("Failed to ack message")
		}

		w.statsMutex.Lock()
		w.stats.TotalProcessed++
		w.statsMutex.Unlock()
		return
	}

	w.logger.Error().Err(err).Str("message_type", msg.Type).Msg("Failed to process message")

	w.statsMutex.Lock()
	w.stats.FailedJobs++
	w.statsMutex.Unlock()

	if isPermanentError(err) {
		if ackErr := msg.Ack(false); ackErr != nil {
			w.logger.Error().Err(ackErr).Msg("Failed to ack message")
		}
		return
	}

	if nackErr := msg.Nack(false, false); nackErr != nil {
		w.logger.Error().Err(nackErr).Msg("Failed to nack message")
	}
}

func (w *emailWorker) processMessage(ctx context.Context, msg queue.RabbitMQMessage) error {
	task, err := queue.DecodeEmailTask(msg.Body)
	if err != nil {
		return permanent(err)
	}

	w.logger.Info().
		Str("task_type", task.Type.String()).
		Str("submission_id", task.SubmissionID).
		Msg("Processing email task")

	if err := w.handler.HandleEmailTask(ctx, task); err != nil {
		if errors.Is(err, queue.ErrMalformedTask) {
			return permanent(err)
		}
		return err
	}

	return nil
}

func (w *emailWorker) GetStats() WorkerStats {
	w.statsMutex.RLock()
	stats := w.stats
	w.statsMutex.RUnlock()

	queueLength, err := w.queueConsumer.GetQueueLength()
	if err != nil {
		w.logger.Debug().Err(err).Msg("Failed to get queue length")
	} else {
		stats.QueueLength = queueLength
	}

	stats.BusyWorkers = w.workerPool.GetBusyWorkers()

	return stats
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return permanentError{err: err}
}

func isPermanentError(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
