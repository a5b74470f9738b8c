package worker

import (
	"context"
	"fmt"

	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/appgenerator/waitlist-service/internal/worker/queue"
	"github.com/rs/zerolog"
)

// LocalDispatcher runs email tasks on an in-process worker pool. It stands in
// for the RabbitMQ publisher when no broker is reachable.
type LocalDispatcher struct {
	workerPool *WorkerPool
	handler    queue.TaskHandler
	logger     zerolog.Logger
}

func NewLocalDispatcher(workerPool *WorkerPool, handler queue.TaskHandler, logger zerolog.Logger) *LocalDispatcher {
	return &LocalDispatcher{
		workerPool: workerPool,
		handler:    handler,
		logger:     logger,
	}
}

func (d *LocalDispatcher) Start(ctx context.Context) error {
	d.logger.Warn().Msg("Email tasks will be handled in-process")
	return d.workerPool.Start(ctx)
}

func (d *LocalDispatcher) PublishEmailTask(ctx context.Context, task *models.EmailTask) error {
	t := *task
	// The task outlives the request that produced it.
	taskCtx := context.WithoutCancel(ctx)

	err := d.workerPool.Submit(func() {
		if err := d.handler.HandleEmailTask(taskCtx, t); err != nil {
			d.logger.Error().
				Err(err).
				Str("task_type", t.Type.String()).
				Str("submission_id", t.SubmissionID).
				Msg("Failed to handle email task")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to dispatch email task: %w", err)
	}

	d.logger.Debug().
		Str("task_type", t.Type.String()).
		Str("submission_id", t.SubmissionID).
		Msg("Email task dispatched")

	return nil
}

// Close drains tasks already queued.
func (d *LocalDispatcher) Close() error {
	return d.workerPool.Stop()
}
