package app

import (
	"context"
	"fmt"

	"github.com/appgenerator/waitlist-service/internal/config"
	"github.com/appgenerator/waitlist-service/internal/service"
	"github.com/appgenerator/waitlist-service/internal/service/integration"
	"github.com/appgenerator/waitlist-service/internal/service/storage"
	"github.com/appgenerator/waitlist-service/internal/worker"
	"github.com/appgenerator/waitlist-service/internal/worker/queue"
	"github.com/appgenerator/waitlist-service/pkg/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// NewDocumentService connects the optional MinIO document catalog. When
// storage is disabled or unreachable the service runs without it.
func NewDocumentService(cfg *config.Config, log zerolog.Logger) service.DocumentService {
	var store storage.DocumentStore

	if cfg.Storage.Enabled {
		minioStore, err := storage.NewMinIOStore(
			cfg.Storage.Endpoint,
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			cfg.Storage.Bucket,
			cfg.Storage.Region,
			cfg.Storage.UseSSL,
			cfg.Storage.ConnectTimeout,
			cfg.Storage.PresignTTL,
			log,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create MinIO client; document catalog disabled")
		} else {
			store = minioStore
		}
	}

	return service.NewDocumentService(store, log)
}

func NewTaskHandler(cfg *config.Config, documents service.DocumentService, log zerolog.Logger) queue.TaskHandler {
	emailClient := integration.NewEmailClient(
		cfg.Email.ResendAPIKey,
		cfg.Email.From,
		cfg.Email.OwnerAddress,
		cfg.Email.Timeout,
		log,
	)
	return queue.NewEmailTaskHandler(emailClient, documents, log)
}

// QueueWorker owns the RabbitMQ connection an email worker consumes from.
type QueueWorker struct {
	emailWorker worker.EmailWorker
	conn        *amqp.Connection
	channel     *amqp.Channel
	logger      zerolog.Logger
}

func NewQueueWorker(cfg *config.Config, handler queue.TaskHandler, log zerolog.Logger) (*QueueWorker, error) {
	conn, err := rabbitmq.NewConnection(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	channel, err := rabbitmq.NewChannel(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = integration.DeclareTopology(channel, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.QueueName, cfg.RabbitMQ.RoutingKey)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	consumer := queue.NewRabbitMQConsumer(
		channel,
		cfg.RabbitMQ.QueueName,
		cfg.RabbitMQ.ConsumerTag,
		cfg.RabbitMQ.PrefetchCount,
		log,
	)

	emailWorker := worker.NewEmailWorker(
		worker.NewWorkerPool(cfg.Worker.MaxWorkers, log),
		consumer,
		handler,
		log,
	)

	return &QueueWorker{
		emailWorker: emailWorker,
		conn:        conn,
		channel:     channel,
		logger:      log,
	}, nil
}

func (q *QueueWorker) Start(ctx context.Context) error {
	if err := q.emailWorker.Start(ctx); err != nil {
		return fmt.Errorf("failed to start email worker: %w", err)
	}
	return nil
}

func (q *QueueWorker) Stop() error {
	if err := q.emailWorker.Stop(); err != nil {
		q.logger.Error().Err(err).Msg("Failed to stop email worker")
	}

	if err := q.channel.Close(); err != nil {
		q.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
	}
	if err := q.conn.Close(); err != nil {
		q.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
	}

	return nil
}

// RunWorker consumes email tasks until ctx is done. It needs RabbitMQ but no
// database: every task carries what its email needs.
func RunWorker(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	documents := NewDocumentService(cfg, log)

	qw, err := NewQueueWorker(cfg, NewTaskHandler(cfg, documents, log), log)
	if err != nil {
		return fmt.Errorf("failed to connect email worker: %w", err)
	}

	if err := qw.Start(ctx); err != nil {
		qw.Stop()
		return err
	}

	log.Info().Str("queue", cfg.RabbitMQ.QueueName).Msg("Email worker running")
	<-ctx.Done()

	return qw.Stop()
}
