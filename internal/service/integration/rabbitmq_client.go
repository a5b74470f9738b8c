package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/appgenerator/waitlist-service/pkg/rabbitmq"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// TaskPublisher hands email tasks to whatever executes them.
type TaskPublisher interface {
	PublishEmailTask(ctx context.Context, task *models.EmailTask) error
	Close() error
}

type rabbitMQClient struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
	queueName  string
	logger     zerolog.Logger
}

func NewRabbitMQClient(url, exchange, routingKey, queueName string, logger zerolog.Logger) (TaskPublisher, error) {
	conn, err := rabbitmq.NewConnection(url)
	if err != nil {
		return nil, err
	}

	channel, err := rabbitmq.NewChannel(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := DeclareTopology(channel, exchange, queueName, routingKey); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	logger.Info().
		Str("exchange", exchange).
		Str("queue", queueName).
		Str("routing_key", routingKey).
		Msg("Connected to RabbitMQ")

	return &rabbitMQClient{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		queueName:  queueName,
		logger:     logger,
	}, nil
}

// DeclareTopology declares the durable direct exchange and queue and binds
// them. Publisher and consumer both call it so either can start first.
func DeclareTopology(channel *amqp091.Channel, exchange, queueName, routingKey string) error {
	err := channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		queue.Name, // queue name
		routingKey, // routing key
		exchange,   // exchange
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	return nil
}

func (c *rabbitMQClient) PublishEmailTask(ctx context.Context, task *models.EmailTask) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal email task: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		c.exchange,   // exchange
		c.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Type:         task.Type.String(),
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info().
		Str("task_type", task.Type.String()).
		Str("submission_id", task.SubmissionID).
		Msg("Email task published")

	return nil
}

func (c *rabbitMQClient) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return nil
}
