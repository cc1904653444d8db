package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"machinedash/config"
	"machinedash/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitMQService publishes availability reports to an exchange
type RabbitMQService struct {
	config  *config.Config
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewRabbitMQService creates a new RabbitMQ publisher and connects it
func NewRabbitMQService(cfg *config.Config, logger *zap.Logger) (*RabbitMQService, error) {
	service := &RabbitMQService{
		config: cfg,
		logger: logger,
	}

	if err := service.connect(context.Background()); err != nil {
		return nil, err
	}

	return service, nil
}

// connect establishes connection to RabbitMQ and declares the report exchange.
// It gives up between attempts once ctx is done.
func (r *RabbitMQService) connect(ctx context.Context) error {
	var err error

	r.logger.Info("Connecting to RabbitMQ", zap.String("exchange", r.config.RabbitMQExchange))

	// Connect to RabbitMQ with retry
	maxRetries := 5
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("rabbitmq connect cancelled: %w", ctxErr)
		}

		r.conn, err = amqp.Dial(r.config.RabbitMQURL)
		if err == nil {
			break
		}

		r.logger.Warn("Failed to connect to RabbitMQ",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("rabbitmq connect cancelled: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
		}
	}

	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
	}

	r.logger.Info("Connected to RabbitMQ successfully")

	r.channel, err = r.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	// Topic exchange so consumers can bind on the routing key they care about
	err = r.channel.ExchangeDeclare(
		r.config.RabbitMQExchange, // name
		"topic",                   // type
		true,                      // durable
		false,                     // auto-deleted
		false,                     // internal
		false,                     // no-wait
		nil,                       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	r.logger.Info("Exchange declared", zap.String("exchange", r.config.RabbitMQExchange))
	return nil
}

func (r *RabbitMQService) Name() string {
	return "rabbitmq"
}

// SendReport publishes the report as a persistent JSON message, reconnecting once if the
// connection was dropped since the last publish.
func (r *RabbitMQService) SendReport(ctx context.Context, report *models.Report) error {
	body, err := marshalReport(report)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || r.conn.IsClosed() {
		r.logger.Warn("RabbitMQ connection lost, reconnecting")
		if err := r.connect(ctx); err != nil {
			return err
		}
	}

	err = r.channel.PublishWithContext(ctx,
		r.config.RabbitMQExchange,   // exchange
		r.config.RabbitMQRoutingKey, // routing key
		false,                       // mandatory
		false,                       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    report.ID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    report.GeneratedAt,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	r.logger.Debug("Published report to RabbitMQ",
		zap.String("report_id", report.ID),
		zap.String("routing_key", r.config.RabbitMQRoutingKey))

	return nil
}

// Close gracefully closes RabbitMQ connection
func (r *RabbitMQService) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("Closing RabbitMQ connection")

	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			r.logger.Error("Error closing channel", zap.Error(err))
		}
	}

	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			r.logger.Error("Error closing connection", zap.Error(err))
			return err
		}
	}

	r.logger.Info("RabbitMQ connection closed")
	return nil
}
