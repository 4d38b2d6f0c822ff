package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"scantrace-service/internal/domain/repository"
	"scantrace-service/pkg/logger"
)

// AmqpPublisher publishes outcome events to a RabbitMQ queue. Transient
// publish failures are retried a bounded number of times with exponential
// backoff; cancellation of the caller's context stops the retry loop rather
// than re-submitting, so a cancelled publish is never delivered twice.
type AmqpPublisher struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	queueName  string
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

// NewAmqpPublisher connects to the broker and declares the outcome queue
func NewAmqpPublisher(url, queueName string, maxRetries int, backoff time.Duration, logger logger.Logger) (*AmqpPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	return &AmqpPublisher{
		conn:       conn,
		channel:    ch,
		queueName:  queueName,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
	}, nil
}

// Publish sends an outcome event, retrying transient broker failures
func (p *AmqpPublisher) Publish(ctx context.Context, event *repository.OutcomeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome event: %w", err)
	}

	var lastErr error
	delay := p.backoff
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				// Client-initiated cancellation: stop here instead of
				// racing a duplicate submission.
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		lastErr = p.channel.Publish("", p.queueName, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
		if lastErr == nil {
			return nil
		}
		p.logger.Warn("Outcome publish failed, will retry",
			"attempt", attempt+1,
			"queue", p.queueName,
			"error", lastErr)
	}

	return fmt.Errorf("failed to publish outcome event after %d attempts: %w", p.maxRetries+1, lastErr)
}

// Close shuts down the channel and connection
func (p *AmqpPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return fmt.Errorf("error closing RabbitMQ channel: %w", err)
	}
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("error closing RabbitMQ connection: %w", err)
	}
	return nil
}

// NopPublisher is used when no broker is configured
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event *repository.OutcomeEvent) error { return nil }
func (NopPublisher) Close() error                                                      { return nil }
