package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the topic exchange integration events are published to.
const DefaultExchange = "planner.events"

const amqpDialAttempts = 5

// AMQPPublisher publishes events to a RabbitMQ topic exchange with routing
// key "tasks.changed.<tenant>".
type AMQPPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher dials the broker, retrying with an increasing backoff, and
// declares the exchange.
func NewAMQPPublisher(ctx context.Context, url, exchange string) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	var conn *amqp.Connection
	var err error
	for attempt := 1; attempt <= amqpDialAttempts; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}

		slog.Warn("failed to connect to RabbitMQ, retrying",
			"attempt", attempt,
			"max_attempts", amqpDialAttempts,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to RabbitMQ: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ after %d attempts: %w", amqpDialAttempts, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// RoutingKey returns the routing key for a tenant's events.
func RoutingKey(tenantID string) string {
	return "tasks.changed." + tenantID
}

// PublishTasksChanged publishes the JSON encoded event as a persistent message.
func (p *AMQPPublisher) PublishTasksChanged(ctx context.Context, event TasksChanged) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		RoutingKey(event.TenantID),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.OccurredAt,
			Type:         "tasks.changed",
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		slog.Warn("failed to close AMQP channel", "error", err)
	}
	return p.conn.Close()
}
