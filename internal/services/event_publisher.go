package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Homestay event types
const (
	EventHomestaySaved   = "homestay.saved"
	EventHomestayDeleted = "homestay.deleted"
)

// HomestayEvent is published after a homestay changes
type HomestayEvent struct {
	Type       string    `json:"type"`
	Action     string    `json:"action,omitempty"` // created or updated for homestay.saved
	HomestayID string    `json:"homestayId"`
	Slug       string    `json:"slug,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventPublisher delivers homestay events
type EventPublisher interface {
	Publish(ctx context.Context, event HomestayEvent) error
}

// NoopPublisher drops every event
type NoopPublisher struct{}

// Publish implements EventPublisher
func (NoopPublisher) Publish(ctx context.Context, event HomestayEvent) error {
	return nil
}

const (
	defaultDialTimeout = 3 * time.Second
	amqpHeartbeat      = 10 * time.Second
	amqpLocale         = "en_US"
)

// AMQPPublisher publishes homestay events to a durable RabbitMQ queue.
// The connection is opened lazily and re-dialed after it drops.
type AMQPPublisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	logger      *logrus.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher creates a publisher for the given broker URL and queue.
// dialTimeout bounds the TCP connect and the AMQP handshake.
func NewAMQPPublisher(url, queue string, dialTimeout time.Duration, logger *logrus.Logger) *AMQPPublisher {
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	return &AMQPPublisher{url: url, queue: queue, dialTimeout: dialTimeout, logger: logger}
}

// Publish implements EventPublisher
func (p *AMQPPublisher) Publish(ctx context.Context, event HomestayEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt.UTC(),
			Type:         event.Type,
			Body:         body,
		},
	)
	if err != nil {
		p.reset()
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.WithFields(logrus.Fields{
		"event":       event.Type,
		"homestay_id": event.HomestayID,
	}).Debug("Published homestay event")
	return nil
}

// channel returns an open channel, dialing when needed. Caller holds p.mu.
func (p *AMQPPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	timeout := p.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", ctx.Err())
		}
		if left < timeout {
			timeout = left
		}
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: amqpHeartbeat,
		Locale:    amqpLocale,
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		p.queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", p.queue, err)
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

// Close closes the broker connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
