package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ExchangeName is the durable topic exchange booking events go to.
const ExchangeName = "booking.events"

// Publisher publishes booking events as persistent JSON messages.  Publishing
// is best effort: callers log a failure and carry on, a booking is never
// rolled back because the broker is down.
type Publisher struct {
	mu   sync.Mutex // amqp channels are not safe for concurrent publishes
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger
}

// NewPublisher dials the broker and declares the exchange (idempotent).
func NewPublisher(url string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, log: log}, nil
}

// PublishBookingCreated publishes ev under RoutingBookingCreated.
func (p *Publisher) PublishBookingCreated(ctx context.Context, ev BookingCreatedEvent) error {
	return p.publish(ctx, RoutingBookingCreated, ev.EventID, ev)
}

// PublishBookingMoved publishes ev under RoutingBookingMoved.
func (p *Publisher) PublishBookingMoved(ctx context.Context, ev BookingMovedEvent) error {
	return p.publish(ctx, RoutingBookingMoved, ev.EventID, ev)
}

func (p *Publisher) publish(ctx context.Context, key, id string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    id,
		Timestamp:    time.Now().UTC(),
		Type:         key,
		Body:         body,
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, ExchangeName, key, false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	p.log.Debug("event published", zap.String("routing_key", key), zap.String("event_id", id))
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
