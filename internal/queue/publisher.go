package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends events to RabbitMQ.  Each call dials, declares the target
// queue and publishes one persistent message; publishes are rare enough that
// a pooled connection is not worth its reconnect logic.
type Publisher struct {
	url string
	log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log.Named("publisher")}
}

// Publish never panics; errors are logged and returned so the caller can
// choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	if err := p.publish(ctx, ev); err != nil {
		p.log.Warn("publish failed", zap.String("queue", ev.Queue()), zap.Error(err))
		return err
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := declare(ch, ev.Queue()); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",         // default exchange
		ev.Queue(), // routing key = queue name
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         ev.Queue(),
			Body:         body,
		})
}

// declare makes sure the durable queue exists (idempotent).
func declare(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return q, fmt.Errorf("queue declare %s: %w", name, err)
	}
	return q, nil
}

// NopPublisher drops every event.  Used when EVENTS_ENABLED is off.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
