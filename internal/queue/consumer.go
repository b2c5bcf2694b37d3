package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ActivityLog appends one line per consumed event to a file.
type ActivityLog struct {
	mu   sync.Mutex
	path string
}

func NewActivityLog(dir string) *ActivityLog {
	return &ActivityLog{path: filepath.Join(dir, "activity.log")}
}

// Append formats the message body for queue and writes it as one line.
func (a *ActivityLog) Append(queue string, body []byte) error {
	line, err := formatLine(queue, body)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(queue string, body []byte) (string, error) {
	switch queue {
	case QueueUserRegistered:
		var ev UserRegisteredEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] User registered | user_id=%d | name=%q | email=%q\n",
			stamp(ev.RegisteredAt), ev.UserID, ev.Name, ev.Email), nil
	case QueueOfferCreated:
		var ev OfferCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Offer created | offer_id=%d | user_id=%d | type=%s | sum=%d | title=%q | categories=%v\n",
			stamp(ev.CreatedAt), ev.OfferID, ev.UserID, ev.Type, ev.Sum, ev.Title, ev.CategoryIDs), nil
	case QueueCommentCreated:
		var ev CommentCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Comment created | comment_id=%d | offer_id=%d | user_id=%d\n",
			stamp(ev.CreatedAt), ev.CommentID, ev.OfferID, ev.UserID), nil
	}
	return "", fmt.Errorf("unknown queue %q", queue)
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// StartEventConsumer connects to RabbitMQ, declares the event queues and
// appends every delivery to the activity log.  It reconnects with
// exponential backoff and returns only when ctx is cancelled.  Messages that
// cannot be handled are rejected without requeue to avoid tight loops.
func StartEventConsumer(ctx context.Context, url string, out *ActivityLog, log *zap.Logger) error {
	log = log.Named("event-consumer")
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, out, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("consume loop ended; reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, out *ActivityLog, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set QoS failed", zap.Error(err))
	}

	queues := []string{QueueUserRegistered, QueueOfferCreated, QueueCommentCreated}
	deliveries := make(chan amqp.Delivery)
	var wg sync.WaitGroup
	for _, name := range queues {
		if _, err := declare(ch, name); err != nil {
			return err
		}
		msgs, err := ch.ConsumeWithContext(ctx, name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range msgs {
				select {
				case deliveries <- d:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(deliveries)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := out.Append(d.RoutingKey, d.Body); err != nil {
				log.Error("handle message failed", zap.String("queue", d.RoutingKey), zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
