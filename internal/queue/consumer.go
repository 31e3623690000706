package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const journalQueueName = "nightclub.journal"

// JournalConsumer appends every lifecycle message published on the
// exchange to a single-line journal file.
type JournalConsumer struct {
	URL      string
	Exchange string
	Path     string
	Log      *logrus.Logger
}

// Run connects to RabbitMQ, binds the durable journal queue to every
// routing key of the exchange and writes each message to the journal.
// It reconnects with backoff until ctx is cancelled.  A message that
// cannot be handled is rejected without requeue so one bad payload
// cannot wedge the queue.
func (j *JournalConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(j.URL)
		if err != nil {
			j.Log.WithError(err).Warnf("journal-consumer: dial failed; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = j.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		j.Log.WithError(err).Warn("journal-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (j *JournalConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		j.Log.WithError(err).Warn("journal-consumer: set QoS failed")
	}
	if err := declareExchange(ch, j.Exchange); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(journalQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(journalQueueName, "#", j.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	msgs, err := ch.Consume(journalQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := j.handle(d.RoutingKey, d.Body); err != nil {
				j.Log.WithError(err).WithField("routing_key", d.RoutingKey).Error("journal-consumer: handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (j *JournalConsumer) handle(routingKey string, body []byte) error {
	line, err := FormatJournalLine(routingKey, body)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(j.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(j.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// FormatJournalLine renders one message as a single human friendly line
// terminated by a newline.
func FormatJournalLine(routingKey string, body []byte) (string, error) {
	switch {
	case strings.HasPrefix(routingKey, "booking."):
		var m BookingMessage
		if err := json.Unmarshal(body, &m); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", routingKey, err)
		}
		line := fmt.Sprintf("[%s] %s | booking_id=%d | event_id=%d | seat_id=%d | user_id=%d | actor_id=%d | status=%s | price=%d cents",
			m.OccurredAt, routingKey, m.BookingID, m.EventID, m.SeatID, m.UserID, m.ActorID, m.Status, m.PriceCents)
		if m.PaymentMethod != "" {
			line += fmt.Sprintf(" | method=%s | ref=%s", m.PaymentMethod, m.PaymentRef)
		}
		if m.Refunded {
			line += " | refunded=true"
		}
		return line + "\n", nil
	case strings.HasPrefix(routingKey, "event."):
		var m EventStatusMessage
		if err := json.Unmarshal(body, &m); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", routingKey, err)
		}
		return fmt.Sprintf("[%s] %s | event_id=%d | actor_id=%d | %s -> %s | deleted=%t | cancelled_pending=%d | cancelled_confirmed=%d | refunded=%d\n",
			m.OccurredAt, routingKey, m.EventID, m.ActorID, m.OldStatus, m.NewStatus, m.Deleted,
			m.CancelledPending, m.CancelledConfirmed, m.Refunded), nil
	}
	return "", fmt.Errorf("unknown routing key %q", routingKey)
}

// sleep waits for d or until ctx is done; it reports whether the full
// wait elapsed.
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
