package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Consumer listens to the decision queue and records each notification as
// a structured log line and, when a log file is configured, as a
// human-readable line appended to that file.  It stands in for the
// notification surface during local runs.
type Consumer struct {
	url     string
	queue   string
	logFile string
	log     zerolog.Logger
}

// NewConsumer creates a consumer.  An empty logFile disables the file sink.
func NewConsumer(url, queue, logFile string, log zerolog.Logger) *Consumer {
	if queue == "" {
		queue = DecisionQueueName
	}
	return &Consumer{url: url, queue: queue, logFile: logFile, log: log.With().Str("component", "decision-consumer").Logger()}
}

// Run connects to RabbitMQ and consumes until ctx is cancelled.  Broker
// failures are retried with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("set QoS failed")
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Info().Str("queue", c.queue).Msg("consuming decisions")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(d.Body); err != nil {
				c.log.Error().Err(err).Str("message_id", d.MessageId).Msg("handle message failed")
				_ = d.Nack(false, false) // do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(body []byte) error {
	var msg DecisionMade
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if msg.EntryID == 0 {
		return errors.New("message without fila_espera_id")
	}

	c.log.Info().
		Uint64("entry_id", msg.EntryID).
		Uint64("advertiser_id", msg.AdvertiserID).
		Uint64("requester_id", msg.RequesterID).
		Str("decision", string(msg.Decision)).
		Msg("waitlist decision received")

	if c.logFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.logFile), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(msg)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(msg DecisionMade) string {
	line := fmt.Sprintf("[%s] Waitlist %s | fila_espera_id=%d | anunciante_id=%d | usuario_id=%d | titulo=%q",
		msg.DecidedAt, msg.Decision, msg.EntryID, msg.AdvertiserID, msg.RequesterID, msg.Title)
	if msg.CreatedEventID != 0 {
		line += fmt.Sprintf(" | evento_criado_id=%d", msg.CreatedEventID)
	}
	if msg.RejectReason != "" {
		line += fmt.Sprintf(" | motivo=%q", msg.RejectReason)
	}
	if msg.SuggestedDate != "" {
		line += fmt.Sprintf(" | sugestao=%s %s", msg.SuggestedDate, msg.SuggestedTime)
	}
	return line + "\n"
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
