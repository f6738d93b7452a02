package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher sends decision notifications to RabbitMQ.  Each publish dials
// its own connection; decisions are rare enough that pooling is not needed.
// Errors are logged and returned so callers can ignore failures without
// interrupting the request flow.
type Publisher struct {
	url   string
	queue string
	log   zerolog.Logger
}

// NewPublisher returns a publisher for the given broker URL and queue.
func NewPublisher(url, queue string, log zerolog.Logger) *Publisher {
	if queue == "" {
		queue = DecisionQueueName
	}
	return &Publisher{url: url, queue: queue, log: log.With().Str("component", "publisher").Logger()}
}

// PublishDecision publishes msg to the decision queue as a persistent JSON
// message.
func (p *Publisher) PublishDecision(ctx context.Context, msg DecisionMade) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Str("queue", p.queue).Msg("rabbitmq: queue declare failed")
		return err
	}

	pub, err := newPublishing(msg)
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.log.Warn().Err(err).Uint64("entry_id", msg.EntryID).Msg("rabbitmq: publish failed")
		return err
	}
	p.log.Debug().Uint64("entry_id", msg.EntryID).Str("decision", string(msg.Decision)).Msg("decision published")
	return nil
}

func newPublishing(msg DecisionMade) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         "waitlist." + string(msg.Decision),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}
