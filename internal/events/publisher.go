package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers an event to the broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Dialer opens a channel and returns a func that closes it with its connection.
type Dialer func(url string) (Channel, func(), error)

// AMQPPublisher writes persistent JSON messages to a durable queue.
type AMQPPublisher struct {
	url   string
	queue string
	dial  Dialer
}

// NewAMQPPublisher builds a publisher for queue at url.
func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queue, dial: dialAMQP}
}

// WithDialer swaps the broker connection factory.
func (p *AMQPPublisher) WithDialer(d Dialer) *AMQPPublisher {
	p.dial = d
	return p
}

// Publish opens a channel, declares the queue and publishes the event.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	ch, closeFn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer closeFn()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqp queue declare %s: %w", p.queue, err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}

	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     event.ID,
		CorrelationId: event.RequestID,
		Type:          event.Type,
		Timestamp:     time.Now().UTC(),
		Body:          body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("amqp publish %s: %w", event.Type, err)
	}
	return nil
}

func dialAMQP(url string) (Channel, func(), error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, func() {
		_ = ch.Close()
		_ = conn.Close()
	}, nil
}
