// Package events delivers domain events to a RabbitMQ topic exchange and
// fans them out to several publishers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// Channel is the subset of *amqp.Channel used by AMQPPublisher
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Envelope is the body of every published message
type Envelope struct {
	Type       string      `json:"type"`
	Data       interface{} `json:"data"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// AMQPPublisher publishes JSON events to a topic exchange using the
// routing key as the topic.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  Channel
	exchange string
	logger   *slog.Logger
}

// NewAMQPPublisher connects to url and declares exchange as a durable topic exchange
func NewAMQPPublisher(url, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	p := NewAMQPPublisherWithChannel(channel, exchange, logger)
	p.conn = conn
	return p, nil
}

// NewAMQPPublisherWithChannel publishes over an already open channel
func NewAMQPPublisherWithChannel(channel Channel, exchange string, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		channel:  channel,
		exchange: exchange,
		logger:   logger,
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now().UTC()
	body, err := json.Marshal(Envelope{Type: routingKey, Data: payload, OccurredAt: now})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now,
		Type:         routingKey,
		Body:         body,
	}
	if err := p.channel.Publish(p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	p.logger.DebugContext(ctx, "event published", "exchange", p.exchange, "routing_key", routingKey, "message_id", msg.MessageId)
	return nil
}

// Close closes the channel and, when owned, the connection
func (p *AMQPPublisher) Close() error {
	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
