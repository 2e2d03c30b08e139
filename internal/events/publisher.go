package events

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys for lifecycle events published to the orders exchange.
const (
	OrderCreated          = "order.created"
	OrderStatusChanged    = "order.status_changed"
	SubscriptionActivated = "subscription.activated"
	SubscriptionCancelled = "subscription.cancelled"
)

// Publisher fans out lifecycle events over a durable topic exchange.
// Publication is best-effort: failures are logged and never propagated, so a
// broker outage cannot fail a committed business transaction. A nil *Publisher
// is valid and drops all events, which keeps the broker optional in dev.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *log.Logger
}

func NewPublisher(url, exchange string, logger *log.Logger) (*Publisher, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

// Publish emits one JSON event. Errors are logged, never returned.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload interface{}) {
	if p == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Printf("events: marshal %s: %v", routingKey, err)
		return
	}
	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			ContentType:  "application/json",
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Printf("events: publish %s: %v", routingKey, err)
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
