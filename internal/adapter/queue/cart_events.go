package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aq2208/storefront-api/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeName = "cart.events"

// RabbitCartEvents implements usecase.CartEvents on a topic exchange.
// Routing key is the event type (cart.item_added, cart.cleared, ...);
// consumers declare and bind their own queues.
type RabbitCartEvents struct {
	ch *amqp.Channel
}

// NewRabbitCartEvents declares the exchange once at startup and enables
// publisher confirms.
func NewRabbitCartEvents(ch *amqp.Channel) (*RabbitCartEvents, error) {
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}
	return &RabbitCartEvents{ch: ch}, nil
}

func (p *RabbitCartEvents) Publish(ctx context.Context, msg usecase.CartEventMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient, // a lost notification is acceptable
		Body:         body,
	}
	if err := p.ch.PublishWithContext(
		ctx,
		exchangeName,
		msg.Type, // routing key
		false,    // mandatory
		false,    // immediate
		pub,
	); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

var _ usecase.CartEvents = (*RabbitCartEvents)(nil)
