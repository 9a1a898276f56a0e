package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"storefront-api/internal/notify"

	"github.com/rabbitmq/amqp091-go"
)

const OrderConfirmedExchange = "order_confirmed"

// Publisher es el canal de notificación "queue": publica la confirmación en
// un exchange fanout para que otros servicios (email, CRM) la consuman.
type Publisher struct {
	ch       Channel
	exchange string
	mu       sync.Mutex
}

func NewPublisher(ch Channel) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		OrderConfirmedExchange,
		amqp091.ExchangeFanout,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declaring exchange %s: %w", OrderConfirmedExchange, err)
	}
	return &Publisher{ch: ch, exchange: OrderConfirmedExchange}, nil
}

func (p *Publisher) Name() string { return "queue" }

func (p *Publisher) Send(ctx context.Context, msg notify.Message) error {
	body, err := json.Marshal(Envelope[notify.Message]{
		CorrelationID: msg.CorrelationID,
		Exchange:      p.exchange,
		RoutingKey:    "",
		Message:       msg,
	})
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx,
		p.exchange,
		"", // fanout ignora routing key
		false,
		false,
		amqp091.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp091.Persistent,
			CorrelationId: msg.CorrelationID,
			Timestamp:     time.Now().UTC(),
			Body:          body,
		},
	)
}
