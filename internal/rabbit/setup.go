// setup.go
package rabbit

import (
	"context"
	"fmt"
	"log"

	"github.com/rabbitmq/amqp091-go"
)

const (
	PaymentSucceededExchange = "payment_succeeded"
	paymentEventsQueue       = "storefront_payment_events"
)

// SetupConsumers declara la cola propia, la bindea al exchange fanout de la
// pasarela y arranca el loop de consumo hasta que ctx termine.
func SetupConsumers(ctx context.Context, ch Channel, svc PaymentCompleter) error {
	consumer := NewPaymentEventConsumer(svc)

	// 1. Declarar exchange y queue
	err := ch.ExchangeDeclare(PaymentSucceededExchange, amqp091.ExchangeFanout, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declarando exchange: %w", err)
	}
	q, err := ch.QueueDeclare(
		paymentEventsQueue, // cola exclusiva para este servicio
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declarando queue: %w", err)
	}

	// 2. Bindear al exchange fanout
	err = ch.QueueBind(
		q.Name,
		"", // fanout ignora routing key
		PaymentSucceededExchange,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("binding exchange: %w", err)
	}

	// 3. Consumir (ack manual)
	msgs, err := ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consumiendo queue: %w", err)
	}

	go consume(ctx, msgs, consumer)

	log.Printf("🐰 Suscrito a exchange %s (fanout)", PaymentSucceededExchange)
	return nil
}

// consume confirma cada mensaje procesado. Los que fallan se rechazan sin
// reencolar: no hay reintentos.
func consume(ctx context.Context, msgs <-chan amqp091.Delivery, consumer *PaymentEventConsumer) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				log.Println("🐰 Canal de consumo cerrado")
				return
			}
			if err := consumer.Handle(ctx, m.Body); err != nil {
				log.Printf("❌ Mensaje %s rechazado: %v", m.CorrelationId, err)
				if err := m.Nack(false, false); err != nil {
					log.Println("❌ Error en nack:", err)
				}
				continue
			}
			if err := m.Ack(false); err != nil {
				log.Println("❌ Error en ack:", err)
			}
		}
	}
}
