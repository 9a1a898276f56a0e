package rabbit

import (
	"context"

	"github.com/rabbitmq/amqp091-go"
)

// Channel es el subconjunto de *amqp091.Channel que usa el paquete; los tests
// lo reemplazan por un mock.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

var _ Channel = (*amqp091.Channel)(nil)

// Envelope es el formato común de los mensajes entre servicios.
type Envelope[T any] struct {
	CorrelationID string `json:"correlation_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Message       T      `json:"message"`
}
