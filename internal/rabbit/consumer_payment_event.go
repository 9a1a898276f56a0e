package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"storefront-api/internal/model"
)

// Estado que publica la pasarela cuando el cobro se acreditó.
const statusSucceeded = "succeeded"

var ErrMalformedEvent = errors.New("malformed payment event")

type PaymentCompleter interface {
	CompletePaymentByIntent(ctx context.Context, intentID string) (*model.Order, error)
}

type PaymentEvent struct {
	PaymentIntentID string  `json:"paymentIntentId"`
	Status          string  `json:"status"`
	Amount          float64 `json:"amount"`
}

type PaymentEventMessage = Envelope[PaymentEvent]

type PaymentEventConsumer struct {
	Service PaymentCompleter
}

func NewPaymentEventConsumer(s PaymentCompleter) *PaymentEventConsumer {
	return &PaymentEventConsumer{Service: s}
}

// Handle marca la orden como pagada. Los eventos con otro estado se ignoran.
func (c *PaymentEventConsumer) Handle(ctx context.Context, msg []byte) error {
	var event PaymentEventMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.Message.PaymentIntentID == "" {
		return fmt.Errorf("%w: missing paymentIntentId", ErrMalformedEvent)
	}

	log.Printf("[Rabbit] Evento recibido: payment %s (%s) %s", event.Message.PaymentIntentID, event.Message.Status, event.CorrelationID)
	if event.Message.Status != statusSucceeded {
		return nil
	}

	o, err := c.Service.CompletePaymentByIntent(ctx, event.Message.PaymentIntentID)
	if err != nil {
		log.Println("❌ Error marcando pago completo:", err)
		return err
	}

	log.Println("✔ Pago completado para orden:", o.ID.Hex())
	return nil
}
