// Package notify envía las confirmaciones de orden fuera del camino de la
// actualización. El resultado llega por un canal propio y nunca afecta a la
// orden ya guardada.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-api/internal/model"

	"github.com/google/uuid"
)

// Channel es un medio de entrega (WhatsApp, cola AMQP, ...).
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	CorrelationID string    `json:"correlationId"`
	OrderID       string    `json:"orderId"`
	UserID        string    `json:"userId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	Phone         string    `json:"phone"`
	TotalAmount   float64   `json:"totalAmount"`
	ItemCount     int       `json:"itemCount"`
	Status        string    `json:"status"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Result struct {
	Channel string `json:"channel"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type Report struct {
	CorrelationID string   `json:"correlationId"`
	OrderID       string   `json:"orderId"`
	Results       []Result `json:"results"`
	Dropped       bool     `json:"-"`
}

// Failed es true si el trabajo se descartó o si todos los canales fallaron.
func (r Report) Failed() bool {
	if r.Dropped {
		return true
	}
	if len(r.Results) == 0 {
		return false
	}
	for _, res := range r.Results {
		if res.Success {
			return false
		}
	}
	return true
}

// NewConfirmation arma el mensaje de orden confirmada. El teléfono de envío
// sale de la dirección de entrega y, si falta, del perfil.
func NewConfirmation(o *model.Order, u *model.User) Message {
	phone := strings.TrimSpace(o.ShippingInfo.Phone)
	if phone == "" {
		phone = strings.TrimSpace(u.Phone)
	}
	items := 0
	for _, it := range o.Items {
		items += it.Quantity
	}
	orderRef := o.ID.Hex()
	if len(orderRef) > 8 {
		orderRef = orderRef[len(orderRef)-8:]
	}

	text := fmt.Sprintf(
		"Hi %s, your order #%s has been confirmed. %d item(s), total ₹%.2f. We will let you know when it ships.",
		u.Name, strings.ToUpper(orderRef), items, o.TotalAmount,
	)

	return Message{
		CorrelationID: uuid.NewString(),
		OrderID:       o.ID.Hex(),
		UserID:        u.ID.Hex(),
		CustomerName:  u.Name,
		CustomerEmail: u.Email,
		Phone:         phone,
		TotalAmount:   o.TotalAmount,
		ItemCount:     items,
		Status:        string(o.Status),
		Text:          text,
		CreatedAt:     time.Now().UTC(),
	}
}

// Await espera el reporte hasta wait. Devuelve nil si no llegó a tiempo o si
// la entrega falló; el trabajo sigue en curso y se registra en el log igual.
func Await(ch <-chan Report, wait time.Duration) *Report {
	if ch == nil {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case r, ok := <-ch:
		if !ok || r.Failed() {
			return nil
		}
		return &r
	case <-timer.C:
		return nil
	}
}
