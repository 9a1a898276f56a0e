// Package payment crea los payment intents de la pasarela online.
package payment

import (
	"context"
	"errors"
	"fmt"

	"storefront-api/internal/pricing"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var ErrInvalidAmount = errors.New("amount must be greater than zero")

type Intent struct {
	ID           string
	ClientSecret string
}

// IntentProvider lo implementa StripeProvider; los tests usan un fake.
type IntentProvider interface {
	CreateIntent(ctx context.Context, amount float64, userID string) (*Intent, error)
}

type StripeProvider struct {
	api      *client.API
	currency stripe.Currency
}

func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{
		api:      client.New(secretKey, nil),
		currency: stripe.CurrencyINR,
	}
}

// CreateIntent recibe el monto en rupias y lo envía en paise.
func (p *StripeProvider) CreateIntent(ctx context.Context, amount float64, userID string) (*Intent, error) {
	minor := pricing.ToMinorUnits(amount)
	if minor <= 0 {
		return nil, ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minor),
		Currency: stripe.String(string(p.currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if userID != "" {
		params.AddMetadata("userId", userID)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
