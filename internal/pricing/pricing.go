// Package pricing recalcula el total de una orden con los precios actuales del
// catálogo y lo compara con el total que envió el cliente.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// ShippingCost es el recargo fijo por envío.
	ShippingCost = 99
	// Tolerance absorbe redondeos del lado del cliente (una unidad de moneda).
	Tolerance = 1
)

type Line struct {
	UnitPrice float64
	Quantity  int
}

type Quote struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// MismatchError reporta ambos totales para diagnóstico.
type MismatchError struct {
	Calculated float64
	Provided   float64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: calculated %.2f, provided %.2f", e.Calculated, e.Provided)
}

// Calculate suma precio*cantidad de cada línea y agrega el envío.
func Calculate(lines []Line) Quote {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l))
	}
	shipping := decimal.NewFromInt(ShippingCost)
	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}
}

func LineTotal(l Line) decimal.Decimal {
	return decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Verify acepta el total reclamado si |calculado - reclamado| <= Tolerance.
func (q Quote) Verify(claimed float64) error {
	diff := q.Total.Sub(decimal.NewFromFloat(claimed)).Abs()
	if diff.GreaterThan(decimal.NewFromInt(Tolerance)) {
		return &MismatchError{
			Calculated: q.Total.InexactFloat64(),
			Provided:   claimed,
		}
	}
	return nil
}

// ToMinorUnits convierte rupias a paise, redondeando al entero más cercano.
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
