package service

import (
	"errors"
	"fmt"

	"storefront-api/internal/model"
	"storefront-api/internal/repository"
)

// Errores de negocio exportados (los usa el controller)
var (
	ErrEmptyCart          = errors.New("items are required")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrNotPending         = errors.New("order is not in pending status")
	ErrBlankTransaction   = errors.New("transaction number is required")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrTransitionDenied   = errors.New("status transition not allowed")
	ErrSettingsNotFound   = errors.New("payment settings not found")
	ErrEmailTaken         = errors.New("email is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrConflict           = errors.New("another payment settings record is already active")
)

// ProductNotFoundError identifica el producto faltante en una orden.
type ProductNotFoundError struct {
	ID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product %s not found", e.ID)
}

func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// TransitionError se devuelve cuando la política rechaza (actual, pedido).
type TransitionError struct {
	From  model.OrderStatus
	To    model.OrderStatus
	Final bool
}

func (e *TransitionError) Error() string {
	if e.Final {
		return fmt.Sprintf("order is already %s and cannot change to %s", e.From, e.To)
	}
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrTransitionDenied
}

// missing es true para un id inexistente o mal formado.
func missing(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID)
}
