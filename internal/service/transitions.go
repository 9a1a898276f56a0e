package service

import "storefront-api/internal/model"

type transition struct {
	from model.OrderStatus
	to   model.OrderStatus
}

// TransitionPolicy es la tabla explícita (actual, pedido) -> permitido.
// Un par que no está en la tabla se rechaza, salvo en la política permisiva.
type TransitionPolicy struct {
	name       string
	permissive bool
	allowed    map[transition]bool
}

// PermissivePolicy acepta cualquier par de estados válidos: el admin es de
// confianza.
func PermissivePolicy() TransitionPolicy {
	return TransitionPolicy{name: "permissive", permissive: true}
}

// Transiciones permitidas por el flujo estricto
var adminTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusShipped, model.StatusCancelled},
	model.StatusShipped:   {model.StatusDelivered, model.StatusCancelled},
}

// Estados finales
var finalStates = map[model.OrderStatus]bool{
	model.StatusDelivered: true,
	model.StatusCancelled: true,
}

func StrictPolicy() TransitionPolicy {
	allowed := map[transition]bool{}
	for from, targets := range adminTransitions {
		for _, to := range targets {
			allowed[transition{from, to}] = true
		}
	}
	// repetir el mismo estado no cambia nada
	for _, s := range model.Statuses {
		allowed[transition{s, s}] = true
	}
	return TransitionPolicy{name: "strict", allowed: allowed}
}

func (p TransitionPolicy) Name() string {
	if p.name == "" {
		return "permissive"
	}
	return p.name
}

func (p TransitionPolicy) Allows(from, to model.OrderStatus) bool {
	if !to.Valid() {
		return false
	}
	if p.permissive || p.allowed == nil {
		return true
	}
	return p.allowed[transition{from, to}]
}

// Check devuelve *TransitionError si el par no está permitido.
func (p TransitionPolicy) Check(from, to model.OrderStatus) error {
	if p.Allows(from, to) {
		return nil
	}
	return &TransitionError{From: from, To: to, Final: finalStates[from]}
}

