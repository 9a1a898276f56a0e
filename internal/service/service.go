package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/notify"
	"storefront-api/internal/pricing"
	"storefront-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Días que se suman a la fecha de envío para estimar la entrega.
const deliveryEstimate = 7 * 24 * time.Hour

// Notifier encola la confirmación de una orden. El reporte llega por el canal
// devuelto y no afecta la actualización ya guardada.
type Notifier interface {
	Enqueue(o *model.Order, u *model.User) <-chan notify.Report
}

type OrderService struct {
	orders   OrderRepository
	products ProductRepository
	users    UserRepository
	notifier Notifier
	policy   TransitionPolicy
	now      func() time.Time
}

// notifier puede ser nil: en ese caso no se envían confirmaciones.
func NewOrderService(orders OrderRepository, products ProductRepository, users UserRepository, notifier Notifier, policy TransitionPolicy) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		notifier: notifier,
		policy:   policy,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func dtoToModelShipping(in dto.ShippingDTO) model.ShippingInfo {
	return model.ShippingInfo{
		FullName: in.FullName,
		Email:    in.Email,
		Phone:    in.Phone,
		Address:  in.Address,
		City:     in.City,
		State:    in.State,
		Pincode:  in.Pincode,
	}
}

// CreateOrder recalcula el total con los precios actuales del catálogo y solo
// guarda la orden si coincide con el total enviado (± pricing.Tolerance).
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req dto.CreateOrderRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	lines := make([]pricing.Line, 0, len(req.Items))
	for _, it := range req.Items {
		p, err := s.products.FindByID(ctx, it.ProductID)
		if missing(err) {
			return nil, &ProductNotFoundError{ID: it.ProductID}
		}
		if err != nil {
			return nil, fmt.Errorf("fetching product %s: %w", it.ProductID, err)
		}

		// snapshot: cambios posteriores del catálogo no tocan la orden
		items = append(items, model.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Image:     p.Thumbnail(),
		})
		lines = append(lines, pricing.Line{UnitPrice: p.Price, Quantity: it.Quantity})
	}

	quote := pricing.Calculate(lines)
	if err := quote.Verify(req.TotalAmount); err != nil {
		return nil, err
	}

	order := &model.Order{
		UserID:        owner,
		Items:         items,
		ShippingInfo:  dtoToModelShipping(req.ShippingInfo),
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   quote.Total.Round(2).InexactFloat64(),
		ShippingCost:  quote.Shipping.InexactFloat64(),
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
	}
	if req.PaymentMethod.Online() {
		order.PaymentIntentID = strings.TrimSpace(req.PaymentIntentID)
	} else if txn := strings.TrimSpace(req.TransactionNumber); txn != "" {
		order.TransactionNumber = txn
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("saving order: %w", err)
	}
	log.Printf("[orders] orden %s creada para usuario %s (total %.2f, %s)", order.ID.Hex(), userID, order.TotalAmount, order.PaymentMethod)
	return order, nil
}

// ConfirmPayment adjunta la referencia de un pago manual. Una orden de otro
// usuario se trata como inexistente.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID, userID, transactionNumber string) (*model.Order, error) {
	txn := strings.TrimSpace(transactionNumber)
	if txn == "" {
		return nil, ErrBlankTransaction
	}

	o, err := s.findOwned(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	o.TransactionNumber = txn
	o.PaymentStatus = model.PaymentCompleted
	if err := s.orders.Replace(ctx, o); err != nil {
		return nil, fmt.Errorf("saving order: %w", err)
	}
	log.Printf("[orders] pago manual confirmado para orden %s", o.ID.Hex())
	return o, nil
}

// MarkPaymentComplete confirma una orden pendiente después de un pago online.
func (s *OrderService) MarkPaymentComplete(ctx context.Context, orderID, userID string) (*model.Order, error) {
	o, err := s.findOwned(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if o.Status != model.StatusPending {
		return nil, ErrNotPending
	}

	now := s.now()
	o.Status = model.StatusConfirmed
	o.PaymentStatus = model.PaymentCompleted
	o.PaymentCompletedAt = &now
	if err := s.orders.Replace(ctx, o); err != nil {
		return nil, fmt.Errorf("saving order: %w", err)
	}
	return o, nil
}

// CompletePaymentByIntent lo llama el consumer de eventos de la pasarela. Solo
// toca los campos de pago; el estado de la orden lo maneja el admin.
func (s *OrderService) CompletePaymentByIntent(ctx context.Context, intentID string) (*model.Order, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, ErrOrderNotFound
	}
	o, err := s.orders.FindByPaymentIntent(ctx, intentID)
	if missing(err) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus == model.PaymentCompleted {
		return o, nil
	}

	now := s.now()
	o.PaymentStatus = model.PaymentCompleted
	o.PaymentCompletedAt = &now
	if err := s.orders.Replace(ctx, o); err != nil {
		return nil, fmt.Errorf("saving order: %w", err)
	}
	return o, nil
}

// UpdateStatus aplica un cambio de estado pedido por el admin. La
// actualización se guarda primero; si el nuevo estado es confirmed se encola
// la notificación y se devuelve el canal del reporte (nil si no hay envío).
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, req dto.UpdateOrderStatusRequest) (*model.Order, <-chan notify.Report, error) {
	if !req.Status.Valid() {
		return nil, nil, ErrInvalidStatus
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	if err := s.policy.Check(o.Status, req.Status); err != nil {
		return nil, nil, err
	}

	o.Status = req.Status
	if tn := strings.TrimSpace(req.TrackingNumber); tn != "" {
		o.TrackingNumber = tn
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		o.Notes = notes
	}
	if req.Status == model.StatusShipped && o.EstimatedDelivery == nil {
		eta := s.now().Add(deliveryEstimate)
		o.EstimatedDelivery = &eta
	}

	if err := s.orders.Replace(ctx, o); err != nil {
		return nil, nil, fmt.Errorf("saving order: %w", err)
	}
	log.Printf("[orders] orden %s -> %s", o.ID.Hex(), o.Status)

	if req.Status != model.StatusConfirmed || s.notifier == nil {
		return o, nil, nil
	}
	owner, err := s.users.FindByID(ctx, o.UserID.Hex())
	if err != nil {
		log.Printf("[orders] sin dueño para notificar orden %s: %v", o.ID.Hex(), err)
		return o, nil, nil
	}
	return o, s.notifier.Enqueue(o, owner), nil
}

func (s *OrderService) findOwned(ctx context.Context, orderID, userID string) (*model.Order, error) {
	o, err := s.orders.FindOwned(ctx, orderID, userID)
	if missing(err) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Getters

func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]*model.Order, error) {
	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	return orders, nil
}

func (s *OrderService) GetForUser(ctx context.Context, orderID, userID string) (*model.Order, error) {
	return s.findOwned(ctx, orderID, userID)
}

// AdminGet distingue un id mal formado (repository.ErrInvalidID) de uno
// inexistente.
func (s *OrderService) AdminGet(ctx context.Context, orderID string) (*dto.OrderWithCustomer, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	out, err := s.withCustomers(ctx, []*model.Order{o})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *OrderService) AdminList(ctx context.Context, status model.OrderStatus, page, limit int64) (*dto.OrderPage, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	page, limit = normalizePage(page, limit)

	orders, err := s.orders.List(ctx, status, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.Count(ctx, status)
	if err != nil {
		return nil, err
	}
	withCustomers, err := s.withCustomers(ctx, orders)
	if err != nil {
		return nil, err
	}
	return &dto.OrderPage{
		Orders:     withCustomers,
		Pagination: dto.NewPagination(page, limit, total),
	}, nil
}

// withCustomers agrega nombre y email del dueño (una sola consulta de usuarios).
func (s *OrderService) withCustomers(ctx context.Context, orders []*model.Order) ([]dto.OrderWithCustomer, error) {
	ids := make([]primitive.ObjectID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.UserID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.OrderWithCustomer, 0, len(orders))
	for _, o := range orders {
		row := dto.OrderWithCustomer{Order: o}
		if u, ok := users[o.UserID]; ok {
			row.Customer = &dto.CustomerSummary{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Phone: u.Phone}
		}
		out = append(out, row)
	}
	return out, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func normalizePage(page, limit int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
