// dto.go
package dto

import (
	"time"

	"storefront-api/internal/model"
)

// CreateOrderRequest es el cuerpo de POST /orders. totalAmount lo calcula el
// cliente y el servidor lo verifica.
type CreateOrderRequest struct {
	Items             []OrderItemRequest  `json:"items" binding:"dive"`
	TotalAmount       float64             `json:"totalAmount" binding:"gte=0"`
	ShippingInfo      ShippingDTO         `json:"shippingInfo"`
	PaymentMethod     model.PaymentMethod `json:"paymentMethod" binding:"required,oneof=stripe bank_transfer upi gpay phonepe paytm"`
	PaymentIntentID   string              `json:"paymentIntentId"`
	TransactionNumber string              `json:"transactionNumber"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Size      string `json:"size"`
}

// ShippingDTO para la dirección de entrega
type ShippingDTO struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

type ConfirmPaymentRequest struct {
	TransactionNumber string `json:"transactionNumber"`
}

type UpdateOrderStatusRequest struct {
	Status         model.OrderStatus `json:"status" binding:"required,oneof=pending confirmed shipped delivered cancelled"`
	TrackingNumber string            `json:"trackingNumber"`
	Notes          string            `json:"notes"`
}

type PaymentIntentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type UserStatsResponse struct {
	TotalOrders int     `json:"totalOrders"`
	TotalSpent  float64 `json:"totalSpent"`
	MemberSince string  `json:"memberSince"`
}

type CustomerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// OrderWithCustomer agrega al dueño de la orden para las vistas de admin.
type OrderWithCustomer struct {
	*model.Order
	Customer *CustomerSummary `json:"customer,omitempty"`
}

type Pagination struct {
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func NewPagination(page, limit, total int64) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		TotalItems:  total,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}

type OrderPage struct {
	Orders     []OrderWithCustomer `json:"orders"`
	Pagination Pagination          `json:"pagination"`
}

type ProductPage struct {
	Products   []*model.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

type DashboardStats struct {
	TotalProducts int64               `json:"totalProducts"`
	TotalOrders   int64               `json:"totalOrders"`
	TotalUsers    int64               `json:"totalUsers"`
	TotalRevenue  float64             `json:"totalRevenue"`
	RecentOrders  []OrderWithCustomer `json:"recentOrders"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
