package controller

import (
	"net/http"

	"storefront-api/internal/dto"
	"storefront-api/internal/middleware"
	"storefront-api/internal/payment"
	"storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Service  *service.OrderService
	Users    *service.UserService
	Payments payment.IntentProvider
}

// payments puede ser nil si no hay clave de Stripe.
func NewOrderController(s *service.OrderService, users *service.UserService, payments payment.IntentProvider) *OrderController {
	return &OrderController{Service: s, Users: users, Payments: payments}
}

// POST /orders
func (ctl *OrderController) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctl.Service.CreateOrder(c.Request.Context(), c.GetString(middleware.UserIDKey), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": order})
}

// PUT /orders/:id/confirm-payment
func (ctl *OrderController) ConfirmPayment(c *gin.Context) {
	var req dto.ConfirmPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctl.Service.ConfirmPayment(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey), req.TransactionNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment confirmed successfully", "order": order})
}

// PATCH /orders/:id/payment-complete
func (ctl *OrderController) MarkPaymentComplete(c *gin.Context) {
	order, err := ctl.Service.MarkPaymentComplete(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment marked as complete", "order": order})
}

// GET /orders
func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	orders, err := ctl.Service.ListForUser(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /orders/:id
func (ctl *OrderController) GetMyOrder(c *gin.Context) {
	order, err := ctl.Service.GetForUser(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GET /orders/user-stats
func (ctl *OrderController) UserStats(c *gin.Context) {
	stats, err := ctl.Users.Stats(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// POST /orders/create-payment-intent
func (ctl *OrderController) CreatePaymentIntent(c *gin.Context) {
	if ctl.Payments == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stripe is not configured"})
		return
	}
	var req dto.PaymentIntentRequest
	if !bindJSON(c, &req) {
		return
	}

	intent, err := ctl.Payments.CreateIntent(c.Request.Context(), req.Amount, c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PaymentIntentResponse{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID})
}
