package controller

import (
	"net/http"

	"storefront-api/internal/dto"
	"storefront-api/internal/middleware"
	"storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentSettingsController struct {
	Service *service.PaymentSettingsService
}

func NewPaymentSettingsController(s *service.PaymentSettingsService) *PaymentSettingsController {
	return &PaymentSettingsController{Service: s}
}

// GET /payment-settings - público, solo los campos que ve el comprador
func (ctl *PaymentSettingsController) GetPublic(c *gin.Context) {
	ps, err := ctl.Service.Active(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPublicPaymentSettings(ps))
}

// GET /payment-settings/admin
func (ctl *PaymentSettingsController) List(c *gin.Context) {
	all, err := ctl.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

// POST /payment-settings
func (ctl *PaymentSettingsController) Create(c *gin.Context) {
	var req dto.PaymentSettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	ps, err := ctl.Service.Create(c.Request.Context(), c.GetString(middleware.UserIDKey), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Payment settings created successfully", "paymentSettings": ps})
}

// PUT /payment-settings/:id
func (ctl *PaymentSettingsController) Update(c *gin.Context) {
	var req dto.PaymentSettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	ps, err := ctl.Service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment settings updated successfully", "paymentSettings": ps})
}

// DELETE /payment-settings/:id
func (ctl *PaymentSettingsController) Delete(c *gin.Context) {
	if err := ctl.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment settings deleted successfully"})
}

// PATCH /payment-settings/:id/toggle
func (ctl *PaymentSettingsController) Toggle(c *gin.Context) {
	ps, err := ctl.Service.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	state := "deactivated"
	if ps.IsActive {
		state = "activated"
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment settings " + state + " successfully", "paymentSettings": ps})
}
