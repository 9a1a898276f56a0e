package controller

import (
	"net/http"
	"time"

	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/notify"
	"storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	Orders     *service.OrderService
	Products   *service.ProductService
	Dashboard  *service.DashboardService
	NotifyWait time.Duration
}

func NewAdminController(orders *service.OrderService, products *service.ProductService, dashboard *service.DashboardService, notifyWait time.Duration) *AdminController {
	return &AdminController{Orders: orders, Products: products, Dashboard: dashboard, NotifyWait: notifyWait}
}

// GET /admin/dashboard-stats
func (ctl *AdminController) DashboardStats(c *gin.Context) {
	stats, err := ctl.Dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /admin/products - incluye los inactivos
func (ctl *AdminController) ListProducts(c *gin.Context) {
	f := model.ProductFilter{
		Category: model.Category(c.Query("category")),
		Search:   c.Query("search"),
	}
	res, err := ctl.Products.List(c.Request.Context(), f, queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /admin/products
func (ctl *AdminController) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := ctl.Products.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": p})
}

// PUT /admin/products/:id
func (ctl *AdminController) UpdateProduct(c *gin.Context) {
	var req dto.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := ctl.Products.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": p})
}

// DELETE /admin/products/:id
func (ctl *AdminController) DeleteProduct(c *gin.Context) {
	if err := ctl.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// GET /admin/orders?status=&page=&limit=
func (ctl *AdminController) ListOrders(c *gin.Context) {
	status := model.OrderStatus(c.Query("status"))
	res, err := ctl.Orders.AdminList(c.Request.Context(), status, queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /admin/orders/:id
func (ctl *AdminController) GetOrder(c *gin.Context) {
	o, err := ctl.Orders.AdminGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// PUT /admin/orders/:id
// notifications es null si no se confirmó la orden, si el envío falló o si no
// terminó dentro de NotifyWait.
func (ctl *AdminController) UpdateOrder(c *gin.Context) {
	var req dto.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	o, reports, err := ctl.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Order updated successfully",
		"order":         o,
		"notifications": notify.Await(reports, ctl.NotifyWait),
	})
}
