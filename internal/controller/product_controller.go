package controller

import (
	"net/http"
	"time"

	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	Service *service.ProductService
}

func NewProductController(s *service.ProductService) *ProductController {
	return &ProductController{Service: s}
}

// GET /products?category=&search=&page=&limit= - solo activos
func (ctl *ProductController) List(c *gin.Context) {
	f := model.ProductFilter{
		Category:   model.Category(c.Query("category")),
		Search:     c.Query("search"),
		ActiveOnly: true,
	}
	res, err := ctl.Service.List(c.Request.Context(), f, queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /products/:id
func (ctl *ProductController) Get(c *gin.Context) {
	p, err := ctl.Service.Get(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "OK", Timestamp: time.Now().UTC()})
}
