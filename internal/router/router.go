package router

import (
	"time"

	"storefront-api/internal/controller"
	"storefront-api/internal/middleware"
	"storefront-api/internal/redis"
	"storefront-api/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps agrupa lo que necesita el router. Limiter puede ser nil (sin límite).
type Deps struct {
	Auth            *service.AuthService
	Limiter         *redis.Limiter
	FrontendURL     string
	Orders          *controller.OrderController
	Admin           *controller.AdminController
	Accounts        *controller.AuthController
	Products        *controller.ProductController
	PaymentSettings *controller.PaymentSettingsController
}

func New(d Deps) *gin.Engine {
	controller.RegisterValidation()

	r := gin.Default()
	r.Use(corsMiddleware(d.FrontendURL))

	api := r.Group("/api")
	if d.Limiter != nil {
		api.Use(middleware.RateLimit(d.Limiter))
	}

	api.GET("/health", controller.Health)

	// Rutas públicas
	api.POST("/auth/register", d.Accounts.Register)
	api.POST("/auth/login", d.Accounts.Login)
	api.GET("/products", d.Products.List)
	api.GET("/products/:id", d.Products.Get)
	api.GET("/payment-settings", d.PaymentSettings.GetPublic)

	// Rutas protegidas (requieren token)
	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware(d.Auth))

	auth.GET("/auth/me", d.Accounts.Me)
	auth.GET("/users/profile", d.Accounts.Me)
	auth.PUT("/users/profile", d.Accounts.UpdateProfile)
	auth.PUT("/users/change-password", d.Accounts.ChangePassword)

	auth.POST("/orders", d.Orders.CreateOrder)
	auth.GET("/orders", d.Orders.GetMyOrders)
	auth.GET("/orders/user-stats", d.Orders.UserStats)
	auth.POST("/orders/create-payment-intent", d.Orders.CreatePaymentIntent)
	auth.GET("/orders/:id", d.Orders.GetMyOrder)
	auth.PUT("/orders/:id/confirm-payment", d.Orders.ConfirmPayment)
	auth.PATCH("/orders/:id/payment-complete", d.Orders.MarkPaymentComplete)

	// Rutas admin
	admin := auth.Group("")
	admin.Use(middleware.AdminOnly())

	admin.GET("/admin/dashboard-stats", d.Admin.DashboardStats)
	admin.GET("/admin/products", d.Admin.ListProducts)
	admin.POST("/admin/products", d.Admin.CreateProduct)
	admin.PUT("/admin/products/:id", d.Admin.UpdateProduct)
	admin.DELETE("/admin/products/:id", d.Admin.DeleteProduct)
	admin.GET("/admin/orders", d.Admin.ListOrders)
	admin.GET("/admin/orders/:id", d.Admin.GetOrder)
	admin.PUT("/admin/orders/:id", d.Admin.UpdateOrder)

	admin.GET("/payment-settings/admin", d.PaymentSettings.List)
	admin.POST("/payment-settings", d.PaymentSettings.Create)
	admin.PUT("/payment-settings/:id", d.PaymentSettings.Update)
	admin.DELETE("/payment-settings/:id", d.PaymentSettings.Delete)
	admin.PATCH("/payment-settings/:id/toggle", d.PaymentSettings.Toggle)

	return r
}

// Sin FRONTEND_URL se aceptan todos los orígenes (desarrollo).
func corsMiddleware(frontendURL string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if frontendURL == "" {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = []string{frontendURL}
	}
	return cors.New(cfg)
}
