package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"

	"storefront-api/internal/config"
	"storefront-api/internal/controller"
	"storefront-api/internal/notify"
	"storefront-api/internal/payment"
	"storefront-api/internal/rabbit"
	"storefront-api/internal/redis"
	"storefront-api/internal/repository"
	"storefront-api/internal/router"
	"storefront-api/internal/service"
)

const notifyWorkers = 2

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuración inválida: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Conexión a MongoDB
	client, db, err := repository.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Error creando índices: %v", err)
	}

	// Repositorios
	orders := repository.NewMongoOrderRepository(db)
	products := repository.NewMongoProductRepository(db)
	users := repository.NewMongoUserRepository(db)
	settings := repository.NewMongoPaymentSettingsRepository(db)

	// Rate limit: Redis si está configurado, si no en memoria
	var counter redis.Counter = redis.NewMemoryCounter()
	if cfg.RedisURL != "" {
		rc, err := redis.Initialize(cfg.RedisURL)
		if err != nil {
			log.Printf("[ratelimit] Redis no disponible, uso contador en memoria: %v", err)
		} else {
			defer rc.Close()
			counter = rc
		}
	}
	limiter := redis.NewLimiter(counter, cfg.RateLimitMax, cfg.RateLimitWindow)

	// Canales de notificación
	var channels []notify.Channel
	if cfg.WhatsApp.Enabled() {
		channels = append(channels, notify.NewWhatsAppClient(cfg.WhatsApp.APIURL, cfg.WhatsApp.Username, cfg.WhatsApp.Password, cfg.WhatsApp.Path))
	}

	// Conexión a RabbitMQ (opcional)
	var consumerCh *amqp091.Channel
	if cfg.RabbitURL != "" {
		conn, err := amqp091.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("Error conectando a RabbitMQ: %v", err)
		}
		defer conn.Close()

		pubCh, err := conn.Channel()
		if err != nil {
			log.Fatalf("Error creando canal en RabbitMQ: %v", err)
		}
		publisher, err := rabbit.NewPublisher(pubCh)
		if err != nil {
			log.Fatalf("Error declarando exchange: %v", err)
		}
		channels = append(channels, publisher)

		consumerCh, err = conn.Channel()
		if err != nil {
			log.Fatalf("Error creando canal en RabbitMQ: %v", err)
		}
	}

	dispatcher := notify.NewDispatcher(cfg.NotifyQueueSize, 10*time.Second, channels...)
	dispatcher.Start(notifyWorkers)
	defer dispatcher.Stop()

	// Servicios
	policy := service.PermissivePolicy()
	if cfg.StrictTransitions {
		policy = service.StrictPolicy()
	}
	log.Printf("Política de transiciones: %s", policy.Name())

	orderService := service.NewOrderService(orders, products, users, dispatcher, policy)
	authService := service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL)
	userService := service.NewUserService(users, orders)
	productService := service.NewProductService(products)
	dashboardService := service.NewDashboardService(orders, products, users, orderService)
	settingsService := service.NewPaymentSettingsService(settings)

	if consumerCh != nil {
		if err := rabbit.SetupConsumers(ctx, consumerCh, orderService); err != nil {
			log.Fatalf("Error iniciando consumidores: %v", err)
		}
	}

	var payments payment.IntentProvider
	if cfg.StripeSecretKey != "" {
		payments = payment.NewStripeProvider(cfg.StripeSecretKey)
	}

	// Handlers y router
	r := router.New(router.Deps{
		Auth:            authService,
		Limiter:         limiter,
		FrontendURL:     cfg.FrontendURL,
		Orders:          controller.NewOrderController(orderService, userService, payments),
		Admin:           controller.NewAdminController(orderService, productService, dashboardService, cfg.NotifyWait),
		Accounts:        controller.NewAuthController(authService, userService),
		Products:        controller.NewProductController(productService),
		PaymentSettings: controller.NewPaymentSettingsController(settingsService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Storefront API ejecutándose en puerto %s (%s)", cfg.Port, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Apagando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error en shutdown: %v", err)
	}
}
