// config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	AppEnv      string
	Port        string
	MongoURI    string
	MongoDBName string

	JWTSecret string
	TokenTTL  time.Duration

	RabbitURL string
	RedisURL  string

	RateLimitMax    int
	RateLimitWindow time.Duration

	StripeSecretKey string
	FrontendURL     string

	WhatsApp WhatsAppConfig

	NotifyWait        time.Duration
	NotifyQueueSize   int
	StrictTransitions bool

	Admin AdminConfig
}

type WhatsAppConfig struct {
	APIURL   string
	Username string
	Password string
	Path     string
}

// Enabled indica si hay gateway configurado para enviar mensajes.
func (w WhatsAppConfig) Enabled() bool {
	return w.APIURL != ""
}

// AdminConfig solo lo usa el binario seed-admin.
type AdminConfig struct {
	Name          string
	Email         string
	Password      string
	PromoteEmails []string
}

const devJWTSecret = "dev-only-secret-change-me"

func Load() (*Config, error) {
	// .env es opcional
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", EnvDevelopment),
		Port:        getEnv("PORT", "5000"),
		MongoURI:    getEnv("MONGODB_URI", ""),
		MongoDBName: getEnv("MONGODB_DB_NAME", "storefront"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvAsDuration("TOKEN_TTL", 7*24*time.Hour),

		RabbitURL: getEnv("RABBIT_URL", ""),
		RedisURL:  getEnv("REDIS_URL", ""),

		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		FrontendURL:     getEnv("FRONTEND_URL", ""),

		WhatsApp: WhatsAppConfig{
			APIURL:   getEnv("WHATSAPP_API_URL", ""),
			Username: getEnv("WHATSAPP_USERNAME", ""),
			Password: getEnv("WHATSAPP_PASSWORD", ""),
			Path:     getEnv("WHATSAPP_PATH", ""),
		},

		NotifyWait:        getEnvAsDuration("NOTIFY_WAIT", 5*time.Second),
		NotifyQueueSize:   getEnvAsInt("NOTIFY_QUEUE_SIZE", 100),
		StrictTransitions: getEnvAsBool("ORDER_STRICT_TRANSITIONS", false),

		Admin: AdminConfig{
			Name:          getEnv("ADMIN_NAME", "Admin User"),
			Email:         getEnv("ADMIN_EMAIL", ""),
			Password:      getEnv("ADMIN_PASSWORD", ""),
			PromoteEmails: getEnvAsList("ADMIN_PROMOTE_EMAILS"),
		},
	}

	if !cfg.IsProduction() {
		if cfg.MongoURI == "" {
			cfg.MongoURI = "mongodb://localhost:27017"
		}
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = devJWTSecret
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Validate revisa los campos obligatorios. En producción no hay valores por defecto
// para la base ni para el secreto de los tokens.
func (c *Config) Validate() error {
	var errs []error

	if c.AppEnv != EnvDevelopment && c.AppEnv != EnvProduction && c.AppEnv != "test" {
		errs = append(errs, fmt.Errorf("APP_ENV %q is not one of development, production, test", c.AppEnv))
	}
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required"))
	}
	if c.MongoDBName == "" {
		errs = append(errs, errors.New("MONGODB_DB_NAME is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() && c.JWTSecret == devJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set explicitly in production"))
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT %q is not a valid port", c.Port))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive"))
	}
	if c.NotifyQueueSize <= 0 {
		errs = append(errs, errors.New("NOTIFY_QUEUE_SIZE must be positive"))
	}
	if c.NotifyWait < 0 {
		errs = append(errs, errors.New("NOTIFY_WAIT must not be negative"))
	}

	return errors.Join(errs...)
}

func (a AdminConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, errors.New("ADMIN_NAME is required"))
	}
	if !looksLikeEmail(a.Email) {
		errs = append(errs, fmt.Errorf("ADMIN_EMAIL %q is not a valid email", a.Email))
	}
	if len(a.Password) < 6 {
		errs = append(errs, errors.New("ADMIN_PASSWORD must be at least 6 characters"))
	}
	for _, e := range a.PromoteEmails {
		if !looksLikeEmail(e) {
			errs = append(errs, fmt.Errorf("ADMIN_PROMOTE_EMAILS entry %q is not a valid email", e))
		}
	}
	return errors.Join(errs...)
}

func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
