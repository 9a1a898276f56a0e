package middleware

import (
	"log"
	"net/http"
	"strconv"

	"storefront-api/internal/redis"

	"github.com/gin-gonic/gin"
)

// RateLimit limita por IP de origen. Si el contador falla, deja pasar.
func RateLimit(limiter *redis.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Printf("[ratelimit] contador no disponible: %v", err)
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(limiter.Window().Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests from this IP, please try again later"})
			return
		}
		c.Next()
	}
}
