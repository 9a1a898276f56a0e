// auth_middleware.go
package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

// Claves del contexto de gin que completa AuthMiddleware.
const (
	UserIDKey    = "userID"
	UserNameKey  = "userName"
	UserEmailKey = "userEmail"
	IsAdminKey   = "isAdmin"
)

// Middleware que valida el token y guarda la info del usuario en el contexto
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrTokenExpired):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
			return
		case errors.Is(err, service.ErrUserNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		case errors.Is(err, service.ErrInvalidToken):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid token"})
			return
		default:
			log.Printf("[auth] error validando token: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		// Guardamos los datos del usuario en el contexto
		c.Set(UserIDKey, user.ID.Hex())
		c.Set(UserNameKey, user.Name)
		c.Set(UserEmailKey, user.Email)
		c.Set(IsAdminKey, user.IsAdmin)
		c.Next()
	}
}
