package middleware

import (
	"net/http"
	"strings"

	"github.com/morphcute/mlbb-gifters/internal/auth"
	"github.com/morphcute/mlbb-gifters/internal/service"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// AuthMiddleware validates the bearer token and stores the resulting Actor in
// the request context. Role enforcement itself happens inside the core
// services, at the authorization boundary.
func AuthMiddleware(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(actorKey, service.Actor{UserID: claims.UserID, Role: claims.Role})
		c.Set("token", tokenParts[1])
		c.Next()
	}
}

// GetActor returns the authenticated Actor from the request context.
func GetActor(c *gin.Context) (service.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return service.Actor{}, false
	}
	actor, ok := v.(service.Actor)
	return actor, ok
}

// GetToken returns the raw bearer token stored by AuthMiddleware.
func GetToken(c *gin.Context) string {
	return c.GetString("token")
}
