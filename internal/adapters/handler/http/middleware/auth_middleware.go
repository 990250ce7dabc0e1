package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mna11/ReadMe3D/internal/core/services"
)

const (
	authorizationHeader = "Authorization"
	authorizationType   = "Bearer"
	ContextClientKey    = "client"
)

// AuthMiddleware admits requests bearing a valid token that grants scope.
func AuthMiddleware(tokenService *services.TokenService, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(authorizationHeader)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) != 2 || fields[0] != authorizationType {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		client, err := tokenService.ValidateToken(fields[1], scope)
		if err != nil {
			if errors.Is(err, services.ErrInsufficientScope) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token does not grant " + scope})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextClientKey, client)

		c.Next()
	}
}

func GetClient(c *gin.Context) (string, bool) {
	id, exists := c.Get(ContextClientKey)
	if !exists {
		return "", false
	}
	idStr, ok := id.(string)
	return idStr, ok
}
