package middlewares

import (
	"context"
	"net/http"
	"strings"

	"mealrec/utils"

	"github.com/gin-gonic/gin"
)

// TokenAuthenticator validates a bearer token and returns its claims.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*utils.TokenClaims, error)
}

// AuthMiddleware sets "userID", "email" and "claims" on the context.
func AuthMiddleware(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}

		c.Set("userID", userID)
		c.Set("email", claims.Email)
		c.Set("claims", claims)
		c.Next()
	}
}
