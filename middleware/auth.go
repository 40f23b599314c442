// Package middleware holds the gin middleware shared by every route group.
package middleware

import (
	"net/http"
	"strings"

	"eudaimonia/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

// InvalidTokenMessage is the only detail a client gets about a rejected token.
const InvalidTokenMessage = "Invalid or expired token"

// Auth rejects requests without a valid bearer access token and stores the
// caller's user id on the gin context.
func Auth(tokens *auth.TokenManager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format"})
			return
		}

		claims, err := tokens.Parse(parts[1], auth.TypeAccess)
		if err != nil {
			log.Debug("token validation failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": InvalidTokenMessage})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// UserID returns the authenticated caller, or "" outside Auth.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
