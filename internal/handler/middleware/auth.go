package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"biliticket/statecache/pkg/response"
	tokenpkg "biliticket/statecache/pkg/token"
)

const ContextKeyTokenClaims = "token_claims"

// TokenAuth validates the bearer token and stashes its claims in the request
// context for scope checks downstream.
func TokenAuth(manager *tokenpkg.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization format")
			c.Abort()
			return
		}

		claims, err := manager.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextKeyTokenClaims, claims)
		c.Next()
	}
}

// Claims retrieves the validated token claims set by TokenAuth.
func Claims(c *gin.Context) (*tokenpkg.Claims, bool) {
	val, exists := c.Get(ContextKeyTokenClaims)
	if !exists {
		return nil, false
	}
	claims, ok := val.(*tokenpkg.Claims)
	return claims, ok
}
