package middleware

import (
	"github.com/gin-gonic/gin"

	"biliticket/statecache/pkg/crypto"
	"biliticket/statecache/pkg/response"
)

const HeaderAdminKey = "X-Admin-Key"

// AdminAuth checks the presented admin key against the configured bcrypt
// hash. An empty hash disables the admin surface entirely.
func AdminAuth(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			response.Forbidden(c, "admin access disabled")
			c.Abort()
			return
		}

		key := c.GetHeader(HeaderAdminKey)
		if key == "" || !crypto.CheckAdminKey(key, keyHash) {
			response.Unauthorized(c, "invalid admin key")
			c.Abort()
			return
		}

		c.Next()
	}
}
