package mw

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminKeyHeader carries the shared admin key.
const AdminKeyHeader = "X-Admin-Key"

// AdminAuth rejects requests that do not present key in the X-Admin-Key
// header. With an empty key every admin request is refused.
func AdminAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(AdminKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
