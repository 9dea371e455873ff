package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const adminKeyHeader = "Admin-Key"

// AdminAuth only lets through requests whose Admin-Key header matches
// adminKey. An empty adminKey disables the admin routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c, adminKey) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
			return
		}
		c.Next()
	}
}

// IsAdmin reports whether the request carries the admin key.
func IsAdmin(c *gin.Context, adminKey string) bool {
	if adminKey == "" {
		return false
	}
	got := c.GetHeader(adminKeyHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(adminKey)) == 1
}
