package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userId"

// Identity stores the caller identity in the request context. Authentication
// is handled upstream; this service only needs the owning-user reference,
// and anonymous uploads are allowed.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if userID != "" {
			c.Set(userIDKey, userID)
		}
		c.Next()
	}
}

// UserIDFromContext returns the caller's user id, or "" for anonymous callers.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}
