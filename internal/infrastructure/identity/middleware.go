package identity

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/identity/port"
)

const contextKey = "identity.userID"

// Middleware resolves the request identity and aborts with 401 before any
// core handler runs when resolution fails.
func Middleware(resolver port.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolver.Resolve(c.Request.Context(), c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(contextKey, id.UserID)
		c.Next()
	}
}

// UserID returns the resolved user id for the current request, or "" when
// the middleware did not run.
func UserID(c *gin.Context) string {
	v, _ := c.Get(contextKey)
	id, _ := v.(string)
	return id
}
