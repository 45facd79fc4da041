package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luminedge/academy-cms/internal/admins"
)

// RequireRole gates a route on the admin registry. Runs after AuthMiddleware.
// The check is advisory: it decides what the panel offers, while the store's
// own access rules protect the data.
func RequireRole(svc *admins.Service, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := ClaimString(c, "sub")
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no subject in token"})
			return
		}
		ok, err := svc.HasRole(c.Request.Context(), uid, role)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "role check failed"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}
