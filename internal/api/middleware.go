package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vilaverde/guest-portal-backend/internal/auth"
)

// RequireStaff ensures the authenticated actor holds a staff token.
// It MUST be used after auth.AuthRequired middleware.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.GetActorID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !auth.IsStaff(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: staff access required"})
			return
		}
		c.Next()
	}
}
