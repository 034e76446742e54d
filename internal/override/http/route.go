package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers daily override routes. Overrides are a staff-only
// concern; guests see their effect through the availability grid.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	group := g.Group("/overrides")
	group.Use(authMiddleware, staffMiddleware)
	{
		group.GET("", h.GetForDate)
		group.PUT("", h.Set)
		group.DELETE("", h.Clear)
	}
}
