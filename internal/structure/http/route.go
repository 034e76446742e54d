package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers structure catalog routes. Reads are available to any
// authenticated actor; writes require a staff token.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	group := g.Group("/structures")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.GET("/:id/photo", h.GetPhoto)
	}

	staff := group.Group("")
	staff.Use(staffMiddleware)
	{
		staff.POST("", h.Create)
		staff.PUT("/:id", h.Update)
		staff.DELETE("/:id", h.Delete)
		staff.POST("/:id/timeslots/generate", h.GenerateSlots)
		staff.POST("/:id/photo", h.UploadPhoto)
	}
}
