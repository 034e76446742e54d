package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking ledger routes. Approval, blocking and bulk
// operations are staff-only; creation and cancellation are open to guests.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, staffMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.POST("/:id/cancel", h.Cancel)
	}

	staff := group.Group("")
	staff.Use(staffMiddleware)
	{
		staff.POST("/:id/approve", h.Approve)
		staff.POST("/:id/reject", h.Reject)
		staff.POST("/bulk", h.Bulk)
	}

	blocks := g.Group("/blocks")
	blocks.Use(authMiddleware, staffMiddleware)
	{
		blocks.POST("", h.Block)
		blocks.DELETE("/:id", h.Unblock)
	}
}
