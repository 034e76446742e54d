package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vilaverde/guest-portal-backend/internal/auth"
	"github.com/vilaverde/guest-portal-backend/internal/availability"
	"github.com/vilaverde/guest-portal-backend/internal/pkg/response"
)

type Handler struct {
	service availability.Service
}

func NewHandler(service availability.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) DayGrid(c *gin.Context) {
	var q DayGridQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	// Staff tokens carry no stay, so no slot resolves to meu_horario for them.
	grid, err := h.service.DayGrid(c.Request.Context(), q.Date, q.StructureID, auth.GetStayID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewDayGridResponse(grid))
}
