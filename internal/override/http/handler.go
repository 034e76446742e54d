package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vilaverde/guest-portal-backend/internal/override"
	"github.com/vilaverde/guest-portal-backend/internal/pkg/response"
)

type Handler struct {
	service override.Service
}

func NewHandler(service override.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetForDate(c *gin.Context) {
	var q OverrideQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	overrides, err := h.service.GetForDate(c.Request.Context(), q.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	// structureID -> open|closed, mirroring the resolver's input shape.
	result := make(map[string]string, len(overrides))
	for id, status := range overrides {
		result[id] = string(status)
	}
	c.JSON(http.StatusOK, gin.H{"date": q.Date, "overrides": result})
}

func (h *Handler) Set(c *gin.Context) {
	var body SetOverrideBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	o, err := h.service.Set(c.Request.Context(), body.Date, body.StructureID, override.Status(body.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(o))
}

func (h *Handler) Clear(c *gin.Context) {
	var q OverrideQuery
	if err := c.ShouldBindQuery(&q); err != nil || q.StructureID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and structure_id query parameters are required"})
		return
	}

	if err := h.service.Clear(c.Request.Context(), q.Date, q.StructureID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
