package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vilaverde/guest-portal-backend/internal/auth"
	"github.com/vilaverde/guest-portal-backend/internal/booking"
	"github.com/vilaverde/guest-portal-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	// Guests only ever see their own stay's bookings; staff may filter freely.
	stayID := req.StayID
	if !auth.IsStaff(c) {
		stayID = auth.GetStayID(c)
		if stayID == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "guest token has no stay"})
			return
		}
	}

	bookings, total, err := h.service.List(c.Request.Context(), booking.Filter{
		StayID:      stayID,
		StructureID: req.StructureID,
		Date:        req.Date,
		Status:      req.Status,
		Page:        req.Page,
		PageSize:    req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !auth.IsStaff(c) && !b.OwnedBy(auth.GetStayID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	stayID := auth.GetStayID(c)
	if auth.IsStaff(c) && body.StayID != "" {
		// Staff scheduling on a guest's behalf.
		stayID = body.StayID
	}
	if stayID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stay_id is required"})
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		StructureID:     body.StructureID,
		UnitID:          body.UnitID,
		Date:            body.Date,
		StartTime:       body.StartTime,
		EndTime:         body.EndTime,
		StayID:          stayID,
		PreferenceTime:  body.PreferenceTime,
		SelectedOptions: body.SelectedOptions,
		Notes:           body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	err := h.service.Cancel(c.Request.Context(), id, auth.GetStayID(c), auth.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, h.service.Approve)
}

func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, h.service.Reject)
}

func (h *Handler) decide(c *gin.Context, fn func(ctx context.Context, id string) (*booking.Booking, error)) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := fn(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Block(c *gin.Context) {
	var body BlockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.service.Block(c.Request.Context(), booking.BlockRequest{
		StructureID: body.StructureID,
		UnitID:      body.UnitID,
		Date:        body.Date,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Unblock(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Unblock(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Bulk(c *gin.Context) {
	var body BulkBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	selections := make([]booking.BulkSelection, len(body.Selections))
	for i, sel := range body.Selections {
		selections[i] = booking.BulkSelection{
			StructureID: sel.StructureID,
			UnitID:      sel.UnitID,
			StartTime:   sel.StartTime,
			EndTime:     sel.EndTime,
		}
	}

	result, err := h.service.Bulk(c.Request.Context(), booking.BulkRequest{
		Date:       body.Date,
		Action:     booking.BulkAction(body.Action),
		Selections: selections,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBulkResponse(result))
}
