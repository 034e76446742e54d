package http

import (
	"time"

	"github.com/vilaverde/guest-portal-backend/internal/override"
)

type OverrideResponse struct {
	Date        string    `json:"date"`
	StructureID string    `json:"structure_id"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewResponse(o *override.Override) OverrideResponse {
	return OverrideResponse{
		Date:        o.Date,
		StructureID: o.StructureID,
		Status:      string(o.Status),
		UpdatedAt:   o.UpdatedAt,
	}
}

type SetOverrideBody struct {
	Date        string `json:"date" binding:"required"`
	StructureID string `json:"structure_id" binding:"required,uuid"`
	Status      string `json:"status" binding:"required,oneof=open closed"`
}

type OverrideQuery struct {
	Date        string `form:"date" binding:"required"`
	StructureID string `form:"structure_id" binding:"omitempty,uuid"`
}
