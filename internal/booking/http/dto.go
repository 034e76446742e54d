package http

import (
	"time"

	"github.com/vilaverde/guest-portal-backend/internal/booking"
	"github.com/vilaverde/guest-portal-backend/internal/pkg/request"
)

type BookingResponse struct {
	ID              string    `json:"id"`
	StructureID     string    `json:"structure_id"`
	StructureName   string    `json:"structure_name"`
	UnitID          *string   `json:"unit_id,omitempty"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	StayID          *string   `json:"stay_id,omitempty"`
	Status          string    `json:"status"`
	PreferenceTime  *string   `json:"preference_time,omitempty"`
	SelectedOptions []string  `json:"selected_options,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		StructureID:     b.StructureID,
		StructureName:   b.StructureName,
		UnitID:          b.UnitID,
		Date:            b.Date,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		StayID:          b.StayID,
		Status:          string(b.Status),
		PreferenceTime:  b.PreferenceTime,
		SelectedOptions: b.SelectedOptions,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

type CreateBookingBody struct {
	StructureID string  `json:"structure_id" binding:"required,uuid"`
	UnitID      *string `json:"unit_id"`
	Date        string  `json:"date" binding:"required"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     string  `json:"end_time" binding:"required"`

	PreferenceTime  *string  `json:"preference_time"`
	SelectedOptions []string `json:"selected_options"`
	Notes           *string  `json:"notes"`

	// StayID lets staff schedule on a guest's behalf; ignored for guest tokens.
	StayID string `json:"stay_id"`
}

type BlockBody struct {
	StructureID string  `json:"structure_id" binding:"required,uuid"`
	UnitID      *string `json:"unit_id"`
	Date        string  `json:"date" binding:"required"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     string  `json:"end_time" binding:"required"`
}

type ListBookingsRequest struct {
	request.ListParams
	StructureID string `form:"structure_id" binding:"omitempty,uuid"`
	Date        string `form:"date"`
	Status      string `form:"status" binding:"omitempty,oneof=solicitado confirmado bloqueado cancelado"`
	StayID      string `form:"stay_id"`
}

type BulkSelectionBody struct {
	StructureID string  `json:"structure_id" binding:"required,uuid"`
	UnitID      *string `json:"unit_id"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     string  `json:"end_time" binding:"required"`
}

type BulkBody struct {
	Date       string              `json:"date" binding:"required"`
	Action     string              `json:"action" binding:"required,oneof=block release"`
	Selections []BulkSelectionBody `json:"selections" binding:"required,min=1,dive"`
}

type BulkSelectionResponse struct {
	StructureID string  `json:"structure_id"`
	UnitID      *string `json:"unit_id,omitempty"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
}

type BulkResponse struct {
	Applied []BulkSelectionResponse `json:"applied"`
	Skipped []BulkSelectionResponse `json:"skipped"`
}

func NewBulkResponse(r *booking.BulkResult) BulkResponse {
	conv := func(in []booking.BulkSelection) []BulkSelectionResponse {
		out := make([]BulkSelectionResponse, len(in))
		for i, s := range in {
			out[i] = BulkSelectionResponse{
				StructureID: s.StructureID,
				UnitID:      s.UnitID,
				StartTime:   s.StartTime,
				EndTime:     s.EndTime,
			}
		}
		return out
	}
	return BulkResponse{Applied: conv(r.Applied), Skipped: conv(r.Skipped)}
}
