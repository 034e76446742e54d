package http

import (
	"time"

	"github.com/vilaverde/guest-portal-backend/internal/pkg/request"
	"github.com/vilaverde/guest-portal-backend/internal/structure"
)

type TimeSlotDTO struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Label     string `json:"label"`
}

type StructureResponse struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	PhotoRef       string        `json:"photo_ref,omitempty"`
	ManagementType string        `json:"management_type"`
	Units          []string      `json:"units"`
	TimeSlots      []TimeSlotDTO `json:"time_slots"`
	DefaultStatus  string        `json:"default_status"`
	ApprovalMode   string        `json:"approval_mode"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func NewResponse(s *structure.Structure) StructureResponse {
	slots := make([]TimeSlotDTO, len(s.TimeSlots))
	for i, ts := range s.TimeSlots {
		slots[i] = TimeSlotDTO{ID: ts.ID, StartTime: ts.StartTime, EndTime: ts.EndTime, Label: ts.Label}
	}
	units := s.Units
	if units == nil {
		units = []string{}
	}
	return StructureResponse{
		ID:             s.ID,
		Name:           s.Name,
		PhotoRef:       s.PhotoRef,
		ManagementType: string(s.ManagementType),
		Units:          units,
		TimeSlots:      slots,
		DefaultStatus:  string(s.DefaultStatus),
		ApprovalMode:   string(s.ApprovalMode),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type SlotBody struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Label     string `json:"label"`
}

func (b SlotBody) toModel() structure.TimeSlot {
	ts := structure.TimeSlot{
		ID:        b.ID,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Label:     b.Label,
	}
	if ts.Label == "" {
		ts.Label = ts.StartTime + "-" + ts.EndTime
	}
	if ts.ID == "" {
		ts.ID = ts.Label
	}
	return ts
}

type CreateStructureBody struct {
	Name           string     `json:"name" binding:"required"`
	ManagementType string     `json:"management_type" binding:"required,oneof=by_structure by_unit"`
	Units          []string   `json:"units"`
	TimeSlots      []SlotBody `json:"time_slots"`
	DefaultStatus  string     `json:"default_status" binding:"required,oneof=open closed"`
	ApprovalMode   string     `json:"approval_mode" binding:"required,oneof=automatic manual"`
}

type UpdateStructureBody = CreateStructureBody

func toSlots(bodies []SlotBody) []structure.TimeSlot {
	slots := make([]structure.TimeSlot, len(bodies))
	for i, b := range bodies {
		slots[i] = b.toModel()
	}
	return slots
}

type GenerateSlotsBody struct {
	Start           string `json:"start" binding:"required"`
	End             string `json:"end" binding:"required"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1"`
	GapMinutes      int    `json:"gap_minutes" binding:"min=0"`
}

type ListStructuresRequest struct {
	request.ListParams
}
