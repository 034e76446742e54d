package http

import (
	"github.com/vilaverde/guest-portal-backend/internal/availability"
)

type SlotViewDTO struct {
	SlotID    string `json:"slot_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Label     string `json:"label"`
	Status    string `json:"status"`
	BookingID string `json:"booking_id,omitempty"`
}

type UnitGridDTO struct {
	UnitID string        `json:"unit_id,omitempty"`
	Slots  []SlotViewDTO `json:"slots"`
}

type StructureGridDTO struct {
	StructureID    string        `json:"structure_id"`
	Name           string        `json:"name"`
	PhotoRef       string        `json:"photo_ref,omitempty"`
	ManagementType string        `json:"management_type"`
	ApprovalMode   string        `json:"approval_mode"`
	Units          []UnitGridDTO `json:"units"`
}

type DayGridResponse struct {
	Date       string             `json:"date"`
	Structures []StructureGridDTO `json:"structures"`
}

func NewDayGridResponse(g *availability.DayGrid) DayGridResponse {
	resp := DayGridResponse{Date: g.Date, Structures: make([]StructureGridDTO, len(g.Structures))}
	for i, sg := range g.Structures {
		dto := StructureGridDTO{
			StructureID:    sg.Structure.ID,
			Name:           sg.Structure.Name,
			PhotoRef:       sg.Structure.PhotoRef,
			ManagementType: string(sg.Structure.ManagementType),
			ApprovalMode:   string(sg.Structure.ApprovalMode),
			Units:          make([]UnitGridDTO, len(sg.Units)),
		}
		for j, ug := range sg.Units {
			unit := UnitGridDTO{UnitID: ug.UnitID, Slots: make([]SlotViewDTO, len(ug.Slots))}
			for k, sv := range ug.Slots {
				unit.Slots[k] = SlotViewDTO{
					SlotID:    sv.Slot.ID,
					StartTime: sv.Slot.StartTime,
					EndTime:   sv.Slot.EndTime,
					Label:     sv.Slot.Label,
					Status:    string(sv.Status),
					BookingID: sv.BookingID,
				}
			}
			dto.Units[j] = unit
		}
		resp.Structures[i] = dto
	}
	return resp
}

type DayGridQuery struct {
	Date        string `form:"date" binding:"required"`
	StructureID string `form:"structure_id" binding:"omitempty,uuid"`
}
