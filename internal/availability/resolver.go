package availability

import (
	"time"

	"github.com/vilaverde/guest-portal-backend/internal/booking"
	"github.com/vilaverde/guest-portal-backend/internal/override"
	"github.com/vilaverde/guest-portal-backend/internal/pkg/request"
	"github.com/vilaverde/guest-portal-backend/internal/structure"
)

// SlotStatus is the derived state of one slot for one day. It is recomputed on
// every read and never persisted; the booking ledger stays the single source
// of truth.
type SlotStatus string

const (
	// SlotPast: the slot's start time has already elapsed (property clock).
	SlotPast SlotStatus = "passou"
	// SlotMine: the active booking on the slot belongs to the requesting stay.
	SlotMine SlotStatus = "meu_horario"
	// SlotUnavailable: booked by someone else, or policy says closed.
	SlotUnavailable SlotStatus = "indisponivel"
	// SlotBlocked: occupied by an administrative block.
	SlotBlocked SlotStatus = "bloqueado"
	// SlotAvailable: free and policy says open.
	SlotAvailable SlotStatus = "disponivel"
)

// ResolveInput is the snapshot Resolve combines. Callers supply the day's
// active bookings and overrides (one scoped query each); Resolve itself does
// no I/O.
type ResolveInput struct {
	Structure        *structure.Structure
	Slot             structure.TimeSlot
	UnitID           string // empty for by_structure pools
	Date             string // yyyy-MM-dd
	Bookings         []*booking.Booking // active records for Date
	Overrides        map[string]override.Status
	RequestingStayID string
	Now              time.Time // property-local wall clock
}

// Resolve classifies one slot. Precedence, first match wins: elapsed time,
// then the booking ledger, then the day's override, then the structure
// default. A booking therefore outranks a closed override: a guest's
// confirmed slot still shows as theirs on a day staff closed the structure.
func Resolve(in ResolveInput) SlotStatus {
	today := in.Now.Format(request.DateLayout)
	if in.Date < today {
		return SlotPast
	}
	if in.Date == today && in.Slot.StartTime <= in.Now.Format(request.ClockLayout) {
		return SlotPast
	}

	matchAnyUnit := in.Structure.ManagementType == structure.ByStructure
	var unitID *string
	if !matchAnyUnit && in.UnitID != "" {
		unitID = &in.UnitID
	}

	if b := booking.FindActive(in.Bookings, in.Structure.ID, unitID, in.Slot.StartTime, matchAnyUnit); b != nil {
		switch {
		case b.OwnedBy(in.RequestingStayID):
			return SlotMine
		case b.Status == booking.StatusBlocked:
			return SlotBlocked
		default:
			return SlotUnavailable
		}
	}

	if status, ok := in.Overrides[in.Structure.ID]; ok {
		if status == override.StatusClosed {
			return SlotUnavailable
		}
		return SlotAvailable
	}

	if in.Structure.DefaultStatus == structure.DefaultOpen {
		return SlotAvailable
	}
	return SlotUnavailable
}
