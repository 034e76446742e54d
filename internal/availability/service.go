package availability

import (
	"context"
	"net/http"
	"time"

	"github.com/vilaverde/guest-portal-backend/internal/booking"
	"github.com/vilaverde/guest-portal-backend/internal/override"
	"github.com/vilaverde/guest-portal-backend/internal/pkg/apperror"
	"github.com/vilaverde/guest-portal-backend/internal/pkg/request"
	"github.com/vilaverde/guest-portal-backend/internal/structure"
)

var ErrInvalidDate = apperror.New(http.StatusBadRequest, "date must be yyyy-MM-dd")

// SlotView is one resolved cell of the day grid. BookingID is set only when
// the slot holds the requesting stay's own booking, so the UI can offer
// cancellation.
type SlotView struct {
	Slot      structure.TimeSlot
	Status    SlotStatus
	BookingID string
}

// UnitGrid is one unit's resolved slots. UnitID is empty for by_structure pools.
type UnitGrid struct {
	UnitID string
	Slots  []SlotView
}

type StructureGrid struct {
	Structure *structure.Structure
	Units     []UnitGrid
}

// DayGrid is the full resolved board for one date.
type DayGrid struct {
	Date       string
	Structures []StructureGrid
}

type Service interface {
	// DayGrid resolves every (structure x unit x slot) cell for the date.
	// structureID narrows the grid to one structure when non-empty.
	DayGrid(ctx context.Context, date, structureID, requestingStayID string) (*DayGrid, error)
}

type service struct {
	structures structure.Service
	bookings   booking.Service
	overrides  override.Service
	loc        *time.Location
	now        func() time.Time
}

func NewService(structures structure.Service, bookings booking.Service, overrides override.Service, loc *time.Location) Service {
	return &service{
		structures: structures,
		bookings:   bookings,
		overrides:  overrides,
		loc:        loc,
		now:        time.Now,
	}
}

func (s *service) DayGrid(ctx context.Context, date, structureID, requestingStayID string) (*DayGrid, error) {
	if !request.ValidDate(date) {
		return nil, ErrInvalidDate
	}

	var structures []*structure.Structure
	if structureID != "" {
		st, err := s.structures.GetByID(ctx, structureID)
		if err != nil {
			return nil, err
		}
		structures = []*structure.Structure{st}
	} else {
		// Walk every catalog page; the board must show every structure.
		for page := 1; ; page++ {
			batch, total, err := s.structures.List(ctx, structure.Filter{Page: page, PageSize: 100})
			if err != nil {
				return nil, err
			}
			structures = append(structures, batch...)
			if len(batch) == 0 || len(structures) >= total {
				break
			}
		}
	}

	active, err := s.bookings.ListActiveForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	dayOverrides, err := s.overrides.GetForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)

	grid := &DayGrid{Date: date, Structures: make([]StructureGrid, 0, len(structures))}
	for _, st := range structures {
		units := []string{""}
		if st.ManagementType == structure.ByUnit {
			units = st.Units
		}

		sg := StructureGrid{Structure: st, Units: make([]UnitGrid, 0, len(units))}
		for _, unit := range units {
			ug := UnitGrid{UnitID: unit, Slots: make([]SlotView, 0, len(st.TimeSlots))}
			for _, slot := range st.TimeSlots {
				in := ResolveInput{
					Structure:        st,
					Slot:             slot,
					UnitID:           unit,
					Date:             date,
					Bookings:         active,
					Overrides:        dayOverrides,
					RequestingStayID: requestingStayID,
					Now:              now,
				}
				view := SlotView{Slot: slot, Status: Resolve(in)}
				if view.Status == SlotMine {
					view.BookingID = ownBookingID(in)
				}
				ug.Slots = append(ug.Slots, view)
			}
			sg.Units = append(sg.Units, ug)
		}
		grid.Structures = append(grid.Structures, sg)
	}

	return grid, nil
}

func ownBookingID(in ResolveInput) string {
	matchAnyUnit := in.Structure.ManagementType == structure.ByStructure
	var unitID *string
	if !matchAnyUnit && in.UnitID != "" {
		unitID = &in.UnitID
	}
	if b := booking.FindActive(in.Bookings, in.Structure.ID, unitID, in.Slot.StartTime, matchAnyUnit); b != nil {
		return b.ID
	}
	return ""
}
