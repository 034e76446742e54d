package booking

import (
	"context"
	"net/http"

	"github.com/vilaverde/guest-portal-backend/internal/event"
	"github.com/vilaverde/guest-portal-backend/internal/pkg/apperror"
	"github.com/vilaverde/guest-portal-backend/internal/pkg/request"
	"github.com/vilaverde/guest-portal-backend/internal/structure"
)

var (
	ErrInvalidBulkAction = apperror.New(http.StatusBadRequest, "action must be block or release")
	ErrEmptySelection    = apperror.New(http.StatusBadRequest, "at least one selection is required")
)

// BulkAction is the transformation a bulk operation applies to its selections.
type BulkAction string

const (
	BulkBlock   BulkAction = "block"
	BulkRelease BulkAction = "release"
)

// BulkSelection addresses one slot of one structure (and unit) for the date.
type BulkSelection struct {
	StructureID string
	UnitID      *string
	StartTime   string
	EndTime     string
}

type BulkRequest struct {
	Date       string
	Action     BulkAction
	Selections []BulkSelection
}

// BulkResult reports which selections were applied and which were skipped
// because an existing guest booking occupies the slot. Applied changes commit
// as one transaction; skipped selections are never silently destroyed.
type BulkResult struct {
	Applied []BulkSelection
	Skipped []BulkSelection
}

func (s *service) Bulk(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	if !request.ValidDate(req.Date) {
		return nil, ErrInvalidDate
	}
	if req.Action != BulkBlock && req.Action != BulkRelease {
		return nil, ErrInvalidBulkAction
	}
	if len(req.Selections) == 0 {
		return nil, ErrEmptySelection
	}

	// Validate every selection against the catalog before touching the ledger.
	structures := map[string]*structure.Structure{}
	for _, sel := range req.Selections {
		st, err := s.resolveSlot(ctx, sel.StructureID, sel.UnitID, req.Date, sel.StartTime, sel.EndTime)
		if err != nil {
			return nil, err
		}
		structures[sel.StructureID] = st
	}

	active, err := s.repo.ListActiveForDate(ctx, req.Date)
	if err != nil {
		return nil, err
	}

	var plan BulkPlan
	result := &BulkResult{Applied: []BulkSelection{}, Skipped: []BulkSelection{}}
	var cancelled, blocked []*Booking

	for _, sel := range req.Selections {
		st := structures[sel.StructureID]
		matchAnyUnit := st.ManagementType == structure.ByStructure
		rec := FindActive(active, sel.StructureID, sel.UnitID, sel.StartTime, matchAnyUnit)

		switch req.Action {
		case BulkBlock:
			if rec == nil {
				unitID := sel.UnitID
				if matchAnyUnit {
					unitID = nil
				}
				b := &Booking{
					StructureID:   st.ID,
					StructureName: st.Name,
					UnitID:        unitID,
					Date:          req.Date,
					StartTime:     sel.StartTime,
					EndTime:       sel.EndTime,
					Status:        StatusBlocked,
				}
				plan.InsertBlocks = append(plan.InsertBlocks, b)
				blocked = append(blocked, b)
				result.Applied = append(result.Applied, sel)
				continue
			}
			if rec.StayID != nil {
				// Existing guest booking: report back, never overwrite.
				result.Skipped = append(result.Skipped, sel)
				continue
			}
			// Already an administrative block; nothing to change.
			result.Applied = append(result.Applied, sel)

		case BulkRelease:
			if rec == nil {
				// Already free.
				result.Applied = append(result.Applied, sel)
				continue
			}
			if rec.Status == StatusBlocked {
				plan.DeleteIDs = append(plan.DeleteIDs, rec.ID)
			} else {
				plan.CancelIDs = append(plan.CancelIDs, rec.ID)
				cancelled = append(cancelled, rec)
			}
			result.Applied = append(result.Applied, sel)
		}
	}

	if err := s.repo.BulkApply(ctx, plan); err != nil {
		return nil, err
	}

	for _, b := range cancelled {
		s.publish(ctx, event.TypeBookingCancelled, b)
	}
	for _, b := range blocked {
		s.publish(ctx, event.TypeSlotBlocked, b)
	}

	return result, nil
}

// FindActive locates the active record occupying (structure, unit, startTime),
// applying the structure's unit-match rule: by_structure pools match any unit,
// by_unit pools require an exact unit match.
func FindActive(active []*Booking, structureID string, unitID *string, startTime string, matchAnyUnit bool) *Booking {
	want := ""
	if unitID != nil {
		want = *unitID
	}
	for _, b := range active {
		if b.StructureID != structureID || b.StartTime != startTime {
			continue
		}
		if matchAnyUnit {
			return b
		}
		got := ""
		if b.UnitID != nil {
			got = *b.UnitID
		}
		if got == want {
			return b
		}
	}
	return nil
}
