package booking

import (
	"net/http"
	"time"

	"github.com/vilaverde/guest-portal-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrSlotTaken         = apperror.New(http.StatusConflict, "time slot already taken")
	ErrNotOwner          = apperror.New(http.StatusForbidden, "booking belongs to another stay")
	ErrInvalidDate       = apperror.New(http.StatusBadRequest, "date must be yyyy-MM-dd")
	ErrInvalidTimeRange  = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrSlotNotOnGrid     = apperror.New(http.StatusBadRequest, "time slot is not on the structure's grid")
	ErrSlotElapsed       = apperror.New(http.StatusBadRequest, "time slot has already elapsed")
	ErrUnitRequired      = apperror.New(http.StatusBadRequest, "unit is required for this structure")
	ErrUnknownUnit       = apperror.New(http.StatusBadRequest, "unit does not belong to this structure")
	ErrInvalidTransition = apperror.New(http.StatusBadRequest, "only pending requests can be approved or rejected")
	ErrNotBlock          = apperror.New(http.StatusBadRequest, "booking is not an administrative block")
)

// Status is a booking's position in its lifecycle. The vocabulary is the
// product's: solicitado (requested, awaiting staff), confirmado (approved or
// auto-confirmed), bloqueado (administrative block, not guest-owned) and
// cancelado (terminal). Cancellation is always an explicit persisted status;
// records are never deleted to express it, so the ledger stays auditable.
type Status string

const (
	StatusRequested Status = "solicitado"
	StatusConfirmed Status = "confirmado"
	StatusBlocked   Status = "bloqueado"
	StatusCancelled Status = "cancelado"
)

// Active reports whether the status occupies a slot.
func (s Status) Active() bool {
	return s == StatusRequested || s == StatusConfirmed || s == StatusBlocked
}

// activeStatuses is the SQL-side counterpart of Status.Active.
var activeStatuses = []string{
	string(StatusRequested),
	string(StatusConfirmed),
	string(StatusBlocked),
}

// Booking is one reservation (or administrative block) of a slot.
type Booking struct {
	ID            string
	StructureID   string
	StructureName string // denormalized for display; survives structure deletion
	UnitID        *string
	Date          string // yyyy-MM-dd
	StartTime     string // HH:mm
	EndTime       string // HH:mm
	StayID        *string // nil for administrative blocks
	Status        Status

	// Fields for non-slot service types sharing the ledger and approval flow.
	PreferenceTime  *string
	SelectedOptions []string
	Notes           *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy reports whether the booking belongs to the given stay.
func (b *Booking) OwnedBy(stayID string) bool {
	return b.StayID != nil && stayID != "" && *b.StayID == stayID
}

// Filter defines parameters for listing bookings.
type Filter struct {
	StayID      string
	StructureID string
	Date        string
	Status      string
	Page        int
	PageSize    int
}
