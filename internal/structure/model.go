package structure

import (
	"net/http"
	"time"

	"github.com/vilaverde/guest-portal-backend/internal/pkg/apperror"
	"github.com/vilaverde/guest-portal-backend/internal/pkg/request"
)

var (
	ErrNotFound              = apperror.New(http.StatusNotFound, "structure not found")
	ErrNameRequired          = apperror.New(http.StatusBadRequest, "name is required")
	ErrInvalidManagementType = apperror.New(http.StatusBadRequest, "management type must be by_structure or by_unit")
	ErrInvalidDefaultStatus  = apperror.New(http.StatusBadRequest, "default status must be open or closed")
	ErrInvalidApprovalMode   = apperror.New(http.StatusBadRequest, "approval mode must be automatic or manual")
	ErrUnitsRequired         = apperror.New(http.StatusBadRequest, "by_unit structures need at least one unit")
	ErrInvalidTimeSlot       = apperror.New(http.StatusBadRequest, "time slot must be HH:mm with start before end")
)

// ManagementType selects how a structure's slots are pooled.
type ManagementType string

const (
	// ByStructure shares one pool of slots across the whole structure.
	ByStructure ManagementType = "by_structure"
	// ByUnit gives each named unit (e.g. "Jacuzzi 1") its own independent pool.
	ByUnit ManagementType = "by_unit"
)

// DefaultStatus is the policy applied to a slot absent any override or booking.
type DefaultStatus string

const (
	DefaultOpen   DefaultStatus = "open"
	DefaultClosed DefaultStatus = "closed"
)

// ApprovalMode decides whether new bookings confirm immediately or await staff.
type ApprovalMode string

const (
	ApprovalAutomatic ApprovalMode = "automatic"
	ApprovalManual    ApprovalMode = "manual"
)

// TimeSlot is a fixed window on the structure's daily grid, shared by all units.
type TimeSlot struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Label     string `json:"label"`
}

// Validate checks the slot times are well-formed and non-degenerate.
func (ts TimeSlot) Validate() error {
	if !request.ValidClock(ts.StartTime) || !request.ValidClock(ts.EndTime) {
		return ErrInvalidTimeSlot
	}
	if ts.StartTime >= ts.EndTime {
		return ErrInvalidTimeSlot
	}
	return nil
}

// Structure is a bookable shared resource (spa, grill, tasting room).
type Structure struct {
	ID             string
	Name           string
	PhotoRef       string
	ManagementType ManagementType
	Units          []string
	TimeSlots      []TimeSlot
	DefaultStatus  DefaultStatus
	ApprovalMode   ApprovalMode
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks the structure definition before it is persisted.
func (s *Structure) Validate() error {
	if s.Name == "" {
		return ErrNameRequired
	}
	switch s.ManagementType {
	case ByStructure, ByUnit:
	default:
		return ErrInvalidManagementType
	}
	if s.ManagementType == ByUnit && len(s.Units) == 0 {
		return ErrUnitsRequired
	}
	switch s.DefaultStatus {
	case DefaultOpen, DefaultClosed:
	default:
		return ErrInvalidDefaultStatus
	}
	switch s.ApprovalMode {
	case ApprovalAutomatic, ApprovalManual:
	default:
		return ErrInvalidApprovalMode
	}
	for _, ts := range s.TimeSlots {
		if err := ts.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasUnit reports whether name is one of the structure's units.
func (s *Structure) HasUnit(name string) bool {
	for _, u := range s.Units {
		if u == name {
			return true
		}
	}
	return false
}

// Filter defines parameters for listing structures.
type Filter struct {
	Page     int
	PageSize int
}
