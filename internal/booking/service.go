package booking

import (
	"context"
	"errors"
	"time"

	"github.com/vilaverde/guest-portal-backend/internal/event"
	"github.com/vilaverde/guest-portal-backend/internal/pkg/request"
	"github.com/vilaverde/guest-portal-backend/internal/structure"
)

type CreateRequest struct {
	StructureID string
	UnitID      *string
	Date        string
	StartTime   string
	EndTime     string
	StayID      string

	PreferenceTime  *string
	SelectedOptions []string
	Notes           *string
}

// BlockRequest addresses a slot for an administrative block.
type BlockRequest struct {
	StructureID string
	UnitID      *string
	Date        string
	StartTime   string
	EndTime     string
}

type Service interface {
	// Create places a guest reservation. The guest's prior active booking for
	// the same structure and date is superseded in the same transaction, and
	// the slot's exclusivity is re-checked at write time.
	Create(ctx context.Context, req CreateRequest) (*Booking, error)

	// Cancel marks the booking cancelado. Guests may only cancel their own;
	// staff may cancel any. Cancelling an already-terminal booking is a no-op.
	Cancel(ctx context.Context, id, actorStayID string, isStaff bool) error

	Approve(ctx context.Context, id string) (*Booking, error)
	Reject(ctx context.Context, id string) (*Booking, error)

	// Block reserves a slot administratively (no owning stay). A slot with an
	// active booking cannot be blocked; the conflict is surfaced, never
	// silently overwritten.
	Block(ctx context.Context, req BlockRequest) (*Booking, error)
	Unblock(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	ListActiveForDate(ctx context.Context, date string) ([]*Booking, error)

	Bulk(ctx context.Context, req BulkRequest) (*BulkResult, error)
}

type service struct {
	repo       Repository
	structures structure.Service
	events     event.Publisher
	loc        *time.Location
	now        func() time.Time
}

func NewService(repo Repository, structures structure.Service, events event.Publisher, loc *time.Location) Service {
	return &service{
		repo:       repo,
		structures: structures,
		events:     events,
		loc:        loc,
		now:        time.Now,
	}
}

// resolveSlot validates the addressed slot against the catalog and returns the
// structure it belongs to. Shared by Create, Block and the bulk engine.
func (s *service) resolveSlot(ctx context.Context, structureID string, unitID *string, date, startTime, endTime string) (*structure.Structure, error) {
	if !request.ValidDate(date) {
		return nil, ErrInvalidDate
	}
	if !request.ValidClock(startTime) || !request.ValidClock(endTime) || startTime >= endTime {
		return nil, ErrInvalidTimeRange
	}

	st, err := s.structures.GetByID(ctx, structureID)
	if err != nil {
		return nil, err
	}

	onGrid := false
	for _, ts := range st.TimeSlots {
		if ts.StartTime == startTime && ts.EndTime == endTime {
			onGrid = true
			break
		}
	}
	if !onGrid {
		return nil, ErrSlotNotOnGrid
	}

	switch st.ManagementType {
	case structure.ByUnit:
		if unitID == nil || *unitID == "" {
			return nil, ErrUnitRequired
		}
		if !st.HasUnit(*unitID) {
			return nil, ErrUnknownUnit
		}
	default:
		// by_structure pools ignore units entirely.
	}

	return st, nil
}

// elapsed reports whether the slot's start is already past in property time.
func (s *service) elapsed(date, startTime string) bool {
	now := s.now().In(s.loc)
	today := now.Format(request.DateLayout)
	if date < today {
		return true
	}
	return date == today && startTime <= now.Format(request.ClockLayout)
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	st, err := s.resolveSlot(ctx, req.StructureID, req.UnitID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if s.elapsed(req.Date, req.StartTime) {
		return nil, ErrSlotElapsed
	}

	status := StatusRequested
	if st.ApprovalMode == structure.ApprovalAutomatic {
		status = StatusConfirmed
	}

	unitID := req.UnitID
	if st.ManagementType == structure.ByStructure {
		unitID = nil
	}

	stayID := req.StayID
	b := &Booking{
		StructureID:     st.ID,
		StructureName:   st.Name,
		UnitID:          unitID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		StayID:          &stayID,
		Status:          status,
		PreferenceTime:  req.PreferenceTime,
		SelectedOptions: req.SelectedOptions,
		Notes:           req.Notes,
	}

	superseded, err := s.repo.CreateExclusive(ctx, b, st.ManagementType == structure.ByStructure)
	if err != nil {
		return nil, err
	}

	for _, id := range superseded {
		s.events.Publish(ctx, event.Event{
			Type:        event.TypeBookingCancelled,
			BookingID:   id,
			StructureID: b.StructureID,
			StayID:      stayID,
			Date:        b.Date,
		})
	}
	s.publish(ctx, event.TypeBookingCreated, b)

	return b, nil
}

func (s *service) Cancel(ctx context.Context, id, actorStayID string, isStaff bool) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Idempotent: a second cancel finds a terminal record and succeeds.
	if b.Status == StatusCancelled {
		return nil
	}

	if !isStaff && !b.OwnedBy(actorStayID) {
		return ErrNotOwner
	}

	err = s.repo.UpdateStatusFrom(ctx, b.ID, StatusCancelled,
		StatusRequested, StatusConfirmed, StatusBlocked)
	if errors.Is(err, ErrInvalidTransition) {
		// The row left the active set after our read (e.g. a concurrent
		// cancel); same terminal outcome, so still a success.
		return nil
	}
	if err != nil {
		return err
	}
	s.publish(ctx, event.TypeBookingCancelled, b)
	return nil
}

func (s *service) Approve(ctx context.Context, id string) (*Booking, error) {
	return s.decide(ctx, id, StatusConfirmed, event.TypeBookingApproved)
}

func (s *service) Reject(ctx context.Context, id string) (*Booking, error) {
	return s.decide(ctx, id, StatusCancelled, event.TypeBookingRejected)
}

func (s *service) decide(ctx context.Context, id string, to Status, evType event.Type) (*Booking, error) {
	// The repository only applies the transition while the row is still
	// solicitado, so a cancel landing first cannot be overwritten.
	if err := s.repo.UpdateStatusFrom(ctx, id, to, StatusRequested); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, evType, b)
	return b, nil
}

func (s *service) Block(ctx context.Context, req BlockRequest) (*Booking, error) {
	st, err := s.resolveSlot(ctx, req.StructureID, req.UnitID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	unitID := req.UnitID
	if st.ManagementType == structure.ByStructure {
		unitID = nil
	}

	b := &Booking{
		StructureID:   st.ID,
		StructureName: st.Name,
		UnitID:        unitID,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Status:        StatusBlocked,
	}

	if _, err := s.repo.CreateExclusive(ctx, b, st.ManagementType == structure.ByStructure); err != nil {
		return nil, err
	}
	s.publish(ctx, event.TypeSlotBlocked, b)
	return b, nil
}

func (s *service) Unblock(ctx context.Context, id string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.Status != StatusBlocked {
		return ErrNotBlock
	}

	if err := s.repo.Delete(ctx, b.ID); err != nil {
		return err
	}
	s.publish(ctx, event.TypeSlotUnblocked, b)
	return nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListActiveForDate(ctx context.Context, date string) ([]*Booking, error) {
	if !request.ValidDate(date) {
		return nil, ErrInvalidDate
	}
	return s.repo.ListActiveForDate(ctx, date)
}

func (s *service) publish(ctx context.Context, t event.Type, b *Booking) {
	stayID := ""
	if b.StayID != nil {
		stayID = *b.StayID
	}
	s.events.Publish(ctx, event.Event{
		Type:        t,
		BookingID:   b.ID,
		StructureID: b.StructureID,
		StayID:      stayID,
		Date:        b.Date,
		StartTime:   b.StartTime,
	})
}
