package booking

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilaverde/guest-portal-backend/internal/event"
	"github.com/vilaverde/guest-portal-backend/internal/structure"
)

// fakeRepo keeps the ledger in memory and mirrors the exclusivity rules of the
// pgx repository so the service can be exercised without a database.
type fakeRepo struct {
	bookings map[string]*Booking
	nextID   int
	lastPlan BulkPlan

	// beforeStatusUpdate runs at the top of UpdateStatusFrom, so tests can
	// land a competing write between a service's read and its transition.
	beforeStatusUpdate func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: map[string]*Booking{}}
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, _ Filter) ([]*Booking, int, error) {
	var out []*Booking
	for _, b := range r.bookings {
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeRepo) ListActiveForDate(_ context.Context, date string) ([]*Booking, error) {
	var out []*Booking
	for _, b := range r.bookings {
		if b.Date == date && b.Status.Active() {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateExclusive(_ context.Context, b *Booking, matchAnyUnit bool) ([]string, error) {
	var superseded []string
	if b.StayID != nil {
		for _, prior := range r.bookings {
			if prior.Status.Active() && prior.OwnedBy(*b.StayID) &&
				prior.StructureID == b.StructureID && prior.Date == b.Date {
				prior.Status = StatusCancelled
				superseded = append(superseded, prior.ID)
			}
		}
	}

	active, _ := r.ListActiveForDate(context.Background(), b.Date)
	if FindActive(active, b.StructureID, b.UnitID, b.StartTime, matchAnyUnit) != nil {
		return nil, ErrSlotTaken
	}

	r.nextID++
	b.ID = fmt.Sprintf("bk-%d", r.nextID)
	cp := *b
	r.bookings[b.ID] = &cp
	return superseded, nil
}

func (r *fakeRepo) UpdateStatusFrom(_ context.Context, id string, to Status, from ...Status) error {
	if r.beforeStatusUpdate != nil {
		r.beforeStatusUpdate()
	}

	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	for _, st := range from {
		if b.Status == st {
			b.Status = to
			return nil
		}
	}
	return ErrInvalidTransition
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.bookings[id]; !ok {
		return ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r *fakeRepo) BulkApply(_ context.Context, plan BulkPlan) error {
	r.lastPlan = plan
	for _, id := range plan.CancelIDs {
		b, ok := r.bookings[id]
		if !ok {
			return ErrNotFound
		}
		b.Status = StatusCancelled
	}
	for _, id := range plan.DeleteIDs {
		if err := r.Delete(context.Background(), id); err != nil {
			return err
		}
	}
	for _, b := range plan.InsertBlocks {
		r.nextID++
		b.ID = fmt.Sprintf("bk-%d", r.nextID)
		cp := *b
		r.bookings[b.ID] = &cp
	}
	return nil
}

// stubStructures serves a fixed catalog; only GetByID is reachable from the
// booking service.
type stubStructures struct {
	byID map[string]*structure.Structure
}

func (s *stubStructures) GetByID(_ context.Context, id string) (*structure.Structure, error) {
	st, ok := s.byID[id]
	if !ok {
		return nil, structure.ErrNotFound
	}
	return st, nil
}

func (s *stubStructures) Create(context.Context, structure.CreateRequest) (*structure.Structure, error) {
	panic("not used")
}
func (s *stubStructures) List(context.Context, structure.Filter) ([]*structure.Structure, int, error) {
	panic("not used")
}
func (s *stubStructures) Update(context.Context, string, structure.UpdateRequest) (*structure.Structure, error) {
	panic("not used")
}
func (s *stubStructures) Delete(context.Context, string) error { panic("not used") }
func (s *stubStructures) GenerateSlots(context.Context, string, structure.GenerateSlotsRequest) (*structure.Structure, error) {
	panic("not used")
}
func (s *stubStructures) SetPhoto(context.Context, string, io.Reader) (string, error) {
	panic("not used")
}
func (s *stubStructures) GetPhoto(context.Context, string) (io.ReadCloser, error) {
	panic("not used")
}

type capturePublisher struct {
	events []event.Event
}

func (p *capturePublisher) Publish(_ context.Context, e event.Event) {
	p.events = append(p.events, e)
}

func (p *capturePublisher) types() []event.Type {
	var out []event.Type
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var testClock = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

const (
	futureDate = "2026-03-11"
	pastDate   = "2026-03-09"
)

func newTestService(t *testing.T) (Service, *fakeRepo, *capturePublisher) {
	t.Helper()

	slots := []structure.TimeSlot{
		{ID: "09:00-10:00", StartTime: "09:00", EndTime: "10:00", Label: "09:00-10:00"},
		{ID: "10:00-11:00", StartTime: "10:00", EndTime: "11:00", Label: "10:00-11:00"},
	}
	catalog := &stubStructures{byID: map[string]*structure.Structure{
		"spa": {
			ID: "spa", Name: "Spa",
			ManagementType: structure.ByStructure,
			TimeSlots:      slots,
			DefaultStatus:  structure.DefaultOpen,
			ApprovalMode:   structure.ApprovalAutomatic,
		},
		"jacuzzi": {
			ID: "jacuzzi", Name: "Jacuzzi",
			ManagementType: structure.ByUnit,
			Units:          []string{"Jacuzzi 1", "Jacuzzi 2"},
			TimeSlots:      slots,
			DefaultStatus:  structure.DefaultOpen,
			ApprovalMode:   structure.ApprovalManual,
		},
	}}

	repo := newFakeRepo()
	pub := &capturePublisher{}
	svc := NewService(repo, catalog, pub, time.UTC)
	svc.(*service).now = func() time.Time { return testClock }
	return svc, repo, pub
}

func createReq(structureID, stayID string) CreateRequest {
	return CreateRequest{
		StructureID: structureID,
		Date:        futureDate,
		StartTime:   "09:00",
		EndTime:     "10:00",
		StayID:      stayID,
	}
}

func TestCreateAutomaticApproval(t *testing.T) {
	svc, _, pub := newTestService(t)

	b, err := svc.Create(context.Background(), createReq("spa", "stay-a"))
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "Spa", b.StructureName)
	assert.Equal(t, []event.Type{event.TypeBookingCreated}, pub.types())
}

func TestCreateManualApproval(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := createReq("jacuzzi", "stay-a")
	unit := "Jacuzzi 1"
	req.UnitID = &unit

	b, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StatusRequested, b.Status)
	require.NotNil(t, b.UnitID)
	assert.Equal(t, "Jacuzzi 1", *b.UnitID)
}

func TestCreateByStructureDropsUnit(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := createReq("spa", "stay-a")
	unit := "stale"
	req.UnitID = &unit

	b, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, b.UnitID)
}

func TestCreateSupersedesPriorBooking(t *testing.T) {
	svc, repo, pub := newTestService(t)

	first, err := svc.Create(context.Background(), createReq("spa", "stay-a"))
	require.NoError(t, err)

	req := createReq("spa", "stay-a")
	req.StartTime, req.EndTime = "10:00", "11:00"
	second, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	old, err := repo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, old.Status)
	assert.Equal(t, StatusConfirmed, second.Status)

	assert.Equal(t, []event.Type{
		event.TypeBookingCreated,
		event.TypeBookingCancelled,
		event.TypeBookingCreated,
	}, pub.types())
}

func TestCreateSlotTaken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), createReq("spa", "stay-a"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), createReq("spa", "stay-b"))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestCreateUnitIndependence(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := createReq("jacuzzi", "stay-a")
	unit1 := "Jacuzzi 1"
	req.UnitID = &unit1
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	// Same slot on the sibling unit is a separate pool.
	req = createReq("jacuzzi", "stay-b")
	unit2 := "Jacuzzi 2"
	req.UnitID = &unit2
	_, err = svc.Create(context.Background(), req)
	require.NoError(t, err)

	// But the taken unit stays taken.
	req = createReq("jacuzzi", "stay-c")
	req.UnitID = &unit1
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	unit := "Jacuzzi 1"
	unknown := "Sauna 9"

	cases := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"malformed date", CreateRequest{StructureID: "spa", Date: "11/03/2026", StartTime: "09:00", EndTime: "10:00", StayID: "s"}, ErrInvalidDate},
		{"reversed time range", CreateRequest{StructureID: "spa", Date: futureDate, StartTime: "10:00", EndTime: "09:00", StayID: "s"}, ErrInvalidTimeRange},
		{"slot not on grid", CreateRequest{StructureID: "spa", Date: futureDate, StartTime: "09:30", EndTime: "10:30", StayID: "s"}, ErrSlotNotOnGrid},
		{"unit required", CreateRequest{StructureID: "jacuzzi", Date: futureDate, StartTime: "09:00", EndTime: "10:00", StayID: "s"}, ErrUnitRequired},
		{"unknown unit", CreateRequest{StructureID: "jacuzzi", UnitID: &unknown, Date: futureDate, StartTime: "09:00", EndTime: "10:00", StayID: "s"}, ErrUnknownUnit},
		{"unknown structure", CreateRequest{StructureID: "nope", Date: futureDate, StartTime: "09:00", EndTime: "10:00", StayID: "s"}, structure.ErrNotFound},
		{"elapsed slot", CreateRequest{StructureID: "spa", Date: pastDate, StartTime: "09:00", EndTime: "10:00", StayID: "s"}, ErrSlotElapsed},
		{"started earlier today", CreateRequest{StructureID: "jacuzzi", UnitID: &unit, Date: "2026-03-10", StartTime: "09:00", EndTime: "10:00", StayID: "s"}, ErrSlotElapsed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCancelOwnership(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, createReq("spa", "stay-a"))
	require.NoError(t, err)

	err = svc.Cancel(ctx, b.ID, "stay-b", false)
	assert.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, svc.Cancel(ctx, b.ID, "stay-a", false))
	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	// Second cancel is a no-op, even from a stranger.
	assert.NoError(t, svc.Cancel(ctx, b.ID, "stay-b", false))
}

func TestCancelByStaff(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, createReq("spa", "stay-a"))
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, b.ID, "", true))
	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestApproveAndReject(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()
	unit := "Jacuzzi 1"

	req := createReq("jacuzzi", "stay-a")
	req.UnitID = &unit
	b, err := svc.Create(ctx, req)
	require.NoError(t, err)
	require.Equal(t, StatusRequested, b.Status)

	approved, err := svc.Approve(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, approved.Status)

	// Deciding twice is rejected.
	_, err = svc.Approve(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Reject(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	unit2 := "Jacuzzi 2"
	req.UnitID = &unit2
	req.StayID = "stay-b"
	b2, err := svc.Create(ctx, req)
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, b2.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, rejected.Status)

	assert.Contains(t, pub.types(), event.TypeBookingApproved)
	assert.Contains(t, pub.types(), event.TypeBookingRejected)
}

func TestApproveLosesRaceWithCancel(t *testing.T) {
	// A guest cancel that commits between the approval's read and its write
	// must win: cancelado is terminal and is never overwritten.
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	unit := "Jacuzzi 1"

	req := createReq("jacuzzi", "stay-a")
	req.UnitID = &unit
	b, err := svc.Create(ctx, req)
	require.NoError(t, err)
	require.Equal(t, StatusRequested, b.Status)

	repo.beforeStatusUpdate = func() {
		repo.beforeStatusUpdate = nil
		repo.bookings[b.ID].Status = StatusCancelled
	}

	_, err = svc.Approve(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestCancelRacingCancelIsIdempotent(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, createReq("spa", "stay-a"))
	require.NoError(t, err)

	// A competing cancel lands first; ours still reports success and does not
	// emit a second cancellation event.
	repo.beforeStatusUpdate = func() {
		repo.beforeStatusUpdate = nil
		repo.bookings[b.ID].Status = StatusCancelled
	}

	require.NoError(t, svc.Cancel(ctx, b.ID, "stay-a", false))

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, []event.Type{event.TypeBookingCreated}, pub.types())
}

func TestBlockAndUnblock(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	b, err := svc.Block(ctx, BlockRequest{
		StructureID: "spa", Date: futureDate, StartTime: "09:00", EndTime: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusBlocked, b.Status)
	assert.Nil(t, b.StayID)

	// A blocked slot refuses guest bookings.
	_, err = svc.Create(ctx, createReq("spa", "stay-a"))
	assert.ErrorIs(t, err, ErrSlotTaken)

	require.NoError(t, svc.Unblock(ctx, b.ID))
	_, err = repo.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []event.Type{event.TypeSlotBlocked, event.TypeSlotUnblocked}, pub.types())
}

func TestBlockElapsedSlotAllowed(t *testing.T) {
	// Staff may block slots in the past, e.g. to record maintenance.
	svc, _, _ := newTestService(t)

	b, err := svc.Block(context.Background(), BlockRequest{
		StructureID: "spa", Date: pastDate, StartTime: "09:00", EndTime: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusBlocked, b.Status)
}

func TestUnblockRejectsGuestBooking(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, createReq("spa", "stay-a"))
	require.NoError(t, err)

	err = svc.Unblock(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotBlock)
}

func TestBulkValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	sel := []BulkSelection{{StructureID: "spa", StartTime: "09:00", EndTime: "10:00"}}

	_, err := svc.Bulk(ctx, BulkRequest{Date: "bad", Action: BulkBlock, Selections: sel})
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.Bulk(ctx, BulkRequest{Date: futureDate, Action: "purge", Selections: sel})
	assert.ErrorIs(t, err, ErrInvalidBulkAction)

	_, err = svc.Bulk(ctx, BulkRequest{Date: futureDate, Action: BulkBlock})
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestBulkBlockSkipsGuestBookings(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	// stay-a holds 09:00; 10:00 is free.
	_, err := svc.Create(ctx, createReq("spa", "stay-a"))
	require.NoError(t, err)

	res, err := svc.Bulk(ctx, BulkRequest{
		Date:   futureDate,
		Action: BulkBlock,
		Selections: []BulkSelection{
			{StructureID: "spa", StartTime: "09:00", EndTime: "10:00"},
			{StructureID: "spa", StartTime: "10:00", EndTime: "11:00"},
		},
	})
	require.NoError(t, err)

	assert.Len(t, res.Skipped, 1)
	assert.Equal(t, "09:00", res.Skipped[0].StartTime)
	assert.Len(t, res.Applied, 1)
	assert.Equal(t, "10:00", res.Applied[0].StartTime)

	require.Len(t, repo.lastPlan.InsertBlocks, 1)
	assert.Equal(t, StatusBlocked, repo.lastPlan.InsertBlocks[0].Status)
	assert.Empty(t, repo.lastPlan.CancelIDs)
	assert.Empty(t, repo.lastPlan.DeleteIDs)
}

func TestBulkBlockExistingBlockIsNoop(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Block(ctx, BlockRequest{
		StructureID: "spa", Date: futureDate, StartTime: "09:00", EndTime: "10:00",
	})
	require.NoError(t, err)

	res, err := svc.Bulk(ctx, BulkRequest{
		Date:   futureDate,
		Action: BulkBlock,
		Selections: []BulkSelection{
			{StructureID: "spa", StartTime: "09:00", EndTime: "10:00"},
		},
	})
	require.NoError(t, err)

	assert.Len(t, res.Applied, 1)
	assert.Empty(t, res.Skipped)
	assert.True(t, repo.lastPlan.Empty())
}

func TestBulkRelease(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	booked, err := svc.Create(ctx, createReq("spa", "stay-a"))
	require.NoError(t, err)

	blocked, err := svc.Block(ctx, BlockRequest{
		StructureID: "spa", Date: futureDate, StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	res, err := svc.Bulk(ctx, BulkRequest{
		Date:   futureDate,
		Action: BulkRelease,
		Selections: []BulkSelection{
			{StructureID: "spa", StartTime: "09:00", EndTime: "10:00"},
			{StructureID: "spa", StartTime: "10:00", EndTime: "11:00"},
		},
	})
	require.NoError(t, err)

	assert.Len(t, res.Applied, 2)
	assert.Empty(t, res.Skipped)

	// Guest bookings are cancelled, blocks removed outright.
	assert.Equal(t, []string{booked.ID}, repo.lastPlan.CancelIDs)
	assert.Equal(t, []string{blocked.ID}, repo.lastPlan.DeleteIDs)

	got, err := repo.GetByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	_, err = repo.GetByID(ctx, blocked.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBulkReleaseFreeSlotIsNoop(t *testing.T) {
	svc, repo, _ := newTestService(t)

	res, err := svc.Bulk(context.Background(), BulkRequest{
		Date:   futureDate,
		Action: BulkRelease,
		Selections: []BulkSelection{
			{StructureID: "spa", StartTime: "09:00", EndTime: "10:00"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, res.Applied, 1)
	assert.True(t, repo.lastPlan.Empty())
}
