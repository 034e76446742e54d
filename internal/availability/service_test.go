package availability

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilaverde/guest-portal-backend/internal/booking"
	"github.com/vilaverde/guest-portal-backend/internal/override"
	"github.com/vilaverde/guest-portal-backend/internal/structure"
)

// pagedCatalog serves a fixed structure list page by page, recording the pages
// requested.
type pagedCatalog struct {
	all   []*structure.Structure
	pages []int
}

func (c *pagedCatalog) List(_ context.Context, filter structure.Filter) ([]*structure.Structure, int, error) {
	c.pages = append(c.pages, filter.Page)
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(c.all) {
		return nil, len(c.all), nil
	}
	end := start + filter.PageSize
	if end > len(c.all) {
		end = len(c.all)
	}
	return c.all[start:end], len(c.all), nil
}

func (c *pagedCatalog) GetByID(_ context.Context, id string) (*structure.Structure, error) {
	for _, st := range c.all {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, structure.ErrNotFound
}

func (c *pagedCatalog) Create(context.Context, structure.CreateRequest) (*structure.Structure, error) {
	panic("not used")
}
func (c *pagedCatalog) Update(context.Context, string, structure.UpdateRequest) (*structure.Structure, error) {
	panic("not used")
}
func (c *pagedCatalog) Delete(context.Context, string) error { panic("not used") }
func (c *pagedCatalog) GenerateSlots(context.Context, string, structure.GenerateSlotsRequest) (*structure.Structure, error) {
	panic("not used")
}
func (c *pagedCatalog) SetPhoto(context.Context, string, io.Reader) (string, error) {
	panic("not used")
}
func (c *pagedCatalog) GetPhoto(context.Context, string) (io.ReadCloser, error) {
	panic("not used")
}

// ledgerStub answers the one read the grid needs; everything else is off-limits.
type ledgerStub struct{}

func (ledgerStub) ListActiveForDate(context.Context, string) ([]*booking.Booking, error) {
	return nil, nil
}
func (ledgerStub) Create(context.Context, booking.CreateRequest) (*booking.Booking, error) {
	panic("not used")
}
func (ledgerStub) Cancel(context.Context, string, string, bool) error { panic("not used") }
func (ledgerStub) Approve(context.Context, string) (*booking.Booking, error) {
	panic("not used")
}
func (ledgerStub) Reject(context.Context, string) (*booking.Booking, error) {
	panic("not used")
}
func (ledgerStub) Block(context.Context, booking.BlockRequest) (*booking.Booking, error) {
	panic("not used")
}
func (ledgerStub) Unblock(context.Context, string) error { panic("not used") }
func (ledgerStub) GetByID(context.Context, string) (*booking.Booking, error) {
	panic("not used")
}
func (ledgerStub) List(context.Context, booking.Filter) ([]*booking.Booking, int, error) {
	panic("not used")
}
func (ledgerStub) Bulk(context.Context, booking.BulkRequest) (*booking.BulkResult, error) {
	panic("not used")
}

type overrideStub struct{}

func (overrideStub) Set(context.Context, string, string, override.Status) (*override.Override, error) {
	panic("not used")
}
func (overrideStub) Clear(context.Context, string, string) error { panic("not used") }
func (overrideStub) GetForDate(context.Context, string) (map[string]override.Status, error) {
	return map[string]override.Status{}, nil
}

func TestDayGridWalksWholeCatalog(t *testing.T) {
	catalog := &pagedCatalog{}
	for i := 0; i < 230; i++ {
		catalog.all = append(catalog.all, &structure.Structure{
			ID:             fmt.Sprintf("st-%03d", i),
			Name:           fmt.Sprintf("Structure %03d", i),
			ManagementType: structure.ByStructure,
			TimeSlots:      []structure.TimeSlot{slot9},
			DefaultStatus:  structure.DefaultOpen,
			ApprovalMode:   structure.ApprovalAutomatic,
		})
	}

	svc := NewService(catalog, ledgerStub{}, overrideStub{}, time.UTC)

	grid, err := svc.DayGrid(context.Background(), "2026-03-11", "", "stay-a")
	require.NoError(t, err)

	// Every structure is on the board, past the first catalog page.
	require.Len(t, grid.Structures, 230)
	assert.Equal(t, "st-000", grid.Structures[0].Structure.ID)
	assert.Equal(t, "st-229", grid.Structures[229].Structure.ID)
	assert.Equal(t, []int{1, 2, 3}, catalog.pages)
}

func TestDayGridInvalidDate(t *testing.T) {
	svc := NewService(&pagedCatalog{}, ledgerStub{}, overrideStub{}, time.UTC)
	_, err := svc.DayGrid(context.Background(), "11/03/2026", "", "stay-a")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
