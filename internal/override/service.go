package override

import (
	"context"

	"github.com/vilaverde/guest-portal-backend/internal/pkg/request"
	"github.com/vilaverde/guest-portal-backend/internal/structure"
)

type Service interface {
	Set(ctx context.Context, date, structureID string, status Status) (*Override, error)
	Clear(ctx context.Context, date, structureID string) error

	// GetForDate returns the day's exceptions as a structureID -> status map,
	// the shape the availability resolver consumes.
	GetForDate(ctx context.Context, date string) (map[string]Status, error)
}

type service struct {
	repo       Repository
	structures structure.Service
}

func NewService(repo Repository, structures structure.Service) Service {
	return &service{repo: repo, structures: structures}
}

func (s *service) Set(ctx context.Context, date, structureID string, status Status) (*Override, error) {
	if !request.ValidDate(date) {
		return nil, ErrInvalidDate
	}
	if status != StatusOpen && status != StatusClosed {
		return nil, ErrInvalidStatus
	}

	// Overrides only make sense against a catalog entry.
	if _, err := s.structures.GetByID(ctx, structureID); err != nil {
		return nil, err
	}

	o := &Override{
		Date:        date,
		StructureID: structureID,
		Status:      status,
	}
	if err := s.repo.Set(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) Clear(ctx context.Context, date, structureID string) error {
	if !request.ValidDate(date) {
		return ErrInvalidDate
	}
	return s.repo.Clear(ctx, date, structureID)
}

func (s *service) GetForDate(ctx context.Context, date string) (map[string]Status, error) {
	if !request.ValidDate(date) {
		return nil, ErrInvalidDate
	}

	overrides, err := s.repo.GetForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	result := make(map[string]Status, len(overrides))
	for _, o := range overrides {
		result[o.StructureID] = o.Status
	}
	return result, nil
}
