package structure

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/vilaverde/guest-portal-backend/internal/pkg/storage"
)

type CreateRequest struct {
	Name           string
	ManagementType ManagementType
	Units          []string
	TimeSlots      []TimeSlot
	DefaultStatus  DefaultStatus
	ApprovalMode   ApprovalMode
}

type UpdateRequest struct {
	Name           string
	ManagementType ManagementType
	Units          []string
	TimeSlots      []TimeSlot
	DefaultStatus  DefaultStatus
	ApprovalMode   ApprovalMode
}

type GenerateSlotsRequest struct {
	Start           string
	End             string
	DurationMinutes int
	GapMinutes      int
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Structure, error)
	GetByID(ctx context.Context, id string) (*Structure, error)
	List(ctx context.Context, filter Filter) ([]*Structure, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Structure, error)
	Delete(ctx context.Context, id string) error

	// GenerateSlots replaces the structure's slot grid with a freshly generated
	// one. Manual edits go through Update, which accepts arbitrary slot lists.
	GenerateSlots(ctx context.Context, id string, req GenerateSlotsRequest) (*Structure, error)

	// SetPhoto normalizes and stores the uploaded image, then records its
	// reference on the structure. Returns the new photo reference.
	SetPhoto(ctx context.Context, id string, content io.Reader) (string, error)
	GetPhoto(ctx context.Context, id string) (io.ReadCloser, error)
}

type service struct {
	repo  Repository
	files storage.Storage
}

func NewService(repo Repository, files storage.Storage) Service {
	return &service{repo: repo, files: files}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Structure, error) {
	st := &Structure{
		Name:           req.Name,
		ManagementType: req.ManagementType,
		Units:          req.Units,
		TimeSlots:      sortSlots(req.TimeSlots),
		DefaultStatus:  req.DefaultStatus,
		ApprovalMode:   req.ApprovalMode,
	}
	if st.Units == nil {
		st.Units = []string{}
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Structure, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Structure, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Structure, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	st.Name = req.Name
	st.ManagementType = req.ManagementType
	st.Units = req.Units
	st.TimeSlots = sortSlots(req.TimeSlots)
	st.DefaultStatus = req.DefaultStatus
	st.ApprovalMode = req.ApprovalMode
	if st.Units == nil {
		st.Units = []string{}
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) GenerateSlots(ctx context.Context, id string, req GenerateSlotsRequest) (*Structure, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	slots, err := GenerateTimeSlots(req.Start, req.End, req.DurationMinutes, req.GapMinutes)
	if err != nil {
		return nil, err
	}

	st.TimeSlots = slots
	if st.TimeSlots == nil {
		st.TimeSlots = []TimeSlot{}
	}
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) SetPhoto(ctx context.Context, id string, content io.Reader) (string, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	normalized, err := storage.NormalizePhoto(content, 1000, 1000)
	if err != nil {
		return "", err
	}

	photoRef := fmt.Sprintf("structures/%s.jpg", st.ID)
	if err := s.files.Save(ctx, photoRef, normalized); err != nil {
		return "", err
	}

	if err := s.repo.UpdatePhotoRef(ctx, st.ID, photoRef); err != nil {
		return "", err
	}
	return photoRef, nil
}

func (s *service) GetPhoto(ctx context.Context, id string) (io.ReadCloser, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.PhotoRef == "" {
		return nil, ErrNotFound
	}
	return s.files.Get(ctx, st.PhotoRef)
}

// sortSlots returns the grid ordered by start time, matching how it is
// rendered. The caller's slice is left untouched.
func sortSlots(slots []TimeSlot) []TimeSlot {
	sorted := make([]TimeSlot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})
	return sorted
}
