package override

import (
	"net/http"
	"time"

	"github.com/vilaverde/guest-portal-backend/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, "override not found")
	ErrInvalidStatus = apperror.New(http.StatusBadRequest, "status must be open or closed")
	ErrInvalidDate   = apperror.New(http.StatusBadRequest, "date must be yyyy-MM-dd")
)

// Status is a per-date exception to a structure's default policy.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Override marks one structure open or closed for one calendar day.
// Absence of a record means "no exception, use the structure default".
type Override struct {
	Date        string
	StructureID string
	Status      Status
	UpdatedAt   time.Time
}
