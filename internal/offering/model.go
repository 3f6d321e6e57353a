package offering

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "service not found")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidKind     = apperror.New(http.StatusBadRequest, "kind must be PRIVATE or CLASS")
	ErrInvalidDuration = apperror.New(http.StatusBadRequest, "duration_minutes must be between 1 and 1440")
	ErrInvalidPrice    = apperror.New(http.StatusBadRequest, "price_cents cannot be negative")
	ErrNotOwner        = apperror.New(http.StatusForbidden, "service belongs to another coach")
)

type Kind string

const (
	KindPrivate Kind = "PRIVATE"
	KindClass   Kind = "CLASS"
)

func (k Kind) Valid() bool {
	return k == KindPrivate || k == KindClass
}

// Offering is a bookable service a coach sells: a private lesson format or a
// class format. Bookings copy its listed price.
type Offering struct {
	ID              string
	CoachID         string
	Name            string
	Kind            Kind
	DurationMinutes int
	PriceCents      int
	IsActive        bool
	CreatedAt       time.Time
}

// Duration returns the offering length.
func (o *Offering) Duration() time.Duration {
	return time.Duration(o.DurationMinutes) * time.Minute
}

// Filter defines parameters for listing offerings.
type Filter struct {
	CoachID    string
	Kind       Kind
	ActiveOnly bool
	Page       int
	PageSize   int
}
