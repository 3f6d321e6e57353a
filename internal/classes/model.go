package classes

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/apperror"
)

var (
	ErrTemplateNotFound    = apperror.New(http.StatusNotFound, "class template not found")
	ErrOccurrenceNotFound  = apperror.New(http.StatusNotFound, "class occurrence not found")
	ErrInvalidWeekday      = apperror.New(http.StatusBadRequest, "weekday must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidStartMinutes = apperror.New(http.StatusBadRequest, "start_minutes must satisfy 0 <= start < 1440")
	ErrInvalidCapacity     = apperror.New(http.StatusBadRequest, "capacity must be positive")
	ErrInvalidWeeks        = apperror.New(http.StatusBadRequest, "weeks must be between 1 and 52")
	ErrInvalidRange        = apperror.New(http.StatusBadRequest, "from must be before to")
	ErrServiceNotClass     = apperror.New(http.StatusBadRequest, "service must be an active CLASS service of this coach")
	ErrNotOwner            = apperror.New(http.StatusForbidden, "class template belongs to another coach")
	ErrTemplateHasBookings = apperror.New(http.StatusConflict, "class template has confirmed bookings")
)

const (
	DefaultWeeks = 8
	maxWeeks     = 52
)

// Template is the weekly recurrence a class is generated from.
type Template struct {
	ID           string
	CoachID      string
	ServiceID    string
	Weekday      time.Weekday
	StartMinutes int
	Capacity     int
	IsActive     bool
	CreatedAt    time.Time
}

type OccurrenceStatus string

const (
	OccurrenceScheduled OccurrenceStatus = "SCHEDULED"
	OccurrenceCancelled OccurrenceStatus = "CANCELLED"
)

// Occurrence is one dated instance of a template.
type Occurrence struct {
	ID         string
	TemplateID string
	StartsAt   time.Time
	Capacity   int
	Status     OccurrenceStatus
	CreatedAt  time.Time

	// Denormalised from the template and its service.
	CoachID         string
	ServiceID       string
	ServiceName     string
	DurationMinutes int
	Confirmed       int
}

// SeatsLeft never goes below zero.
func (o *Occurrence) SeatsLeft() int {
	return max(o.Capacity-o.Confirmed, 0)
}

// EndsAt is the start plus the service duration.
func (o *Occurrence) EndsAt() time.Time {
	return o.StartsAt.Add(time.Duration(o.DurationMinutes) * time.Minute)
}

// OccurrenceFilter selects occurrences starting within [From, To).
type OccurrenceFilter struct {
	CoachID       string
	From          time.Time
	To            time.Time
	ScheduledOnly bool
}
