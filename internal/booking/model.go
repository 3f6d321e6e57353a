package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrInvalidInput      = apperror.New(http.StatusBadRequest, "invalid input parameters")
	ErrInvalidInterval   = apperror.New(http.StatusBadRequest, "start must be before end")
	ErrInvalidCustomer   = apperror.New(http.StatusBadRequest, "customer name and email are required")
	ErrInvalidAthletes   = apperror.New(http.StatusBadRequest, "num_athletes must be between 1 and 4")
	ErrStartInPast       = apperror.New(http.StatusBadRequest, "cannot book a time in the past")
	ErrDurationMismatch  = apperror.New(http.StatusBadRequest, "booking length must match the service duration")
	ErrServiceNotBooking = apperror.New(http.StatusBadRequest, "service is not bookable this way")
	ErrForbidden         = apperror.New(http.StatusForbidden, "booking belongs to another coach")

	ErrConflict    = apperror.New(http.StatusConflict, "slot no longer available")
	ErrCapacity    = apperror.New(http.StatusConflict, "class is full")
	ErrUnavailable = apperror.New(http.StatusConflict, "class occurrence is not available")

	// ErrAlreadyResolved accompanies the current booking. Callers treat it as
	// an idempotent success: the booking has already left the source state.
	ErrAlreadyResolved = apperror.New(http.StatusConflict, "booking already resolved")
	ErrExpired         = apperror.New(http.StatusGone, "approval window has expired")
	ErrPolicyViolation = apperror.New(http.StatusUnprocessableEntity,
		"cancellation is inside the minimum notice window; please contact the business directly")
)

const (
	maxAthletes = 4

	autoDeclineReason = "auto-declined: overlapping request approved"
)

type Type string

const (
	TypePrivate Type = "PRIVATE"
	TypeClass   Type = "CLASS"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

type ApprovalStatus string

const (
	ApprovalNotRequired ApprovalStatus = "NOT_REQUIRED"
	ApprovalPending     ApprovalStatus = "PENDING"
	ApprovalApproved    ApprovalStatus = "APPROVED"
	ApprovalDenied      ApprovalStatus = "DENIED"
	ApprovalExpired     ApprovalStatus = "EXPIRED"
)

type PrivateKind string

const (
	PrivateSolo        PrivateKind = "SOLO"
	PrivateSemiPrivate PrivateKind = "SEMI_PRIVATE"
)

type Booking struct {
	ID             string
	Type           Type
	Status         Status
	ApprovalStatus ApprovalStatus
	ApprovalToken  *string
	ApprovedAt     *time.Time
	DeniedAt       *time.Time
	DenialReason   *string
	AutoExpireAt   *time.Time
	CancelledAt    *time.Time

	CustomerName  string
	CustomerEmail string
	AthleteName   string
	Notes         string

	// CoachID is only stored for private bookings.
	CoachID           *string
	ServiceID         *string
	ClassOccurrenceID *string

	Start             time.Time
	End               time.Time
	PriceCents        int
	CancellationToken string
	NumAthletes       int
	PrivateKind       *PrivateKind

	CreatedAt time.Time
	UpdatedAt time.Time

	// OwnerCoachID is the coach responsible for the booking. For class
	// bookings it is resolved through the occurrence's template.
	OwnerCoachID string
	ServiceName  string
}

// Customer identifies who is booking.
type Customer struct {
	Name        string
	Email       string
	AthleteName string
	Notes       string
}

// Filter defines parameters for the coach dashboard listing.
type Filter struct {
	CoachID  string
	Status   Status
	Type     Type
	From     *time.Time // bookings ending after this instant
	To       *time.Time // bookings starting before this instant
	Page     int
	PageSize int
}

// Actor is who asks for a cancellation.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorCoach    Actor = "coach"
)

// Lookup locates a booking either by an e-mailed token or, for a coach, by ID.
type Lookup struct {
	ID      string
	Token   string
	CoachID string
}

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}
