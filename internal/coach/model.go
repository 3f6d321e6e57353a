package coach

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "coach not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password must be at least 8 characters")
	ErrInvalidNotice      = apperror.New(http.StatusBadRequest, "min_hours_notice cannot be negative")
	ErrShopAdminRequired  = apperror.New(http.StatusForbidden, "shop admin access required")
)

// errNoRow signals a missing settings or policy row. It never leaves the package.
var errNoRow = apperror.New(http.StatusNotFound, "row not found")

// Coach is a staff account that owns availability, offerings and bookings.
type Coach struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

// Settings are the per-coach booking preferences.
type Settings struct {
	CoachID              string
	MustApproveRequests  bool
	AlertEmails          []string
	NotifyOnRequest      bool
	NotifyOnConfirmation bool
	NotifyOnCancellation bool
	IsShopAdmin          bool
	UpdatedAt            time.Time
}

// DefaultSettings is what a coach gets before ever saving settings.
func DefaultSettings(coachID string) *Settings {
	return &Settings{
		CoachID:              coachID,
		AlertEmails:          []string{},
		NotifyOnRequest:      true,
		NotifyOnConfirmation: true,
		NotifyOnCancellation: true,
	}
}

// CancellationPolicy is the single business-wide cancellation rule.
type CancellationPolicy struct {
	MinHoursNotice int
	UpdatedAt      time.Time
}

// Notice returns the policy as a duration.
func (p CancellationPolicy) Notice() time.Duration {
	return time.Duration(p.MinHoursNotice) * time.Hour
}
