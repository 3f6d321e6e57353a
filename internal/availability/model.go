package availability

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/nekogravitycat/coach-booking-backend/internal/civiltime"
	"github.com/nekogravitycat/coach-booking-backend/internal/pkg/apperror"
)

var (
	ErrRuleNotFound          = apperror.New(http.StatusNotFound, "availability rule not found")
	ErrExceptionNotFound     = apperror.New(http.StatusNotFound, "availability exception not found")
	ErrInvalidMinutes        = apperror.New(http.StatusBadRequest, "minutes must satisfy 0 <= start < end <= 1440")
	ErrInvalidWeekday        = apperror.New(http.StatusBadRequest, "weekdays must be a non-empty set of SUN, MON, TUE, WED, THU, FRI, SAT")
	ErrInvalidEffectiveRange = apperror.New(http.StatusBadRequest, "effective_from must not be after effective_to")
	ErrInvalidDate           = apperror.New(http.StatusBadRequest, "date must be a valid YYYY-MM-DD calendar date")
	ErrInvalidDuration       = apperror.New(http.StatusBadRequest, "duration must be between 1 and 1440 minutes")
	ErrInvalidRange          = apperror.New(http.StatusBadRequest, "from must not be after to, and the range may span at most 366 days")
)

const (
	// SlotStepMinutes is the spacing between candidate slot starts.
	SlotStepMinutes = 30

	// bookingFetchMargin widens the confirmed-booking query around the civil
	// day so no booking near either midnight is missed on any UTC offset.
	bookingFetchMargin = 14 * time.Hour

	maxExceptionRangeDays = 366
)

// WeekdayCode is the three-letter day code stored on rules.
type WeekdayCode string

const (
	Sunday    WeekdayCode = "SUN"
	Monday    WeekdayCode = "MON"
	Tuesday   WeekdayCode = "TUE"
	Wednesday WeekdayCode = "WED"
	Thursday  WeekdayCode = "THU"
	Friday    WeekdayCode = "FRI"
	Saturday  WeekdayCode = "SAT"
)

var weekdayCodes = [7]WeekdayCode{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// CodeOf maps a time.Weekday to its code.
func CodeOf(d time.Weekday) WeekdayCode {
	return weekdayCodes[d]
}

// ParseWeekdayCode accepts any letter case.
func ParseWeekdayCode(s string) (WeekdayCode, bool) {
	c := WeekdayCode(strings.ToUpper(strings.TrimSpace(s)))
	return c, slices.Contains(weekdayCodes[:], c)
}

type RuleKind string

const RuleKindWeekly RuleKind = "WEEKLY"

// Rule is a recurring weekly window of availability.
type Rule struct {
	ID            string
	CoachID       string
	Kind          RuleKind
	Weekdays      []WeekdayCode
	StartMinutes  int
	EndMinutes    int
	EffectiveFrom *civiltime.Date
	EffectiveTo   *civiltime.Date
	CreatedAt     time.Time
}

// AppliesOn reports whether the rule contributes a window on date.
// Effective bounds are inclusive.
func (r *Rule) AppliesOn(date civiltime.Date) bool {
	if r.Kind != RuleKindWeekly {
		return false
	}
	if !slices.Contains(r.Weekdays, CodeOf(date.Weekday())) {
		return false
	}
	if r.EffectiveFrom != nil && date.Before(*r.EffectiveFrom) {
		return false
	}
	if r.EffectiveTo != nil && date.After(*r.EffectiveTo) {
		return false
	}
	return true
}

// Exception overrides the rules for one civil date.
// Only IsAvailable=false has an effect: it blocks the whole day.
type Exception struct {
	ID          string
	CoachID     string
	Date        civiltime.Date
	IsAvailable bool
	Note        string
	CreatedAt   time.Time
}

// Window is an available span of a civil day, in minutes from local midnight.
type Window struct {
	StartMinutes int
	EndMinutes   int
}

// Interval is a half-open span of UTC instants.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps is strict: touching intervals do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}

// Slot is a bookable start for a requested duration.
type Slot struct {
	Start   time.Time
	End     time.Time
	Display string
}
