// Package civiltime converts between the business's civil timezone and UTC instants.
//
// All calendar arithmetic goes through Date and Converter so that nothing
// depends on the timezone of the machine running the process.
package civiltime

import (
	"errors"
	"fmt"
	"time"

	// Embed the tz database so LoadLocation works on minimal images.
	_ "time/tzdata"
)

const (
	DefaultZone = "America/Los_Angeles"

	// MinutesPerDay is the exclusive upper bound for a start offset and the
	// inclusive upper bound for an end offset.
	MinutesPerDay = 24 * 60

	dateLayout = "2006-01-02"
)

var ErrInvalidDate = errors.New("invalid calendar date")

// Date is a calendar date with no zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses "YYYY-MM-DD" strictly. Dates that do not exist (2025-02-30)
// are rejected instead of being normalised.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return FromTime(t), nil
}

// FromTime takes the calendar fields of t as they are in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// noonUTC is only used for zone-free calendar arithmetic.
func (d Date) noonUTC() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

// Weekday of the calendar date. Independent of any timezone.
func (d Date) Weekday() time.Weekday {
	return d.noonUTC().Weekday()
}

func (d Date) AddDays(n int) Date {
	return FromTime(d.noonUTC().AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return d.noonUTC().Before(o.noonUTC())
}

func (d Date) After(o Date) bool {
	return d.noonUTC().After(o.noonUTC())
}

// Converter resolves civil dates and wall-clock offsets in one fixed location.
type Converter struct {
	loc *time.Location
}

// NewConverter loads the named IANA zone. An empty name selects DefaultZone.
func NewConverter(zone string) (*Converter, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	return &Converter{loc: loc}, nil
}

// MustConverter is NewConverter for static zone names.
func MustConverter(zone string) *Converter {
	c, err := NewConverter(zone)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Converter) Location() *time.Location {
	return c.loc
}

// LocalMidnightToUTC returns the instant of 00:00 civil time on d.
func (c *Converter) LocalMidnightToUTC(d Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, c.loc).UTC()
}

// Combine returns the instant at which the civil clock reads midnight of d plus
// minutes. The wall-clock time is resolved in the zone, so on a DST transition
// day 16:00 is 16:00 local and not midnight plus 960 elapsed minutes.
// minutes == MinutesPerDay yields the next day's midnight.
func (c *Converter) Combine(d Date, minutes int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, minutes/60, minutes%60, 0, 0, c.loc).UTC()
}

// Format renders t in civil time.
func (c *Converter) Format(t time.Time, layout string) string {
	return t.In(c.loc).Format(layout)
}

// DateOf returns the civil calendar date on which instant t falls.
func (c *Converter) DateOf(t time.Time) Date {
	return FromTime(t.In(c.loc))
}
