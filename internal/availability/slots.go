package availability

import (
	"slices"
	"time"

	"github.com/nekogravitycat/coach-booking-backend/internal/civiltime"
)

const displayLayout = "3:04 PM"

// GenerateSlots steps through each window from its start in SlotStepMinutes
// increments while the candidate still fits, and keeps every candidate that
// does not overlap a confirmed booking and does not start before now.
//
// Candidates are resolved through conv so 16:00 on a transition day is 16:00
// local wall time. The result is chronological with duplicate starts removed.
func GenerateSlots(
	conv *civiltime.Converter,
	date civiltime.Date,
	windows []Window,
	durationMinutes int,
	busy []Interval,
	now time.Time,
) []Slot {
	if durationMinutes <= 0 {
		return nil
	}
	duration := time.Duration(durationMinutes) * time.Minute

	var slots []Slot
	for _, w := range windows {
		for cursor := w.StartMinutes; cursor+durationMinutes <= w.EndMinutes; cursor += SlotStepMinutes {
			start := conv.Combine(date, cursor)
			candidate := Interval{Start: start, End: start.Add(duration)}

			if candidate.Start.Before(now) || overlapsAny(candidate, busy) {
				continue
			}
			slots = append(slots, Slot{
				Start:   candidate.Start,
				End:     candidate.End,
				Display: conv.Format(candidate.Start, displayLayout),
			})
		}
	}

	slices.SortStableFunc(slots, func(a, b Slot) int {
		return a.Start.Compare(b.Start)
	})
	return slices.CompactFunc(slots, func(a, b Slot) bool {
		return a.Start.Equal(b.Start)
	})
}

func overlapsAny(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}
