package availability

import (
	"cmp"
	"slices"

	"github.com/nekogravitycat/coach-booking-backend/internal/civiltime"
)

// ResolveWindows computes the available windows of one civil date from a
// coach's rules and that date's exceptions. Windows are ordered by start and
// are not merged. Any blocking exception clears the whole day.
func ResolveWindows(rules []*Rule, exceptions []*Exception, date civiltime.Date) []Window {
	for _, ex := range exceptions {
		if ex.Date == date && !ex.IsAvailable {
			return nil
		}
	}

	var windows []Window
	for _, r := range rules {
		if r.AppliesOn(date) {
			windows = append(windows, Window{StartMinutes: r.StartMinutes, EndMinutes: r.EndMinutes})
		}
	}

	slices.SortStableFunc(windows, func(a, b Window) int {
		return cmp.Compare(a.StartMinutes, b.StartMinutes)
	})
	return windows
}
