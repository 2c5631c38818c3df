// Package engine contains the organization-hours-aware time accounting
// computations: schedule resolution, break aggregation, work session and
// overtime math, multi-day shift attribution, punctuality grading and
// time-of-day statistics.
//
// Every function in this package is pure: no I/O, no logging, no hidden
// clock. Callers own timezone normalization (timestamps handed in must
// already be in the organization's zone) and presentation rounding.
package engine

import (
	"fmt"
	"time"
)

// TimeOfDay is a clock time expressed as minutes since midnight (0-1439).
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from an hour and minute pair.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses "HH:MM" (or "H:MM") into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, bool) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return NewTimeOfDay(h, m), true
}

// Hour returns the hour component (0-23).
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component (0-59).
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MinutesOfDay converts a timestamp to minutes since local midnight.
func MinutesOfDay(ts time.Time) int {
	return ts.Hour()*60 + ts.Minute()
}

// DayStart returns midnight of the timestamp's calendar day, in its location.
func DayStart(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}

// SameDate reports whether two timestamps fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
