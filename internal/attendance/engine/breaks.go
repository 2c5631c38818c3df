package engine

import "time"

// BreakInterval is one break within a shift. A nil End means the break is
// still in progress. Overlapping intervals are not deduplicated; legacy
// data contains them and their durations sum.
type BreakInterval struct {
	Start time.Time
	End   *time.Time
}

// BreakMode selects how an in-progress break contributes to the total.
type BreakMode int

const (
	// BreaksCompleted counts finished intervals only. Default for
	// historical reporting.
	BreaksCompleted BreakMode = iota
	// BreaksAsOfNow additionally counts an open interval up to "now".
	// Used by live dashboards.
	BreaksAsOfNow
)

// TotalBreakMinutes reduces a shift's break records to one minute count.
// Structured intervals win over the legacy free-text duration; the legacy
// string is only consulted when no intervals exist. The result is never
// negative.
func TotalBreakMinutes(intervals []BreakInterval, legacyDuration string, mode BreakMode, now time.Time) int {
	if len(intervals) == 0 {
		if legacyDuration != "" {
			return ParseDurationText(legacyDuration)
		}
		return 0
	}

	total := 0
	for _, interval := range intervals {
		switch {
		case interval.End != nil:
			if minutes := int(interval.End.Sub(interval.Start).Minutes()); minutes > 0 {
				total += minutes
			}
		case mode == BreaksAsOfNow:
			if minutes := int(now.Sub(interval.Start).Minutes()); minutes > 0 {
				total += minutes
			}
		}
	}
	return total
}
