package engine

import "time"

// Segment is one calendar day's slice of a (possibly multi-day) shift.
// Date is midnight of that day in the shift's location.
type Segment struct {
	Date           time.Time `json:"date"`
	NetWorkMinutes int       `json:"net_work_minutes"`
}

// SplitShift decomposes a shift into per-calendar-day segments so daily
// reports attribute hours to the day actually worked: a 23:00-07:00 shift
// shows in both days' totals. A nil checkOut means the shift is open and
// is clipped at "now". Break intervals are split across midnight along
// with the shift; a legacy free-text break (no intervals) has no position
// in time, so its minutes are consumed against segments in order starting
// from the first day.
//
// Invariant: the segment net minutes sum to the whole-shift net from
// ComputeSession within one minute per day boundary.
func SplitShift(checkIn time.Time, checkOut *time.Time, breaks []BreakInterval, legacyDuration string, now time.Time) []Segment {
	end := now
	mode := BreaksAsOfNow
	if checkOut != nil {
		end = *checkOut
		mode = BreaksCompleted
	}
	if end.Before(checkIn) {
		end = checkIn
	}
	end = end.In(checkIn.Location())

	if SameDate(checkIn, end) {
		breakMinutes := TotalBreakMinutes(breaks, legacyDuration, mode, end)
		session := ComputeSession(checkIn, end, breakMinutes)
		return []Segment{{Date: DayStart(checkIn), NetWorkMinutes: session.NetMinutes}}
	}

	legacyRemaining := 0
	if len(breaks) == 0 && legacyDuration != "" {
		legacyRemaining = ParseDurationText(legacyDuration)
	}

	// Overlapping break intervals can exceed one day's gross. The surplus
	// rolls into the next day so the segments still sum to the whole-shift
	// net, which clamps once over the full span rather than per day.
	breakSurplus := 0

	var segments []Segment
	lastDay := DayStart(end)
	for day := DayStart(checkIn); !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		dayEnd := day.AddDate(0, 0, 1)

		gross := overlapMinutes(checkIn, end, day, dayEnd)
		if gross == 0 && len(segments) > 0 {
			// Checkout at exactly midnight: the final day holds no time.
			continue
		}

		breakMinutes := 0
		for _, interval := range breaks {
			intervalEnd := end
			if interval.End != nil {
				intervalEnd = *interval.End
			} else if mode != BreaksAsOfNow {
				continue
			}
			breakMinutes += overlapMinutes(
				laterOf(interval.Start, checkIn),
				earlierOf(intervalEnd, end),
				day, dayEnd,
			)
		}

		if legacyRemaining > 0 {
			take := legacyRemaining
			if take > gross {
				take = gross
			}
			breakMinutes += take
			legacyRemaining -= take
		}

		breakMinutes += breakSurplus
		breakSurplus = 0

		net := gross - breakMinutes
		if net < 0 {
			breakSurplus = -net
			net = 0
		}
		segments = append(segments, Segment{Date: day, NetWorkMinutes: net})
	}

	// Surplus left after the last day settles backwards: the whole-shift
	// net spreads breaks over the full span, not per day.
	for i := len(segments) - 1; i >= 0 && breakSurplus > 0; i-- {
		take := segments[i].NetWorkMinutes
		if take > breakSurplus {
			take = breakSurplus
		}
		segments[i].NetWorkMinutes -= take
		breakSurplus -= take
	}

	return segments
}

// overlapMinutes returns the whole minutes in the intersection of
// [from, to) and [windowStart, windowEnd).
func overlapMinutes(from, to, windowStart, windowEnd time.Time) int {
	start := laterOf(from, windowStart)
	end := earlierOf(to, windowEnd)
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start).Minutes())
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
