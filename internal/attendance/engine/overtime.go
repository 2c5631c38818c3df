package engine

// DefaultExpectedMinutes is the overtime threshold used when a day could
// not be resolved against any schedule.
const DefaultExpectedMinutes = 480

// OvertimeResult compares net worked minutes against the day's expected
// minutes. CappedMinutes is the display-friendly duration capped at the
// standard; callers choose between capped+overtime and raw net without
// recomputing.
type OvertimeResult struct {
	IsOvertime      bool `json:"is_overtime"`
	OvertimeMinutes int  `json:"overtime_minutes"`
	CappedMinutes   int  `json:"capped_minutes"`
}

// Overtime computes overtime for a day's net minutes. A nil day means the
// schedule could not be resolved at all and the global default threshold
// applies. A resolved non-working day has zero expected minutes, so all
// net time on it counts as overtime.
func Overtime(netMinutes int, day *ResolvedWorkingDay) OvertimeResult {
	if netMinutes < 0 {
		netMinutes = 0
	}
	standard := DefaultExpectedMinutes
	if day != nil {
		standard = day.ExpectedMinutes
	}

	overtime := netMinutes - standard
	if overtime < 0 {
		overtime = 0
	}
	capped := netMinutes
	if capped > standard {
		capped = standard
	}
	return OvertimeResult{
		IsOvertime:      overtime > 0,
		OvertimeMinutes: overtime,
		CappedMinutes:   capped,
	}
}
