package engine

import "time"

// WorkSessionResult is the derived accounting for one check-in/check-out
// pair. It is recomputed on every query, never persisted.
type WorkSessionResult struct {
	GrossMinutes int     `json:"gross_minutes"`
	BreakMinutes int     `json:"break_minutes"`
	NetMinutes   int     `json:"net_minutes"`
	NetHours     float64 `json:"net_hours"`
}

// ComputeSession combines raw elapsed time and break minutes into net
// worked minutes. For an open shift, pass "now" as checkOut. Both gross
// and net are clamped at zero: inconsistent input data (checkOut before
// checkIn, breaks longer than the shift) degrades to zero rather than
// going negative. NetHours is left unrounded; display rounding is the
// caller's job so aggregates don't compound rounding error.
func ComputeSession(checkIn, checkOut time.Time, breakMinutes int) WorkSessionResult {
	gross := int(checkOut.Sub(checkIn).Minutes())
	if gross < 0 {
		gross = 0
	}
	if breakMinutes < 0 {
		breakMinutes = 0
	}
	net := gross - breakMinutes
	if net < 0 {
		net = 0
	}
	return WorkSessionResult{
		GrossMinutes: gross,
		BreakMinutes: breakMinutes,
		NetMinutes:   net,
		NetHours:     float64(net) / 60,
	}
}
