package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/workpulse/workpulse-backend/internal/attendance/engine"
)

func nineToFive() engine.ResolvedWorkingDay {
	return engine.ResolvedWorkingDay{
		IsWorkingDay:    true,
		ExpectedStart:   engine.NewTimeOfDay(8, 0),
		ExpectedEnd:     engine.NewTimeOfDay(17, 0),
		ExpectedMinutes: 540,
	}
}

// The reference scenario: 08:00 start, 15 minute grace, arrival at 08:20
// is 5 minutes late in the lowest tier.
func TestEvaluateArrival_LateWithinGraceWindow(t *testing.T) {
	verdict := engine.EvaluateArrival(at(t, "2024-03-11", "08:20"), nineToFive(), 15)

	assert.True(t, verdict.IsLate)
	assert.Equal(t, 5, verdict.MinutesLate)
	assert.Equal(t, engine.TierLate, verdict.Tier)
}

func TestEvaluateArrival_WithinGraceIsOnTime(t *testing.T) {
	for _, clock := range []string{"07:45", "08:00", "08:15"} {
		verdict := engine.EvaluateArrival(at(t, "2024-03-11", clock), nineToFive(), 15)
		assert.False(t, verdict.IsLate, "arrival at %s", clock)
		assert.Equal(t, engine.TierOnTime, verdict.Tier)
		assert.Zero(t, verdict.MinutesLate)
	}
}

func TestEvaluateArrival_TierBoundaries(t *testing.T) {
	tests := []struct {
		clock       string
		minutesLate int
		tier        engine.PunctualityTier
	}{
		{"08:16", 1, engine.TierLate},
		{"08:44", 29, engine.TierLate},
		{"08:45", 30, engine.TierVeryLate},
		{"09:14", 59, engine.TierVeryLate},
		{"09:15", 60, engine.TierExtremelyLate},
		{"11:00", 165, engine.TierExtremelyLate},
	}

	for _, tt := range tests {
		verdict := engine.EvaluateArrival(at(t, "2024-03-11", tt.clock), nineToFive(), 15)
		assert.True(t, verdict.IsLate, "arrival at %s", tt.clock)
		assert.Equal(t, tt.minutesLate, verdict.MinutesLate, "arrival at %s", tt.clock)
		assert.Equal(t, tt.tier, verdict.Tier, "arrival at %s", tt.clock)
	}
}

func TestEvaluateArrival_NonWorkingDayIsAlwaysOnTime(t *testing.T) {
	verdict := engine.EvaluateArrival(at(t, "2024-03-16", "11:30"), engine.ResolvedWorkingDay{}, 15)

	assert.False(t, verdict.IsLate)
	assert.Equal(t, engine.TierOnTime, verdict.Tier)
}

func TestEvaluateDeparture_Early(t *testing.T) {
	verdict := engine.EvaluateDeparture(at(t, "2024-03-11", "16:20"), nineToFive())

	assert.True(t, verdict.IsEarly)
	assert.Equal(t, 40, verdict.MinutesEarly)
}

func TestEvaluateDeparture_AtOrAfterEndIsNotEarly(t *testing.T) {
	for _, clock := range []string{"17:00", "17:45"} {
		verdict := engine.EvaluateDeparture(at(t, "2024-03-11", clock), nineToFive())
		assert.False(t, verdict.IsEarly, "departure at %s", clock)
		assert.Zero(t, verdict.MinutesEarly)
	}
}

func TestEvaluateDeparture_NonWorkingDay(t *testing.T) {
	verdict := engine.EvaluateDeparture(at(t, "2024-03-16", "12:00"), engine.ResolvedWorkingDay{})

	assert.False(t, verdict.IsEarly)
}
