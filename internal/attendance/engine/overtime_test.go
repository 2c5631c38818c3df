package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/workpulse/workpulse-backend/internal/attendance/engine"
)

func TestOvertime_OverTheStandard(t *testing.T) {
	day := nineToFive()
	result := engine.Overtime(565, &day)

	assert.True(t, result.IsOvertime)
	assert.Equal(t, 25, result.OvertimeMinutes)
	assert.Equal(t, 540, result.CappedMinutes)
}

func TestOvertime_UnderTheStandard(t *testing.T) {
	day := nineToFive()
	result := engine.Overtime(480, &day)

	assert.False(t, result.IsOvertime)
	assert.Zero(t, result.OvertimeMinutes)
	assert.Equal(t, 480, result.CappedMinutes)
}

func TestOvertime_UnresolvedDayFallsBackToGlobalDefault(t *testing.T) {
	result := engine.Overtime(500, nil)

	assert.True(t, result.IsOvertime)
	assert.Equal(t, 20, result.OvertimeMinutes)
	assert.Equal(t, engine.DefaultExpectedMinutes, result.CappedMinutes)
}

// Working a resolved non-working day means every net minute is overtime.
func TestOvertime_NonWorkingDay(t *testing.T) {
	day := engine.ResolvedWorkingDay{}
	result := engine.Overtime(180, &day)

	assert.True(t, result.IsOvertime)
	assert.Equal(t, 180, result.OvertimeMinutes)
	assert.Zero(t, result.CappedMinutes)
}

func TestOvertime_NegativeNetNormalized(t *testing.T) {
	day := nineToFive()
	result := engine.Overtime(-15, &day)

	assert.False(t, result.IsOvertime)
	assert.Zero(t, result.OvertimeMinutes)
	assert.Zero(t, result.CappedMinutes)
}

// Property: overtime minutes are non-decreasing in net minutes for a
// fixed day.
func TestOvertime_Monotonic(t *testing.T) {
	day := nineToFive()
	previous := -1
	for net := 0; net <= 1200; net += 7 {
		result := engine.Overtime(net, &day)
		assert.GreaterOrEqual(t, result.OvertimeMinutes, previous, "net=%d", net)
		previous = result.OvertimeMinutes
	}
}
