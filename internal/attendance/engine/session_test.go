package engine_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse-backend/internal/attendance/engine"
)

func TestComputeSession_FullDay(t *testing.T) {
	day := "2024-03-11"
	result := engine.ComputeSession(at(t, day, "08:20"), at(t, day, "17:45"), 0)

	assert.Equal(t, 565, result.GrossMinutes)
	assert.Equal(t, 565, result.NetMinutes)
	assert.InDelta(t, 565.0/60, result.NetHours, 1e-9)
}

func TestComputeSession_BreaksSubtract(t *testing.T) {
	day := "2024-03-11"
	result := engine.ComputeSession(at(t, day, "08:00"), at(t, day, "17:00"), 60)

	assert.Equal(t, 540, result.GrossMinutes)
	assert.Equal(t, 60, result.BreakMinutes)
	assert.Equal(t, 480, result.NetMinutes)
	assert.InDelta(t, 8.0, result.NetHours, 1e-9)
}

func TestComputeSession_BreaksNeverMakeNetNegative(t *testing.T) {
	day := "2024-03-11"
	result := engine.ComputeSession(at(t, day, "09:00"), at(t, day, "09:30"), 90)

	assert.Equal(t, 30, result.GrossMinutes)
	assert.Equal(t, 0, result.NetMinutes)
	assert.Zero(t, result.NetHours)
}

// checkOut before checkIn is a documented precondition violation; the
// engine clamps to zero instead of going negative.
func TestComputeSession_CheckOutBeforeCheckInClampsToZero(t *testing.T) {
	day := "2024-03-11"
	result := engine.ComputeSession(at(t, day, "17:00"), at(t, day, "08:00"), 0)

	assert.Equal(t, 0, result.GrossMinutes)
	assert.Equal(t, 0, result.NetMinutes)
}

func TestComputeSession_NegativeBreakMinutesNormalized(t *testing.T) {
	day := "2024-03-11"
	result := engine.ComputeSession(at(t, day, "08:00"), at(t, day, "16:00"), -30)

	assert.Equal(t, 0, result.BreakMinutes)
	assert.Equal(t, 480, result.NetMinutes)
}

// Property: 0 <= net <= gross for any shift and non-negative break total.
func TestComputeSession_ClampingProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 500; i++ {
		checkIn := base.Add(time.Duration(rng.Intn(24*60)) * time.Minute)
		checkOut := checkIn.Add(time.Duration(rng.Intn(16*60)) * time.Minute)
		breakMinutes := rng.Intn(10 * 60)

		result := engine.ComputeSession(checkIn, checkOut, breakMinutes)

		require.GreaterOrEqual(t, result.NetMinutes, 0)
		require.LessOrEqual(t, result.NetMinutes, result.GrossMinutes)
	}
}

// Pure function: identical inputs yield identical results.
func TestComputeSession_Deterministic(t *testing.T) {
	day := "2024-03-11"
	first := engine.ComputeSession(at(t, day, "08:20"), at(t, day, "17:45"), 45)
	second := engine.ComputeSession(at(t, day, "08:20"), at(t, day, "17:45"), 45)

	assert.Equal(t, first, second)
}
