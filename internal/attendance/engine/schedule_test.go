package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse-backend/internal/attendance/engine"
)

// monday etc. are fixed calendar dates used across resolution tests.
var (
	monday   = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)
)

func mondayFridaySchedule() *engine.OrganizationSchedule {
	return &engine.OrganizationSchedule{
		WorkingDays: map[time.Weekday]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
		},
		DefaultOpen:  engine.NewTimeOfDay(8, 0),
		DefaultClose: engine.NewTimeOfDay(17, 0),
	}
}

func TestResolveWorkingDay_NilScheduleUsesBuiltInDefault(t *testing.T) {
	day := engine.ResolveWorkingDay(nil, monday)

	require.True(t, day.IsWorkingDay)
	assert.Equal(t, "07:30", day.ExpectedStart.String())
	assert.Equal(t, "16:30", day.ExpectedEnd.String())
	assert.Equal(t, 540, day.ExpectedMinutes)

	weekend := engine.ResolveWorkingDay(nil, saturday)
	assert.False(t, weekend.IsWorkingDay)
	assert.Zero(t, weekend.ExpectedMinutes)
}

func TestResolveWorkingDay_WeeklyFlagWithDefaults(t *testing.T) {
	s := mondayFridaySchedule()

	day := engine.ResolveWorkingDay(s, monday)
	require.True(t, day.IsWorkingDay)
	assert.Equal(t, engine.NewTimeOfDay(8, 0), day.ExpectedStart)
	assert.Equal(t, engine.NewTimeOfDay(17, 0), day.ExpectedEnd)
	assert.Equal(t, 540, day.ExpectedMinutes)

	off := engine.ResolveWorkingDay(s, saturday)
	assert.False(t, off.IsWorkingDay)
}

func TestResolveWorkingDay_PerDayOverridesWeeklyDefaults(t *testing.T) {
	s := mondayFridaySchedule()
	s.PerDay = map[time.Weekday]engine.DaySchedule{
		time.Monday: {Start: engine.NewTimeOfDay(10, 0), End: engine.NewTimeOfDay(14, 0)},
	}

	day := engine.ResolveWorkingDay(s, monday)
	require.True(t, day.IsWorkingDay)
	assert.Equal(t, engine.NewTimeOfDay(10, 0), day.ExpectedStart)
	assert.Equal(t, 240, day.ExpectedMinutes)
}

func TestResolveWorkingDay_PerDayClosedOverridesWeeklyFlag(t *testing.T) {
	s := mondayFridaySchedule()
	s.PerDay = map[time.Weekday]engine.DaySchedule{
		time.Monday: {Closed: true},
	}

	day := engine.ResolveWorkingDay(s, monday)
	assert.False(t, day.IsWorkingDay)
	assert.Zero(t, day.ExpectedMinutes)
}

func TestResolveWorkingDay_PerDayWithoutWindowFallsBackToWeekly(t *testing.T) {
	s := mondayFridaySchedule()
	s.PerDay = map[time.Weekday]engine.DaySchedule{
		time.Monday: {Start: engine.NewTimeOfDay(9, 0), End: engine.NewTimeOfDay(9, 0)},
	}

	day := engine.ResolveWorkingDay(s, monday)
	require.True(t, day.IsWorkingDay)
	assert.Equal(t, engine.NewTimeOfDay(8, 0), day.ExpectedStart)
	assert.Equal(t, 540, day.ExpectedMinutes)
}

func TestResolveWorkingDay_SpecialDateBeatsPerDayAndWeekly(t *testing.T) {
	s := mondayFridaySchedule()
	s.PerDay = map[time.Weekday]engine.DaySchedule{
		time.Monday: {Start: engine.NewTimeOfDay(10, 0), End: engine.NewTimeOfDay(14, 0)},
	}
	s.SpecialDates = []engine.SpecialDate{
		{Date: monday, Open: engine.NewTimeOfDay(12, 0), Close: engine.NewTimeOfDay(16, 30)},
	}

	day := engine.ResolveWorkingDay(s, monday)
	require.True(t, day.IsWorkingDay)
	assert.Equal(t, engine.NewTimeOfDay(12, 0), day.ExpectedStart)
	assert.Equal(t, 270, day.ExpectedMinutes)
}

func TestResolveWorkingDay_SpecialDateClosed(t *testing.T) {
	s := mondayFridaySchedule()
	s.SpecialDates = []engine.SpecialDate{
		{Date: monday, Open: engine.NewTimeOfDay(9, 0), Close: engine.NewTimeOfDay(9, 0)},
	}

	day := engine.ResolveWorkingDay(s, monday)
	assert.False(t, day.IsWorkingDay)
}

// Holiday mode with no end date wins over every other source, whatever
// else is configured.
func TestResolveWorkingDay_OpenEndedHolidayBeatsEverything(t *testing.T) {
	s := mondayFridaySchedule()
	s.PerDay = map[time.Weekday]engine.DaySchedule{
		time.Monday: {Start: engine.NewTimeOfDay(10, 0), End: engine.NewTimeOfDay(14, 0)},
	}
	s.SpecialDates = []engine.SpecialDate{
		{Date: monday, Open: engine.NewTimeOfDay(12, 0), Close: engine.NewTimeOfDay(16, 0)},
	}
	s.HolidayMode = true

	for offset := 0; offset < 14; offset++ {
		date := monday.AddDate(0, 0, offset)
		day := engine.ResolveWorkingDay(s, date)
		assert.False(t, day.IsWorkingDay, "date %s", date.Format("2006-01-02"))
		assert.Zero(t, day.ExpectedMinutes)
	}
}

func TestResolveWorkingDay_HolidayUntilBoundsTheSuspension(t *testing.T) {
	s := mondayFridaySchedule()
	s.HolidayMode = true
	until := monday.AddDate(0, 0, 2) // Wednesday
	s.HolidayUntil = &until

	assert.False(t, engine.ResolveWorkingDay(s, monday).IsWorkingDay)
	assert.False(t, engine.ResolveWorkingDay(s, until).IsWorkingDay)

	thursday := until.AddDate(0, 0, 1)
	day := engine.ResolveWorkingDay(s, thursday)
	require.True(t, day.IsWorkingDay)
	assert.Equal(t, 540, day.ExpectedMinutes)
}

func TestResolveWorkingDay_InvertedDefaultWindowUsesBuiltIn(t *testing.T) {
	s := mondayFridaySchedule()
	s.DefaultOpen = engine.NewTimeOfDay(17, 0)
	s.DefaultClose = engine.NewTimeOfDay(8, 0)

	day := engine.ResolveWorkingDay(s, monday)
	require.True(t, day.IsWorkingDay)
	assert.Equal(t, "07:30", day.ExpectedStart.String())
	assert.Equal(t, "16:30", day.ExpectedEnd.String())
}
