package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse-backend/internal/attendance/engine"
	"github.com/workpulse/workpulse-backend/internal/organization/repository"
)

func TestBuildSchedule_WeeklyFlags(t *testing.T) {
	org := &repository.Organization{
		ID:          "org-1",
		Name:        "Main Office",
		WorkingDays: json.RawMessage(`{"monday": true, "tuesday": true, "saturday": false}`),
	}

	schedule, err := buildSchedule(org, nil)
	require.NoError(t, err)

	assert.True(t, schedule.WorkingDays[time.Monday])
	assert.True(t, schedule.WorkingDays[time.Tuesday])
	assert.False(t, schedule.WorkingDays[time.Saturday])
	assert.False(t, schedule.WorkingDays[time.Sunday])
}

func TestBuildSchedule_DefaultWindowFallback(t *testing.T) {
	org := &repository.Organization{ID: "org-1", Name: "Main Office"}

	schedule, err := buildSchedule(org, nil)
	require.NoError(t, err)

	assert.Equal(t, engine.DefaultOpenTime, schedule.DefaultOpen)
	assert.Equal(t, engine.DefaultCloseTime, schedule.DefaultClose)
}

func TestBuildSchedule_CustomDefaultWindow(t *testing.T) {
	org := &repository.Organization{
		ID:               "org-1",
		Name:             "Main Office",
		DefaultOpenTime:  "09:00",
		DefaultCloseTime: "17:30",
	}

	schedule, err := buildSchedule(org, nil)
	require.NoError(t, err)

	assert.Equal(t, engine.NewTimeOfDay(9, 0), schedule.DefaultOpen)
	assert.Equal(t, engine.NewTimeOfDay(17, 30), schedule.DefaultClose)
}

func TestBuildSchedule_PerDayWindows(t *testing.T) {
	org := &repository.Organization{
		ID:   "org-1",
		Name: "Main Office",
		PerDay: json.RawMessage(`{
			"friday": {"open": "07:00", "close": "13:00"},
			"wednesday": {"closed": true},
			"monday": {"open": "bogus", "close": "13:00"}
		}`),
	}

	schedule, err := buildSchedule(org, nil)
	require.NoError(t, err)
	require.NotNil(t, schedule.PerDay)

	friday, ok := schedule.PerDay[time.Friday]
	require.True(t, ok)
	assert.Equal(t, engine.NewTimeOfDay(7, 0), friday.Start)
	assert.Equal(t, engine.NewTimeOfDay(13, 0), friday.End)

	wednesday, ok := schedule.PerDay[time.Wednesday]
	require.True(t, ok)
	assert.True(t, wednesday.Closed)

	// Malformed window is dropped, not surfaced.
	_, ok = schedule.PerDay[time.Monday]
	assert.False(t, ok)
}

func TestBuildSchedule_SpecialDates(t *testing.T) {
	org := &repository.Organization{ID: "org-1", Name: "Main Office"}
	dates := []*repository.SpecialDate{
		{
			OrganizationID: "org-1",
			Date:           time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC),
			OpenTime:       "08:00",
			CloseTime:      "12:00",
		},
		{
			OrganizationID: "org-1",
			Date:           time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC),
			OpenTime:       "00:00",
			CloseTime:      "00:00", // closed
		},
	}

	schedule, err := buildSchedule(org, dates)
	require.NoError(t, err)
	require.Len(t, schedule.SpecialDates, 2)

	assert.Equal(t, engine.NewTimeOfDay(8, 0), schedule.SpecialDates[0].Open)
	assert.Equal(t, engine.NewTimeOfDay(12, 0), schedule.SpecialDates[0].Close)
	assert.Equal(t, schedule.SpecialDates[1].Open, schedule.SpecialDates[1].Close)
}

func TestBuildSchedule_HolidayMode(t *testing.T) {
	until := time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)
	org := &repository.Organization{
		ID:           "org-1",
		Name:         "Main Office",
		HolidayMode:  true,
		HolidayUntil: &until,
		Timezone:     "Europe/Berlin",
		GraceMinutes: 10,
	}

	schedule, err := buildSchedule(org, nil)
	require.NoError(t, err)

	assert.True(t, schedule.HolidayMode)
	require.NotNil(t, schedule.HolidayUntil)
	assert.Equal(t, until, *schedule.HolidayUntil)
	assert.Equal(t, "Europe/Berlin", schedule.Timezone)
	assert.Equal(t, 10, schedule.GraceMinutes)
}

func TestBuildSchedule_MalformedWorkingDays(t *testing.T) {
	org := &repository.Organization{
		ID:          "org-1",
		Name:        "Main Office",
		WorkingDays: json.RawMessage(`"not an object"`),
	}

	_, err := buildSchedule(org, nil)
	require.Error(t, err)
}

func TestValidateOrganization(t *testing.T) {
	tests := []struct {
		name    string
		org     repository.Organization
		wantErr string
	}{
		{
			name: "valid",
			org:  repository.Organization{Name: "Office", Timezone: "Europe/Berlin", DefaultOpenTime: "08:00", DefaultCloseTime: "16:00"},
		},
		{
			name:    "missing name",
			org:     repository.Organization{},
			wantErr: "name is required",
		},
		{
			name:    "bad timezone",
			org:     repository.Organization{Name: "Office", Timezone: "Mars/Olympus"},
			wantErr: "invalid timezone",
		},
		{
			name:    "bad open time",
			org:     repository.Organization{Name: "Office", DefaultOpenTime: "25:99"},
			wantErr: "invalid default_open_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOrganization(&tt.org)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
