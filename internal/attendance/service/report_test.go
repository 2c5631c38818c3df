package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse-backend/internal/attendance/engine"
	"github.com/workpulse/workpulse-backend/internal/attendance/repository"
	"github.com/workpulse/workpulse-backend/internal/attendance/service"
	"github.com/workpulse/workpulse-backend/pkg/logger"
)

type reportFixture struct {
	store     *fakeStore
	schedules *fakeSchedules
	svc       *service.ReportService
	now       time.Time
}

func newReportFixture(t *testing.T, employeeIDs ...string) *reportFixture {
	t.Helper()

	store := newFakeStore(employeeIDs...)
	schedules := &fakeSchedules{schedules: map[string]*engine.OrganizationSchedule{}}
	resolver := engine.NewResolver(schedules)
	log := logger.New("attendance-test", "test")

	f := &reportFixture{
		store:     store,
		schedules: schedules,
		now:       time.Date(2024, 3, 8, 18, 0, 0, 0, time.UTC),
	}
	f.svc = service.NewReportService(store, schedules, resolver, log).
		WithClock(func() time.Time { return f.now })
	return f
}

// addShift seeds a completed shift with persisted totals, the way check-out
// would have written them.
func (f *reportFixture) addShift(t *testing.T, employeeID string, checkIn time.Time, workHours int, breakMinutes, overtimeMinutes int) *repository.Shift {
	t.Helper()
	checkOut := checkIn.Add(time.Duration(workHours)*time.Hour + time.Duration(breakMinutes)*time.Minute)
	shift := &repository.Shift{
		EmployeeID:        employeeID,
		ShiftDate:         engine.DayStart(checkIn),
		CheckIn:           checkIn,
		CheckOut:          &checkOut,
		NetWorkMinutes:    workHours * 60,
		TotalBreakMinutes: breakMinutes,
		OvertimeMinutes:   overtimeMinutes,
		Status:            repository.ShiftStatusCompleted,
	}
	require.NoError(t, f.store.CreateShift(context.Background(), shift))

	if breakMinutes > 0 {
		breakStart := checkIn.Add(2 * time.Hour)
		breakEnd := breakStart.Add(time.Duration(breakMinutes) * time.Minute)
		require.NoError(t, f.store.CreateBreak(context.Background(), &repository.ShiftBreak{
			ShiftID:   shift.ID,
			StartTime: breakStart,
			EndTime:   &breakEnd,
		}))
	}
	return shift
}

// ============================================================================
// DAILY REPORT
// ============================================================================

func TestDailyReport_SimpleDay(t *testing.T) {
	f := newReportFixture(t, "emp-1", "emp-2")
	ctx := context.Background()

	day := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	f.addShift(t, "emp-1", day.Add(8*time.Hour), 8, 0, 0)
	f.addShift(t, "emp-2", day.Add(9*time.Hour), 6, 30, 0)

	report, err := f.svc.DailyReport(ctx, day)
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, 14*60, report.TotalNetMinutes)
	assert.Equal(t, "14h 0m", report.TotalNetText)
}

func TestDailyReport_OvernightShiftSplitsAcrossDays(t *testing.T) {
	f := newReportFixture(t, "emp-1")
	ctx := context.Background()

	// 23:00 March 7 to 07:00 March 8: one hour belongs to the 7th,
	// seven to the 8th.
	checkIn := time.Date(2024, 3, 7, 23, 0, 0, 0, time.UTC)
	f.addShift(t, "emp-1", checkIn, 8, 0, 0)

	first, err := f.svc.DailyReport(ctx, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, first.Rows, 1)
	assert.Equal(t, 60, first.Rows[0].NetWorkMinutes)
	assert.Equal(t, "1h 0m", first.Rows[0].NetWorkText)

	second, err := f.svc.DailyReport(ctx, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, second.Rows, 1)
	assert.Equal(t, 7*60, second.Rows[0].NetWorkMinutes)

	// Conservation: the two slices add up to the whole shift.
	assert.Equal(t, 8*60, first.Rows[0].NetWorkMinutes+second.Rows[0].NetWorkMinutes)
}

func TestDailyReport_ArrivalGradedOnlyOnStartDay(t *testing.T) {
	f := newReportFixture(t, "emp-1")
	ctx := context.Background()

	checkIn := time.Date(2024, 3, 7, 23, 0, 0, 0, time.UTC)
	f.addShift(t, "emp-1", checkIn, 8, 0, 0)

	first, err := f.svc.DailyReport(ctx, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, first.Rows, 1)
	assert.NotNil(t, first.Rows[0].Arrival)

	second, err := f.svc.DailyReport(ctx, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, second.Rows, 1)
	assert.Nil(t, second.Rows[0].Arrival, "spillover row is not a second arrival")
}

func TestDailyReport_CountsLateArrivals(t *testing.T) {
	f := newReportFixture(t, "emp-1", "emp-2")
	ctx := context.Background()

	day := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	// 07:35 is inside grace, 08:30 is 45 minutes late.
	f.addShift(t, "emp-1", day.Add(7*time.Hour+35*time.Minute), 8, 0, 0)
	f.addShift(t, "emp-2", day.Add(8*time.Hour+30*time.Minute), 8, 0, 0)

	report, err := f.svc.DailyReport(ctx, day)
	require.NoError(t, err)

	assert.Equal(t, 1, report.LateCount)
}

func TestDailyReport_OpenShiftValuedAsOfNow(t *testing.T) {
	f := newReportFixture(t, "emp-1")
	ctx := context.Background()

	day := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	shift := &repository.Shift{
		EmployeeID: "emp-1",
		ShiftDate:  day,
		CheckIn:    day.Add(8 * time.Hour),
		Status:     repository.ShiftStatusActive,
	}
	require.NoError(t, f.store.CreateShift(ctx, shift))

	// now is 18:00: ten hours into the open shift.
	report, err := f.svc.DailyReport(ctx, day)
	require.NoError(t, err)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, 10*60, report.Rows[0].NetWorkMinutes)
	assert.Nil(t, report.Rows[0].CheckOut)
}

func TestDailyReport_EmptyDay(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	report, err := f.svc.DailyReport(ctx, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Empty(t, report.Rows)
	assert.Equal(t, 0, report.TotalNetMinutes)
	assert.Equal(t, "0h 0m", report.TotalNetText)
}

// ============================================================================
// PERIOD SUMMARY
// ============================================================================

func TestPeriodSummary_Totals(t *testing.T) {
	f := newReportFixture(t, "emp-1")
	ctx := context.Background()

	// Monday through Wednesday, 8h / 9h / 7h.
	f.addShift(t, "emp-1", time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), 8, 30, 0)
	f.addShift(t, "emp-1", time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC), 9, 30, 60)
	f.addShift(t, "emp-1", time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC), 7, 0, 0)

	summary, err := f.svc.PeriodSummary(ctx, "emp-1",
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.DaysWorked)
	assert.Equal(t, 24*60, summary.TotalNetMinutes)
	assert.Equal(t, "24h 0m", summary.TotalNetText)
	assert.Equal(t, 60, summary.TotalBreakMinutes)
	assert.Equal(t, 60, summary.TotalOvertimeMinutes)
	assert.InDelta(t, 8.0, summary.AverageDailyHours, 0.001)
	require.Len(t, summary.Shifts, 3)
}

func TestPeriodSummary_AverageCheckIn(t *testing.T) {
	f := newReportFixture(t, "emp-1")
	ctx := context.Background()

	// 07:50 and 08:10 average to 08:00.
	f.addShift(t, "emp-1", time.Date(2024, 3, 4, 7, 50, 0, 0, time.UTC), 8, 0, 0)
	f.addShift(t, "emp-1", time.Date(2024, 3, 5, 8, 10, 0, 0, time.UTC), 8, 0, 0)

	summary, err := f.svc.PeriodSummary(ctx, "emp-1",
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "08:00", summary.AverageCheckIn)
}

func TestPeriodSummary_MidnightStraddlingAverage(t *testing.T) {
	f := newReportFixture(t, "emp-1")
	ctx := context.Background()

	// 23:30 and 00:30 average to 00:00, not 12:00.
	f.addShift(t, "emp-1", time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC), 8, 0, 0)
	f.addShift(t, "emp-1", time.Date(2024, 3, 6, 0, 30, 0, 0, time.UTC), 8, 0, 0)

	summary, err := f.svc.PeriodSummary(ctx, "emp-1",
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "00:00", summary.AverageCheckIn)
}

func TestPeriodSummary_PunctualityTiers(t *testing.T) {
	f := newReportFixture(t, "emp-1")
	ctx := context.Background()

	// Against the 07:30 default start with 15 minute grace:
	// on time, 20 late, 40 very late, 90 extremely late.
	f.addShift(t, "emp-1", time.Date(2024, 3, 4, 7, 30, 0, 0, time.UTC), 8, 0, 0)
	f.addShift(t, "emp-1", time.Date(2024, 3, 5, 8, 5, 0, 0, time.UTC), 8, 0, 0)
	f.addShift(t, "emp-1", time.Date(2024, 3, 6, 8, 25, 0, 0, time.UTC), 8, 0, 0)
	f.addShift(t, "emp-1", time.Date(2024, 3, 7, 9, 15, 0, 0, time.UTC), 8, 0, 0)

	summary, err := f.svc.PeriodSummary(ctx, "emp-1",
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.OnTimeCount)
	assert.Equal(t, 1, summary.LateCount)
	assert.Equal(t, 1, summary.VeryLateCount)
	assert.Equal(t, 1, summary.ExtremelyLateCount)
}

func TestPeriodSummary_NoShifts(t *testing.T) {
	f := newReportFixture(t, "emp-1")
	ctx := context.Background()

	summary, err := f.svc.PeriodSummary(ctx, "emp-1",
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 0, summary.DaysWorked)
	assert.Equal(t, 0.0, summary.AverageDailyHours)
	assert.Equal(t, "N/A", summary.AverageCheckIn)
	assert.Equal(t, "N/A", summary.AverageCheckOut)
}

func TestPeriodSummary_UnknownEmployee(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.svc.PeriodSummary(ctx, "emp-unknown", f.now.AddDate(0, 0, -7), f.now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
