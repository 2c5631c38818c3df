package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse-backend/internal/attendance/engine"
	"github.com/workpulse/workpulse-backend/internal/attendance/repository"
	"github.com/workpulse/workpulse-backend/internal/attendance/service"
	"github.com/workpulse/workpulse-backend/pkg/logger"
)

// ============================================================================
// FAKES
// ============================================================================

// fakeStore is an in-memory ShiftStore.
type fakeStore struct {
	employees   map[string]bool
	shifts      map[string]*repository.Shift
	breaks      map[string]*repository.ShiftBreak
	corrections []*repository.ShiftCorrection
	weekMinutes int
	nextID      int
}

func newFakeStore(employeeIDs ...string) *fakeStore {
	s := &fakeStore{
		employees: map[string]bool{},
		shifts:    map[string]*repository.Shift{},
		breaks:    map[string]*repository.ShiftBreak{},
	}
	for _, id := range employeeIDs {
		s.employees[id] = true
	}
	return s
}

func (s *fakeStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *fakeStore) CreateShift(_ context.Context, shift *repository.Shift) error {
	if shift.ID == "" {
		shift.ID = s.id("shift")
	}
	if shift.Status == "" {
		shift.Status = repository.ShiftStatusActive
	}
	copied := *shift
	s.shifts[shift.ID] = &copied
	return nil
}

func (s *fakeStore) GetShiftByID(_ context.Context, id string) (*repository.Shift, error) {
	shift, ok := s.shifts[id]
	if !ok {
		return nil, fmt.Errorf("shift not found: %s", id)
	}
	copied := *shift
	return &copied, nil
}

func (s *fakeStore) GetActiveShiftByEmployee(_ context.Context, employeeID string) (*repository.Shift, error) {
	for _, shift := range s.shifts {
		if shift.EmployeeID == employeeID && shift.CheckOut == nil && shift.DeletedAt == nil {
			copied := *shift
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetShiftByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*repository.Shift, error) {
	for _, shift := range s.shifts {
		if shift.EmployeeID == employeeID && engine.SameDate(shift.ShiftDate, date) && shift.DeletedAt == nil {
			copied := *shift
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) UpdateShift(_ context.Context, shift *repository.Shift) error {
	if _, ok := s.shifts[shift.ID]; !ok {
		return fmt.Errorf("shift not found: %s", shift.ID)
	}
	copied := *shift
	s.shifts[shift.ID] = &copied
	return nil
}

func (s *fakeStore) SoftDeleteShift(_ context.Context, id string) error {
	shift, ok := s.shifts[id]
	if !ok {
		return fmt.Errorf("shift not found: %s", id)
	}
	now := time.Now()
	shift.DeletedAt = &now
	return nil
}

func (s *fakeStore) ListShiftsByDate(_ context.Context, date time.Time) ([]*repository.Shift, error) {
	var out []*repository.Shift
	for _, shift := range s.shifts {
		if engine.SameDate(shift.ShiftDate, date) && shift.DeletedAt == nil {
			copied := *shift
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeStore) ListShiftsOverlappingDate(_ context.Context, date time.Time) ([]*repository.Shift, error) {
	dayStart := engine.DayStart(date)
	dayEnd := dayStart.AddDate(0, 0, 1)
	var out []*repository.Shift
	for _, shift := range s.shifts {
		if shift.DeletedAt != nil {
			continue
		}
		if shift.CheckIn.Before(dayEnd) && (shift.CheckOut == nil || shift.CheckOut.After(dayStart)) {
			copied := *shift
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeStore) ListShiftsForEmployee(_ context.Context, employeeID string, startDate, endDate time.Time) ([]*repository.Shift, error) {
	var out []*repository.Shift
	for _, shift := range s.shifts {
		if shift.EmployeeID != employeeID || shift.DeletedAt != nil {
			continue
		}
		if shift.ShiftDate.Before(startDate) || shift.ShiftDate.After(endDate) {
			continue
		}
		copied := *shift
		out = append(out, &copied)
	}
	return out, nil
}

func (s *fakeStore) CreateBreak(_ context.Context, brk *repository.ShiftBreak) error {
	if brk.ID == "" {
		brk.ID = s.id("break")
	}
	copied := *brk
	s.breaks[brk.ID] = &copied
	return nil
}

func (s *fakeStore) GetActiveBreak(_ context.Context, shiftID string) (*repository.ShiftBreak, error) {
	for _, brk := range s.breaks {
		if brk.ShiftID == shiftID && brk.EndTime == nil {
			copied := *brk
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) UpdateBreak(_ context.Context, brk *repository.ShiftBreak) error {
	if _, ok := s.breaks[brk.ID]; !ok {
		return fmt.Errorf("break not found: %s", brk.ID)
	}
	copied := *brk
	s.breaks[brk.ID] = &copied
	return nil
}

func (s *fakeStore) ListBreaksForShift(_ context.Context, shiftID string) ([]*repository.ShiftBreak, error) {
	var out []*repository.ShiftBreak
	for _, brk := range s.breaks {
		if brk.ShiftID == shiftID {
			copied := *brk
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateCorrection(_ context.Context, corr *repository.ShiftCorrection) error {
	if corr.ID == "" {
		corr.ID = s.id("correction")
	}
	copied := *corr
	s.corrections = append(s.corrections, &copied)
	return nil
}

func (s *fakeStore) ListCorrectionsForEmployee(_ context.Context, employeeID string, _, _ time.Time) ([]*repository.ShiftCorrection, error) {
	var out []*repository.ShiftCorrection
	for _, corr := range s.corrections {
		if corr.EmployeeID == employeeID {
			out = append(out, corr)
		}
	}
	return out, nil
}

func (s *fakeStore) GetWeekNetMinutes(_ context.Context, _ string) (int, error) {
	return s.weekMinutes, nil
}

func (s *fakeStore) CheckEmployeeExists(_ context.Context, employeeID string) (bool, error) {
	return s.employees[employeeID], nil
}

// fakePublisher records published event types.
type fakePublisher struct {
	events []string
}

func (p *fakePublisher) record(name string) { p.events = append(p.events, name) }

func (p *fakePublisher) PublishCheckedIn(_ context.Context, _ *repository.Shift) { p.record("checked_in") }
func (p *fakePublisher) PublishCheckedOut(_ context.Context, _ *repository.Shift) {
	p.record("checked_out")
}
func (p *fakePublisher) PublishShiftCorrected(_ context.Context, _ *repository.ShiftCorrection, _ map[string]any) {
	p.record("corrected")
}
func (p *fakePublisher) PublishBreakStarted(_ context.Context, _ *repository.ShiftBreak, _ string) {
	p.record("break_started")
}
func (p *fakePublisher) PublishBreakEnded(_ context.Context, _ *repository.ShiftBreak, _ string) {
	p.record("break_ended")
}
func (p *fakePublisher) PublishLateArrival(_ context.Context, _ *repository.Shift, _ engine.ArrivalVerdict) {
	p.record("late_arrival")
}
func (p *fakePublisher) PublishOvertimeRecorded(_ context.Context, _ *repository.Shift, _ int) {
	p.record("overtime")
}

func (p *fakePublisher) has(name string) bool {
	for _, e := range p.events {
		if e == name {
			return true
		}
	}
	return false
}

// fakeSchedules is an in-memory engine.ScheduleSource.
type fakeSchedules struct {
	schedules map[string]*engine.OrganizationSchedule
}

func (f *fakeSchedules) OrganizationSchedule(_ context.Context, organizationID string) (*engine.OrganizationSchedule, error) {
	if sched, ok := f.schedules[organizationID]; ok {
		return sched, nil
	}
	return engine.DefaultSchedule(), nil
}

// ============================================================================
// FIXTURE
// ============================================================================

type fixture struct {
	store     *fakeStore
	publisher *fakePublisher
	schedules *fakeSchedules
	svc       *service.AttendanceService
	now       time.Time
}

// newFixture wires the service against fakes with a pinned clock.
// The default "now" is a Monday at 07:35 UTC, inside the default window.
func newFixture(t *testing.T, employeeIDs ...string) *fixture {
	t.Helper()

	store := newFakeStore(employeeIDs...)
	publisher := &fakePublisher{}
	schedules := &fakeSchedules{schedules: map[string]*engine.OrganizationSchedule{}}
	resolver := engine.NewResolver(schedules)
	log := logger.New("attendance-test", "test")

	f := &fixture{
		store:     store,
		publisher: publisher,
		schedules: schedules,
		now:       time.Date(2024, 3, 4, 7, 35, 0, 0, time.UTC),
	}
	f.svc = service.NewAttendanceService(store, publisher, schedules, resolver, log).
		WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func strPtr(s string) *string { return &s }

// ============================================================================
// CHECK IN
// ============================================================================

func TestCheckIn_OnTime(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	result, err := f.svc.CheckIn(ctx, "emp-1", nil, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Shift)

	assert.Equal(t, "emp-1", result.Shift.EmployeeID)
	assert.Equal(t, repository.ShiftStatusActive, result.Shift.Status)
	assert.Nil(t, result.Shift.CheckOut)
	assert.Equal(t, engine.TierOnTime, result.Arrival.Tier)
	assert.False(t, result.Arrival.IsLate)

	assert.True(t, f.publisher.has("checked_in"))
	assert.False(t, f.publisher.has("late_arrival"))
}

func TestCheckIn_Late(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	// 08:30 against a 07:30 expected start and 15 minute grace.
	f.now = time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC)

	result, err := f.svc.CheckIn(ctx, "emp-1", nil, nil)
	require.NoError(t, err)

	assert.True(t, result.Arrival.IsLate)
	assert.Equal(t, 45, result.Arrival.MinutesLate)
	assert.Equal(t, engine.TierVeryLate, result.Arrival.Tier)
	assert.True(t, f.publisher.has("late_arrival"))
}

func TestCheckIn_AlreadyCheckedIn(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "emp-1", nil, nil)
	require.NoError(t, err)

	_, err = f.svc.CheckIn(ctx, "emp-1", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already checked in")
}

func TestCheckIn_UnknownEmployee(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "emp-unknown", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCheckIn_OrganizationTimezoneAndGrace(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	sched := engine.DefaultSchedule()
	sched.Timezone = "Europe/Berlin"
	sched.GraceMinutes = 5
	f.schedules.schedules["org-1"] = sched

	// 06:41 UTC is 07:41 Berlin (CET, March 4th): 11 past the window
	// start, 6 past the 5 minute grace.
	f.now = time.Date(2024, 3, 4, 6, 41, 0, 0, time.UTC)

	result, err := f.svc.CheckIn(ctx, "emp-1", strPtr("org-1"), nil)
	require.NoError(t, err)

	assert.True(t, result.Arrival.IsLate)
	assert.Equal(t, 6, result.Arrival.MinutesLate)
	assert.Equal(t, engine.TierLate, result.Arrival.Tier)
}

// ============================================================================
// CHECK OUT
// ============================================================================

func TestCheckOut_ComputesTotals(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "emp-1", nil, nil)
	require.NoError(t, err)

	// Work 2h, break 30m, work 6h30m more: gross 9h, net 8h30m.
	f.advance(2 * time.Hour)
	_, err = f.svc.StartBreak(ctx, "emp-1")
	require.NoError(t, err)

	f.advance(30 * time.Minute)
	_, err = f.svc.EndBreak(ctx, "emp-1")
	require.NoError(t, err)

	f.advance(6*time.Hour + 30*time.Minute)
	result, err := f.svc.CheckOut(ctx, "emp-1")
	require.NoError(t, err)

	assert.Equal(t, 540, result.Session.GrossMinutes)
	assert.Equal(t, 30, result.Session.BreakMinutes)
	assert.Equal(t, 510, result.Session.NetMinutes)
	assert.Equal(t, repository.ShiftStatusCompleted, result.Shift.Status)
	assert.Equal(t, 510, result.Shift.NetWorkMinutes)
	assert.Equal(t, 30, result.Shift.TotalBreakMinutes)

	// Default window is 07:30-16:30, 540 expected minutes: no overtime.
	assert.False(t, result.Overtime.IsOvertime)
	assert.Equal(t, 0, result.Shift.OvertimeMinutes)
	assert.True(t, f.publisher.has("checked_out"))
	assert.False(t, f.publisher.has("overtime"))
}

func TestCheckOut_EndsOpenBreak(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "emp-1", nil, nil)
	require.NoError(t, err)

	f.advance(4 * time.Hour)
	_, err = f.svc.StartBreak(ctx, "emp-1")
	require.NoError(t, err)

	// Check out mid-break: the break is closed at the check-out instant.
	f.advance(20 * time.Minute)
	result, err := f.svc.CheckOut(ctx, "emp-1")
	require.NoError(t, err)

	assert.Equal(t, 20, result.Session.BreakMinutes)
	assert.Equal(t, 240, result.Session.NetMinutes)
	assert.True(t, f.publisher.has("break_ended"))

	brk, err := f.store.GetActiveBreak(ctx, result.Shift.ID)
	require.NoError(t, err)
	assert.Nil(t, brk)
}

func TestCheckOut_Overtime(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "emp-1", nil, nil)
	require.NoError(t, err)

	// 10h against a 9h window.
	f.advance(10 * time.Hour)
	result, err := f.svc.CheckOut(ctx, "emp-1")
	require.NoError(t, err)

	assert.True(t, result.Overtime.IsOvertime)
	assert.Equal(t, 60, result.Overtime.OvertimeMinutes)
	assert.Equal(t, 540, result.Overtime.CappedMinutes)
	assert.Equal(t, 60, result.Shift.OvertimeMinutes)
	assert.True(t, f.publisher.has("overtime"))
}

func TestCheckOut_NotCheckedIn(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	_, err := f.svc.CheckOut(ctx, "emp-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not checked in")
}

// ============================================================================
// BREAKS
// ============================================================================

func TestStartBreak_NotCheckedIn(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	_, err := f.svc.StartBreak(ctx, "emp-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not checked in")
}

func TestStartBreak_AlreadyOnBreak(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "emp-1", nil, nil)
	require.NoError(t, err)
	_, err = f.svc.StartBreak(ctx, "emp-1")
	require.NoError(t, err)

	_, err = f.svc.StartBreak(ctx, "emp-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already on break")
}

func TestEndBreak_NotOnBreak(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "emp-1", nil, nil)
	require.NoError(t, err)

	_, err = f.svc.EndBreak(ctx, "emp-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not on break")
}

// ============================================================================
// MANUAL ENTRIES
// ============================================================================

func TestManualCheckIn_SetsAuditFields(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	checkIn := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	result, err := f.svc.ManualCheckIn(ctx, "emp-1", checkIn, nil, "mgr-1")
	require.NoError(t, err)

	assert.True(t, result.Shift.IsManualEntry)
	require.NotNil(t, result.Shift.CreatedBy)
	assert.Equal(t, "mgr-1", *result.Shift.CreatedBy)
	assert.Equal(t, checkIn, result.Shift.CheckIn)
}

func TestManualCheckIn_DuplicateDate(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	checkIn := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	_, err := f.svc.ManualCheckIn(ctx, "emp-1", checkIn, nil, "mgr-1")
	require.NoError(t, err)

	_, err = f.svc.ManualCheckIn(ctx, "emp-1", checkIn.Add(time.Hour), nil, "mgr-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestManualCheckOut_BeforeCheckIn(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	checkIn := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	_, err := f.svc.ManualCheckIn(ctx, "emp-1", checkIn, nil, "mgr-1")
	require.NoError(t, err)

	_, err = f.svc.ManualCheckOut(ctx, "emp-1", checkIn.Add(-time.Hour), "mgr-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be after")
}

func TestManualCheckOut_CompletesShift(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	checkIn := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	_, err := f.svc.ManualCheckIn(ctx, "emp-1", checkIn, nil, "mgr-1")
	require.NoError(t, err)

	result, err := f.svc.ManualCheckOut(ctx, "emp-1", checkIn.Add(8*time.Hour), "mgr-1")
	require.NoError(t, err)

	assert.Equal(t, 480, result.Session.NetMinutes)
	assert.Equal(t, repository.ShiftStatusCompleted, result.Shift.Status)
	require.NotNil(t, result.Shift.UpdatedBy)
	assert.Equal(t, "mgr-1", *result.Shift.UpdatedBy)
	assert.True(t, result.Shift.IsManualEntry)
}

// ============================================================================
// CORRECTIONS
// ============================================================================

func TestCorrectShift_RecomputesTotals(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "emp-1", nil, nil)
	require.NoError(t, err)
	f.advance(8 * time.Hour)
	result, err := f.svc.CheckOut(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 480, result.Shift.NetWorkMinutes)

	// Push the check-out one hour later: 540 net, status corrected.
	correctedOut := result.Shift.CheckOut.Add(time.Hour)
	shift, err := f.svc.CorrectShift(ctx, result.Shift.ID, nil, &correctedOut, "forgot to check out", "mgr-1")
	require.NoError(t, err)

	assert.Equal(t, 540, shift.NetWorkMinutes)
	assert.Equal(t, repository.ShiftStatusCorrected, shift.Status)
	assert.True(t, f.publisher.has("corrected"))
	require.Len(t, f.store.corrections, 1)
	assert.Equal(t, "forgot to check out", f.store.corrections[0].Reason)
}

func TestCorrectShift_RequiresReason(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	_, err := f.svc.CorrectShift(ctx, "shift-1", nil, nil, "", "mgr-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reason is required")
}

func TestCorrectShift_RejectsInvertedTimes(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "emp-1", nil, nil)
	require.NoError(t, err)
	f.advance(8 * time.Hour)
	result, err := f.svc.CheckOut(ctx, "emp-1")
	require.NoError(t, err)

	badOut := result.Shift.CheckIn.Add(-time.Hour)
	_, err = f.svc.CorrectShift(ctx, result.Shift.ID, nil, &badOut, "typo", "mgr-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be after")
}

// ============================================================================
// EMPLOYEE STATUS
// ============================================================================

func TestGetEmployeeStatus_CheckedOut(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	status, err := f.svc.GetEmployeeStatus(ctx, "emp-1")
	require.NoError(t, err)

	assert.Equal(t, "checked_out", status.Status)
	assert.Nil(t, status.ShiftID)
	assert.Equal(t, 0, status.TodayMinutes)
}

func TestGetEmployeeStatus_OnBreak_LiveMinutes(t *testing.T) {
	f := newFixture(t, "emp-1")
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "emp-1", nil, nil)
	require.NoError(t, err)

	f.advance(3 * time.Hour)
	_, err = f.svc.StartBreak(ctx, "emp-1")
	require.NoError(t, err)

	// 10 minutes into the break: the running break already reduces the
	// live total, so today shows 3h net, not 3h10m.
	f.advance(10 * time.Minute)
	status, err := f.svc.GetEmployeeStatus(ctx, "emp-1")
	require.NoError(t, err)

	assert.Equal(t, "on_break", status.Status)
	require.NotNil(t, status.BreakStart)
	assert.Equal(t, 180, status.TodayMinutes)
}

func TestGetEmployeeStatus_WeekMinutes(t *testing.T) {
	f := newFixture(t, "emp-1")
	f.store.weekMinutes = 1234
	ctx := context.Background()

	status, err := f.svc.GetEmployeeStatus(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 1234, status.WeekMinutes)
}
