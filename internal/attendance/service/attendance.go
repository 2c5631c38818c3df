package service

import (
	"context"
	"time"

	"github.com/workpulse/workpulse-backend/internal/attendance/engine"
	"github.com/workpulse/workpulse-backend/internal/attendance/repository"
	"github.com/workpulse/workpulse-backend/pkg/errors"
	"github.com/workpulse/workpulse-backend/pkg/logger"
)

// ShiftStore is the persistence surface the attendance service needs.
// *repository.ShiftRepository satisfies it; tests substitute a fake.
type ShiftStore interface {
	CreateShift(ctx context.Context, shift *repository.Shift) error
	GetShiftByID(ctx context.Context, id string) (*repository.Shift, error)
	GetActiveShiftByEmployee(ctx context.Context, employeeID string) (*repository.Shift, error)
	GetShiftByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*repository.Shift, error)
	UpdateShift(ctx context.Context, shift *repository.Shift) error
	SoftDeleteShift(ctx context.Context, id string) error
	ListShiftsByDate(ctx context.Context, date time.Time) ([]*repository.Shift, error)
	ListShiftsOverlappingDate(ctx context.Context, date time.Time) ([]*repository.Shift, error)
	ListShiftsForEmployee(ctx context.Context, employeeID string, startDate, endDate time.Time) ([]*repository.Shift, error)
	CreateBreak(ctx context.Context, brk *repository.ShiftBreak) error
	GetActiveBreak(ctx context.Context, shiftID string) (*repository.ShiftBreak, error)
	UpdateBreak(ctx context.Context, brk *repository.ShiftBreak) error
	ListBreaksForShift(ctx context.Context, shiftID string) ([]*repository.ShiftBreak, error)
	CreateCorrection(ctx context.Context, corr *repository.ShiftCorrection) error
	ListCorrectionsForEmployee(ctx context.Context, employeeID string, startDate, endDate time.Time) ([]*repository.ShiftCorrection, error)
	GetWeekNetMinutes(ctx context.Context, employeeID string) (int, error)
	CheckEmployeeExists(ctx context.Context, employeeID string) (bool, error)
}

// EventPublisher is the outbound event surface of the attendance service.
type EventPublisher interface {
	PublishCheckedIn(ctx context.Context, shift *repository.Shift)
	PublishCheckedOut(ctx context.Context, shift *repository.Shift)
	PublishShiftCorrected(ctx context.Context, corr *repository.ShiftCorrection, fields map[string]any)
	PublishBreakStarted(ctx context.Context, brk *repository.ShiftBreak, employeeID string)
	PublishBreakEnded(ctx context.Context, brk *repository.ShiftBreak, employeeID string)
	PublishLateArrival(ctx context.Context, shift *repository.Shift, verdict engine.ArrivalVerdict)
	PublishOvertimeRecorded(ctx context.Context, shift *repository.Shift, expectedMinutes int)
}

// CheckInResult pairs the created shift with its punctuality verdict.
type CheckInResult struct {
	Shift   *repository.Shift     `json:"shift"`
	Arrival engine.ArrivalVerdict `json:"arrival"`
}

// CheckOutResult pairs the completed shift with its derived accounting.
type CheckOutResult struct {
	Shift     *repository.Shift        `json:"shift"`
	Session   engine.WorkSessionResult `json:"session"`
	Overtime  engine.OvertimeResult    `json:"overtime"`
	Departure engine.DepartureVerdict  `json:"departure"`
}

// AttendanceService handles check-in/check-out business logic
type AttendanceService struct {
	store     ShiftStore
	publisher EventPublisher
	schedules engine.ScheduleSource
	resolver  *engine.Resolver
	logger    *logger.Logger
	now       func() time.Time
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	store ShiftStore,
	publisher EventPublisher,
	schedules engine.ScheduleSource,
	resolver *engine.Resolver,
	log *logger.Logger,
) *AttendanceService {
	return &AttendanceService{
		store:     store,
		publisher: publisher,
		schedules: schedules,
		resolver:  resolver,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock injects the clock. Tests use this to pin "now".
func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	s.now = now
	return s
}

// organizationLocale returns the timezone and grace period configured for an
// organization. A missing or broken configuration falls back to UTC and the
// default grace rather than failing the punch.
func organizationLocale(ctx context.Context, schedules engine.ScheduleSource, log *logger.Logger, organizationID *string) (*time.Location, int) {
	loc := time.UTC
	grace := engine.DefaultGraceMinutes

	if organizationID == nil || *organizationID == "" {
		return loc, grace
	}

	schedule, err := schedules.OrganizationSchedule(ctx, *organizationID)
	if err != nil || schedule == nil {
		if err != nil {
			log.Warn().Err(err).Str("organization_id", *organizationID).Msg("failed to load schedule, using defaults")
		}
		return loc, grace
	}

	if schedule.Timezone != "" {
		if l, err := time.LoadLocation(schedule.Timezone); err == nil {
			loc = l
		} else {
			log.Warn().Str("timezone", schedule.Timezone).Str("organization_id", *organizationID).Msg("invalid timezone, using UTC")
		}
	}
	if schedule.GraceMinutes > 0 {
		grace = schedule.GraceMinutes
	}
	return loc, grace
}

func orgIDString(organizationID *string) string {
	if organizationID == nil {
		return ""
	}
	return *organizationID
}

// breakIntervals converts stored break rows to engine intervals.
func breakIntervals(breaks []*repository.ShiftBreak) []engine.BreakInterval {
	intervals := make([]engine.BreakInterval, 0, len(breaks))
	for _, b := range breaks {
		intervals = append(intervals, engine.BreakInterval{Start: b.StartTime, End: b.EndTime})
	}
	return intervals
}

func legacyBreakText(shift *repository.Shift) string {
	if shift.LegacyBreakText == nil {
		return ""
	}
	return *shift.LegacyBreakText
}

// CheckIn opens a shift for an employee and grades the arrival against the
// organization's schedule.
func (s *AttendanceService) CheckIn(ctx context.Context, employeeID string, organizationID, terminalID *string) (*CheckInResult, error) {
	exists, err := s.store.CheckEmployeeExists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NotFound("employee")
	}

	active, err := s.store.GetActiveShiftByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, errors.BadRequest("already checked in")
	}

	loc, grace := organizationLocale(ctx, s.schedules, s.logger, organizationID)
	now := s.now().In(loc)

	shift := &repository.Shift{
		EmployeeID:     employeeID,
		OrganizationID: organizationID,
		ShiftDate:      engine.DayStart(now),
		CheckIn:        now,
		Status:         repository.ShiftStatusActive,
		TerminalID:     terminalID,
	}

	if err := s.store.CreateShift(ctx, shift); err != nil {
		return nil, err
	}

	day, err := s.resolver.WorkingDay(ctx, orgIDString(organizationID), now)
	if err != nil {
		// The shift is recorded; punctuality grading is best effort.
		s.logger.Warn().Err(err).Str("employee_id", employeeID).Msg("failed to resolve working day for arrival")
		day = engine.ResolvedWorkingDay{}
	}
	verdict := engine.EvaluateArrival(now, day, grace)

	s.publisher.PublishCheckedIn(ctx, shift)
	if verdict.IsLate {
		s.publisher.PublishLateArrival(ctx, shift, verdict)
	}

	return &CheckInResult{Shift: shift, Arrival: verdict}, nil
}

// CheckOut closes the employee's open shift and computes its accounting.
// An open break is ended implicitly at the check-out instant.
func (s *AttendanceService) CheckOut(ctx context.Context, employeeID string) (*CheckOutResult, error) {
	shift, err := s.store.GetActiveShiftByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, errors.BadRequest("not checked in")
	}

	loc, _ := organizationLocale(ctx, s.schedules, s.logger, shift.OrganizationID)
	now := s.now().In(loc)

	activeBreak, err := s.store.GetActiveBreak(ctx, shift.ID)
	if err != nil {
		return nil, err
	}
	if activeBreak != nil {
		end := now
		activeBreak.EndTime = &end
		if err := s.store.UpdateBreak(ctx, activeBreak); err != nil {
			return nil, err
		}
		s.publisher.PublishBreakEnded(ctx, activeBreak, employeeID)
	}

	return s.completeShift(ctx, shift, now, nil)
}

// completeShift finalizes a shift at checkOut and persists derived totals.
func (s *AttendanceService) completeShift(ctx context.Context, shift *repository.Shift, checkOut time.Time, updatedBy *string) (*CheckOutResult, error) {
	breaks, err := s.store.ListBreaksForShift(ctx, shift.ID)
	if err != nil {
		return nil, err
	}

	breakMinutes := engine.TotalBreakMinutes(breakIntervals(breaks), legacyBreakText(shift), engine.BreaksCompleted, checkOut)
	session := engine.ComputeSession(shift.CheckIn, checkOut, breakMinutes)

	var dayForOvertime *engine.ResolvedWorkingDay
	day, err := s.resolver.WorkingDay(ctx, orgIDString(shift.OrganizationID), shift.CheckIn)
	if err != nil {
		s.logger.Warn().Err(err).Str("shift_id", shift.ID).Msg("failed to resolve working day, using default expected minutes")
	} else {
		dayForOvertime = &day
	}
	overtime := engine.Overtime(session.NetMinutes, dayForOvertime)
	departure := engine.EvaluateDeparture(checkOut, day)

	shift.CheckOut = &checkOut
	shift.NetWorkMinutes = session.NetMinutes
	shift.TotalBreakMinutes = breakMinutes
	shift.OvertimeMinutes = overtime.OvertimeMinutes
	shift.Status = repository.ShiftStatusCompleted
	if updatedBy != nil {
		shift.IsManualEntry = true
		shift.UpdatedBy = updatedBy
	}

	if err := s.store.UpdateShift(ctx, shift); err != nil {
		return nil, err
	}

	s.publisher.PublishCheckedOut(ctx, shift)
	if overtime.IsOvertime {
		expected := engine.DefaultExpectedMinutes
		if dayForOvertime != nil {
			expected = dayForOvertime.ExpectedMinutes
		}
		s.publisher.PublishOvertimeRecorded(ctx, shift, expected)
	}

	return &CheckOutResult{
		Shift:     shift,
		Session:   session,
		Overtime:  overtime,
		Departure: departure,
	}, nil
}

// StartBreak starts a break on the employee's open shift.
func (s *AttendanceService) StartBreak(ctx context.Context, employeeID string) (*repository.ShiftBreak, error) {
	shift, err := s.store.GetActiveShiftByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, errors.BadRequest("not checked in")
	}

	activeBreak, err := s.store.GetActiveBreak(ctx, shift.ID)
	if err != nil {
		return nil, err
	}
	if activeBreak != nil {
		return nil, errors.BadRequest("already on break")
	}

	brk := &repository.ShiftBreak{
		ShiftID:   shift.ID,
		StartTime: s.now(),
	}
	if err := s.store.CreateBreak(ctx, brk); err != nil {
		return nil, err
	}

	s.publisher.PublishBreakStarted(ctx, brk, employeeID)

	return brk, nil
}

// EndBreak ends the open break on the employee's open shift.
func (s *AttendanceService) EndBreak(ctx context.Context, employeeID string) (*repository.ShiftBreak, error) {
	shift, err := s.store.GetActiveShiftByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, errors.BadRequest("not checked in")
	}

	activeBreak, err := s.store.GetActiveBreak(ctx, shift.ID)
	if err != nil {
		return nil, err
	}
	if activeBreak == nil {
		return nil, errors.BadRequest("not on break")
	}

	now := s.now()
	activeBreak.EndTime = &now
	if err := s.store.UpdateBreak(ctx, activeBreak); err != nil {
		return nil, err
	}

	s.publisher.PublishBreakEnded(ctx, activeBreak, employeeID)

	return activeBreak, nil
}

// ManualCheckIn records a check-in on behalf of an employee (manager entry).
func (s *AttendanceService) ManualCheckIn(ctx context.Context, employeeID string, checkInTime time.Time, organizationID *string, userID string) (*CheckInResult, error) {
	exists, err := s.store.CheckEmployeeExists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NotFound("employee")
	}

	shiftDate := engine.DayStart(checkInTime)
	existing, err := s.store.GetShiftByEmployeeAndDate(ctx, employeeID, shiftDate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.BadRequest("shift already exists for this date")
	}

	shift := &repository.Shift{
		EmployeeID:     employeeID,
		OrganizationID: organizationID,
		ShiftDate:      shiftDate,
		CheckIn:        checkInTime,
		Status:         repository.ShiftStatusActive,
		IsManualEntry:  true,
		CreatedBy:      &userID,
	}
	if err := s.store.CreateShift(ctx, shift); err != nil {
		return nil, err
	}

	_, grace := organizationLocale(ctx, s.schedules, s.logger, organizationID)
	day, err := s.resolver.WorkingDay(ctx, orgIDString(organizationID), checkInTime)
	if err != nil {
		s.logger.Warn().Err(err).Str("employee_id", employeeID).Msg("failed to resolve working day for arrival")
		day = engine.ResolvedWorkingDay{}
	}
	verdict := engine.EvaluateArrival(checkInTime, day, grace)

	s.publisher.PublishCheckedIn(ctx, shift)
	if verdict.IsLate {
		s.publisher.PublishLateArrival(ctx, shift, verdict)
	}

	return &CheckInResult{Shift: shift, Arrival: verdict}, nil
}

// ManualCheckOut closes a shift at a given time on behalf of an employee.
func (s *AttendanceService) ManualCheckOut(ctx context.Context, employeeID string, checkOutTime time.Time, userID string) (*CheckOutResult, error) {
	shift, err := s.store.GetActiveShiftByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		shiftDate := engine.DayStart(checkOutTime)
		shift, err = s.store.GetShiftByEmployeeAndDate(ctx, employeeID, shiftDate)
		if err != nil {
			return nil, err
		}
		if shift == nil {
			return nil, errors.NotFound("shift")
		}
	}

	if checkOutTime.Before(shift.CheckIn) {
		return nil, errors.BadRequest("check out time must be after check in time")
	}

	activeBreak, err := s.store.GetActiveBreak(ctx, shift.ID)
	if err != nil {
		return nil, err
	}
	if activeBreak != nil {
		end := checkOutTime
		activeBreak.EndTime = &end
		if err := s.store.UpdateBreak(ctx, activeBreak); err != nil {
			return nil, err
		}
		s.publisher.PublishBreakEnded(ctx, activeBreak, employeeID)
	}

	return s.completeShift(ctx, shift, checkOutTime, &userID)
}

// CorrectShift rewrites a shift's times, records the audit entry and
// recomputes the derived totals.
func (s *AttendanceService) CorrectShift(ctx context.Context, shiftID string, correctedCheckIn, correctedCheckOut *time.Time, reason, userID string) (*repository.Shift, error) {
	if reason == "" {
		return nil, errors.BadRequest("reason is required for corrections")
	}
	if correctedCheckIn == nil && correctedCheckOut == nil {
		return nil, errors.BadRequest("nothing to correct")
	}

	shift, err := s.store.GetShiftByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	corr := &repository.ShiftCorrection{
		EmployeeID:        shift.EmployeeID,
		ShiftID:           &shift.ID,
		CorrectionDate:    engine.DayStart(s.now()),
		OriginalCheckIn:   &shift.CheckIn,
		OriginalCheckOut:  shift.CheckOut,
		CorrectedCheckIn:  correctedCheckIn,
		CorrectedCheckOut: correctedCheckOut,
		Reason:            reason,
		CorrectedBy:       userID,
	}

	fields := map[string]any{}
	if correctedCheckIn != nil {
		shift.CheckIn = *correctedCheckIn
		fields["check_in"] = correctedCheckIn
	}
	if correctedCheckOut != nil {
		shift.CheckOut = correctedCheckOut
		fields["check_out"] = correctedCheckOut
	}
	if shift.CheckOut != nil && shift.CheckOut.Before(shift.CheckIn) {
		return nil, errors.BadRequest("check out time must be after check in time")
	}

	// Recompute totals when the shift is (still) closed.
	if shift.CheckOut != nil {
		breaks, err := s.store.ListBreaksForShift(ctx, shift.ID)
		if err != nil {
			return nil, err
		}
		breakMinutes := engine.TotalBreakMinutes(breakIntervals(breaks), legacyBreakText(shift), engine.BreaksCompleted, *shift.CheckOut)
		session := engine.ComputeSession(shift.CheckIn, *shift.CheckOut, breakMinutes)

		var dayForOvertime *engine.ResolvedWorkingDay
		if day, err := s.resolver.WorkingDay(ctx, orgIDString(shift.OrganizationID), shift.CheckIn); err == nil {
			dayForOvertime = &day
		}
		overtime := engine.Overtime(session.NetMinutes, dayForOvertime)

		shift.NetWorkMinutes = session.NetMinutes
		shift.TotalBreakMinutes = breakMinutes
		shift.OvertimeMinutes = overtime.OvertimeMinutes
	}

	shift.Status = repository.ShiftStatusCorrected
	shift.UpdatedBy = &userID

	if err := s.store.CreateCorrection(ctx, corr); err != nil {
		return nil, err
	}
	if err := s.store.UpdateShift(ctx, shift); err != nil {
		return nil, err
	}

	s.publisher.PublishShiftCorrected(ctx, corr, fields)

	return shift, nil
}

// GetEmployeeCorrections gets the correction audit trail for an employee.
func (s *AttendanceService) GetEmployeeCorrections(ctx context.Context, employeeID string, startDate, endDate time.Time) ([]*repository.ShiftCorrection, error) {
	exists, err := s.store.CheckEmployeeExists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NotFound("employee")
	}

	return s.store.ListCorrectionsForEmployee(ctx, employeeID, startDate, endDate)
}

// GetShift gets a shift by ID.
func (s *AttendanceService) GetShift(ctx context.Context, id string) (*repository.Shift, error) {
	return s.store.GetShiftByID(ctx, id)
}

// DeleteShift soft deletes a shift.
func (s *AttendanceService) DeleteShift(ctx context.Context, id string) error {
	return s.store.SoftDeleteShift(ctx, id)
}

// GetEmployeeStatus returns the live attendance state of an employee,
// including minutes worked so far today with any open shift counted up to
// this instant.
func (s *AttendanceService) GetEmployeeStatus(ctx context.Context, employeeID string) (*repository.EmployeeStatus, error) {
	exists, err := s.store.CheckEmployeeExists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NotFound("employee")
	}

	status := &repository.EmployeeStatus{
		EmployeeID: employeeID,
		Status:     "checked_out",
	}

	shift, err := s.store.GetActiveShiftByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if shift != nil {
		status.Status = "checked_in"
		status.ShiftID = &shift.ID
		status.CheckIn = &shift.CheckIn

		activeBreak, err := s.store.GetActiveBreak(ctx, shift.ID)
		if err != nil {
			return nil, err
		}
		if activeBreak != nil {
			status.Status = "on_break"
			status.BreakStart = &activeBreak.StartTime
		}
	}

	// Today's minutes: completed shifts carry persisted totals, an open
	// shift is valued as of now with any running break included.
	todayShifts, err := s.store.ListShiftsForEmployee(ctx, employeeID, engine.DayStart(now), now)
	if err != nil {
		return nil, err
	}
	for _, sh := range todayShifts {
		if sh.CheckOut != nil {
			status.TodayMinutes += sh.NetWorkMinutes
			continue
		}
		breaks, err := s.store.ListBreaksForShift(ctx, sh.ID)
		if err != nil {
			return nil, err
		}
		breakMinutes := engine.TotalBreakMinutes(breakIntervals(breaks), legacyBreakText(sh), engine.BreaksAsOfNow, now)
		session := engine.ComputeSession(sh.CheckIn, now, breakMinutes)
		status.TodayMinutes += session.NetMinutes
	}

	weekMinutes, err := s.store.GetWeekNetMinutes(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	status.WeekMinutes = weekMinutes

	return status, nil
}
