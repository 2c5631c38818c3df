package service

import (
	"context"
	"time"

	"github.com/workpulse/workpulse-backend/internal/attendance/engine"
	"github.com/workpulse/workpulse-backend/internal/attendance/repository"
	"github.com/workpulse/workpulse-backend/pkg/errors"
	"github.com/workpulse/workpulse-backend/pkg/logger"
)

// DailyReportRow is one employee's contribution to a daily report. Minutes
// are the slice attributed to the report date, so an overnight shift shows
// its pre-midnight minutes on one day and the rest on the next.
type DailyReportRow struct {
	ShiftID        string                 `json:"shift_id"`
	EmployeeID     string                 `json:"employee_id"`
	EmployeeName   string                 `json:"employee_name,omitempty"`
	CheckIn        time.Time              `json:"check_in"`
	CheckOut       *time.Time             `json:"check_out,omitempty"`
	Status         string                 `json:"status"`
	NetWorkMinutes int                    `json:"net_work_minutes"`
	NetWorkText    string                 `json:"net_work_text"`
	BreakMinutes   int                    `json:"break_minutes"`
	Arrival        *engine.ArrivalVerdict `json:"arrival,omitempty"`
}

// DailyReport aggregates all attendance for one calendar day.
type DailyReport struct {
	Date            time.Time        `json:"date"`
	Rows            []DailyReportRow `json:"rows"`
	TotalNetMinutes int              `json:"total_net_minutes"`
	TotalNetText    string           `json:"total_net_text"`
	LateCount       int              `json:"late_count"`
}

// PeriodSummary aggregates an employee's attendance over a date range.
type PeriodSummary struct {
	EmployeeID           string              `json:"employee_id"`
	StartDate            time.Time           `json:"start_date"`
	EndDate              time.Time           `json:"end_date"`
	DaysWorked           int                 `json:"days_worked"`
	TotalNetMinutes      int                 `json:"total_net_minutes"`
	TotalNetText         string              `json:"total_net_text"`
	TotalBreakMinutes    int                 `json:"total_break_minutes"`
	TotalOvertimeMinutes int                 `json:"total_overtime_minutes"`
	AverageDailyHours    float64             `json:"average_daily_hours"`
	AverageCheckIn       string              `json:"average_check_in"`
	AverageCheckOut      string              `json:"average_check_out"`
	OnTimeCount          int                 `json:"on_time_count"`
	LateCount            int                 `json:"late_count"`
	VeryLateCount        int                 `json:"very_late_count"`
	ExtremelyLateCount   int                 `json:"extremely_late_count"`
	Shifts               []*repository.Shift `json:"shifts"`
}

// ReportService derives attendance reports. Everything here is recomputed
// from stored shifts on each call; nothing report-shaped is persisted.
type ReportService struct {
	store     ShiftStore
	schedules engine.ScheduleSource
	resolver  *engine.Resolver
	logger    *logger.Logger
	now       func() time.Time
}

// NewReportService creates a new report service
func NewReportService(
	store ShiftStore,
	schedules engine.ScheduleSource,
	resolver *engine.Resolver,
	log *logger.Logger,
) *ReportService {
	return &ReportService{
		store:     store,
		schedules: schedules,
		resolver:  resolver,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock injects the clock. Tests use this to pin "now".
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// DailyReport builds the attendance report for one calendar day. Shifts
// that span midnight contribute only the minutes that fall on the date.
func (s *ReportService) DailyReport(ctx context.Context, date time.Time) (*DailyReport, error) {
	dayStart := engine.DayStart(date)

	shifts, err := s.store.ListShiftsOverlappingDate(ctx, dayStart)
	if err != nil {
		return nil, err
	}

	now := s.now()
	report := &DailyReport{
		Date: dayStart,
		Rows: make([]DailyReportRow, 0, len(shifts)),
	}

	for _, shift := range shifts {
		breaks, err := s.store.ListBreaksForShift(ctx, shift.ID)
		if err != nil {
			return nil, err
		}
		intervals := breakIntervals(breaks)

		segments := engine.SplitShift(shift.CheckIn, shift.CheckOut, intervals, legacyBreakText(shift), now)
		dayMinutes := 0
		for _, seg := range segments {
			if engine.SameDate(seg.Date, dayStart) {
				dayMinutes = seg.NetWorkMinutes
				break
			}
		}

		mode := engine.BreaksCompleted
		asOf := now
		if shift.CheckOut != nil {
			asOf = *shift.CheckOut
		} else {
			mode = engine.BreaksAsOfNow
		}
		breakMinutes := engine.TotalBreakMinutes(intervals, legacyBreakText(shift), mode, asOf)

		row := DailyReportRow{
			ShiftID:        shift.ID,
			EmployeeID:     shift.EmployeeID,
			CheckIn:        shift.CheckIn,
			CheckOut:       shift.CheckOut,
			Status:         shift.Status,
			NetWorkMinutes: dayMinutes,
			NetWorkText:    engine.FormatDuration(dayMinutes),
			BreakMinutes:   breakMinutes,
		}
		if shift.EmployeeName != nil {
			row.EmployeeName = *shift.EmployeeName
		}

		// Punctuality is graded only on the day the shift started; the
		// spillover row of an overnight shift is not a second arrival.
		if engine.SameDate(shift.CheckIn, dayStart) {
			if verdict := s.gradeArrival(ctx, shift); verdict != nil {
				row.Arrival = verdict
				if verdict.IsLate {
					report.LateCount++
				}
			}
		}

		report.TotalNetMinutes += dayMinutes
		report.Rows = append(report.Rows, row)
	}

	report.TotalNetText = engine.FormatDuration(report.TotalNetMinutes)

	return report, nil
}

// PeriodSummary builds an employee's summary over an inclusive date range.
func (s *ReportService) PeriodSummary(ctx context.Context, employeeID string, startDate, endDate time.Time) (*PeriodSummary, error) {
	exists, err := s.store.CheckEmployeeExists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NotFound("employee")
	}

	shifts, err := s.store.ListShiftsForEmployee(ctx, employeeID, engine.DayStart(startDate), engine.DayStart(endDate))
	if err != nil {
		return nil, err
	}

	summary := &PeriodSummary{
		EmployeeID: employeeID,
		StartDate:  engine.DayStart(startDate),
		EndDate:    engine.DayStart(endDate),
		Shifts:     shifts,
	}

	var checkIns, checkOuts []time.Time
	daysWorked := map[time.Time]bool{}

	for _, shift := range shifts {
		summary.TotalNetMinutes += shift.NetWorkMinutes
		summary.TotalBreakMinutes += shift.TotalBreakMinutes
		summary.TotalOvertimeMinutes += shift.OvertimeMinutes
		daysWorked[engine.DayStart(shift.ShiftDate)] = true

		checkIns = append(checkIns, shift.CheckIn)
		if shift.CheckOut != nil {
			checkOuts = append(checkOuts, *shift.CheckOut)
		}

		verdict := s.gradeArrival(ctx, shift)
		if verdict == nil {
			continue
		}
		switch verdict.Tier {
		case engine.TierLate:
			summary.LateCount++
		case engine.TierVeryLate:
			summary.VeryLateCount++
		case engine.TierExtremelyLate:
			summary.ExtremelyLateCount++
		default:
			summary.OnTimeCount++
		}
	}

	summary.DaysWorked = len(daysWorked)
	summary.TotalNetText = engine.FormatDuration(summary.TotalNetMinutes)
	if summary.DaysWorked > 0 {
		summary.AverageDailyHours = float64(summary.TotalNetMinutes) / 60 / float64(summary.DaysWorked)
	}
	summary.AverageCheckIn = engine.AverageTimeOfDay(checkIns)
	summary.AverageCheckOut = engine.AverageTimeOfDay(checkOuts)

	return summary, nil
}

// ListShiftsByDate lists shifts that started on a date, without the
// overnight attribution a daily report does.
func (s *ReportService) ListShiftsByDate(ctx context.Context, date time.Time) ([]*repository.Shift, error) {
	return s.store.ListShiftsByDate(ctx, engine.DayStart(date))
}

// gradeArrival grades a shift's check-in against the schedule. Returns nil
// when the working day cannot be resolved; a report should not fail over a
// broken schedule.
func (s *ReportService) gradeArrival(ctx context.Context, shift *repository.Shift) *engine.ArrivalVerdict {
	day, err := s.resolver.WorkingDay(ctx, orgIDString(shift.OrganizationID), shift.CheckIn)
	if err != nil {
		s.logger.Warn().Err(err).Str("shift_id", shift.ID).Msg("failed to resolve working day for report")
		return nil
	}
	_, grace := organizationLocale(ctx, s.schedules, s.logger, shift.OrganizationID)
	verdict := engine.EvaluateArrival(shift.CheckIn, day, grace)
	return &verdict
}
