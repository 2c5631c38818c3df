package events

import (
	"context"

	"github.com/workpulse/workpulse-backend/internal/attendance/engine"
	"github.com/workpulse/workpulse-backend/internal/attendance/repository"
	"github.com/workpulse/workpulse-backend/pkg/logger"
	"github.com/workpulse/workpulse-backend/pkg/messaging"
)

// AttendanceEventPublisher publishes attendance-related events
type AttendanceEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewAttendanceEventPublisher creates a new attendance event publisher
func NewAttendanceEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*AttendanceEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeAttendanceEvents, "attendance-service", log)
	if err != nil {
		return nil, err
	}

	return &AttendanceEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

func orgID(shift *repository.Shift) string {
	if shift.OrganizationID != nil {
		return *shift.OrganizationID
	}
	return ""
}

// PublishCheckedIn publishes a shift checked-in event
func (p *AttendanceEventPublisher) PublishCheckedIn(ctx context.Context, shift *repository.Shift) {
	data := messaging.ShiftCheckedInEvent{
		ShiftID:        shift.ID,
		EmployeeID:     shift.EmployeeID,
		OrganizationID: orgID(shift),
		CheckInTime:    shift.CheckIn,
		IsManual:       shift.IsManualEntry,
	}
	if shift.TerminalID != nil {
		data.TerminalID = *shift.TerminalID
	}

	if err := p.publisher.Publish(ctx, messaging.EventShiftCheckedIn, data); err != nil {
		p.logger.Error().Err(err).Str("shift_id", shift.ID).Msg("failed to publish checked-in event")
	}
}

// PublishCheckedOut publishes a shift checked-out event
func (p *AttendanceEventPublisher) PublishCheckedOut(ctx context.Context, shift *repository.Shift) {
	if shift.CheckOut == nil {
		return
	}

	data := messaging.ShiftCheckedOutEvent{
		ShiftID:           shift.ID,
		EmployeeID:        shift.EmployeeID,
		OrganizationID:    orgID(shift),
		CheckInTime:       shift.CheckIn,
		CheckOutTime:      *shift.CheckOut,
		NetWorkMinutes:    shift.NetWorkMinutes,
		TotalBreakMinutes: shift.TotalBreakMinutes,
		OvertimeMinutes:   shift.OvertimeMinutes,
		IsManual:          shift.IsManualEntry,
	}

	if err := p.publisher.Publish(ctx, messaging.EventShiftCheckedOut, data); err != nil {
		p.logger.Error().Err(err).Str("shift_id", shift.ID).Msg("failed to publish checked-out event")
	}
}

// PublishShiftCorrected publishes a shift corrected event
func (p *AttendanceEventPublisher) PublishShiftCorrected(ctx context.Context, corr *repository.ShiftCorrection, fields map[string]any) {
	shiftID := ""
	if corr.ShiftID != nil {
		shiftID = *corr.ShiftID
	}

	data := messaging.ShiftCorrectedEvent{
		ShiftID:     shiftID,
		EmployeeID:  corr.EmployeeID,
		CorrectedBy: corr.CorrectedBy,
		Fields:      fields,
		Reason:      corr.Reason,
	}

	if err := p.publisher.Publish(ctx, messaging.EventShiftCorrected, data); err != nil {
		p.logger.Error().Err(err).Str("shift_id", shiftID).Msg("failed to publish shift corrected event")
	}
}

// PublishBreakStarted publishes a break started event
func (p *AttendanceEventPublisher) PublishBreakStarted(ctx context.Context, brk *repository.ShiftBreak, employeeID string) {
	data := messaging.BreakStartedEvent{
		BreakID:    brk.ID,
		ShiftID:    brk.ShiftID,
		EmployeeID: employeeID,
		StartTime:  brk.StartTime,
	}

	if err := p.publisher.Publish(ctx, messaging.EventBreakStarted, data); err != nil {
		p.logger.Error().Err(err).Str("break_id", brk.ID).Msg("failed to publish break started event")
	}
}

// PublishBreakEnded publishes a break ended event
func (p *AttendanceEventPublisher) PublishBreakEnded(ctx context.Context, brk *repository.ShiftBreak, employeeID string) {
	if brk.EndTime == nil {
		return
	}

	data := messaging.BreakEndedEvent{
		BreakID:         brk.ID,
		ShiftID:         brk.ShiftID,
		EmployeeID:      employeeID,
		StartTime:       brk.StartTime,
		EndTime:         *brk.EndTime,
		DurationMinutes: int(brk.EndTime.Sub(brk.StartTime).Minutes()),
	}

	if err := p.publisher.Publish(ctx, messaging.EventBreakEnded, data); err != nil {
		p.logger.Error().Err(err).Str("break_id", brk.ID).Msg("failed to publish break ended event")
	}
}

// PublishLateArrival publishes a late arrival event
func (p *AttendanceEventPublisher) PublishLateArrival(ctx context.Context, shift *repository.Shift, verdict engine.ArrivalVerdict) {
	data := messaging.LateArrivalEvent{
		ShiftID:     shift.ID,
		EmployeeID:  shift.EmployeeID,
		CheckInTime: shift.CheckIn,
		MinutesLate: verdict.MinutesLate,
		Tier:        string(verdict.Tier),
	}

	if err := p.publisher.Publish(ctx, messaging.EventLateArrival, data); err != nil {
		p.logger.Error().Err(err).Str("shift_id", shift.ID).Msg("failed to publish late arrival event")
	}
}

// PublishOvertimeRecorded publishes an overtime recorded event
func (p *AttendanceEventPublisher) PublishOvertimeRecorded(ctx context.Context, shift *repository.Shift, expectedMinutes int) {
	data := messaging.OvertimeRecordedEvent{
		ShiftID:         shift.ID,
		EmployeeID:      shift.EmployeeID,
		OvertimeMinutes: shift.OvertimeMinutes,
		ExpectedMinutes: expectedMinutes,
	}

	if err := p.publisher.Publish(ctx, messaging.EventOvertimeRecorded, data); err != nil {
		p.logger.Error().Err(err).Str("shift_id", shift.ID).Msg("failed to publish overtime event")
	}
}
