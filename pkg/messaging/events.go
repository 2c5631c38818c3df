package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// Attendance events
	EventShiftCheckedIn   = "attendance.shift.checked_in"
	EventShiftCheckedOut  = "attendance.shift.checked_out"
	EventShiftCorrected   = "attendance.shift.corrected"
	EventBreakStarted     = "attendance.break.started"
	EventBreakEnded       = "attendance.break.ended"
	EventLateArrival      = "attendance.arrival.late"
	EventOvertimeRecorded = "attendance.overtime.recorded"

	// Organization events
	EventScheduleUpdated    = "organization.schedule.updated"
	EventHolidayModeChanged = "organization.holiday_mode.changed"
	EventSpecialDateSet     = "organization.special_date.set"

	// Kiosk events
	EventTerminalRegistered = "kiosk.terminal.registered"
	EventTerminalRevoked    = "kiosk.terminal.revoked"

	// Staff events (published by the staff service, consumed here to keep
	// the employee read model current)
	EventEmployeeCreated = "staff.employee.created"
	EventEmployeeUpdated = "staff.employee.updated"
	EventEmployeeDeleted = "staff.employee.deleted"
)

// Exchange names
const (
	ExchangeAttendanceEvents   = "attendance.events"
	ExchangeOrganizationEvents = "organization.events"
	ExchangeKioskEvents        = "kiosk.events"
	ExchangeStaffEvents        = "staff.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Attendance Events

// ShiftCheckedInEvent is published when an employee checks in
type ShiftCheckedInEvent struct {
	ShiftID        string    `json:"shift_id"`
	EmployeeID     string    `json:"employee_id"`
	OrganizationID string    `json:"organization_id"`
	CheckInTime    time.Time `json:"check_in_time"`
	TerminalID     string    `json:"terminal_id,omitempty"`
	IsManual       bool      `json:"is_manual"`
}

// ShiftCheckedOutEvent is published when an employee checks out
type ShiftCheckedOutEvent struct {
	ShiftID           string    `json:"shift_id"`
	EmployeeID        string    `json:"employee_id"`
	OrganizationID    string    `json:"organization_id"`
	CheckInTime       time.Time `json:"check_in_time"`
	CheckOutTime      time.Time `json:"check_out_time"`
	NetWorkMinutes    int       `json:"net_work_minutes"`
	TotalBreakMinutes int       `json:"total_break_minutes"`
	OvertimeMinutes   int       `json:"overtime_minutes"`
	IsManual          bool      `json:"is_manual"`
}

// ShiftCorrectedEvent is published when a shift record is corrected after the fact
type ShiftCorrectedEvent struct {
	ShiftID     string         `json:"shift_id"`
	EmployeeID  string         `json:"employee_id"`
	CorrectedBy string         `json:"corrected_by"`
	Fields      map[string]any `json:"fields"`
	Reason      string         `json:"reason,omitempty"`
}

// BreakStartedEvent is published when an employee starts a break
type BreakStartedEvent struct {
	BreakID    string    `json:"break_id"`
	ShiftID    string    `json:"shift_id"`
	EmployeeID string    `json:"employee_id"`
	StartTime  time.Time `json:"start_time"`
}

// BreakEndedEvent is published when an employee ends a break
type BreakEndedEvent struct {
	BreakID         string    `json:"break_id"`
	ShiftID         string    `json:"shift_id"`
	EmployeeID      string    `json:"employee_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

// LateArrivalEvent is published when a check-in lands past the grace period
type LateArrivalEvent struct {
	ShiftID     string    `json:"shift_id"`
	EmployeeID  string    `json:"employee_id"`
	CheckInTime time.Time `json:"check_in_time"`
	MinutesLate int       `json:"minutes_late"`
	Tier        string    `json:"tier"`
}

// OvertimeRecordedEvent is published when a completed shift exceeds the expected minutes
type OvertimeRecordedEvent struct {
	ShiftID         string `json:"shift_id"`
	EmployeeID      string `json:"employee_id"`
	OvertimeMinutes int    `json:"overtime_minutes"`
	ExpectedMinutes int    `json:"expected_minutes"`
}

// Organization Events

// ScheduleUpdatedEvent is published when an organization's working hours change.
// Consumers use it to invalidate cached schedule resolutions.
type ScheduleUpdatedEvent struct {
	OrganizationID string `json:"organization_id"`
	UpdatedBy      string `json:"updated_by"`
	TenantID       string `json:"tenant_id"`
	TenantSchema   string `json:"tenant_schema"`
}

// HolidayModeChangedEvent is published when holiday mode is toggled
type HolidayModeChangedEvent struct {
	OrganizationID string     `json:"organization_id"`
	Enabled        bool       `json:"enabled"`
	Until          *time.Time `json:"until,omitempty"`
}

// SpecialDateSetEvent is published when a date-specific schedule override is set
type SpecialDateSetEvent struct {
	OrganizationID string    `json:"organization_id"`
	Date           time.Time `json:"date"`
	OpenTime       string    `json:"open_time"`
	CloseTime      string    `json:"close_time"`
}

// Kiosk Events

// TerminalRegisteredEvent is published when a kiosk terminal is registered
type TerminalRegisteredEvent struct {
	TerminalID     string `json:"terminal_id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	RegisteredBy   string `json:"registered_by"`
}

// TerminalRevokedEvent is published when a kiosk terminal is revoked
type TerminalRevokedEvent struct {
	TerminalID string `json:"terminal_id"`
	RevokedBy  string `json:"revoked_by"`
	Reason     string `json:"reason,omitempty"`
}

// Staff Events

// EmployeeCreatedEvent is received when the staff service creates an employee
type EmployeeCreatedEvent struct {
	EmployeeID     string `json:"employee_id"`
	EmployeeNumber string `json:"employee_number"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Status         string `json:"status"`
	TenantID       string `json:"tenant_id"`
	TenantSlug     string `json:"tenant_slug"`
	TenantSchema   string `json:"tenant_schema"`
}

// EmployeeUpdatedEvent is received when the staff service updates an employee
type EmployeeUpdatedEvent struct {
	EmployeeID     string `json:"employee_id"`
	EmployeeNumber string `json:"employee_number"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Status         string `json:"status"`
	TenantID       string `json:"tenant_id"`
	TenantSlug     string `json:"tenant_slug"`
	TenantSchema   string `json:"tenant_schema"`
}

// EmployeeDeletedEvent is received when the staff service deletes an employee
type EmployeeDeletedEvent struct {
	EmployeeID   string `json:"employee_id"`
	DeletedBy    string `json:"deleted_by,omitempty"`
	TenantID     string `json:"tenant_id"`
	TenantSlug   string `json:"tenant_slug"`
	TenantSchema string `json:"tenant_schema"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
