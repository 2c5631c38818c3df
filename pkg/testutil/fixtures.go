package testutil

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// EmployeeFixture represents test employee data
type EmployeeFixture struct {
	ID             string
	EmployeeNumber string
	FirstName      string
	LastName       string
	Email          string
	Status         string
	CreatedAt      time.Time
}

// OrganizationFixture represents test organization data
type OrganizationFixture struct {
	ID               string
	Name             string
	Timezone         string
	GraceMinutes     int
	DefaultOpenTime  string
	DefaultCloseTime string
	WorkingDays      json.RawMessage
	HolidayMode      bool
	CreatedAt        time.Time
}

// ShiftFixture represents test shift data
type ShiftFixture struct {
	ID                string
	EmployeeID        string
	OrganizationID    *string
	ShiftDate         time.Time
	CheckIn           time.Time
	CheckOut          *time.Time
	NetWorkMinutes    int
	TotalBreakMinutes int
	OvertimeMinutes   int
	Status            string
	CreatedAt         time.Time
}

// TerminalFixture represents test kiosk terminal data
type TerminalFixture struct {
	ID             string
	OrganizationID string
	Name           string
	Status         string
	PINHash        string
	CreatedAt      time.Time
}

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// Employee creates an employee fixture with defaults
func (f *FixtureFactory) Employee(opts ...func(*EmployeeFixture)) EmployeeFixture {
	seq := f.nextSeq()

	emp := EmployeeFixture{
		ID:             uuid.New().String(),
		EmployeeNumber: fmt.Sprintf("EMP-%04d", seq),
		FirstName:      fmt.Sprintf("Employee%d", seq),
		LastName:       "Test",
		Email:          fmt.Sprintf("employee%d@test.workpulse.io", seq),
		Status:         "active",
		CreatedAt:      time.Now(),
	}

	for _, opt := range opts {
		opt(&emp)
	}

	return emp
}

// WithEmployeeName sets the employee's first and last name
func WithEmployeeName(first, last string) func(*EmployeeFixture) {
	return func(e *EmployeeFixture) {
		e.FirstName = first
		e.LastName = last
	}
}

// WithEmployeeStatus sets the employee's status
func WithEmployeeStatus(status string) func(*EmployeeFixture) {
	return func(e *EmployeeFixture) {
		e.Status = status
	}
}

// Organization creates an organization fixture with defaults.
// Mon-Fri working days, 07:30-16:30 window, grace of 15 minutes.
func (f *FixtureFactory) Organization(opts ...func(*OrganizationFixture)) OrganizationFixture {
	seq := f.nextSeq()

	org := OrganizationFixture{
		ID:               uuid.New().String(),
		Name:             fmt.Sprintf("Site %d", seq),
		Timezone:         "Europe/Berlin",
		GraceMinutes:     15,
		DefaultOpenTime:  "07:30",
		DefaultCloseTime: "16:30",
		WorkingDays:      json.RawMessage(`{"monday":true,"tuesday":true,"wednesday":true,"thursday":true,"friday":true}`),
		CreatedAt:        time.Now(),
	}

	for _, opt := range opts {
		opt(&org)
	}

	return org
}

// WithTimezone sets the organization timezone
func WithTimezone(tz string) func(*OrganizationFixture) {
	return func(o *OrganizationFixture) {
		o.Timezone = tz
	}
}

// WithGraceMinutes sets the organization punctuality grace period
func WithGraceMinutes(minutes int) func(*OrganizationFixture) {
	return func(o *OrganizationFixture) {
		o.GraceMinutes = minutes
	}
}

// WithWorkingDays sets the organization weekly working day flags
func WithWorkingDays(raw string) func(*OrganizationFixture) {
	return func(o *OrganizationFixture) {
		o.WorkingDays = json.RawMessage(raw)
	}
}

// WithHolidayMode enables holiday mode on the organization
func WithHolidayMode() func(*OrganizationFixture) {
	return func(o *OrganizationFixture) {
		o.HolidayMode = true
	}
}

// Shift creates a completed 8-hour shift fixture for the given employee
func (f *FixtureFactory) Shift(employeeID string, opts ...func(*ShiftFixture)) ShiftFixture {
	checkIn := time.Date(2024, 3, 4, 7, 30, 0, 0, time.UTC)
	checkOut := checkIn.Add(8*time.Hour + 30*time.Minute)

	shift := ShiftFixture{
		ID:                uuid.New().String(),
		EmployeeID:        employeeID,
		ShiftDate:         time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		CheckIn:           checkIn,
		CheckOut:          &checkOut,
		NetWorkMinutes:    480,
		TotalBreakMinutes: 30,
		Status:            "completed",
		CreatedAt:         time.Now(),
	}

	for _, opt := range opts {
		opt(&shift)
	}

	return shift
}

// WithCheckIn sets the shift check-in and derives the shift date from it
func WithCheckIn(checkIn time.Time) func(*ShiftFixture) {
	return func(s *ShiftFixture) {
		s.CheckIn = checkIn
		s.ShiftDate = time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, checkIn.Location())
	}
}

// WithOpenShift clears the check-out, leaving the shift active
func WithOpenShift() func(*ShiftFixture) {
	return func(s *ShiftFixture) {
		s.CheckOut = nil
		s.NetWorkMinutes = 0
		s.TotalBreakMinutes = 0
		s.Status = "active"
	}
}

// Terminal creates a kiosk terminal fixture with defaults
func (f *FixtureFactory) Terminal(organizationID string, opts ...func(*TerminalFixture)) TerminalFixture {
	seq := f.nextSeq()

	terminal := TerminalFixture{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		Name:           fmt.Sprintf("Entrance Kiosk %d", seq),
		Status:         "active",
		CreatedAt:      time.Now(),
	}

	for _, opt := range opts {
		opt(&terminal)
	}

	return terminal
}

// WithRevokedTerminal marks the terminal as revoked
func WithRevokedTerminal() func(*TerminalFixture) {
	return func(t *TerminalFixture) {
		t.Status = "revoked"
	}
}

// HashPIN bcrypt-hashes a kiosk PIN with the minimum cost for fast tests
func HashPIN(pin string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	return string(hash)
}
