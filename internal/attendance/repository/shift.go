package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/workpulse/workpulse-backend/pkg/database"
	"github.com/workpulse/workpulse-backend/pkg/errors"
	"github.com/workpulse/workpulse-backend/pkg/tenant"
)

// Shift represents a single attendance record from check-in to check-out.
// CheckOut is nil while the shift is open. LegacyBreakText carries the
// free-text break duration imported from the old attendance system; rows
// created by this service use structured shift_breaks instead.
type Shift struct {
	ID                string     `db:"id" json:"id"`
	EmployeeID        string     `db:"employee_id" json:"employee_id"`
	OrganizationID    *string    `db:"organization_id" json:"organization_id,omitempty"`
	ShiftDate         time.Time  `db:"shift_date" json:"shift_date"`
	CheckIn           time.Time  `db:"check_in" json:"check_in"`
	CheckOut          *time.Time `db:"check_out" json:"check_out,omitempty"`
	LegacyBreakText   *string    `db:"legacy_break_text" json:"legacy_break_text,omitempty"`
	NetWorkMinutes    int        `db:"net_work_minutes" json:"net_work_minutes"`
	TotalBreakMinutes int        `db:"total_break_minutes" json:"total_break_minutes"`
	OvertimeMinutes   int        `db:"overtime_minutes" json:"overtime_minutes"`
	Status            string     `db:"status" json:"status"` // active, completed, corrected
	Notes             *string    `db:"notes" json:"notes,omitempty"`
	IsManualEntry     bool       `db:"is_manual_entry" json:"is_manual_entry"`
	TerminalID        *string    `db:"terminal_id" json:"terminal_id,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt         *time.Time `db:"deleted_at" json:"-"`
	CreatedBy         *string    `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy         *string    `db:"updated_by" json:"updated_by,omitempty"`

	// Joined fields (populated by specific queries)
	EmployeeName *string `db:"employee_name" json:"employee_name,omitempty"`
}

// ShiftBreak represents a structured break interval within a shift
type ShiftBreak struct {
	ID        string     `db:"id" json:"id"`
	ShiftID   string     `db:"shift_id" json:"shift_id"`
	StartTime time.Time  `db:"start_time" json:"start_time"`
	EndTime   *time.Time `db:"end_time" json:"end_time,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// ShiftCorrection is the audit trail entry for manager corrections
type ShiftCorrection struct {
	ID                string     `db:"id" json:"id"`
	EmployeeID        string     `db:"employee_id" json:"employee_id"`
	ShiftID           *string    `db:"shift_id" json:"shift_id,omitempty"`
	CorrectionDate    time.Time  `db:"correction_date" json:"correction_date"`
	OriginalCheckIn   *time.Time `db:"original_check_in" json:"original_check_in,omitempty"`
	OriginalCheckOut  *time.Time `db:"original_check_out" json:"original_check_out,omitempty"`
	CorrectedCheckIn  *time.Time `db:"corrected_check_in" json:"corrected_check_in,omitempty"`
	CorrectedCheckOut *time.Time `db:"corrected_check_out" json:"corrected_check_out,omitempty"`
	Reason            string     `db:"reason" json:"reason"`
	CorrectedBy       string     `db:"corrected_by" json:"corrected_by"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt         *time.Time `db:"deleted_at" json:"-"`

	// Joined fields
	EmployeeName *string `db:"employee_name" json:"employee_name,omitempty"`
}

// Shift status values
const (
	ShiftStatusActive    = "active"
	ShiftStatusCompleted = "completed"
	ShiftStatusCorrected = "corrected"
)

// EmployeeStatus represents the live attendance state of an employee
type EmployeeStatus struct {
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name,omitempty"`
	Status       string     `json:"status"` // checked_out, checked_in, on_break
	ShiftID      *string    `json:"shift_id,omitempty"`
	CheckIn      *time.Time `json:"check_in,omitempty"`
	BreakStart   *time.Time `json:"break_start,omitempty"`
	TodayMinutes int        `json:"today_minutes"`
	WeekMinutes  int        `json:"week_minutes"`
}

// ShiftRepository handles attendance persistence
type ShiftRepository struct {
	db *database.DB
}

// NewShiftRepository creates a new shift repository
func NewShiftRepository(db *database.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// ============================================================================
// SHIFTS
// ============================================================================

// CreateShift creates a new shift record
// TENANT-ISOLATED: Inserts into the tenant's schema
func (r *ShiftRepository) CreateShift(ctx context.Context, shift *Shift) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	if shift.ID == "" {
		shift.ID = uuid.New().String()
	}
	if shift.Status == "" {
		shift.Status = ShiftStatusActive
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO shifts (
				id, employee_id, organization_id, shift_date, check_in, check_out,
				legacy_break_text, net_work_minutes, total_break_minutes, overtime_minutes,
				status, notes, is_manual_entry, terminal_id, created_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING created_at, updated_at
		`
		return r.db.QueryRowxContext(ctx, query,
			shift.ID, shift.EmployeeID, shift.OrganizationID, shift.ShiftDate, shift.CheckIn, shift.CheckOut,
			shift.LegacyBreakText, shift.NetWorkMinutes, shift.TotalBreakMinutes, shift.OvertimeMinutes,
			shift.Status, shift.Notes, shift.IsManualEntry, shift.TerminalID, shift.CreatedBy,
		).Scan(&shift.CreatedAt, &shift.UpdatedAt)
	})
}

// GetShiftByID gets a shift by ID
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ShiftRepository) GetShiftByID(ctx context.Context, id string) (*Shift, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var shift Shift

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT s.id, s.employee_id, s.organization_id, s.shift_date, s.check_in, s.check_out,
			       s.legacy_break_text, s.net_work_minutes, s.total_break_minutes, s.overtime_minutes,
			       s.status, s.notes, s.is_manual_entry, s.terminal_id,
			       s.created_at, s.updated_at, s.created_by, s.updated_by,
			       CONCAT(e.first_name, ' ', e.last_name) as employee_name
			FROM shifts s
			LEFT JOIN employees e ON s.employee_id = e.id
			WHERE s.id = $1 AND s.deleted_at IS NULL
		`
		return r.db.GetContext(ctx, &shift, query, id)
	})

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("shift")
	}
	if err != nil {
		return nil, err
	}

	return &shift, nil
}

// GetActiveShiftByEmployee gets the open (not checked out) shift for an employee
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ShiftRepository) GetActiveShiftByEmployee(ctx context.Context, employeeID string) (*Shift, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var shift Shift

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_id, organization_id, shift_date, check_in, check_out,
			       legacy_break_text, net_work_minutes, total_break_minutes, overtime_minutes,
			       status, notes, is_manual_entry, terminal_id,
			       created_at, updated_at, created_by, updated_by
			FROM shifts
			WHERE employee_id = $1 AND check_out IS NULL AND deleted_at IS NULL
			ORDER BY check_in DESC
			LIMIT 1
		`
		return r.db.GetContext(ctx, &shift, query, employeeID)
	})

	if err == sql.ErrNoRows {
		return nil, nil // No open shift is not an error
	}
	if err != nil {
		return nil, err
	}

	return &shift, nil
}

// GetShiftByEmployeeAndDate gets a shift for an employee on a specific date
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ShiftRepository) GetShiftByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Shift, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var shift Shift

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_id, organization_id, shift_date, check_in, check_out,
			       legacy_break_text, net_work_minutes, total_break_minutes, overtime_minutes,
			       status, notes, is_manual_entry, terminal_id,
			       created_at, updated_at, created_by, updated_by
			FROM shifts
			WHERE employee_id = $1 AND shift_date = $2 AND deleted_at IS NULL
			ORDER BY check_in DESC
			LIMIT 1
		`
		return r.db.GetContext(ctx, &shift, query, employeeID, date)
	})

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &shift, nil
}

// UpdateShift updates a shift record
// TENANT-ISOLATED: Updates only in the tenant's schema
func (r *ShiftRepository) UpdateShift(ctx context.Context, shift *Shift) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			UPDATE shifts SET
				check_in = $2, check_out = $3, net_work_minutes = $4, total_break_minutes = $5,
				overtime_minutes = $6, status = $7, notes = $8, is_manual_entry = $9, updated_by = $10
			WHERE id = $1 AND deleted_at IS NULL
		`
		result, err := r.db.ExecContext(ctx, query,
			shift.ID, shift.CheckIn, shift.CheckOut, shift.NetWorkMinutes, shift.TotalBreakMinutes,
			shift.OvertimeMinutes, shift.Status, shift.Notes, shift.IsManualEntry, shift.UpdatedBy,
		)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("shift")
		}

		return nil
	})
}

// SoftDeleteShift soft deletes a shift
// TENANT-ISOLATED: Soft deletes only in the tenant's schema
func (r *ShiftRepository) SoftDeleteShift(ctx context.Context, id string) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `UPDATE shifts SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
		result, err := r.db.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("shift")
		}

		return nil
	})
}

// ListShiftsByDate gets all shifts starting on a specific date
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ShiftRepository) ListShiftsByDate(ctx context.Context, date time.Time) ([]*Shift, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var shifts []*Shift

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT s.id, s.employee_id, s.organization_id, s.shift_date, s.check_in, s.check_out,
			       s.legacy_break_text, s.net_work_minutes, s.total_break_minutes, s.overtime_minutes,
			       s.status, s.notes, s.is_manual_entry, s.terminal_id,
			       s.created_at, s.updated_at, s.created_by, s.updated_by,
			       CONCAT(e.first_name, ' ', e.last_name) as employee_name
			FROM shifts s
			LEFT JOIN employees e ON s.employee_id = e.id
			WHERE s.shift_date = $1 AND s.deleted_at IS NULL
			ORDER BY s.check_in
		`
		return r.db.SelectContext(ctx, &shifts, query, date)
	})

	if err != nil {
		return nil, err
	}

	return shifts, nil
}

// ListShiftsOverlappingDate gets shifts that could contribute minutes to a
// given calendar day, including overnight shifts that started the day before.
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ShiftRepository) ListShiftsOverlappingDate(ctx context.Context, date time.Time) ([]*Shift, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var shifts []*Shift

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT s.id, s.employee_id, s.organization_id, s.shift_date, s.check_in, s.check_out,
			       s.legacy_break_text, s.net_work_minutes, s.total_break_minutes, s.overtime_minutes,
			       s.status, s.notes, s.is_manual_entry, s.terminal_id,
			       s.created_at, s.updated_at, s.created_by, s.updated_by,
			       CONCAT(e.first_name, ' ', e.last_name) as employee_name
			FROM shifts s
			LEFT JOIN employees e ON s.employee_id = e.id
			WHERE s.check_in < $2
			  AND (s.check_out IS NULL OR s.check_out > $1)
			  AND s.deleted_at IS NULL
			ORDER BY s.check_in
		`
		return r.db.SelectContext(ctx, &shifts, query, dayStart, dayEnd)
	})

	if err != nil {
		return nil, err
	}

	return shifts, nil
}

// ListShiftsForEmployee gets shifts for an employee within a date range
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ShiftRepository) ListShiftsForEmployee(ctx context.Context, employeeID string, startDate, endDate time.Time) ([]*Shift, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var shifts []*Shift

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_id, organization_id, shift_date, check_in, check_out,
			       legacy_break_text, net_work_minutes, total_break_minutes, overtime_minutes,
			       status, notes, is_manual_entry, terminal_id,
			       created_at, updated_at, created_by, updated_by
			FROM shifts
			WHERE employee_id = $1 AND shift_date >= $2 AND shift_date <= $3 AND deleted_at IS NULL
			ORDER BY shift_date, check_in
		`
		return r.db.SelectContext(ctx, &shifts, query, employeeID, startDate, endDate)
	})

	if err != nil {
		return nil, err
	}

	return shifts, nil
}

// ============================================================================
// BREAKS
// ============================================================================

// CreateBreak creates a new break interval
// TENANT-ISOLATED: Inserts into the tenant's schema
func (r *ShiftRepository) CreateBreak(ctx context.Context, brk *ShiftBreak) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	if brk.ID == "" {
		brk.ID = uuid.New().String()
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO shift_breaks (id, shift_id, start_time, end_time)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at, updated_at
		`
		return r.db.QueryRowxContext(ctx, query,
			brk.ID, brk.ShiftID, brk.StartTime, brk.EndTime,
		).Scan(&brk.CreatedAt, &brk.UpdatedAt)
	})
}

// GetActiveBreak gets the open (not ended) break for a shift
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ShiftRepository) GetActiveBreak(ctx context.Context, shiftID string) (*ShiftBreak, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var brk ShiftBreak

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, shift_id, start_time, end_time, created_at, updated_at
			FROM shift_breaks
			WHERE shift_id = $1 AND end_time IS NULL
			ORDER BY start_time DESC
			LIMIT 1
		`
		return r.db.GetContext(ctx, &brk, query, shiftID)
	})

	if err == sql.ErrNoRows {
		return nil, nil // No open break is not an error
	}
	if err != nil {
		return nil, err
	}

	return &brk, nil
}

// UpdateBreak updates a break interval
// TENANT-ISOLATED: Updates only in the tenant's schema
func (r *ShiftRepository) UpdateBreak(ctx context.Context, brk *ShiftBreak) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			UPDATE shift_breaks SET end_time = $2
			WHERE id = $1
		`
		result, err := r.db.ExecContext(ctx, query, brk.ID, brk.EndTime)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("shift_break")
		}

		return nil
	})
}

// ListBreaksForShift gets all break intervals for a shift, oldest first
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ShiftRepository) ListBreaksForShift(ctx context.Context, shiftID string) ([]*ShiftBreak, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var breaks []*ShiftBreak

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, shift_id, start_time, end_time, created_at, updated_at
			FROM shift_breaks
			WHERE shift_id = $1
			ORDER BY start_time
		`
		return r.db.SelectContext(ctx, &breaks, query, shiftID)
	})

	if err != nil {
		return nil, err
	}

	return breaks, nil
}

// ============================================================================
// CORRECTIONS
// ============================================================================

// CreateCorrection creates a new shift correction
// TENANT-ISOLATED: Inserts into the tenant's schema
func (r *ShiftRepository) CreateCorrection(ctx context.Context, corr *ShiftCorrection) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	if corr.ID == "" {
		corr.ID = uuid.New().String()
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO shift_corrections (
				id, employee_id, shift_id, correction_date,
				original_check_in, original_check_out, corrected_check_in, corrected_check_out,
				reason, corrected_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at, updated_at
		`
		return r.db.QueryRowxContext(ctx, query,
			corr.ID, corr.EmployeeID, corr.ShiftID, corr.CorrectionDate,
			corr.OriginalCheckIn, corr.OriginalCheckOut, corr.CorrectedCheckIn, corr.CorrectedCheckOut,
			corr.Reason, corr.CorrectedBy,
		).Scan(&corr.CreatedAt, &corr.UpdatedAt)
	})
}

// ListCorrectionsForEmployee gets corrections for an employee within a date range
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ShiftRepository) ListCorrectionsForEmployee(ctx context.Context, employeeID string, startDate, endDate time.Time) ([]*ShiftCorrection, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var corrections []*ShiftCorrection

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT sc.id, sc.employee_id, sc.shift_id, sc.correction_date,
			       sc.original_check_in, sc.original_check_out, sc.corrected_check_in, sc.corrected_check_out,
			       sc.reason, sc.corrected_by, sc.created_at, sc.updated_at,
			       CONCAT(e.first_name, ' ', e.last_name) as employee_name
			FROM shift_corrections sc
			LEFT JOIN employees e ON sc.employee_id = e.id
			WHERE sc.employee_id = $1 AND sc.correction_date >= $2 AND sc.correction_date <= $3 AND sc.deleted_at IS NULL
			ORDER BY sc.correction_date DESC, sc.created_at DESC
		`
		return r.db.SelectContext(ctx, &corrections, query, employeeID, startDate, endDate)
	})

	if err != nil {
		return nil, err
	}

	return corrections, nil
}

// ============================================================================
// STATUS QUERIES
// ============================================================================

// GetWeekNetMinutes gets total net work minutes for an employee in the current week
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ShiftRepository) GetWeekNetMinutes(ctx context.Context, employeeID string) (int, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return 0, err
	}

	var totalMinutes int

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT COALESCE(SUM(net_work_minutes), 0)
			FROM shifts
			WHERE employee_id = $1
				AND shift_date >= date_trunc('week', CURRENT_DATE)
				AND shift_date < date_trunc('week', CURRENT_DATE) + INTERVAL '7 days'
				AND deleted_at IS NULL
		`
		return r.db.GetContext(ctx, &totalMinutes, query, employeeID)
	})

	if err != nil {
		return 0, err
	}

	return totalMinutes, nil
}

// CheckEmployeeExists verifies an employee exists
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ShiftRepository) CheckEmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return false, err
	}

	var exists bool

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND deleted_at IS NULL)`
		return r.db.GetContext(ctx, &exists, query, employeeID)
	})

	if err != nil {
		return false, fmt.Errorf("failed to check employee existence: %w", err)
	}

	return exists, nil
}
