package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/workpulse/workpulse-backend/pkg/database"
	"github.com/workpulse/workpulse-backend/pkg/errors"
	"github.com/workpulse/workpulse-backend/pkg/tenant"
)

// Terminal is a registered badge/kiosk device bound to an organization.
type Terminal struct {
	ID             string     `db:"id" json:"id"`
	OrganizationID string     `db:"organization_id" json:"organization_id"`
	Name           string     `db:"name" json:"name"`
	Status         string     `db:"status" json:"status"` // active, revoked
	LastSeenAt     *time.Time `db:"last_seen_at" json:"last_seen_at,omitempty"`
	RegisteredBy   string     `db:"registered_by" json:"registered_by"`
	RevokedBy      *string    `db:"revoked_by" json:"revoked_by,omitempty"`
	RevokedAt      *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
}

// Terminal status values
const (
	TerminalStatusActive  = "active"
	TerminalStatusRevoked = "revoked"
)

// EmployeePIN is the bcrypt hash of an employee's kiosk PIN. The plain PIN
// never touches storage.
type EmployeePIN struct {
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	PINHash    string    `db:"pin_hash" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// TerminalRepository handles kiosk terminal persistence
type TerminalRepository struct {
	db *database.DB
}

// NewTerminalRepository creates a new terminal repository
func NewTerminalRepository(db *database.DB) *TerminalRepository {
	return &TerminalRepository{db: db}
}

// Create registers a new terminal
// TENANT-ISOLATED: Inserts into the tenant's schema
func (r *TerminalRepository) Create(ctx context.Context, terminal *Terminal) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	if terminal.ID == "" {
		terminal.ID = uuid.New().String()
	}
	if terminal.Status == "" {
		terminal.Status = TerminalStatusActive
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO kiosk_terminals (id, organization_id, name, status, registered_by)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`
		return r.db.QueryRowxContext(ctx, query,
			terminal.ID, terminal.OrganizationID, terminal.Name, terminal.Status, terminal.RegisteredBy,
		).Scan(&terminal.CreatedAt, &terminal.UpdatedAt)
	})
}

// GetByID gets a terminal by ID
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *TerminalRepository) GetByID(ctx context.Context, id string) (*Terminal, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var terminal Terminal

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, organization_id, name, status, last_seen_at, registered_by,
			       revoked_by, revoked_at, created_at, updated_at
			FROM kiosk_terminals
			WHERE id = $1 AND deleted_at IS NULL
		`
		return r.db.GetContext(ctx, &terminal, query, id)
	})

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("terminal")
	}
	if err != nil {
		return nil, err
	}

	return &terminal, nil
}

// List gets all terminals
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *TerminalRepository) List(ctx context.Context) ([]*Terminal, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var terminals []*Terminal

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, organization_id, name, status, last_seen_at, registered_by,
			       revoked_by, revoked_at, created_at, updated_at
			FROM kiosk_terminals
			WHERE deleted_at IS NULL
			ORDER BY name
		`
		return r.db.SelectContext(ctx, &terminals, query)
	})

	if err != nil {
		return nil, err
	}

	return terminals, nil
}

// Revoke marks a terminal as revoked
// TENANT-ISOLATED: Updates only in the tenant's schema
func (r *TerminalRepository) Revoke(ctx context.Context, id, revokedBy string) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			UPDATE kiosk_terminals
			SET status = $2, revoked_by = $3, revoked_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL
		`
		result, err := r.db.ExecContext(ctx, query, id, TerminalStatusRevoked, revokedBy)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("terminal")
		}

		return nil
	})
}

// TouchLastSeen records terminal activity
// TENANT-ISOLATED: Updates only in the tenant's schema
func (r *TerminalRepository) TouchLastSeen(ctx context.Context, id string) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `UPDATE kiosk_terminals SET last_seen_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
		_, err := r.db.ExecContext(ctx, query, id)
		return err
	})
}

// ============================================================================
// EMPLOYEE PINS
// ============================================================================

// SetEmployeePIN stores (or replaces) an employee's PIN hash
// TENANT-ISOLATED: Writes only into the tenant's schema
func (r *TerminalRepository) SetEmployeePIN(ctx context.Context, employeeID, pinHash string) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO employee_pins (employee_id, pin_hash)
			VALUES ($1, $2)
			ON CONFLICT (employee_id)
			DO UPDATE SET pin_hash = EXCLUDED.pin_hash, updated_at = NOW()
		`
		_, err := r.db.ExecContext(ctx, query, employeeID, pinHash)
		return err
	})
}

// GetEmployeePIN gets an employee's PIN hash
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *TerminalRepository) GetEmployeePIN(ctx context.Context, employeeID string) (*EmployeePIN, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var pin EmployeePIN

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT employee_id, pin_hash, created_at, updated_at
			FROM employee_pins
			WHERE employee_id = $1
		`
		return r.db.GetContext(ctx, &pin, query, employeeID)
	})

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("employee_pin")
	}
	if err != nil {
		return nil, err
	}

	return &pin, nil
}
