package repository

import (
	"context"

	"github.com/workpulse/workpulse-backend/pkg/database"
	"github.com/workpulse/workpulse-backend/pkg/tenant"
)

// CachedEmployee is the local read model of an employee owned by the staff
// service. Shift queries join against it for display names, and check-ins
// verify the employee exists and is active.
type CachedEmployee struct {
	ID             string  `db:"id" json:"id"`
	EmployeeNumber *string `db:"employee_number" json:"employee_number,omitempty"`
	FirstName      string  `db:"first_name" json:"first_name"`
	LastName       string  `db:"last_name" json:"last_name"`
	Email          *string `db:"email" json:"email,omitempty"`
	Status         string  `db:"status" json:"status"`
}

// EmployeeCacheRepository maintains the employees read model
type EmployeeCacheRepository struct {
	db *database.DB
}

// NewEmployeeCacheRepository creates a new employee cache repository
func NewEmployeeCacheRepository(db *database.DB) *EmployeeCacheRepository {
	return &EmployeeCacheRepository{db: db}
}

// Upsert creates or updates a cached employee
// TENANT-ISOLATED: Writes into the tenant's schema
func (r *EmployeeCacheRepository) Upsert(ctx context.Context, emp *CachedEmployee) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO employees (id, employee_number, first_name, last_name, email, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id)
			DO UPDATE SET
				employee_number = EXCLUDED.employee_number,
				first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				email = EXCLUDED.email,
				status = EXCLUDED.status,
				deleted_at = NULL,
				updated_at = NOW()
		`
		_, err := r.db.ExecContext(ctx, query,
			emp.ID, emp.EmployeeNumber, emp.FirstName, emp.LastName, emp.Email, emp.Status)
		return err
	})
}

// SoftDelete marks a cached employee as deleted. Shift history referencing
// the employee stays intact.
// TENANT-ISOLATED: Updates only the tenant's schema
func (r *EmployeeCacheRepository) SoftDelete(ctx context.Context, employeeID string) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `UPDATE employees SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
		_, err := r.db.ExecContext(ctx, query, employeeID)
		return err
	})
}
