package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/workpulse/workpulse-backend/pkg/database"
	"github.com/workpulse/workpulse-backend/pkg/errors"
	"github.com/workpulse/workpulse-backend/pkg/tenant"
)

// Organization is a tenant's organizational unit with its working-hours
// configuration. WorkingDays and PerDay are stored as JSONB and parsed at
// the service boundary; times are "HH:MM" strings.
type Organization struct {
	ID               string          `db:"id" json:"id"`
	Name             string          `db:"name" json:"name"`
	Timezone         string          `db:"timezone" json:"timezone"`
	GraceMinutes     int             `db:"grace_minutes" json:"grace_minutes"`
	DefaultOpenTime  string          `db:"default_open_time" json:"default_open_time"`
	DefaultCloseTime string          `db:"default_close_time" json:"default_close_time"`
	WorkingDays      json.RawMessage `db:"working_days" json:"working_days"` // {"monday": true, ...}
	PerDay           json.RawMessage `db:"per_day" json:"per_day,omitempty"` // {"monday": {"open": "07:00", "close": "15:00"}, ...}
	HolidayMode      bool            `db:"holiday_mode" json:"holiday_mode"`
	HolidayUntil     *time.Time      `db:"holiday_until" json:"holiday_until,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
	DeletedAt        *time.Time      `db:"deleted_at" json:"-"`
}

// SpecialDate is an exact-date override of an organization's regular hours.
// OpenTime equal to CloseTime marks the date as closed.
type SpecialDate struct {
	ID             string     `db:"id" json:"id"`
	OrganizationID string     `db:"organization_id" json:"organization_id"`
	Date           time.Time  `db:"date" json:"date"`
	OpenTime       string     `db:"open_time" json:"open_time"`
	CloseTime      string     `db:"close_time" json:"close_time"`
	Reason         *string    `db:"reason" json:"reason,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
}

// OrganizationRepository handles organization persistence
type OrganizationRepository struct {
	db *database.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *database.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create creates a new organization
// TENANT-ISOLATED: Inserts into the tenant's schema
func (r *OrganizationRepository) Create(ctx context.Context, org *Organization) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	if org.WorkingDays == nil {
		org.WorkingDays = json.RawMessage(`{}`)
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO organizations (
				id, name, timezone, grace_minutes, default_open_time, default_close_time,
				working_days, per_day, holiday_mode, holiday_until
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at, updated_at
		`
		return r.db.QueryRowxContext(ctx, query,
			org.ID, org.Name, org.Timezone, org.GraceMinutes, org.DefaultOpenTime, org.DefaultCloseTime,
			org.WorkingDays, org.PerDay, org.HolidayMode, org.HolidayUntil,
		).Scan(&org.CreatedAt, &org.UpdatedAt)
	})
}

// GetByID gets an organization by ID
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*Organization, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var org Organization

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, name, timezone, grace_minutes, default_open_time, default_close_time,
			       working_days, per_day, holiday_mode, holiday_until, created_at, updated_at
			FROM organizations
			WHERE id = $1 AND deleted_at IS NULL
		`
		return r.db.GetContext(ctx, &org, query, id)
	})

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("organization")
	}
	if err != nil {
		return nil, err
	}

	return &org, nil
}

// List gets all organizations
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *OrganizationRepository) List(ctx context.Context) ([]*Organization, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var orgs []*Organization

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, name, timezone, grace_minutes, default_open_time, default_close_time,
			       working_days, per_day, holiday_mode, holiday_until, created_at, updated_at
			FROM organizations
			WHERE deleted_at IS NULL
			ORDER BY name
		`
		return r.db.SelectContext(ctx, &orgs, query)
	})

	if err != nil {
		return nil, err
	}

	return orgs, nil
}

// Update updates an organization's configuration
// TENANT-ISOLATED: Updates only in the tenant's schema
func (r *OrganizationRepository) Update(ctx context.Context, org *Organization) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			UPDATE organizations SET
				name = $2, timezone = $3, grace_minutes = $4, default_open_time = $5,
				default_close_time = $6, working_days = $7, per_day = $8,
				holiday_mode = $9, holiday_until = $10
			WHERE id = $1 AND deleted_at IS NULL
		`
		result, err := r.db.ExecContext(ctx, query,
			org.ID, org.Name, org.Timezone, org.GraceMinutes, org.DefaultOpenTime,
			org.DefaultCloseTime, org.WorkingDays, org.PerDay,
			org.HolidayMode, org.HolidayUntil,
		)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("organization")
		}

		return nil
	})
}

// SetHolidayMode toggles holiday mode for an organization
// TENANT-ISOLATED: Updates only in the tenant's schema
func (r *OrganizationRepository) SetHolidayMode(ctx context.Context, id string, enabled bool, until *time.Time) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			UPDATE organizations SET holiday_mode = $2, holiday_until = $3
			WHERE id = $1 AND deleted_at IS NULL
		`
		result, err := r.db.ExecContext(ctx, query, id, enabled, until)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("organization")
		}

		return nil
	})
}

// SoftDelete soft deletes an organization
// TENANT-ISOLATED: Soft deletes only in the tenant's schema
func (r *OrganizationRepository) SoftDelete(ctx context.Context, id string) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `UPDATE organizations SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
		result, err := r.db.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("organization")
		}

		return nil
	})
}

// ============================================================================
// SPECIAL DATES
// ============================================================================

// UpsertSpecialDate creates or replaces the override for a date
// TENANT-ISOLATED: Writes only into the tenant's schema
func (r *OrganizationRepository) UpsertSpecialDate(ctx context.Context, sd *SpecialDate) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	if sd.ID == "" {
		sd.ID = uuid.New().String()
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO organization_special_dates (id, organization_id, date, open_time, close_time, reason)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (organization_id, date) WHERE deleted_at IS NULL
			DO UPDATE SET open_time = EXCLUDED.open_time, close_time = EXCLUDED.close_time,
			              reason = EXCLUDED.reason, updated_at = NOW()
			RETURNING id, created_at, updated_at
		`
		return r.db.QueryRowxContext(ctx, query,
			sd.ID, sd.OrganizationID, sd.Date, sd.OpenTime, sd.CloseTime, sd.Reason,
		).Scan(&sd.ID, &sd.CreatedAt, &sd.UpdatedAt)
	})
}

// ListSpecialDates gets all special dates for an organization
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *OrganizationRepository) ListSpecialDates(ctx context.Context, organizationID string) ([]*SpecialDate, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err
	}

	var dates []*SpecialDate

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, organization_id, date, open_time, close_time, reason, created_at, updated_at
			FROM organization_special_dates
			WHERE organization_id = $1 AND deleted_at IS NULL
			ORDER BY date
		`
		return r.db.SelectContext(ctx, &dates, query, organizationID)
	})

	if err != nil {
		return nil, err
	}

	return dates, nil
}

// DeleteSpecialDate removes the override for a date
// TENANT-ISOLATED: Soft deletes only in the tenant's schema
func (r *OrganizationRepository) DeleteSpecialDate(ctx context.Context, organizationID string, date time.Time) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			UPDATE organization_special_dates SET deleted_at = NOW()
			WHERE organization_id = $1 AND date = $2 AND deleted_at IS NULL
		`
		result, err := r.db.ExecContext(ctx, query, organizationID, date)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("special_date")
		}

		return nil
	})
}
