package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/workpulse/workpulse-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "check_out_after_check_in"):
		return errors.Validation(map[string]string{
			"check_out_time": "must be after check-in time",
		})

	case strings.Contains(constraint, "shift_status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: active, completed, corrected",
		})

	case strings.Contains(constraint, "weekday_valid"):
		return errors.Validation(map[string]string{
			"weekday": "must be between 0 (Sunday) and 6 (Saturday)",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "active_shift"):
		return "employee already has an active shift"
	case strings.Contains(constraint, "special_date"):
		return "a schedule override for this date already exists"
	case strings.Contains(constraint, "terminal_name"):
		return "a kiosk terminal with this name already exists"
	default:
		return "a record with these values already exists"
	}
}
