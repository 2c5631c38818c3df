package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse-backend/internal/attendance/repository"
)

func TestEmployeeCacheRepository_UpsertAndExists(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupAttendanceTenant(t, ctx, "test-employee-cache")
	tenantCtx := suite.TenantContext(tenant)

	cacheRepo := repository.NewEmployeeCacheRepository(suite.DB)
	shiftRepo := repository.NewShiftRepository(suite.DB)

	id := uuid.New().String()
	number := "EMP-0042"
	email := "lena.brandt@test.workpulse.io"
	err := cacheRepo.Upsert(tenantCtx, &repository.CachedEmployee{
		ID:             id,
		EmployeeNumber: &number,
		FirstName:      "Lena",
		LastName:       "Brandt",
		Email:          &email,
		Status:         "active",
	})
	require.NoError(t, err)

	exists, err := shiftRepo.CheckEmployeeExists(tenantCtx, id)
	require.NoError(t, err)
	assert.True(t, exists)

	// Upserting the same ID updates in place instead of inserting a duplicate
	err = cacheRepo.Upsert(tenantCtx, &repository.CachedEmployee{
		ID:        id,
		FirstName: "Lena",
		LastName:  "Brandt-Keller",
		Status:    "active",
	})
	require.NoError(t, err)

	shift := checkInEmployee(t, tenantCtx, shiftRepo, id,
		time.Date(2024, 3, 4, 7, 30, 0, 0, time.UTC))
	retrieved, err := shiftRepo.GetShiftByID(tenantCtx, shift.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved.EmployeeName)
	assert.Equal(t, "Lena Brandt-Keller", *retrieved.EmployeeName)
}

func TestEmployeeCacheRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupAttendanceTenant(t, ctx, "test-employee-cache-del")
	tenantCtx := suite.TenantContext(tenant)

	cacheRepo := repository.NewEmployeeCacheRepository(suite.DB)
	shiftRepo := repository.NewShiftRepository(suite.DB)

	id := uuid.New().String()
	err := cacheRepo.Upsert(tenantCtx, &repository.CachedEmployee{
		ID:        id,
		FirstName: "Timo",
		LastName:  "Weiss",
		Status:    "active",
	})
	require.NoError(t, err)

	err = cacheRepo.SoftDelete(tenantCtx, id)
	require.NoError(t, err)

	exists, err := shiftRepo.CheckEmployeeExists(tenantCtx, id)
	require.NoError(t, err)
	assert.False(t, exists)

	// Re-upserting revives the record, the staff service may restore employees
	err = cacheRepo.Upsert(tenantCtx, &repository.CachedEmployee{
		ID:        id,
		FirstName: "Timo",
		LastName:  "Weiss",
		Status:    "active",
	})
	require.NoError(t, err)

	exists, err = shiftRepo.CheckEmployeeExists(tenantCtx, id)
	require.NoError(t, err)
	assert.True(t, exists)
}
