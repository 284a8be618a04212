// File: internal/visit/repository_test.go
package visit

import (
	"context"
	"testing"
	"time"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/property"
	"estatehub_backend/internal/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupVisitRepoTest(t *testing.T) (*gorm.DB, Repository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")

	err = db.AutoMigrate(&user.User{}, &property.Property{}, &property.PropertyImage{}, &VisitRequest{})
	require.NoError(t, err, "failed to migrate test schema")

	return db, NewGORMRepository(db)
}

func seedTenantAndProperty(t *testing.T, db *gorm.DB, status property.PropertyStatus) (tenant *user.User, prop *property.Property) {
	t.Helper()

	seller := &user.User{Email: "seller@test.com", PasswordHash: "x", Role: common.RoleSeller}
	tenant = &user.User{Email: "tenant@test.com", PasswordHash: "x", Role: common.RoleTenant}
	require.NoError(t, db.Create(seller).Error)
	require.NoError(t, db.Create(tenant).Error)

	prop = &property.Property{
		SellerID: seller.ID,
		Title:    "Two bedroom flat",
		Slug:     "two-bedroom-flat-" + uuid.NewString()[:8],
		Address:  "12 High St",
		City:     "Addis Ababa",
		Type:     property.TypeForRent,
		Price:    decimal.RequireFromString("1500.00"),
		Status:   status,
	}
	require.NoError(t, db.Create(prop).Error)
	return tenant, prop
}

func TestVisitRepository_Submit(t *testing.T) {
	db, repo := setupVisitRepoTest(t)
	tenant, prop := seedTenantAndProperty(t, db, property.StatusAvailable)
	ctx := context.Background()

	visit := &VisitRequest{
		PropertyID:    prop.ID,
		TenantID:      tenant.ID,
		PreferredDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Status:        StatusPending,
	}
	require.NoError(t, repo.Submit(ctx, visit))

	found, err := repo.FindByID(ctx, visit.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, found.Status)
	assert.Equal(t, prop.ID, found.PropertyID)
}

func TestVisitRepository_Submit_DuplicatePendingConflicts(t *testing.T) {
	db, repo := setupVisitRepoTest(t)
	tenant, prop := seedTenantAndProperty(t, db, property.StatusAvailable)
	ctx := context.Background()

	first := &VisitRequest{
		PropertyID:    prop.ID,
		TenantID:      tenant.ID,
		PreferredDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Status:        StatusPending,
	}
	require.NoError(t, repo.Submit(ctx, first))

	second := &VisitRequest{
		PropertyID:    prop.ID,
		TenantID:      tenant.ID,
		PreferredDate: time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
		Status:        StatusPending,
	}
	err := repo.Submit(ctx, second)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
}

func TestVisitRepository_Submit_DecidedVisitDoesNotBlock(t *testing.T) {
	db, repo := setupVisitRepoTest(t)
	tenant, prop := seedTenantAndProperty(t, db, property.StatusAvailable)
	ctx := context.Background()

	first := &VisitRequest{
		PropertyID:    prop.ID,
		TenantID:      tenant.ID,
		PreferredDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Status:        StatusPending,
	}
	require.NoError(t, repo.Submit(ctx, first))
	_, err := repo.Decide(ctx, first.ID, false, nil)
	require.NoError(t, err)

	second := &VisitRequest{
		PropertyID:    prop.ID,
		TenantID:      tenant.ID,
		PreferredDate: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Status:        StatusPending,
	}
	assert.NoError(t, repo.Submit(ctx, second), "a rejected visit must not block a new request")
}

func TestVisitRepository_Submit_MissingPropertyNotFound(t *testing.T) {
	db, repo := setupVisitRepoTest(t)
	tenant, _ := seedTenantAndProperty(t, db, property.StatusAvailable)
	ctx := context.Background()

	visit := &VisitRequest{
		PropertyID:    uuid.New(),
		TenantID:      tenant.ID,
		PreferredDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Status:        StatusPending,
	}
	err := repo.Submit(ctx, visit)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrNotFound.Code, apiErr.Code)
}

func TestVisitRepository_Submit_SoldPropertyRejected(t *testing.T) {
	db, repo := setupVisitRepoTest(t)
	tenant, prop := seedTenantAndProperty(t, db, property.StatusSold)
	ctx := context.Background()

	visit := &VisitRequest{
		PropertyID:    prop.ID,
		TenantID:      tenant.ID,
		PreferredDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Status:        StatusPending,
	}
	err := repo.Submit(ctx, visit)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrPreconditionFailed.Code, apiErr.Code)
}

func TestVisitRepository_Decide_ApproveWithAgent(t *testing.T) {
	db, repo := setupVisitRepoTest(t)
	tenant, prop := seedTenantAndProperty(t, db, property.StatusAvailable)
	ctx := context.Background()

	agent := &user.User{Email: "agent@test.com", PasswordHash: "x", Role: common.RoleAgent}
	require.NoError(t, db.Create(agent).Error)

	visit := &VisitRequest{
		PropertyID:    prop.ID,
		TenantID:      tenant.ID,
		PreferredDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Status:        StatusPending,
	}
	require.NoError(t, repo.Submit(ctx, visit))

	decided, err := repo.Decide(ctx, visit.ID, true, &agent.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, decided.Status)
	require.NotNil(t, decided.AgentID)
	assert.Equal(t, agent.ID, *decided.AgentID)
	assert.NotNil(t, decided.DecidedAt)
}

func TestVisitRepository_Decide_AlreadyDecidedFailsPrecondition(t *testing.T) {
	db, repo := setupVisitRepoTest(t)
	tenant, prop := seedTenantAndProperty(t, db, property.StatusAvailable)
	ctx := context.Background()

	visit := &VisitRequest{
		PropertyID:    prop.ID,
		TenantID:      tenant.ID,
		PreferredDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Status:        StatusPending,
	}
	require.NoError(t, repo.Submit(ctx, visit))

	_, err := repo.Decide(ctx, visit.ID, true, nil)
	require.NoError(t, err)

	_, err = repo.Decide(ctx, visit.ID, false, nil)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrPreconditionFailed.Code, apiErr.Code)
}
