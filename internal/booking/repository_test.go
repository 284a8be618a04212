// File: internal/booking/repository_test.go
package booking_test

import (
	"context"
	"testing"
	"time"

	"estatehub_backend/internal/booking"
	"estatehub_backend/internal/common"
	"estatehub_backend/internal/payment"
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

func setupBookingRepoTest(t *testing.T) (*gorm.DB, booking.Repository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")

	err = db.AutoMigrate(
		&user.User{},
		&property.Property{},
		&property.PropertyImage{},
		&booking.Booking{},
		&payment.Payment{},
	)
	require.NoError(t, err, "failed to migrate test schema")

	return db, booking.NewGORMRepository(db)
}

func seedMarketplace(t *testing.T, db *gorm.DB, status property.PropertyStatus) (tenant *user.User, prop *property.Property) {
	t.Helper()

	seller := &user.User{Email: "seller@test.com", PasswordHash: "x", Role: common.RoleSeller}
	tenant = &user.User{Email: "tenant@test.com", PasswordHash: "x", Role: common.RoleTenant}
	require.NoError(t, db.Create(seller).Error)
	require.NoError(t, db.Create(tenant).Error)

	prop = &property.Property{
		SellerID: seller.ID,
		Title:    "Family house",
		Slug:     "family-house-" + uuid.NewString()[:8],
		Address:  "3 Oak Ave",
		City:     "Addis Ababa",
		Type:     property.TypeForSale,
		Price:    decimal.RequireFromString("100000.00"),
		Status:   status,
	}
	require.NoError(t, db.Create(prop).Error)
	return tenant, prop
}

func newBooking(tenantID, propertyID uuid.UUID) *booking.Booking {
	return &booking.Booking{
		PropertyID: propertyID,
		TenantID:   tenantID,
		StartDate:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Status:     booking.StatusPending,
	}
}

func propertyStatus(t *testing.T, db *gorm.DB, id uuid.UUID) property.PropertyStatus {
	t.Helper()
	var prop property.Property
	require.NoError(t, db.First(&prop, "id = ?", id).Error)
	return prop.Status
}

func TestBookingRepository_CreateAndConfirm(t *testing.T) {
	db, repo := setupBookingRepoTest(t)
	tenant, prop := seedMarketplace(t, db, property.StatusAvailable)
	ctx := context.Background()

	bk := newBooking(tenant.ID, prop.ID)
	require.NoError(t, repo.Create(ctx, bk))

	confirmed, err := repo.Confirm(ctx, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, confirmed.Status)
	assert.Equal(t, property.StatusBooked, propertyStatus(t, db, prop.ID),
		"confirming a booking must mark the property BOOKED in the same transaction")
}

func TestBookingRepository_Create_SecondTenantBookingConflicts(t *testing.T) {
	db, repo := setupBookingRepoTest(t)
	tenant, prop := seedMarketplace(t, db, property.StatusAvailable)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newBooking(tenant.ID, prop.ID)))

	err := repo.Create(ctx, newBooking(tenant.ID, prop.ID))
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
}

func TestBookingRepository_Create_PendingBookingByAnotherTenantConflicts(t *testing.T) {
	db, repo := setupBookingRepoTest(t)
	tenant, prop := seedMarketplace(t, db, property.StatusAvailable)
	ctx := context.Background()

	// The first booking is still PENDING, the property still AVAILABLE.
	require.NoError(t, repo.Create(ctx, newBooking(tenant.ID, prop.ID)))
	require.Equal(t, property.StatusAvailable, propertyStatus(t, db, prop.ID))

	other := &user.User{Email: "other@test.com", PasswordHash: "x", Role: common.RoleTenant}
	require.NoError(t, db.Create(other).Error)

	err := repo.Create(ctx, newBooking(other.ID, prop.ID))
	require.Error(t, err, "only one tenant can hold an active booking on a property")
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)

	var count int64
	require.NoError(t, db.Model(&booking.Booking{}).
		Where("property_id = ?", prop.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "exactly one booking may exist on the property")
}

func TestBookingRepository_Create_BookedPropertyConflicts(t *testing.T) {
	db, repo := setupBookingRepoTest(t)
	tenant, prop := seedMarketplace(t, db, property.StatusAvailable)
	ctx := context.Background()

	bk := newBooking(tenant.ID, prop.ID)
	require.NoError(t, repo.Create(ctx, bk))
	_, err := repo.Confirm(ctx, bk.ID)
	require.NoError(t, err)

	other := &user.User{Email: "other@test.com", PasswordHash: "x", Role: common.RoleTenant}
	require.NoError(t, db.Create(other).Error)

	err = repo.Create(ctx, newBooking(other.ID, prop.ID))
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
}

func TestBookingRepository_Create_SoldPropertyFailsPrecondition(t *testing.T) {
	db, repo := setupBookingRepoTest(t)
	tenant, prop := seedMarketplace(t, db, property.StatusSold)
	ctx := context.Background()

	err := repo.Create(ctx, newBooking(tenant.ID, prop.ID))
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrPreconditionFailed.Code, apiErr.Code)
}

func TestBookingRepository_Confirm_TwiceFailsPrecondition(t *testing.T) {
	db, repo := setupBookingRepoTest(t)
	tenant, prop := seedMarketplace(t, db, property.StatusAvailable)
	ctx := context.Background()

	bk := newBooking(tenant.ID, prop.ID)
	require.NoError(t, repo.Create(ctx, bk))
	_, err := repo.Confirm(ctx, bk.ID)
	require.NoError(t, err)

	_, err = repo.Confirm(ctx, bk.ID)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrPreconditionFailed.Code, apiErr.Code)
}

func TestBookingRepository_Cancel_ResetsProperty(t *testing.T) {
	db, repo := setupBookingRepoTest(t)
	tenant, prop := seedMarketplace(t, db, property.StatusAvailable)
	ctx := context.Background()

	bk := newBooking(tenant.ID, prop.ID)
	require.NoError(t, repo.Create(ctx, bk))
	_, err := repo.Confirm(ctx, bk.ID)
	require.NoError(t, err)
	require.Equal(t, property.StatusBooked, propertyStatus(t, db, prop.ID))

	cancelled, err := repo.Cancel(ctx, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, cancelled.Status)
	assert.Equal(t, property.StatusAvailable, propertyStatus(t, db, prop.ID),
		"cancelling the only active booking must free the property")
}

func TestBookingRepository_Cancel_TerminalBookingFailsPrecondition(t *testing.T) {
	db, repo := setupBookingRepoTest(t)
	tenant, prop := seedMarketplace(t, db, property.StatusAvailable)
	ctx := context.Background()

	bk := newBooking(tenant.ID, prop.ID)
	require.NoError(t, repo.Create(ctx, bk))
	_, err := repo.Cancel(ctx, bk.ID)
	require.NoError(t, err)

	_, err = repo.Cancel(ctx, bk.ID)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrPreconditionFailed.Code, apiErr.Code)
}

func TestBookingRepository_Delete_ResetsPropertyAndRemovesPayment(t *testing.T) {
	db, repo := setupBookingRepoTest(t)
	tenant, prop := seedMarketplace(t, db, property.StatusAvailable)
	ctx := context.Background()

	bk := newBooking(tenant.ID, prop.ID)
	require.NoError(t, repo.Create(ctx, bk))
	_, err := repo.Confirm(ctx, bk.ID)
	require.NoError(t, err)

	pmt := &payment.Payment{
		BookingID: bk.ID,
		TenantID:  tenant.ID,
		Amount:    decimal.RequireFromString("100000.00"),
		Status:    payment.StatusPending,
	}
	require.NoError(t, db.Create(pmt).Error)

	require.NoError(t, repo.Delete(ctx, bk.ID))

	assert.Equal(t, property.StatusAvailable, propertyStatus(t, db, prop.ID))

	var bookingCount, paymentCount int64
	require.NoError(t, db.Model(&booking.Booking{}).Count(&bookingCount).Error)
	require.NoError(t, db.Model(&payment.Payment{}).Count(&paymentCount).Error)
	assert.Zero(t, bookingCount)
	assert.Zero(t, paymentCount, "deleting a booking must remove its payment")
}
