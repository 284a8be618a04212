// File: internal/payment/repository_test.go
package payment

import (
	"context"
	"testing"
	"time"

	"estatehub_backend/internal/booking"
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

var testFeeRate = decimal.RequireFromString("0.10")

type paymentTestFixture struct {
	db      *gorm.DB
	repo    Repository
	admin   *user.User
	tenant  *user.User
	seller  *user.User
	prop    *property.Property
	booking *booking.Booking
}

// newPaymentTestFixture seeds a confirmed booking on a FOR_SALE
// property, the precondition for most payment operations.
func newPaymentTestFixture(t *testing.T) *paymentTestFixture {
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
		&Payment{},
	)
	require.NoError(t, err, "failed to migrate test schema")

	f := &paymentTestFixture{db: db, repo: NewGORMRepository(db)}

	f.admin = &user.User{Email: "admin@test.com", PasswordHash: "x", Role: common.RoleAdmin}
	f.seller = &user.User{Email: "seller@test.com", PasswordHash: "x", Role: common.RoleSeller}
	f.tenant = &user.User{Email: "tenant@test.com", PasswordHash: "x", Role: common.RoleTenant}
	require.NoError(t, db.Create(f.admin).Error)
	require.NoError(t, db.Create(f.seller).Error)
	require.NoError(t, db.Create(f.tenant).Error)

	f.prop = &property.Property{
		SellerID:   f.seller.ID,
		Title:      "Corner townhouse",
		Slug:       "corner-townhouse-" + uuid.NewString()[:8],
		Address:    "7 Elm Rd",
		City:       "Addis Ababa",
		Type:       property.TypeForSale,
		Price:      decimal.RequireFromString("100000.00"),
		Status:     property.StatusBooked,
		IsFeatured: true,
	}
	require.NoError(t, db.Create(f.prop).Error)

	f.booking = &booking.Booking{
		PropertyID: f.prop.ID,
		TenantID:   f.tenant.ID,
		StartDate:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Status:     booking.StatusConfirmed,
	}
	require.NoError(t, db.Create(f.booking).Error)
	return f
}

func TestPaymentRepository_InitiateAndApprove(t *testing.T) {
	f := newPaymentTestFixture(t)
	ctx := context.Background()

	pmt, err := f.repo.Initiate(ctx, f.tenant.ID, f.booking.ID, decimal.RequireFromString("100000.00"))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, pmt.Status)

	approved, err := f.repo.Approve(ctx, pmt.ID, f.admin.ID, testFeeRate)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.True(t, approved.PlatformCut.Equal(decimal.RequireFromString("10000.00")), "cut was %s", approved.PlatformCut)
	assert.True(t, approved.SellerAmount.Equal(decimal.RequireFromString("90000.00")), "seller share was %s", approved.SellerAmount)
	require.NotNil(t, approved.ApprovedByID)
	assert.Equal(t, f.admin.ID, *approved.ApprovedByID)
	assert.NotNil(t, approved.ApprovedAt)
}

func TestPaymentRepository_Initiate_SecondPaymentConflicts(t *testing.T) {
	f := newPaymentTestFixture(t)
	ctx := context.Background()

	_, err := f.repo.Initiate(ctx, f.tenant.ID, f.booking.ID, decimal.RequireFromString("100000.00"))
	require.NoError(t, err)

	_, err = f.repo.Initiate(ctx, f.tenant.ID, f.booking.ID, decimal.RequireFromString("100000.00"))
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
}

func TestPaymentRepository_Initiate_PendingBookingFailsPrecondition(t *testing.T) {
	f := newPaymentTestFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&booking.Booking{}).
		Where("id = ?", f.booking.ID).
		Update("status", booking.StatusPending).Error)

	_, err := f.repo.Initiate(ctx, f.tenant.ID, f.booking.ID, decimal.RequireFromString("100000.00"))
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrPreconditionFailed.Code, apiErr.Code)
}

func TestPaymentRepository_Initiate_WrongTenantForbidden(t *testing.T) {
	f := newPaymentTestFixture(t)
	ctx := context.Background()

	stranger := &user.User{Email: "stranger@test.com", PasswordHash: "x", Role: common.RoleTenant}
	require.NoError(t, f.db.Create(stranger).Error)

	_, err := f.repo.Initiate(ctx, stranger.ID, f.booking.ID, decimal.RequireFromString("100000.00"))
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrForbidden.Code, apiErr.Code)
}

func TestPaymentRepository_Approve_TwiceFailsPrecondition(t *testing.T) {
	f := newPaymentTestFixture(t)
	ctx := context.Background()

	pmt, err := f.repo.Initiate(ctx, f.tenant.ID, f.booking.ID, decimal.RequireFromString("100000.00"))
	require.NoError(t, err)

	_, err = f.repo.Approve(ctx, pmt.ID, f.admin.ID, testFeeRate)
	require.NoError(t, err)

	_, err = f.repo.Approve(ctx, pmt.ID, f.admin.ID, testFeeRate)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrPreconditionFailed.Code, apiErr.Code)
}

func TestPaymentRepository_Reject_ThenApproveFailsPrecondition(t *testing.T) {
	f := newPaymentTestFixture(t)
	ctx := context.Background()

	pmt, err := f.repo.Initiate(ctx, f.tenant.ID, f.booking.ID, decimal.RequireFromString("100000.00"))
	require.NoError(t, err)

	rejected, err := f.repo.Reject(ctx, pmt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Nil(t, rejected.ApprovedByID, "a rejected payment must carry no approver")
	assert.Nil(t, rejected.ApprovedAt)

	stored, err := f.repo.FindByID(ctx, pmt.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ApprovedByID)
	assert.Nil(t, stored.ApprovedAt)

	_, err = f.repo.Approve(ctx, pmt.ID, f.admin.ID, testFeeRate)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrPreconditionFailed.Code, apiErr.Code)
}

func TestPaymentRepository_MarkSellerPaid(t *testing.T) {
	f := newPaymentTestFixture(t)
	ctx := context.Background()

	pmt, err := f.repo.Initiate(ctx, f.tenant.ID, f.booking.ID, decimal.RequireFromString("100000.00"))
	require.NoError(t, err)
	_, err = f.repo.Approve(ctx, pmt.ID, f.admin.ID, testFeeRate)
	require.NoError(t, err)

	paid, err := f.repo.MarkSellerPaid(ctx, pmt.ID)
	require.NoError(t, err)
	assert.True(t, paid.SellerAmountSent)
	assert.NotNil(t, paid.SellerAmountSentAt)

	_, err = f.repo.MarkSellerPaid(ctx, pmt.ID)
	require.Error(t, err, "a payout must not be sent twice")
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrPreconditionFailed.Code, apiErr.Code)
}

func TestPaymentRepository_MarkSellerPaid_PendingFailsPrecondition(t *testing.T) {
	f := newPaymentTestFixture(t)
	ctx := context.Background()

	pmt, err := f.repo.Initiate(ctx, f.tenant.ID, f.booking.ID, decimal.RequireFromString("100000.00"))
	require.NoError(t, err)

	_, err = f.repo.MarkSellerPaid(ctx, pmt.ID)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrPreconditionFailed.Code, apiErr.Code)
}

func TestPaymentRepository_CompleteSale(t *testing.T) {
	f := newPaymentTestFixture(t)
	ctx := context.Background()

	pmt, err := f.repo.CompleteSale(ctx, f.booking.ID, f.admin.ID, nil, testFeeRate)
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, pmt.Status)
	assert.True(t, pmt.Amount.Equal(decimal.RequireFromString("100000.00")), "sale defaults to the listing price")
	assert.True(t, pmt.PlatformCut.Equal(decimal.RequireFromString("10000.00")))
	assert.True(t, pmt.SellerAmount.Equal(decimal.RequireFromString("90000.00")))

	var bk booking.Booking
	require.NoError(t, f.db.First(&bk, "id = ?", f.booking.ID).Error)
	assert.Equal(t, booking.StatusCompleted, bk.Status)

	var prop property.Property
	require.NoError(t, f.db.First(&prop, "id = ?", f.prop.ID).Error)
	assert.Equal(t, property.StatusSold, prop.Status)
	assert.False(t, prop.IsFeatured, "a sold property cannot stay featured")
}

func TestPaymentRepository_CompleteSale_ExistingPaymentConflicts(t *testing.T) {
	f := newPaymentTestFixture(t)
	ctx := context.Background()

	_, err := f.repo.Initiate(ctx, f.tenant.ID, f.booking.ID, decimal.RequireFromString("100000.00"))
	require.NoError(t, err)

	_, err = f.repo.CompleteSale(ctx, f.booking.ID, f.admin.ID, nil, testFeeRate)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
}

func TestPaymentRepository_CompleteSale_TwiceFailsPrecondition(t *testing.T) {
	f := newPaymentTestFixture(t)
	ctx := context.Background()

	_, err := f.repo.CompleteSale(ctx, f.booking.ID, f.admin.ID, nil, testFeeRate)
	require.NoError(t, err)

	// The booking is COMPLETED now, so a replay fails on state before it
	// ever reaches the duplicate-payment check.
	_, err = f.repo.CompleteSale(ctx, f.booking.ID, f.admin.ID, nil, testFeeRate)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrPreconditionFailed.Code, apiErr.Code)
}

func TestPaymentRepository_CompleteSale_ForRentFailsPrecondition(t *testing.T) {
	f := newPaymentTestFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&property.Property{}).
		Where("id = ?", f.prop.ID).
		Update("type", property.TypeForRent).Error)

	_, err := f.repo.CompleteSale(ctx, f.booking.ID, f.admin.ID, nil, testFeeRate)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrPreconditionFailed.Code, apiErr.Code)
}
