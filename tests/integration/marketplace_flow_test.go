// File: tests/integration/marketplace_flow_test.go
package integration

import (
	"context"
	"testing"

	"estatehub_backend/internal/app"
	"estatehub_backend/internal/auth"
	"estatehub_backend/internal/booking"
	"estatehub_backend/internal/common"
	"estatehub_backend/internal/config"
	"estatehub_backend/internal/notification"
	"estatehub_backend/internal/payment"
	"estatehub_backend/internal/property"
	"estatehub_backend/internal/user"
	"estatehub_backend/internal/visit"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// marketplace wires every service against one in-memory database, the
// way the injector does in production.
type marketplace struct {
	db *gorm.DB

	authService     auth.Service
	userService     user.Service
	propertyService property.Service
	visitService    visit.Service
	bookingService  booking.Service
	paymentService  payment.Service
	notifications   notification.Service

	admin  *user.User
	seller *user.User
	tenant *user.User
	agent  *user.User
}

func setupMarketplace(t *testing.T) *marketplace {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")
	require.NoError(t, app.AutoMigrate(db), "failed to migrate schema")

	cfg := &config.Config{
		JWTSecret:      "integration-test-secret",
		JWTIssuer:      "estatehub-test",
		JWTExpiryHours: 1,
		BcryptCost:     bcrypt.MinCost,
		PlatformFee:    decimal.RequireFromString("0.10"),
	}
	logger := zap.NewNop()

	userRepo := user.NewGORMRepository(db)
	notificationRepo := notification.NewGORMRepository(db)
	propertyRepo := property.NewGORMRepository(db)
	visitRepo := visit.NewGORMRepository(db)
	bookingRepo := booking.NewGORMRepository(db)
	paymentRepo := payment.NewGORMRepository(db)

	notifications := notification.NewService(notificationRepo, logger)
	tokens := auth.NewJWTTokenService(cfg)

	m := &marketplace{
		db:              db,
		authService:     auth.NewService(userRepo, tokens, cfg.BcryptCost, logger),
		userService:     user.NewService(userRepo, cfg.BcryptCost, logger),
		propertyService: property.NewService(propertyRepo, userRepo, logger),
		visitService:    visit.NewService(visitRepo, userRepo, notifications, logger),
		bookingService:  booking.NewService(bookingRepo, notifications, logger),
		paymentService:  payment.NewService(paymentRepo, notifications, cfg, logger),
		notifications:   notifications,
	}

	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	seed := func(email string, role common.Role) *user.User {
		u := &user.User{Email: email, PasswordHash: string(hash), Role: role}
		require.NoError(t, userRepo.Create(ctx, u))
		return u
	}
	m.admin = seed("admin@test.com", common.RoleAdmin)
	m.seller = seed("seller@test.com", common.RoleSeller)
	m.tenant = seed("tenant@test.com", common.RoleTenant)
	m.agent = seed("agent@test.com", common.RoleAgent)
	return m
}

func (m *marketplace) listProperty(t *testing.T, price string) *property.Property {
	t.Helper()
	prop, err := m.propertyService.Create(context.Background(), m.seller.ID, common.RoleSeller, property.CreatePropertyRequest{
		Title:   "Detached house with garden",
		Address: "22 Acacia Ave",
		City:    "Addis Ababa",
		Type:    property.TypeForSale,
		Price:   decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return prop
}

func TestMarketplace_FullSaleLifecycle(t *testing.T) {
	m := setupMarketplace(t)
	ctx := context.Background()

	// Seller lists a property; admin features it.
	prop := m.listProperty(t, "100000.00")
	assert.Equal(t, property.StatusAvailable, prop.Status)
	_, err := m.propertyService.SetFeatured(ctx, m.seller.ID, common.RoleSeller, prop.ID, true)
	require.NoError(t, err)

	// Tenant asks to visit; seller approves with an agent attached.
	v, err := m.visitService.Submit(ctx, m.tenant.ID, visit.SubmitVisitRequest{
		PropertyID:    prop.ID,
		PreferredDate: "2026-09-15",
	})
	require.NoError(t, err)

	v, err = m.visitService.Decide(ctx, m.seller.ID, common.RoleSeller, v.ID, visit.DecideVisitRequest{
		Approve: true,
		AgentID: &m.agent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, visit.StatusApproved, v.Status)
	require.NotNil(t, v.AgentID)
	assert.Equal(t, m.agent.ID, *v.AgentID)

	// Tenant books; seller confirms.
	bk, err := m.bookingService.Create(ctx, m.tenant.ID, booking.CreateBookingRequest{
		PropertyID: prop.ID,
		StartDate:  "2026-10-01",
	})
	require.NoError(t, err)

	bk, err = m.bookingService.Confirm(ctx, m.seller.ID, common.RoleSeller, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, bk.Status)

	prop, err = m.propertyService.GetByID(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, property.StatusBooked, prop.Status)

	// Admin completes the sale at the listing price.
	pmt, err := m.paymentService.CompleteSale(ctx, m.admin.ID, bk.ID, payment.CompleteSaleRequest{})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusApproved, pmt.Status)
	assert.True(t, pmt.Amount.Equal(decimal.RequireFromString("100000.00")), "amount was %s", pmt.Amount)
	assert.True(t, pmt.PlatformCut.Equal(decimal.RequireFromString("10000.00")), "cut was %s", pmt.PlatformCut)
	assert.True(t, pmt.SellerAmount.Equal(decimal.RequireFromString("90000.00")), "seller share was %s", pmt.SellerAmount)

	prop, err = m.propertyService.GetByID(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, property.StatusSold, prop.Status)
	assert.False(t, prop.IsFeatured, "sold property must lose its featured flag")

	bk, err = m.bookingService.GetByID(ctx, m.admin.ID, common.RoleAdmin, bk.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCompleted, bk.Status)

	// Admin pays the seller out.
	pmt, err = m.paymentService.SendPayout(ctx, pmt.ID)
	require.NoError(t, err)
	assert.True(t, pmt.SellerAmountSent)

	// The tenant heard about the approved visit, the sale, and nothing else twice.
	tenantNotifs, _, err := m.notifications.GetNotificationsForUser(ctx, m.tenant.ID, 1, 20)
	require.NoError(t, err)
	events := make([]notification.Event, 0, len(tenantNotifs))
	for _, n := range tenantNotifs {
		events = append(events, n.Event)
	}
	assert.Contains(t, events, notification.EventVisitApproved)
	assert.Contains(t, events, notification.EventSaleCompleted)

	sellerNotifs, _, err := m.notifications.GetNotificationsForUser(ctx, m.seller.ID, 1, 20)
	require.NoError(t, err)
	sellerEvents := make([]notification.Event, 0, len(sellerNotifs))
	for _, n := range sellerNotifs {
		sellerEvents = append(sellerEvents, n.Event)
	}
	assert.Contains(t, sellerEvents, notification.EventPayoutSent)
}

func TestMarketplace_SecondBookingConflicts(t *testing.T) {
	m := setupMarketplace(t)
	ctx := context.Background()
	prop := m.listProperty(t, "250000.00")

	bk, err := m.bookingService.Create(ctx, m.tenant.ID, booking.CreateBookingRequest{
		PropertyID: prop.ID,
		StartDate:  "2026-10-01",
	})
	require.NoError(t, err)
	_, err = m.bookingService.Confirm(ctx, m.seller.ID, common.RoleSeller, bk.ID)
	require.NoError(t, err)

	// Another tenant arrives too late.
	other := &user.User{Email: "late@test.com", PasswordHash: "x", Role: common.RoleTenant}
	require.NoError(t, m.db.Create(other).Error)

	_, err = m.bookingService.Create(ctx, other.ID, booking.CreateBookingRequest{
		PropertyID: prop.ID,
		StartDate:  "2026-10-02",
	})
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
}

func TestMarketplace_CancelFreesPropertyForNewBooking(t *testing.T) {
	m := setupMarketplace(t)
	ctx := context.Background()
	prop := m.listProperty(t, "250000.00")

	bk, err := m.bookingService.Create(ctx, m.tenant.ID, booking.CreateBookingRequest{
		PropertyID: prop.ID,
		StartDate:  "2026-10-01",
	})
	require.NoError(t, err)
	_, err = m.bookingService.Confirm(ctx, m.seller.ID, common.RoleSeller, bk.ID)
	require.NoError(t, err)

	_, err = m.bookingService.Cancel(ctx, m.tenant.ID, common.RoleTenant, bk.ID)
	require.NoError(t, err)

	prop, err = m.propertyService.GetByID(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, property.StatusAvailable, prop.Status)

	// The window reopened for someone else.
	other := &user.User{Email: "second@test.com", PasswordHash: "x", Role: common.RoleTenant}
	require.NoError(t, m.db.Create(other).Error)
	_, err = m.bookingService.Create(ctx, other.ID, booking.CreateBookingRequest{
		PropertyID: prop.ID,
		StartDate:  "2026-11-01",
	})
	assert.NoError(t, err)
}

func TestMarketplace_DeleteTenantResetsBookedProperty(t *testing.T) {
	m := setupMarketplace(t)
	ctx := context.Background()
	prop := m.listProperty(t, "180000.00")

	bk, err := m.bookingService.Create(ctx, m.tenant.ID, booking.CreateBookingRequest{
		PropertyID: prop.ID,
		StartDate:  "2026-10-01",
	})
	require.NoError(t, err)
	_, err = m.bookingService.Confirm(ctx, m.seller.ID, common.RoleSeller, bk.ID)
	require.NoError(t, err)

	require.NoError(t, m.userService.AdminDeleteUser(ctx, m.tenant.ID, m.admin.ID))

	prop, err = m.propertyService.GetByID(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, property.StatusAvailable, prop.Status,
		"deleting the tenant must free the booked property")

	var bookingCount int64
	require.NoError(t, m.db.Model(&booking.Booking{}).Where("tenant_id = ?", m.tenant.ID).Count(&bookingCount).Error)
	assert.Zero(t, bookingCount)

	_, err = m.userService.GetByID(ctx, m.tenant.ID)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrNotFound.Code, apiErr.Code)
}

func TestMarketplace_AuthRoundTrip(t *testing.T) {
	m := setupMarketplace(t)
	ctx := context.Background()

	resp, err := m.authService.Register(ctx, auth.RegisterRequest{
		Email:    "fresh@test.com",
		Password: "s3cret-password",
		Role:     "SELLER",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	login, err := m.authService.Login(ctx, auth.LoginRequest{
		Email:    "fresh@test.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = m.authService.Login(ctx, auth.LoginRequest{
		Email:    "fresh@test.com",
		Password: "wrong",
	})
	require.Error(t, err)
}

func TestMarketplace_AgentIgnoredWhenNotAgentRole(t *testing.T) {
	m := setupMarketplace(t)
	ctx := context.Background()
	prop := m.listProperty(t, "90000.00")

	v, err := m.visitService.Submit(ctx, m.tenant.ID, visit.SubmitVisitRequest{
		PropertyID:    prop.ID,
		PreferredDate: "2026-09-20",
	})
	require.NoError(t, err)

	// A seller's id is not an agent; assignment is dropped, not fatal.
	bogusAgent := m.seller.ID
	v, err = m.visitService.Decide(ctx, m.seller.ID, common.RoleSeller, v.ID, visit.DecideVisitRequest{
		Approve: true,
		AgentID: &bogusAgent,
	})
	require.NoError(t, err)
	assert.Equal(t, visit.StatusApproved, v.Status)
	assert.Nil(t, v.AgentID)

	// Unknown ids are dropped the same way.
	v2, err := m.visitService.Submit(ctx, m.tenant.ID, visit.SubmitVisitRequest{
		PropertyID:    prop.ID,
		PreferredDate: "2026-09-21",
	})
	require.NoError(t, err)
	unknown := uuid.New()
	v2, err = m.visitService.Decide(ctx, m.seller.ID, common.RoleSeller, v2.ID, visit.DecideVisitRequest{
		Approve: true,
		AgentID: &unknown,
	})
	require.NoError(t, err)
	assert.Nil(t, v2.AgentID)
}
