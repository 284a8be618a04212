// File: internal/stats/service.go
package stats

import (
	"context"

	"estatehub_backend/internal/booking"
	"estatehub_backend/internal/common"
	"estatehub_backend/internal/payment"
	"estatehub_backend/internal/property"
	"estatehub_backend/internal/user"
	"estatehub_backend/internal/visit"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AdminDashboard aggregates platform-wide counters for admins.
type AdminDashboard struct {
	UsersByRole         map[common.Role]int64 `json:"users_by_role"`
	TotalUsers          int64                 `json:"total_users"`
	AvailableProperties int64                 `json:"available_properties"`
	BookedProperties    int64                 `json:"booked_properties"`
	SoldProperties      int64                 `json:"sold_properties"`
	PendingVisits       int64                 `json:"pending_visits"`
	PendingBookings     int64                 `json:"pending_bookings"`
	ConfirmedBookings   int64                 `json:"confirmed_bookings"`
	PendingPayments     int64                 `json:"pending_payments"`
	ApprovedPayments    int64                 `json:"approved_payments"`
	PlatformRevenue     decimal.Decimal       `json:"platform_revenue"`
}

// SellerDashboard aggregates counters scoped to one seller.
type SellerDashboard struct {
	TotalProperties   int64 `json:"total_properties"`
	PendingVisits     int64 `json:"pending_visits"`
	PendingBookings   int64 `json:"pending_bookings"`
	ConfirmedBookings int64 `json:"confirmed_bookings"`
}

// TenantDashboard aggregates counters scoped to one tenant.
type TenantDashboard struct {
	ActiveBookings  int64 `json:"active_bookings"`
	PendingVisits   int64 `json:"pending_visits"`
	PendingPayments int64 `json:"pending_payments"`
}

// Service assembles role-scoped dashboards from the entity repositories.
type Service struct {
	userRepo     user.Repository
	propertyRepo property.Repository
	visitRepo    visit.Repository
	bookingRepo  booking.Repository
	paymentRepo  payment.Repository
	logger       *zap.Logger
}

// NewService creates a stats service.
func NewService(
	userRepo user.Repository,
	propertyRepo property.Repository,
	visitRepo visit.Repository,
	bookingRepo booking.Repository,
	paymentRepo payment.Repository,
	logger *zap.Logger,
) *Service {
	return &Service{
		userRepo:     userRepo,
		propertyRepo: propertyRepo,
		visitRepo:    visitRepo,
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		logger:       logger.Named("StatsService"),
	}
}

// AdminDashboard builds the platform-wide dashboard.
func (s *Service) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	dash := &AdminDashboard{
		UsersByRole: make(map[common.Role]int64, 4),
	}

	for _, role := range []common.Role{common.RoleAdmin, common.RoleSeller, common.RoleTenant, common.RoleAgent} {
		count, err := s.userRepo.CountByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		dash.UsersByRole[role] = count
		dash.TotalUsers += count
	}

	var err error
	if dash.AvailableProperties, err = s.propertyRepo.CountByStatus(ctx, property.StatusAvailable); err != nil {
		return nil, err
	}
	if dash.BookedProperties, err = s.propertyRepo.CountByStatus(ctx, property.StatusBooked); err != nil {
		return nil, err
	}
	if dash.SoldProperties, err = s.propertyRepo.CountByStatus(ctx, property.StatusSold); err != nil {
		return nil, err
	}
	if dash.PendingVisits, err = s.visitRepo.CountByStatus(ctx, visit.StatusPending); err != nil {
		return nil, err
	}
	if dash.PendingBookings, err = s.bookingRepo.CountByStatus(ctx, booking.StatusPending); err != nil {
		return nil, err
	}
	if dash.ConfirmedBookings, err = s.bookingRepo.CountByStatus(ctx, booking.StatusConfirmed); err != nil {
		return nil, err
	}
	if dash.PendingPayments, err = s.paymentRepo.CountByStatus(ctx, payment.StatusPending); err != nil {
		return nil, err
	}
	if dash.ApprovedPayments, err = s.paymentRepo.CountByStatus(ctx, payment.StatusApproved); err != nil {
		return nil, err
	}
	if dash.PlatformRevenue, err = s.paymentRepo.SumPlatformCut(ctx); err != nil {
		return nil, err
	}
	return dash, nil
}

// SellerDashboard builds the dashboard scoped to the given seller.
func (s *Service) SellerDashboard(ctx context.Context, sellerID uuid.UUID) (*SellerDashboard, error) {
	dash := &SellerDashboard{}

	var err error
	if dash.TotalProperties, err = s.propertyRepo.CountBySeller(ctx, sellerID); err != nil {
		return nil, err
	}

	_, totalVisits, err := s.visitRepo.ListBySeller(ctx, sellerID, visit.VisitListQuery{Status: string(visit.StatusPending)})
	if err != nil {
		return nil, err
	}
	dash.PendingVisits = totalVisits

	_, totalPending, err := s.bookingRepo.ListBySeller(ctx, sellerID, booking.BookingListQuery{Status: string(booking.StatusPending)})
	if err != nil {
		return nil, err
	}
	dash.PendingBookings = totalPending

	_, totalConfirmed, err := s.bookingRepo.ListBySeller(ctx, sellerID, booking.BookingListQuery{Status: string(booking.StatusConfirmed)})
	if err != nil {
		return nil, err
	}
	dash.ConfirmedBookings = totalConfirmed
	return dash, nil
}

// TenantDashboard builds the dashboard scoped to the given tenant.
func (s *Service) TenantDashboard(ctx context.Context, tenantID uuid.UUID) (*TenantDashboard, error) {
	dash := &TenantDashboard{}

	var err error
	if dash.ActiveBookings, err = s.bookingRepo.CountActiveByTenant(ctx, tenantID); err != nil {
		return nil, err
	}

	_, totalVisits, err := s.visitRepo.ListByTenant(ctx, tenantID, visit.VisitListQuery{Status: string(visit.StatusPending)})
	if err != nil {
		return nil, err
	}
	dash.PendingVisits = totalVisits

	_, totalPayments, err := s.paymentRepo.ListByTenant(ctx, tenantID, payment.PaymentListQuery{Status: string(payment.StatusPending)})
	if err != nil {
		return nil, err
	}
	dash.PendingPayments = totalPayments
	return dash, nil
}
