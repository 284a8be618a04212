// File: internal/payment/service.go
package payment

import (
	"context"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/config"
	"estatehub_backend/internal/notification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service defines the payment business operations.
type Service interface {
	Initiate(ctx context.Context, tenantID uuid.UUID, req InitiatePaymentRequest) (*Payment, error)
	GetByID(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID) (*Payment, error)
	Approve(ctx context.Context, approverID uuid.UUID, id uuid.UUID) (*Payment, error)
	Reject(ctx context.Context, approverID uuid.UUID, id uuid.UUID) (*Payment, error)
	SendPayout(ctx context.Context, id uuid.UUID) (*Payment, error)
	CompleteSale(ctx context.Context, approverID uuid.UUID, bookingID uuid.UUID, req CompleteSaleRequest) (*Payment, error)
	ListMine(ctx context.Context, actorID uuid.UUID, actorRole common.Role, query PaymentListQuery) ([]Payment, int64, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     Repository
	notifier notification.Service
	feeRate  decimal.Decimal
	logger   *zap.Logger
}

// NewService creates a payment service. The platform fee rate comes
// from configuration and is fixed for the process lifetime.
func NewService(repo Repository, notifier notification.Service, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		notifier: notifier,
		feeRate:  cfg.PlatformFee,
		logger:   logger.Named("PaymentService"),
	}
}

var _ Service = (*ServiceImplementation)(nil)

func (s *ServiceImplementation) Initiate(ctx context.Context, tenantID uuid.UUID, req InitiatePaymentRequest) (*Payment, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, common.ErrBadRequest.WithDetails("Amount must be greater than zero.")
	}

	pmt, err := s.repo.Initiate(ctx, tenantID, req.BookingID, req.Amount)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Payment initiated",
		zap.String("paymentID", pmt.ID.String()),
		zap.String("bookingID", req.BookingID.String()),
		zap.String("amount", pmt.Amount.String()))
	return s.repo.FindByID(ctx, pmt.ID)
}

func (s *ServiceImplementation) GetByID(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID) (*Payment, error) {
	pmt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actorRole == common.RoleAdmin:
	case pmt.TenantID == actorID:
	case pmt.Booking != nil && pmt.Booking.Property != nil && pmt.Booking.Property.SellerID == actorID:
	default:
		return nil, common.ErrForbidden.WithDetails("You are not a party to this payment.")
	}
	return pmt, nil
}

func (s *ServiceImplementation) Approve(ctx context.Context, approverID uuid.UUID, id uuid.UUID) (*Payment, error) {
	pmt, err := s.repo.Approve(ctx, id, approverID, s.feeRate)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, pmt.TenantID, notification.EventPaymentApproved, "payment", pmt.ID)
	full, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if full.Booking != nil && full.Booking.Property != nil {
		s.notifier.Notify(ctx, full.Booking.Property.SellerID, notification.EventPaymentApproved, "payment", pmt.ID)
	}

	s.logger.Info("Payment approved",
		zap.String("paymentID", id.String()),
		zap.String("approverID", approverID.String()),
		zap.String("platformCut", pmt.PlatformCut.String()),
		zap.String("sellerAmount", pmt.SellerAmount.String()))
	return full, nil
}

func (s *ServiceImplementation) Reject(ctx context.Context, approverID uuid.UUID, id uuid.UUID) (*Payment, error) {
	pmt, err := s.repo.Reject(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, pmt.TenantID, notification.EventPaymentRejected, "payment", pmt.ID)
	s.logger.Info("Payment rejected",
		zap.String("paymentID", id.String()),
		zap.String("approverID", approverID.String()))
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImplementation) SendPayout(ctx context.Context, id uuid.UUID) (*Payment, error) {
	pmt, err := s.repo.MarkSellerPaid(ctx, id)
	if err != nil {
		return nil, err
	}

	full, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if full.Booking != nil && full.Booking.Property != nil {
		s.notifier.Notify(ctx, full.Booking.Property.SellerID, notification.EventPayoutSent, "payment", pmt.ID)
	}

	s.logger.Info("Seller payout sent",
		zap.String("paymentID", id.String()),
		zap.String("sellerAmount", full.SellerAmount.String()))
	return full, nil
}

func (s *ServiceImplementation) CompleteSale(ctx context.Context, approverID uuid.UUID, bookingID uuid.UUID, req CompleteSaleRequest) (*Payment, error) {
	if req.Amount != nil && req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, common.ErrBadRequest.WithDetails("Amount must be greater than zero.")
	}

	pmt, err := s.repo.CompleteSale(ctx, bookingID, approverID, req.Amount, s.feeRate)
	if err != nil {
		return nil, err
	}

	full, err := s.repo.FindByID(ctx, pmt.ID)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, full.TenantID, notification.EventSaleCompleted, "payment", pmt.ID)
	if full.Booking != nil && full.Booking.Property != nil {
		s.notifier.Notify(ctx, full.Booking.Property.SellerID, notification.EventSaleCompleted, "payment", pmt.ID)
	}

	s.logger.Info("Sale completed",
		zap.String("bookingID", bookingID.String()),
		zap.String("paymentID", pmt.ID.String()),
		zap.String("amount", pmt.Amount.String()))
	return full, nil
}

func (s *ServiceImplementation) ListMine(ctx context.Context, actorID uuid.UUID, actorRole common.Role, query PaymentListQuery) ([]Payment, int64, error) {
	if actorRole == common.RoleAdmin {
		return s.repo.ListAll(ctx, query)
	}
	return s.repo.ListByTenant(ctx, actorID, query)
}
