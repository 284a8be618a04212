// File: internal/booking/service.go
package booking

import (
	"context"
	"time"

	"estatehub_backend/internal/common"
	"estatehub_backend/internal/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the booking business operations.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, req CreateBookingRequest) (*Booking, error)
	GetByID(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID) (*Booking, error)
	Confirm(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID) (*Booking, error)
	Cancel(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID) (*Booking, error)
	Delete(ctx context.Context, actorRole common.Role, id uuid.UUID) error
	ListMine(ctx context.Context, actorID uuid.UUID, actorRole common.Role, query BookingListQuery) ([]Booking, int64, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     Repository
	notifier notification.Service
	logger   *zap.Logger
}

// NewService creates a booking service.
func NewService(repo Repository, notifier notification.Service, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		notifier: notifier,
		logger:   logger.Named("BookingService"),
	}
}

var _ Service = (*ServiceImplementation)(nil)

func (s *ServiceImplementation) Create(ctx context.Context, tenantID uuid.UUID, req CreateBookingRequest) (*Booking, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("start_date must be in YYYY-MM-DD format.")
	}

	booking := &Booking{
		PropertyID: req.PropertyID,
		TenantID:   tenantID,
		StartDate:  startDate,
		Status:     StatusPending,
		Notes:      req.Notes,
	}
	if req.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, common.ErrBadRequest.WithDetails("end_date must be in YYYY-MM-DD format.")
		}
		if !endDate.After(startDate) {
			return nil, common.ErrBadRequest.WithDetails("end_date must be after start_date.")
		}
		booking.EndDate = &endDate
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}
	s.logger.Info("Booking created",
		zap.String("bookingID", booking.ID.String()),
		zap.String("propertyID", req.PropertyID.String()),
		zap.String("tenantID", tenantID.String()))
	return s.repo.FindByID(ctx, booking.ID)
}

func (s *ServiceImplementation) GetByID(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID) (*Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canAccess(booking, actorID, actorRole); err != nil {
		return nil, err
	}
	return booking, nil
}

func canAccess(booking *Booking, actorID uuid.UUID, actorRole common.Role) error {
	switch {
	case actorRole == common.RoleAdmin:
		return nil
	case booking.TenantID == actorID:
		return nil
	case booking.Property != nil && booking.Property.SellerID == actorID:
		return nil
	}
	return common.ErrForbidden.WithDetails("You are not a party to this booking.")
}

func (s *ServiceImplementation) Confirm(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID) (*Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole != common.RoleAdmin {
		if booking.Property == nil || booking.Property.SellerID != actorID {
			return nil, common.ErrForbidden.WithDetails("Only the property's seller can confirm this booking.")
		}
	}

	confirmed, err := s.repo.Confirm(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, confirmed.TenantID, notification.EventBookingConfirmed, "booking", confirmed.ID)
	s.logger.Info("Booking confirmed",
		zap.String("bookingID", id.String()),
		zap.String("propertyID", confirmed.PropertyID.String()))
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImplementation) Cancel(ctx context.Context, actorID uuid.UUID, actorRole common.Role, id uuid.UUID) (*Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canAccess(booking, actorID, actorRole); err != nil {
		return nil, err
	}

	cancelled, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	// Notify the other party, whoever the actor was.
	if actorID != cancelled.TenantID {
		s.notifier.Notify(ctx, cancelled.TenantID, notification.EventBookingCancelled, "booking", cancelled.ID)
	} else if booking.Property != nil {
		s.notifier.Notify(ctx, booking.Property.SellerID, notification.EventBookingCancelled, "booking", cancelled.ID)
	}
	s.logger.Info("Booking cancelled",
		zap.String("bookingID", id.String()),
		zap.String("actorID", actorID.String()))
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImplementation) Delete(ctx context.Context, actorRole common.Role, id uuid.UUID) error {
	if actorRole != common.RoleAdmin {
		return common.ErrForbidden.WithDetails("Only admins can delete bookings.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Booking deleted", zap.String("bookingID", id.String()))
	return nil
}

func (s *ServiceImplementation) ListMine(ctx context.Context, actorID uuid.UUID, actorRole common.Role, query BookingListQuery) ([]Booking, int64, error) {
	switch actorRole {
	case common.RoleTenant:
		return s.repo.ListByTenant(ctx, actorID, query)
	case common.RoleSeller:
		return s.repo.ListBySeller(ctx, actorID, query)
	default:
		return nil, 0, common.ErrForbidden.WithDetails("This listing is scoped to tenants and sellers.")
	}
}
