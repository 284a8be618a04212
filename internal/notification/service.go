// File: internal/notification/service.go
package notification

import (
	"context"

	"estatehub_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines notification operations. Notify is fire-and-forget:
// a failed insert must never fail the operation that triggered it.
type Service interface {
	Notify(ctx context.Context, userID uuid.UUID, event Event, refType string, refID uuid.UUID)
	GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	MarkNotificationAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error
	MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a notification service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger.Named("NotificationService"),
	}
}

var _ Service = (*ServiceImplementation)(nil)

func (s *ServiceImplementation) Notify(ctx context.Context, userID uuid.UUID, event Event, refType string, refID uuid.UUID) {
	message, ok := messages[event]
	if !ok {
		s.logger.Warn("Unknown notification event, skipping",
			zap.String("event", string(event)))
		return
	}

	notification := &Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Event:   event,
		Message: message,
		RefType: refType,
		RefID:   &refID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Error("Failed to create notification",
			zap.String("userID", userID.String()),
			zap.String("event", string(event)),
			zap.Error(err))
	}
}

func (s *ServiceImplementation) GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	return s.repo.GetByUserID(ctx, userID, page, pageSize)
}

func (s *ServiceImplementation) MarkNotificationAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *ServiceImplementation) MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}
