// File: internal/notification/service_test.go
package notification

import (
	"context"
	"errors"
	"testing"

	"estatehub_backend/internal/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockNotificationRepository is a mock type for notification.Repository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByUserID(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	args := m.Called(ctx, userID, page, pageSize)
	var notifications []Notification
	if args.Get(0) != nil {
		notifications = args.Get(0).([]Notification)
	}
	var pagination *common.Pagination
	if args.Get(1) != nil {
		pagination = args.Get(1).(*common.Pagination)
	}
	return notifications, pagination, args.Error(2)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) (*Notification, error) {
	args := m.Called(ctx, notificationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, notificationID uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func setupNotificationServiceTest(t *testing.T) (Service, *MockNotificationRepository) {
	t.Helper()
	mockRepo := new(MockNotificationRepository)
	return NewService(mockRepo, zap.NewNop()), mockRepo
}

func TestNotificationService_Notify_Success(t *testing.T) {
	service, mockRepo := setupNotificationServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()
	refID := uuid.New()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*notification.Notification")).Run(func(args mock.Arguments) {
		notif := args.Get(1).(*Notification)
		assert.Equal(t, userID, notif.UserID)
		assert.Equal(t, EventBookingConfirmed, notif.Event)
		assert.Equal(t, messages[EventBookingConfirmed], notif.Message)
		assert.Equal(t, "booking", notif.RefType)
		assert.Equal(t, &refID, notif.RefID)
		assert.False(t, notif.IsRead)
	}).Return(nil)

	service.Notify(ctx, userID, EventBookingConfirmed, "booking", refID)
	mockRepo.AssertExpectations(t)
}

func TestNotificationService_Notify_RepositoryErrorIsSwallowed(t *testing.T) {
	service, mockRepo := setupNotificationServiceTest(t)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*notification.Notification")).
		Return(errors.New("db down"))

	// Must not panic or propagate; notifications never fail the caller.
	service.Notify(ctx, uuid.New(), EventPaymentApproved, "payment", uuid.New())
	mockRepo.AssertExpectations(t)
}

func TestNotificationService_Notify_UnknownEventSkipsCreate(t *testing.T) {
	service, mockRepo := setupNotificationServiceTest(t)

	service.Notify(context.Background(), uuid.New(), Event("made_up"), "x", uuid.New())
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotificationService_GetNotificationsForUser(t *testing.T) {
	service, mockRepo := setupNotificationServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()

	expected := []Notification{{ID: uuid.New(), UserID: userID, Event: EventPayoutSent}}
	pagination := common.NewPagination(1, 1, 10)
	mockRepo.On("GetByUserID", ctx, userID, 1, 10).Return(expected, pagination, nil)

	notifications, pg, err := service.GetNotificationsForUser(ctx, userID, 1, 10)
	assert.NoError(t, err)
	assert.Len(t, notifications, 1)
	assert.Equal(t, pagination, pg)
	mockRepo.AssertExpectations(t)
}

func TestNotificationService_MarkNotificationAsRead_NotFound(t *testing.T) {
	service, mockRepo := setupNotificationServiceTest(t)
	ctx := context.Background()
	notificationID := uuid.New()
	userID := uuid.New()

	mockRepo.On("MarkAsRead", ctx, notificationID, userID).
		Return(common.ErrNotFound.WithDetails("Notification not found or not owned by user."))

	err := service.MarkNotificationAsRead(ctx, notificationID, userID)
	assert.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrNotFound.Code, apiErr.Code)
	mockRepo.AssertExpectations(t)
}

func TestNotificationService_MarkAllUserNotificationsAsRead(t *testing.T) {
	service, mockRepo := setupNotificationServiceTest(t)
	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("MarkAllAsRead", ctx, userID).Return(int64(3), nil)

	count, err := service.MarkAllUserNotificationsAsRead(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
	mockRepo.AssertExpectations(t)
}
