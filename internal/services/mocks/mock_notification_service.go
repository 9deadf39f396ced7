package mocks

import (
	"context"

	"bank-settlement-engine/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockNotificationService является моком для services.NotificationService интерфейса
type MockNotificationService struct {
	mock.Mock
}

// List мок для List
func (m *MockNotificationService) List(ctx context.Context, userID int64, unreadOnly bool, skip, limit int) (*models.NotificationListResponse, error) {
	args := m.Called(ctx, userID, unreadOnly, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NotificationListResponse), args.Error(1)
}

// Stats мок для Stats
func (m *MockNotificationService) Stats(ctx context.Context, userID int64) (*models.NotificationStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NotificationStats), args.Error(1)
}

// MarkRead мок для MarkRead
func (m *MockNotificationService) MarkRead(ctx context.Context, userID, notificationID int64, read bool) (*models.Notification, error) {
	args := m.Called(ctx, userID, notificationID, read)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

// MarkAllRead мок для MarkAllRead
func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
