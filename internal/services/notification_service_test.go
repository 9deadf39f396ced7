package services

import (
	"context"
	"testing"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/storage"
	storagemocks "bank-settlement-engine/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_ListDefaults(t *testing.T) {
	repo := new(storagemocks.MockNotificationRepository)
	service := NewNotificationService(repo)
	ctx := context.Background()

	repo.On("ListNotifications", ctx, int64(3), true, 0, 50).Return(nil, nil)

	resp, err := service.List(ctx, 3, true, -5, 0)
	require.NoError(t, err)
	assert.NotNil(t, resp.Notifications)
	assert.Equal(t, 0, resp.Count)
	repo.AssertExpectations(t)
}

func TestNotificationService_List(t *testing.T) {
	repo := new(storagemocks.MockNotificationRepository)
	service := NewNotificationService(repo)
	ctx := context.Background()

	list := []*models.Notification{{ID: 2, UserID: 3}, {ID: 1, UserID: 3}}
	repo.On("ListNotifications", ctx, int64(3), false, 10, 20).Return(list, nil)

	resp, err := service.List(ctx, 3, false, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
}

func TestNotificationService_MarkReadNotFound(t *testing.T) {
	repo := new(storagemocks.MockNotificationRepository)
	service := NewNotificationService(repo)
	ctx := context.Background()

	repo.On("MarkNotificationRead", ctx, int64(3), int64(9), true).Return(nil, storage.ErrNotFound)

	_, err := service.MarkRead(ctx, 3, 9, true)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestNotificationService_StatsAndMarkAll(t *testing.T) {
	repo := new(storagemocks.MockNotificationRepository)
	service := NewNotificationService(repo)
	ctx := context.Background()

	repo.On("NotificationStats", ctx, int64(3)).Return(&models.NotificationStats{TotalCount: 4, UnreadCount: 2}, nil)
	repo.On("MarkAllNotificationsRead", ctx, int64(3)).Return(int64(2), nil)

	stats, err := service.Stats(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.UnreadCount)

	marked, err := service.MarkAllRead(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)
}
