package services

import (
	"context"
	"errors"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/storage"
)

// ErrNotificationNotFound - уведомление не найдено или принадлежит другому пользователю
var ErrNotificationNotFound = errors.New("notification not found")

const maxNotificationPage = 100

type NotificationServiceImpl struct {
	repo storage.NotificationRepository
}

func NewNotificationService(repo storage.NotificationRepository) NotificationService {
	return &NotificationServiceImpl{repo: repo}
}

func (s *NotificationServiceImpl) List(ctx context.Context, userID int64, unreadOnly bool, skip, limit int) (*models.NotificationListResponse, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxNotificationPage {
		limit = 50
	}

	list, err := s.repo.ListNotifications(ctx, userID, unreadOnly, skip, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Notification{}
	}

	return &models.NotificationListResponse{
		Notifications: list,
		Count:         len(list),
	}, nil
}

func (s *NotificationServiceImpl) Stats(ctx context.Context, userID int64) (*models.NotificationStats, error) {
	return s.repo.NotificationStats(ctx, userID)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID int64, read bool) (*models.Notification, error) {
	n, err := s.repo.MarkNotificationRead(ctx, userID, notificationID, read)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotificationNotFound
	}
	return n, err
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}
