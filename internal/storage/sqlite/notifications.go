package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/storage"
)

// CreateNotification сохраняет уведомление
func (s *SQLiteStorage) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO notifications (user_id, title, message, type, related_id, is_read, created_at, from_user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.UserID, n.Title, n.Message, n.Type, nullableID(n.RelatedID), n.IsRead, n.CreatedAt.UTC(), nullableID(n.FromUserID))
	if err != nil {
		return err
	}
	n.ID, err = res.LastInsertId()
	return err
}

// ListNotifications получает уведомления пользователя
func (s *SQLiteStorage) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, offset, limit int) ([]*models.Notification, error) {
	query := `
		SELECT ` + storage.NotificationColumns + `
		FROM notifications n
		LEFT JOIN users u ON u.id = n.from_user_id
		WHERE n.user_id = ?`
	if unreadOnly {
		query += ` AND n.is_read = 0`
	}
	query += ` ORDER BY n.created_at DESC, n.id DESC LIMIT ? OFFSET ?`

	rows, err := s.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*models.Notification, 0)
	for rows.Next() {
		n, err := storage.ScanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// NotificationStats считает общее и непрочитанное количество
func (s *SQLiteStorage) NotificationStats(ctx context.Context, userID int64) (*models.NotificationStats, error) {
	var stats models.NotificationStats
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_read = 0 THEN 1 ELSE 0 END), 0)
		FROM notifications
		WHERE user_id = ?
	`, userID).Scan(&stats.TotalCount, &stats.UnreadCount)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// MarkNotificationRead помечает уведомление прочитанным или непрочитанным
func (s *SQLiteStorage) MarkNotificationRead(ctx context.Context, userID, id int64, read bool) (*models.Notification, error) {
	var readAt interface{}
	if read {
		readAt = time.Now().UTC()
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = ?, read_at = ? WHERE id = ? AND user_id = ?`,
		read, readAt, id, userID,
	)
	if err != nil {
		return nil, err
	}
	if err := expectOneRow(res, storage.ErrNotFound); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT `+storage.NotificationColumns+`
		FROM notifications n
		LEFT JOIN users u ON u.id = n.from_user_id
		WHERE n.id = ?
	`, id)
	n, err := storage.ScanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return n, err
}

// MarkAllNotificationsRead помечает все уведомления пользователя прочитанными
func (s *SQLiteStorage) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1, read_at = ? WHERE user_id = ? AND is_read = 0`,
		time.Now().UTC(), userID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
