package postgres

import (
	"context"
	"database/sql"
	"errors"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/storage"
)

// CreateNotification сохраняет уведомление
func (s *PostgresStorage) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.DB.QueryRowContext(ctx, `
		INSERT INTO notifications (user_id, title, message, type, related_id, is_read, from_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, n.UserID, n.Title, n.Message, n.Type, nullableID(n.RelatedID), n.IsRead, nullableID(n.FromUserID),
	).Scan(&n.ID, &n.CreatedAt)
}

// ListNotifications получает уведомления пользователя
func (s *PostgresStorage) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, offset, limit int) ([]*models.Notification, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+storage.NotificationColumns+`
		FROM notifications n
		LEFT JOIN users u ON u.id = n.from_user_id
		WHERE n.user_id = $1 AND (NOT $2 OR n.is_read = FALSE)
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $3 OFFSET $4
	`, userID, unreadOnly, limit, offset)
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
func (s *PostgresStorage) NotificationStats(ctx context.Context, userID int64) (*models.NotificationStats, error) {
	var stats models.NotificationStats
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_read)
		FROM notifications
		WHERE user_id = $1
	`, userID).Scan(&stats.TotalCount, &stats.UnreadCount)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// MarkNotificationRead помечает уведомление прочитанным или непрочитанным
func (s *PostgresStorage) MarkNotificationRead(ctx context.Context, userID, id int64, read bool) (*models.Notification, error) {
	row := s.DB.QueryRowContext(ctx, `
		WITH updated AS (
			UPDATE notifications
			SET is_read = $1, read_at = CASE WHEN $1 THEN NOW() ELSE NULL END
			WHERE id = $2 AND user_id = $3
			RETURNING *
		)
		SELECT `+storage.NotificationColumns+`
		FROM updated n
		LEFT JOIN users u ON u.id = n.from_user_id
	`, read, id, userID)
	n, err := storage.ScanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return n, err
}

// MarkAllNotificationsRead помечает все уведомления пользователя прочитанными
func (s *PostgresStorage) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = NOW() WHERE user_id = $1 AND is_read = FALSE`,
		userID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
