package models

import "time"

const (
	NotificationTransaction       = "transaction"
	NotificationTransactionFailed = "transaction_failed"
	NotificationCredit            = "credit"
)

// Notification - персональное уведомление пользователя
type Notification struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Type         string     `json:"type"`
	RelatedID    *int64     `json:"related_id"`
	IsRead       bool       `json:"is_read"`
	CreatedAt    time.Time  `json:"created_at"`
	ReadAt       *time.Time `json:"read_at"`
	FromUserID   *int64     `json:"from_user_id"`
	FromUserName *string    `json:"from_user_name"`
}

// NotificationStats - счётчики уведомлений пользователя
type NotificationStats struct {
	TotalCount  int64 `json:"total_count"`
	UnreadCount int64 `json:"unread_count"`
}

// NotificationPush - конверт для отправки в websocket
type NotificationPush struct {
	Type string        `json:"type"`
	Data *Notification `json:"data"`
}

// NotificationListResponse представляет ответ со списком уведомлений
type NotificationListResponse struct {
	Notifications []*Notification `json:"notifications"`
	Count         int             `json:"count"`
}
