package storage

import (
	"context"
	"errors"
	"time"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
)

var (
	// ErrNotFound - запись не найдена
	ErrNotFound = errors.New("record not found")
	// ErrPartialNotFound - часть запрошенных счетов отсутствует
	ErrPartialNotFound = errors.New("one or more accounts not found")
	// ErrNotPending - транзакция уже в терминальном статусе
	ErrNotPending = errors.New("transaction is not pending")
)

// LedgerStore определяет интерфейс авторитетного хранилища балансов и транзакций
type LedgerStore interface {
	// Begin открывает единицу работы. Все блокировки снимаются при Commit/Rollback.
	Begin(ctx context.Context) (UnitOfWork, error)

	// GetTransaction читает транзакцию без блокировки
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)

	// GetAccount читает счёт без блокировки
	GetAccount(ctx context.Context, id int64) (*models.Account, error)

	// CreateUser создает пользователя
	CreateUser(ctx context.Context, username string) (int64, error)

	// CreateAccount создает одобренный счёт с начальным балансом
	CreateAccount(ctx context.Context, userID int64, accountNumber string, balance money.Amount) (int64, error)

	// CreatePendingTransaction сохраняет перевод со статусом PENDING
	CreatePendingTransaction(ctx context.Context, src, dest int64, amount money.Amount) (*models.Transaction, error)

	// ListPendingBefore возвращает PENDING транзакции, созданные раньше cutoff
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Transaction, error)

	// ListAudit возвращает последние записи аудита, новые первыми
	ListAudit(ctx context.Context, limit int) ([]*models.AuditLog, error)

	// CountAudit считает записи аудита, в тексте которых встречается needle
	CountAudit(ctx context.Context, needle string) (int64, error)

	Close() error
}

// UnitOfWork - одна атомарная транзакция БД над балансами, статусом и аудитом
type UnitOfWork interface {
	// LockTransaction блокирует строку транзакции до конца единицы работы
	LockTransaction(ctx context.Context, id int64) (*models.Transaction, error)

	// LockAccounts блокирует все счета за один шаг в порядке возрастания id.
	// Дубликаты схлопываются. Если часть счетов отсутствует, возвращает найденные и ErrPartialNotFound.
	LockAccounts(ctx context.Context, ids []int64) (map[int64]*models.Account, error)

	UpdateBalance(ctx context.Context, accountID int64, balance money.Amount) error

	// MarkTransaction переводит PENDING транзакцию в терминальный статус
	MarkTransaction(ctx context.Context, id int64, status models.TransactionStatus, settledAt time.Time) error

	// InsertTransaction вставляет уже рассчитанную транзакцию (зачисление)
	InsertTransaction(ctx context.Context, tx *models.Transaction) (int64, error)

	AppendAudit(ctx context.Context, eventType, message string) error

	Commit() error
	Rollback() error
}

// NotificationRepository определяет интерфейс для работы с уведомлениями
type NotificationRepository interface {
	// CreateNotification сохраняет уведомление, заполняя ID и CreatedAt
	CreateNotification(ctx context.Context, n *models.Notification) error

	// ListNotifications возвращает уведомления пользователя, новые первыми
	ListNotifications(ctx context.Context, userID int64, unreadOnly bool, offset, limit int) ([]*models.Notification, error)

	NotificationStats(ctx context.Context, userID int64) (*models.NotificationStats, error)

	// MarkNotificationRead меняет флаг прочтения уведомления пользователя
	MarkNotificationRead(ctx context.Context, userID, id int64, read bool) (*models.Notification, error)

	// MarkAllNotificationsRead возвращает количество помеченных уведомлений
	MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error)

	// UserByID используется для подстановки имени отправителя
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// Store объединяет оба репозитория одного бэкенда
type Store interface {
	LedgerStore
	NotificationRepository
}
