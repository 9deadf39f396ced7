package services

import (
	"context"
	"errors"

	"bank-settlement-engine/internal/models"
)

var (
	ErrInvalidTransfer      = errors.New("invalid transfer request")
	ErrAccountNotFound      = errors.New("account not found")
	ErrForbiddenAccount     = errors.New("source account does not belong to user")
	ErrInsufficientFunds    = errors.New("insufficient balance")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrForbiddenTransaction = errors.New("not authorized to view this transaction")
	ErrQueueUnavailable     = errors.New("settlement queue unavailable")
)

// TransactionService определяет интерфейс приема переводов
type TransactionService interface {
	// InitiateTransfer создает PENDING транзакцию и ставит ее в очередь расчёта.
	// Счет-источник должен принадлежать userID.
	InitiateTransfer(ctx context.Context, userID int64, req *models.TransferRequest) (*models.TransferResponse, error)

	// GetTransactionStatus возвращает статус транзакции ее владельцу
	GetTransactionStatus(ctx context.Context, userID, transactionID int64) (*models.TransactionStatusResponse, error)

	// InspectTransaction возвращает статус любой транзакции
	InspectTransaction(ctx context.Context, transactionID int64) (*models.TransactionStatusResponse, error)

	// ListAudit возвращает последние записи аудита
	ListAudit(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

// NotificationService определяет интерфейс для работы с уведомлениями пользователя
type NotificationService interface {
	List(ctx context.Context, userID int64, unreadOnly bool, skip, limit int) (*models.NotificationListResponse, error)
	Stats(ctx context.Context, userID int64) (*models.NotificationStats, error)
	MarkRead(ctx context.Context, userID, notificationID int64, read bool) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}
