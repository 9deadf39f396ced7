package mocks

import (
	"context"
	"time"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockLedgerStore является моком для storage.LedgerStore интерфейса
type MockLedgerStore struct {
	mock.Mock
}

// Begin мок для Begin
func (m *MockLedgerStore) Begin(ctx context.Context) (storage.UnitOfWork, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(storage.UnitOfWork), args.Error(1)
}

// GetTransaction мок для GetTransaction
func (m *MockLedgerStore) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

// GetAccount мок для GetAccount
func (m *MockLedgerStore) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

// CreateUser мок для CreateUser
func (m *MockLedgerStore) CreateUser(ctx context.Context, username string) (int64, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(int64), args.Error(1)
}

// CreateAccount мок для CreateAccount
func (m *MockLedgerStore) CreateAccount(ctx context.Context, userID int64, accountNumber string, balance money.Amount) (int64, error) {
	args := m.Called(ctx, userID, accountNumber, balance)
	return args.Get(0).(int64), args.Error(1)
}

// CreatePendingTransaction мок для CreatePendingTransaction
func (m *MockLedgerStore) CreatePendingTransaction(ctx context.Context, src, dest int64, amount money.Amount) (*models.Transaction, error) {
	args := m.Called(ctx, src, dest, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

// ListPendingBefore мок для ListPendingBefore
func (m *MockLedgerStore) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// ListAudit мок для ListAudit
func (m *MockLedgerStore) ListAudit(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

// CountAudit мок для CountAudit
func (m *MockLedgerStore) CountAudit(ctx context.Context, needle string) (int64, error) {
	args := m.Called(ctx, needle)
	return args.Get(0).(int64), args.Error(1)
}

// Close мок для Close
func (m *MockLedgerStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockUnitOfWork является моком для storage.UnitOfWork интерфейса
type MockUnitOfWork struct {
	mock.Mock
}

// LockTransaction мок для LockTransaction
func (m *MockUnitOfWork) LockTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

// LockAccounts мок для LockAccounts
func (m *MockUnitOfWork) LockAccounts(ctx context.Context, ids []int64) (map[int64]*models.Account, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*models.Account), args.Error(1)
}

// UpdateBalance мок для UpdateBalance
func (m *MockUnitOfWork) UpdateBalance(ctx context.Context, accountID int64, balance money.Amount) error {
	args := m.Called(ctx, accountID, balance)
	return args.Error(0)
}

// MarkTransaction мок для MarkTransaction
func (m *MockUnitOfWork) MarkTransaction(ctx context.Context, id int64, status models.TransactionStatus, settledAt time.Time) error {
	args := m.Called(ctx, id, status, settledAt)
	return args.Error(0)
}

// InsertTransaction мок для InsertTransaction
func (m *MockUnitOfWork) InsertTransaction(ctx context.Context, tx *models.Transaction) (int64, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(int64), args.Error(1)
}

// AppendAudit мок для AppendAudit
func (m *MockUnitOfWork) AppendAudit(ctx context.Context, eventType, message string) error {
	args := m.Called(ctx, eventType, message)
	return args.Error(0)
}

// Commit мок для Commit
func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

// Rollback мок для Rollback
func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockNotificationRepository является моком для storage.NotificationRepository интерфейса
type MockNotificationRepository struct {
	mock.Mock
}

// CreateNotification мок для CreateNotification
func (m *MockNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// ListNotifications мок для ListNotifications
func (m *MockNotificationRepository) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, offset, limit int) ([]*models.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

// NotificationStats мок для NotificationStats
func (m *MockNotificationRepository) NotificationStats(ctx context.Context, userID int64) (*models.NotificationStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NotificationStats), args.Error(1)
}

// MarkNotificationRead мок для MarkNotificationRead
func (m *MockNotificationRepository) MarkNotificationRead(ctx context.Context, userID, id int64, read bool) (*models.Notification, error) {
	args := m.Called(ctx, userID, id, read)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

// MarkAllNotificationsRead мок для MarkAllNotificationsRead
func (m *MockNotificationRepository) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// UserByID мок для UserByID
func (m *MockNotificationRepository) UserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
