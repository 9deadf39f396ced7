package mocks

import (
	"context"

	"bank-settlement-engine/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockTransactionService является моком для services.TransactionService интерфейса
type MockTransactionService struct {
	mock.Mock
}

// InitiateTransfer мок для InitiateTransfer
func (m *MockTransactionService) InitiateTransfer(ctx context.Context, userID int64, req *models.TransferRequest) (*models.TransferResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransferResponse), args.Error(1)
}

// GetTransactionStatus мок для GetTransactionStatus
func (m *MockTransactionService) GetTransactionStatus(ctx context.Context, userID, transactionID int64) (*models.TransactionStatusResponse, error) {
	args := m.Called(ctx, userID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransactionStatusResponse), args.Error(1)
}

// InspectTransaction мок для InspectTransaction
func (m *MockTransactionService) InspectTransaction(ctx context.Context, transactionID int64) (*models.TransactionStatusResponse, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransactionStatusResponse), args.Error(1)
}

// ListAudit мок для ListAudit
func (m *MockTransactionService) ListAudit(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}
