package mocks

import (
	"bank-settlement-engine/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockProducer является моком для kafka.Producer интерфейса
type MockProducer struct {
	mock.Mock
}

// SendTransferIntent мок для SendTransferIntent
func (m *MockProducer) SendTransferIntent(intent *models.TransferIntent) error {
	args := m.Called(intent)
	return args.Error(0)
}

// Close мок для Close
func (m *MockProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}
