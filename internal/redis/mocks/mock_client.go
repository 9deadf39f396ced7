package mocks

import (
	"context"
	"time"

	"bank-settlement-engine/internal/models"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockClientInterface является моком для redis.ClientInterface интерфейса
type MockClientInterface struct {
	mock.Mock
}

// SaveOutcome мок для SaveOutcome
func (m *MockClientInterface) SaveOutcome(outcome *models.SettlementOutcome) error {
	args := m.Called(outcome)
	return args.Error(0)
}

// GetOutcome мок для GetOutcome
func (m *MockClientInterface) GetOutcome(transactionID int64) (*models.SettlementOutcome, error) {
	args := m.Called(transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementOutcome), args.Error(1)
}

// IncrementSettlementStats мок для IncrementSettlementStats
func (m *MockClientInterface) IncrementSettlementStats(status string) error {
	args := m.Called(status)
	return args.Error(0)
}

// GetSettlementStats мок для GetSettlementStats
func (m *MockClientInterface) GetSettlementStats() (map[string]int64, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// ClearSettlementData мок для ClearSettlementData
func (m *MockClientInterface) ClearSettlementData() error {
	args := m.Called()
	return args.Error(0)
}

// Publish мок для Publish
func (m *MockClientInterface) Publish(ctx context.Context, channel string, payload []byte) error {
	args := m.Called(ctx, channel, payload)
	return args.Error(0)
}

// Subscribe мок для Subscribe
func (m *MockClientInterface) Subscribe(ctx context.Context, channel string) *redisv9.PubSub {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*redisv9.PubSub)
}

// TryLock мок для TryLock
func (m *MockClientInterface) TryLock(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	args := m.Called(ctx, name, ttl)
	var unlock func()
	if fn, ok := args.Get(0).(func()); ok {
		unlock = fn
	}
	return unlock, args.Bool(1), args.Error(2)
}

// Close мок для Close
func (m *MockClientInterface) Close() error {
	args := m.Called()
	return args.Error(0)
}
