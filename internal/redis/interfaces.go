package redis

import (
	"context"
	"time"

	"bank-settlement-engine/internal/models"

	redisv9 "github.com/redis/go-redis/v9"
)

// ClientInterface определяет интерфейс для работы с Redis
// Это позволяет легко создавать моки для тестирования
// Реализуется типом Client
type ClientInterface interface {
	// SaveOutcome сохраняет итог расчёта
	SaveOutcome(outcome *models.SettlementOutcome) error

	// GetOutcome получает итог расчёта
	GetOutcome(transactionID int64) (*models.SettlementOutcome, error)

	// IncrementSettlementStats увеличивает счетчик итогов
	IncrementSettlementStats(status string) error

	// GetSettlementStats возвращает счетчики итогов
	GetSettlementStats() (map[string]int64, error)

	// ClearSettlementData очищает кэш и счетчики
	ClearSettlementData() error

	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) *redisv9.PubSub

	// TryLock берет распределенную блокировку без ожидания
	TryLock(ctx context.Context, name string, ttl time.Duration) (unlock func(), ok bool, err error)

	// Close закрывает соединение с Redis
	Close() error
}

// Убеждаемся, что Client реализует ClientInterface
var _ ClientInterface = (*Client)(nil)
