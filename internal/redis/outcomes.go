package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bank-settlement-engine/internal/models"

	redisv9 "github.com/redis/go-redis/v9"
)

const outcomeTTL = time.Hour

func outcomeKey(transactionID int64) string {
	return fmt.Sprintf("transaction:%d:outcome", transactionID)
}

// SaveOutcome сохраняет итог расчёта в Redis с TTL 1 час
func (c *Client) SaveOutcome(outcome *models.SettlementOutcome) error {
	ctx := context.Background()

	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	return c.rdb.Set(ctx, outcomeKey(outcome.TransactionID), data, outcomeTTL).Err()
}

// GetOutcome получает итог расчёта из Redis; nil, nil если ключа нет
func (c *Client) GetOutcome(transactionID int64) (*models.SettlementOutcome, error) {
	ctx := context.Background()

	data, err := c.rdb.Get(ctx, outcomeKey(transactionID)).Result()
	if errors.Is(err, redisv9.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome: %w", err)
	}

	var outcome models.SettlementOutcome
	if err := json.Unmarshal([]byte(data), &outcome); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outcome: %w", err)
	}

	return &outcome, nil
}
