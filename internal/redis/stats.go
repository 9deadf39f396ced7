package redis

import (
	"context"
	"fmt"
	"strings"
)

const statsPrefix = "settlement_stats:"

// IncrementSettlementStats увеличивает счетчик итогов расчёта (success, failed)
func (c *Client) IncrementSettlementStats(status string) error {
	ctx := context.Background()
	return c.rdb.Incr(ctx, statsPrefix+status).Err()
}

// GetSettlementStats возвращает все счетчики итогов
func (c *Client) GetSettlementStats() (map[string]int64, error) {
	ctx := context.Background()
	stats := make(map[string]int64)

	iter := c.rdb.Scan(ctx, 0, statsPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		count, err := c.rdb.Get(ctx, key).Int64()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		stats[strings.TrimPrefix(key, statsPrefix)] = count
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan stats: %w", err)
	}

	return stats, nil
}
