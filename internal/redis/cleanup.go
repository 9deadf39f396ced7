package redis

import (
	"context"
	"fmt"
)

// ClearSettlementData очищает кэш итогов и счетчики
func (c *Client) ClearSettlementData() error {
	ctx := context.Background()

	patterns := []string{
		"transaction:*",
		statsPrefix + "*",
	}

	for _, pattern := range patterns {
		iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return fmt.Errorf("failed to delete %s: %w", iter.Val(), err)
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to clear pattern %s: %w", pattern, err)
		}
	}

	return nil
}
