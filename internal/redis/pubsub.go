package redis

import (
	"context"

	redisv9 "github.com/redis/go-redis/v9"
)

// Publish отправляет сообщение всем подписчикам канала
func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.rdb.Publish(ctx, channel, payload).Err()
}

// Subscribe подписывается на канал; вызывающий закрывает PubSub
func (c *Client) Subscribe(ctx context.Context, channel string) *redisv9.PubSub {
	return c.rdb.Subscribe(ctx, channel)
}
