package fanout

import (
	"context"
	"fmt"
	"log"

	"bank-settlement-engine/internal/models"

	redisv9 "github.com/redis/go-redis/v9"
)

// PubSubClient - часть redis.ClientInterface, нужная для fanout
type PubSubClient interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) *redisv9.PubSub
}

type RedisPublisher struct {
	client  PubSubClient
	channel string
}

func NewRedisPublisher(client PubSubClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event *models.SettlementEvent) error {
	body, err := encode(event)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, body); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	return nil
}

// Close ничего не делает: соединением владеет redis.Client
func (p *RedisPublisher) Close() error { return nil }

type RedisListener struct {
	client  PubSubClient
	channel string
	target  Broadcaster
	ready   chan struct{}
}

func NewRedisListener(client PubSubClient, channel string, target Broadcaster) *RedisListener {
	return &RedisListener{
		client:  client,
		channel: channel,
		target:  target,
		ready:   make(chan struct{}),
	}
}

func (l *RedisListener) Ready() <-chan struct{} {
	return l.ready
}

func (l *RedisListener) Run(ctx context.Context) error {
	sub := l.client.Subscribe(ctx, l.channel)
	defer sub.Close()

	// Ждем подтверждения подписки, иначе ранние события потеряются
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", l.channel, err)
	}
	close(l.ready)
	log.Printf("Fanout listener subscribed to redis channel %s", l.channel)

	messages := sub.Channel()
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("redis subscription closed")
			}
			l.target.Broadcast([]byte(msg.Payload))
		case <-ctx.Done():
			return nil
		}
	}
}
