package fanout

import (
	"context"
	"encoding/json"
	"fmt"

	"bank-settlement-engine/internal/models"
)

// Publisher рассылает события расчёта всем подписчикам дашбордов
type Publisher interface {
	Publish(ctx context.Context, event *models.SettlementEvent) error
	Close() error
}

// Broadcaster получает сырые события из канала fanout (реализуется realtime.Hub)
type Broadcaster interface {
	Broadcast(payload []byte)
}

// Listener пересылает события из канала fanout в Broadcaster до отмены ctx
type Listener interface {
	Run(ctx context.Context) error
	Ready() <-chan struct{}
}

// NopPublisher используется, когда fanout отключен
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *models.SettlementEvent) error { return nil }
func (NopPublisher) Close() error                                            { return nil }

func encode(event *models.SettlementEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}
	return data, nil
}
