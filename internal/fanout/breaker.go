package fanout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bank-settlement-engine/internal/models"

	"github.com/sony/gobreaker"
)

// BreakerSettings - параметры автомата для публикаций
type BreakerSettings struct {
	ConsecutiveFailures uint32
	Timeout             time.Duration
}

// DefaultBreakerSettings: 5 ошибок подряд размыкают цепь на 30 секунд
var DefaultBreakerSettings = BreakerSettings{
	ConsecutiveFailures: 5,
	Timeout:             30 * time.Second,
}

// BreakerPublisher отбрасывает публикации, пока брокер недоступен
type BreakerPublisher struct {
	next    Publisher
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerPublisher(name string, next Publisher, settings BreakerSettings) *BreakerPublisher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "fanout-" + name,
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &BreakerPublisher{next: next, breaker: cb}
}

func (p *BreakerPublisher) Publish(ctx context.Context, event *models.SettlementEvent) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.next.Publish(ctx, event)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("fanout unavailable, %s dropped: %w", event.Type, err)
	}
	return err
}

// State возвращает текущее состояние автомата
func (p *BreakerPublisher) State() gobreaker.State {
	return p.breaker.State()
}

func (p *BreakerPublisher) Close() error {
	return p.next.Close()
}
