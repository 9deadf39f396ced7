package kafka

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"bank-settlement-engine/internal/config"

	"github.com/IBM/sarama"
)

type ConsumerImpl struct {
	groups  []sarama.ConsumerGroup
	topic   string
	handler *consumerGroupHandler
}

// NewConsumer создает cfg.Settlement.Workers членов одной consumer group.
// Каждый член обрабатывает свои партиции независимо.
func NewConsumer(cfg *config.Config, handler MessageHandler) (Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Return.Errors = true
	config.Version = sarama.V2_8_0_0

	workers := cfg.Settlement.Workers
	if workers < 1 {
		workers = 1
	}

	groups := make([]sarama.ConsumerGroup, 0, workers)
	for i := 0; i < workers; i++ {
		group, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroupID, config)
		if err != nil {
			for _, g := range groups {
				g.Close()
			}
			return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
		}
		groups = append(groups, group)
	}

	log.Printf("Kafka consumer group %s created with %d members", cfg.Kafka.ConsumerGroupID, workers)
	return &ConsumerImpl{
		groups:  groups,
		topic:   cfg.Kafka.TransferTopic,
		handler: newConsumerGroupHandler(handler, cfg.Settlement.MaxAttempts, cfg.Settlement.RetryDelay),
	}, nil
}

func (c *ConsumerImpl) Start(ctx context.Context) error {
	topics := []string{c.topic}

	wg := &sync.WaitGroup{}
	for i, group := range c.groups {
		wg.Add(2)

		go func(member int, group sarama.ConsumerGroup) {
			defer wg.Done()
			for {
				// Consume возвращается при ребалансе или после отказа от партиции
				if err := group.Consume(ctx, topics, c.handler); err != nil {
					if errors.Is(err, sarama.ErrClosedConsumerGroup) {
						return
					}
					log.Printf("Error from consumer %d: %v", member, err)
				}
				if ctx.Err() != nil {
					return
				}
			}
		}(i, group)

		go func(group sarama.ConsumerGroup) {
			defer wg.Done()
			for {
				select {
				case err, ok := <-group.Errors():
					if !ok {
						return
					}
					log.Printf("Consumer error: %v", err)
				case <-ctx.Done():
					return
				}
			}
		}(group)
	}

	<-ctx.Done()
	log.Println("Consumer context cancelled, shutting down...")
	wg.Wait()
	return c.Close()
}

func (c *ConsumerImpl) Close() error {
	var errs []error
	for _, group := range c.groups {
		if err := group.Close(); err != nil && !errors.Is(err, sarama.ErrClosedConsumerGroup) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type consumerGroupHandler struct {
	handler     MessageHandler
	maxAttempts int
	retryDelay  time.Duration
}

func newConsumerGroupHandler(handler MessageHandler, maxAttempts int, retryDelay time.Duration) *consumerGroupHandler {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &consumerGroupHandler{
		handler:     handler,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim подтверждает сообщение только после успешной обработки.
// Если повторы исчерпаны, сессия завершается без MarkMessage, и группа доставит сообщение заново.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}

			if err := h.process(session.Context(), message); err != nil {
				return fmt.Errorf("partition %d offset %d: %w", message.Partition, message.Offset, err)
			}

			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) process(ctx context.Context, message *sarama.ConsumerMessage) error {
	var err error
	for attempt := 1; attempt <= h.maxAttempts; attempt++ {
		if err = h.handler(ctx, message.Value); err == nil {
			return nil
		}

		log.Printf("Settlement attempt %d/%d failed for offset %d: %v", attempt, h.maxAttempts, message.Offset, err)
		if attempt == h.maxAttempts {
			break
		}

		select {
		case <-time.After(time.Duration(attempt) * h.retryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
