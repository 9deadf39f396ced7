package transferapi

import (
	"errors"
	"log"

	"bank-settlement-engine/internal/bootstrap"
	"bank-settlement-engine/internal/config"
	"bank-settlement-engine/internal/kafka"
	"bank-settlement-engine/internal/redis"
	"bank-settlement-engine/internal/services"
	"bank-settlement-engine/internal/storage"
)

// Dependencies содержит все зависимости сервиса приема переводов
type Dependencies struct {
	Store              storage.Store
	RedisClient        *redis.Client
	KafkaProducer      kafka.Producer
	TransactionService services.TransactionService
}

// InitializeDependencies инициализирует все зависимости сервиса приема переводов
func InitializeDependencies(cfg *config.Config) (*Dependencies, error) {
	store, err := bootstrap.OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	// Инициализация Kafka Producer
	log.Println("Connecting to Kafka...")
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	log.Println("Kafka producer connected successfully")

	deps := &Dependencies{
		Store:         store,
		KafkaProducer: producer,
	}

	// Redis нужен только для кэша итогов в GET /transactions/:id
	deps.RedisClient = bootstrap.ConnectRedis(cfg)
	if deps.RedisClient != nil {
		deps.TransactionService = services.NewTransactionServiceWithRedis(store, producer, deps.RedisClient)
	} else {
		deps.TransactionService = services.NewTransactionService(store, producer)
	}

	return deps, nil
}

// Close закрывает все соединения
func (d *Dependencies) Close() error {
	var errs []error
	if d.KafkaProducer != nil {
		errs = append(errs, d.KafkaProducer.Close())
	}
	if d.RedisClient != nil {
		errs = append(errs, d.RedisClient.Close())
	}
	if d.Store != nil {
		errs = append(errs, d.Store.Close())
	}
	return errors.Join(errs...)
}
