package bootstrap

import (
	"fmt"
	"log"

	"bank-settlement-engine/internal/config"
	"bank-settlement-engine/internal/fanout"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/redis"
	"bank-settlement-engine/internal/settlement"
	"bank-settlement-engine/internal/storage"
	"bank-settlement-engine/internal/storage/postgres"
	"bank-settlement-engine/internal/storage/sqlite"
)

// OpenStore открывает хранилище, выбранное DB_DRIVER
func OpenStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.DB.Driver {
	case "postgres":
		s, err := postgres.NewConnection(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite", "":
		s, err := sqlite.NewConnection(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DB.Driver)
	}
}

// ConnectRedis возвращает nil, если Redis отключен или недоступен.
// Без Redis теряются только кэш итогов, счетчики и блокировка sweep.
func ConnectRedis(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		log.Println("Redis disabled by configuration")
		return nil
	}

	log.Println("Connecting to Redis...")
	client, err := redis.NewClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis (outcome cache and sweep lock disabled): %v", err)
		return nil
	}
	log.Println("Redis connection established")
	return client
}

// NewFanoutPublisher создает публикатор событий по FANOUT_DRIVER, обернутый в circuit breaker
func NewFanoutPublisher(cfg *config.Config, redisClient *redis.Client) (fanout.Publisher, error) {
	var next fanout.Publisher
	switch cfg.Fanout.Driver {
	case "rabbitmq":
		p, err := fanout.NewRabbitPublisher(cfg.Fanout.RabbitMQURL, cfg.Fanout.Exchange)
		if err != nil {
			return nil, err
		}
		next = p
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("FANOUT_DRIVER=redis requires a Redis connection")
		}
		next = fanout.NewRedisPublisher(redisClient, cfg.Fanout.RedisChannel)
	case "none", "":
		return fanout.NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown FANOUT_DRIVER %q", cfg.Fanout.Driver)
	}

	return fanout.NewBreakerPublisher(cfg.Fanout.Driver, next, fanout.DefaultBreakerSettings), nil
}

// WorkerOptions собирает зависимости эффектов воркера. nil-зависимости остаются нулевыми интерфейсами.
func WorkerOptions(cfg *config.Config, redisClient *redis.Client, publisher fanout.Publisher, notifier settlement.Notifier, dispatcher *settlement.Dispatcher) (settlement.Options, error) {
	threshold, err := money.Parse(cfg.Settlement.LowBalanceThreshold)
	if err != nil {
		return settlement.Options{}, fmt.Errorf("invalid LOW_BALANCE_THRESHOLD: %w", err)
	}

	opts := settlement.Options{
		LowBalanceThreshold: threshold,
		Notifier:            notifier,
		Dispatcher:          dispatcher,
	}
	if publisher != nil {
		opts.Publisher = publisher
	}
	if redisClient != nil {
		opts.Recorder = redisClient
	}
	return opts, nil
}
