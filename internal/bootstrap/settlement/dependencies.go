package settlement

import (
	"errors"
	"fmt"
	"log"

	"bank-settlement-engine/internal/bootstrap"
	"bank-settlement-engine/internal/config"
	"bank-settlement-engine/internal/fanout"
	"bank-settlement-engine/internal/kafka"
	"bank-settlement-engine/internal/notification"
	"bank-settlement-engine/internal/realtime"
	"bank-settlement-engine/internal/redis"
	"bank-settlement-engine/internal/services"
	engine "bank-settlement-engine/internal/settlement"
	"bank-settlement-engine/internal/storage"
	"bank-settlement-engine/internal/sweep"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Dependencies содержит все зависимости воркера расчётов
type Dependencies struct {
	Store               storage.Store
	RedisClient         *redis.Client // nil, если Redis недоступен
	Hub                 *realtime.Hub
	Dispatcher          *engine.Dispatcher
	Publisher           fanout.Publisher
	Listener            fanout.Listener // nil при FANOUT_DRIVER=none
	Worker              *engine.Worker
	KafkaConsumer       kafka.Consumer
	KafkaProducer       kafka.Producer // нужен только sweep
	Sweeper             *sweep.Sweeper
	NotificationService services.NotificationService

	listenerConn *amqp.Connection
}

// InitializeDependencies инициализирует все зависимости воркера расчётов.
// При ошибке уже открытые соединения закрываются.
func InitializeDependencies(cfg *config.Config) (_ *Dependencies, err error) {
	deps := &Dependencies{}
	defer func() {
		if err != nil {
			deps.Close()
		}
	}()

	deps.Store, err = bootstrap.OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	deps.RedisClient = bootstrap.ConnectRedis(cfg)

	deps.Hub = realtime.NewHub()

	deps.Publisher, err = bootstrap.NewFanoutPublisher(cfg, deps.RedisClient)
	if err != nil {
		return nil, err
	}
	if err := deps.initListener(cfg); err != nil {
		return nil, err
	}

	deps.Dispatcher = engine.NewDispatcher(cfg.Settlement.SideEffectWorkers, cfg.Settlement.SideEffectQueueSize)
	emitter := notification.NewEmitter(deps.Store, deps.Hub)

	opts, err := bootstrap.WorkerOptions(cfg, deps.RedisClient, deps.Publisher, emitter, deps.Dispatcher)
	if err != nil {
		return nil, err
	}
	deps.Worker = engine.NewWorker(deps.Store, opts)
	deps.NotificationService = services.NewNotificationService(deps.Store)

	// Инициализация Kafka Consumer
	log.Println("Connecting to Kafka...")
	deps.KafkaConsumer, err = kafka.NewConsumer(cfg, deps.Worker.HandleMessage)
	if err != nil {
		return nil, err
	}
	log.Println("Kafka consumer connected successfully")

	if cfg.Sweep.Enabled {
		deps.KafkaProducer, err = kafka.NewProducer(cfg)
		if err != nil {
			return nil, fmt.Errorf("sweep producer: %w", err)
		}
		var locker sweep.Locker
		if deps.RedisClient != nil {
			locker = deps.RedisClient
		}
		deps.Sweeper = sweep.NewSweeper(deps.Store, deps.KafkaProducer, locker, cfg.Sweep.PendingAge, cfg.Sweep.BatchSize)
	}

	return deps, nil
}

// initListener подписывает hub на канал fanout, чтобы каждая реплика видела события всех воркеров
func (d *Dependencies) initListener(cfg *config.Config) error {
	switch cfg.Fanout.Driver {
	case "rabbitmq":
		conn, ch, err := fanout.Dial(cfg.Fanout.RabbitMQURL)
		if err != nil {
			return err
		}
		d.listenerConn = conn
		d.Listener = fanout.NewRabbitListener(ch, cfg.Fanout.Exchange, d.Hub)
	case "redis":
		d.Listener = fanout.NewRedisListener(d.RedisClient, cfg.Fanout.RedisChannel, d.Hub)
	}
	return nil
}

// Close закрывает все соединения. Dispatcher закрывается после consumer,
// чтобы принятые эффекты успели выполниться.
func (d *Dependencies) Close() error {
	var errs []error
	if d.KafkaConsumer != nil {
		errs = append(errs, d.KafkaConsumer.Close())
	}
	if d.Dispatcher != nil {
		d.Dispatcher.Close()
	}
	if d.KafkaProducer != nil {
		errs = append(errs, d.KafkaProducer.Close())
	}
	if d.Publisher != nil {
		errs = append(errs, d.Publisher.Close())
	}
	if d.listenerConn != nil {
		errs = append(errs, d.listenerConn.Close())
	}
	if d.RedisClient != nil {
		errs = append(errs, d.RedisClient.Close())
	}
	if d.Store != nil {
		errs = append(errs, d.Store.Close())
	}
	return errors.Join(errs...)
}
