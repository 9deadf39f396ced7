package settlement

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"bank-settlement-engine/internal/api/rest"
	"bank-settlement-engine/internal/config"
)

// StartSettlementService запускает воркер расчётов
func StartSettlementService() {
	cfg := config.Load()

	// Инициализация зависимостей
	deps, err := InitializeDependencies(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer deps.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() { deps.Hub.Run(ctx) })

	if deps.Listener != nil {
		run(func() {
			if err := deps.Listener.Run(ctx); err != nil {
				log.Printf("Fanout listener stopped: %v", err)
			}
		})
	}

	// Запуск Kafka consumer в отдельной горутине
	run(func() {
		log.Println("Starting Kafka consumer...")
		if err := deps.KafkaConsumer.Start(ctx); err != nil {
			log.Printf("Kafka consumer error: %v", err)
			cancel()
		}
	})

	if deps.Sweeper != nil {
		run(func() {
			log.Printf("Starting reconciliation sweep every %s", cfg.Sweep.Interval)
			deps.Sweeper.Run(ctx, cfg.Sweep.Interval)
		})
	}

	// Настройка REST API
	var stats rest.StatsSource
	if deps.RedisClient != nil {
		stats = deps.RedisClient
	}
	handlers := rest.NewNotificationHandlers(deps.NotificationService, deps.Hub, cfg.Auth.JWTSecret)
	router := rest.SetupSettlementRouter(handlers, cfg.Auth.JWTSecret, stats)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.SettlementAPIPort),
		Handler: router,
	}

	go func() {
		log.Printf("Settlement Worker API starting on port %d", cfg.Server.SettlementAPIPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Println("Shutting down services...")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	wg.Wait()

	log.Printf("Services exited, side effects dropped: %d", deps.Dispatcher.Dropped())
}
