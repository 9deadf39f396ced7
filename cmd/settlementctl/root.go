package main

import (
	"fmt"
	"strings"

	"bank-settlement-engine/internal/bootstrap"
	"bank-settlement-engine/internal/config"
	"bank-settlement-engine/internal/fanout"
	"bank-settlement-engine/internal/notification"
	"bank-settlement-engine/internal/redis"
	"bank-settlement-engine/internal/settlement"
	"bank-settlement-engine/internal/storage"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfg *config.Config

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "settlementctl",
		Short:         "Operator tool for the settlement engine",
		Long:          `settlementctl applies migrations, replays and sweeps pending transfers, credits accounts and generates load.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("db-driver", "", "storage driver: postgres | sqlite")
	flags.String("db-dsn", "", "PostgreSQL connection string")
	flags.String("db-path", "", "SQLite database file")
	flags.StringSlice("kafka-brokers", nil, "Kafka brokers, comma separated")
	flags.Bool("no-redis", false, "do not connect to Redis")

	viper.BindPFlag("db.driver", flags.Lookup("db-driver"))
	viper.BindPFlag("db.dsn", flags.Lookup("db-dsn"))
	viper.BindPFlag("db.path", flags.Lookup("db-path"))
	viper.BindPFlag("kafka.brokers", flags.Lookup("kafka-brokers"))
	viper.BindPFlag("redis.disabled", flags.Lookup("no-redis"))

	rootCmd.AddCommand(
		newMigrateCmd(),
		newSweepCmd(),
		newReplayCmd(),
		newCreditCmd(),
		newStatusCmd(),
		newLoadgenCmd(),
	)
	return rootCmd
}

// initConfig загружает окружение сервисов и накладывает флаги и SETTLEMENTCTL_* переменные
func initConfig() error {
	viper.SetEnvPrefix("SETTLEMENTCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	cfg = config.Load()

	if v := viper.GetString("db.driver"); v != "" {
		cfg.DB.Driver = v
	}
	if v := viper.GetString("db.dsn"); v != "" {
		cfg.DB.DSN = v
	}
	if v := viper.GetString("db.path"); v != "" {
		cfg.DB.Path = v
	}
	if v := viper.GetStringSlice("kafka.brokers"); len(v) > 0 {
		cfg.Kafka.Brokers = v
	}
	if viper.GetBool("redis.disabled") {
		cfg.Redis.Enabled = false
	}

	switch cfg.DB.Driver {
	case "postgres", "sqlite", "":
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.DB.Driver)
	}
}

// newWorker собирает воркер с синхронными эффектами: в CLI нет фонового диспетчера и websocket клиентов
func newWorker(store storage.Store, redisClient *redis.Client) (*settlement.Worker, func(), error) {
	publisher, err := bootstrap.NewFanoutPublisher(cfg, redisClient)
	if err != nil {
		pterm.Warning.Printf("Fanout disabled: %v\n", err)
		publisher = fanout.NopPublisher{}
	}

	opts, err := bootstrap.WorkerOptions(cfg, redisClient, publisher, notification.NewEmitter(store, nil), nil)
	if err != nil {
		publisher.Close()
		return nil, nil, err
	}

	return settlement.NewWorker(store, opts), func() { publisher.Close() }, nil
}

// openLedger открывает хранилище и, если разрешено, Redis
func openLedger() (storage.Store, *redis.Client, func(), error) {
	store, err := bootstrap.OpenStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	redisClient := bootstrap.ConnectRedis(cfg)

	cleanup := func() {
		if redisClient != nil {
			redisClient.Close()
		}
		store.Close()
	}
	return store, redisClient, cleanup, nil
}

func printResult(res *settlement.Result) {
	rows := [][]string{
		{"Transaction", "Outcome", "Status", "Reason"},
		{fmt.Sprint(res.Transaction.ID), string(res.Outcome), string(res.Transaction.Status), res.Reason},
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	if res.Source != nil {
		pterm.Info.Printf("Account %d balance: %s\n", res.Source.ID, res.Source.Balance)
	}
	if res.Dest != nil {
		pterm.Info.Printf("Account %d balance: %s\n", res.Dest.ID, res.Dest.Balance)
	}
}
