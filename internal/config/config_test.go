package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "ledger.transfers.requested", cfg.Kafka.TransferTopic)
	assert.Equal(t, "ws_events", cfg.Fanout.Exchange)
	assert.Equal(t, "1000.00", cfg.Settlement.LowBalanceThreshold)
	assert.Equal(t, 5, cfg.Settlement.MaxAttempts)
	assert.Equal(t, 8080, cfg.Server.TransferAPIPort)
	assert.Equal(t, 8081, cfg.Server.SettlementAPIPort)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("SETTLEMENT_WORKERS", "8")
	t.Setenv("SETTLEMENT_RETRY_DELAY", "2s")
	t.Setenv("SWEEP_ENABLED", "false")
	t.Setenv("FANOUT_DRIVER", "redis")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 8, cfg.Settlement.Workers)
	assert.Equal(t, 2*time.Second, cfg.Settlement.RetryDelay)
	assert.False(t, cfg.Sweep.Enabled)
	assert.Equal(t, "redis", cfg.Fanout.Driver)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SETTLEMENT_WORKERS", "many")
	t.Setenv("SWEEP_INTERVAL", "soon")
	t.Setenv("REDIS_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 4, cfg.Settlement.Workers)
	assert.Equal(t, time.Minute, cfg.Sweep.Interval)
	assert.True(t, cfg.Redis.Enabled)
}
