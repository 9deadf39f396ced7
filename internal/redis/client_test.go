package redis

import (
	"context"
	"testing"
	"time"

	"bank-settlement-engine/internal/config"
	"bank-settlement-engine/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Host: mr.Host(),
			Port: mr.Port(),
		},
	}

	client, err := NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestNewClient_Unavailable(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{Host: "127.0.0.1", Port: "1"},
	}

	_, err := NewClient(cfg)
	assert.Error(t, err)
}

func TestClient_SaveAndGetOutcome(t *testing.T) {
	client, mr := setupTestRedis(t)

	outcome := &models.SettlementOutcome{
		TransactionID: 17,
		Status:        string(models.StatusFailed),
		Reason:        "insufficient balance",
		SettledAt:     time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, client.SaveOutcome(outcome))

	saved, err := client.GetOutcome(17)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, outcome.Status, saved.Status)
	assert.Equal(t, outcome.Reason, saved.Reason)
	assert.True(t, outcome.SettledAt.Equal(saved.SettledAt))

	// Проверяем TTL
	assert.Equal(t, time.Hour, mr.TTL("transaction:17:outcome"))

	// После истечения TTL итог пропадает
	mr.FastForward(2 * time.Hour)
	gone, err := client.GetOutcome(17)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestClient_GetOutcome_NotFound(t *testing.T) {
	client, _ := setupTestRedis(t)

	outcome, err := client.GetOutcome(404)
	require.NoError(t, err)
	assert.Nil(t, outcome)
}

func TestClient_SettlementStats(t *testing.T) {
	client, _ := setupTestRedis(t)

	require.NoError(t, client.IncrementSettlementStats("success"))
	require.NoError(t, client.IncrementSettlementStats("success"))
	require.NoError(t, client.IncrementSettlementStats("failed"))

	stats, err := client.GetSettlementStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["success"])
	assert.Equal(t, int64(1), stats["failed"])
}

func TestClient_ClearSettlementData(t *testing.T) {
	client, mr := setupTestRedis(t)

	require.NoError(t, client.SaveOutcome(&models.SettlementOutcome{TransactionID: 1, Status: string(models.StatusSuccess)}))
	require.NoError(t, client.IncrementSettlementStats("success"))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, client.ClearSettlementData())

	assert.False(t, mr.Exists("transaction:1:outcome"))
	assert.False(t, mr.Exists("settlement_stats:success"))
	assert.True(t, mr.Exists("unrelated"))
}

func TestClient_PublishSubscribe(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "ws_events")
	defer sub.Close()

	// Ждем подтверждения подписки
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, client.Publish(ctx, "ws_events", []byte(`{"type":"low_balance"}`)))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, `{"type":"low_balance"}`, msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestClient_TryLock(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	unlock, ok, err := client.TryLock(ctx, "settlement-sweep", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// Повторная попытка, пока блокировка занята
	_, ok, err = client.TryLock(ctx, "settlement-sweep", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	unlock()

	unlock, ok, err = client.TryLock(ctx, "settlement-sweep", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	unlock()
}
