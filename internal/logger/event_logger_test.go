package logger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventLogger(t *testing.T) {
	logger := NewEventLogger(100)
	require.NotNil(t, logger)
	assert.Equal(t, 100, logger.maxSize)
	assert.Empty(t, logger.events)
}

func TestEventLogger_LogEvent(t *testing.T) {
	logger := NewEventLogger(100)

	data := map[string]interface{}{
		"transaction_id": int64(42),
		"amount":         "150.00",
	}

	logger.LogEvent(EventSettlementCommitted, "settlement-worker", "postgres", data)

	require.Len(t, logger.events, 1)
	event := logger.events[0]
	assert.Equal(t, EventSettlementCommitted, event.Type)
	assert.Equal(t, "settlement-worker", event.Service)
	assert.Equal(t, "postgres", event.Component)
	assert.Equal(t, data, event.Data)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestEventLogger_LogEvent_MaxSize(t *testing.T) {
	logger := NewEventLogger(3)

	// Добавляем больше событий, чем maxSize
	for i := 0; i < 5; i++ {
		logger.LogEvent(EventKafkaReceived, "settlement-worker", "kafka", map[string]interface{}{"index": i})
	}

	// Должны остаться только последние 3 события
	require.Len(t, logger.events, 3)
	assert.Equal(t, 2, logger.events[0].Data["index"])
	assert.Equal(t, 4, logger.events[2].Data["index"])
}

func TestEventLogger_GetEvents(t *testing.T) {
	logger := NewEventLogger(100)

	for i := 0; i < 10; i++ {
		logger.LogEvent(EventTransferReceived, "transfer-api", "api", map[string]interface{}{"index": i})
	}

	assert.Len(t, logger.GetEvents(0), 10)
	assert.Len(t, logger.GetEvents(50), 10)

	// Возвращаются последние события
	events := logger.GetEvents(5)
	require.Len(t, events, 5)
	assert.Equal(t, 5, events[0].Data["index"])
	assert.Equal(t, 9, events[4].Data["index"])
}

func TestEventLogger_Filter(t *testing.T) {
	logger := NewEventLogger(100)

	logger.LogEvent(EventSettlementCommitted, "settlement-worker", "postgres", map[string]interface{}{"n": 1})
	logger.LogEvent(EventSettlementFailed, "settlement-worker", "postgres", map[string]interface{}{"n": 2})
	logger.LogEvent(EventSettlementCommitted, "settlement-worker", "postgres", map[string]interface{}{"n": 3})

	committed := logger.Filter(0, EventSettlementCommitted)
	require.Len(t, committed, 2)
	assert.Equal(t, 3, committed[1].Data["n"])

	assert.Len(t, logger.Filter(1, EventSettlementCommitted), 1)
	assert.Empty(t, logger.Filter(0, EventSweepRequeued))
}

func TestEventLogger_GetStats(t *testing.T) {
	logger := NewEventLogger(100)

	logger.LogEvent(EventTransferReceived, "transfer-api", "api", map[string]interface{}{})
	logger.LogEvent(EventTransactionSaved, "transfer-api", "postgres", map[string]interface{}{})
	logger.LogEvent(EventTransferReceived, "settlement-worker", "api", map[string]interface{}{})

	stats := logger.GetStats()
	assert.Equal(t, 3, stats["total_events"])

	components, ok := stats["components"].(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 2, components["api"])
	assert.Equal(t, 1, components["postgres"])

	services, ok := stats["services"].(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 2, services["transfer-api"])

	eventTypes, ok := stats["event_types"].(map[string]int)
	require.True(t, ok)
	assert.Equal(t, 2, eventTypes[string(EventTransferReceived)])
}

func TestLogEvent_Global(t *testing.T) {
	LogEvent(EventSweepRequeued, "settlement-worker", "sweep", map[string]interface{}{"count": 3})

	events := GetEvents(1)
	require.Len(t, events, 1)
	assert.Equal(t, EventSweepRequeued, events[0].Type)
	assert.NotEmpty(t, FilterEvents(0, EventSweepRequeued))
	assert.Contains(t, GetStats(), "total_events")
}

func TestEvent_MarshalJSON(t *testing.T) {
	event := Event{
		ID:        "test-id",
		Type:      EventFanoutPublished,
		Service:   "settlement-worker",
		Component: "rabbitmq",
		Timestamp: time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC),
		Data:      map[string]interface{}{"key": "value"},
	}

	jsonData, err := event.MarshalJSON()
	require.NoError(t, err)

	// timestamp в формате RFC3339
	assert.Contains(t, string(jsonData), "2024-01-15T14:30:00Z")
	assert.Contains(t, string(jsonData), `"type":"fanout_published"`)
}

func TestEventLogger_ConcurrentAccess(t *testing.T) {
	logger := NewEventLogger(1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				logger.LogEvent(EventKafkaReceived, "test", "test", map[string]interface{}{"goroutine": index, "event": j})
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, logger.GetEvents(0), 100)
}
