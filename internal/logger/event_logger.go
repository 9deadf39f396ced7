package logger

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTransferReceived     EventType = "transfer_received"
	EventTransactionSaved     EventType = "transaction_saved"
	EventKafkaSent            EventType = "kafka_sent"
	EventKafkaReceived        EventType = "kafka_received"
	EventRedisSaved           EventType = "redis_saved"
	EventSettlementStarted    EventType = "settlement_started"
	EventSettlementCommitted  EventType = "settlement_committed"
	EventSettlementSkipped    EventType = "settlement_skipped"
	EventSettlementFailed     EventType = "settlement_failed"
	EventSettlementRolledBack EventType = "settlement_rolled_back"
	EventSideEffectDropped    EventType = "side_effect_dropped"
	EventFanoutPublished      EventType = "fanout_published"
	EventNotificationPushed   EventType = "notification_pushed"
	EventSweepRequeued        EventType = "sweep_requeued"
	EventAdminCredit          EventType = "admin_credit"
)

type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Service   string                 `json:"service"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Component string                 `json:"component"` // kafka, redis, postgres, rabbitmq...
}

// EventLogger - кольцевой журнал последних событий конвейера для /api/v1/events
type EventLogger struct {
	events  []Event
	mu      sync.RWMutex
	maxSize int
}

var globalLogger *EventLogger

func init() {
	globalLogger = NewEventLogger(1000) // Храним последние 1000 событий
}

func NewEventLogger(maxSize int) *EventLogger {
	return &EventLogger{
		events:  make([]Event, 0, maxSize),
		maxSize: maxSize,
	}
}

func LogEvent(eventType EventType, service string, component string, data map[string]interface{}) {
	globalLogger.LogEvent(eventType, service, component, data)
}

func (el *EventLogger) LogEvent(eventType EventType, service string, component string, data map[string]interface{}) {
	el.mu.Lock()
	defer el.mu.Unlock()

	el.events = append(el.events, Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Service:   service,
		Component: component,
		Timestamp: time.Now(),
		Data:      data,
	})

	// Ограничиваем размер
	if len(el.events) > el.maxSize {
		el.events = el.events[len(el.events)-el.maxSize:]
	}
}

func GetEvents(limit int) []Event {
	return globalLogger.GetEvents(limit)
}

// GetEvents возвращает последние limit событий (limit <= 0 - все)
func (el *EventLogger) GetEvents(limit int) []Event {
	return el.Filter(limit, "")
}

func FilterEvents(limit int, eventType EventType) []Event {
	return globalLogger.Filter(limit, eventType)
}

// Filter возвращает последние limit событий заданного типа в хронологическом порядке
func (el *EventLogger) Filter(limit int, eventType EventType) []Event {
	el.mu.RLock()
	defer el.mu.RUnlock()

	matched := make([]Event, 0, len(el.events))
	for _, event := range el.events {
		if eventType == "" || event.Type == eventType {
			matched = append(matched, event)
		}
	}

	if limit <= 0 || limit > len(matched) {
		limit = len(matched)
	}
	return matched[len(matched)-limit:]
}

func GetStats() map[string]interface{} {
	return globalLogger.GetStats()
}

func (el *EventLogger) GetStats() map[string]interface{} {
	el.mu.RLock()
	defer el.mu.RUnlock()

	componentStats := make(map[string]int)
	serviceStats := make(map[string]int)
	typeStats := make(map[string]int)

	for _, event := range el.events {
		componentStats[event.Component]++
		serviceStats[event.Service]++
		typeStats[string(event.Type)]++
	}

	return map[string]interface{}{
		"total_events": len(el.events),
		"components":   componentStats,
		"services":     serviceStats,
		"event_types":  typeStats,
	}
}

func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Alias:     (*Alias)(&e),
	})
}
