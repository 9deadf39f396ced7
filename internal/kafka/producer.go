package kafka

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"bank-settlement-engine/internal/config"
	"bank-settlement-engine/internal/logger"
	"bank-settlement-engine/internal/models"

	"github.com/IBM/sarama"
)

type ProducerImpl struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(cfg *config.Config) (Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Println("Kafka producer created successfully")
	return NewProducerWith(producer, cfg.Kafka.TransferTopic), nil
}

// NewProducerWith оборачивает готовый SyncProducer (используется в тестах с sarama/mocks)
func NewProducerWith(producer sarama.SyncProducer, topic string) *ProducerImpl {
	return &ProducerImpl{
		producer: producer,
		topic:    topic,
	}
}

func (p *ProducerImpl) SendTransferIntent(intent *models.TransferIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(strconv.FormatInt(intent.TransactionID, 10)),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	logger.LogEvent(logger.EventKafkaSent, "kafka-producer", "producer", map[string]interface{}{
		"transaction_id": intent.TransactionID,
		"topic":          p.topic,
		"partition":      partition,
		"offset":         offset,
	})
	log.Printf("Transfer %d sent to topic %s, partition %d, offset %d", intent.TransactionID, p.topic, partition, offset)
	return nil
}

func (p *ProducerImpl) Close() error {
	return p.producer.Close()
}
