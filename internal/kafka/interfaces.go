package kafka

import (
	"context"

	"bank-settlement-engine/internal/models"
)

// Producer определяет интерфейс для отправки сообщений в Kafka
type Producer interface {
	// SendTransferIntent ставит перевод в очередь расчёта. Ключ сообщения - id транзакции.
	SendTransferIntent(intent *models.TransferIntent) error

	Close() error
}

// MessageHandler обрабатывает одно сообщение. Ошибка означает временный сбой, сообщение будет повторено.
type MessageHandler func(ctx context.Context, payload []byte) error

// Consumer определяет интерфейс потребителя очереди расчётов
type Consumer interface {
	// Start блокируется до отмены ctx
	Start(ctx context.Context) error

	Close() error
}
