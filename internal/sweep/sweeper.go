package sweep

import (
	"context"
	"fmt"
	"log"
	"time"

	"bank-settlement-engine/internal/kafka"
	"bank-settlement-engine/internal/logger"
	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/storage"
)

const lockName = "settlement-sweep"

// Locker - распределенная блокировка одного прохода (реализуется redis.Client)
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (unlock func(), ok bool, err error)
}

// Sweeper повторно ставит в очередь PENDING транзакции, которые не были рассчитаны.
// Повтор безопасен: уже рассчитанная транзакция пропускается воркером.
type Sweeper struct {
	store      storage.LedgerStore
	producer   kafka.Producer
	locker     Locker
	pendingAge time.Duration
	batchSize  int
	now        func() time.Time
}

// NewSweeper создает sweeper; locker может быть nil, тогда блокировка не берется
func NewSweeper(store storage.LedgerStore, producer kafka.Producer, locker Locker, pendingAge time.Duration, batchSize int) *Sweeper {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Sweeper{
		store:      store,
		producer:   producer,
		locker:     locker,
		pendingAge: pendingAge,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

// SweepOnce выполняет один проход и возвращает количество повторно отправленных транзакций
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	if s.locker != nil {
		unlock, ok, err := s.locker.TryLock(ctx, lockName, s.pendingAge)
		if err != nil {
			return 0, fmt.Errorf("failed to acquire sweep lock: %w", err)
		}
		if !ok {
			log.Println("Sweep skipped: another replica holds the lock")
			return 0, nil
		}
		defer unlock()
	}

	cutoff := s.now().Add(-s.pendingAge)
	pending, err := s.store.ListPendingBefore(ctx, cutoff, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending transactions: %w", err)
	}

	requeued := 0
	for _, txn := range pending {
		if err := s.Requeue(txn); err != nil {
			log.Printf("Failed to requeue transaction %d: %v", txn.ID, err)
			continue
		}
		requeued++
	}

	if requeued > 0 {
		log.Printf("Sweep requeued %d of %d pending transactions", requeued, len(pending))
	}
	return requeued, nil
}

// Requeue отправляет сообщение для транзакции заново
func (s *Sweeper) Requeue(txn *models.Transaction) error {
	if txn.SrcAccount == nil {
		return fmt.Errorf("transaction %d has no source account", txn.ID)
	}

	intent := &models.TransferIntent{
		TransactionID: txn.ID,
		SrcAccount:    *txn.SrcAccount,
		DestAccount:   txn.DestAccount,
		Amount:        txn.Amount.Decimal(),
	}
	if err := s.producer.SendTransferIntent(intent); err != nil {
		return err
	}

	logger.LogEvent(logger.EventSweepRequeued, "sweeper", "sweep", map[string]interface{}{
		"transaction_id": txn.ID,
		"created_at":     txn.CreatedAt,
	})
	return nil
}

// Run запускает проходы с интервалом до отмены ctx
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				log.Printf("Sweep failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
