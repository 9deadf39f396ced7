package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"bank-settlement-engine/internal/logger"
	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/storage"
)

const serviceName = "settlement-worker"

// Outcome - итог одного вызова Settle
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

const (
	ReasonAlreadySettled      = "already settled"
	ReasonTransactionNotFound = "transaction not found"
	ReasonAccountNotFound     = "account not found"
	ReasonInsufficientBalance = "insufficient balance"
	ReasonBalanceOverflow     = "balance overflow"
)

// Result описывает зафиксированное состояние после расчёта.
// Source/Dest - балансы после коммита, nil если счёт не найден.
type Result struct {
	Kind        models.SettlementKind
	Outcome     Outcome
	Reason      string
	Transaction *models.Transaction
	Source      *models.Account
	Dest        *models.Account
}

// Options - зависимости пост-коммитных эффектов. Любая может быть nil.
type Options struct {
	LowBalanceThreshold money.Amount
	Publisher           EventPublisher
	Notifier            Notifier
	Recorder            OutcomeRecorder
	// Dispatcher == nil - эффекты выполняются синхронно (CLI, тесты)
	Dispatcher *Dispatcher
}

// Worker переводит PENDING транзакции в терминальный статус
type Worker struct {
	store storage.LedgerStore
	opts  Options
	now   func() time.Time
}

func NewWorker(store storage.LedgerStore, opts Options) *Worker {
	return &Worker{
		store: store,
		opts:  opts,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Settle выполняет расчёт одной транзакции в одной единице работы:
// блокировка транзакции, проверка статуса, упорядоченная блокировка счетов,
// проверки, изменение балансов, статус и аудит, коммит, затем эффекты.
// Ошибка возвращается только для транзиентных сбоев, все изменения при этом откатываются.
func (w *Worker) Settle(ctx context.Context, intent *models.TransferIntent) (*Result, error) {
	if err := ValidateIntent(intent); err != nil {
		return nil, err
	}

	logger.LogEvent(logger.EventSettlementStarted, serviceName, "worker", map[string]interface{}{
		"transaction_id": intent.TransactionID,
	})

	uow, err := w.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin unit of work: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			rollback(uow)
		}
	}()

	txn, err := uow.LockTransaction(ctx, intent.TransactionID)
	if errors.Is(err, storage.ErrNotFound) {
		return w.skip(intent.TransactionID, ReasonTransactionNotFound), nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock transaction %d: %w", intent.TransactionID, err)
	}
	if txn.Status != models.StatusPending {
		return w.skip(txn.ID, ReasonAlreadySettled), nil
	}
	warnOnMismatch(intent, txn)

	res := &Result{Kind: models.KindTransfer, Transaction: txn}

	ids := []int64{txn.DestAccount}
	if txn.SrcAccount != nil {
		ids = append(ids, *txn.SrcAccount)
	}
	accounts, err := uow.LockAccounts(ctx, ids)
	if err != nil && !errors.Is(err, storage.ErrPartialNotFound) {
		return nil, fmt.Errorf("lock accounts for transaction %d: %w", txn.ID, err)
	}
	if txn.SrcAccount != nil {
		res.Source = accounts[*txn.SrcAccount]
	}
	res.Dest = accounts[txn.DestAccount]

	now := w.now()
	switch {
	case res.Source == nil || res.Dest == nil:
		err = w.fail(ctx, uow, res, ReasonAccountNotFound, now)
	case res.Source.Balance < txn.Amount:
		err = w.fail(ctx, uow, res, ReasonInsufficientBalance, now)
	default:
		err = w.transfer(ctx, uow, res, now)
	}
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction %d: %w", txn.ID, err)
	}
	committed = true

	w.logOutcome(res)
	w.afterCommit(res)
	return res, nil
}

// HandleMessage разбирает сырое сообщение очереди. Битое сообщение подтверждается без повтора.
func (w *Worker) HandleMessage(ctx context.Context, payload []byte) error {
	intent, err := DecodeIntent(payload)
	if err != nil {
		log.Printf("Dropping malformed settlement message: %v", err)
		return nil
	}
	logger.LogEvent(logger.EventKafkaReceived, serviceName, "consumer", map[string]interface{}{
		"transaction_id": intent.TransactionID,
	})
	return w.HandleIntent(ctx, intent)
}

// HandleIntent - обработчик сообщений очереди. Ошибка означает «повторить доставку».
func (w *Worker) HandleIntent(ctx context.Context, intent *models.TransferIntent) error {
	_, err := w.Settle(ctx, intent)
	if errors.Is(err, ErrInvalidMessage) {
		log.Printf("Dropping invalid settlement message: %v", err)
		return nil
	}
	if err != nil {
		logger.LogEvent(logger.EventSettlementRolledBack, serviceName, "worker", map[string]interface{}{
			"transaction_id": intent.TransactionID,
			"error":          err.Error(),
		})
		return err
	}
	return nil
}

func (w *Worker) transfer(ctx context.Context, uow storage.UnitOfWork, res *Result, now time.Time) error {
	txn, src, dest := res.Transaction, res.Source, res.Dest

	// перевод самому себе не меняет баланс, но проходит тот же путь
	if src.ID != dest.ID {
		newDest, err := dest.Balance.Add(txn.Amount)
		if err != nil {
			return w.fail(ctx, uow, res, ReasonBalanceOverflow, now)
		}
		src.Balance -= txn.Amount
		dest.Balance = newDest

		if err := uow.UpdateBalance(ctx, src.ID, src.Balance); err != nil {
			return fmt.Errorf("update balance of account %d: %w", src.ID, err)
		}
		if err := uow.UpdateBalance(ctx, dest.ID, dest.Balance); err != nil {
			return fmt.Errorf("update balance of account %d: %w", dest.ID, err)
		}
	}

	if err := uow.MarkTransaction(ctx, txn.ID, models.StatusSuccess, now); err != nil {
		return fmt.Errorf("mark transaction %d: %w", txn.ID, err)
	}
	message := fmt.Sprintf("Transaction #%d settled: %s from account %s to account %s",
		txn.ID, txn.Amount, src.AccountNumber, dest.AccountNumber)
	if err := uow.AppendAudit(ctx, models.AuditTransactionSuccess, message); err != nil {
		return fmt.Errorf("append audit for transaction %d: %w", txn.ID, err)
	}

	txn.Status = models.StatusSuccess
	txn.SettledAt = &now
	res.Outcome = OutcomeSuccess
	return nil
}

func (w *Worker) fail(ctx context.Context, uow storage.UnitOfWork, res *Result, reason string, now time.Time) error {
	txn := res.Transaction
	if err := uow.MarkTransaction(ctx, txn.ID, models.StatusFailed, now); err != nil {
		return fmt.Errorf("mark transaction %d: %w", txn.ID, err)
	}
	message := fmt.Sprintf("Transaction #%d failed: %s", txn.ID, reason)
	if err := uow.AppendAudit(ctx, models.AuditTransactionFailed, message); err != nil {
		return fmt.Errorf("append audit for transaction %d: %w", txn.ID, err)
	}

	txn.Status = models.StatusFailed
	txn.SettledAt = &now
	res.Outcome = OutcomeFailed
	res.Reason = reason
	return nil
}

func (w *Worker) skip(transactionID int64, reason string) *Result {
	log.Printf("Settlement skipped: transaction=%d reason=%s", transactionID, reason)
	logger.LogEvent(logger.EventSettlementSkipped, serviceName, "worker", map[string]interface{}{
		"transaction_id": transactionID,
		"reason":         reason,
	})
	return &Result{
		Kind:        models.KindTransfer,
		Outcome:     OutcomeSkipped,
		Reason:      reason,
		Transaction: &models.Transaction{ID: transactionID},
	}
}

func (w *Worker) logOutcome(res *Result) {
	data := map[string]interface{}{
		"transaction_id": res.Transaction.ID,
		"amount":         res.Transaction.Amount.String(),
		"kind":           string(res.Kind),
	}
	if res.Outcome == OutcomeFailed {
		data["reason"] = res.Reason
		log.Printf("Transaction %d failed: %s", res.Transaction.ID, res.Reason)
		logger.LogEvent(logger.EventSettlementFailed, serviceName, "worker", data)
		return
	}
	log.Printf("Transaction %d settled: amount=%s", res.Transaction.ID, res.Transaction.Amount)
	logger.LogEvent(logger.EventSettlementCommitted, serviceName, "worker", data)
}

// warnOnMismatch - поля сообщения только подсказка, авторитетна строка в БД
func warnOnMismatch(intent *models.TransferIntent, txn *models.Transaction) {
	amount, _ := money.FromDecimal(intent.Amount)
	src := int64(0)
	if txn.SrcAccount != nil {
		src = *txn.SrcAccount
	}
	if amount != txn.Amount || intent.SrcAccount != src || intent.DestAccount != txn.DestAccount {
		log.Printf("Message for transaction %d differs from stored row, using stored values", txn.ID)
	}
}

func rollback(uow storage.UnitOfWork) {
	if err := uow.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Printf("Failed to rollback unit of work: %v", err)
	}
}
