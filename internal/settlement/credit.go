package settlement

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bank-settlement-engine/internal/logger"
	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/storage"
)

// ErrInvalidAmount - сумма зачисления должна быть положительной
var ErrInvalidAmount = errors.New("amount must be positive")

// Credit зачисляет средства на счёт администратором (выдача кредита).
// Использует тот же протокол блокировок, что и Settle; транзакция создается сразу в SUCCESS без счёта-источника.
func (w *Worker) Credit(ctx context.Context, accountID int64, amount money.Amount, reason string) (*Result, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

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

	accounts, err := uow.LockAccounts(ctx, []int64{accountID})
	if errors.Is(err, storage.ErrPartialNotFound) {
		return nil, fmt.Errorf("account %d: %w", accountID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock account %d: %w", accountID, err)
	}
	acc := accounts[accountID]

	before := acc.Balance
	after, err := before.Add(amount)
	if err != nil {
		return nil, fmt.Errorf("credit account %d: %w", accountID, err)
	}
	if err := uow.UpdateBalance(ctx, accountID, after); err != nil {
		return nil, fmt.Errorf("update balance of account %d: %w", accountID, err)
	}
	acc.Balance = after

	now := w.now()
	txn := &models.Transaction{
		DestAccount: accountID,
		Amount:      amount,
		Status:      models.StatusSuccess,
		CreatedAt:   now,
		SettledAt:   &now,
	}
	txn.ID, err = uow.InsertTransaction(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("insert credit transaction: %w", err)
	}

	message := fmt.Sprintf("Transaction #%d credited: %s disbursed to account %s, balance %s -> %s. Reason: %s",
		txn.ID, amount, acc.AccountNumber, before, after, reason)
	if err := uow.AppendAudit(ctx, models.AuditLoanDisbursal, message); err != nil {
		return nil, fmt.Errorf("append audit for credit: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit credit: %w", err)
	}
	committed = true

	log.Printf("Account %d credited with %s, balance %s -> %s", accountID, amount, before, after)
	logger.LogEvent(logger.EventAdminCredit, serviceName, "worker", map[string]interface{}{
		"transaction_id": txn.ID,
		"account_id":     accountID,
		"amount":         amount.String(),
		"reason":         reason,
	})

	res := &Result{
		Kind:        models.KindCredit,
		Outcome:     OutcomeSuccess,
		Reason:      reason,
		Transaction: txn,
		Dest:        acc,
	}
	w.afterCommit(res)
	return res, nil
}
