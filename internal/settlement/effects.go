package settlement

import (
	"context"
	"log"
	"strings"

	"bank-settlement-engine/internal/logger"
	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
)

// EventPublisher рассылает события всем подписчикам дашбордов
type EventPublisher interface {
	Publish(ctx context.Context, event *models.SettlementEvent) error
}

// Notifier создает и доставляет персональные уведомления
type Notifier interface {
	NotifySettlement(ctx context.Context, notice *models.SettlementNotice) error
}

// OutcomeRecorder кэширует итог и ведет счетчики
type OutcomeRecorder interface {
	SaveOutcome(outcome *models.SettlementOutcome) error
	IncrementSettlementStats(status string) error
}

// Notice - снимок результата для эффектов, не разделяет память с Result
func (r *Result) Notice() *models.SettlementNotice {
	n := &models.SettlementNotice{
		Kind:          r.Kind,
		TransactionID: r.Transaction.ID,
		Status:        r.Transaction.Status,
		Reason:        r.Reason,
		Amount:        r.Transaction.Amount,
		SrcAccountID:  r.Transaction.SrcAccount,
		DestAccountID: r.Transaction.DestAccount,
		Source:        copyAccount(r.Source),
		Dest:          copyAccount(r.Dest),
	}
	if r.Transaction.SettledAt != nil {
		n.SettledAt = *r.Transaction.SettledAt
	}
	return n
}

// afterCommit передает эффекты диспетчеру; сбой эффекта не затрагивает расчёт
func (w *Worker) afterCommit(res *Result) {
	notice := res.Notice()
	job := func(ctx context.Context) { w.runEffects(ctx, notice) }

	if w.opts.Dispatcher == nil {
		job(context.Background())
		return
	}
	if !w.opts.Dispatcher.Submit(job) {
		log.Printf("Side effect queue full, dropping effects for transaction %d", notice.TransactionID)
		logger.LogEvent(logger.EventSideEffectDropped, serviceName, "dispatcher", map[string]interface{}{
			"transaction_id": notice.TransactionID,
		})
	}
}

func (w *Worker) runEffects(ctx context.Context, notice *models.SettlementNotice) {
	if w.opts.Recorder != nil {
		status := strings.ToLower(string(notice.Status))
		outcome := &models.SettlementOutcome{
			TransactionID: notice.TransactionID,
			Status:        string(notice.Status),
			Reason:        notice.Reason,
			SettledAt:     notice.SettledAt,
		}
		if err := w.opts.Recorder.SaveOutcome(outcome); err != nil {
			log.Printf("Failed to cache outcome of transaction %d: %v", notice.TransactionID, err)
		}
		if err := w.opts.Recorder.IncrementSettlementStats(status); err != nil {
			log.Printf("Failed to update settlement stats: %v", err)
		}
	}

	if w.opts.Publisher != nil {
		for _, event := range BuildEvents(notice, w.opts.LowBalanceThreshold) {
			if err := w.opts.Publisher.Publish(ctx, event); err != nil {
				log.Printf("Failed to publish %s for transaction %d: %v", event.Type, notice.TransactionID, err)
				continue
			}
			logger.LogEvent(logger.EventFanoutPublished, serviceName, "fanout", map[string]interface{}{
				"transaction_id": notice.TransactionID,
				"type":           event.Type,
			})
		}
	}

	if w.opts.Notifier != nil {
		if err := w.opts.Notifier.NotifySettlement(ctx, notice); err != nil {
			log.Printf("Failed to notify users about transaction %d: %v", notice.TransactionID, err)
		}
	}
}

// BuildEvents строит события fanout для зафиксированного итога.
// low_balance выпускается, если баланс отправителя после списания ниже порога.
func BuildEvents(n *models.SettlementNotice, lowBalanceThreshold money.Amount) []*models.SettlementEvent {
	amount := n.Amount
	dest := n.DestAccountID

	switch n.Status {
	case models.StatusSuccess:
		event := &models.SettlementEvent{
			Type:          models.EventTransactionSuccess,
			TransactionID: n.TransactionID,
			Src:           n.SrcAccountID,
			Dest:          &dest,
			Amount:        &amount,
			Timestamp:     n.SettledAt,
		}
		if n.Source != nil {
			balance := n.Source.Balance
			event.NewSrcBalance = &balance
		}
		if n.Dest != nil {
			balance := n.Dest.Balance
			event.NewDestBalance = &balance
		}
		events := []*models.SettlementEvent{event}

		if n.Kind == models.KindTransfer && n.Source != nil && n.Source.Balance < lowBalanceThreshold {
			accountID := n.Source.ID
			balance := n.Source.Balance
			events = append(events, &models.SettlementEvent{
				Type:          models.EventLowBalance,
				TransactionID: n.TransactionID,
				AccountID:     &accountID,
				Balance:       &balance,
				Timestamp:     n.SettledAt,
			})
		}
		return events

	case models.StatusFailed:
		return []*models.SettlementEvent{{
			Type:          models.EventTransactionFailed,
			TransactionID: n.TransactionID,
			Src:           n.SrcAccountID,
			Dest:          &dest,
			Amount:        &amount,
			Reason:        n.Reason,
			Timestamp:     n.SettledAt,
		}}
	}
	return nil
}

func copyAccount(acc *models.Account) *models.Account {
	if acc == nil {
		return nil
	}
	c := *acc
	return &c
}
