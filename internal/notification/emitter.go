package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"bank-settlement-engine/internal/logger"
	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/storage"
)

// Pusher ставит сообщение в персональный канал пользователя (реализуется realtime.Hub).
// true значит только, что сообщение принято в очередь: у пользователя может не быть подключений.
type Pusher interface {
	SendToUser(userID int64, payload []byte) bool
}

// Emitter сохраняет уведомления по итогам расчёта и пушит их владельцам счетов
type Emitter struct {
	repo   storage.NotificationRepository
	pusher Pusher
}

// NewEmitter создает эмиттер; pusher может быть nil, тогда уведомления только сохраняются
func NewEmitter(repo storage.NotificationRepository, pusher Pusher) *Emitter {
	return &Emitter{repo: repo, pusher: pusher}
}

// NotifySettlement строит уведомления для зафиксированного итога.
// Ошибка одного уведомления не мешает остальным.
func (e *Emitter) NotifySettlement(ctx context.Context, notice *models.SettlementNotice) error {
	var errs []error
	for _, n := range Build(notice) {
		if err := e.Emit(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit сохраняет уведомление и пытается отправить его в websocket
func (e *Emitter) Emit(ctx context.Context, n *models.Notification) error {
	if err := e.repo.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to save notification for user %d: %w", n.UserID, err)
	}

	if n.FromUserID != nil {
		if user, err := e.repo.UserByID(ctx, *n.FromUserID); err == nil {
			n.FromUserName = &user.Username
		} else if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Failed to resolve sender %d: %v", *n.FromUserID, err)
		}
	}

	e.push(n)
	return nil
}

func (e *Emitter) push(n *models.Notification) {
	if e.pusher == nil {
		return
	}

	payload, err := json.Marshal(models.NotificationPush{Type: "notification", Data: n})
	if err != nil {
		log.Printf("Failed to marshal notification %d: %v", n.ID, err)
		return
	}

	queued := e.pusher.SendToUser(n.UserID, payload)
	logger.LogEvent(logger.EventNotificationPushed, "notification-emitter", "emitter", map[string]interface{}{
		"notification_id": n.ID,
		"user_id":         n.UserID,
		"title":           n.Title,
		"queued":          queued,
	})
}

// Build возвращает уведомления для итога без сохранения.
// Если счёт не найден, уведомлений нет.
func Build(notice *models.SettlementNotice) []*models.Notification {
	related := notice.TransactionID

	switch {
	case notice.Kind == models.KindCredit:
		if notice.Dest == nil || notice.Status != models.StatusSuccess {
			return nil
		}
		msg := fmt.Sprintf("Your account %s was credited with %s", notice.Dest.AccountNumber, notice.Amount)
		if notice.Reason != "" {
			msg += ". Reason: " + notice.Reason
		}
		return []*models.Notification{{
			UserID:    notice.Dest.UserID,
			Title:     "Account Credited",
			Message:   msg,
			Type:      models.NotificationCredit,
			RelatedID: &related,
		}}

	case notice.Source == nil || notice.Dest == nil:
		return nil

	case notice.Status == models.StatusSuccess:
		src, dest := notice.Source, notice.Dest
		out := []*models.Notification{{
			UserID:     src.UserID,
			Title:      "Money Sent",
			Message:    fmt.Sprintf("You sent %s to account %s", notice.Amount, dest.AccountNumber),
			Type:       models.NotificationTransaction,
			RelatedID:  &related,
			FromUserID: ownerPtr(dest.UserID),
		}}
		if dest.UserID != src.UserID {
			out = append(out, &models.Notification{
				UserID:     dest.UserID,
				Title:      "Money Received",
				Message:    fmt.Sprintf("You received %s from account %s", notice.Amount, src.AccountNumber),
				Type:       models.NotificationTransaction,
				RelatedID:  &related,
				FromUserID: ownerPtr(src.UserID),
			})
		}
		return out

	case notice.Status == models.StatusFailed:
		return []*models.Notification{{
			UserID:    notice.Source.UserID,
			Title:     "Transfer Failed",
			Message:   fmt.Sprintf("Your transfer of %s to account %s failed: %s", notice.Amount, notice.Dest.AccountNumber, notice.Reason),
			Type:      models.NotificationTransactionFailed,
			RelatedID: &related,
		}}
	}

	return nil
}

func ownerPtr(id int64) *int64 {
	return &id
}
