package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"bank-settlement-engine/internal/logger"
	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/storage"
	"bank-settlement-engine/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingPusher struct {
	mu        sync.Mutex
	pushed    map[int64][][]byte
	accepting bool
}

func newRecordingPusher(accepting bool) *recordingPusher {
	return &recordingPusher{pushed: map[int64][][]byte{}, accepting: accepting}
}

func (p *recordingPusher) SendToUser(userID int64, payload []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.accepting {
		return false
	}
	p.pushed[userID] = append(p.pushed[userID], payload)
	return true
}

func transferNotice(status models.TransactionStatus, reason string) *models.SettlementNotice {
	src := int64(1)
	return &models.SettlementNotice{
		Kind:          models.KindTransfer,
		TransactionID: 42,
		Status:        status,
		Reason:        reason,
		Amount:        money.MustParse("150.00"),
		SrcAccountID:  &src,
		DestAccountID: 2,
		Source:        &models.Account{ID: 1, UserID: 10, AccountNumber: "ACC-A", Balance: money.MustParse("4850.00")},
		Dest:          &models.Account{ID: 2, UserID: 20, AccountNumber: "ACC-B", Balance: money.MustParse("2150.00")},
		SettledAt:     time.Now(),
	}
}

func TestBuild_SuccessNotifiesBothOwners(t *testing.T) {
	list := Build(transferNotice(models.StatusSuccess, ""))
	require.Len(t, list, 2)

	assert.Equal(t, int64(10), list[0].UserID)
	assert.Equal(t, "Money Sent", list[0].Title)
	assert.Equal(t, "You sent 150.00 to account ACC-B", list[0].Message)
	assert.Equal(t, models.NotificationTransaction, list[0].Type)
	require.NotNil(t, list[0].FromUserID)
	assert.Equal(t, int64(20), *list[0].FromUserID)

	assert.Equal(t, int64(20), list[1].UserID)
	assert.Equal(t, "Money Received", list[1].Title)
	require.NotNil(t, list[1].RelatedID)
	assert.Equal(t, int64(42), *list[1].RelatedID)
}

func TestBuild_SameOwnerGetsOneNotification(t *testing.T) {
	notice := transferNotice(models.StatusSuccess, "")
	notice.Dest.UserID = notice.Source.UserID

	list := Build(notice)
	require.Len(t, list, 1)
	assert.Equal(t, "Money Sent", list[0].Title)
}

func TestBuild_InsufficientBalance(t *testing.T) {
	list := Build(transferNotice(models.StatusFailed, "insufficient balance"))
	require.Len(t, list, 1)
	assert.Equal(t, int64(10), list[0].UserID)
	assert.Equal(t, "Transfer Failed", list[0].Title)
	assert.Equal(t, models.NotificationTransactionFailed, list[0].Type)
	assert.Contains(t, list[0].Message, "insufficient balance")
}

func TestBuild_MissingAccountNoNotifications(t *testing.T) {
	notice := transferNotice(models.StatusFailed, "account not found")
	notice.Dest = nil
	assert.Empty(t, Build(notice))
}

func TestBuild_Credit(t *testing.T) {
	notice := &models.SettlementNotice{
		Kind:          models.KindCredit,
		TransactionID: 7,
		Status:        models.StatusSuccess,
		Reason:        "loan approved",
		Amount:        money.MustParse("500.00"),
		DestAccountID: 2,
		Dest:          &models.Account{ID: 2, UserID: 20, AccountNumber: "ACC-B"},
	}

	list := Build(notice)
	require.Len(t, list, 1)
	assert.Equal(t, "Account Credited", list[0].Title)
	assert.Equal(t, models.NotificationCredit, list[0].Type)
	assert.Equal(t, "Your account ACC-B was credited with 500.00. Reason: loan approved", list[0].Message)
}

func TestNotifySettlement_PersistsAndPushes(t *testing.T) {
	repo := new(mocks.MockNotificationRepository)
	pusher := newRecordingPusher(true)
	emitter := NewEmitter(repo, pusher)
	ctx := context.Background()

	nextID := int64(0)
	repo.On("CreateNotification", ctx, mock.AnythingOfType("*models.Notification")).
		Run(func(args mock.Arguments) {
			nextID++
			args.Get(1).(*models.Notification).ID = nextID
		}).Return(nil)
	repo.On("UserByID", ctx, int64(20)).Return(&models.User{ID: 20, Username: "bob"}, nil)
	repo.On("UserByID", ctx, int64(10)).Return(&models.User{ID: 10, Username: "alice"}, nil)

	require.NoError(t, emitter.NotifySettlement(ctx, transferNotice(models.StatusSuccess, "")))

	require.Len(t, pusher.pushed[10], 1)
	require.Len(t, pusher.pushed[20], 1)

	var push struct {
		Type string              `json:"type"`
		Data models.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(pusher.pushed[20][0], &push))
	assert.Equal(t, "notification", push.Type)
	assert.Equal(t, "Money Received", push.Data.Title)
	require.NotNil(t, push.Data.FromUserName)
	assert.Equal(t, "alice", *push.Data.FromUserName)

	repo.AssertNumberOfCalls(t, "CreateNotification", 2)
}

// Очередь хаба переполнена: уведомление сохраняется, ошибки нет
func TestNotifySettlement_OfflineUserStillPersisted(t *testing.T) {
	repo := new(mocks.MockNotificationRepository)
	emitter := NewEmitter(repo, newRecordingPusher(false))
	ctx := context.Background()

	repo.On("CreateNotification", ctx, mock.Anything).Return(nil)

	err := emitter.NotifySettlement(ctx, transferNotice(models.StatusFailed, "insufficient balance"))
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "CreateNotification", 1)
}

func TestNotifySettlement_ContinuesAfterSaveError(t *testing.T) {
	repo := new(mocks.MockNotificationRepository)
	emitter := NewEmitter(repo, nil)
	ctx := context.Background()

	repo.On("CreateNotification", ctx, mock.MatchedBy(func(n *models.Notification) bool { return n.UserID == 10 })).
		Return(errors.New("disk full"))
	repo.On("CreateNotification", ctx, mock.MatchedBy(func(n *models.Notification) bool { return n.UserID == 20 })).
		Return(nil)
	repo.On("UserByID", ctx, int64(10)).Return(nil, storage.ErrNotFound)

	err := emitter.NotifySettlement(ctx, transferNotice(models.StatusSuccess, ""))
	assert.ErrorContains(t, err, "disk full")
	repo.AssertNumberOfCalls(t, "CreateNotification", 2)
}

func pushedEvent(t *testing.T, notificationID int64) logger.Event {
	t.Helper()
	for _, event := range logger.FilterEvents(1000, logger.EventNotificationPushed) {
		if event.Data["notification_id"] == notificationID {
			return event
		}
	}
	t.Fatalf("no push event for notification %d", notificationID)
	return logger.Event{}
}

func TestEmit_LogsQueueResult(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		id        int64
		accepting bool
	}{
		{9001, true},
		{9002, false},
	}

	for _, tt := range tests {
		repo := new(mocks.MockNotificationRepository)
		repo.On("CreateNotification", ctx, mock.Anything).
			Run(func(args mock.Arguments) { args.Get(1).(*models.Notification).ID = tt.id }).
			Return(nil)

		emitter := NewEmitter(repo, newRecordingPusher(tt.accepting))
		require.NoError(t, emitter.Emit(ctx, &models.Notification{UserID: 10, Title: "Money Sent"}))

		event := pushedEvent(t, tt.id)
		assert.Equal(t, tt.accepting, event.Data["queued"])
		assert.NotContains(t, event.Data, "delivered")
	}
}
