package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkamocks "bank-settlement-engine/internal/kafka/mocks"
	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	redismocks "bank-settlement-engine/internal/redis/mocks"
	storagemocks "bank-settlement-engine/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pendingTxn(id int64) *models.Transaction {
	src := int64(1)
	return &models.Transaction{
		ID:          id,
		SrcAccount:  &src,
		DestAccount: 2,
		Amount:      money.MustParse("150.00"),
		Status:      models.StatusPending,
		CreatedAt:   time.Now().Add(-time.Hour),
	}
}

func TestSweepOnce_RequeuesOldPending(t *testing.T) {
	store := new(storagemocks.MockLedgerStore)
	producer := new(kafkamocks.MockProducer)
	s := NewSweeper(store, producer, nil, 5*time.Minute, 10)

	fixed := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	store.On("ListPendingBefore", ctx, fixed.Add(-5*time.Minute), 10).
		Return([]*models.Transaction{pendingTxn(1), pendingTxn(2)}, nil)
	producer.On("SendTransferIntent", mock.MatchedBy(func(i *models.TransferIntent) bool { return i.TransactionID == 1 })).Return(nil)
	producer.On("SendTransferIntent", mock.MatchedBy(func(i *models.TransferIntent) bool { return i.TransactionID == 2 })).
		Return(errors.New("broker down"))

	requeued, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, requeued)
	producer.AssertNumberOfCalls(t, "SendTransferIntent", 2)
}

func TestSweepOnce_SkipsWhenLockHeld(t *testing.T) {
	store := new(storagemocks.MockLedgerStore)
	locker := new(redismocks.MockClientInterface)
	s := NewSweeper(store, new(kafkamocks.MockProducer), locker, time.Minute, 10)
	ctx := context.Background()

	locker.On("TryLock", ctx, "settlement-sweep", time.Minute).Return(nil, false, nil)

	requeued, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, requeued)
	store.AssertNotCalled(t, "ListPendingBefore", mock.Anything, mock.Anything, mock.Anything)
}

func TestSweepOnce_ReleasesLock(t *testing.T) {
	store := new(storagemocks.MockLedgerStore)
	locker := new(redismocks.MockClientInterface)
	s := NewSweeper(store, new(kafkamocks.MockProducer), locker, time.Minute, 10)
	ctx := context.Background()

	released := false
	locker.On("TryLock", ctx, "settlement-sweep", time.Minute).Return(func() { released = true }, true, nil)
	store.On("ListPendingBefore", ctx, mock.Anything, 10).Return([]*models.Transaction{}, nil)

	_, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.True(t, released)
}

func TestRequeue_CreditWithoutSourceRejected(t *testing.T) {
	s := NewSweeper(new(storagemocks.MockLedgerStore), new(kafkamocks.MockProducer), nil, time.Minute, 0)
	txn := pendingTxn(3)
	txn.SrcAccount = nil

	assert.Error(t, s.Requeue(txn))
	assert.Equal(t, 100, s.batchSize)
}
