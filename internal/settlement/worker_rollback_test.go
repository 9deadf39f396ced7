package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	storagemocks "bank-settlement-engine/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pendingTxn(id, src, dest int64, amount money.Amount) *models.Transaction {
	return &models.Transaction{
		ID:          id,
		SrcAccount:  &src,
		DestAccount: dest,
		Amount:      amount,
		Status:      models.StatusPending,
		CreatedAt:   time.Now(),
	}
}

func TestSettle_TransientErrorRollsBack(t *testing.T) {
	mockStore := new(storagemocks.MockLedgerStore)
	mockUoW := new(storagemocks.MockUnitOfWork)
	publisher := &recordingPublisher{}
	worker := NewWorker(mockStore, Options{Publisher: publisher})

	dbErr := errors.New("connection reset by peer")
	mockStore.On("Begin", mock.Anything).Return(mockUoW, nil)
	mockUoW.On("LockTransaction", mock.Anything, int64(1)).Return(pendingTxn(1, 10, 20, 15000), nil)
	mockUoW.On("LockAccounts", mock.Anything, mock.Anything).Return(nil, dbErr)
	mockUoW.On("Rollback").Return(nil)

	res, err := worker.Settle(context.Background(), intentFor(1, 10, 20, "150.00"))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, dbErr)

	mockUoW.AssertCalled(t, "Rollback")
	mockUoW.AssertNotCalled(t, "Commit")
	assert.Empty(t, publisher.events)
}

func TestSettle_FailedWriteRollsBack(t *testing.T) {
	mockStore := new(storagemocks.MockLedgerStore)
	mockUoW := new(storagemocks.MockUnitOfWork)
	worker := NewWorker(mockStore, Options{})

	accounts := map[int64]*models.Account{
		10: {ID: 10, Balance: 50000},
		20: {ID: 20, Balance: 0},
	}
	mockStore.On("Begin", mock.Anything).Return(mockUoW, nil)
	mockUoW.On("LockTransaction", mock.Anything, int64(1)).Return(pendingTxn(1, 10, 20, 15000), nil)
	mockUoW.On("LockAccounts", mock.Anything, []int64{20, 10}).Return(accounts, nil)
	mockUoW.On("UpdateBalance", mock.Anything, int64(10), money.Amount(35000)).Return(nil)
	mockUoW.On("UpdateBalance", mock.Anything, int64(20), money.Amount(15000)).Return(errors.New("disk full"))
	mockUoW.On("Rollback").Return(nil)

	_, err := worker.Settle(context.Background(), intentFor(1, 10, 20, "150.00"))
	require.Error(t, err)

	mockUoW.AssertNotCalled(t, "MarkTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
	mockUoW.AssertExpectations(t)
}

func TestSettle_CommitFailureIsTransient(t *testing.T) {
	mockStore := new(storagemocks.MockLedgerStore)
	mockUoW := new(storagemocks.MockUnitOfWork)
	notifier := &recordingNotifier{}
	worker := NewWorker(mockStore, Options{Notifier: notifier})

	accounts := map[int64]*models.Account{
		10: {ID: 10, Balance: 100},
		20: {ID: 20, Balance: 0},
	}
	mockStore.On("Begin", mock.Anything).Return(mockUoW, nil)
	mockUoW.On("LockTransaction", mock.Anything, int64(3)).Return(pendingTxn(3, 10, 20, 15000), nil)
	mockUoW.On("LockAccounts", mock.Anything, mock.Anything).Return(accounts, nil)
	mockUoW.On("MarkTransaction", mock.Anything, int64(3), models.StatusFailed, mock.Anything).Return(nil)
	mockUoW.On("AppendAudit", mock.Anything, models.AuditTransactionFailed, mock.Anything).Return(nil)
	mockUoW.On("Commit").Return(errors.New("could not serialize access"))
	mockUoW.On("Rollback").Return(nil)

	err := worker.HandleIntent(context.Background(), intentFor(3, 10, 20, "150.00"))
	assert.Error(t, err)
	assert.Equal(t, 0, notifier.count())
	mockUoW.AssertExpectations(t)
}

func TestSettle_BeginFailure(t *testing.T) {
	mockStore := new(storagemocks.MockLedgerStore)
	worker := NewWorker(mockStore, Options{})

	mockStore.On("Begin", mock.Anything).Return(nil, errors.New("too many connections"))

	_, err := worker.Settle(context.Background(), intentFor(1, 10, 20, "1.00"))
	assert.Error(t, err)
	mockStore.AssertExpectations(t)
}
