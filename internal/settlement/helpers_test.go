package settlement

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/storage/sqlite"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.SettlementEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event *models.SettlementEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []*models.SettlementEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var result []*models.SettlementEvent
	for _, e := range p.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []*models.SettlementNotice
}

func (n *recordingNotifier) NotifySettlement(_ context.Context, notice *models.SettlementNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}

type recordingRecorder struct {
	mu       sync.Mutex
	outcomes map[int64]*models.SettlementOutcome
	stats    map[string]int
}

func newRecordingRecorder() *recordingRecorder {
	return &recordingRecorder{outcomes: map[int64]*models.SettlementOutcome{}, stats: map[string]int{}}
}

func (r *recordingRecorder) SaveOutcome(outcome *models.SettlementOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[outcome.TransactionID] = outcome
	return nil
}

func (r *recordingRecorder) IncrementSettlementStats(status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[status]++
	return nil
}

type testLedger struct {
	store     *sqlite.SQLiteStorage
	worker    *Worker
	publisher *recordingPublisher
	notifier  *recordingNotifier
	recorder  *recordingRecorder
}

func newTestLedger(t *testing.T) *testLedger {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	l := &testLedger{
		store:     store,
		publisher: &recordingPublisher{},
		notifier:  &recordingNotifier{},
		recorder:  newRecordingRecorder(),
	}
	l.worker = NewWorker(store, Options{
		LowBalanceThreshold: money.MustParse("1000.00"),
		Publisher:           l.publisher,
		Notifier:            l.notifier,
		Recorder:            l.recorder,
	})
	return l
}

func (l *testLedger) account(t *testing.T, name, balance string) int64 {
	t.Helper()
	ctx := context.Background()
	userID, err := l.store.CreateUser(ctx, name)
	require.NoError(t, err)
	id, err := l.store.CreateAccount(ctx, userID, "ACC-"+name, money.MustParse(balance))
	require.NoError(t, err)
	return id
}

func (l *testLedger) balance(t *testing.T, accountID int64) money.Amount {
	t.Helper()
	acc, err := l.store.GetAccount(context.Background(), accountID)
	require.NoError(t, err)
	return acc.Balance
}

func (l *testLedger) pending(t *testing.T, src, dest int64, amount string) *models.TransferIntent {
	t.Helper()
	txn, err := l.store.CreatePendingTransaction(context.Background(), src, dest, money.MustParse(amount))
	require.NoError(t, err)
	return intentFor(txn.ID, src, dest, amount)
}

func (l *testLedger) auditCount(t *testing.T, transactionID int64) int64 {
	t.Helper()
	count, err := l.store.CountAudit(context.Background(), fmt.Sprintf("#%d ", transactionID))
	require.NoError(t, err)
	return count
}

func intentFor(transactionID, src, dest int64, amount string) *models.TransferIntent {
	return &models.TransferIntent{
		TransactionID: transactionID,
		SrcAccount:    src,
		DestAccount:   dest,
		Amount:        decimal.RequireFromString(amount),
	}
}
