package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bank-settlement-engine/internal/kafka"
	"bank-settlement-engine/internal/logger"
	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/redis"
	"bank-settlement-engine/internal/storage"
)

const ingestionService = "transfer-api"

// TransactionServiceImpl реализует интерфейс TransactionService
type TransactionServiceImpl struct {
	store       storage.LedgerStore
	producer    kafka.Producer
	redisClient redis.ClientInterface // Опциональный кэш итогов расчёта
}

// NewTransactionService создает новый сервис транзакций
func NewTransactionService(store storage.LedgerStore, producer kafka.Producer) TransactionService {
	return &TransactionServiceImpl{
		store:    store,
		producer: producer,
	}
}

// NewTransactionServiceWithRedis создает новый сервис транзакций с поддержкой Redis
func NewTransactionServiceWithRedis(store storage.LedgerStore, producer kafka.Producer, redisClient redis.ClientInterface) TransactionService {
	return &TransactionServiceImpl{
		store:       store,
		producer:    producer,
		redisClient: redisClient,
	}
}

// InitiateTransfer проверяет перевод без блокировок: окончательное решение принимает воркер расчёта
func (s *TransactionServiceImpl) InitiateTransfer(ctx context.Context, userID int64, req *models.TransferRequest) (*models.TransferResponse, error) {
	amount, err := money.FromDecimal(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransfer, err)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidTransfer)
	}
	if req.SrcAccount <= 0 || req.DestAccount <= 0 {
		return nil, fmt.Errorf("%w: account ids must be positive", ErrInvalidTransfer)
	}
	if userID <= 0 {
		return nil, ErrForbiddenAccount
	}

	src, err := s.store.GetAccount(ctx, req.SrcAccount)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: source %d", ErrAccountNotFound, req.SrcAccount)
	}
	if err != nil {
		return nil, err
	}
	if src.UserID != userID {
		return nil, ErrForbiddenAccount
	}

	if _, err := s.store.GetAccount(ctx, req.DestAccount); errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: destination %d", ErrAccountNotFound, req.DestAccount)
	} else if err != nil {
		return nil, err
	}

	if src.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	logger.LogEvent(logger.EventTransferReceived, ingestionService, "service", map[string]interface{}{
		"src_account":  req.SrcAccount,
		"dest_account": req.DestAccount,
		"amount":       amount.String(),
	})

	txn, err := s.store.CreatePendingTransaction(ctx, req.SrcAccount, req.DestAccount, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	logger.LogEvent(logger.EventTransactionSaved, ingestionService, "storage", map[string]interface{}{
		"transaction_id": txn.ID,
	})

	intent := &models.TransferIntent{
		TransactionID: txn.ID,
		SrcAccount:    req.SrcAccount,
		DestAccount:   req.DestAccount,
		Amount:        amount.Decimal(),
	}
	if err := s.producer.SendTransferIntent(intent); err != nil {
		// Строка остается PENDING, ее подберет sweep
		log.Printf("Transaction %d saved but not enqueued: %v", txn.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}

	return &models.TransferResponse{
		TransactionID: txn.ID,
		Status:        models.StatusPending,
		Message:       "Transfer accepted for settlement",
	}, nil
}

// GetTransactionStatus возвращает статус транзакции владельцу счета-источника.
// У зачисления счета-источника нет, его видит владелец счета-получателя.
func (s *TransactionServiceImpl) GetTransactionStatus(ctx context.Context, userID, transactionID int64) (*models.TransactionStatusResponse, error) {
	if userID <= 0 {
		return nil, ErrForbiddenTransaction
	}

	txn, err := s.store.GetTransaction(ctx, transactionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	ownerAccount := txn.DestAccount
	if txn.SrcAccount != nil {
		ownerAccount = *txn.SrcAccount
	}
	acc, err := s.store.GetAccount(ctx, ownerAccount)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrForbiddenTransaction
	}
	if err != nil {
		return nil, err
	}
	if acc.UserID != userID {
		return nil, ErrForbiddenTransaction
	}

	return s.statusResponse(txn), nil
}

// InspectTransaction возвращает статус без проверки владельца, для операторских инструментов
func (s *TransactionServiceImpl) InspectTransaction(ctx context.Context, transactionID int64) (*models.TransactionStatusResponse, error) {
	txn, err := s.store.GetTransaction(ctx, transactionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.statusResponse(txn), nil
}

func (s *TransactionServiceImpl) statusResponse(txn *models.Transaction) *models.TransactionStatusResponse {
	response := &models.TransactionStatusResponse{
		TransactionID: txn.ID,
		SrcAccount:    txn.SrcAccount,
		DestAccount:   txn.DestAccount,
		Amount:        txn.Amount,
		Status:        txn.Status,
		CreatedAt:     txn.CreatedAt,
		SettledAt:     txn.SettledAt,
	}

	if s.redisClient == nil {
		return response
	}
	cached, err := s.redisClient.GetOutcome(txn.ID)
	if err != nil {
		log.Printf("Failed to read cached outcome of %d: %v", txn.ID, err)
	}
	// Причина отказа хранится только в кэше и в аудите
	if cached != nil && cached.Status == string(txn.Status) {
		response.Reason = cached.Reason
	}
	return response
}

// ListAudit возвращает последние записи аудита
func (s *TransactionServiceImpl) ListAudit(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return s.store.ListAudit(ctx, limit)
}
