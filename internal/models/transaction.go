package models

import (
	"time"

	"bank-settlement-engine/internal/money"

	"github.com/shopspring/decimal"
)

// TransactionStatus представляет статус транзакции в БД
type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING"
	StatusSuccess TransactionStatus = "SUCCESS"
	StatusFailed  TransactionStatus = "FAILED"
)

// IsTerminal - SUCCESS и FAILED больше не меняются
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Transaction представляет перевод между счетами.
// SrcAccount == nil для зачислений администратором (выдача кредита).
type Transaction struct {
	ID          int64             `json:"id"`
	SrcAccount  *int64            `json:"src_account"`
	DestAccount int64             `json:"dest_account"`
	Amount      money.Amount      `json:"amount"`
	Status      TransactionStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	SettledAt   *time.Time        `json:"settled_at,omitempty"`
}

// TransferRequest представляет запрос на перевод
type TransferRequest struct {
	SrcAccount  int64           `json:"src_account" binding:"required,gt=0"`
	DestAccount int64           `json:"dest_account" binding:"required,gt=0"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"150.00"`
}

// TransferResponse представляет ответ на запрос перевода
type TransferResponse struct {
	TransactionID int64             `json:"transaction_id"`
	Status        TransactionStatus `json:"status"`
	Message       string            `json:"message"`
}

// TransactionStatusResponse представляет ответ на запрос статуса
type TransactionStatusResponse struct {
	TransactionID int64             `json:"transaction_id"`
	SrcAccount    *int64            `json:"src_account,omitempty"`
	DestAccount   int64             `json:"dest_account"`
	Amount        money.Amount      `json:"amount" swaggertype:"number"`
	Status        TransactionStatus `json:"status"`
	Reason        string            `json:"reason,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	SettledAt     *time.Time        `json:"settled_at,omitempty"`
}

// TransferIntent - сообщение в очереди запросов на расчёт.
// Авторитетна строка транзакции в БД, поля сообщения только подсказка.
type TransferIntent struct {
	TransactionID int64           `json:"transaction_id" validate:"required,gt=0"`
	SrcAccount    int64           `json:"src_account" validate:"required,gt=0"`
	DestAccount   int64           `json:"dest_account" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"amount"`
}

// SettlementOutcome - итог расчёта, кэшируется в Redis
type SettlementOutcome struct {
	TransactionID int64     `json:"transaction_id"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	SettledAt     time.Time `json:"settled_at"`
}
