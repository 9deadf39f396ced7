package models

import (
	"time"

	"bank-settlement-engine/internal/money"
)

// Типы событий, рассылаемых подписчикам дашбордов
const (
	EventTransactionSuccess = "transaction.success"
	EventTransactionFailed  = "transaction.failed"
	EventLowBalance         = "low_balance"
)

// SettlementEvent - событие во fanout-канале. Нулевой баланс - валидное значение,
// поэтому числовые поля указатели.
type SettlementEvent struct {
	Type           string        `json:"type"`
	TransactionID  int64         `json:"transaction_id"`
	Src            *int64        `json:"src,omitempty"`
	Dest           *int64        `json:"dest,omitempty"`
	Amount         *money.Amount `json:"amount,omitempty"`
	NewSrcBalance  *money.Amount `json:"new_src_balance,omitempty"`
	NewDestBalance *money.Amount `json:"new_dest_balance,omitempty"`
	AccountID      *int64        `json:"account_id,omitempty"`
	Balance        *money.Amount `json:"balance,omitempty"`
	Reason         string        `json:"reason,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

// SettlementKind различает перевод и зачисление
type SettlementKind string

const (
	KindTransfer SettlementKind = "transfer"
	KindCredit   SettlementKind = "credit"
)

// SettlementNotice - зафиксированный итог расчёта для пост-коммитных эффектов.
// Source/Dest содержат балансы после коммита, nil если счёт не найден.
type SettlementNotice struct {
	Kind          SettlementKind
	TransactionID int64
	Status        TransactionStatus
	Reason        string
	Amount        money.Amount
	SrcAccountID  *int64
	DestAccountID int64
	Source        *Account
	Dest          *Account
	SettledAt     time.Time
}
