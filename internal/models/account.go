package models

import (
	"time"

	"bank-settlement-engine/internal/money"
)

type AccountStatus string

const (
	AccountPending  AccountStatus = "pending"
	AccountApproved AccountStatus = "approved"
	AccountRejected AccountStatus = "rejected"
)

// User - владелец счетов
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Account - счёт с балансом в минимальных единицах
type Account struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	AccountNumber string        `json:"account_number"`
	Balance       money.Amount  `json:"balance"`
	Status        AccountStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// AuditLog - запись журнала аудита, пишется в той же транзакции, что и изменение балансов
type AuditLog struct {
	ID        int64     `json:"id"`
	EventType string    `json:"event_type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	AuditTransactionSuccess = "TRANSACTION_SUCCESS"
	AuditTransactionFailed  = "TRANSACTION_FAILED"
	AuditLoanDisbursal      = "LOAN_DISBURSAL"
)
