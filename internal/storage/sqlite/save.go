package sqlite

import (
	"context"
	"time"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
)

// CreateUser создает пользователя
func (s *SQLiteStorage) CreateUser(ctx context.Context, username string) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (username, created_at) VALUES (?, ?)`,
		username, time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CreateAccount создает одобренный счёт
func (s *SQLiteStorage) CreateAccount(ctx context.Context, userID int64, accountNumber string, balance money.Amount) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO accounts (user_id, account_number, balance, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, accountNumber, int64(balance), string(models.AccountApproved), time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CreatePendingTransaction сохраняет перевод со статусом PENDING
func (s *SQLiteStorage) CreatePendingTransaction(ctx context.Context, src, dest int64, amount money.Amount) (*models.Transaction, error) {
	createdAt := time.Now().UTC()
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO transactions (src_account, dest_account, amount, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		src, dest, int64(amount), string(models.StatusPending), createdAt,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Transaction{
		ID:          id,
		SrcAccount:  &src,
		DestAccount: dest,
		Amount:      amount,
		Status:      models.StatusPending,
		CreatedAt:   createdAt,
	}, nil
}
