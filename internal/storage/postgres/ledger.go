package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/storage"
)

// GetTransaction получает транзакцию по id без блокировки
func (s *PostgresStorage) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+storage.TransactionColumns+` FROM transactions WHERE id = $1`, id)
	tx, err := storage.ScanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return tx, err
}

// GetAccount получает счёт по id без блокировки
func (s *PostgresStorage) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+storage.AccountColumns+` FROM accounts WHERE id = $1`, id)
	acc, err := storage.ScanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return acc, err
}

// CreateUser создает пользователя
func (s *PostgresStorage) CreateUser(ctx context.Context, username string) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO users (username) VALUES ($1) RETURNING id`, username,
	).Scan(&id)
	return id, err
}

// CreateAccount создает одобренный счёт
func (s *PostgresStorage) CreateAccount(ctx context.Context, userID int64, accountNumber string, balance money.Amount) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO accounts (user_id, account_number, balance, status) VALUES ($1, $2, $3, $4) RETURNING id`,
		userID, accountNumber, int64(balance), string(models.AccountApproved),
	).Scan(&id)
	return id, err
}

// CreatePendingTransaction сохраняет перевод со статусом PENDING
func (s *PostgresStorage) CreatePendingTransaction(ctx context.Context, src, dest int64, amount money.Amount) (*models.Transaction, error) {
	tx := &models.Transaction{
		SrcAccount:  &src,
		DestAccount: dest,
		Amount:      amount,
		Status:      models.StatusPending,
	}
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO transactions (src_account, dest_account, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, src, dest, int64(amount), string(models.StatusPending)).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ListPendingBefore получает зависшие PENDING транзакции
func (s *PostgresStorage) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Transaction, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+storage.TransactionColumns+`
		FROM transactions
		WHERE status = $1 AND created_at < $2
		ORDER BY id
		LIMIT $3
	`, string(models.StatusPending), cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		tx, err := storage.ScanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// ListAudit получает последние записи аудита
func (s *PostgresStorage) ListAudit(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, event_type, message, created_at
		FROM audit_logs
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		if err := rows.Scan(&entry.ID, &entry.EventType, &entry.Message, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &entry)
	}
	return logs, rows.Err()
}

// CountAudit считает записи аудита с подстрокой needle
func (s *PostgresStorage) CountAudit(ctx context.Context, needle string) (int64, error) {
	var count int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_logs WHERE strpos(message, $1) > 0`, needle,
	).Scan(&count)
	return count, err
}

// UserByID получает пользователя по id
func (s *PostgresStorage) UserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
