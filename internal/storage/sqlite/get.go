package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/storage"
)

// GetTransaction получает транзакцию по id
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+storage.TransactionColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := storage.ScanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return tx, err
}

// GetAccount получает счёт по id
func (s *SQLiteStorage) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+storage.AccountColumns+` FROM accounts WHERE id = ?`, id)
	acc, err := storage.ScanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return acc, err
}

// ListPendingBefore получает зависшие PENDING транзакции
func (s *SQLiteStorage) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Transaction, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+storage.TransactionColumns+`
		FROM transactions
		WHERE status = ? AND created_at < ?
		ORDER BY id
		LIMIT ?
	`, string(models.StatusPending), cutoff.UTC(), limit)
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
func (s *SQLiteStorage) ListAudit(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, event_type, message, created_at
		FROM audit_logs
		ORDER BY id DESC
		LIMIT ?
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
func (s *SQLiteStorage) CountAudit(ctx context.Context, needle string) (int64, error) {
	var count int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_logs WHERE instr(message, ?) > 0`, needle,
	).Scan(&count)
	return count, err
}

// UserByID получает пользователя по id
func (s *SQLiteStorage) UserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
