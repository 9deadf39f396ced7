package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/storage"
)

// unitOfWork работает только через tx: пул ограничен одним соединением,
// обращение к s.DB внутри единицы работы заблокирует её навсегда
type unitOfWork struct {
	tx *sql.Tx
}

// Begin открывает транзакцию BEGIN IMMEDIATE
func (s *SQLiteStorage) Begin(ctx context.Context) (storage.UnitOfWork, error) {
	var tx *sql.Tx
	err := retryOperation(func() error {
		var err error
		tx, err = s.DB.BeginTx(ctx, nil)
		return err
	}, 5, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &unitOfWork{tx: tx}, nil
}

func (u *unitOfWork) LockTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	row := u.tx.QueryRowContext(ctx, `SELECT `+storage.TransactionColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := storage.ScanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return tx, err
}

func (u *unitOfWork) LockAccounts(ctx context.Context, ids []int64) (map[int64]*models.Account, error) {
	order := storage.LockOrder(ids)
	if len(order) == 0 {
		return map[int64]*models.Account{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(order)), ",")
	args := make([]interface{}, len(order))
	for i, id := range order {
		args[i] = id
	}

	rows, err := u.tx.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM accounts WHERE id IN (%s) ORDER BY id`, storage.AccountColumns, placeholders),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make(map[int64]*models.Account, len(order))
	for rows.Next() {
		acc, err := storage.ScanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts[acc.ID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(accounts) != len(order) {
		return accounts, storage.ErrPartialNotFound
	}
	return accounts, nil
}

func (u *unitOfWork) UpdateBalance(ctx context.Context, accountID int64, balance money.Amount) error {
	res, err := u.tx.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`, int64(balance), accountID)
	if err != nil {
		return err
	}
	return expectOneRow(res, storage.ErrNotFound)
}

func (u *unitOfWork) MarkTransaction(ctx context.Context, id int64, status models.TransactionStatus, settledAt time.Time) error {
	res, err := u.tx.ExecContext(ctx,
		`UPDATE transactions SET status = ?, settled_at = ? WHERE id = ? AND status = ?`,
		string(status), settledAt.UTC(), id, string(models.StatusPending),
	)
	if err != nil {
		return err
	}
	return expectOneRow(res, storage.ErrNotPending)
}

func (u *unitOfWork) InsertTransaction(ctx context.Context, tx *models.Transaction) (int64, error) {
	var settledAt interface{}
	if tx.SettledAt != nil {
		settledAt = tx.SettledAt.UTC()
	}
	var src interface{}
	if tx.SrcAccount != nil {
		src = *tx.SrcAccount
	}
	res, err := u.tx.ExecContext(ctx,
		`INSERT INTO transactions (src_account, dest_account, amount, status, created_at, settled_at) VALUES (?, ?, ?, ?, ?, ?)`,
		src, tx.DestAccount, int64(tx.Amount), string(tx.Status), tx.CreatedAt.UTC(), settledAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (u *unitOfWork) AppendAudit(ctx context.Context, eventType, message string) error {
	_, err := u.tx.ExecContext(ctx,
		`INSERT INTO audit_logs (event_type, message, created_at) VALUES (?, ?, ?)`,
		eventType, message, time.Now().UTC(),
	)
	return err
}

func (u *unitOfWork) Commit() error {
	return u.tx.Commit()
}

func (u *unitOfWork) Rollback() error {
	return u.tx.Rollback()
}

func expectOneRow(res sql.Result, notMatched error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return notMatched
	}
	return nil
}
