package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/storage"

	"github.com/lib/pq"
)

type unitOfWork struct {
	tx *sql.Tx
}

// Begin открывает транзакцию READ COMMITTED; строки блокируются явно через FOR UPDATE
func (s *PostgresStorage) Begin(ctx context.Context) (storage.UnitOfWork, error) {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &unitOfWork{tx: tx}, nil
}

func (u *unitOfWork) LockTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	row := u.tx.QueryRowContext(ctx,
		`SELECT `+storage.TransactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
	tx, err := storage.ScanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return tx, err
}

// LockAccounts блокирует счета одним запросом: ORDER BY под FOR UPDATE задаёт
// порядок захвата блокировок по возрастанию id
func (u *unitOfWork) LockAccounts(ctx context.Context, ids []int64) (map[int64]*models.Account, error) {
	order := storage.LockOrder(ids)
	if len(order) == 0 {
		return map[int64]*models.Account{}, nil
	}

	rows, err := u.tx.QueryContext(ctx,
		`SELECT `+storage.AccountColumns+` FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
		pq.Array(order),
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
	res, err := u.tx.ExecContext(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, int64(balance), accountID)
	if err != nil {
		return err
	}
	return expectOneRow(res, storage.ErrNotFound)
}

func (u *unitOfWork) MarkTransaction(ctx context.Context, id int64, status models.TransactionStatus, settledAt time.Time) error {
	res, err := u.tx.ExecContext(ctx,
		`UPDATE transactions SET status = $1, settled_at = $2 WHERE id = $3 AND status = $4`,
		string(status), settledAt, id, string(models.StatusPending),
	)
	if err != nil {
		return err
	}
	return expectOneRow(res, storage.ErrNotPending)
}

func (u *unitOfWork) InsertTransaction(ctx context.Context, tx *models.Transaction) (int64, error) {
	var id int64
	err := u.tx.QueryRowContext(ctx, `
		INSERT INTO transactions (src_account, dest_account, amount, status, created_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, nullableID(tx.SrcAccount), tx.DestAccount, int64(tx.Amount), string(tx.Status), tx.CreatedAt, nullableTime(tx.SettledAt)).Scan(&id)
	return id, err
}

func (u *unitOfWork) AppendAudit(ctx context.Context, eventType, message string) error {
	_, err := u.tx.ExecContext(ctx,
		`INSERT INTO audit_logs (event_type, message) VALUES ($1, $2)`,
		eventType, message,
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

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
