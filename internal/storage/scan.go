package storage

import (
	"database/sql"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
)

// RowScanner - общий интерфейс *sql.Row и *sql.Rows
type RowScanner interface {
	Scan(dest ...interface{}) error
}

// Колонки в порядке, который ожидают Scan-функции
const TransactionColumns = `id, src_account, dest_account, amount, status, created_at, settled_at`

func ScanTransaction(row RowScanner) (*models.Transaction, error) {
	var (
		tx        models.Transaction
		src       sql.NullInt64
		amount    int64
		status    string
		settledAt sql.NullTime
	)
	if err := row.Scan(&tx.ID, &src, &tx.DestAccount, &amount, &status, &tx.CreatedAt, &settledAt); err != nil {
		return nil, err
	}
	if src.Valid {
		tx.SrcAccount = &src.Int64
	}
	if settledAt.Valid {
		tx.SettledAt = &settledAt.Time
	}
	tx.Amount = money.Amount(amount)
	tx.Status = models.TransactionStatus(status)
	return &tx, nil
}

const AccountColumns = `id, user_id, account_number, balance, status, created_at`

func ScanAccount(row RowScanner) (*models.Account, error) {
	var (
		acc     models.Account
		balance int64
		status  string
	)
	if err := row.Scan(&acc.ID, &acc.UserID, &acc.AccountNumber, &balance, &status, &acc.CreatedAt); err != nil {
		return nil, err
	}
	acc.Balance = money.Amount(balance)
	acc.Status = models.AccountStatus(status)
	return &acc, nil
}

const NotificationColumns = `n.id, n.user_id, n.title, n.message, n.type, n.related_id, n.is_read,
	n.created_at, n.read_at, n.from_user_id, u.username`

func ScanNotification(row RowScanner) (*models.Notification, error) {
	var (
		n            models.Notification
		relatedID    sql.NullInt64
		readAt       sql.NullTime
		fromUserID   sql.NullInt64
		fromUserName sql.NullString
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &relatedID, &n.IsRead,
		&n.CreatedAt, &readAt, &fromUserID, &fromUserName); err != nil {
		return nil, err
	}
	if relatedID.Valid {
		n.RelatedID = &relatedID.Int64
	}
	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}
	if fromUserID.Valid {
		n.FromUserID = &fromUserID.Int64
	}
	if fromUserName.Valid {
		n.FromUserName = &fromUserName.String
	}
	return &n, nil
}
