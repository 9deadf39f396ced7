package sqlite

import (
	"bank-settlement-engine/internal/storage"
)

var _ storage.Store = (*SQLiteStorage)(nil)

// NewRepository возвращает SQLite-хранилище как storage.Store
func NewRepository(s *SQLiteStorage) storage.Store {
	return s
}
