package postgres

import (
	"database/sql"
	"fmt"
	"log"

	"bank-settlement-engine/internal/config"
	"bank-settlement-engine/internal/storage"

	_ "github.com/lib/pq"
)

// PostgresStorage - авторитетное хранилище на PostgreSQL
type PostgresStorage struct {
	DB *sql.DB
}

var _ storage.Store = (*PostgresStorage)(nil)

// NewConnection создает пул соединений и применяет миграции
func NewConnection(cfg *config.Config) (*PostgresStorage, error) {
	log.Println("Connecting to PostgreSQL")

	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(cfg.DB.DSN); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("PostgreSQL connection established")
	return &PostgresStorage{DB: db}, nil
}

// New оборачивает готовый *sql.DB (используется в тестах с sqlmock)
func New(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{DB: db}
}

// Close закрывает пул соединений
func (s *PostgresStorage) Close() error {
	return s.DB.Close()
}
