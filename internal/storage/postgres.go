package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the table used by PostgresBackend.
const Schema = `CREATE TABLE IF NOT EXISTS browser_storage (
    browser_id TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (browser_id, key)
)`

// PostgresBackend stores browser values in PostgreSQL.
type PostgresBackend struct {
	db *pgxpool.Pool
}

// NewPostgres builds a PostgreSQL-backed storage backend.
func NewPostgres(db *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the browser_storage table when missing.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create browser_storage: %w", err)
	}
	return nil
}

// Scope returns the storage area of one browser.
func (b *PostgresBackend) Scope(browserID string) Storage {
	return &postgresScope{db: b.db, id: browserID}
}

// Ping checks database connectivity.
func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.db.Ping(ctx)
}

type postgresScope struct {
	db *pgxpool.Pool
	id string
}

func (s *postgresScope) Get(ctx context.Context, key string) (string, bool, error) {
	if s.id == "" {
		return "", false, ErrEmptyBrowserID
	}
	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM browser_storage WHERE browser_id = $1 AND key = $2`, s.id, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *postgresScope) Set(ctx context.Context, key, value string) error {
	if s.id == "" {
		return ErrEmptyBrowserID
	}
	_, err := s.db.Exec(ctx, `INSERT INTO browser_storage (browser_id, key, value, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (browser_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, s.id, key, value)
	return err
}

func (s *postgresScope) Remove(ctx context.Context, keys ...string) error {
	if s.id == "" {
		return ErrEmptyBrowserID
	}
	if len(keys) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `DELETE FROM browser_storage WHERE browser_id = $1 AND key = ANY($2)`, s.id, keys)
	return err
}
