package authstub

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no account matches.
	ErrNotFound = errors.New("account not found")
	// ErrExists is returned when the email or username is already taken.
	ErrExists = errors.New("account already exists")
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, account Account) error
	FindByIdentifier(ctx context.Context, identifier string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
}

// Schema creates the table used by PostgresRepository.
const Schema = `CREATE TABLE IF NOT EXISTS stub_accounts (
    id             UUID PRIMARY KEY,
    first_name     TEXT NOT NULL,
    last_name      TEXT NOT NULL,
    username       TEXT NOT NULL UNIQUE,
    email          TEXT NOT NULL UNIQUE,
    country        TEXT NOT NULL,
    role           TEXT NOT NULL,
    kyc_status     TEXT NOT NULL,
    account_number TEXT NOT NULL,
    password_hash  BYTEA NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL
)`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the accounts table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, Schema)
	return err
}

// Create inserts a new account.
func (r *PostgresRepository) Create(ctx context.Context, a Account) error {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO stub_accounts
        (id, first_name, last_name, username, email, country, role, kyc_status, account_number, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, a.FirstName, a.LastName, a.Username, strings.ToLower(a.Email), a.Country, a.Role, a.KYCStatus, a.AccountNumber, a.PasswordHash, a.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrExists
	}
	return err
}

const selectAccount = `SELECT id, first_name, last_name, username, email, country, role, kyc_status, account_number, password_hash, created_at FROM stub_accounts`

// FindByIdentifier looks an account up by email or username.
func (r *PostgresRepository) FindByIdentifier(ctx context.Context, identifier string) (Account, error) {
	return r.scan(r.db.QueryRow(ctx, selectAccount+` WHERE email = lower($1) OR username = $1`, identifier))
}

// FindByID looks an account up by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	return r.scan(r.db.QueryRow(ctx, selectAccount+` WHERE id = $1`, parsed))
}

func (r *PostgresRepository) scan(row pgx.Row) (Account, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		a         Account
	)
	err := row.Scan(&id, &a.FirstName, &a.LastName, &a.Username, &a.Email, &a.Country, &a.Role, &a.KYCStatus, &a.AccountNumber, &a.PasswordHash, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	a.ID = id.String()
	a.CreatedAt = createdAt.UTC()
	return a, nil
}
