package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// DBTX is the subset of *pgxpool.Pool used by PostgresStore.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	password_hash BYTEA NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('teacher', 'student')),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore is a CredentialStore backed by the users table.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore creates a store over db. Call EnsureSchema once at startup.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the users table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, usersSchema); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Verify implements CredentialStore.
func (s *PostgresStore) Verify(ctx context.Context, username, password string) (Role, error) {
	var (
		hash []byte
		role string
	)
	err := s.db.QueryRow(ctx,
		`SELECT password_hash, role FROM users WHERE username = $1`,
		username,
	).Scan(&hash, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", rejectUnknownUser(password)
	}
	if err != nil {
		return "", fmt.Errorf("query user: %w", err)
	}

	if err := checkPassword(hash, password); err != nil {
		return "", err
	}
	return ParseRole(role)
}

// Register implements CredentialStore.
func (s *PostgresStore) Register(ctx context.Context, username, password string, role Role) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3)`,
		username, hash, string(role),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
