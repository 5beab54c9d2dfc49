package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// uniqueViolation is the postgres error code for a duplicate key.
const uniqueViolation = "23505"

// PostgresStore looks up and inserts credentials in the users table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindByUsername returns the user and its password hash, or
// ErrNotFound. Usernames are matched exactly and are unique.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*User, string, error) {
	var (
		u    User
		hash string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, password, created_at
		FROM users
		WHERE name = $1
	`, username).Scan(&u.ID, &u.Username, &hash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("credentials: find user: %w", err)
	}

	return &u, hash, nil
}

// Insert stores a new credential and returns the created user.
// A duplicate username yields ErrExists.
func (s *PostgresStore) Insert(ctx context.Context, username, passwordHash string) (*User, error) {
	var u User
	u.Username = username

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, password)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, username, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("credentials: insert user: %w", err)
	}

	return &u, nil
}
