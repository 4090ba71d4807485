package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps user documents as JSONB rows of the documents table.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore builds a Postgres-backed user store.
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save upserts the whole document.
func (s *PostgresStore) Save(ctx context.Context, user User) error {
	if user.ID == "" {
		return ErrInvalidID
	}
	body, err := json.Marshal(user.ToDocument())
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", Collection, user.ID, err)
	}
	_, err = s.db.Exec(ctx, `INSERT INTO documents (collection, id, body, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		Collection, user.ID, body)
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", Collection, user.ID, err)
	}
	return nil
}

// Fetch reads the document stored for id.
func (s *PostgresStore) Fetch(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidID
	}
	var body []byte
	err := s.db.QueryRow(ctx, `SELECT body FROM documents WHERE collection = $1 AND id = $2`, Collection, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, notFound(id)
	}
	if err != nil {
		return User{}, readFailed(id, err)
	}
	if body == nil {
		return User{}, notFound(id)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return User{}, fmt.Errorf("%w: %s/%s: %v", ErrDeserialization, Collection, id, err)
	}
	if doc == nil {
		return User{}, notFound(id)
	}
	return FromDocument(doc)
}
