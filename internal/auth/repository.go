package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// CredentialRepository persists credentials keyed by normalized email.
type CredentialRepository interface {
	Create(ctx context.Context, cred Credential) error
	FindByEmail(ctx context.Context, email string) (Credential, error)
}

// Querier is the subset of *pgxpool.Pool the repository needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements CredentialRepository using PostgreSQL.
type PostgresRepository struct {
	db Querier
}

// NewPostgresRepository builds a Postgres-backed credential repository.
func NewPostgresRepository(db Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a credential, reporting ErrEmailTaken on a duplicate email.
func (r *PostgresRepository) Create(ctx context.Context, cred Credential) error {
	userID, err := uuid.Parse(cred.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO credentials (user_id, email, password_hash, created_at)
        VALUES ($1, $2, $3, $4)`, userID, cred.Email, cred.PasswordHash, cred.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

// FindByEmail fetches the credential registered for email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Credential, error) {
	row := r.db.QueryRow(ctx, `SELECT user_id, email, password_hash, created_at FROM credentials WHERE email = $1`, email)
	var (
		id        uuid.UUID
		createdAt time.Time
		cred      Credential
	)
	if err := row.Scan(&id, &cred.Email, &cred.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credential{}, ErrCredentialNotFound
		}
		return Credential{}, err
	}
	cred.UserID = id.String()
	cred.CreatedAt = createdAt.UTC()
	return cred, nil
}
