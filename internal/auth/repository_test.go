package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertCredentialSQL = `INSERT INTO credentials`
	selectCredentialSQL = `SELECT user_id, email, password_hash, created_at FROM credentials WHERE email = \$1`
)

func setupPostgresRepository(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return NewPostgresRepository(mock), mock
}

func sampleCredential() Credential {
	return Credential{
		UserID:       "6b0f1a52-3c1e-4c5b-9a51-1f7c2f0d9e11",
		Email:        "ada@example.com",
		PasswordHash: []byte("$2a$04$hash"),
		CreatedAt:    time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC),
	}
}

func TestPostgresRepositoryCreate(t *testing.T) {
	repo, mock := setupPostgresRepository(t)
	cred := sampleCredential()

	mock.ExpectExec(insertCredentialSQL).
		WithArgs(uuid.MustParse(cred.UserID), cred.Email, cred.PasswordHash, cred.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(context.Background(), cred))
}

func TestPostgresRepositoryCreateDuplicateEmail(t *testing.T) {
	repo, mock := setupPostgresRepository(t)

	mock.ExpectExec(insertCredentialSQL).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})
	assert.ErrorIs(t, repo.Create(context.Background(), sampleCredential()), ErrEmailTaken)
}

func TestPostgresRepositoryCreateOtherError(t *testing.T) {
	repo, mock := setupPostgresRepository(t)
	cause := errors.New("connection reset")

	mock.ExpectExec(insertCredentialSQL).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(cause)
	err := repo.Create(context.Background(), sampleCredential())
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrEmailTaken)
}

func TestPostgresRepositoryCreateRejectsBadUserID(t *testing.T) {
	repo, _ := setupPostgresRepository(t)
	cred := sampleCredential()
	cred.UserID = "not-a-uuid"
	assert.Error(t, repo.Create(context.Background(), cred))
}

func TestPostgresRepositoryFindByEmail(t *testing.T) {
	repo, mock := setupPostgresRepository(t)
	cred := sampleCredential()

	mock.ExpectQuery(selectCredentialSQL).
		WithArgs(cred.Email).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "email", "password_hash", "created_at"}).
			AddRow(cred.UserID, cred.Email, cred.PasswordHash, cred.CreatedAt))

	got, err := repo.FindByEmail(context.Background(), cred.Email)
	require.NoError(t, err)
	assert.Equal(t, cred, got)
}

func TestPostgresRepositoryFindByEmailMissing(t *testing.T) {
	repo, mock := setupPostgresRepository(t)

	mock.ExpectQuery(selectCredentialSQL).WithArgs("nobody@example.com").WillReturnError(pgx.ErrNoRows)
	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}
