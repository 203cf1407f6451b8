package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinfolkhq/kinfolk-server/internal/model"
)

func newAccountRows(account model.Account) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "email", "password_hash", "email_verified", "full_name",
		"intended_role", "dob", "age", "created_at", "updated_at",
	}).AddRow(
		account.ID, account.Email, account.PasswordHash, account.EmailVerified,
		account.FullName, account.IntendedRole, account.DOB, account.Age,
		account.CreatedAt, account.UpdatedAt,
	)
}

func testAccount() model.Account {
	now := time.Now()
	return model.Account{
		ID:           uuid.New(),
		Email:        "jordan@example.com",
		PasswordHash: []byte("hash"),
		FullName:     "Jordan Example",
		IntendedRole: model.RoleParent,
		DOB:          time.Date(1990, time.March, 1, 0, 0, 0, 0, time.UTC),
		Age:          36,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestAccountRepository_GetByEmail_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	repo := NewAccountRepository(mock)

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestAccountRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	account := testAccount()
	mock.ExpectQuery(`SELECT .+ FROM accounts WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs(account.Email).
		WillReturnRows(newAccountRows(account))

	repo := NewAccountRepository(mock)

	got, err := repo.GetByEmail(context.Background(), account.Email)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
	assert.Equal(t, model.RoleParent, got.IntendedRole)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Create_DuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	account := testAccount()
	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs(
			account.ID, account.Email, account.PasswordHash, account.EmailVerified,
			account.FullName, account.IntendedRole, account.DOB, account.Age,
			account.CreatedAt, account.UpdatedAt,
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_lower_idx"})

	repo := NewAccountRepository(mock)

	_, err = repo.Create(context.Background(), account)
	require.ErrorIs(t, err, model.ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_MarkVerified_Transactional(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	metadata := map[string]any{"email_verified": true}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE accounts SET email_verified = TRUE`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE profiles SET role = \$2, metadata = metadata \|\| \$3`).
		WithArgs(id, model.RoleParent, metadata).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	repo := NewAccountRepository(mock)

	require.NoError(t, repo.MarkVerified(context.Background(), id, model.RoleParent, metadata))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_MarkVerified_UnknownAccountRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE accounts SET email_verified = TRUE`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	repo := NewAccountRepository(mock)

	err = repo.MarkVerified(context.Background(), id, model.RoleParent, nil)
	require.ErrorIs(t, err, model.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_UpdatePasswordHash_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE accounts SET password_hash = \$2`).
		WithArgs(id, []byte("new-hash")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewAccountRepository(mock)

	err = repo.UpdatePasswordHash(context.Background(), id, []byte("new-hash"))
	require.ErrorIs(t, err, model.ErrNotFound)
}
