// Package repository provides persistence implementations for account storage.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ndanilin/filebox/internal/models"
)

// ErrDuplicateUsername is returned by Insert when an account with the same
// username already exists. Uniqueness is enforced by the database constraint,
// so the check and the insert are a single atomic statement.
var ErrDuplicateUsername = errors.New("username already exists")

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// PostgresAccountRepository implements account persistence using a PostgreSQL database.
type PostgresAccountRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository with the
// given database connection. db must be a valid *sql.DB connected to a
// PostgreSQL instance.
func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{DB: db}
}

const accountColumns = `id, username, password_hash, activated, activation_code, activation_expires, created_at`

// FindByUsername fetches the account with the given username.
// A missing account is not an error: it returns (nil, nil).
func (r *PostgresAccountRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE username = $1
	`, username)
	return scanAccount(row)
}

// FindByID fetches the account with the given id.
// A missing account is not an error: it returns (nil, nil).
func (r *PostgresAccountRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1
	`, id)
	return scanAccount(row)
}

// Insert stores a new account and fills in its database-assigned id and
// creation time. The id comes from a sequence, so ids are strictly increasing
// and never reused after deletions. Returns ErrDuplicateUsername if the
// username is already taken.
func (r *PostgresAccountRepository) Insert(ctx context.Context, account *models.Account) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO accounts (username, password_hash, activated, activation_code, activation_expires)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, account.Username, account.PasswordHash, account.Activated,
		account.ActivationCode, account.ActivationExpires,
	).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Activate flips the account to activated and clears the activation fields,
// but only if the presented code still matches the stored one. It reports
// whether a row was updated: false means the code was already consumed by a
// concurrent login or the account no longer matches, which callers treat as
// a failed activation rather than an error.
func (r *PostgresAccountRepository) Activate(ctx context.Context, id int64, code string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE accounts
		   SET activated = TRUE,
		       activation_code = NULL,
		       activation_expires = NULL
		 WHERE id = $1
		   AND activated = FALSE
		   AND activation_code = $2
	`, id, code)
	if err != nil {
		return false, fmt.Errorf("activate account: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("activate account: %w", err)
	}
	return rows > 0, nil
}

// ClearActivation removes a stale activation code without activating the
// account. A zero-row match is a silent no-op.
func (r *PostgresAccountRepository) ClearActivation(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE accounts
		   SET activation_code = NULL,
		       activation_expires = NULL
		 WHERE id = $1
		   AND activated = FALSE
	`, id)
	if err != nil {
		return fmt.Errorf("clear activation: %w", err)
	}
	return nil
}

// scanAccount reads one account row, mapping sql.ErrNoRows to (nil, nil).
func scanAccount(row *sql.Row) (*models.Account, error) {
	var acc models.Account
	err := row.Scan(
		&acc.ID, &acc.Username, &acc.PasswordHash, &acc.Activated,
		&acc.ActivationCode, &acc.ActivationExpires, &acc.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &acc, nil
}
