package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fieldpilot/portal-server-go/internal/model"
)

// AccountRepository handles customer account data operations
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*model.CustomerAccount, error)
	FindByEmail(ctx context.Context, email string) (*model.CustomerAccount, error)
	Create(ctx context.Context, params model.CreateCustomerAccountParams) (*model.CustomerAccount, error)
	SetPassword(ctx context.Context, id string, passwordHash string) error
	// RecordLoginSuccess atomically resets the failure counter, clears any
	// lockout, increments the login counter and returns the post-increment
	// count. A return of 1 means this was the account's first login.
	RecordLoginSuccess(ctx context.Context, id string) (loginCount int, err error)
	// RecordLoginFailure atomically increments the failure counter, locking
	// the account once the counter reaches maxAttempts. It returns the
	// post-increment counter and the lockout deadline if one was set.
	RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockFor time.Duration) (attempts int, lockedUntil *time.Time, err error)
}

type accountRepo struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new customer account repository
func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) FindByID(ctx context.Context, id string) (*model.CustomerAccount, error) {
	var account model.CustomerAccount
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM customer_accounts WHERE id = $1
	`, id)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) FindByEmail(ctx context.Context, email string) (*model.CustomerAccount, error) {
	var account model.CustomerAccount
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM customer_accounts WHERE email = lower($1)
	`, email)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) Create(ctx context.Context, params model.CreateCustomerAccountParams) (*model.CustomerAccount, error) {
	var account model.CustomerAccount
	err := r.db.GetContext(ctx, &account, `
		INSERT INTO customer_accounts (email, auth_method, email_verified)
		VALUES (lower($1), $2, $3)
		RETURNING *
	`, params.Email, params.AuthMethod, params.EmailVerified)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) SetPassword(ctx context.Context, id string, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE customer_accounts
		SET password_hash = $1, auth_method = 'password', updated_at = NOW()
		WHERE id = $2
	`, passwordHash, id)
	return err
}

func (r *accountRepo) RecordLoginSuccess(ctx context.Context, id string) (int, error) {
	var loginCount int
	err := r.db.GetContext(ctx, &loginCount, `
		UPDATE customer_accounts
		SET login_count = login_count + 1,
		    last_login_at = NOW(),
		    failed_login_attempts = 0,
		    locked_until = NULL,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING login_count
	`, id)
	if err != nil {
		return 0, err
	}
	return loginCount, nil
}

func (r *accountRepo) RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockFor time.Duration) (int, *time.Time, error) {
	var row struct {
		FailedLoginAttempts int        `db:"failed_login_attempts"`
		LockedUntil         *time.Time `db:"locked_until"`
	}
	err := r.db.GetContext(ctx, &row, `
		UPDATE customer_accounts
		SET failed_login_attempts = failed_login_attempts + 1,
		    locked_until = CASE
		        WHEN failed_login_attempts + 1 >= $2 THEN NOW() + $3 * interval '1 second'
		        ELSE locked_until
		    END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING failed_login_attempts, locked_until
	`, id, maxAttempts, int64(lockFor.Seconds()))
	if err != nil {
		return 0, nil, err
	}
	return row.FailedLoginAttempts, row.LockedUntil, nil
}
