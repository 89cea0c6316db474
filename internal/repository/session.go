package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fieldpilot/portal-server-go/internal/model"
)

// SessionRepository handles portal session data operations
type SessionRepository interface {
	Create(ctx context.Context, params model.CreateSessionParams) (*model.PortalSession, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.PortalSession, error)
	Touch(ctx context.Context, id string) error
	// Refresh extends a non-revoked session's expiry and returns it, or nil
	// if no non-revoked session matches. Prior expiry is deliberately not
	// checked; expiry enforcement belongs to validation.
	Refresh(ctx context.Context, tokenHash string, expiresAt time.Time) (*model.PortalSession, error)
	UpdateContext(ctx context.Context, id string, businessID, customerID string) error
	// Revoke marks the session matching the token as revoked. Idempotent;
	// unknown tokens are not an error.
	Revoke(ctx context.Context, tokenHash string) error
	// RevokeByAccountBusiness revokes every non-revoked session of the
	// account whose active context is the given business.
	RevokeByAccountBusiness(ctx context.Context, accountID, businessID string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type sessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new portal session repository
func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, params model.CreateSessionParams) (*model.PortalSession, error) {
	var session model.PortalSession
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO portal_sessions (token_hash, customer_account_id, active_business_id, active_customer_id, expires_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *
	`, params.TokenHash, params.CustomerAccountID, params.ActiveBusinessID,
		params.ActiveCustomerID, params.ExpiresAt, params.UserAgent, params.IPAddress)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.PortalSession, error) {
	var session model.PortalSession
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM portal_sessions WHERE token_hash = $1
	`, tokenHash)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) Touch(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE portal_sessions SET last_active_at = NOW() WHERE id = $1
	`, id)
	return err
}

func (r *sessionRepo) Refresh(ctx context.Context, tokenHash string, expiresAt time.Time) (*model.PortalSession, error) {
	var session model.PortalSession
	err := r.db.GetContext(ctx, &session, `
		UPDATE portal_sessions
		SET expires_at = $2, last_active_at = NOW()
		WHERE token_hash = $1 AND is_revoked = false
		RETURNING *
	`, tokenHash, expiresAt)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) UpdateContext(ctx context.Context, id string, businessID, customerID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE portal_sessions
		SET active_business_id = $2, active_customer_id = $3, last_active_at = NOW()
		WHERE id = $1
	`, id, businessID, customerID)
	return err
}

func (r *sessionRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE portal_sessions SET is_revoked = true WHERE token_hash = $1
	`, tokenHash)
	return err
}

func (r *sessionRepo) RevokeByAccountBusiness(ctx context.Context, accountID, businessID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE portal_sessions
		SET is_revoked = true
		WHERE customer_account_id = $1 AND active_business_id = $2 AND is_revoked = false
	`, accountID, businessID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *sessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM portal_sessions WHERE expires_at < NOW() - interval '7 days'
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
