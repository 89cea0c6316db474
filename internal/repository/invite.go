package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/fieldpilot/portal-server-go/internal/model"
)

// InviteRepository handles portal invite (magic-link token) data operations
type InviteRepository interface {
	Create(ctx context.Context, params model.CreateInviteParams) (*model.PortalInvite, error)
	// Consume atomically transitions a pending, unexpired invite to accepted
	// and returns it. A nil result means no such invite: unknown token,
	// already consumed, or past expiry. The conditional update is what makes
	// a token single use under concurrent redemptions.
	Consume(ctx context.Context, tokenHash string) (*model.PortalInvite, error)
	// ExpireIfPending flips a pending invite that is past its expiry to
	// expired. Returns true if a row was updated.
	ExpireIfPending(ctx context.Context, tokenHash string) (bool, error)
	// MarkExpired sweeps all pending invites past expiry. Used by the
	// cleanup job.
	MarkExpired(ctx context.Context) (int64, error)
}

type inviteRepo struct {
	db *sqlx.DB
}

// NewInviteRepository creates a new portal invite repository
func NewInviteRepository(db *sqlx.DB) InviteRepository {
	return &inviteRepo{db: db}
}

func (r *inviteRepo) Create(ctx context.Context, params model.CreateInviteParams) (*model.PortalInvite, error) {
	var invite model.PortalInvite
	err := r.db.GetContext(ctx, &invite, `
		INSERT INTO portal_invites (token_hash, email, customer_id, business_id, expires_at)
		VALUES ($1, lower($2), $3, $4, $5)
		RETURNING *
	`, params.TokenHash, params.Email, params.CustomerID, params.BusinessID, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepo) Consume(ctx context.Context, tokenHash string) (*model.PortalInvite, error) {
	var invite model.PortalInvite
	err := r.db.GetContext(ctx, &invite, `
		UPDATE portal_invites
		SET status = 'accepted', accepted_at = NOW()
		WHERE token_hash = $1 AND status = 'pending' AND expires_at > NOW()
		RETURNING *
	`, tokenHash)
	return HandleNotFound(&invite, err)
}

func (r *inviteRepo) ExpireIfPending(ctx context.Context, tokenHash string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE portal_invites
		SET status = 'expired'
		WHERE token_hash = $1 AND status = 'pending' AND expires_at <= NOW()
	`, tokenHash)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *inviteRepo) MarkExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE portal_invites
		SET status = 'expired'
		WHERE status = 'pending' AND expires_at <= NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
