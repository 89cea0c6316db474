package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/fieldpilot/portal-server-go/internal/model"
)

// LinkRepository handles customer account link data operations
type LinkRepository interface {
	FindActive(ctx context.Context, accountID, businessID, customerID string) (*model.CustomerAccountLink, error)
	FindActiveByCustomer(ctx context.Context, businessID, customerID string) (*model.CustomerAccountLink, error)
	FindPrimaryByAccount(ctx context.Context, accountID string) (*model.CustomerAccountLink, error)
	// FindOrCreate returns the link for the (account, business, customer)
	// triple, inserting a new active one or reactivating a revoked one, so a
	// re-sent invite restores access. The unique constraint on the triple
	// makes this safe under concurrent invite sends.
	FindOrCreate(ctx context.Context, params model.CreateLinkParams) (*model.CustomerAccountLink, error)
	// Revoke flips the active link for (business, customer) to revoked and
	// returns it, or nil if no active link existed.
	Revoke(ctx context.Context, businessID, customerID string) (*model.CustomerAccountLink, error)
	ListAccessByAccount(ctx context.Context, accountID string) ([]model.BusinessAccess, error)
}

type linkRepo struct {
	db *sqlx.DB
}

// NewLinkRepository creates a new customer account link repository
func NewLinkRepository(db *sqlx.DB) LinkRepository {
	return &linkRepo{db: db}
}

func (r *linkRepo) FindActive(ctx context.Context, accountID, businessID, customerID string) (*model.CustomerAccountLink, error) {
	var link model.CustomerAccountLink
	err := r.db.GetContext(ctx, &link, `
		SELECT * FROM customer_account_links
		WHERE customer_account_id = $1 AND business_id = $2 AND customer_id = $3
		AND status = 'active'
	`, accountID, businessID, customerID)
	return HandleNotFound(&link, err)
}

func (r *linkRepo) FindActiveByCustomer(ctx context.Context, businessID, customerID string) (*model.CustomerAccountLink, error) {
	var link model.CustomerAccountLink
	err := r.db.GetContext(ctx, &link, `
		SELECT * FROM customer_account_links
		WHERE business_id = $1 AND customer_id = $2 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1
	`, businessID, customerID)
	return HandleNotFound(&link, err)
}

func (r *linkRepo) FindPrimaryByAccount(ctx context.Context, accountID string) (*model.CustomerAccountLink, error) {
	var link model.CustomerAccountLink
	err := r.db.GetContext(ctx, &link, `
		SELECT * FROM customer_account_links
		WHERE customer_account_id = $1 AND status = 'active'
		ORDER BY is_primary DESC, created_at ASC
		LIMIT 1
	`, accountID)
	return HandleNotFound(&link, err)
}

func (r *linkRepo) FindOrCreate(ctx context.Context, params model.CreateLinkParams) (*model.CustomerAccountLink, error) {
	var link model.CustomerAccountLink
	err := r.db.GetContext(ctx, &link, `
		INSERT INTO customer_account_links (customer_account_id, business_id, customer_id, is_primary)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (customer_account_id, business_id, customer_id)
		DO UPDATE SET status = 'active', updated_at = NOW()
		RETURNING *
	`, params.CustomerAccountID, params.BusinessID, params.CustomerID, params.IsPrimary)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *linkRepo) Revoke(ctx context.Context, businessID, customerID string) (*model.CustomerAccountLink, error) {
	var link model.CustomerAccountLink
	err := r.db.GetContext(ctx, &link, `
		UPDATE customer_account_links
		SET status = 'revoked', updated_at = NOW()
		WHERE business_id = $1 AND customer_id = $2 AND status = 'active'
		RETURNING *
	`, businessID, customerID)
	return HandleNotFound(&link, err)
}

func (r *linkRepo) ListAccessByAccount(ctx context.Context, accountID string) ([]model.BusinessAccess, error) {
	var access []model.BusinessAccess
	err := r.db.SelectContext(ctx, &access, `
		SELECT l.business_id, l.customer_id, b.name, b.logo_url, l.is_primary
		FROM customer_account_links l
		JOIN businesses b ON b.id = l.business_id
		WHERE l.customer_account_id = $1 AND l.status = 'active'
		ORDER BY l.is_primary DESC, b.name ASC
	`, accountID)
	if err != nil {
		return nil, err
	}
	return access, nil
}
