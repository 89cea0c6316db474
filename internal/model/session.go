package model

import (
	"time"
)

// PortalSession is an authenticated portal session. The token is stored as
// an HMAC-SHA256 hash. The active context (business + customer) must always
// correspond to an active CustomerAccountLink of the owning account.
// Sessions are revoked in place, never deleted, until cleanup reaps them.
type PortalSession struct {
	ID                string    `db:"id" json:"id"`
	TokenHash         string    `db:"token_hash" json:"-"`
	CustomerAccountID string    `db:"customer_account_id" json:"customerAccountId"`
	ActiveBusinessID  *string   `db:"active_business_id" json:"activeBusinessId,omitempty"`
	ActiveCustomerID  *string   `db:"active_customer_id" json:"activeCustomerId,omitempty"`
	ExpiresAt         time.Time `db:"expires_at" json:"expiresAt"`
	IsRevoked         bool      `db:"is_revoked" json:"isRevoked"`
	LastActiveAt      time.Time `db:"last_active_at" json:"lastActiveAt"`
	UserAgent         *string   `db:"user_agent" json:"-"`
	IPAddress         *string   `db:"ip_address" json:"-"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}

// IsValid reports whether the session can authenticate a request. Expiry is
// a strict comparison: a session exactly at its expiry instant is invalid.
func (s *PortalSession) IsValid(now time.Time) bool {
	return !s.IsRevoked && s.ExpiresAt.After(now)
}

type CreateSessionParams struct {
	TokenHash         string
	CustomerAccountID string
	ActiveBusinessID  *string
	ActiveCustomerID  *string
	ExpiresAt         time.Time
	UserAgent         *string
	IPAddress         *string
}
