package model

import (
	"time"
)

// PortalInvite is a single-use magic-link token record. The raw token is
// never stored, only its hash. Pending invites transition to accepted on
// redemption or expired once redeemed past expiry; they are never reused.
type PortalInvite struct {
	ID         string       `db:"id" json:"id"`
	TokenHash  string       `db:"token_hash" json:"-"`
	Email      string       `db:"email" json:"email"`
	CustomerID *string      `db:"customer_id" json:"customerId,omitempty"`
	BusinessID *string      `db:"business_id" json:"businessId,omitempty"`
	Status     InviteStatus `db:"status" json:"status"`
	ExpiresAt  time.Time    `db:"expires_at" json:"expiresAt"`
	AcceptedAt *time.Time   `db:"accepted_at" json:"acceptedAt,omitempty"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
}

// IsExpired checks if the invite has expired
func (i *PortalInvite) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

type CreateInviteParams struct {
	TokenHash  string
	Email      string
	CustomerID *string
	BusinessID *string
	ExpiresAt  time.Time
}
