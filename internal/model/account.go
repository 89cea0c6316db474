package model

import (
	"time"
)

// CustomerAccount is one row per unique login identity, keyed by the
// lower-cased email. Created lazily on first magic-link redemption or first
// invite send; never hard-deleted (revocation affects links, not accounts).
type CustomerAccount struct {
	ID                  string     `db:"id" json:"id"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        *string    `db:"password_hash" json:"-"`
	AuthMethod          AuthMethod `db:"auth_method" json:"authMethod"`
	EmailVerified       bool       `db:"email_verified" json:"emailVerified"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	LoginCount          int        `db:"login_count" json:"loginCount"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`
}

// IsLocked reports whether the account is under a lockout window.
func (a *CustomerAccount) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

type CreateCustomerAccountParams struct {
	Email         string
	AuthMethod    AuthMethod
	EmailVerified bool
}
