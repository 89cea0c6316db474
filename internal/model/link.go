package model

import (
	"time"
)

// CustomerAccountLink joins a CustomerAccount to a (business, customer)
// pair. A given (account, business, customer) triple has at most one link;
// at most one link per account is primary (best effort). Links are revoked,
// never deleted.
type CustomerAccountLink struct {
	ID                string     `db:"id" json:"id"`
	CustomerAccountID string     `db:"customer_account_id" json:"customerAccountId"`
	BusinessID        string     `db:"business_id" json:"businessId"`
	CustomerID        string     `db:"customer_id" json:"customerId"`
	Status            LinkStatus `db:"status" json:"status"`
	IsPrimary         bool       `db:"is_primary" json:"isPrimary"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
}

type CreateLinkParams struct {
	CustomerAccountID string
	BusinessID        string
	CustomerID        string
	IsPrimary         bool
}

// BusinessAccess is the joined view of an active link returned to portal
// clients: the business the session may switch into plus the customer
// record it maps to.
type BusinessAccess struct {
	BusinessID string  `db:"business_id" json:"id"`
	CustomerID string  `db:"customer_id" json:"customerId"`
	Name       string  `db:"name" json:"name"`
	LogoURL    *string `db:"logo_url" json:"logoUrl"`
	IsPrimary  bool    `db:"is_primary" json:"isPrimary"`
}
