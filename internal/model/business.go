package model

import (
	"time"
)

// Business is a tenant of the platform. Owned by the wider CRM; this
// service only reads it.
type Business struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	LogoURL   *string   `db:"logo_url" json:"logoUrl,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Customer is a business's customer record. Owned by the wider CRM; this
// service only reads it to resolve invite targets and display names.
type Customer struct {
	ID         string    `db:"id" json:"id"`
	BusinessID string    `db:"business_id" json:"businessId"`
	Name       string    `db:"name" json:"name"`
	Email      *string   `db:"email" json:"email,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// StaffMember is a business staff user who can receive portal activity
// notifications.
type StaffMember struct {
	ID         string    `db:"id" json:"id"`
	BusinessID string    `db:"business_id" json:"businessId"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	IsActive   bool      `db:"is_active" json:"isActive"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
