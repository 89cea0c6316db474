package model

import (
	"time"
)

// NotificationPreference is a per-staff-member opt-out row. A missing row
// means both channels are enabled.
type NotificationPreference struct {
	StaffID               string    `db:"staff_id" json:"staffId"`
	InAppPortalActivity   bool      `db:"inapp_portal_activity" json:"inappPortalActivity"`
	EmailPortalFirstLogin bool      `db:"email_portal_first_login" json:"emailPortalFirstLogin"`
	UpdatedAt             time.Time `db:"updated_at" json:"updatedAt"`
}

// Notification is an in-app notification row for a staff member.
type Notification struct {
	ID         string     `db:"id" json:"id"`
	StaffID    string     `db:"staff_id" json:"staffId"`
	BusinessID string     `db:"business_id" json:"businessId"`
	Type       string     `db:"type" json:"type"`
	Title      string     `db:"title" json:"title"`
	Body       string     `db:"body" json:"body"`
	ReadAt     *time.Time `db:"read_at" json:"readAt,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

type CreateNotificationParams struct {
	ID         string
	StaffID    string
	BusinessID string
	Type       string
	Title      string
	Body       string
}
