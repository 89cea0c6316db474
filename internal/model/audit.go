package model

import (
	"encoding/json"
	"time"
)

// AuditEventType identifies a security-relevant portal event.
type AuditEventType string

const (
	AuditInviteSent    AuditEventType = "invite_sent"
	AuditLogin         AuditEventType = "login"
	AuditFirstLogin    AuditEventType = "first_login"
	AuditAccessRevoked AuditEventType = "access_revoked"
)

// AuditEvent is an immutable append-only record. Rows are never mutated or
// deleted by this service.
type AuditEvent struct {
	ID                string           `db:"id" json:"id"`
	CustomerID        *string          `db:"customer_id" json:"customerId,omitempty"`
	BusinessID        *string          `db:"business_id" json:"businessId,omitempty"`
	CustomerAccountID *string          `db:"customer_account_id" json:"customerAccountId,omitempty"`
	EventType         AuditEventType   `db:"event_type" json:"eventType"`
	Detail            *json.RawMessage `db:"detail" json:"detail,omitempty"`
	ActorID           *string          `db:"actor_id" json:"actorId,omitempty"`
	IPAddress         *string          `db:"ip_address" json:"-"`
	UserAgent         *string          `db:"user_agent" json:"-"`
	CreatedAt         time.Time        `db:"created_at" json:"createdAt"`
}

type CreateAuditEventParams struct {
	CustomerID        *string
	BusinessID        *string
	CustomerAccountID *string
	EventType         AuditEventType
	Detail            map[string]any
	ActorID           *string
	IPAddress         *string
	UserAgent         *string
}
