package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fieldpilot/portal-server-go/internal/model"
)

// AuditRepository appends immutable audit events. There are deliberately no
// update or delete operations.
type AuditRepository interface {
	Insert(ctx context.Context, params model.CreateAuditEventParams) error
}

type auditRepo struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new audit event repository
func NewAuditRepository(db *sqlx.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Insert(ctx context.Context, params model.CreateAuditEventParams) error {
	var detail []byte
	if params.Detail != nil {
		var err error
		detail, err = json.Marshal(params.Detail)
		if err != nil {
			return err
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO portal_audit_events
			(id, customer_id, business_id, customer_account_id, event_type, detail, actor_id, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, uuid.NewString(), params.CustomerID, params.BusinessID, params.CustomerAccountID,
		params.EventType, detail, params.ActorID, params.IPAddress, params.UserAgent)
	return err
}
