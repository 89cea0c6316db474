// Package audit appends security-relevant portal events to the audit trail.
//
// Appends are best effort: they run after the primary state mutation has
// committed, and a failed append is logged but never surfaced to the caller.
package audit

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fieldpilot/portal-server-go/internal/model"
	"github.com/fieldpilot/portal-server-go/internal/repository"
)

// RequestMeta captures the client context of the request that caused an
// event.
type RequestMeta struct {
	IPAddress *string
	UserAgent *string
}

// MetaFromRequest extracts the client IP and user agent from a request.
func MetaFromRequest(r *http.Request) RequestMeta {
	ip := ClientIP(r)
	ua := r.UserAgent()
	meta := RequestMeta{}
	if ip != "" {
		meta.IPAddress = &ip
	}
	if ua != "" {
		meta.UserAgent = &ua
	}
	return meta
}

// ClientIP resolves the originating client address, preferring proxy
// headers over the socket peer.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

// Event is one audit trail entry prior to persistence.
type Event struct {
	Type       model.AuditEventType
	CustomerID *string
	BusinessID *string
	AccountID  *string
	ActorID    *string
	Detail     map[string]any
	Meta       RequestMeta
}

// Recorder writes audit events to the store and mirrors them to the
// structured log.
type Recorder struct {
	repo repository.AuditRepository
}

func NewRecorder(repo repository.AuditRepository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends the event. Failures are logged, never returned: audit
// completeness is best effort relative to the primary write.
func (rec *Recorder) Record(ctx context.Context, event Event) {
	err := rec.repo.Insert(ctx, model.CreateAuditEventParams{
		CustomerID:        event.CustomerID,
		BusinessID:        event.BusinessID,
		CustomerAccountID: event.AccountID,
		EventType:         event.Type,
		Detail:            event.Detail,
		ActorID:           event.ActorID,
		IPAddress:         event.Meta.IPAddress,
		UserAgent:         event.Meta.UserAgent,
	})
	if err != nil {
		log.Error().Err(err).
			Str("event_type", string(event.Type)).
			Msg("failed to append audit event")
	}

	logger := log.With().
		Str("audit", "portal").
		Str("event_type", string(event.Type)).
		Logger()
	if event.AccountID != nil {
		logger = logger.With().Str("customer_account_id", *event.AccountID).Logger()
	}
	if event.BusinessID != nil {
		logger = logger.With().Str("business_id", *event.BusinessID).Logger()
	}
	if event.Meta.IPAddress != nil {
		logger = logger.With().Str("ip", *event.Meta.IPAddress).Logger()
	}
	logger.Info().Msg("portal audit event")
}
