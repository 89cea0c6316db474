package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fieldpilot/portal-server-go/internal/config"
	apperrors "github.com/fieldpilot/portal-server-go/internal/errors"
	"github.com/fieldpilot/portal-server-go/internal/model"
	"github.com/fieldpilot/portal-server-go/internal/repository"
	"github.com/fieldpilot/portal-server-go/internal/util"
)

// SessionInfo is the state returned to a portal client validating its
// session.
type SessionInfo struct {
	CustomerAccountID string
	Email             string
	ActiveBusinessID  *string
	ActiveCustomerID  *string
	Businesses        []model.BusinessAccess
}

// SessionService validates, refreshes and revokes portal sessions and
// manages the active business/customer context a session carries.
type SessionService struct {
	sessions      repository.SessionRepository
	links         repository.LinkRepository
	accounts      repository.AccountRepository
	sessionSecret string
}

func NewSessionService(
	sessions repository.SessionRepository,
	links repository.LinkRepository,
	accounts repository.AccountRepository,
	sessionSecret string,
) *SessionService {
	return &SessionService{
		sessions:      sessions,
		links:         links,
		accounts:      accounts,
		sessionSecret: sessionSecret,
	}
}

func (s *SessionService) findSession(ctx context.Context, token string) (*model.PortalSession, error) {
	tokenHash := util.HmacSHA256(s.sessionSecret, token)
	session, err := s.sessions.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil || !session.IsValid(time.Now()) {
		return nil, apperrors.Unauthorized("Invalid or expired session")
	}
	return session, nil
}

// Validate checks the session and returns its context plus the linked
// businesses of the owning account. Beyond the session's own revoked/expiry
// flags it re-verifies that the active context still has an active link, so
// access revocation takes effect on the next validation even for sessions
// the bulk revoke missed.
func (s *SessionService) Validate(ctx context.Context, token string) (*SessionInfo, error) {
	session, err := s.findSession(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.ActiveBusinessID != nil && session.ActiveCustomerID != nil {
		link, err := s.links.FindActive(ctx, session.CustomerAccountID, *session.ActiveBusinessID, *session.ActiveCustomerID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if link == nil {
			return nil, apperrors.Unauthorized("Portal access has been revoked")
		}
	}

	if err := s.sessions.Touch(ctx, session.ID); err != nil {
		log.Error().Err(err).Msg("failed to touch session")
	}

	account, err := s.accounts.FindByID(ctx, session.CustomerAccountID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if account == nil {
		return nil, apperrors.Unauthorized("Invalid or expired session")
	}

	access, err := s.links.ListAccessByAccount(ctx, session.CustomerAccountID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return &SessionInfo{
		CustomerAccountID: session.CustomerAccountID,
		Email:             account.Email,
		ActiveBusinessID:  session.ActiveBusinessID,
		ActiveCustomerID:  session.ActiveCustomerID,
		Businesses:        access,
	}, nil
}

// Refresh extends any non-revoked session by the full session TTL. Prior
// expiry is deliberately not checked here; this is a keepalive, not a
// security boundary, and validation enforces expiry.
func (s *SessionService) Refresh(ctx context.Context, token string) (time.Time, error) {
	tokenHash := util.HmacSHA256(s.sessionSecret, token)
	session, err := s.sessions.Refresh(ctx, tokenHash, time.Now().Add(config.SessionTTL))
	if err != nil {
		return time.Time{}, apperrors.Database(err)
	}
	if session == nil {
		return time.Time{}, apperrors.Unauthorized("Invalid session")
	}
	return session.ExpiresAt, nil
}

// SwitchContext points the session at another (business, customer) pair the
// account holds an active link for. This is the authorization gate that
// keeps a session from pivoting into businesses it has no link to.
func (s *SessionService) SwitchContext(ctx context.Context, token, businessID, customerID string) error {
	session, err := s.findSession(ctx, token)
	if err != nil {
		return err
	}

	link, err := s.links.FindActive(ctx, session.CustomerAccountID, businessID, customerID)
	if err != nil {
		return apperrors.Database(err)
	}
	if link == nil {
		return apperrors.AccessDenied("No portal access to this business")
	}

	if err := s.sessions.UpdateContext(ctx, session.ID, businessID, customerID); err != nil {
		return apperrors.Database(err)
	}
	return nil
}

// Logout revokes the session. Idempotent: unknown tokens are treated as
// already logged out.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	tokenHash := util.HmacSHA256(s.sessionSecret, token)
	if err := s.sessions.Revoke(ctx, tokenHash); err != nil {
		return apperrors.Database(err)
	}
	return nil
}
