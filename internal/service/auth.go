package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fieldpilot/portal-server-go/internal/audit"
	"github.com/fieldpilot/portal-server-go/internal/config"
	apperrors "github.com/fieldpilot/portal-server-go/internal/errors"
	"github.com/fieldpilot/portal-server-go/internal/model"
	"github.com/fieldpilot/portal-server-go/internal/repository"
	"github.com/fieldpilot/portal-server-go/internal/util"
)

// AuthResult is the outcome of a successful authentication, shared by the
// magic-link and password paths.
type AuthResult struct {
	SessionToken      string
	CustomerAccountID string
	ActiveBusinessID  *string
	ActiveCustomerID  *string
	Businesses        []model.BusinessAccess
	CustomerName      *string
	ExpiresAt         time.Time
	FirstLogin        bool
}

// authCore holds the state shared by every authentication path: session
// issuance, first-login detection, auditing and the first-login
// notification side effect.
type authCore struct {
	accounts      repository.AccountRepository
	links         repository.LinkRepository
	sessions      repository.SessionRepository
	businesses    repository.BusinessRepository
	auditor       *audit.Recorder
	notifier      *Notifier
	sessionSecret string
}

// completeLogin finishes an already-verified authentication: it atomically
// bumps the login counter (the pre-increment count decides first-login),
// issues a 30-day session scoped to the given context or the account's
// primary link, appends the audit event and, on first login, detaches the
// notification dispatch.
func (c *authCore) completeLogin(
	ctx context.Context,
	account *model.CustomerAccount,
	businessID, customerID *string,
	meta audit.RequestMeta,
) (*AuthResult, error) {
	if businessID == nil || customerID == nil {
		primary, err := c.links.FindPrimaryByAccount(ctx, account.ID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if primary != nil {
			businessID = &primary.BusinessID
			customerID = &primary.CustomerID
		}
	}

	loginCount, err := c.accounts.RecordLoginSuccess(ctx, account.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	firstLogin := loginCount == 1

	token, err := util.GenerateToken()
	if err != nil {
		return nil, apperrors.Internal("Failed to generate session token").WithCause(err)
	}

	session, err := c.sessions.Create(ctx, model.CreateSessionParams{
		TokenHash:         util.HmacSHA256(c.sessionSecret, token),
		CustomerAccountID: account.ID,
		ActiveBusinessID:  businessID,
		ActiveCustomerID:  customerID,
		ExpiresAt:         time.Now().Add(config.SessionTTL),
		UserAgent:         meta.UserAgent,
		IPAddress:         meta.IPAddress,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	eventType := model.AuditLogin
	if firstLogin {
		eventType = model.AuditFirstLogin
	}
	c.auditor.Record(ctx, audit.Event{
		Type:       eventType,
		CustomerID: customerID,
		BusinessID: businessID,
		AccountID:  &account.ID,
		Detail:     map[string]any{"login_count": loginCount},
		Meta:       meta,
	})

	var customerName *string
	if businessID != nil && customerID != nil {
		customer, err := c.businesses.FindCustomer(ctx, *businessID, *customerID)
		if err != nil {
			log.Error().Err(err).Msg("failed to load customer for auth result")
		} else if customer != nil {
			customerName = &customer.Name
		}

		if firstLogin && c.notifier != nil {
			// Fire and forget: must never gate or fail the response.
			c.notifier.NotifyFirstLogin(*businessID, *customerID, account.Email)
		}
	}

	access, err := c.links.ListAccessByAccount(ctx, account.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return &AuthResult{
		SessionToken:      token,
		CustomerAccountID: account.ID,
		ActiveBusinessID:  businessID,
		ActiveCustomerID:  customerID,
		Businesses:        access,
		CustomerName:      customerName,
		ExpiresAt:         session.ExpiresAt,
		FirstLogin:        firstLogin,
	}, nil
}
