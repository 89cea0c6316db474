package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fieldpilot/portal-server-go/internal/audit"
	"github.com/fieldpilot/portal-server-go/internal/config"
	apperrors "github.com/fieldpilot/portal-server-go/internal/errors"
	"github.com/fieldpilot/portal-server-go/internal/mailer"
	"github.com/fieldpilot/portal-server-go/internal/model"
	"github.com/fieldpilot/portal-server-go/internal/repository"
	"github.com/fieldpilot/portal-server-go/internal/util"
)

// AccessService handles the staff-initiated operations: sending portal
// invites and revoking a customer's portal access.
type AccessService struct {
	accounts   repository.AccountRepository
	links      repository.LinkRepository
	invites    repository.InviteRepository
	sessions   repository.SessionRepository
	businesses repository.BusinessRepository
	auditor    *audit.Recorder
	mailer     mailer.Mailer
	baseURL    string
}

func NewAccessService(
	accounts repository.AccountRepository,
	links repository.LinkRepository,
	invites repository.InviteRepository,
	sessions repository.SessionRepository,
	businesses repository.BusinessRepository,
	auditor *audit.Recorder,
	sender mailer.Mailer,
	baseURL string,
) *AccessService {
	return &AccessService{
		accounts:   accounts,
		links:      links,
		invites:    invites,
		sessions:   sessions,
		businesses: businesses,
		auditor:    auditor,
		mailer:     sender,
		baseURL:    baseURL,
	}
}

type SendInviteParams struct {
	CustomerID   string
	BusinessID   string
	Email        string
	CustomerName string
	ActorID      *string
}

// SendInvite creates or links a customer account and mails it a fresh
// magic link. Unlike self-service issuance there is no anti-enumeration
// suppression (the caller is staff who already knows the customer), and a
// failed email send is a hard error: staff expects positive confirmation.
func (s *AccessService) SendInvite(ctx context.Context, p SendInviteParams, meta audit.RequestMeta) (string, error) {
	customer, err := s.businesses.FindCustomer(ctx, p.BusinessID, p.CustomerID)
	if err != nil {
		return "", apperrors.Database(err)
	}
	if customer == nil {
		return "", apperrors.NotFound("Customer")
	}

	// Recorded on the audit event so staff can tell a fresh grant from a
	// re-invite of a customer who already had access.
	existing, err := s.links.FindActiveByCustomer(ctx, p.BusinessID, p.CustomerID)
	if err != nil {
		return "", apperrors.Database(err)
	}

	email := p.Email
	if email == "" {
		if customer.Email == nil || *customer.Email == "" {
			return "", apperrors.NotFound("Customer email")
		}
		email = *customer.Email
	}
	email = util.NormalizeEmail(email)

	name := p.CustomerName
	if name == "" {
		name = customer.Name
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", apperrors.Database(err)
	}
	if account == nil {
		account, err = s.accounts.Create(ctx, model.CreateCustomerAccountParams{
			Email:      email,
			AuthMethod: model.AuthMethodMagicLink,
		})
		if err != nil {
			return "", apperrors.Database(err)
		}
	}

	primary, err := s.links.FindPrimaryByAccount(ctx, account.ID)
	if err != nil {
		return "", apperrors.Database(err)
	}
	_, err = s.links.FindOrCreate(ctx, model.CreateLinkParams{
		CustomerAccountID: account.ID,
		BusinessID:        p.BusinessID,
		CustomerID:        p.CustomerID,
		IsPrimary:         primary == nil,
	})
	if err != nil {
		return "", apperrors.Database(err)
	}

	token, err := util.GenerateToken()
	if err != nil {
		return "", apperrors.Internal("Failed to generate token").WithCause(err)
	}
	_, err = s.invites.Create(ctx, model.CreateInviteParams{
		TokenHash:  util.HashToken(token),
		Email:      email,
		CustomerID: &p.CustomerID,
		BusinessID: &p.BusinessID,
		ExpiresAt:  time.Now().Add(config.MagicLinkTTL),
	})
	if err != nil {
		return "", apperrors.Database(err)
	}

	magicLink := s.baseURL + "/login?token=" + token
	if err := s.mailer.SendMagicLink(ctx, email, name, magicLink); err != nil {
		return "", apperrors.EmailDeliveryFailed(err)
	}

	s.auditor.Record(ctx, audit.Event{
		Type:       model.AuditInviteSent,
		CustomerID: &p.CustomerID,
		BusinessID: &p.BusinessID,
		AccountID:  &account.ID,
		ActorID:    p.ActorID,
		Detail:     map[string]any{"email": email, "had_active_access": existing != nil},
		Meta:       meta,
	})

	return email, nil
}

// RevokeAccess revokes the customer's portal link for the business. The
// link revocation is the authoritative state change; the bulk session
// revoke that follows is best effort, and sessions it misses are rejected
// at their next validation by the link re-check.
func (s *AccessService) RevokeAccess(ctx context.Context, customerID, businessID string, actorID *string, meta audit.RequestMeta) error {
	link, err := s.links.Revoke(ctx, businessID, customerID)
	if err != nil {
		return apperrors.Database(err)
	}
	if link == nil {
		return apperrors.NotFound("Active portal access")
	}

	revoked, err := s.sessions.RevokeByAccountBusiness(ctx, link.CustomerAccountID, businessID)
	if err != nil {
		log.Error().Err(err).
			Str("customer_account_id", link.CustomerAccountID).
			Msg("failed to bulk revoke sessions after access revocation")
	}

	s.auditor.Record(ctx, audit.Event{
		Type:       model.AuditAccessRevoked,
		CustomerID: &customerID,
		BusinessID: &businessID,
		AccountID:  &link.CustomerAccountID,
		ActorID:    actorID,
		Detail:     map[string]any{"sessions_revoked": revoked},
		Meta:       meta,
	})

	return nil
}
