package service

import (
	"context"
	"fmt"
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

// MagicLinkService issues and redeems single-use portal sign-in tokens.
type MagicLinkService struct {
	authCore
	invites     repository.InviteRepository
	mailer      mailer.Mailer
	rateLimiter *RateLimiter
	baseURL     string
}

func NewMagicLinkService(
	accounts repository.AccountRepository,
	links repository.LinkRepository,
	sessions repository.SessionRepository,
	businesses repository.BusinessRepository,
	invites repository.InviteRepository,
	auditor *audit.Recorder,
	notifier *Notifier,
	sender mailer.Mailer,
	rateLimiter *RateLimiter,
	sessionSecret string,
	baseURL string,
) *MagicLinkService {
	return &MagicLinkService{
		authCore: authCore{
			accounts:      accounts,
			links:         links,
			sessions:      sessions,
			businesses:    businesses,
			auditor:       auditor,
			notifier:      notifier,
			sessionSecret: sessionSecret,
		},
		invites:     invites,
		mailer:      sender,
		rateLimiter: rateLimiter,
		baseURL:     baseURL,
	}
}

// CheckIssueLimit checks if magic-link issuance is allowed for an IP.
func (s *MagicLinkService) CheckIssueLimit(ctx context.Context, ip string) (allowed bool, resetAt time.Time) {
	key := fmt.Sprintf("magiclink:%s", ip)
	return s.rateLimiter.CheckLimit(ctx, key, config.MagicLinkIssueLimit, config.MagicLinkIssueWindow)
}

// Issue creates a 15-minute single-use sign-in token for the account with
// the given email and mails a deep link embedding it. When no account
// exists, it returns success without creating anything so the response is
// indistinguishable from the known-account case. Email delivery failures
// are logged, not surfaced: the link stays valid either way.
func (s *MagicLinkService) Issue(ctx context.Context, email string) error {
	email = util.NormalizeEmail(email)

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.Database(err)
	}
	if account == nil {
		log.Info().Msg("magic link requested for unknown email, returning generic success")
		return nil
	}

	token, err := util.GenerateToken()
	if err != nil {
		return apperrors.Internal("Failed to generate token").WithCause(err)
	}

	params := model.CreateInviteParams{
		TokenHash: util.HashToken(token),
		Email:     email,
		ExpiresAt: time.Now().Add(config.MagicLinkTTL),
	}
	primary, err := s.links.FindPrimaryByAccount(ctx, account.ID)
	if err != nil {
		return apperrors.Database(err)
	}
	if primary != nil {
		params.BusinessID = &primary.BusinessID
		params.CustomerID = &primary.CustomerID
	}

	if _, err := s.invites.Create(ctx, params); err != nil {
		return apperrors.Database(err)
	}

	if err := s.mailer.SendMagicLink(ctx, email, "", s.magicLink(token)); err != nil {
		log.Error().Err(err).Msg("failed to send magic link email")
	}

	return nil
}

// Redeem exchanges a valid token for a session. The pending-to-accepted
// transition is a single conditional update, so concurrent redemptions of
// the same token cannot both succeed. Redeeming past expiry marks the
// invite expired before returning the error.
func (s *MagicLinkService) Redeem(ctx context.Context, token string, meta audit.RequestMeta) (*AuthResult, error) {
	tokenHash := util.HashToken(token)

	invite, err := s.invites.Consume(ctx, tokenHash)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if invite == nil {
		expired, err := s.invites.ExpireIfPending(ctx, tokenHash)
		if err != nil {
			log.Error().Err(err).Msg("failed to mark invite expired")
		} else if expired {
			log.Info().Str("token", util.MaskToken(token)).Msg("expired magic link redeemed")
		}
		return nil, apperrors.InvalidOrExpired()
	}

	account, err := s.accounts.FindByEmail(ctx, invite.Email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if account == nil {
		// Possession of the link proves control of the mailbox.
		account, err = s.accounts.Create(ctx, model.CreateCustomerAccountParams{
			Email:         invite.Email,
			AuthMethod:    model.AuthMethodMagicLink,
			EmailVerified: true,
		})
		if err != nil {
			return nil, apperrors.Database(err)
		}
	}

	if invite.BusinessID != nil && invite.CustomerID != nil {
		_, err = s.links.FindOrCreate(ctx, model.CreateLinkParams{
			CustomerAccountID: account.ID,
			BusinessID:        *invite.BusinessID,
			CustomerID:        *invite.CustomerID,
			IsPrimary:         account.LoginCount == 0,
		})
		if err != nil {
			return nil, apperrors.Database(err)
		}
	}

	return s.completeLogin(ctx, account, invite.BusinessID, invite.CustomerID, meta)
}

func (s *MagicLinkService) magicLink(token string) string {
	return fmt.Sprintf("%s/login?token=%s", s.baseURL, token)
}
