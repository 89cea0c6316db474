package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"

	"github.com/fieldpilot/portal-server-go/internal/audit"
	"github.com/fieldpilot/portal-server-go/internal/config"
	apperrors "github.com/fieldpilot/portal-server-go/internal/errors"
	"github.com/fieldpilot/portal-server-go/internal/repository"
	"github.com/fieldpilot/portal-server-go/internal/util"
)

// PasswordService authenticates accounts by password and lets an
// authenticated session set one.
type PasswordService struct {
	authCore
	rateLimiter *RateLimiter
}

func NewPasswordService(
	accounts repository.AccountRepository,
	links repository.LinkRepository,
	sessions repository.SessionRepository,
	businesses repository.BusinessRepository,
	auditor *audit.Recorder,
	notifier *Notifier,
	rateLimiter *RateLimiter,
	sessionSecret string,
) *PasswordService {
	return &PasswordService{
		authCore: authCore{
			accounts:      accounts,
			links:         links,
			sessions:      sessions,
			businesses:    businesses,
			auditor:       auditor,
			notifier:      notifier,
			sessionSecret: sessionSecret,
		},
		rateLimiter: rateLimiter,
	}
}

// CheckLoginLimit checks if password login attempts are allowed for an IP.
func (s *PasswordService) CheckLoginLimit(ctx context.Context, ip string) (allowed bool, resetAt time.Time) {
	key := fmt.Sprintf("login:%s", ip)
	return s.rateLimiter.CheckLimit(ctx, key, config.LoginAttemptLimit, config.LoginAttemptWindow)
}

// Login verifies the password and issues a session. The failure message is
// identical whether the email is unknown or the password is wrong. Five
// consecutive failures lock the account for fifteen minutes; a successful
// login clears the counter and any lock.
func (s *PasswordService) Login(ctx context.Context, email, password string, meta audit.RequestMeta) (*AuthResult, error) {
	email = util.NormalizeEmail(email)

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if account == nil {
		return nil, apperrors.InvalidCredentials()
	}

	if account.IsLocked(time.Now()) {
		return nil, apperrors.AccountLocked()
	}

	match := false
	if account.PasswordHash != nil {
		match, err = argon2id.ComparePasswordAndHash(password, *account.PasswordHash)
		if err != nil {
			return nil, apperrors.Internal("Failed to verify password").WithCause(err)
		}
	}

	if !match {
		attempts, lockedUntil, err := s.accounts.RecordLoginFailure(
			ctx, account.ID, config.MaxFailedLoginAttempts, config.LockoutDuration,
		)
		if err != nil {
			log.Error().Err(err).Msg("failed to record login failure")
		} else if lockedUntil != nil {
			log.Warn().
				Int("attempts", attempts).
				Time("locked_until", *lockedUntil).
				Msg("customer account locked after repeated failures")
		}
		return nil, apperrors.InvalidCredentials()
	}

	return s.completeLogin(ctx, account, nil, nil, meta)
}

// CreatePassword stores an argon2id hash for the session's account and
// switches its auth method to password. Password strength policy is left to
// the caller.
func (s *PasswordService) CreatePassword(ctx context.Context, sessionToken, password string) error {
	tokenHash := util.HmacSHA256(s.sessionSecret, sessionToken)
	session, err := s.sessions.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return apperrors.Database(err)
	}
	if session == nil || !session.IsValid(time.Now()) {
		return apperrors.Unauthorized("Invalid or expired session")
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return apperrors.Internal("Failed to hash password").WithCause(err)
	}

	if err := s.accounts.SetPassword(ctx, session.CustomerAccountID, hash); err != nil {
		return apperrors.Database(err)
	}

	return nil
}
