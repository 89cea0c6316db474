package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fieldpilot/portal-server-go/internal/audit"
	"github.com/fieldpilot/portal-server-go/internal/config"
	apperrors "github.com/fieldpilot/portal-server-go/internal/errors"
	"github.com/fieldpilot/portal-server-go/internal/model"
	"github.com/fieldpilot/portal-server-go/internal/util"
)

type passwordMocks struct {
	accounts   *mockAccountRepo
	links      *mockLinkRepo
	sessions   *mockSessionRepo
	businesses *mockBusinessRepo
	auditRepo  *mockAuditRepo
}

func newPasswordService() (*PasswordService, *passwordMocks) {
	m := &passwordMocks{
		accounts:   new(mockAccountRepo),
		links:      new(mockLinkRepo),
		sessions:   new(mockSessionRepo),
		businesses: new(mockBusinessRepo),
		auditRepo:  new(mockAuditRepo),
	}
	svc := &PasswordService{
		authCore: authCore{
			accounts:      m.accounts,
			links:         m.links,
			sessions:      m.sessions,
			businesses:    m.businesses,
			auditor:       audit.NewRecorder(m.auditRepo),
			sessionSecret: "test-secret",
		},
	}
	return svc, m
}

func hashedAccount(t *testing.T, password string) *model.CustomerAccount {
	t.Helper()
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	require.NoError(t, err)
	return &model.CustomerAccount{
		ID:           "acct-1",
		Email:        "alice@example.com",
		PasswordHash: &hash,
		AuthMethod:   model.AuthMethodPassword,
		LoginCount:   3,
	}
}

func TestPasswordLogin(t *testing.T) {
	ctx := context.Background()
	meta := audit.RequestMeta{}

	t.Run("unknown email and wrong password return the same error", func(t *testing.T) {
		svc, m := newPasswordService()
		account := hashedAccount(t, "correct horse battery staple")
		m.accounts.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)
		m.accounts.On("FindByEmail", mock.Anything, "alice@example.com").Return(account, nil)
		m.accounts.On("RecordLoginFailure", mock.Anything, "acct-1",
			config.MaxFailedLoginAttempts, config.LockoutDuration).Return(1, nil, nil)

		_, unknownErr := svc.Login(ctx, "ghost@example.com", "whatever", meta)
		_, wrongErr := svc.Login(ctx, "alice@example.com", "not the password", meta)

		require.Error(t, unknownErr)
		require.Error(t, wrongErr)
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
		assert.Equal(t, apperrors.ErrCodeInvalidCredentials, apperrors.GetCode(unknownErr))
		assert.Equal(t, apperrors.ErrCodeInvalidCredentials, apperrors.GetCode(wrongErr))
	})

	t.Run("locked account is rejected before password check", func(t *testing.T) {
		svc, m := newPasswordService()
		lockedUntil := time.Now().Add(10 * time.Minute)
		account := hashedAccount(t, "correct horse battery staple")
		account.LockedUntil = &lockedUntil
		m.accounts.On("FindByEmail", mock.Anything, "alice@example.com").Return(account, nil)

		_, err := svc.Login(ctx, "alice@example.com", "correct horse battery staple", meta)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeAccountLocked, apperrors.GetCode(err))
		m.accounts.AssertNotCalled(t, "RecordLoginFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired lockout no longer blocks login", func(t *testing.T) {
		svc, m := newPasswordService()
		lockedUntil := time.Now().Add(-time.Minute)
		account := hashedAccount(t, "correct horse battery staple")
		account.LockedUntil = &lockedUntil
		session := &model.PortalSession{ID: "sess-1", ExpiresAt: time.Now().Add(time.Hour)}

		m.accounts.On("FindByEmail", mock.Anything, "alice@example.com").Return(account, nil)
		m.links.On("FindPrimaryByAccount", mock.Anything, "acct-1").Return(nil, nil)
		m.accounts.On("RecordLoginSuccess", mock.Anything, "acct-1").Return(4, nil)
		m.sessions.On("Create", mock.Anything, mock.Anything).Return(session, nil)
		m.auditRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)
		m.links.On("ListAccessByAccount", mock.Anything, "acct-1").
			Return([]model.BusinessAccess{}, nil)

		result, err := svc.Login(ctx, "alice@example.com", "correct horse battery staple", meta)
		require.NoError(t, err)
		assert.False(t, result.FirstLogin)
	})

	t.Run("account without a password never matches", func(t *testing.T) {
		svc, m := newPasswordService()
		account := &model.CustomerAccount{ID: "acct-1", Email: "alice@example.com"}
		m.accounts.On("FindByEmail", mock.Anything, "alice@example.com").Return(account, nil)
		m.accounts.On("RecordLoginFailure", mock.Anything, "acct-1",
			config.MaxFailedLoginAttempts, config.LockoutDuration).Return(1, nil, nil)

		_, err := svc.Login(ctx, "alice@example.com", "anything", meta)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidCredentials, apperrors.GetCode(err))
		m.accounts.AssertExpectations(t)
	})

	t.Run("fifth failure reports a lockout but keeps the generic error", func(t *testing.T) {
		svc, m := newPasswordService()
		account := hashedAccount(t, "correct horse battery staple")
		lockedUntil := time.Now().Add(config.LockoutDuration)
		m.accounts.On("FindByEmail", mock.Anything, "alice@example.com").Return(account, nil)
		m.accounts.On("RecordLoginFailure", mock.Anything, "acct-1",
			config.MaxFailedLoginAttempts, config.LockoutDuration).Return(5, &lockedUntil, nil)

		_, err := svc.Login(ctx, "alice@example.com", "wrong again", meta)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidCredentials, apperrors.GetCode(err))
	})

	t.Run("successful login issues session against primary context", func(t *testing.T) {
		svc, m := newPasswordService()
		account := hashedAccount(t, "correct horse battery staple")
		primary := &model.CustomerAccountLink{
			CustomerAccountID: "acct-1",
			BusinessID:        "biz-1",
			CustomerID:        "cust-1",
			IsPrimary:         true,
		}
		session := &model.PortalSession{ID: "sess-1", ExpiresAt: time.Now().Add(time.Hour)}
		access := []model.BusinessAccess{{BusinessID: "biz-1", CustomerID: "cust-1", Name: "Acme"}}

		m.accounts.On("FindByEmail", mock.Anything, "alice@example.com").Return(account, nil)
		m.links.On("FindPrimaryByAccount", mock.Anything, "acct-1").Return(primary, nil)
		m.accounts.On("RecordLoginSuccess", mock.Anything, "acct-1").Return(4, nil)
		m.sessions.On("Create", mock.Anything, mock.MatchedBy(func(p model.CreateSessionParams) bool {
			return p.ActiveBusinessID != nil && *p.ActiveBusinessID == "biz-1" && p.TokenHash != ""
		})).Return(session, nil)
		m.auditRepo.On("Insert", mock.Anything, mock.MatchedBy(func(p model.CreateAuditEventParams) bool {
			return p.EventType == model.AuditLogin
		})).Return(nil)
		m.businesses.On("FindCustomer", mock.Anything, "biz-1", "cust-1").
			Return(&model.Customer{ID: "cust-1", Name: "Alice"}, nil)
		m.links.On("ListAccessByAccount", mock.Anything, "acct-1").Return(access, nil)

		result, err := svc.Login(ctx, "alice@example.com", "correct horse battery staple", meta)
		require.NoError(t, err)
		assert.NotEmpty(t, result.SessionToken)
		assert.Equal(t, access, result.Businesses)
		m.accounts.AssertNotCalled(t, "RecordLoginFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCreatePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown session token is rejected", func(t *testing.T) {
		svc, m := newPasswordService()
		m.sessions.On("FindByTokenHash", mock.Anything, mock.Anything).Return(nil, nil)

		err := svc.CreatePassword(ctx, "bogus", "hunter2hunter2")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(err))
	})

	t.Run("revoked session is rejected", func(t *testing.T) {
		svc, m := newPasswordService()
		session := &model.PortalSession{
			ID:        "sess-1",
			IsRevoked: true,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		m.sessions.On("FindByTokenHash", mock.Anything, mock.Anything).Return(session, nil)

		err := svc.CreatePassword(ctx, "token", "hunter2hunter2")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(err))
	})

	t.Run("valid session stores a verifiable argon2id hash", func(t *testing.T) {
		svc, m := newPasswordService()
		token := "valid-session-token"
		session := &model.PortalSession{
			ID:                "sess-1",
			CustomerAccountID: "acct-1",
			ExpiresAt:         time.Now().Add(time.Hour),
		}
		m.sessions.On("FindByTokenHash", mock.Anything, util.HmacSHA256("test-secret", token)).
			Return(session, nil)
		m.accounts.On("SetPassword", mock.Anything, "acct-1", mock.MatchedBy(func(hash string) bool {
			match, err := argon2id.ComparePasswordAndHash("hunter2hunter2", hash)
			return err == nil && match
		})).Return(nil)

		err := svc.CreatePassword(ctx, token, "hunter2hunter2")
		require.NoError(t, err)
		m.accounts.AssertExpectations(t)
	})
}
