package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fieldpilot/portal-server-go/internal/model"
)

// Mock repositories shared by the service tests.

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id string) (*model.CustomerAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerAccount), args.Error(1)
}

func (m *mockAccountRepo) FindByEmail(ctx context.Context, email string) (*model.CustomerAccount, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerAccount), args.Error(1)
}

func (m *mockAccountRepo) Create(ctx context.Context, params model.CreateCustomerAccountParams) (*model.CustomerAccount, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerAccount), args.Error(1)
}

func (m *mockAccountRepo) SetPassword(ctx context.Context, id string, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *mockAccountRepo) RecordLoginSuccess(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *mockAccountRepo) RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockFor time.Duration) (int, *time.Time, error) {
	args := m.Called(ctx, id, maxAttempts, lockFor)
	var lockedUntil *time.Time
	if args.Get(1) != nil {
		lockedUntil = args.Get(1).(*time.Time)
	}
	return args.Int(0), lockedUntil, args.Error(2)
}

type mockLinkRepo struct {
	mock.Mock
}

func (m *mockLinkRepo) FindActive(ctx context.Context, accountID, businessID, customerID string) (*model.CustomerAccountLink, error) {
	args := m.Called(ctx, accountID, businessID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerAccountLink), args.Error(1)
}

func (m *mockLinkRepo) FindActiveByCustomer(ctx context.Context, businessID, customerID string) (*model.CustomerAccountLink, error) {
	args := m.Called(ctx, businessID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerAccountLink), args.Error(1)
}

func (m *mockLinkRepo) FindPrimaryByAccount(ctx context.Context, accountID string) (*model.CustomerAccountLink, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerAccountLink), args.Error(1)
}

func (m *mockLinkRepo) FindOrCreate(ctx context.Context, params model.CreateLinkParams) (*model.CustomerAccountLink, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerAccountLink), args.Error(1)
}

func (m *mockLinkRepo) Revoke(ctx context.Context, businessID, customerID string) (*model.CustomerAccountLink, error) {
	args := m.Called(ctx, businessID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerAccountLink), args.Error(1)
}

func (m *mockLinkRepo) ListAccessByAccount(ctx context.Context, accountID string) ([]model.BusinessAccess, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BusinessAccess), args.Error(1)
}

type mockInviteRepo struct {
	mock.Mock
}

func (m *mockInviteRepo) Create(ctx context.Context, params model.CreateInviteParams) (*model.PortalInvite, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PortalInvite), args.Error(1)
}

func (m *mockInviteRepo) Consume(ctx context.Context, tokenHash string) (*model.PortalInvite, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PortalInvite), args.Error(1)
}

func (m *mockInviteRepo) ExpireIfPending(ctx context.Context, tokenHash string) (bool, error) {
	args := m.Called(ctx, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *mockInviteRepo) MarkExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) Create(ctx context.Context, params model.CreateSessionParams) (*model.PortalSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PortalSession), args.Error(1)
}

func (m *mockSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.PortalSession, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PortalSession), args.Error(1)
}

func (m *mockSessionRepo) Touch(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockSessionRepo) Refresh(ctx context.Context, tokenHash string, expiresAt time.Time) (*model.PortalSession, error) {
	args := m.Called(ctx, tokenHash, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PortalSession), args.Error(1)
}

func (m *mockSessionRepo) UpdateContext(ctx context.Context, id string, businessID, customerID string) error {
	args := m.Called(ctx, id, businessID, customerID)
	return args.Error(0)
}

func (m *mockSessionRepo) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *mockSessionRepo) RevokeByAccountBusiness(ctx context.Context, accountID, businessID string) (int64, error) {
	args := m.Called(ctx, accountID, businessID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) Insert(ctx context.Context, params model.CreateAuditEventParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

type mockBusinessRepo struct {
	mock.Mock
}

func (m *mockBusinessRepo) FindByID(ctx context.Context, id string) (*model.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Business), args.Error(1)
}

func (m *mockBusinessRepo) FindCustomer(ctx context.Context, businessID, customerID string) (*model.Customer, error) {
	args := m.Called(ctx, businessID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *mockBusinessRepo) ListActiveStaff(ctx context.Context, businessID string) ([]model.StaffMember, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StaffMember), args.Error(1)
}

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) FindPreference(ctx context.Context, staffID string) (*model.NotificationPreference, error) {
	args := m.Called(ctx, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NotificationPreference), args.Error(1)
}

func (m *mockNotificationRepo) Create(ctx context.Context, params model.CreateNotificationParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendMagicLink(ctx context.Context, toEmail, toName, magicLink string) error {
	args := m.Called(ctx, toEmail, toName, magicLink)
	return args.Error(0)
}

func (m *mockMailer) SendFirstLoginAlert(ctx context.Context, toEmail, toName, customerName, businessName string) error {
	args := m.Called(ctx, toEmail, toName, customerName, businessName)
	return args.Error(0)
}
