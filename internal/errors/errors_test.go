package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "Customer not found")
		assert.Equal(t, "NOT_FOUND: Customer not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(ErrCodeDatabase, "Database error", cause)
		assert.Contains(t, err.Error(), "DATABASE_ERROR")
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		details := map[string]string{"field": "email"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"Unauthorized", func() *AppError { return Unauthorized("test") }, ErrCodeUnauthorized},
		{"InvalidCredentials", func() *AppError { return InvalidCredentials() }, ErrCodeInvalidCredentials},
		{"AccountLocked", func() *AppError { return AccountLocked() }, ErrCodeAccountLocked},
		{"AccessDenied", func() *AppError { return AccessDenied("test") }, ErrCodeAccessDenied},
		{"InvalidOrExpired", func() *AppError { return InvalidOrExpired() }, ErrCodeInvalidOrExpired},
		{"NotFound", func() *AppError { return NotFound("Customer") }, ErrCodeNotFound},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"InvalidInput", func() *AppError { return InvalidInput("email", "bad format") }, ErrCodeInvalidInput},
		{"MissingRequired", func() *AppError { return MissingRequired("email") }, ErrCodeMissingRequired},
		{"RateLimitExceeded", func() *AppError { return RateLimitExceeded() }, ErrCodeRateLimitExceeded},
		{"EmailDeliveryFailed", func() *AppError { return EmailDeliveryFailed(errors.New("x")) }, ErrCodeEmailDeliveryFailed},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
		{"Database", func() *AppError { return Database(errors.New("x")) }, ErrCodeDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedCode, tt.constructor().Code)
		})
	}
}

func TestCredentialErrorsAreIndistinguishable(t *testing.T) {
	// The message must not leak whether the email exists.
	first := InvalidCredentials()
	second := InvalidCredentials()
	assert.Equal(t, first.Message, second.Message)
	assert.NotContains(t, first.Message, "email")
	assert.NotContains(t, first.Message, "password exists")
}

func TestHelpers(t *testing.T) {
	t.Run("IsAppError detects wrapped AppError", func(t *testing.T) {
		appErr := NotFound("Customer")
		wrapped := fmt.Errorf("handler: %w", appErr)
		assert.True(t, IsAppError(wrapped))
		assert.False(t, IsAppError(errors.New("plain")))
	})

	t.Run("AsAppError unwraps", func(t *testing.T) {
		appErr := AccountLocked()
		got, ok := AsAppError(fmt.Errorf("outer: %w", appErr))
		require.True(t, ok)
		assert.Equal(t, ErrCodeAccountLocked, got.Code)
	})

	t.Run("GetCode falls back to internal", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, GetCode(NotFound("Customer")))
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
	})
}
