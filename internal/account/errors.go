package account

import "github.com/hongminglow/itarix-api/internal/apperr"

var (
	ErrDuplicateUsername  = apperr.New(apperr.Conflict, "username already exists")
	ErrDuplicateEmail     = apperr.New(apperr.Conflict, "email already exists")
	ErrInvalidCredentials = apperr.New(apperr.Authentication, "invalid username or password")
	ErrEmailNotVerified   = apperr.New(apperr.Authentication, "please verify your email before logging in")
	ErrAccountLocked      = apperr.New(apperr.Authentication, "account locked, try again later")
	ErrNotFound           = apperr.New(apperr.NotFound, "account not found")

	// ErrInvalidToken rejects an unknown email verification token.
	ErrInvalidToken = apperr.New(apperr.Validation, "invalid token")
	// ErrInvalidOrExpiredToken rejects an unknown or expired refresh token.
	ErrInvalidOrExpiredToken = apperr.New(apperr.Authentication, "invalid or expired refresh token")
	// ErrInvalidOrExpiredResetToken rejects an unknown or expired password reset token.
	ErrInvalidOrExpiredResetToken = apperr.New(apperr.Validation, "invalid or expired reset token")
)
