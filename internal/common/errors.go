// Package common defines shared constants and sentinel errors used across
// client and server layers of WalletVault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Password-reset flow errors.
	ErrRateLimited      = errors.New("reset code recently issued")
	ErrResetCodeInvalid = errors.New("invalid or expired reset code")

	// ErrWalletDecryptionFailed means the stored seed did not decrypt under
	// the expected key. This is an integrity fault, never shown as a plain
	// credential error.
	ErrWalletDecryptionFailed = errors.New("wallet decryption failed")
)
