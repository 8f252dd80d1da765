package domain

import (
	apperrors "github.com/allisson/nationalid/internal/errors"
)

// AuthFailureReason tells a missing credential apart from a rejected one.
type AuthFailureReason string

const (
	// AuthMissing means no API key was presented.
	AuthMissing AuthFailureReason = "missing"

	// AuthInvalid means the presented API key matched no active record.
	AuthInvalid AuthFailureReason = "invalid"
)

// AuthError is returned by authentication. It matches errors.ErrUnauthorized.
type AuthError struct {
	Reason AuthFailureReason
}

// Error implements error.
func (e *AuthError) Error() string {
	if e.Reason == AuthMissing {
		return "APIKey Required"
	}
	return "Invalid API key"
}

// Unwrap lets callers match the shared unauthorized sentinel.
func (e *AuthError) Unwrap() error {
	return apperrors.ErrUnauthorized
}

var (
	// ErrAPIKeyRequired is returned when the request carries no API key.
	ErrAPIKeyRequired = &AuthError{Reason: AuthMissing}

	// ErrInvalidAPIKey is returned for any secret that does not resolve to an active key.
	// Unknown prefixes and hash mismatches are deliberately indistinguishable.
	ErrInvalidAPIKey = &AuthError{Reason: AuthInvalid}

	// ErrAPIKeyNotFound indicates the key id does not exist.
	ErrAPIKeyNotFound = apperrors.Wrap(apperrors.ErrNotFound, "api key not found")

	// ErrAPIKeyAlreadyRevoked indicates a revoke was requested for a revoked key.
	ErrAPIKeyAlreadyRevoked = apperrors.Wrap(apperrors.ErrConflict, "api key already revoked")
)
