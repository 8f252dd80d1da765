// Package usecase implements API key issuance, revocation and cache-first authentication.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/nationalid/internal/apikey/domain"
)

// APIKeyRepository persists API key records.
type APIKeyRepository interface {
	// Create inserts a new record.
	Create(ctx context.Context, apiKey *domain.APIKey) error

	// Get returns the record with the given id or domain.ErrAPIKeyNotFound.
	Get(ctx context.Context, id uuid.UUID) (*domain.APIKey, error)

	// ListActiveByPrefix returns every non-revoked record whose secret prefix equals prefix.
	ListActiveByPrefix(ctx context.Context, prefix string) ([]*domain.APIKey, error)

	// List returns records ordered by creation time, newest first.
	List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error)

	// Revoke marks the record revoked.
	Revoke(ctx context.Context, id uuid.UUID) error

	// TouchLastUsed sets last_used_at when at is later than the stored value.
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

// APIKeyUseCase manages the key lifecycle.
type APIKeyUseCase interface {
	// Create issues a key and returns the plain secret exactly once.
	Create(ctx context.Context, input *domain.CreateAPIKeyInput) (*domain.CreateAPIKeyOutput, error)

	// Revoke soft-revokes a key.
	Revoke(ctx context.Context, id uuid.UUID) error

	// List returns keys without their hashes.
	List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error)

	// TouchLastUsed records a successful use of the key.
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Authenticator resolves a presented secret to an active key.
type Authenticator interface {
	// Authenticate returns the key matching secret, or a *domain.AuthError.
	Authenticate(ctx context.Context, secret string) (*domain.APIKey, error)
}
