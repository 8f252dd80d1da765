package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/nationalid/internal/apikey/domain"
	"github.com/allisson/nationalid/internal/apikey/service"
	"github.com/allisson/nationalid/internal/cache"
	apperrors "github.com/allisson/nationalid/internal/errors"
)

// authCacheNamespace prefixes authentication cache keys.
const authCacheNamespace = "api_key"

// AuthenticatorConfig holds cache TTLs for resolved and rejected secrets.
type AuthenticatorConfig struct {
	PositiveTTL time.Duration
	NegativeTTL time.Duration
}

// DefaultAuthenticatorConfig returns 300s for hits and 60s for tombstones.
func DefaultAuthenticatorConfig() AuthenticatorConfig {
	return AuthenticatorConfig{
		PositiveTTL: 300 * time.Second,
		NegativeTTL: 60 * time.Second,
	}
}

// cachedAuthEntry is the cache payload. A tombstone has Valid=false and no key fields.
type cachedAuthEntry struct {
	Valid          bool           `json:"valid"`
	ID             uuid.UUID      `json:"id,omitzero"`
	Name           string         `json:"name,omitempty"`
	SecretPrefix   string         `json:"secret_prefix,omitempty"`
	QuotaPerMinute int            `json:"quota_per_minute,omitempty"`
	QuotaPerDay    int            `json:"quota_per_day,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at,omitzero"`
}

func (e *cachedAuthEntry) toDomain() *domain.APIKey {
	return &domain.APIKey{
		ID:             e.ID,
		Name:           e.Name,
		SecretPrefix:   e.SecretPrefix,
		QuotaPerMinute: e.QuotaPerMinute,
		QuotaPerDay:    e.QuotaPerDay,
		Metadata:       e.Metadata,
		CreatedAt:      e.CreatedAt,
	}
}

type cachingAuthenticator struct {
	repo          APIKeyRepository
	secretService service.SecretService
	store         cache.Store
	config        AuthenticatorConfig
	logger        *slog.Logger
}

// NewAuthenticator creates an Authenticator that consults store before the repository.
// Cache failures degrade to repository lookups; repository failures are returned to the caller.
func NewAuthenticator(
	repo APIKeyRepository,
	secretService service.SecretService,
	store cache.Store,
	config AuthenticatorConfig,
	logger *slog.Logger,
) Authenticator {
	return &cachingAuthenticator{
		repo:          repo,
		secretService: secretService,
		store:         store,
		config:        config,
		logger:        logger,
	}
}

// Authenticate resolves secret. Candidates sharing the secret prefix are verified one by one
// against their hashes; the first match wins.
func (a *cachingAuthenticator) Authenticate(ctx context.Context, secret string) (*domain.APIKey, error) {
	if secret == "" {
		return nil, domain.ErrInvalidAPIKey
	}

	prefix := domain.SecretPrefix(secret)
	cacheKey := cache.Key(authCacheNamespace, secret)

	if entry, ok := a.lookup(ctx, cacheKey); ok {
		if !entry.Valid {
			a.logger.Warn("api key authentication failed",
				slog.String("prefix", prefix),
				slog.Bool("cached", true))
			return nil, domain.ErrInvalidAPIKey
		}
		return entry.toDomain(), nil
	}

	candidates, err := a.repo.ListActiveByPrefix(ctx, prefix)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load api key candidates")
	}

	for _, candidate := range candidates {
		if !a.secretService.CompareSecret(secret, candidate.HashedSecret) {
			continue
		}

		a.remember(ctx, cacheKey, &cachedAuthEntry{
			Valid:          true,
			ID:             candidate.ID,
			Name:           candidate.Name,
			SecretPrefix:   candidate.SecretPrefix,
			QuotaPerMinute: candidate.QuotaPerMinute,
			QuotaPerDay:    candidate.QuotaPerDay,
			Metadata:       candidate.Metadata,
			CreatedAt:      candidate.CreatedAt,
		}, a.config.PositiveTTL)

		return candidate, nil
	}

	a.remember(ctx, cacheKey, &cachedAuthEntry{Valid: false}, a.config.NegativeTTL)
	a.logger.Warn("api key authentication failed",
		slog.String("prefix", prefix),
		slog.Int("candidates", len(candidates)))

	return nil, domain.ErrInvalidAPIKey
}

// lookup reads and decodes a cache entry. Misses and cache failures both report ok=false.
func (a *cachingAuthenticator) lookup(ctx context.Context, key string) (*cachedAuthEntry, bool) {
	raw, err := a.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			a.logger.Warn("auth cache read failed", slog.Any("error", err))
		}
		return nil, false
	}

	var entry cachedAuthEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		a.logger.Warn("auth cache entry is corrupt", slog.Any("error", err))
		return nil, false
	}
	return &entry, true
}

// remember writes a cache entry, logging failures.
func (a *cachingAuthenticator) remember(ctx context.Context, key string, entry *cachedAuthEntry, ttl time.Duration) {
	raw, err := json.Marshal(entry)
	if err != nil {
		a.logger.Warn("auth cache entry encode failed", slog.Any("error", err))
		return
	}
	if err := a.store.Set(ctx, key, raw, ttl); err != nil {
		a.logger.Warn("auth cache write failed", slog.Any("error", err))
	}
}
