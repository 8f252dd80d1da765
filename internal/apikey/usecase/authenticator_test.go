package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/nationalid/internal/apikey/domain"
	"github.com/allisson/nationalid/internal/apikey/usecase/mocks"
	"github.com/allisson/nationalid/internal/cache"
	apperrors "github.com/allisson/nationalid/internal/errors"
)

// brokenStore fails every operation.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenStore) IncrementWindow(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("connection refused")
}

func (brokenStore) Ping(context.Context) error { return errors.New("connection refused") }

func (brokenStore) Close() error { return nil }

type authFixture struct {
	authenticator Authenticator
	repo          *mocks.MockAPIKeyRepository
	secrets       *mocks.MockSecretService
}

func setupAuthenticator(t *testing.T, store cache.Store) *authFixture {
	t.Helper()

	repo := &mocks.MockAPIKeyRepository{}
	secrets := &mocks.MockSecretService{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Cleanup(func() {
		repo.AssertExpectations(t)
		secrets.AssertExpectations(t)
	})

	return &authFixture{
		authenticator: NewAuthenticator(repo, secrets, store, DefaultAuthenticatorConfig(), logger),
		repo:          repo,
		secrets:       secrets,
	}
}

func newFixedStore() *cache.MemoryStore {
	now := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
	return cache.NewMemoryStore(func() time.Time { return now })
}

func TestCachingAuthenticator_Authenticate(t *testing.T) {
	ctx := context.Background()
	secret := "PrefixAA-rest-of-the-secret"
	keyID := uuid.Must(uuid.NewV7())

	activeKey := &domain.APIKey{
		ID:             keyID,
		Name:           "partner",
		HashedSecret:   "$argon2id$match",
		SecretPrefix:   "PrefixAA",
		QuotaPerMinute: 10,
		QuotaPerDay:    100,
		CreatedAt:      time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("Error_EmptySecretSkipsLookups", func(t *testing.T) {
		store := newFixedStore()
		f := setupAuthenticator(t, store)

		apiKey, err := f.authenticator.Authenticate(ctx, "")

		assert.Nil(t, apiKey)
		assert.ErrorIs(t, err, domain.ErrInvalidAPIKey)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("Success_MissThenCachedHit", func(t *testing.T) {
		store := newFixedStore()
		f := setupAuthenticator(t, store)

		f.repo.On("ListActiveByPrefix", ctx, "PrefixAA").Return([]*domain.APIKey{activeKey}, nil).Once()
		f.secrets.On("CompareSecret", secret, "$argon2id$match").Return(true).Once()

		first, err := f.authenticator.Authenticate(ctx, secret)
		require.NoError(t, err)
		assert.Equal(t, keyID, first.ID)

		second, err := f.authenticator.Authenticate(ctx, secret)
		require.NoError(t, err)
		assert.Equal(t, keyID, second.ID)
		assert.Equal(t, 10, second.QuotaPerMinute)
		assert.Equal(t, 100, second.QuotaPerDay)
		assert.Empty(t, second.HashedSecret)
	})

	t.Run("Success_FirstMatchingCandidateWins", func(t *testing.T) {
		store := newFixedStore()
		f := setupAuthenticator(t, store)

		other := &domain.APIKey{ID: uuid.Must(uuid.NewV7()), HashedSecret: "$argon2id$other", SecretPrefix: "PrefixAA"}
		f.repo.On("ListActiveByPrefix", ctx, "PrefixAA").
			Return([]*domain.APIKey{other, activeKey}, nil).Once()
		f.secrets.On("CompareSecret", secret, "$argon2id$other").Return(false).Once()
		f.secrets.On("CompareSecret", secret, "$argon2id$match").Return(true).Once()

		apiKey, err := f.authenticator.Authenticate(ctx, secret)

		require.NoError(t, err)
		assert.Equal(t, keyID, apiKey.ID)
	})

	t.Run("Error_UnknownSecretHitsNegativeCache", func(t *testing.T) {
		store := newFixedStore()
		f := setupAuthenticator(t, store)

		f.repo.On("ListActiveByPrefix", ctx, "WrongPre").Return([]*domain.APIKey{}, nil).Once()

		for i := 0; i < 3; i++ {
			apiKey, err := f.authenticator.Authenticate(ctx, "WrongPrefix-secret")
			assert.Nil(t, apiKey)
			assert.ErrorIs(t, err, domain.ErrInvalidAPIKey)
		}

		f.repo.AssertNumberOfCalls(t, "ListActiveByPrefix", 1)
	})

	t.Run("Error_HashMismatchIsIndistinguishable", func(t *testing.T) {
		store := newFixedStore()
		f := setupAuthenticator(t, store)

		f.repo.On("ListActiveByPrefix", ctx, "PrefixAA").Return([]*domain.APIKey{activeKey}, nil).Once()
		f.secrets.On("CompareSecret", "PrefixAA-wrong", "$argon2id$match").Return(false).Once()

		_, mismatchErr := f.authenticator.Authenticate(ctx, "PrefixAA-wrong")

		f.repo.On("ListActiveByPrefix", ctx, "NoSuchPr").Return([]*domain.APIKey{}, nil).Once()
		_, unknownErr := f.authenticator.Authenticate(ctx, "NoSuchPrefix")

		assert.Equal(t, mismatchErr, unknownErr)
		assert.True(t, apperrors.Is(mismatchErr, apperrors.ErrUnauthorized))
	})

	t.Run("Success_TombstoneExpiresAfterNegativeTTL", func(t *testing.T) {
		now := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
		store := cache.NewMemoryStore(func() time.Time { return now })
		f := setupAuthenticator(t, store)

		f.repo.On("ListActiveByPrefix", ctx, "PrefixAA").Return([]*domain.APIKey{}, nil).Once()
		_, err := f.authenticator.Authenticate(ctx, secret)
		assert.ErrorIs(t, err, domain.ErrInvalidAPIKey)

		now = now.Add(61 * time.Second)

		f.repo.On("ListActiveByPrefix", ctx, "PrefixAA").Return([]*domain.APIKey{activeKey}, nil).Once()
		f.secrets.On("CompareSecret", secret, "$argon2id$match").Return(true).Once()

		apiKey, err := f.authenticator.Authenticate(ctx, secret)
		require.NoError(t, err)
		assert.Equal(t, keyID, apiKey.ID)
	})

	t.Run("Success_CacheFailureFallsBackToRepository", func(t *testing.T) {
		f := setupAuthenticator(t, brokenStore{})

		f.repo.On("ListActiveByPrefix", ctx, "PrefixAA").Return([]*domain.APIKey{activeKey}, nil).Twice()
		f.secrets.On("CompareSecret", secret, "$argon2id$match").Return(true).Twice()

		for i := 0; i < 2; i++ {
			apiKey, err := f.authenticator.Authenticate(ctx, secret)
			require.NoError(t, err)
			assert.Equal(t, keyID, apiKey.ID)
		}
	})

	t.Run("Error_RepositoryFailureIsNotCached", func(t *testing.T) {
		store := newFixedStore()
		f := setupAuthenticator(t, store)
		dbErr := errors.New("db down")

		f.repo.On("ListActiveByPrefix", ctx, "PrefixAA").Return(nil, dbErr).Once()

		_, err := f.authenticator.Authenticate(ctx, secret)

		assert.ErrorIs(t, err, dbErr)
		var authErr *domain.AuthError
		assert.False(t, errors.As(err, &authErr))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("Success_CorruptCacheEntryIsIgnored", func(t *testing.T) {
		store := newFixedStore()
		f := setupAuthenticator(t, store)

		require.NoError(t, store.Set(ctx, cache.Key(authCacheNamespace, secret), []byte("{not json"), time.Minute))
		f.repo.On("ListActiveByPrefix", ctx, "PrefixAA").Return([]*domain.APIKey{activeKey}, nil).Once()
		f.secrets.On("CompareSecret", secret, mock.Anything).Return(true).Once()

		apiKey, err := f.authenticator.Authenticate(ctx, secret)

		require.NoError(t, err)
		assert.Equal(t, keyID, apiKey.ID)
	})
}
