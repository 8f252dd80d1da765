package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/nationalid/internal/apikey/domain"
	"github.com/allisson/nationalid/internal/apikey/usecase/mocks"
	databaseMocks "github.com/allisson/nationalid/internal/database/mocks"
	apperrors "github.com/allisson/nationalid/internal/errors"
)

func setupAPIKeyUseCase(t *testing.T) (APIKeyUseCase, *mocks.MockAPIKeyRepository, *mocks.MockSecretService) {
	t.Helper()

	txManager := databaseMocks.NewMockTxManager(t)
	txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Maybe()
	repo := &mocks.MockAPIKeyRepository{}
	secrets := &mocks.MockSecretService{}
	t.Cleanup(func() {
		repo.AssertExpectations(t)
		secrets.AssertExpectations(t)
	})

	return NewAPIKeyUseCase(txManager, repo, secrets), repo, secrets
}

func TestAPIKeyUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_GeneratedSecretWithDefaults", func(t *testing.T) {
		useCase, repo, secrets := setupAPIKeyUseCase(t)

		secrets.On("GenerateSecret").Return("AbCdEfGhIjKlMnOp", "$argon2id$hash", nil).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(k *domain.APIKey) bool {
			return k.Name == "partner" &&
				k.HashedSecret == "$argon2id$hash" &&
				k.SecretPrefix == "AbCdEfGh" &&
				k.QuotaPerMinute == domain.DefaultQuotaPerMinute &&
				k.QuotaPerDay == domain.DefaultQuotaPerDay &&
				!k.Revoked &&
				k.ID != uuid.Nil
		})).Return(nil).Once()

		output, err := useCase.Create(ctx, &domain.CreateAPIKeyInput{Name: "  partner "})

		require.NoError(t, err)
		assert.Equal(t, "AbCdEfGhIjKlMnOp", output.PlainSecret)
		assert.Equal(t, "partner", output.APIKey.Name)
		assert.False(t, output.APIKey.CreatedAt.IsZero())
	})

	t.Run("Success_SuppliedSecretAndQuotas", func(t *testing.T) {
		useCase, repo, secrets := setupAPIKeyUseCase(t)

		secrets.On("HashSecret", "my-own-secret-value").Return("$argon2id$own", nil).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(k *domain.APIKey) bool {
			return k.SecretPrefix == "my-own-s" && k.QuotaPerMinute == 60 && k.QuotaPerDay == 5000 &&
				k.Metadata["tier"] == "gold"
		})).Return(nil).Once()

		output, err := useCase.Create(ctx, &domain.CreateAPIKeyInput{
			Name:           "own",
			Secret:         "my-own-secret-value",
			QuotaPerMinute: 60,
			QuotaPerDay:    5000,
			Metadata:       map[string]any{"tier": "gold"},
		})

		require.NoError(t, err)
		assert.Equal(t, "my-own-secret-value", output.PlainSecret)
	})

	t.Run("Error_BlankName", func(t *testing.T) {
		useCase, _, _ := setupAPIKeyUseCase(t)

		_, err := useCase.Create(ctx, &domain.CreateAPIKeyInput{Name: "   "})

		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("Error_NegativeQuota", func(t *testing.T) {
		useCase, _, _ := setupAPIKeyUseCase(t)

		_, err := useCase.Create(ctx, &domain.CreateAPIKeyInput{Name: "x", QuotaPerMinute: -1})

		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("Error_RepositoryFailure", func(t *testing.T) {
		useCase, repo, secrets := setupAPIKeyUseCase(t)
		dbErr := errors.New("db down")

		secrets.On("GenerateSecret").Return("AbCdEfGhIjKlMnOp", "$argon2id$hash", nil).Once()
		repo.On("Create", ctx, mock.Anything).Return(dbErr).Once()

		_, err := useCase.Create(ctx, &domain.CreateAPIKeyInput{Name: "partner"})

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestAPIKeyUseCase_Revoke(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		useCase, repo, _ := setupAPIKeyUseCase(t)

		repo.On("Get", ctx, id).Return(&domain.APIKey{ID: id}, nil).Once()
		repo.On("Revoke", ctx, id).Return(nil).Once()

		assert.NoError(t, useCase.Revoke(ctx, id))
	})

	t.Run("Error_AlreadyRevoked", func(t *testing.T) {
		useCase, repo, _ := setupAPIKeyUseCase(t)

		repo.On("Get", ctx, id).Return(&domain.APIKey{ID: id, Revoked: true}, nil).Once()

		err := useCase.Revoke(ctx, id)

		assert.ErrorIs(t, err, domain.ErrAPIKeyAlreadyRevoked)
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		useCase, repo, _ := setupAPIKeyUseCase(t)

		repo.On("Get", ctx, id).Return(nil, domain.ErrAPIKeyNotFound).Once()

		assert.ErrorIs(t, useCase.Revoke(ctx, id), domain.ErrAPIKeyNotFound)
	})
}

func TestAPIKeyUseCase_List(t *testing.T) {
	ctx := context.Background()
	useCase, repo, _ := setupAPIKeyUseCase(t)

	repo.On("List", ctx, 0, 20).Return([]*domain.APIKey{
		{ID: uuid.Must(uuid.NewV7()), Name: "a", HashedSecret: "$argon2id$a"},
	}, nil).Once()

	keys, err := useCase.List(ctx, 0, 20)

	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Empty(t, keys[0].HashedSecret)
}

func TestAPIKeyUseCase_TouchLastUsed(t *testing.T) {
	ctx := context.Background()
	useCase, repo, _ := setupAPIKeyUseCase(t)
	id := uuid.Must(uuid.NewV7())
	at := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.FixedZone("EET", 3*3600))

	repo.On("TouchLastUsed", ctx, id, at.UTC()).Return(nil).Once()

	assert.NoError(t, useCase.TouchLastUsed(ctx, id, at))
}
