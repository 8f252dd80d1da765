package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/nationalid/internal/apikey/domain"
	"github.com/allisson/nationalid/internal/apikey/service"
	"github.com/allisson/nationalid/internal/database"
	apperrors "github.com/allisson/nationalid/internal/errors"
)

type apiKeyUseCase struct {
	txManager     database.TxManager
	repo          APIKeyRepository
	secretService service.SecretService
	now           func() time.Time
}

// NewAPIKeyUseCase creates an APIKeyUseCase.
func NewAPIKeyUseCase(
	txManager database.TxManager,
	repo APIKeyRepository,
	secretService service.SecretService,
) APIKeyUseCase {
	return &apiKeyUseCase{
		txManager:     txManager,
		repo:          repo,
		secretService: secretService,
		now:           time.Now,
	}
}

// Create hashes the supplied secret, or generates one, and stores the record.
func (u *apiKeyUseCase) Create(
	ctx context.Context,
	input *domain.CreateAPIKeyInput,
) (*domain.CreateAPIKeyOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "name is required")
	}

	quotaPerMinute := input.QuotaPerMinute
	if quotaPerMinute == 0 {
		quotaPerMinute = domain.DefaultQuotaPerMinute
	}
	quotaPerDay := input.QuotaPerDay
	if quotaPerDay == 0 {
		quotaPerDay = domain.DefaultQuotaPerDay
	}
	if quotaPerMinute < 0 || quotaPerDay < 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "quotas must be positive")
	}

	var (
		plainSecret  string
		hashedSecret string
		err          error
	)
	if input.Secret == "" {
		plainSecret, hashedSecret, err = u.secretService.GenerateSecret()
	} else {
		plainSecret = input.Secret
		hashedSecret, err = u.secretService.HashSecret(plainSecret)
	}
	if err != nil {
		return nil, err
	}

	apiKey := &domain.APIKey{
		ID:             uuid.Must(uuid.NewV7()),
		Name:           name,
		HashedSecret:   hashedSecret,
		SecretPrefix:   domain.SecretPrefix(plainSecret),
		QuotaPerMinute: quotaPerMinute,
		QuotaPerDay:    quotaPerDay,
		Metadata:       input.Metadata,
		CreatedAt:      u.now().UTC(),
	}

	if err := u.repo.Create(ctx, apiKey); err != nil {
		return nil, err
	}

	return &domain.CreateAPIKeyOutput{APIKey: apiKey, PlainSecret: plainSecret}, nil
}

// Revoke soft-revokes the key. Revoking twice is a conflict.
func (u *apiKeyUseCase) Revoke(ctx context.Context, id uuid.UUID) error {
	return u.txManager.WithTx(ctx, func(ctx context.Context) error {
		apiKey, err := u.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if apiKey.Revoked {
			return domain.ErrAPIKeyAlreadyRevoked
		}
		return u.repo.Revoke(ctx, id)
	})
}

// List returns a page of keys with hashes cleared.
func (u *apiKeyUseCase) List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	keys, err := u.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		key.HashedSecret = ""
	}
	return keys, nil
}

// TouchLastUsed delegates to the repository.
func (u *apiKeyUseCase) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return u.repo.TouchLastUsed(ctx, id, at.UTC())
}
