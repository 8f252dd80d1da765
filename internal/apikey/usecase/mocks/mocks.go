// Package mocks provides testify mocks for the api key use case interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/nationalid/internal/apikey/domain"
)

// MockAPIKeyRepository is a mock implementation of usecase.APIKeyRepository.
type MockAPIKeyRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockAPIKeyRepository) Create(ctx context.Context, apiKey *domain.APIKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockAPIKeyRepository) Get(ctx context.Context, id uuid.UUID) (*domain.APIKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

// ListActiveByPrefix mocks the ListActiveByPrefix method.
func (m *MockAPIKeyRepository) ListActiveByPrefix(ctx context.Context, prefix string) ([]*domain.APIKey, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

// List mocks the List method.
func (m *MockAPIKeyRepository) List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockAPIKeyRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TouchLastUsed mocks the TouchLastUsed method.
func (m *MockAPIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockAPIKeyUseCase is a mock implementation of usecase.APIKeyUseCase.
type MockAPIKeyUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockAPIKeyUseCase) Create(
	ctx context.Context,
	input *domain.CreateAPIKeyInput,
) (*domain.CreateAPIKeyOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreateAPIKeyOutput), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockAPIKeyUseCase) Revoke(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockAPIKeyUseCase) List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

// TouchLastUsed mocks the TouchLastUsed method.
func (m *MockAPIKeyUseCase) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockAuthenticator is a mock implementation of usecase.Authenticator.
type MockAuthenticator struct {
	mock.Mock
}

// Authenticate mocks the Authenticate method.
func (m *MockAuthenticator) Authenticate(ctx context.Context, secret string) (*domain.APIKey, error) {
	args := m.Called(ctx, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

// MockSecretService is a mock implementation of service.SecretService.
type MockSecretService struct {
	mock.Mock
}

// GenerateSecret mocks the GenerateSecret method.
func (m *MockSecretService) GenerateSecret() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

// HashSecret mocks the HashSecret method.
func (m *MockSecretService) HashSecret(plainSecret string) (string, error) {
	args := m.Called(plainSecret)
	return args.String(0), args.Error(1)
}

// CompareSecret mocks the CompareSecret method.
func (m *MockSecretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	args := m.Called(plainSecret, hashedSecret)
	return args.Bool(0)
}
