package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/nationalid/internal/errors"
)

// secretEntropyBytes is the amount of randomness behind a generated secret.
const secretEntropyBytes = 32

// argon2idSecretService implements SecretService with argon2id PHC hashes.
type argon2idSecretService struct {
	hasher *pwdhash.PasswordHasher
}

// NewSecretService creates a SecretService using the moderate argon2id policy.
func NewSecretService() SecretService {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		panic(err)
	}
	return &argon2idSecretService{hasher: hasher}
}

// GenerateSecret creates a secret from 32 random bytes encoded as URL-safe base64.
func (s *argon2idSecretService) GenerateSecret() (string, string, error) {
	raw := make([]byte, secretEntropyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate api key secret")
	}

	plainSecret := base64.URLEncoding.EncodeToString(raw)

	hashedSecret, err := s.HashSecret(plainSecret)
	if err != nil {
		return "", "", err
	}

	return plainSecret, hashedSecret, nil
}

// HashSecret hashes plainSecret with argon2id.
func (s *argon2idSecretService) HashSecret(plainSecret string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash api key secret")
	}
	return hashed, nil
}

// CompareSecret verifies plainSecret against an argon2id hash. Malformed hashes never match.
func (s *argon2idSecretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	ok, err := s.hasher.Verify([]byte(plainSecret), hashedSecret)
	if err != nil {
		return false
	}
	return ok
}
