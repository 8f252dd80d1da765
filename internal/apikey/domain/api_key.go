// Package domain defines the API key record that authorizes callers of the validation endpoint.
//
// Raw secrets are never stored. Each record keeps an argon2id hash of the secret plus the first
// eight characters of the secret as a non-unique lookup prefix; several records may share a prefix.
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SecretPrefixLength is the number of leading secret characters stored for candidate lookup.
	SecretPrefixLength = 8

	// DefaultQuotaPerMinute applies when a key is created without an explicit minute quota.
	DefaultQuotaPerMinute = 10

	// DefaultQuotaPerDay applies when a key is created without an explicit daily quota.
	DefaultQuotaPerDay = 100
)

// APIKey is a persisted credential. It is created once, never deleted, and only the Revoked
// and LastUsedAt fields change after creation.
type APIKey struct {
	ID             uuid.UUID
	Name           string
	HashedSecret   string
	SecretPrefix   string
	Revoked        bool
	QuotaPerMinute int
	QuotaPerDay    int
	Metadata       map[string]any
	CreatedAt      time.Time
	LastUsedAt     *time.Time
}

// CreateAPIKeyInput carries the fields accepted when issuing a key. An empty Secret asks the
// use case to generate one. Zero quotas are replaced by the defaults.
type CreateAPIKeyInput struct {
	Name           string
	Secret         string
	QuotaPerMinute int
	QuotaPerDay    int
	Metadata       map[string]any
}

// CreateAPIKeyOutput returns the stored record together with the plain secret, which is shown once.
type CreateAPIKeyOutput struct {
	APIKey      *APIKey
	PlainSecret string
}

// SecretPrefix returns the first SecretPrefixLength characters of secret, or all of it when shorter.
func SecretPrefix(secret string) string {
	runes := []rune(secret)
	if len(runes) > SecretPrefixLength {
		runes = runes[:SecretPrefixLength]
	}
	return string(runes)
}
