// Package service provides secret generation and one-way hashing for API keys.
package service

// SecretService generates and verifies API key secrets.
type SecretService interface {
	// GenerateSecret returns a random URL-safe secret carrying 32 bytes of entropy
	// together with its hash.
	GenerateSecret() (plainSecret string, hashedSecret string, err error)

	// HashSecret hashes a caller-supplied secret.
	HashSecret(plainSecret string) (hashedSecret string, err error)

	// CompareSecret reports whether plainSecret matches hashedSecret in constant time.
	CompareSecret(plainSecret string, hashedSecret string) bool
}
