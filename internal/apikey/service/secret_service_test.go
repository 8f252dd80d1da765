package service

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretService_GenerateSecret(t *testing.T) {
	service := NewSecretService()

	t.Run("Success_URLSafeThirtyTwoBytes", func(t *testing.T) {
		plainSecret, hashedSecret, err := service.GenerateSecret()
		require.NoError(t, err)

		decoded, err := base64.URLEncoding.DecodeString(plainSecret)
		require.NoError(t, err)
		assert.Len(t, decoded, 32)
		assert.Contains(t, hashedSecret, "$argon2id$")
		assert.NotContains(t, hashedSecret, plainSecret)
	})

	t.Run("Success_UniquePerCall", func(t *testing.T) {
		first, _, err := service.GenerateSecret()
		require.NoError(t, err)
		second, _, err := service.GenerateSecret()
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("Success_GeneratedSecretVerifies", func(t *testing.T) {
		plainSecret, hashedSecret, err := service.GenerateSecret()
		require.NoError(t, err)

		assert.True(t, service.CompareSecret(plainSecret, hashedSecret))
	})
}

func TestSecretService_CompareSecret(t *testing.T) {
	service := NewSecretService()

	hashed, err := service.HashSecret("custom-secret-value")
	require.NoError(t, err)

	t.Run("Success_Match", func(t *testing.T) {
		assert.True(t, service.CompareSecret("custom-secret-value", hashed))
	})

	t.Run("Error_Mismatch", func(t *testing.T) {
		assert.False(t, service.CompareSecret("custom-secret-valuf", hashed))
	})

	t.Run("Error_MalformedHash", func(t *testing.T) {
		assert.False(t, service.CompareSecret("custom-secret-value", "not-a-phc-string"))
	})

	t.Run("Success_SaltedHashesDiffer", func(t *testing.T) {
		again, err := service.HashSecret("custom-secret-value")
		require.NoError(t, err)

		assert.NotEqual(t, hashed, again)
	})
}
