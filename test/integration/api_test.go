//go:build integration

// Package integration runs the HTTP API end to end against PostgreSQL and Redis containers.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/nationalid/internal/app"
	"github.com/allisson/nationalid/internal/config"
	"github.com/allisson/nationalid/internal/testutil"
)

const (
	adminToken    = "integration-admin-token"
	validMaleCode = "30103271701312"
)

type integrationTestContext struct {
	container *app.Container
	server    *httptest.Server
	cancel    context.CancelFunc
	done      chan error
}

func setupIntegrationTest(t *testing.T) *integrationTestContext {
	t.Helper()
	gin.SetMode(gin.TestMode)

	_, dsn := testutil.StartPostgres(t)
	redisURL := testutil.StartRedis(t)

	cfg := &config.Config{
		DBDriver:                        "postgres",
		DBConnectionString:              dsn,
		DBMaxOpenConnections:            5,
		DBMaxIdleConnections:            2,
		DBConnMaxLifetime:               time.Minute,
		LogLevel:                        "error",
		CacheDriver:                     config.CacheDriverRedis,
		RedisURL:                        redisURL,
		RedisPoolSize:                   5,
		AuthCacheTTL:                    time.Minute,
		AuthNegativeCacheTTL:            time.Minute,
		QuotaDefaultPerMinute:           2,
		QuotaDefaultPerDay:              100,
		AuditQueueSize:                  64,
		AuditWorkers:                    2,
		AuditMaxAttempts:                3,
		AuditRetryBackoff:               100 * time.Millisecond,
		TimeZone:                        "UTC",
		AdminToken:                      adminToken,
		RateLimitIssuanceEnabled:        false,
		RateLimitIssuanceRequestsPerSec: 1,
		RateLimitIssuanceBurst:          5,
		MetricsEnabled:                  false,
	}

	container := app.NewContainer(cfg)

	server, err := container.HTTPServer()
	require.NoError(t, err)

	dispatcher, err := container.AuditDispatcher()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dispatcher.Start(ctx) }()

	tc := &integrationTestContext{
		container: container,
		server:    httptest.NewServer(server.Handler()),
		cancel:    cancel,
		done:      done,
	}

	t.Cleanup(func() {
		tc.server.Close()
		dispatcher.Close()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			cancel()
		}
		cancel()
		_ = container.Shutdown(context.Background())
	})

	return tc
}

func (tc *integrationTestContext) do(
	t *testing.T,
	method, path string,
	body any,
	headers map[string]string,
) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, tc.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // localhost test server
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}

func admin() map[string]string {
	return map[string]string{"Authorization": "Bearer " + adminToken}
}

func apiKey(secret string) map[string]string {
	return map[string]string{"X-API-Key": secret}
}

func TestIntegration_ValidationFlow(t *testing.T) {
	tc := setupIntegrationTest(t)

	t.Run("Health", func(t *testing.T) {
		resp, body := tc.do(t, http.MethodGet, "/health", nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "healthy", body["status"])

		resp, body = tc.do(t, http.MethodGet, "/ready", nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ready", body["status"])
	})

	t.Run("IssuanceRequiresAdminToken", func(t *testing.T) {
		resp, _ := tc.do(t, http.MethodPost, "/api/v1/api-keys", map[string]any{"name": "partner"}, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	resp, created := tc.do(t, http.MethodPost, "/api/v1/api-keys", map[string]any{
		"name":                      "partner",
		"quota_requests_per_minute": 3,
		"quota_requests_per_day":    50,
		"metadata":                  map[string]any{"team": "kyc"},
	}, admin())
	require.Equal(t, http.StatusCreated, resp.StatusCode, created)

	issued := created["api_key"].(map[string]any)
	secret := issued["key"].(string)
	require.NotEmpty(t, secret)
	assert.Equal(t, float64(3), issued["quota_requests_per_minute"])

	t.Run("MissingKey", func(t *testing.T) {
		resp, body := tc.do(t, http.MethodPost, "/api/v1/validate-id", map[string]any{"national_id": validMaleCode}, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, []any{"APIKey Required"}, body["errors"])
	})

	t.Run("UnknownKey", func(t *testing.T) {
		resp, body := tc.do(t, http.MethodPost, "/api/v1/validate-id",
			map[string]any{"national_id": validMaleCode}, apiKey("NotARealKey-123456"))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, []any{"Invalid API key"}, body["errors"])
	})

	t.Run("ValidThenInvalidThenThrottled", func(t *testing.T) {
		resp, body := tc.do(t, http.MethodPost, "/api/v1/validate-id",
			map[string]any{"national_id": validMaleCode}, apiKey(secret))
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		assert.Equal(t, true, body["valid"])
		parsed := body["parsed"].(map[string]any)
		assert.Equal(t, "2001-03-27", parsed["birth_date"])
		assert.Equal(t, "Monufia", parsed["governorate_name"])

		resp, body = tc.do(t, http.MethodPost, "/api/v1/validate",
			map[string]any{"national_id": "123"}, apiKey(secret))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []any{"invalid_length"}, body["errors"])

		resp, body = tc.do(t, http.MethodPost, "/api/v1/validate-id",
			map[string]any{}, apiKey(secret))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, body = tc.do(t, http.MethodPost, "/api/v1/validate-id",
			map[string]any{"national_id": validMaleCode}, apiKey(secret))
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, []any{"Request was throttled"}, body["errors"])
	})

	t.Run("AuditLogsArePersistedAndMasked", func(t *testing.T) {
		var entries []any
		require.Eventually(t, func() bool {
			resp, body := tc.do(t, http.MethodGet, "/api/v1/logs?limit=100", nil, admin())
			if resp.StatusCode != http.StatusOK {
				return false
			}
			entries, _ = body["data"].([]any)
			return len(entries) >= 6
		}, 10*time.Second, 200*time.Millisecond)

		maskedSeen := false
		for _, raw := range entries {
			entry := raw.(map[string]any)
			request, _ := entry["request_payload"].(map[string]any)
			if entry["status_code"] == float64(http.StatusOK) {
				assert.Equal(t, validMaleCode[:8]+"****", request["national_id"])
				assert.Equal(t, issued["id"], entry["api_key_id"])
				maskedSeen = true
			}
			if entry["status_code"] == float64(http.StatusForbidden) {
				assert.Nil(t, entry["api_key_id"])
			}
		}
		assert.True(t, maskedSeen)
	})

	t.Run("LastUsedIsTouched", func(t *testing.T) {
		useCase, err := tc.container.APIKeyUseCase()
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			keys, err := useCase.List(context.Background(), 0, 10)
			return err == nil && len(keys) == 1 && keys[0].LastUsedAt != nil
		}, 10*time.Second, 200*time.Millisecond)
	})
}

func TestIntegration_AnonymousQuota(t *testing.T) {
	tc := setupIntegrationTest(t)

	// Unauthenticated callers are rejected before any quota is consumed.
	for i := 0; i < 5; i++ {
		resp, _ := tc.do(t, http.MethodPost, "/api/v1/validate-id", map[string]any{"national_id": validMaleCode}, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}
}
