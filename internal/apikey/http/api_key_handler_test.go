package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/nationalid/internal/apikey/domain"
	"github.com/allisson/nationalid/internal/apikey/http/dto"
	"github.com/allisson/nationalid/internal/apikey/usecase/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestAPIKeyHandler(t *testing.T) (*APIKeyHandler, *mocks.MockAPIKeyUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockAPIKeyUseCase{}
	t.Cleanup(func() { mockUseCase.AssertExpectations(t) })

	return NewAPIKeyHandler(mockUseCase, discardLogger()), mockUseCase
}

func createTestContext(method, url string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, url, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestAPIKeyHandler_CreateHandler(t *testing.T) {
	t.Run("Success_GeneratedKeyWithDefaults", func(t *testing.T) {
		handler, mockUseCase := setupTestAPIKeyHandler(t)

		createdAt := time.Date(2026, time.October, 17, 8, 0, 0, 0, time.UTC)
		output := &domain.CreateAPIKeyOutput{
			APIKey: &domain.APIKey{
				ID:             uuid.Must(uuid.NewV7()),
				Name:           "partner",
				SecretPrefix:   "AbCdEfGh",
				QuotaPerMinute: domain.DefaultQuotaPerMinute,
				QuotaPerDay:    domain.DefaultQuotaPerDay,
				CreatedAt:      createdAt,
			},
			PlainSecret: "AbCdEfGh-generated",
		}

		mockUseCase.On("Create", mock.Anything, mock.MatchedBy(func(input *domain.CreateAPIKeyInput) bool {
			return input.Name == "partner" && input.Secret == "" &&
				input.QuotaPerMinute == 10 && input.QuotaPerDay == 100
		})).Return(output, nil).Once()

		c, w := createTestContext(http.MethodPost, "/api/v1/api-keys", []byte(`{"name":"partner"}`))
		handler.CreateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.CreateAPIKeyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "API key created successfully", response.Message)
		assert.Equal(t, output.APIKey.ID.String(), response.APIKey.ID)
		assert.Equal(t, "AbCdEfGh-generated", response.APIKey.Key)
		assert.Equal(t, 10, response.APIKey.QuotaRequestsPerMinute)
		assert.Equal(t, 100, response.APIKey.QuotaRequestsPerDay)
		assert.True(t, createdAt.Equal(response.APIKey.CreatedAt))
	})

	t.Run("Success_CustomKeyAndQuotas", func(t *testing.T) {
		handler, mockUseCase := setupTestAPIKeyHandler(t)

		output := &domain.CreateAPIKeyOutput{
			APIKey: &domain.APIKey{
				ID:             uuid.Must(uuid.NewV7()),
				Name:           "partner",
				QuotaPerMinute: 3,
				QuotaPerDay:    30,
				Metadata:       map[string]any{"team": "kyc"},
			},
			PlainSecret: "custom-secret-value",
		}

		mockUseCase.On("Create", mock.Anything, &domain.CreateAPIKeyInput{
			Name:           "partner",
			Secret:         "custom-secret-value",
			QuotaPerMinute: 3,
			QuotaPerDay:    30,
			Metadata:       map[string]any{"team": "kyc"},
		}).Return(output, nil).Once()

		body := `{"name":"partner","key":"custom-secret-value","quota_requests_per_minute":3,` +
			`"quota_requests_per_day":30,"metadata":{"team":"kyc"}}`
		c, w := createTestContext(http.MethodPost, "/api/v1/api-keys", []byte(body))
		handler.CreateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"metadata":{"team":"kyc"}`)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		handler, _ := setupTestAPIKeyHandler(t)

		c, w := createTestContext(http.MethodPost, "/api/v1/api-keys", []byte(`{"name":`))
		handler.CreateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "bad_request")
	})

	t.Run("Error_ValidationFailure", func(t *testing.T) {
		handler, _ := setupTestAPIKeyHandler(t)

		c, w := createTestContext(http.MethodPost, "/api/v1/api-keys", []byte(`{"quota_requests_per_minute":0}`))
		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "validation_error", response["error"])
		assert.Contains(t, response["message"], "name")
		assert.Contains(t, response["message"], "quota_requests_per_minute")
	})

	t.Run("Error_UseCaseFailure", func(t *testing.T) {
		handler, mockUseCase := setupTestAPIKeyHandler(t)

		mockUseCase.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

		c, w := createTestContext(http.MethodPost, "/api/v1/api-keys", []byte(`{"name":"partner"}`))
		handler.CreateHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db down")
	})
}
