package http

import (
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

	"github.com/allisson/nationalid/internal/auditlog/domain"
	"github.com/allisson/nationalid/internal/auditlog/http/dto"
	"github.com/allisson/nationalid/internal/auditlog/usecase/mocks"
)

func setupTestAuditLogHandler(t *testing.T) (*AuditLogHandler, *mocks.MockAuditLogUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockAuditLogUseCase{}
	t.Cleanup(func() { mockUseCase.AssertExpectations(t) })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewAuditLogHandler(mockUseCase, logger), mockUseCase
}

func createTestContext(method, url string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, url, nil)
	return c, w
}

func TestAuditLogHandler_ListHandler(t *testing.T) {
	t.Run("Success_DefaultPagination", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		keyID := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()
		auditLogs := []*domain.AuditLog{
			{
				ID:             uuid.Must(uuid.NewV7()),
				APIKeyID:       &keyID,
				Endpoint:       "/api/v1/validate-id",
				Method:         http.MethodPost,
				StatusCode:     http.StatusOK,
				RequestPayload: map[string]any{"national_id": "30103271****"},
				CreatedAt:      now,
			},
			{
				ID:         uuid.Must(uuid.NewV7()),
				Endpoint:   "/api/v1/validate-id",
				Method:     http.MethodPost,
				StatusCode: http.StatusForbidden,
				CreatedAt:  now.Add(-time.Minute),
			},
		}

		mockUseCase.On("List", mock.Anything, 0, 10).Return(auditLogs, nil).Once()

		c, w := createTestContext(http.MethodGet, "/api/v1/logs")
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListAuditLogsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 2)
		assert.Equal(t, auditLogs[0].ID.String(), response.Data[0].ID)
		require.NotNil(t, response.Data[0].APIKeyID)
		assert.Equal(t, keyID.String(), *response.Data[0].APIKeyID)
		assert.Nil(t, response.Data[1].APIKeyID)
		assert.Equal(t, http.StatusForbidden, response.Data[1].StatusCode)
	})

	t.Run("Success_CustomPagination", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		mockUseCase.On("List", mock.Anything, 20, 100).Return([]*domain.AuditLog{}, nil).Once()

		c, w := createTestContext(http.MethodGet, "/api/v1/logs?offset=20&limit=100")
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	})

	tests := []struct {
		name string
		url  string
	}{
		{name: "Error_NegativeOffset", url: "/api/v1/logs?offset=-1"},
		{name: "Error_OffsetNotNumber", url: "/api/v1/logs?offset=abc"},
		{name: "Error_LimitZero", url: "/api/v1/logs?limit=0"},
		{name: "Error_LimitAboveMax", url: "/api/v1/logs?limit=101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := setupTestAuditLogHandler(t)

			c, w := createTestContext(http.MethodGet, tt.url)
			handler.ListHandler(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "bad_request", response["error"])
		})
	}

	t.Run("Error_UseCaseFailure", func(t *testing.T) {
		handler, mockUseCase := setupTestAuditLogHandler(t)

		mockUseCase.On("List", mock.Anything, 0, 10).Return(nil, errors.New("db down")).Once()

		c, w := createTestContext(http.MethodGet, "/api/v1/logs")
		handler.ListHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
