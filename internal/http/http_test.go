package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apiKeyHTTP "github.com/allisson/nationalid/internal/apikey/http"
	apiKeyMocks "github.com/allisson/nationalid/internal/apikey/usecase/mocks"
	auditLogDomain "github.com/allisson/nationalid/internal/auditlog/domain"
	auditLogHTTP "github.com/allisson/nationalid/internal/auditlog/http"
	auditLogMocks "github.com/allisson/nationalid/internal/auditlog/usecase/mocks"
	"github.com/allisson/nationalid/internal/cache"
	"github.com/allisson/nationalid/internal/config"
	"github.com/allisson/nationalid/internal/metrics"
	nationalIDHTTP "github.com/allisson/nationalid/internal/nationalid/http"
	nationalIDUseCase "github.com/allisson/nationalid/internal/nationalid/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// validationStub answers every request with a fixed result and remembers the last input.
type validationStub struct {
	result *nationalIDUseCase.Result
	last   *nationalIDUseCase.Input
}

func (v *validationStub) Validate(ctx context.Context, input *nationalIDUseCase.Input) *nationalIDUseCase.Result {
	v.last = input
	return v.result
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestServer() *Server {
	return NewServer(nil, nil, "localhost", 8080, discardLogger())
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthHandler(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}

func TestReadinessHandler(t *testing.T) {
	t.Run("NotReady_NothingConfigured", func(t *testing.T) {
		server := createTestServer()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "not_ready", body["status"])
		components, ok := body["components"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "error", components["database"])
		assert.Equal(t, "error", components["cache"])
	})

	t.Run("Ready_DatabaseAndCacheReachable", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		sqlMock.ExpectPing()

		server := NewServer(db, cache.NewMemoryStore(nil), "localhost", 8080, discardLogger())

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "ready", body["status"])
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("NotReady_CacheUnreachable", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		sqlMock.ExpectPing()

		brokenCache := pingerFunc(func(context.Context) error { return errors.New("connection refused") })
		server := NewServer(db, brokenCache, "localhost", 8080, discardLogger())

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		components := decodeBody(t, w)["components"].(map[string]any)
		assert.Equal(t, "ok", components["database"])
		assert.Equal(t, "error", components["cache"])
	})
}

func TestCustomLoggerMiddleware(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusTeapot, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/test", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, w.Header().Get("X-Request-Id"), entry["request_id"])
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type routerFixture struct {
	server     *Server
	validation *validationStub
	apiKeys    *apiKeyMocks.MockAPIKeyUseCase
	auditLogs  *auditLogMocks.MockAuditLogUseCase
}

func setupRouter(t *testing.T, cfg *config.Config) *routerFixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := discardLogger()
	f := &routerFixture{
		server: createTestServer(),
		validation: &validationStub{result: &nationalIDUseCase.Result{
			StatusCode: http.StatusForbidden,
			Outcome:    nationalIDUseCase.OutcomeUnauthorized,
			Body: &nationalIDUseCase.Response{
				Valid:  false,
				Errors: []string{"APIKey Required"},
			},
		}},
		apiKeys:   &apiKeyMocks.MockAPIKeyUseCase{},
		auditLogs: &auditLogMocks.MockAuditLogUseCase{},
	}

	f.server.SetupRouter(
		ctx,
		cfg,
		nationalIDHTTP.NewValidationHandler(f.validation, logger),
		apiKeyHTTP.NewAPIKeyHandler(f.apiKeys, logger),
		auditLogHTTP.NewAuditLogHandler(f.auditLogs, logger),
		nil,
	)
	return f
}

func TestServer_SetupRouter(t *testing.T) {
	t.Run("ValidationRoutesShareOneHandler", func(t *testing.T) {
		f := setupRouter(t, &config.Config{})

		for _, path := range []string{"/api/v1/validate-id", "/api/v1/validate"} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"national_id":"1"}`))
			f.server.Handler().ServeHTTP(w, req)

			assert.Equal(t, http.StatusForbidden, w.Code, path)
			assert.Equal(t, []any{"APIKey Required"}, decodeBody(t, w)["errors"], path)
			require.NotNil(t, f.validation.last)
			assert.Equal(t, path, f.validation.last.Endpoint)
		}
	})

	t.Run("AdminTokenGuardsLogs", func(t *testing.T) {
		f := setupRouter(t, &config.Config{AdminToken: "s3cr3t-admin"})

		w := httptest.NewRecorder()
		f.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		f.auditLogs.On("List", mock.Anything, 0, 10).Return([]*auditLogDomain.AuditLog{}, nil).Once()

		w = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil)
		req.Header.Set("Authorization", "Bearer s3cr3t-admin")
		f.server.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []any{}, decodeBody(t, w)["data"])
		f.auditLogs.AssertExpectations(t)
	})

	t.Run("IssuanceIsRateLimitedPerIP", func(t *testing.T) {
		f := setupRouter(t, &config.Config{
			RateLimitIssuanceEnabled:        true,
			RateLimitIssuanceRequestsPerSec: 0.001,
			RateLimitIssuanceBurst:          1,
		})

		codes := make([]int, 0, 2)
		for _, path := range []string{"/api/v1/api-keys", "/api/v1/get_api_key"} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
			req.Header.Set("Content-Type", "application/json")
			f.server.Handler().ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}

		assert.Equal(t, http.StatusUnprocessableEntity, codes[0])
		assert.Equal(t, http.StatusTooManyRequests, codes[1])
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		f := setupRouter(t, &config.Config{})

		w := httptest.NewRecorder()
		f.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("NoMetricsEndpointOnPublicRouter", func(t *testing.T) {
		f := setupRouter(t, &config.Config{})

		w := httptest.NewRecorder()
		f.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_StartWithoutRouter(t *testing.T) {
	err := createTestServer().Start(context.Background())
	assert.Error(t, err)
}

func TestServer_ShutdownGracefully(t *testing.T) {
	server := NewServer(nil, nil, "127.0.0.1", 0, discardLogger())
	server.SetupRouter(
		context.Background(),
		&config.Config{},
		nationalIDHTTP.NewValidationHandler(&validationStub{}, discardLogger()),
		apiKeyHTTP.NewAPIKeyHandler(&apiKeyMocks.MockAPIKeyUseCase{}, discardLogger()),
		auditLogHTTP.NewAuditLogHandler(&auditLogMocks.MockAuditLogUseCase{}, discardLogger()),
		nil,
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, server.Shutdown(shutdownCtx))
	assert.NoError(t, <-errChan)
}

func TestMetricsServer_Endpoints(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	metricsServer := NewMetricsServer("localhost", 8081, discardLogger(), provider)
	require.NotNil(t, metricsServer)

	w := httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}
