// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apiKeyHTTP "github.com/allisson/nationalid/internal/apikey/http"
	auditLogHTTP "github.com/allisson/nationalid/internal/auditlog/http"
	"github.com/allisson/nationalid/internal/config"
	"github.com/allisson/nationalid/internal/metrics"
	nationalIDHTTP "github.com/allisson/nationalid/internal/nationalid/http"
)

const readinessTimeout = 2 * time.Second

// Pinger is a backing service whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	cache  Pinger
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. Call SetupRouter before Start.
func NewServer(
	db *sql.DB,
	cache Pinger,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		cache:  cache,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter mounts the public routes. ctx bounds background work owned by middlewares, such as
// the stale limiter sweep of the issuance rate limiter.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	validationHandler *nationalIDHTTP.ValidationHandler,
	apiKeyHandler *apiKeyHTTP.APIKeyHandler,
	auditLogHandler *auditLogHTTP.AuditLogHandler,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/api/v1")

	v1.POST("/validate-id", validationHandler.ValidateHandler)
	v1.POST("/validate", validationHandler.ValidateHandler)

	admin := apiKeyHTTP.AdminTokenMiddleware(cfg.AdminToken, s.logger)

	issuance := []gin.HandlerFunc{admin}
	if cfg.RateLimitIssuanceEnabled {
		issuance = append(issuance, apiKeyHTTP.IssuanceRateLimitMiddleware(
			ctx,
			cfg.RateLimitIssuanceRequestsPerSec,
			cfg.RateLimitIssuanceBurst,
			s.logger,
		))
	}
	issuance = append(issuance, apiKeyHandler.CreateHandler)

	v1.POST("/api-keys", issuance...)
	v1.POST("/get_api_key", issuance...)

	v1.GET("/logs", admin, auditLogHandler.ListHandler)

	s.router = router
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// healthHandler reports liveness only.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler pings the database and the shared cache.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	components := gin.H{
		"database": componentStatus(s.pingDB(ctx)),
		"cache":    componentStatus(s.pingCache(ctx)),
	}

	if components["database"] != "ok" || components["cache"] != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

func (s *Server) pingDB(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not configured")
	}
	return s.db.PingContext(ctx)
}

func (s *Server) pingCache(ctx context.Context) error {
	if s.cache == nil {
		return fmt.Errorf("cache not configured")
	}
	return s.cache.Ping(ctx)
}

func componentStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Start starts the HTTP server and blocks until it is shut down.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
