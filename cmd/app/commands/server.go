package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/nationalid/internal/app"
	"github.com/allisson/nationalid/internal/config"
)

// RunServer starts the API server, the metrics server and the audit dispatcher, then blocks until
// SIGINT/SIGTERM or a fatal server error. On shutdown the servers stop accepting requests first,
// then the audit queue is drained within ShutdownTimeout.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	// Getting the HTTP server initializes every dependency behind it.
	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	dispatcher, err := container.AuditDispatcher()
	if err != nil {
		return fmt.Errorf("failed to initialize audit dispatcher: %w", err)
	}

	// The dispatcher outlives the signal context so queued entries can still be written.
	dispatcherCtx, cancelDispatcher := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelDispatcher()

	dispatcherDone := make(chan error, 1)
	go func() {
		dispatcherDone <- dispatcher.Start(dispatcherCtx)
	}()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverErr := make(chan error, 2)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErr <- fmt.Errorf("api server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	var shutdownErrors []error

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error, initiating shutdown", slog.Any("error", err))
		shutdownErrors = append(shutdownErrors, err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("api server shutdown: %w", err))
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if err := drainDispatcher(shutdownCtx, dispatcher, dispatcherDone, cancelDispatcher, logger); err != nil {
		shutdownErrors = append(shutdownErrors, err)
	}

	return errors.Join(shutdownErrors...)
}

// drainer is the part of the audit dispatcher used during shutdown.
type drainer interface {
	Close()
	Pending() int
}

// drainDispatcher closes the dispatcher and waits for its workers. When ctx ends first, the
// workers are cancelled and whatever is still queued is lost.
func drainDispatcher(
	ctx context.Context,
	dispatcher drainer,
	done <-chan error,
	cancel context.CancelFunc,
	logger *slog.Logger,
) error {
	start := time.Now()
	dispatcher.Close()

	select {
	case err := <-done:
		logger.Info("audit queue drained", slog.Duration("took", time.Since(start)))
		if err != nil {
			return fmt.Errorf("audit dispatcher: %w", err)
		}
		return nil
	case <-ctx.Done():
		pending := dispatcher.Pending()
		cancel()
		<-done
		logger.Warn("audit queue not drained before shutdown timeout", slog.Int("dropped", pending))
		return nil
	}
}
