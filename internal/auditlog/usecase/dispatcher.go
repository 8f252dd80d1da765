package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/nationalid/internal/auditlog/domain"
	"github.com/allisson/nationalid/internal/metrics"
)

// DispatcherConfig holds the queue and retry settings of the audit dispatcher.
type DispatcherConfig struct {
	QueueSize     int
	Workers       int
	MaxAttempts   int
	RetryInterval time.Duration
}

// DefaultDispatcherConfig returns a 1024-entry queue, 4 workers and 3 attempts 30s apart.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize:     1024,
		Workers:       4,
		MaxAttempts:   3,
		RetryInterval: 30 * time.Second,
	}
}

// Dispatcher moves audit logs from the request path to a pool of background workers.
// Dispatch never blocks; entries that do not fit in the queue are dropped.
type Dispatcher struct {
	config   DispatcherConfig
	useCase  AuditLogUseCase
	toucher  LastUsedToucher
	metrics  metrics.BusinessMetrics
	logger   *slog.Logger
	queue    chan *domain.AuditLog
	mu       sync.RWMutex
	closed   bool
	sleepFor func(ctx context.Context, d time.Duration) bool
}

// NewDispatcher creates a Dispatcher. toucher may be nil, in which case last_used_at is not
// maintained.
func NewDispatcher(
	config DispatcherConfig,
	useCase AuditLogUseCase,
	toucher LastUsedToucher,
	m metrics.BusinessMetrics,
	logger *slog.Logger,
) *Dispatcher {
	if config.QueueSize <= 0 {
		config.QueueSize = 1
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if m == nil {
		m = metrics.NewNoOpBusinessMetrics()
	}

	return &Dispatcher{
		config:   config,
		useCase:  useCase,
		toucher:  toucher,
		metrics:  m,
		logger:   logger,
		queue:    make(chan *domain.AuditLog, config.QueueSize),
		sleepFor: sleepContext,
	}
}

// Dispatch enqueues auditLog without blocking. It reports false when the queue is full or the
// dispatcher is closed; the caller is expected to carry on regardless.
func (d *Dispatcher) Dispatch(ctx context.Context, auditLog *domain.AuditLog) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(ctx, "closed")
		return false
	}

	select {
	case d.queue <- auditLog:
		d.metrics.RecordOperation(ctx, metricsDomain, "dispatch", "enqueued")
		return true
	default:
		d.drop(ctx, "queue_full")
		return false
	}
}

func (d *Dispatcher) drop(ctx context.Context, reason string) {
	d.metrics.RecordOperation(ctx, metricsDomain, "dispatch", "dropped")
	d.logger.Debug("audit log not enqueued", slog.String("reason", reason))
}

// Start runs the worker pool until the queue is closed and drained, or ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("starting audit dispatcher",
		slog.Int("workers", d.config.Workers),
		slog.Int("queue_size", d.config.QueueSize),
	)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < d.config.Workers; i++ {
		g.Go(func() error {
			return d.work(gctx)
		})
	}

	err := g.Wait()
	d.logger.Info("audit dispatcher stopped")
	return err
}

// Close stops accepting entries. Workers finish whatever is already queued.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	close(d.queue)
}

// Pending returns the number of queued entries.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

func (d *Dispatcher) work(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case auditLog, ok := <-d.queue:
			if !ok {
				return nil
			}
			d.persist(ctx, auditLog)
		}
	}
}

// persist writes auditLog with bounded retries. A write that started is not cancelled by ctx;
// ctx only cuts the wait between attempts short.
func (d *Dispatcher) persist(ctx context.Context, auditLog *domain.AuditLog) {
	writeCtx := context.WithoutCancel(ctx)

	for attempt := 1; attempt <= d.config.MaxAttempts; attempt++ {
		err := d.useCase.Create(writeCtx, auditLog)
		if err == nil {
			d.metrics.RecordOperation(ctx, metricsDomain, "persist", "success")
			d.touch(writeCtx, auditLog)
			return
		}

		if attempt == d.config.MaxAttempts {
			d.logger.Warn("audit log dropped after retries",
				slog.String("audit_log_id", auditLog.ID.String()),
				slog.Int("attempts", attempt),
				slog.Any("error", err),
			)
			break
		}

		d.metrics.RecordOperation(ctx, metricsDomain, "persist", "retry")
		d.logger.Debug("audit log write failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", d.config.RetryInterval),
			slog.Any("error", err),
		)

		if !d.sleepFor(ctx, d.config.RetryInterval) {
			d.logger.Warn("audit log dropped on shutdown",
				slog.String("audit_log_id", auditLog.ID.String()),
				slog.Int("attempts", attempt),
			)
			break
		}
	}

	d.metrics.RecordOperation(ctx, metricsDomain, "persist", "dropped")
}

func (d *Dispatcher) touch(ctx context.Context, auditLog *domain.AuditLog) {
	if d.toucher == nil || auditLog.APIKeyID == nil {
		return
	}
	if err := d.toucher.TouchLastUsed(ctx, *auditLog.APIKeyID, auditLog.CreatedAt); err != nil {
		d.logger.Warn("failed to update api key last_used_at",
			slog.String("api_key_id", auditLog.APIKeyID.String()),
			slog.Any("error", err),
		)
	}
}

// sleepContext waits for d and reports false when ctx ends first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
