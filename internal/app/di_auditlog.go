package app

import (
	"fmt"

	auditLogHTTP "github.com/allisson/nationalid/internal/auditlog/http"
	auditLogRepository "github.com/allisson/nationalid/internal/auditlog/repository"
	auditLogUseCase "github.com/allisson/nationalid/internal/auditlog/usecase"
)

// AuditLogRepository returns the audit log repository based on database driver.
func (c *Container) AuditLogRepository() (auditLogUseCase.AuditLogRepository, error) {
	var err error
	c.auditLogRepositoryInit.Do(func() {
		c.auditLogRepository, err = c.initAuditLogRepository()
		if err != nil {
			c.initErrors["auditLogRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogRepository"]; exists {
		return nil, storedErr
	}
	return c.auditLogRepository, nil
}

// AuditLogUseCase returns the audit log use case.
func (c *Container) AuditLogUseCase() (auditLogUseCase.AuditLogUseCase, error) {
	var err error
	c.auditLogUseCaseInit.Do(func() {
		c.auditLogUseCase, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

// AuditDispatcher returns the background audit dispatcher. The caller owns Start; Shutdown
// closes it.
func (c *Container) AuditDispatcher() (*auditLogUseCase.Dispatcher, error) {
	var err error
	c.auditDispatcherInit.Do(func() {
		c.auditDispatcher, err = c.initAuditDispatcher()
		if err != nil {
			c.initErrors["auditDispatcher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditDispatcher"]; exists {
		return nil, storedErr
	}
	return c.auditDispatcher, nil
}

// AuditLogHandler returns the audit log listing HTTP handler.
func (c *Container) AuditLogHandler() (*auditLogHTTP.AuditLogHandler, error) {
	var err error
	c.auditLogHandlerInit.Do(func() {
		c.auditLogHandler, err = c.initAuditLogHandler()
		if err != nil {
			c.initErrors["auditLogHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogHandler"]; exists {
		return nil, storedErr
	}
	return c.auditLogHandler, nil
}

// initAuditLogRepository creates the audit log repository based on the database driver.
func (c *Container) initAuditLogRepository() (auditLogUseCase.AuditLogRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditLogRepository.NewPostgreSQLAuditLogRepository(db), nil
	case "mysql":
		return auditLogRepository.NewMySQLAuditLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditLogUseCase creates the audit log use case with all its dependencies.
func (c *Container) initAuditLogUseCase() (auditLogUseCase.AuditLogUseCase, error) {
	repo, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit log use case: %w", err)
	}

	baseUseCase := auditLogUseCase.NewAuditLogUseCase(repo)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit log use case: %w", err)
		}
		return auditLogUseCase.NewAuditLogUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuditDispatcher creates the dispatcher that persists audit logs off the request path and
// keeps api key last_used_at current.
func (c *Container) initAuditDispatcher() (*auditLogUseCase.Dispatcher, error) {
	useCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for audit dispatcher: %w", err)
	}

	apiKeys, err := c.APIKeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key use case for audit dispatcher: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for audit dispatcher: %w", err)
	}

	return auditLogUseCase.NewDispatcher(
		auditLogUseCase.DispatcherConfig{
			QueueSize:     c.config.AuditQueueSize,
			Workers:       c.config.AuditWorkers,
			MaxAttempts:   c.config.AuditMaxAttempts,
			RetryInterval: c.config.AuditRetryBackoff,
		},
		useCase,
		apiKeys,
		businessMetrics,
		c.Logger(),
	), nil
}

// initAuditLogHandler creates the audit log HTTP handler with all its dependencies.
func (c *Container) initAuditLogHandler() (*auditLogHTTP.AuditLogHandler, error) {
	useCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for audit log handler: %w", err)
	}

	return auditLogHTTP.NewAuditLogHandler(useCase, c.Logger()), nil
}
