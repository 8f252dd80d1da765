package app

import (
	"fmt"
	"time"

	nationalIDDomain "github.com/allisson/nationalid/internal/nationalid/domain"
	nationalIDHTTP "github.com/allisson/nationalid/internal/nationalid/http"
	nationalIDUseCase "github.com/allisson/nationalid/internal/nationalid/usecase"
	"github.com/allisson/nationalid/internal/quota"
)

// ValidationUseCase returns the request orchestrator behind the validation endpoint.
func (c *Container) ValidationUseCase() (nationalIDUseCase.ValidationUseCase, error) {
	var err error
	c.validationUseCaseInit.Do(func() {
		c.validationUseCase, err = c.initValidationUseCase()
		if err != nil {
			c.initErrors["validationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["validationUseCase"]; exists {
		return nil, storedErr
	}
	return c.validationUseCase, nil
}

// ValidationHandler returns the validation HTTP handler.
func (c *Container) ValidationHandler() (*nationalIDHTTP.ValidationHandler, error) {
	var err error
	c.validationHandlerInit.Do(func() {
		c.validationHandler, err = c.initValidationHandler()
		if err != nil {
			c.initErrors["validationHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["validationHandler"]; exists {
		return nil, storedErr
	}
	return c.validationHandler, nil
}

// Parser returns a parser whose notion of today follows TIME_ZONE.
func (c *Container) Parser() *nationalIDDomain.Parser {
	return nationalIDDomain.NewParserInLocation(c.config.Location())
}

// initValidationUseCase wires authentication, quotas, parsing and audit dispatch together.
func (c *Container) initValidationUseCase() (nationalIDUseCase.ValidationUseCase, error) {
	authenticator, err := c.Authenticator()
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticator for validation use case: %w", err)
	}

	store, err := c.CacheStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache store for validation use case: %w", err)
	}

	dispatcher, err := c.AuditDispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit dispatcher for validation use case: %w", err)
	}

	enforcer := quota.NewEnforcer(store, quota.Config{
		AnonymousPerMinute: c.config.QuotaDefaultPerMinute,
		AnonymousPerDay:    c.config.QuotaDefaultPerDay,
	})

	orchestrator := nationalIDUseCase.NewOrchestrator(nationalIDUseCase.Dependencies{
		Authenticator:           authenticator,
		Quota:                   enforcer,
		Parser:                  c.Parser(),
		Dispatcher:              dispatcher,
		Logger:                  c.Logger(),
		Now:                     time.Now,
		EvaluateQuotaBeforeAuth: c.config.QuotaEvaluateBeforeAuth,
	})

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for validation use case: %w", err)
		}
		return nationalIDUseCase.NewValidationUseCaseWithMetrics(orchestrator, businessMetrics), nil
	}

	return orchestrator, nil
}

// initValidationHandler creates the validation HTTP handler with all its dependencies.
func (c *Container) initValidationHandler() (*nationalIDHTTP.ValidationHandler, error) {
	useCase, err := c.ValidationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get validation use case for validation handler: %w", err)
	}

	return nationalIDHTTP.NewValidationHandler(useCase, c.Logger()), nil
}
