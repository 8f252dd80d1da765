package app

import (
	"fmt"

	apiKeyHTTP "github.com/allisson/nationalid/internal/apikey/http"
	apiKeyRepository "github.com/allisson/nationalid/internal/apikey/repository"
	apiKeyService "github.com/allisson/nationalid/internal/apikey/service"
	apiKeyUseCase "github.com/allisson/nationalid/internal/apikey/usecase"
)

// SecretService returns the service that generates and hashes API key secrets.
func (c *Container) SecretService() apiKeyService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = apiKeyService.NewSecretService()
	})
	return c.secretService
}

// APIKeyRepository returns the API key repository based on database driver.
func (c *Container) APIKeyRepository() (apiKeyUseCase.APIKeyRepository, error) {
	var err error
	c.apiKeyRepositoryInit.Do(func() {
		c.apiKeyRepository, err = c.initAPIKeyRepository()
		if err != nil {
			c.initErrors["apiKeyRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyRepository"]; exists {
		return nil, storedErr
	}
	return c.apiKeyRepository, nil
}

// APIKeyUseCase returns the API key issuance and management use case.
func (c *Container) APIKeyUseCase() (apiKeyUseCase.APIKeyUseCase, error) {
	var err error
	c.apiKeyUseCaseInit.Do(func() {
		c.apiKeyUseCase, err = c.initAPIKeyUseCase()
		if err != nil {
			c.initErrors["apiKeyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyUseCase"]; exists {
		return nil, storedErr
	}
	return c.apiKeyUseCase, nil
}

// Authenticator returns the cached, fail-closed API key authenticator.
func (c *Container) Authenticator() (apiKeyUseCase.Authenticator, error) {
	var err error
	c.authenticatorInit.Do(func() {
		c.authenticator, err = c.initAuthenticator()
		if err != nil {
			c.initErrors["authenticator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authenticator"]; exists {
		return nil, storedErr
	}
	return c.authenticator, nil
}

// APIKeyHandler returns the API key issuance HTTP handler.
func (c *Container) APIKeyHandler() (*apiKeyHTTP.APIKeyHandler, error) {
	var err error
	c.apiKeyHandlerInit.Do(func() {
		c.apiKeyHandler, err = c.initAPIKeyHandler()
		if err != nil {
			c.initErrors["apiKeyHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyHandler"]; exists {
		return nil, storedErr
	}
	return c.apiKeyHandler, nil
}

// initAPIKeyRepository creates the API key repository based on the database driver.
func (c *Container) initAPIKeyRepository() (apiKeyUseCase.APIKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for api key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return apiKeyRepository.NewPostgreSQLAPIKeyRepository(db), nil
	case "mysql":
		return apiKeyRepository.NewMySQLAPIKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAPIKeyUseCase creates the API key use case with all its dependencies.
func (c *Container) initAPIKeyUseCase() (apiKeyUseCase.APIKeyUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for api key use case: %w", err)
	}

	repo, err := c.APIKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key repository for api key use case: %w", err)
	}

	baseUseCase := apiKeyUseCase.NewAPIKeyUseCase(txManager, repo, c.SecretService())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for api key use case: %w", err)
		}
		return apiKeyUseCase.NewAPIKeyUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuthenticator creates the authenticator over the repository and the shared cache.
func (c *Container) initAuthenticator() (apiKeyUseCase.Authenticator, error) {
	repo, err := c.APIKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key repository for authenticator: %w", err)
	}

	store, err := c.CacheStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache store for authenticator: %w", err)
	}

	authenticator := apiKeyUseCase.NewAuthenticator(
		repo,
		c.SecretService(),
		store,
		apiKeyUseCase.AuthenticatorConfig{
			PositiveTTL: c.config.AuthCacheTTL,
			NegativeTTL: c.config.AuthNegativeCacheTTL,
		},
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for authenticator: %w", err)
		}
		return apiKeyUseCase.NewAuthenticatorWithMetrics(authenticator, businessMetrics), nil
	}

	return authenticator, nil
}

// initAPIKeyHandler creates the API key HTTP handler with all its dependencies.
func (c *Container) initAPIKeyHandler() (*apiKeyHTTP.APIKeyHandler, error) {
	useCase, err := c.APIKeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key use case for api key handler: %w", err)
	}

	return apiKeyHTTP.NewAPIKeyHandler(useCase, c.Logger()), nil
}
