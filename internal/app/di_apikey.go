package app

import (
	"fmt"

	apikeyHTTP "github.com/allisson/tokenvault/internal/apikey/http"
	apikeyRepository "github.com/allisson/tokenvault/internal/apikey/repository"
	apikeyService "github.com/allisson/tokenvault/internal/apikey/service"
	apikeyUseCase "github.com/allisson/tokenvault/internal/apikey/usecase"
)

// APIKeyRepository returns the API key repository.
func (c *Container) APIKeyRepository() (*apikeyRepository.PostgreSQLAPIKeyRepository, error) {
	var err error
	c.apiKeyRepoInit.Do(func() {
		c.apiKeyRepo, err = c.initAPIKeyRepository()
		if err != nil {
			c.initErrors["apiKeyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.apiKeyRepo, nil
}

// KeyService returns the API key generation and verification service.
func (c *Container) KeyService() apikeyService.KeyService {
	c.keyServiceInit.Do(func() {
		c.keyService = apikeyService.NewKeyService()
	})
	return c.keyService
}

// APIKeyUseCase returns the API key use case.
func (c *Container) APIKeyUseCase() (apikeyUseCase.APIKeyUseCase, error) {
	var err error
	c.apiKeyUCInit.Do(func() {
		c.apiKeyUC, err = c.initAPIKeyUseCase()
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
	return c.apiKeyUC, nil
}

// APIKeyHandler returns the API key HTTP handler.
func (c *Container) APIKeyHandler() (*apikeyHTTP.APIKeyHandler, error) {
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

// initAPIKeyRepository creates the API key repository.
func (c *Container) initAPIKeyRepository() (*apikeyRepository.PostgreSQLAPIKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for api key repository: %w", err)
	}
	return apikeyRepository.NewPostgreSQLAPIKeyRepository(db), nil
}

// initAPIKeyUseCase creates the API key use case.
func (c *Container) initAPIKeyUseCase() (apikeyUseCase.APIKeyUseCase, error) {
	keyRepo, err := c.APIKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key repository for api key use case: %w", err)
	}
	return apikeyUseCase.NewAPIKeyUseCase(keyRepo, c.KeyService(), c.Logger()), nil
}

// initAPIKeyHandler creates the API key HTTP handler.
func (c *Container) initAPIKeyHandler() (*apikeyHTTP.APIKeyHandler, error) {
	useCase, err := c.APIKeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key use case for api key handler: %w", err)
	}
	return apikeyHTTP.NewAPIKeyHandler(useCase, c.Logger()), nil
}
