package app

import (
	"fmt"

	tokenizationHTTP "github.com/allisson/tokenvault/internal/tokenization/http"
	tokenizationRepository "github.com/allisson/tokenvault/internal/tokenization/repository"
	tokenizationService "github.com/allisson/tokenvault/internal/tokenization/service"
	tokenizationUseCase "github.com/allisson/tokenvault/internal/tokenization/usecase"
)

// TokenRepository returns the token repository.
func (c *Container) TokenRepository() (*tokenizationRepository.PostgreSQLTokenRepository, error) {
	var err error
	c.tokenRepoInit.Do(func() {
		c.tokenRepo, err = c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepo"]; exists {
		return nil, storedErr
	}
	return c.tokenRepo, nil
}

// SequenceStore returns the sequential token counter store.
func (c *Container) SequenceStore() (*tokenizationRepository.PostgreSQLSequenceStore, error) {
	var err error
	c.sequenceStoreInit.Do(func() {
		c.sequenceStore, err = c.initSequenceStore()
		if err != nil {
			c.initErrors["sequenceStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sequenceStore"]; exists {
		return nil, storedErr
	}
	return c.sequenceStore, nil
}

// GeneratorFactory returns the token value generator factory.
func (c *Container) GeneratorFactory() (*tokenizationService.GeneratorFactory, error) {
	var err error
	c.generatorFactoryInit.Do(func() {
		c.generatorFactory, err = c.initGeneratorFactory()
		if err != nil {
			c.initErrors["generatorFactory"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["generatorFactory"]; exists {
		return nil, storedErr
	}
	return c.generatorFactory, nil
}

// TokenizationUseCase returns the tokenization use case wrapped with metrics
// instrumentation.
func (c *Container) TokenizationUseCase() (tokenizationUseCase.TokenizationUseCase, error) {
	var err error
	c.tokenizationUCInit.Do(func() {
		c.tokenizationUC, err = c.initTokenizationUseCase()
		if err != nil {
			c.initErrors["tokenizationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenizationUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenizationUC, nil
}

// TokenizationHandler returns the tokenization HTTP handler.
func (c *Container) TokenizationHandler() (*tokenizationHTTP.TokenizationHandler, error) {
	var err error
	c.tokenizationHandlerInit.Do(func() {
		c.tokenizationHandler, err = c.initTokenizationHandler()
		if err != nil {
			c.initErrors["tokenizationHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenizationHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenizationHandler, nil
}

// initTokenRepository creates the token repository.
func (c *Container) initTokenRepository() (*tokenizationRepository.PostgreSQLTokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}
	return tokenizationRepository.NewPostgreSQLTokenRepository(db), nil
}

// initSequenceStore creates the sequential token counter store.
func (c *Container) initSequenceStore() (*tokenizationRepository.PostgreSQLSequenceStore, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for sequence store: %w", err)
	}
	return tokenizationRepository.NewPostgreSQLSequenceStore(db), nil
}

// initGeneratorFactory creates the token value generator factory.
func (c *Container) initGeneratorFactory() (*tokenizationService.GeneratorFactory, error) {
	store, err := c.SequenceStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get sequence store for generator factory: %w", err)
	}
	return tokenizationService.NewGeneratorFactory(store, c.config.SequentialTokenStart), nil
}

// initTokenizationUseCase creates the tokenization use case with all its dependencies.
func (c *Container) initTokenizationUseCase() (tokenizationUseCase.TokenizationUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for tokenization use case: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for tokenization use case: %w", err)
	}

	vaultUC, err := c.VaultUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault use case for tokenization use case: %w", err)
	}

	vaultRepo, err := c.VaultRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault repository for tokenization use case: %w", err)
	}

	keyRepo, err := c.VaultKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault key repository for tokenization use case: %w", err)
	}

	generators, err := c.GeneratorFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to get generator factory for tokenization use case: %w", err)
	}

	encryptor, err := c.Encryptor()
	if err != nil {
		return nil, fmt.Errorf("failed to get encryptor for tokenization use case: %w", err)
	}

	auditUC, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for tokenization use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for tokenization use case: %w", err)
	}

	useCase := tokenizationUseCase.NewTokenizationUseCase(
		txManager,
		tokenRepo,
		vaultUC,
		vaultRepo,
		vaultRepo,
		keyRepo,
		generators,
		encryptor,
		c.HashService(),
		auditUC,
		c.Logger(),
		c.config.SearchMaxResults,
	)
	return tokenizationUseCase.NewTokenizationUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initTokenizationHandler creates the tokenization HTTP handler.
func (c *Container) initTokenizationHandler() (*tokenizationHTTP.TokenizationHandler, error) {
	useCase, err := c.TokenizationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenization use case for tokenization handler: %w", err)
	}
	return tokenizationHTTP.NewTokenizationHandler(useCase, c.config.SearchMaxResults, c.Logger()), nil
}
