package app

import (
	"fmt"

	vaultHTTP "github.com/allisson/tokenvault/internal/vault/http"
	vaultRepository "github.com/allisson/tokenvault/internal/vault/repository"
	vaultUseCase "github.com/allisson/tokenvault/internal/vault/usecase"
)

// VaultRepository returns the vault repository.
func (c *Container) VaultRepository() (*vaultRepository.PostgreSQLVaultRepository, error) {
	var err error
	c.vaultRepoInit.Do(func() {
		c.vaultRepo, err = c.initVaultRepository()
		if err != nil {
			c.initErrors["vaultRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultRepo"]; exists {
		return nil, storedErr
	}
	return c.vaultRepo, nil
}

// VaultKeyRepository returns the vault key repository.
func (c *Container) VaultKeyRepository() (*vaultRepository.PostgreSQLVaultKeyRepository, error) {
	var err error
	c.vaultKeyRepoInit.Do(func() {
		c.vaultKeyRepo, err = c.initVaultKeyRepository()
		if err != nil {
			c.initErrors["vaultKeyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.vaultKeyRepo, nil
}

// VaultUseCase returns the vault use case wrapped with metrics instrumentation.
func (c *Container) VaultUseCase() (vaultUseCase.VaultUseCase, error) {
	var err error
	c.vaultUCInit.Do(func() {
		c.vaultUC, err = c.initVaultUseCase()
		if err != nil {
			c.initErrors["vaultUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultUseCase"]; exists {
		return nil, storedErr
	}
	return c.vaultUC, nil
}

// VaultHandler returns the vault HTTP handler.
func (c *Container) VaultHandler() (*vaultHTTP.VaultHandler, error) {
	var err error
	c.vaultHandlerInit.Do(func() {
		c.vaultHandler, err = c.initVaultHandler()
		if err != nil {
			c.initErrors["vaultHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultHandler"]; exists {
		return nil, storedErr
	}
	return c.vaultHandler, nil
}

// initVaultRepository creates the vault repository.
func (c *Container) initVaultRepository() (*vaultRepository.PostgreSQLVaultRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for vault repository: %w", err)
	}
	return vaultRepository.NewPostgreSQLVaultRepository(db), nil
}

// initVaultKeyRepository creates the vault key repository.
func (c *Container) initVaultKeyRepository() (*vaultRepository.PostgreSQLVaultKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for vault key repository: %w", err)
	}
	return vaultRepository.NewPostgreSQLVaultKeyRepository(db), nil
}

// initVaultUseCase creates the vault use case with all its dependencies.
func (c *Container) initVaultUseCase() (vaultUseCase.VaultUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for vault use case: %w", err)
	}

	vaultRepo, err := c.VaultRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault repository for vault use case: %w", err)
	}

	keyRepo, err := c.VaultKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault key repository for vault use case: %w", err)
	}

	keyMaterial, err := c.KeyMaterial()
	if err != nil {
		return nil, fmt.Errorf("failed to get key material for vault use case: %w", err)
	}

	auditUC, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for vault use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for vault use case: %w", err)
	}

	useCase := vaultUseCase.NewVaultUseCase(txManager, vaultRepo, keyRepo, keyMaterial, auditUC, c.Logger())
	return vaultUseCase.NewVaultUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initVaultHandler creates the vault HTTP handler.
func (c *Container) initVaultHandler() (*vaultHTTP.VaultHandler, error) {
	useCase, err := c.VaultUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault use case for vault handler: %w", err)
	}
	return vaultHTTP.NewVaultHandler(useCase, c.Logger()), nil
}
