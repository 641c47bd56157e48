package app

import (
	"fmt"

	securityHTTP "github.com/allisson/tokenvault/internal/security/http"
	securityRepository "github.com/allisson/tokenvault/internal/security/repository"
	securityService "github.com/allisson/tokenvault/internal/security/service"
	securityUseCase "github.com/allisson/tokenvault/internal/security/usecase"
)

// AlertRepository returns the security alert repository.
func (c *Container) AlertRepository() (*securityRepository.PostgreSQLAlertRepository, error) {
	var err error
	c.alertRepoInit.Do(func() {
		c.alertRepo, err = c.initAlertRepository()
		if err != nil {
			c.initErrors["alertRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["alertRepo"]; exists {
		return nil, storedErr
	}
	return c.alertRepo, nil
}

// PatternDetector returns the suspicious access pattern detector.
func (c *Container) PatternDetector() (*securityService.PatternDetector, error) {
	var err error
	c.patternDetectorInit.Do(func() {
		c.patternDetector, err = c.initPatternDetector()
		if err != nil {
			c.initErrors["patternDetector"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["patternDetector"]; exists {
		return nil, storedErr
	}
	return c.patternDetector, nil
}

// AlertUseCase returns the security alert use case.
func (c *Container) AlertUseCase() (securityUseCase.AlertUseCase, error) {
	var err error
	c.alertUCInit.Do(func() {
		c.alertUC, err = c.initAlertUseCase()
		if err != nil {
			c.initErrors["alertUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["alertUseCase"]; exists {
		return nil, storedErr
	}
	return c.alertUC, nil
}

// AlertHandler returns the security alert HTTP handler.
func (c *Container) AlertHandler() (*securityHTTP.AlertHandler, error) {
	var err error
	c.alertHandlerInit.Do(func() {
		c.alertHandler, err = c.initAlertHandler()
		if err != nil {
			c.initErrors["alertHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["alertHandler"]; exists {
		return nil, storedErr
	}
	return c.alertHandler, nil
}

// initAlertRepository creates the security alert repository.
func (c *Container) initAlertRepository() (*securityRepository.PostgreSQLAlertRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for alert repository: %w", err)
	}
	return securityRepository.NewPostgreSQLAlertRepository(db), nil
}

// initPatternDetector creates the pattern detector with all its dependencies.
func (c *Container) initPatternDetector() (*securityService.PatternDetector, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for pattern detector: %w", err)
	}

	auditRepo, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for pattern detector: %w", err)
	}

	alertRepo, err := c.AlertRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get alert repository for pattern detector: %w", err)
	}

	return securityService.NewPatternDetector(txManager, auditRepo, alertRepo, c.AlertNotifier(), c.Logger()), nil
}

// initAlertUseCase creates the security alert use case.
func (c *Container) initAlertUseCase() (securityUseCase.AlertUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for alert use case: %w", err)
	}

	alertRepo, err := c.AlertRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get alert repository for alert use case: %w", err)
	}

	useCaseConfig := securityUseCase.Config{
		AutoResolveAfter: c.config.AlertAutoResolveAfter,
		SweepBatchSize:   c.config.AlertSweepBatchSize,
	}

	return securityUseCase.NewAlertUseCase(useCaseConfig, txManager, alertRepo, c.Logger()), nil
}

// initAlertHandler creates the security alert HTTP handler.
func (c *Container) initAlertHandler() (*securityHTTP.AlertHandler, error) {
	useCase, err := c.AlertUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get alert use case for alert handler: %w", err)
	}
	return securityHTTP.NewAlertHandler(useCase, c.Logger()), nil
}
