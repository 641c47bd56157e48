package app

import (
	"fmt"

	auditHTTP "github.com/allisson/tokenvault/internal/audit/http"
	auditRepository "github.com/allisson/tokenvault/internal/audit/repository"
	auditUseCase "github.com/allisson/tokenvault/internal/audit/usecase"
)

// AuditLogRepository returns the audit log repository.
func (c *Container) AuditLogRepository() (*auditRepository.PostgreSQLAuditLogRepository, error) {
	var err error
	c.auditRepoInit.Do(func() {
		c.auditRepo, err = c.initAuditLogRepository()
		if err != nil {
			c.initErrors["auditRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRepo"]; exists {
		return nil, storedErr
	}
	return c.auditRepo, nil
}

// AuditUseCase returns the audit use case.
func (c *Container) AuditUseCase() (auditUseCase.AuditUseCase, error) {
	var err error
	c.auditUCInit.Do(func() {
		c.auditUC, err = c.initAuditUseCase()
		if err != nil {
			c.initErrors["auditUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditUC, nil
}

// AuditLogHandler returns the audit log HTTP handler.
func (c *Container) AuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
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

// initAuditLogRepository creates the audit log repository.
func (c *Container) initAuditLogRepository() (*auditRepository.PostgreSQLAuditLogRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
	}
	return auditRepository.NewPostgreSQLAuditLogRepository(db), nil
}

// initAuditUseCase creates the audit use case with all its dependencies.
func (c *Container) initAuditUseCase() (auditUseCase.AuditUseCase, error) {
	auditRepo, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit use case: %w", err)
	}

	jobRepo, err := c.QueueJobRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get job repository for audit use case: %w", err)
	}

	detector, err := c.PatternDetector()
	if err != nil {
		return nil, fmt.Errorf("failed to get pattern detector for audit use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for audit use case: %w", err)
	}

	useCaseConfig := auditUseCase.Config{
		ArchiveThreshold: c.config.AuditArchiveThreshold,
		ArchiveAfterDays: c.config.AuditArchiveAfterDays,
	}

	return auditUseCase.NewAuditUseCase(useCaseConfig, auditRepo, jobRepo, detector, businessMetrics, c.Logger()), nil
}

// initAuditLogHandler creates the audit log HTTP handler.
func (c *Container) initAuditLogHandler() (*auditHTTP.AuditLogHandler, error) {
	useCase, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for audit log handler: %w", err)
	}
	return auditHTTP.NewAuditLogHandler(useCase, c.Logger()), nil
}
