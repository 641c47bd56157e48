package app

import (
	"fmt"

	complianceHTTP "github.com/allisson/tokenvault/internal/compliance/http"
	complianceRepository "github.com/allisson/tokenvault/internal/compliance/repository"
	complianceUseCase "github.com/allisson/tokenvault/internal/compliance/usecase"
)

// ReportRepository returns the compliance report repository.
func (c *Container) ReportRepository() (*complianceRepository.PostgreSQLReportRepository, error) {
	var err error
	c.reportRepoInit.Do(func() {
		c.reportRepo, err = c.initReportRepository()
		if err != nil {
			c.initErrors["reportRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["reportRepo"]; exists {
		return nil, storedErr
	}
	return c.reportRepo, nil
}

// ComplianceUseCase returns the compliance use case.
func (c *Container) ComplianceUseCase() (complianceUseCase.ComplianceUseCase, error) {
	var err error
	c.complianceUCInit.Do(func() {
		c.complianceUC, err = c.initComplianceUseCase()
		if err != nil {
			c.initErrors["complianceUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["complianceUseCase"]; exists {
		return nil, storedErr
	}
	return c.complianceUC, nil
}

// ReportHandler returns the compliance report HTTP handler.
func (c *Container) ReportHandler() (*complianceHTTP.ReportHandler, error) {
	var err error
	c.reportHandlerInit.Do(func() {
		c.reportHandler, err = c.initReportHandler()
		if err != nil {
			c.initErrors["reportHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["reportHandler"]; exists {
		return nil, storedErr
	}
	return c.reportHandler, nil
}

// initReportRepository creates the compliance report repository.
func (c *Container) initReportRepository() (*complianceRepository.PostgreSQLReportRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for report repository: %w", err)
	}
	return complianceRepository.NewPostgreSQLReportRepository(db), nil
}

// initComplianceUseCase creates the compliance use case with all its dependencies.
func (c *Container) initComplianceUseCase() (complianceUseCase.ComplianceUseCase, error) {
	reportRepo, err := c.ReportRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get report repository for compliance use case: %w", err)
	}

	jobRepo, err := c.QueueJobRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get job repository for compliance use case: %w", err)
	}

	blobStore, err := c.BlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact store for compliance use case: %w", err)
	}

	return complianceUseCase.NewComplianceUseCase(reportRepo, jobRepo, blobStore, c.Notifier(), c.Logger()), nil
}

// initReportHandler creates the compliance report HTTP handler.
func (c *Container) initReportHandler() (*complianceHTTP.ReportHandler, error) {
	useCase, err := c.ComplianceUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance use case for report handler: %w", err)
	}
	return complianceHTTP.NewReportHandler(useCase, c.Logger()), nil
}
