package app

import (
	"fmt"

	auditUseCase "github.com/allisson/tokenvault/internal/audit/usecase"
	complianceUseCase "github.com/allisson/tokenvault/internal/compliance/usecase"
	queueRepository "github.com/allisson/tokenvault/internal/queue/repository"
	queueUseCase "github.com/allisson/tokenvault/internal/queue/usecase"
)

// QueueJobRepository returns the queue job repository.
func (c *Container) QueueJobRepository() (*queueRepository.PostgreSQLJobRepository, error) {
	var err error
	c.jobRepoInit.Do(func() {
		c.jobRepo, err = c.initQueueJobRepository()
		if err != nil {
			c.initErrors["jobRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["jobRepo"]; exists {
		return nil, storedErr
	}
	return c.jobRepo, nil
}

// WorkerUseCase returns the queue worker with audit and compliance handlers
// registered.
func (c *Container) WorkerUseCase() (*queueUseCase.WorkerUseCase, error) {
	var err error
	c.workerUCInit.Do(func() {
		c.workerUC, err = c.initWorkerUseCase()
		if err != nil {
			c.initErrors["workerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["workerUseCase"]; exists {
		return nil, storedErr
	}
	return c.workerUC, nil
}

// initQueueJobRepository creates the queue job repository.
func (c *Container) initQueueJobRepository() (*queueRepository.PostgreSQLJobRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for job repository: %w", err)
	}
	return queueRepository.NewPostgreSQLJobRepository(db), nil
}

// initWorkerUseCase creates the queue worker with all its dependencies.
func (c *Container) initWorkerUseCase() (*queueUseCase.WorkerUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for worker use case: %w", err)
	}

	jobRepo, err := c.QueueJobRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get job repository for worker use case: %w", err)
	}

	auditUC, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for worker use case: %w", err)
	}

	complianceUC, err := c.ComplianceUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance use case for worker use case: %w", err)
	}

	useCaseConfig := queueUseCase.Config{
		Concurrency:  c.config.WorkerConcurrency,
		Interval:     c.config.WorkerPollInterval,
		BatchSize:    c.config.WorkerBatchSize,
		MaxAttempts:  c.config.WorkerMaxAttempts,
		RetryBackoff: c.config.WorkerRetryBackoff,
		JobTimeout:   c.config.WorkerJobTimeout,
	}

	worker := queueUseCase.NewWorkerUseCase(useCaseConfig, txManager, jobRepo, c.JobEscalator(), c.Logger())
	worker.RegisterHandler(auditUseCase.JobTypeAuditLog, auditUseCase.NewJobHandler(auditUC))
	worker.RegisterHandler(complianceUseCase.JobTypeComplianceReport, complianceUseCase.NewJobHandler(complianceUC))

	return worker, nil
}
