// Package usecase implements the background worker that drains the durable
// job queue: claim, dispatch to a handler, retry with backoff, escalate on
// exhaustion.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/tokenvault/internal/database"
	queueDomain "github.com/allisson/tokenvault/internal/queue/domain"
)

// Config holds worker configuration.
type Config struct {
	Concurrency  int
	Interval     time.Duration
	BatchSize    int
	MaxAttempts  int
	RetryBackoff time.Duration
	JobTimeout   time.Duration
}

// JobRepository defines job queue persistence operations.
type JobRepository interface {
	Create(ctx context.Context, job *queueDomain.Job) error
	GetPendingJobs(ctx context.Context, now time.Time, limit int) ([]*queueDomain.Job, error)
	Update(ctx context.Context, job *queueDomain.Job) error
}

// Handler processes one job type's payload.
type Handler interface {
	Handle(ctx context.Context, job *queueDomain.Job) error
}

// Escalator reports jobs whose attempts are exhausted.
type Escalator interface {
	JobExhausted(ctx context.Context, job *queueDomain.Job)
}

// WorkerUseCase drains the queue with a pool of claim-and-process loops. The
// row locks from GetPendingJobs keep the loops from colliding, so each loop
// processes its claimed batch within its own transaction.
type WorkerUseCase struct {
	config    Config
	txManager database.TxManager
	jobRepo   JobRepository
	handlers  map[string]Handler
	escalator Escalator
	logger    *slog.Logger
}

// NewWorkerUseCase creates a new WorkerUseCase.
func NewWorkerUseCase(
	config Config,
	txManager database.TxManager,
	jobRepo JobRepository,
	escalator Escalator,
	logger *slog.Logger,
) *WorkerUseCase {
	return &WorkerUseCase{
		config:    config,
		txManager: txManager,
		jobRepo:   jobRepo,
		handlers:  make(map[string]Handler),
		escalator: escalator,
		logger:    logger,
	}
}

// RegisterHandler binds a handler to a job type. Must be called before Start.
func (uc *WorkerUseCase) RegisterHandler(jobType string, handler Handler) {
	uc.handlers[jobType] = handler
}

// Start runs the worker pool until the context is canceled.
func (uc *WorkerUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting queue workers",
		slog.Int("concurrency", uc.config.Concurrency),
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
	)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < uc.config.Concurrency; i++ {
		g.Go(func() error {
			return uc.run(ctx)
		})
	}
	return g.Wait()
}

func (uc *WorkerUseCase) run(ctx context.Context) error {
	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessJobs(ctx); err != nil {
				uc.logger.Error("failed to process jobs", slog.Any("error", err))
			}
		}
	}
}

// ProcessJobs claims and processes one batch of due jobs in a transaction.
func (uc *WorkerUseCase) ProcessJobs(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		jobs, err := uc.jobRepo.GetPendingJobs(ctx, time.Now().UTC(), uc.config.BatchSize)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			return nil
		}

		for _, job := range jobs {
			if err := uc.processJob(ctx, job); err != nil {
				return err
			}
		}
		return nil
	})
}

func (uc *WorkerUseCase) processJob(ctx context.Context, job *queueDomain.Job) error {
	now := time.Now().UTC()

	if err := uc.dispatch(ctx, job); err != nil {
		uc.logger.Error("failed to process job",
			slog.String("job_id", job.ID.String()),
			slog.String("job_type", job.JobType),
			slog.Int("attempts", job.Attempts+1),
			slog.Any("error", err),
		)

		exhausted := job.RecordFailure(err.Error(), uc.config.MaxAttempts, uc.config.RetryBackoff, now)
		if exhausted && uc.escalator != nil {
			uc.escalator.JobExhausted(ctx, job)
		}
		return uc.jobRepo.Update(ctx, job)
	}

	job.MarkProcessed(now)
	return uc.jobRepo.Update(ctx, job)
}

// dispatch runs the job's handler under the per-job timeout.
func (uc *WorkerUseCase) dispatch(ctx context.Context, job *queueDomain.Job) error {
	handler, ok := uc.handlers[job.JobType]
	if !ok {
		return fmt.Errorf("no handler registered for job type %q", job.JobType)
	}

	jobCtx, cancel := context.WithTimeout(ctx, uc.config.JobTimeout)
	defer cancel()

	return handler.Handle(jobCtx, job)
}
