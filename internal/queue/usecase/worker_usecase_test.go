package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	databaseMocks "github.com/allisson/tokenvault/internal/database/mocks"
	queueDomain "github.com/allisson/tokenvault/internal/queue/domain"
	"github.com/allisson/tokenvault/internal/queue/usecase/mocks"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type workerTestDeps struct {
	txManager *databaseMocks.MockTxManager
	jobRepo   *mocks.MockJobRepository
	handler   *mocks.MockHandler
	escalator *mocks.MockEscalator
	worker    *WorkerUseCase
}

func newWorkerTestDeps() *workerTestDeps {
	deps := &workerTestDeps{
		txManager: &databaseMocks.MockTxManager{},
		jobRepo:   &mocks.MockJobRepository{},
		handler:   &mocks.MockHandler{},
		escalator: &mocks.MockEscalator{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps.worker = NewWorkerUseCase(Config{
		Concurrency:  2,
		Interval:     10 * time.Millisecond,
		BatchSize:    10,
		MaxAttempts:  3,
		RetryBackoff: time.Minute,
		JobTimeout:   time.Second,
	}, deps.txManager, deps.jobRepo, deps.escalator, logger)
	deps.worker.RegisterHandler("test_job", deps.handler)
	return deps
}

func pendingJob() *queueDomain.Job {
	return queueDomain.NewJob("default", "test_job", queueDomain.PriorityDefault, []byte(`{}`))
}

func TestWorkerUseCase_ProcessJobs(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ProcessesClaimedBatch", func(t *testing.T) {
		deps := newWorkerTestDeps()
		job := pendingJob()

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.jobRepo.On("GetPendingJobs", mock.Anything, mock.AnythingOfType("time.Time"), 10).
			Return([]*queueDomain.Job{job}, nil).Once()
		deps.handler.On("Handle", mock.Anything, job).Return(nil).Once()
		deps.jobRepo.On("Update", mock.Anything, job).Return(nil).Once()

		err := deps.worker.ProcessJobs(ctx)

		require.NoError(t, err)
		assert.Equal(t, queueDomain.JobStatusProcessed, job.Status)
		assert.NotNil(t, job.ProcessedAt)
		deps.handler.AssertExpectations(t)
	})

	t.Run("Success_EmptyBatch", func(t *testing.T) {
		deps := newWorkerTestDeps()

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.jobRepo.On("GetPendingJobs", mock.Anything, mock.AnythingOfType("time.Time"), 10).
			Return([]*queueDomain.Job{}, nil).Once()

		err := deps.worker.ProcessJobs(ctx)

		require.NoError(t, err)
		deps.jobRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Success_HandlerFailureReschedulesWithBackoff", func(t *testing.T) {
		deps := newWorkerTestDeps()
		job := pendingJob()
		before := time.Now().UTC()

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.jobRepo.On("GetPendingJobs", mock.Anything, mock.AnythingOfType("time.Time"), 10).
			Return([]*queueDomain.Job{job}, nil).Once()
		deps.handler.On("Handle", mock.Anything, job).Return(assert.AnError).Once()
		deps.jobRepo.On("Update", mock.Anything, job).Return(nil).Once()

		err := deps.worker.ProcessJobs(ctx)

		require.NoError(t, err)
		assert.Equal(t, queueDomain.JobStatusPending, job.Status)
		assert.Equal(t, 1, job.Attempts)
		require.NotNil(t, job.LastError)
		assert.False(t, job.ScheduledAt.Before(before.Add(time.Minute)))
		deps.escalator.AssertNotCalled(t, "JobExhausted", mock.Anything, mock.Anything)
	})

	t.Run("Success_ExhaustedJobEscalates", func(t *testing.T) {
		deps := newWorkerTestDeps()
		job := pendingJob()
		job.Attempts = 2

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.jobRepo.On("GetPendingJobs", mock.Anything, mock.AnythingOfType("time.Time"), 10).
			Return([]*queueDomain.Job{job}, nil).Once()
		deps.handler.On("Handle", mock.Anything, job).Return(assert.AnError).Once()
		deps.escalator.On("JobExhausted", mock.Anything, job).Once()
		deps.jobRepo.On("Update", mock.Anything, job).Return(nil).Once()

		err := deps.worker.ProcessJobs(ctx)

		require.NoError(t, err)
		assert.Equal(t, queueDomain.JobStatusFailed, job.Status)
		assert.Equal(t, 3, job.Attempts)
		deps.escalator.AssertExpectations(t)
	})

	t.Run("Success_UnregisteredJobTypeFails", func(t *testing.T) {
		deps := newWorkerTestDeps()
		job := queueDomain.NewJob("default", "unknown_type", queueDomain.PriorityDefault, []byte(`{}`))

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.jobRepo.On("GetPendingJobs", mock.Anything, mock.AnythingOfType("time.Time"), 10).
			Return([]*queueDomain.Job{job}, nil).Once()
		deps.jobRepo.On("Update", mock.Anything, job).Return(nil).Once()

		err := deps.worker.ProcessJobs(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, job.Attempts)
		require.NotNil(t, job.LastError)
		assert.Contains(t, *job.LastError, "no handler registered")
	})

	t.Run("Error_ClaimFailurePropagates", func(t *testing.T) {
		deps := newWorkerTestDeps()

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.jobRepo.On("GetPendingJobs", mock.Anything, mock.AnythingOfType("time.Time"), 10).
			Return(nil, assert.AnError).Once()

		err := deps.worker.ProcessJobs(ctx)
		assert.Error(t, err)
	})
}

func TestWorkerUseCase_Start(t *testing.T) {
	t.Run("Success_StopsOnContextCancel", func(t *testing.T) {
		deps := newWorkerTestDeps()

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil)
		deps.jobRepo.On("GetPendingJobs", mock.Anything, mock.AnythingOfType("time.Time"), 10).
			Return([]*queueDomain.Job{}, nil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- deps.worker.Start(ctx)
		}()

		// Let the pool tick a few times, then shut it down.
		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("worker pool did not stop after context cancel")
		}
	})
}
