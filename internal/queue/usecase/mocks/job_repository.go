// Package mocks provides hand-written testify mocks for queue worker
// dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	queueDomain "github.com/allisson/tokenvault/internal/queue/domain"
)

// MockJobRepository is a mock implementation of usecase.JobRepository.
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Create(ctx context.Context, job *queueDomain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) GetPendingJobs(ctx context.Context, now time.Time, limit int) ([]*queueDomain.Job, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*queueDomain.Job), args.Error(1)
}

func (m *MockJobRepository) Update(ctx context.Context, job *queueDomain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockHandler is a mock implementation of usecase.Handler.
type MockHandler struct {
	mock.Mock
}

func (m *MockHandler) Handle(ctx context.Context, job *queueDomain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockEscalator is a mock implementation of usecase.Escalator.
type MockEscalator struct {
	mock.Mock
}

func (m *MockEscalator) JobExhausted(ctx context.Context, job *queueDomain.Job) {
	m.Called(ctx, job)
}
