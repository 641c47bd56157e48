// Package mocks provides hand-written testify mocks for audit usecase
// dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	queueDomain "github.com/allisson/tokenvault/internal/queue/domain"
)

// MockAuditLogRepository is a mock implementation of usecase.AuditLogRepository.
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log *auditDomain.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditLogRepository) Get(ctx context.Context, logID uuid.UUID) (*auditDomain.AuditLog, error) {
	args := m.Called(ctx, logID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditLog), args.Error(1)
}

func (m *MockAuditLogRepository) List(ctx context.Context, filter auditDomain.ListFilter) ([]*auditDomain.AuditLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditLog), args.Error(1)
}

func (m *MockAuditLogRepository) CountFailuresByIPSince(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	args := m.Called(ctx, ipAddress, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditLogRepository) CountOperationsByIPSince(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	args := m.Called(ctx, ipAddress, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditLogRepository) HasActivityFromIPBefore(ctx context.Context, ipAddress string, before time.Time) (bool, error) {
	args := m.Called(ctx, ipAddress, before)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuditLogRepository) Summary(ctx context.Context, from, to time.Time) (*auditDomain.Summary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.Summary), args.Error(1)
}

func (m *MockAuditLogRepository) MarkProcessed(ctx context.Context, logID uuid.UUID, processedAt time.Time) error {
	args := m.Called(ctx, logID, processedAt)
	return args.Error(0)
}

func (m *MockAuditLogRepository) CountUnarchivedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditLogRepository) ArchiveBefore(ctx context.Context, cutoff, archivedAt time.Time) (int64, error) {
	args := m.Called(ctx, cutoff, archivedAt)
	return args.Get(0).(int64), args.Error(1)
}

// MockJobEnqueuer is a mock implementation of usecase.JobEnqueuer.
type MockJobEnqueuer struct {
	mock.Mock
}

func (m *MockJobEnqueuer) Create(ctx context.Context, job *queueDomain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockDetector is a mock implementation of usecase.Detector.
type MockDetector struct {
	mock.Mock
}

func (m *MockDetector) Inspect(ctx context.Context, log *auditDomain.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}
