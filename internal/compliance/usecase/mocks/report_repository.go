// Package mocks provides hand-written testify mocks for compliance usecase
// dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	complianceDomain "github.com/allisson/tokenvault/internal/compliance/domain"
	queueDomain "github.com/allisson/tokenvault/internal/queue/domain"
)

// MockReportRepository is a mock implementation of usecase.ReportRepository.
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, report *complianceDomain.ComplianceReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) Get(ctx context.Context, reportID uuid.UUID) (*complianceDomain.ComplianceReport, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*complianceDomain.ComplianceReport), args.Error(1)
}

func (m *MockReportRepository) Update(ctx context.Context, report *complianceDomain.ComplianceReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) List(ctx context.Context, offset, limit int) ([]*complianceDomain.ComplianceReport, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*complianceDomain.ComplianceReport), args.Error(1)
}

func (m *MockReportRepository) GatherWindowStats(ctx context.Context, from, to time.Time, vaultID *uuid.UUID) (complianceDomain.WindowStats, error) {
	args := m.Called(ctx, from, to, vaultID)
	return args.Get(0).(complianceDomain.WindowStats), args.Error(1)
}

// MockJobEnqueuer is a mock implementation of usecase.JobEnqueuer.
type MockJobEnqueuer struct {
	mock.Mock
}

func (m *MockJobEnqueuer) Create(ctx context.Context, job *queueDomain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockArtifactStore is a mock implementation of usecase.ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	args := m.Called(ctx, key, data)
	return args.String(0), args.Error(1)
}

func (m *MockArtifactStore) Hash(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// MockNotifier is a mock implementation of usecase.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, channel string, payload map[string]any) error {
	args := m.Called(ctx, channel, payload)
	return args.Error(0)
}
