// Package mocks provides hand-written testify mocks for alert usecase
// dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	securityDomain "github.com/allisson/tokenvault/internal/security/domain"
)

// MockAlertRepository is a mock implementation of usecase.AlertRepository.
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) Get(ctx context.Context, alertID uuid.UUID) (*securityDomain.SecurityAlert, error) {
	args := m.Called(ctx, alertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*securityDomain.SecurityAlert), args.Error(1)
}

func (m *MockAlertRepository) Update(ctx context.Context, alert *securityDomain.SecurityAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) List(ctx context.Context, filter securityDomain.ListFilter) ([]*securityDomain.SecurityAlert, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*securityDomain.SecurityAlert), args.Error(1)
}

func (m *MockAlertRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*securityDomain.SecurityAlert, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*securityDomain.SecurityAlert), args.Error(1)
}

func (m *MockAlertRepository) CountBySeverity(ctx context.Context, since time.Time) (map[securityDomain.Severity]int64, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[securityDomain.Severity]int64), args.Error(1)
}
