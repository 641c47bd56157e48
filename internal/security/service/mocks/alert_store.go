// Package mocks provides hand-written testify mocks for pattern detector
// dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	securityDomain "github.com/allisson/tokenvault/internal/security/domain"
)

// MockAlertStore is a mock implementation of service.AlertStore.
type MockAlertStore struct {
	mock.Mock
}

func (m *MockAlertStore) Create(ctx context.Context, alert *securityDomain.SecurityAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertStore) GetOpenForMerge(ctx context.Context, alertType securityDomain.AlertType, vaultID *uuid.UUID, ipAddress string, since time.Time) (*securityDomain.SecurityAlert, error) {
	args := m.Called(ctx, alertType, vaultID, ipAddress, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*securityDomain.SecurityAlert), args.Error(1)
}

func (m *MockAlertStore) Update(ctx context.Context, alert *securityDomain.SecurityAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

// MockAuditHistory is a mock implementation of service.AuditHistory.
type MockAuditHistory struct {
	mock.Mock
}

func (m *MockAuditHistory) CountFailuresByIPSince(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	args := m.Called(ctx, ipAddress, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditHistory) CountOperationsByIPSince(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	args := m.Called(ctx, ipAddress, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditHistory) HasActivityFromIPBefore(ctx context.Context, ipAddress string, before time.Time) (bool, error) {
	args := m.Called(ctx, ipAddress, before)
	return args.Bool(0), args.Error(1)
}

// MockNotifier is a mock implementation of service.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) AlertRaised(ctx context.Context, alert *securityDomain.SecurityAlert) {
	m.Called(ctx, alert)
}
