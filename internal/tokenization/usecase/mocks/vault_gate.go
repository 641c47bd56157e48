package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
)

// MockVaultGate is a mock implementation of usecase.VaultGate.
type MockVaultGate struct {
	mock.Mock
}

func (m *MockVaultGate) ValidateForOperation(ctx context.Context, vaultID uuid.UUID, op vaultDomain.Operation, reqCtx auditDomain.RequestContext) (*vaultDomain.Vault, error) {
	args := m.Called(ctx, vaultID, op, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Vault), args.Error(1)
}

// MockVaultCounter is a mock implementation of usecase.VaultCounter.
type MockVaultCounter struct {
	mock.Mock
}

func (m *MockVaultCounter) IncrementTokenCount(ctx context.Context, vaultID uuid.UUID) error {
	args := m.Called(ctx, vaultID)
	return args.Error(0)
}

func (m *MockVaultCounter) DecrementTokenCount(ctx context.Context, vaultID uuid.UUID) error {
	args := m.Called(ctx, vaultID)
	return args.Error(0)
}

// MockRetentionSource is a mock implementation of usecase.RetentionSource.
type MockRetentionSource struct {
	mock.Mock
}

func (m *MockRetentionSource) ListWithRetentionPolicy(ctx context.Context) ([]*vaultDomain.Vault, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Vault), args.Error(1)
}

// MockKeyProvider is a mock implementation of usecase.KeyProvider.
type MockKeyProvider struct {
	mock.Mock
}

func (m *MockKeyProvider) GetActive(ctx context.Context, vaultID uuid.UUID) (*vaultDomain.VaultKey, error) {
	args := m.Called(ctx, vaultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.VaultKey), args.Error(1)
}

// MockAuditLogger is a mock implementation of usecase.AuditLogger.
type MockAuditLogger struct {
	mock.Mock
}

func (m *MockAuditLogger) LogEvent(ctx context.Context, event *auditDomain.Event) (uuid.UUID, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
