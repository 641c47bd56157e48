// Package mocks provides mock implementations for testing vault use cases.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
)

// MockVaultRepository is a mock implementation of VaultRepository for testing.
type MockVaultRepository struct {
	mock.Mock
}

// Create mocks the Create method of VaultRepository.
func (m *MockVaultRepository) Create(ctx context.Context, vault *vaultDomain.Vault) error {
	args := m.Called(ctx, vault)
	return args.Error(0)
}

// Get mocks the Get method of VaultRepository.
func (m *MockVaultRepository) Get(ctx context.Context, vaultID uuid.UUID) (*vaultDomain.Vault, error) {
	args := m.Called(ctx, vaultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Vault), args.Error(1)
}

// GetByName mocks the GetByName method of VaultRepository.
func (m *MockVaultRepository) GetByName(ctx context.Context, name string) (*vaultDomain.Vault, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Vault), args.Error(1)
}

// Update mocks the Update method of VaultRepository.
func (m *MockVaultRepository) Update(ctx context.Context, vault *vaultDomain.Vault) error {
	args := m.Called(ctx, vault)
	return args.Error(0)
}

// IncrementTokenCount mocks the IncrementTokenCount method of VaultRepository.
func (m *MockVaultRepository) IncrementTokenCount(ctx context.Context, vaultID uuid.UUID) error {
	args := m.Called(ctx, vaultID)
	return args.Error(0)
}

// DecrementTokenCount mocks the DecrementTokenCount method of VaultRepository.
func (m *MockVaultRepository) DecrementTokenCount(ctx context.Context, vaultID uuid.UUID) error {
	args := m.Called(ctx, vaultID)
	return args.Error(0)
}

// List mocks the List method of VaultRepository.
func (m *MockVaultRepository) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Vault, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Vault), args.Error(1)
}

// ListNeedingRotation mocks the ListNeedingRotation method of VaultRepository.
func (m *MockVaultRepository) ListNeedingRotation(ctx context.Context, now time.Time) ([]*vaultDomain.Vault, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Vault), args.Error(1)
}
