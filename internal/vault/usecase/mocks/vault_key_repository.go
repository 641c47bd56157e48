package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
)

// MockVaultKeyRepository is a mock implementation of VaultKeyRepository for testing.
type MockVaultKeyRepository struct {
	mock.Mock
}

// Create mocks the Create method of VaultKeyRepository.
func (m *MockVaultKeyRepository) Create(ctx context.Context, key *vaultDomain.VaultKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GetActive mocks the GetActive method of VaultKeyRepository.
func (m *MockVaultKeyRepository) GetActive(ctx context.Context, vaultID uuid.UUID) (*vaultDomain.VaultKey, error) {
	args := m.Called(ctx, vaultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.VaultKey), args.Error(1)
}

// GetByVaultAndVersion mocks the GetByVaultAndVersion method of VaultKeyRepository.
func (m *MockVaultKeyRepository) GetByVaultAndVersion(
	ctx context.Context,
	vaultID uuid.UUID,
	version uint,
) (*vaultDomain.VaultKey, error) {
	args := m.Called(ctx, vaultID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.VaultKey), args.Error(1)
}

// Retire mocks the Retire method of VaultKeyRepository.
func (m *MockVaultKeyRepository) Retire(ctx context.Context, keyID uuid.UUID, retiredAt time.Time) error {
	args := m.Called(ctx, keyID, retiredAt)
	return args.Error(0)
}
