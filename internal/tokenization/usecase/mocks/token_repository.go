// Package mocks provides hand-written testify mocks for tokenization usecase
// dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	tokenizationDomain "github.com/allisson/tokenvault/internal/tokenization/domain"
)

// MockTokenRepository is a mock implementation of usecase.TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *tokenizationDomain.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) Get(ctx context.Context, tokenID uuid.UUID) (*tokenizationDomain.Token, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenizationDomain.Token), args.Error(1)
}

func (m *MockTokenRepository) GetByValue(ctx context.Context, vaultID uuid.UUID, tokenValue string) (*tokenizationDomain.Token, error) {
	args := m.Called(ctx, vaultID, tokenValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenizationDomain.Token), args.Error(1)
}

func (m *MockTokenRepository) GetActiveByVaultAndHash(ctx context.Context, vaultID uuid.UUID, dataHash string) (*tokenizationDomain.Token, error) {
	args := m.Called(ctx, vaultID, dataHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenizationDomain.Token), args.Error(1)
}

func (m *MockTokenRepository) Update(ctx context.Context, token *tokenizationDomain.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) Search(ctx context.Context, criteria tokenizationDomain.SearchCriteria) ([]*tokenizationDomain.Token, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tokenizationDomain.Token), args.Error(1)
}

func (m *MockTokenRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*tokenizationDomain.Token, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tokenizationDomain.Token), args.Error(1)
}

func (m *MockTokenRepository) CountByStatus(ctx context.Context, vaultID uuid.UUID) (tokenizationDomain.StatusCounts, error) {
	args := m.Called(ctx, vaultID)
	return args.Get(0).(tokenizationDomain.StatusCounts), args.Error(1)
}

func (m *MockTokenRepository) DeleteOlderThan(ctx context.Context, vaultID uuid.UUID, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, vaultID, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
