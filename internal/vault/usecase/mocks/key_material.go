package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockKeyMaterialService is a mock implementation of KeyMaterialService for testing.
type MockKeyMaterialService struct {
	mock.Mock
}

// Generate mocks the Generate method of KeyMaterialService.
func (m *MockKeyMaterialService) Generate(ctx context.Context, keyReference string) ([]byte, string, error) {
	args := m.Called(ctx, keyReference)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}
