package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"britta/internal/domain"
	"britta/internal/service"
)

// MockCompanyService is a mock implementation of service.CompanyService.
type MockCompanyService struct {
	mock.Mock
}

func (m *MockCompanyService) Create(ctx context.Context, userID uuid.UUID, input service.CompanyInput) (*domain.Company, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyService) Get(ctx context.Context, userID, companyID uuid.UUID) (*domain.Company, error) {
	args := m.Called(ctx, userID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyService) List(ctx context.Context, userID uuid.UUID) ([]domain.Company, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Company), args.Error(1)
}

func (m *MockCompanyService) Update(ctx context.Context, userID, companyID uuid.UUID, input service.CompanyInput) (*domain.Company, error) {
	args := m.Called(ctx, userID, companyID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyService) Delete(ctx context.Context, userID, companyID uuid.UUID) error {
	args := m.Called(ctx, userID, companyID)
	return args.Error(0)
}

func (m *MockCompanyService) Switch(ctx context.Context, userID, companyID uuid.UUID) (*domain.Company, error) {
	args := m.Called(ctx, userID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}
