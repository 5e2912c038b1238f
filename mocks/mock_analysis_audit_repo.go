package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"britta/internal/domain"
)

// MockAnalysisAuditRepo is a mock implementation of port.AnalysisAuditRepository.
type MockAnalysisAuditRepo struct {
	mock.Mock
}

func (m *MockAnalysisAuditRepo) Create(ctx context.Context, entry *domain.AnalysisAudit) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAnalysisAuditRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.AnalysisAudit, int, error) {
	args := m.Called(ctx, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.AnalysisAudit), args.Int(1), args.Error(2)
}
