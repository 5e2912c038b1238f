package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"britta/internal/domain"
)

// MockReportSummaryRepo is a mock implementation of port.ReportSummaryRepository.
type MockReportSummaryRepo struct {
	mock.Mock
}

func (m *MockReportSummaryRepo) Upsert(ctx context.Context, summary *domain.ReportSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockReportSummaryRepo) GetByMessage(ctx context.Context, messageID uuid.UUID) (*domain.ReportSummary, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportSummary), args.Error(1)
}

func (m *MockReportSummaryRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.ReportSummary, int, error) {
	args := m.Called(ctx, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReportSummary), args.Int(1), args.Error(2)
}
