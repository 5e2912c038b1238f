package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"britta/internal/domain"
	"britta/internal/service"
)

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) List(ctx context.Context, userID, companyID uuid.UUID, offset, limit int) ([]domain.ReportSummary, int, error) {
	args := m.Called(ctx, userID, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReportSummary), args.Int(1), args.Error(2)
}

func (m *MockReportService) Get(ctx context.Context, userID, messageID uuid.UUID) (*domain.VATReport, error) {
	args := m.Called(ctx, userID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VATReport), args.Error(1)
}

func (m *MockReportService) ExportSIE(ctx context.Context, userID, messageID uuid.UUID) (*service.ReportExport, error) {
	args := m.Called(ctx, userID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReportExport), args.Error(1)
}

func (m *MockReportService) ExportCSV(ctx context.Context, userID, messageID uuid.UUID) (*service.ReportExport, error) {
	args := m.Called(ctx, userID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReportExport), args.Error(1)
}

func (m *MockReportService) Email(ctx context.Context, userID, messageID uuid.UUID, toEmail string) error {
	args := m.Called(ctx, userID, messageID, toEmail)
	return args.Error(0)
}
