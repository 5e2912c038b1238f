package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"britta/internal/domain"
	"britta/internal/service"
)

// MockAnalysisService is a mock implementation of service.AnalysisService.
// The sink is forwarded through Called so tests can replay progress events
// with .Run before returning the final report.
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, input service.AnalyzeInput, sink func(domain.ProgressEvent)) (*domain.VATReport, error) {
	args := m.Called(ctx, input, sink)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VATReport), args.Error(1)
}

func (m *MockAnalysisService) Retry(ctx context.Context, input service.RetryInput, sink func(domain.ProgressEvent)) (*domain.VATReport, error) {
	args := m.Called(ctx, input, sink)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VATReport), args.Error(1)
}
