package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"britta/internal/domain"
	"britta/internal/port"
)

// MockAnalysisStreamer is a mock implementation of port.AnalysisStreamer.
// Tests drive emitted events through Run on the Stream expectation; the
// third argument is the emit callback.
type MockAnalysisStreamer struct {
	mock.Mock
}

func (m *MockAnalysisStreamer) Stream(ctx context.Context, input port.StreamInput, emit func(domain.ProgressEvent)) error {
	args := m.Called(ctx, input, emit)
	return args.Error(0)
}

func (m *MockAnalysisStreamer) Name() string {
	args := m.Called()
	return args.String(0)
}
