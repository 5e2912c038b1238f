package mocks

import (
	"github.com/stretchr/testify/mock"

	"britta/internal/domain"
)

// MockWorkbookParser is a mock implementation of port.WorkbookParser.
type MockWorkbookParser struct {
	mock.Mock
}

func (m *MockWorkbookParser) Parse(fileName string, data []byte) (*domain.Workbook, error) {
	args := m.Called(fileName, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workbook), args.Error(1)
}
