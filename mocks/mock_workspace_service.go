package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"britta/internal/domain"
	"britta/internal/workspace"
)

// MockWorkspaceService is a mock implementation of service.WorkspaceService.
type MockWorkspaceService struct {
	mock.Mock
}

func (m *MockWorkspaceService) OpenPreview(ctx context.Context, userID uuid.UUID, file workspace.File) (*domain.WorkbookPreview, error) {
	args := m.Called(ctx, userID, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkbookPreview), args.Error(1)
}

func (m *MockWorkspaceService) ShowReport(ctx context.Context, userID, messageID uuid.UUID) (*domain.VATReport, error) {
	args := m.Called(ctx, userID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VATReport), args.Error(1)
}

func (m *MockWorkspaceService) Snapshot(ctx context.Context, userID uuid.UUID) workspace.PanelSnapshot {
	args := m.Called(ctx, userID)
	return args.Get(0).(workspace.PanelSnapshot)
}

func (m *MockWorkspaceService) Close(ctx context.Context, userID uuid.UUID) {
	m.Called(ctx, userID)
}
