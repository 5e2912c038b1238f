package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"britta/internal/domain"
)

// MockConversationService is a mock implementation of service.ConversationService.
type MockConversationService struct {
	mock.Mock
}

func (m *MockConversationService) EnsureConversation(ctx context.Context, userID, companyID uuid.UUID, conversationID *uuid.UUID, title string) (*domain.Conversation, error) {
	args := m.Called(ctx, userID, companyID, conversationID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationService) Get(ctx context.Context, userID, conversationID uuid.UUID) (*domain.Conversation, error) {
	args := m.Called(ctx, userID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationService) List(ctx context.Context, userID, companyID uuid.UUID, offset, limit int) ([]domain.Conversation, int, error) {
	args := m.Called(ctx, userID, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Conversation), args.Int(1), args.Error(2)
}

func (m *MockConversationService) Messages(ctx context.Context, userID, conversationID uuid.UUID, offset, limit int) ([]domain.Message, int, error) {
	args := m.Called(ctx, userID, conversationID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Message), args.Int(1), args.Error(2)
}

func (m *MockConversationService) UpdateTitle(ctx context.Context, userID, conversationID uuid.UUID, title string) error {
	args := m.Called(ctx, userID, conversationID, title)
	return args.Error(0)
}

func (m *MockConversationService) Delete(ctx context.Context, userID, conversationID uuid.UUID) error {
	args := m.Called(ctx, userID, conversationID)
	return args.Error(0)
}
