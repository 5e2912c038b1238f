package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"britta/internal/domain"
)

// MockConversationRepo is a mock implementation of port.ConversationRepository.
type MockConversationRepo struct {
	mock.Mock
}

func (m *MockConversationRepo) Create(ctx context.Context, conversation *domain.Conversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}

func (m *MockConversationRepo) GetByID(ctx context.Context, userID, conversationID uuid.UUID) (*domain.Conversation, error) {
	args := m.Called(ctx, userID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) ListByCompany(ctx context.Context, userID, companyID uuid.UUID, offset, limit int) ([]domain.Conversation, int, error) {
	args := m.Called(ctx, userID, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Conversation), args.Int(1), args.Error(2)
}

func (m *MockConversationRepo) UpdateTitle(ctx context.Context, userID, conversationID uuid.UUID, title string) error {
	args := m.Called(ctx, userID, conversationID, title)
	return args.Error(0)
}

func (m *MockConversationRepo) Delete(ctx context.Context, userID, conversationID uuid.UUID) error {
	args := m.Called(ctx, userID, conversationID)
	return args.Error(0)
}
