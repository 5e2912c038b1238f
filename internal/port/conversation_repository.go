package port

import (
	"context"

	"github.com/google/uuid"

	"britta/internal/domain"
)

// ConversationRepository defines the contract for conversation persistence.
// Query methods include userID so a session can never read another user's
// conversations.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) error
	GetByID(ctx context.Context, userID, conversationID uuid.UUID) (*domain.Conversation, error)
	ListByCompany(ctx context.Context, userID, companyID uuid.UUID, offset, limit int) ([]domain.Conversation, int, error)
	UpdateTitle(ctx context.Context, userID, conversationID uuid.UUID, title string) error
	Delete(ctx context.Context, userID, conversationID uuid.UUID) error
}

// MessageRepository defines the contract for the append-only message store.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	ListByConversation(ctx context.Context, conversationID uuid.UUID, offset, limit int) ([]domain.Message, int, error)
	// ListWithReports pages through assistant messages whose metadata carries
	// a persisted VAT report, across all conversations.
	ListWithReports(ctx context.Context, offset, limit int) ([]domain.Message, int, error)
}
