package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"britta/internal/domain"
	"britta/internal/port"
)

// ConversationService defines the conversation management contract.
type ConversationService interface {
	// EnsureConversation returns the identified conversation, or lazily
	// creates one when conversationID is nil. Creation is bounded by the
	// configured timeout so a slow database cannot stall an analysis start.
	EnsureConversation(ctx context.Context, userID, companyID uuid.UUID, conversationID *uuid.UUID, title string) (*domain.Conversation, error)
	Get(ctx context.Context, userID, conversationID uuid.UUID) (*domain.Conversation, error)
	List(ctx context.Context, userID, companyID uuid.UUID, offset, limit int) ([]domain.Conversation, int, error)
	Messages(ctx context.Context, userID, conversationID uuid.UUID, offset, limit int) ([]domain.Message, int, error)
	UpdateTitle(ctx context.Context, userID, conversationID uuid.UUID, title string) error
	Delete(ctx context.Context, userID, conversationID uuid.UUID) error
}

type conversationService struct {
	conversationRepo port.ConversationRepository
	messageRepo      port.MessageRepository
	timeout          time.Duration
}

// NewConversationService creates a new ConversationService implementation.
func NewConversationService(
	conversationRepo port.ConversationRepository,
	messageRepo port.MessageRepository,
	timeout time.Duration,
) ConversationService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &conversationService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		timeout:          timeout,
	}
}

func (s *conversationService) EnsureConversation(ctx context.Context, userID, companyID uuid.UUID, conversationID *uuid.UUID, title string) (*domain.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if conversationID != nil {
		conversation, err := s.conversationRepo.GetByID(ctx, userID, *conversationID)
		if err != nil {
			return nil, s.mapTimeout(err)
		}
		if conversation.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
		return conversation, nil
	}

	if title == "" {
		title = "Momsanalys"
	}
	conversation := &domain.Conversation{
		UserID:    userID,
		CompanyID: companyID,
		Title:     title,
	}
	if err := s.conversationRepo.Create(ctx, conversation); err != nil {
		return nil, s.mapTimeout(err)
	}
	return conversation, nil
}

func (s *conversationService) Get(ctx context.Context, userID, conversationID uuid.UUID) (*domain.Conversation, error) {
	return s.conversationRepo.GetByID(ctx, userID, conversationID)
}

func (s *conversationService) List(ctx context.Context, userID, companyID uuid.UUID, offset, limit int) ([]domain.Conversation, int, error) {
	return s.conversationRepo.ListByCompany(ctx, userID, companyID, offset, limit)
}

func (s *conversationService) Messages(ctx context.Context, userID, conversationID uuid.UUID, offset, limit int) ([]domain.Message, int, error) {
	// Ownership check before touching the message table.
	if _, err := s.conversationRepo.GetByID(ctx, userID, conversationID); err != nil {
		return nil, 0, err
	}
	return s.messageRepo.ListByConversation(ctx, conversationID, offset, limit)
}

func (s *conversationService) UpdateTitle(ctx context.Context, userID, conversationID uuid.UUID, title string) error {
	return s.conversationRepo.UpdateTitle(ctx, userID, conversationID, title)
}

func (s *conversationService) Delete(ctx context.Context, userID, conversationID uuid.UUID) error {
	return s.conversationRepo.Delete(ctx, userID, conversationID)
}

func (s *conversationService) mapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrConversationTimeout
	}
	return err
}
