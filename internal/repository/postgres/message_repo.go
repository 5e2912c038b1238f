package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"britta/internal/domain"
	"britta/internal/port"
)

type messageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo creates a new PostgreSQL-backed MessageRepository.
func NewMessageRepo(db *sqlx.DB) port.MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, message *domain.Message) error {
	message.ID = uuid.New()
	message.CreatedAt = time.Now().UTC()

	query := `INSERT INTO messages (id, conversation_id, role, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		message.ID, message.ConversationID, message.Role, message.Content,
		message.Metadata, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("messageRepo.Create: %w", err)
	}

	// Conversations list by activity; a failed touch only affects ordering.
	_, _ = r.db.ExecContext(ctx,
		"UPDATE conversations SET updated_at = NOW() WHERE id = $1", message.ConversationID)
	return nil
}

func (r *messageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	var message domain.Message
	err := r.db.GetContext(ctx, &message, "SELECT * FROM messages WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("messageRepo.GetByID: %w", err)
	}
	return &message, nil
}

func (r *messageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID, offset, limit int) ([]domain.Message, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM messages WHERE conversation_id = $1", conversationID)
	if err != nil {
		return nil, 0, fmt.Errorf("messageRepo.ListByConversation count: %w", err)
	}

	var messages []domain.Message
	err = r.db.SelectContext(ctx, &messages,
		`SELECT * FROM messages WHERE conversation_id = $1
		 ORDER BY created_at ASC LIMIT $2 OFFSET $3`,
		conversationID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("messageRepo.ListByConversation: %w", err)
	}
	return messages, total, nil
}

func (r *messageRepo) ListWithReports(ctx context.Context, offset, limit int) ([]domain.Message, int, error) {
	where := `WHERE role = $1 AND metadata ->> 'type' = $2`

	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM messages "+where, domain.MessageRoleAssistant, domain.ReportType)
	if err != nil {
		return nil, 0, fmt.Errorf("messageRepo.ListWithReports count: %w", err)
	}

	var messages []domain.Message
	err = r.db.SelectContext(ctx, &messages,
		"SELECT * FROM messages "+where+" ORDER BY created_at ASC LIMIT $3 OFFSET $4",
		domain.MessageRoleAssistant, domain.ReportType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("messageRepo.ListWithReports: %w", err)
	}
	return messages, total, nil
}
