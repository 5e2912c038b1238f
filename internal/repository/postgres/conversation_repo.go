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

type conversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo creates a new PostgreSQL-backed ConversationRepository.
func NewConversationRepo(db *sqlx.DB) port.ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Create(ctx context.Context, conversation *domain.Conversation) error {
	conversation.ID = uuid.New()
	now := time.Now().UTC()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now

	query := `INSERT INTO conversations (id, user_id, company_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		conversation.ID, conversation.UserID, conversation.CompanyID, conversation.Title,
		conversation.CreatedAt, conversation.UpdatedAt)
	if err != nil {
		return fmt.Errorf("conversationRepo.Create: %w", err)
	}
	return nil
}

func (r *conversationRepo) GetByID(ctx context.Context, userID, conversationID uuid.UUID) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.db.GetContext(ctx, &conversation,
		"SELECT * FROM conversations WHERE id = $1 AND user_id = $2", conversationID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("conversationRepo.GetByID: %w", err)
	}
	return &conversation, nil
}

func (r *conversationRepo) ListByCompany(ctx context.Context, userID, companyID uuid.UUID, offset, limit int) ([]domain.Conversation, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM conversations WHERE user_id = $1 AND company_id = $2",
		userID, companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("conversationRepo.ListByCompany count: %w", err)
	}

	var conversations []domain.Conversation
	err = r.db.SelectContext(ctx, &conversations,
		`SELECT * FROM conversations WHERE user_id = $1 AND company_id = $2
		 ORDER BY updated_at DESC LIMIT $3 OFFSET $4`,
		userID, companyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("conversationRepo.ListByCompany: %w", err)
	}
	return conversations, total, nil
}

func (r *conversationRepo) UpdateTitle(ctx context.Context, userID, conversationID uuid.UUID, title string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE conversations SET title = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3",
		title, conversationID, userID)
	if err != nil {
		return fmt.Errorf("conversationRepo.UpdateTitle: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *conversationRepo) Delete(ctx context.Context, userID, conversationID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM conversations WHERE id = $1 AND user_id = $2", conversationID, userID)
	if err != nil {
		return fmt.Errorf("conversationRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
