package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"britta/internal/domain"
	"britta/internal/port"
)

type analysisAuditRepo struct {
	db *sqlx.DB
}

// NewAnalysisAuditRepo creates a new PostgreSQL-backed AnalysisAuditRepository.
func NewAnalysisAuditRepo(db *sqlx.DB) port.AnalysisAuditRepository {
	return &analysisAuditRepo{db: db}
}

func (r *analysisAuditRepo) Create(ctx context.Context, entry *domain.AnalysisAudit) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()

	query := `INSERT INTO analysis_audits (id, company_id, user_id, conversation_id, file_name,
		provider, status, detail, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.CompanyID, entry.UserID, entry.ConversationID, entry.FileName,
		entry.Provider, entry.Status, entry.Detail, entry.DurationMS, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("analysisAuditRepo.Create: %w", err)
	}
	return nil
}

func (r *analysisAuditRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.AnalysisAudit, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM analysis_audits WHERE company_id = $1", companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("analysisAuditRepo.ListByCompany count: %w", err)
	}

	var entries []domain.AnalysisAudit
	err = r.db.SelectContext(ctx, &entries,
		`SELECT * FROM analysis_audits WHERE company_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		companyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("analysisAuditRepo.ListByCompany: %w", err)
	}
	return entries, total, nil
}
