package port

import (
	"context"

	"github.com/google/uuid"

	"britta/internal/domain"
)

// ReportSummaryRepository manages the materialized report_summaries table.
// One row per persisted report message, keyed by message_id.
type ReportSummaryRepository interface {
	Upsert(ctx context.Context, summary *domain.ReportSummary) error
	GetByMessage(ctx context.Context, messageID uuid.UUID) (*domain.ReportSummary, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.ReportSummary, int, error)
}
