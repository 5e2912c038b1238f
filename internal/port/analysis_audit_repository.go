package port

import (
	"context"

	"github.com/google/uuid"

	"britta/internal/domain"
)

// AnalysisAuditRepository defines the contract for the analysis audit trail.
type AnalysisAuditRepository interface {
	Create(ctx context.Context, entry *domain.AnalysisAudit) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.AnalysisAudit, int, error)
}
