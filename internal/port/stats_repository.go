package port

import (
	"context"

	"github.com/google/uuid"

	"britta/internal/domain"
)

// StatsRepository provides aggregate statistics over stored report summaries.
type StatsRepository interface {
	GetCompanyStats(ctx context.Context, userID, companyID uuid.UUID) (*domain.CompanyStats, error)
}
