package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"britta/internal/domain"
	"britta/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const companyStatsQuery = `SELECT
	COUNT(*) AS report_count,
	COALESCE(SUM(rs.total_income), 0) AS total_income,
	COALESCE(SUM(rs.total_costs), 0) AS total_costs,
	COALESCE(SUM(rs.result), 0) AS total_result,
	COALESCE(SUM(rs.vat_to_pay), 0) AS vat_to_pay,
	COALESCE(SUM(rs.vat_to_refund), 0) AS vat_to_refund,
	COALESCE(SUM(rs.transaction_count), 0) AS transaction_count
FROM report_summaries rs
INNER JOIN companies c ON c.id = rs.company_id
WHERE rs.company_id = $1 AND c.user_id = $2`

func (r *statsRepo) GetCompanyStats(ctx context.Context, userID, companyID uuid.UUID) (*domain.CompanyStats, error) {
	var stats domain.CompanyStats
	if err := r.db.GetContext(ctx, &stats, companyStatsQuery, companyID, userID); err != nil {
		return nil, fmt.Errorf("statsRepo.GetCompanyStats: %w", err)
	}
	return &stats, nil
}
