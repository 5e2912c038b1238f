package service

import (
	"context"

	"github.com/google/uuid"

	"britta/internal/domain"
	"britta/internal/port"
)

// StatsService provides aggregate statistics over a company's reports.
type StatsService interface {
	GetCompanyStats(ctx context.Context, userID, companyID uuid.UUID) (*domain.CompanyStats, error)
}

type statsService struct {
	statsRepo port.StatsRepository
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(statsRepo port.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) GetCompanyStats(ctx context.Context, userID, companyID uuid.UUID) (*domain.CompanyStats, error) {
	return s.statsRepo.GetCompanyStats(ctx, userID, companyID)
}
