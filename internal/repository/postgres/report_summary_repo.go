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

type reportSummaryRepo struct {
	db *sqlx.DB
}

// NewReportSummaryRepo creates a new PostgreSQL-backed ReportSummaryRepository.
func NewReportSummaryRepo(db *sqlx.DB) port.ReportSummaryRepository {
	return &reportSummaryRepo{db: db}
}

// Upsert inserts or refreshes the summary row for a message. Re-running an
// analysis against the same message replaces the stored figures; the
// original created_at is kept.
func (r *reportSummaryRepo) Upsert(ctx context.Context, summary *domain.ReportSummary) error {
	if summary.ID == uuid.Nil {
		summary.ID = uuid.New()
	}
	now := time.Now().UTC()
	summary.CreatedAt = now
	summary.UpdatedAt = now

	query := `INSERT INTO report_summaries (id, company_id, conversation_id, message_id, period,
		total_income, total_costs, result, vat_to_pay, vat_to_refund, transaction_count,
		created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (message_id) DO UPDATE SET
			period = EXCLUDED.period,
			total_income = EXCLUDED.total_income,
			total_costs = EXCLUDED.total_costs,
			result = EXCLUDED.result,
			vat_to_pay = EXCLUDED.vat_to_pay,
			vat_to_refund = EXCLUDED.vat_to_refund,
			transaction_count = EXCLUDED.transaction_count,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		summary.ID, summary.CompanyID, summary.ConversationID, summary.MessageID, summary.Period,
		summary.TotalIncome, summary.TotalCosts, summary.Result, summary.VATToPay,
		summary.VATToRefund, summary.TransactionCount, summary.CreatedAt, summary.UpdatedAt)
	if err != nil {
		return fmt.Errorf("reportSummaryRepo.Upsert: %w", err)
	}
	return nil
}

func (r *reportSummaryRepo) GetByMessage(ctx context.Context, messageID uuid.UUID) (*domain.ReportSummary, error) {
	var summary domain.ReportSummary
	err := r.db.GetContext(ctx, &summary,
		"SELECT * FROM report_summaries WHERE message_id = $1", messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reportSummaryRepo.GetByMessage: %w", err)
	}
	return &summary, nil
}

func (r *reportSummaryRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.ReportSummary, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM report_summaries WHERE company_id = $1", companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("reportSummaryRepo.ListByCompany count: %w", err)
	}

	var summaries []domain.ReportSummary
	err = r.db.SelectContext(ctx, &summaries,
		`SELECT * FROM report_summaries WHERE company_id = $1
		 ORDER BY period DESC, created_at DESC LIMIT $2 OFFSET $3`,
		companyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("reportSummaryRepo.ListByCompany: %w", err)
	}
	return summaries, total, nil
}
