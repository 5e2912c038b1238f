package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"britta/internal/domain"
	"britta/internal/port"
)

type companyRepo struct {
	db *sqlx.DB
}

// NewCompanyRepo creates a new PostgreSQL-backed CompanyRepository.
func NewCompanyRepo(db *sqlx.DB) port.CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) Create(ctx context.Context, company *domain.Company) error {
	company.ID = uuid.New()
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now

	query := `INSERT INTO companies (id, user_id, name, org_number, vat_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		company.ID, company.UserID, company.Name, company.OrgNumber, company.VATNumber,
		company.CreatedAt, company.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return fmt.Errorf("%w: company with this organisation number already exists", domain.ErrInvalidInput)
		}
		return fmt.Errorf("companyRepo.Create: %w", err)
	}
	return nil
}

func (r *companyRepo) GetByID(ctx context.Context, userID, companyID uuid.UUID) (*domain.Company, error) {
	var company domain.Company
	err := r.db.GetContext(ctx, &company,
		"SELECT * FROM companies WHERE id = $1 AND user_id = $2", companyID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("companyRepo.GetByID: %w", err)
	}
	return &company, nil
}

func (r *companyRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Company, error) {
	var companies []domain.Company
	err := r.db.SelectContext(ctx, &companies,
		"SELECT * FROM companies WHERE user_id = $1 ORDER BY created_at ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("companyRepo.ListByUser: %w", err)
	}
	return companies, nil
}

func (r *companyRepo) Update(ctx context.Context, company *domain.Company) error {
	company.UpdatedAt = time.Now().UTC()
	query := `UPDATE companies SET name = $1, org_number = $2, vat_number = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6`
	result, err := r.db.ExecContext(ctx, query,
		company.Name, company.OrgNumber, company.VATNumber, company.UpdatedAt,
		company.ID, company.UserID)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return fmt.Errorf("%w: company with this organisation number already exists", domain.ErrInvalidInput)
		}
		return fmt.Errorf("companyRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *companyRepo) Delete(ctx context.Context, userID, companyID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM companies WHERE id = $1 AND user_id = $2", companyID, userID)
	if err != nil {
		return fmt.Errorf("companyRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
