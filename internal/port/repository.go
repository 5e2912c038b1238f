package port

import (
	"context"

	"github.com/google/uuid"

	"britta/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// CompanyRepository defines the contract for company persistence.
// All query methods include userID to enforce ownership at the data layer.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	GetByID(ctx context.Context, userID, companyID uuid.UUID) (*domain.Company, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Company, error)
	Update(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, userID, companyID uuid.UUID) error
}

// UploadRepository defines the contract for spreadsheet archive records.
// Rows are written by analysis and read back only when a company purge
// collects the object keys to remove.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Upload, int, error)
}
