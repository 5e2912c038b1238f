package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"britta/internal/domain"
	"britta/internal/port"
	"britta/internal/vat"
	"britta/internal/workspace"
)

// CompanyInput is the DTO for company create and update requests.
type CompanyInput struct {
	Name      string `json:"name" binding:"required"`
	OrgNumber string `json:"org_number" binding:"required"`
	VATNumber string `json:"vat_number"`
}

// CompanyService defines the company management contract.
type CompanyService interface {
	Create(ctx context.Context, userID uuid.UUID, input CompanyInput) (*domain.Company, error)
	Get(ctx context.Context, userID, companyID uuid.UUID) (*domain.Company, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.Company, error)
	Update(ctx context.Context, userID, companyID uuid.UUID, input CompanyInput) (*domain.Company, error)
	Delete(ctx context.Context, userID, companyID uuid.UUID) error
	// Switch makes companyID the session's active company. The workspace
	// panel always belongs to one company's books, so switching closes it.
	Switch(ctx context.Context, userID, companyID uuid.UUID) (*domain.Company, error)
}

type companyService struct {
	companyRepo port.CompanyRepository
	uploadRepo  port.UploadRepository
	storage     port.ObjectStorage
	workspaces  *workspace.Manager
	logger      zerolog.Logger
}

// NewCompanyService creates a new CompanyService implementation.
func NewCompanyService(
	companyRepo port.CompanyRepository,
	uploadRepo port.UploadRepository,
	storage port.ObjectStorage,
	workspaces *workspace.Manager,
	logger zerolog.Logger,
) CompanyService {
	return &companyService{
		companyRepo: companyRepo,
		uploadRepo:  uploadRepo,
		storage:     storage,
		workspaces:  workspaces,
		logger:      logger,
	}
}

func (s *companyService) Create(ctx context.Context, userID uuid.UUID, input CompanyInput) (*domain.Company, error) {
	company := &domain.Company{
		UserID:    userID,
		Name:      strings.TrimSpace(input.Name),
		OrgNumber: strings.TrimSpace(input.OrgNumber),
		VATNumber: strings.TrimSpace(input.VATNumber),
	}
	if err := s.validateIdentity(company); err != nil {
		return nil, err
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *companyService) Get(ctx context.Context, userID, companyID uuid.UUID) (*domain.Company, error) {
	return s.companyRepo.GetByID(ctx, userID, companyID)
}

func (s *companyService) List(ctx context.Context, userID uuid.UUID) ([]domain.Company, error) {
	return s.companyRepo.ListByUser(ctx, userID)
}

func (s *companyService) Update(ctx context.Context, userID, companyID uuid.UUID, input CompanyInput) (*domain.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}

	company.Name = strings.TrimSpace(input.Name)
	company.OrgNumber = strings.TrimSpace(input.OrgNumber)
	company.VATNumber = strings.TrimSpace(input.VATNumber)
	if err := s.validateIdentity(company); err != nil {
		return nil, err
	}
	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *companyService) Delete(ctx context.Context, userID, companyID uuid.UUID) error {
	// Collect archive keys first: the upload rows cascade away with the
	// company row. Nothing is purged unless the delete succeeds.
	doomed := s.collectUploads(ctx, companyID)

	if err := s.companyRepo.Delete(ctx, userID, companyID); err != nil {
		return err
	}
	// The panel may still show the deleted company's books.
	s.workspaces.Close(userID)
	s.purgeArchive(ctx, doomed)
	return nil
}

const purgePageSize = 200

func (s *companyService) collectUploads(ctx context.Context, companyID uuid.UUID) []domain.Upload {
	var all []domain.Upload
	for offset := 0; ; offset += purgePageSize {
		page, total, err := s.uploadRepo.ListByCompany(ctx, companyID, offset, purgePageSize)
		if err != nil {
			s.logger.Warn().Err(err).Str("company_id", companyID.String()).
				Msg("listing uploads for purge failed")
			return all
		}
		all = append(all, page...)
		if len(page) == 0 || len(all) >= total {
			return all
		}
	}
}

// purgeArchive removes archived spreadsheets from object storage. Best-effort:
// the company row is already gone, so failures are logged and the remaining
// keys still attempted.
func (s *companyService) purgeArchive(ctx context.Context, uploads []domain.Upload) {
	purged := 0
	for _, u := range uploads {
		if u.Bucket == "" || u.ObjectKey == "" {
			continue
		}
		if err := s.storage.Delete(ctx, u.Bucket, u.ObjectKey); err != nil {
			s.logger.Warn().Err(err).Str("key", u.ObjectKey).Msg("purging archived upload failed")
			continue
		}
		purged++
	}
	if purged > 0 {
		s.logger.Info().Int("count", purged).Msg("purged archived uploads")
	}
}

func (s *companyService) Switch(ctx context.Context, userID, companyID uuid.UUID) (*domain.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	s.workspaces.Close(userID)
	return company, nil
}

// validateIdentity checks the organisationsnummer and momsregistreringsnummer,
// deriving the latter from the former when absent.
func (s *companyService) validateIdentity(company *domain.Company) error {
	if err := vat.ValidateOrgNumber(company.OrgNumber); err != nil {
		return err
	}
	if company.VATNumber == "" {
		company.VATNumber = vat.FormatVATNumber(company.OrgNumber)
		return nil
	}
	return vat.ValidateVATNumber(company.VATNumber)
}
