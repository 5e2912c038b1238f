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

type uploadRepo struct {
	db *sqlx.DB
}

// NewUploadRepo creates a new PostgreSQL-backed UploadRepository.
func NewUploadRepo(db *sqlx.DB) port.UploadRepository {
	return &uploadRepo{db: db}
}

func (r *uploadRepo) Create(ctx context.Context, upload *domain.Upload) error {
	upload.ID = uuid.New()
	upload.CreatedAt = time.Now().UTC()

	query := `INSERT INTO uploads (id, company_id, conversation_id, file_name, file_type,
		file_size, bucket, object_key, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		upload.ID, upload.CompanyID, upload.ConversationID, upload.FileName, upload.FileType,
		upload.FileSize, upload.Bucket, upload.ObjectKey, upload.ContentType, upload.CreatedAt)
	if err != nil {
		return fmt.Errorf("uploadRepo.Create: %w", err)
	}
	return nil
}

func (r *uploadRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Upload, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM uploads WHERE company_id = $1", companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("uploadRepo.ListByCompany count: %w", err)
	}

	var uploads []domain.Upload
	err = r.db.SelectContext(ctx, &uploads,
		`SELECT * FROM uploads WHERE company_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		companyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("uploadRepo.ListByCompany: %w", err)
	}
	return uploads, total, nil
}
