package port

import (
	"context"

	"britta/internal/domain"
)

// ReportEmail carries a finished report and its bookkeeping attachment.
type ReportEmail struct {
	ToEmail        string
	ToName         string
	Report         *domain.VATReport
	Attachment     []byte
	AttachmentName string
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendReportEmail(ctx context.Context, email ReportEmail) error
}
