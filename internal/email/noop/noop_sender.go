package noop

import (
	"context"
	"log"

	"britta/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs instead of sending.
// Used in local development where SES is not configured.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendReportEmail(_ context.Context, email port.ReportEmail) error {
	period := ""
	if email.Report != nil {
		period = email.Report.Period
	}
	log.Printf("[NOOP EMAIL] Report %s for %s (%s), attachment %s (%d bytes)",
		period, email.ToName, email.ToEmail, email.AttachmentName, len(email.Attachment))
	return nil
}
