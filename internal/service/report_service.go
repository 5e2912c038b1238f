package service

import (
	"bytes"
	"context"

	"github.com/google/uuid"

	"britta/internal/csvexport"
	"britta/internal/domain"
	"britta/internal/port"
	"britta/internal/sie"
)

// ReportExport is a rendered report file ready for download.
type ReportExport struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ReportService defines read and export operations over persisted reports.
type ReportService interface {
	List(ctx context.Context, userID, companyID uuid.UUID, offset, limit int) ([]domain.ReportSummary, int, error)
	Get(ctx context.Context, userID, messageID uuid.UUID) (*domain.VATReport, error)
	ExportSIE(ctx context.Context, userID, messageID uuid.UUID) (*ReportExport, error)
	ExportCSV(ctx context.Context, userID, messageID uuid.UUID) (*ReportExport, error)
	Email(ctx context.Context, userID, messageID uuid.UUID, toEmail string) error
}

type reportService struct {
	summaryRepo      port.ReportSummaryRepository
	messageRepo      port.MessageRepository
	conversationRepo port.ConversationRepository
	companyRepo      port.CompanyRepository
	userRepo         port.UserRepository
	sender           port.EmailSender
}

// NewReportService creates a new ReportService implementation.
func NewReportService(
	summaryRepo port.ReportSummaryRepository,
	messageRepo port.MessageRepository,
	conversationRepo port.ConversationRepository,
	companyRepo port.CompanyRepository,
	userRepo port.UserRepository,
	sender port.EmailSender,
) ReportService {
	return &reportService{
		summaryRepo:      summaryRepo,
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
		companyRepo:      companyRepo,
		userRepo:         userRepo,
		sender:           sender,
	}
}

func (s *reportService) List(ctx context.Context, userID, companyID uuid.UUID, offset, limit int) ([]domain.ReportSummary, int, error) {
	// Resolving the company under the user enforces ownership.
	if _, err := s.companyRepo.GetByID(ctx, userID, companyID); err != nil {
		return nil, 0, err
	}
	return s.summaryRepo.ListByCompany(ctx, companyID, offset, limit)
}

func (s *reportService) Get(ctx context.Context, userID, messageID uuid.UUID) (*domain.VATReport, error) {
	message, err := s.ownedMessage(ctx, userID, messageID)
	if err != nil {
		return nil, err
	}
	return reportFromMessage(message)
}

func (s *reportService) ExportSIE(ctx context.Context, userID, messageID uuid.UUID) (*ReportExport, error) {
	rep, err := s.Get(ctx, userID, messageID)
	if err != nil {
		return nil, err
	}
	data, err := sie.FromReport(rep, sie.Options{})
	if err != nil {
		return nil, err
	}
	return &ReportExport{
		FileName:    sie.FileName(rep),
		ContentType: "application/octet-stream",
		Data:        data,
	}, nil
}

func (s *reportService) ExportCSV(ctx context.Context, userID, messageID uuid.UUID) (*ReportExport, error) {
	rep, err := s.Get(ctx, userID, messageID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(&buf)
	if err := w.WriteReport(rep); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return &ReportExport{
		FileName:    csvexport.BuildFilename(rep.Period),
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

func (s *reportService) Email(ctx context.Context, userID, messageID uuid.UUID, toEmail string) error {
	rep, err := s.Get(ctx, userID, messageID)
	if err != nil {
		return err
	}
	data, err := sie.FromReport(rep, sie.Options{})
	if err != nil {
		return err
	}

	toName := ""
	if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
		toName = user.FullName
		if toEmail == "" {
			toEmail = user.Email
		}
	}
	if toEmail == "" {
		return domain.ErrInvalidInput
	}

	return s.sender.SendReportEmail(ctx, port.ReportEmail{
		ToEmail:        toEmail,
		ToName:         toName,
		Report:         rep,
		Attachment:     data,
		AttachmentName: sie.FileName(rep),
	})
}

// ownedMessage loads a message and verifies the caller owns its conversation.
func (s *reportService) ownedMessage(ctx context.Context, userID, messageID uuid.UUID) (*domain.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.conversationRepo.GetByID(ctx, userID, message.ConversationID); err != nil {
		return nil, err
	}
	return message, nil
}
