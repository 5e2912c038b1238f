package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"britta/internal/analysis"
	"britta/internal/config"
	"britta/internal/domain"
	"britta/internal/port"
	"britta/internal/progress"
	"britta/internal/validator"
	"britta/internal/vat"
	"britta/internal/workspace"
)

// AnalyzeInput is the DTO for starting a spreadsheet analysis.
type AnalyzeInput struct {
	UserID         uuid.UUID
	CompanyID      uuid.UUID
	ConversationID *uuid.UUID
	FileName       string
	ContentType    string
	Data           []byte
	Period         string
}

// RetryInput re-runs the last analysis with the panel's retained file.
type RetryInput struct {
	UserID         uuid.UUID
	CompanyID      uuid.UUID
	ConversationID *uuid.UUID
	Period         string
}

// AnalysisService orchestrates a full analysis run: validation, lazy
// conversation setup, the streaming provider, aggregation, archiving and
// persistence, and the workspace panel transitions around all of it.
type AnalysisService interface {
	Analyze(ctx context.Context, input AnalyzeInput, sink func(domain.ProgressEvent)) (*domain.VATReport, error)
	Retry(ctx context.Context, input RetryInput, sink func(domain.ProgressEvent)) (*domain.VATReport, error)
}

type analysisService struct {
	companyRepo   port.CompanyRepository
	conversations ConversationService
	messageRepo   port.MessageRepository
	summaryRepo   port.ReportSummaryRepository
	auditRepo     port.AnalysisAuditRepository
	uploadRepo    port.UploadRepository
	storage       port.ObjectStorage
	streamer      port.AnalysisStreamer
	engine        *validator.Engine
	workspaces    *workspace.Manager
	s3cfg         *config.S3Config
	settleDelay   time.Duration
	logger        zerolog.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// NewAnalysisService creates a new AnalysisService implementation.
func NewAnalysisService(
	companyRepo port.CompanyRepository,
	conversations ConversationService,
	messageRepo port.MessageRepository,
	summaryRepo port.ReportSummaryRepository,
	auditRepo port.AnalysisAuditRepository,
	uploadRepo port.UploadRepository,
	storage port.ObjectStorage,
	streamer port.AnalysisStreamer,
	engine *validator.Engine,
	workspaces *workspace.Manager,
	s3cfg *config.S3Config,
	settleDelay time.Duration,
	logger zerolog.Logger,
) AnalysisService {
	return &analysisService{
		companyRepo:   companyRepo,
		conversations: conversations,
		messageRepo:   messageRepo,
		summaryRepo:   summaryRepo,
		auditRepo:     auditRepo,
		uploadRepo:    uploadRepo,
		storage:       storage,
		streamer:      streamer,
		engine:        engine,
		workspaces:    workspaces,
		s3cfg:         s3cfg,
		settleDelay:   settleDelay,
		logger:        logger,
		inFlight:      make(map[uuid.UUID]struct{}),
	}
}

func (s *analysisService) Analyze(ctx context.Context, input AnalyzeInput, sink func(domain.ProgressEvent)) (*domain.VATReport, error) {
	// Everything that can reject the request runs before any side effect:
	// no conversation, no panel transition, no audit row for invalid input.
	if err := validateSpreadsheet(input.FileName, int64(len(input.Data)), s.s3cfg.MaxFileSizeMB*1024*1024); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.GetByID(ctx, input.UserID, input.CompanyID)
	if err != nil {
		return nil, err
	}

	if !s.acquire(input.UserID) {
		return nil, domain.ErrAnalysisInFlight
	}
	defer s.release(input.UserID)

	period := strings.TrimSpace(input.Period)
	if period == "" {
		// VAT is declared for closed months.
		period = time.Now().AddDate(0, -1, 0).Format("2006-01")
	}

	conversation, err := s.conversations.EnsureConversation(ctx, input.UserID, input.CompanyID, input.ConversationID,
		fmt.Sprintf("Momsanalys %s", period))
	if err != nil {
		return nil, err
	}

	panel := s.workspaces.Panel(input.UserID)
	gen := panel.ShowStreamingAnalysis(workspace.File{
		Name:        input.FileName,
		ContentType: input.ContentType,
		Data:        input.Data,
	})

	s.audit(ctx, input, conversation.ID, domain.AuditStarted, "", 0)
	started := time.Now()

	reportCompany := domain.ReportCompany{Name: company.Name, OrgNumber: company.OrgNumber}

	var result *domain.AnalysisResult
	var failMsg string
	emit := func(ev domain.ProgressEvent) {
		panel.ApplyProgress(gen, ev)
		if sink != nil {
			sink(ev)
		}
		switch ev.Step {
		case progress.StepComplete:
			result = ev.Report
		case progress.StepError:
			failMsg = ev.Error
			if failMsg == "" {
				failMsg = ev.Message
			}
		}
	}

	streamErr := s.streamer.Stream(ctx, port.StreamInput{
		FileName: input.FileName,
		Data:     input.Data,
		Company:  reportCompany,
		Period:   period,
	}, emit)

	elapsed := time.Since(started)

	if streamErr != nil {
		s.logger.Error().Err(streamErr).Str("file", input.FileName).Msg("analysis stream failed")
		s.audit(ctx, input, conversation.ID, domain.AuditFailed, streamErr.Error(), elapsed)
		panel.FailRun(gen, "Analysen avbröts. Försök igen.")
		return nil, streamErr
	}
	if failMsg != "" {
		s.audit(ctx, input, conversation.ID, domain.AuditFailed, failMsg, elapsed)
		panel.FailRun(gen, failMsg)
		return nil, fmt.Errorf("%w: %s", domain.ErrAnalysisFailed, failMsg)
	}

	rep := analysis.EnsureComputed(result, s.engine, vat.Options{Period: period, Company: reportCompany})

	s.archiveUpload(ctx, input, conversation.ID)

	messageID := s.persistReport(ctx, conversation.ID, input.FileName, rep)
	if messageID != uuid.Nil {
		s.upsertSummary(ctx, input.CompanyID, conversation.ID, messageID, rep)
	}

	s.audit(ctx, input, conversation.ID, domain.AuditCompleted, s.streamer.Name(), elapsed)

	// Let the complete event's final frame render before swapping views.
	if s.settleDelay > 0 {
		t := time.NewTimer(s.settleDelay)
		select {
		case <-ctx.Done():
			t.Stop()
		case <-t.C:
		}
	}

	panel.CompleteRun(gen, rep)
	return rep, nil
}

func (s *analysisService) Retry(ctx context.Context, input RetryInput, sink func(domain.ProgressEvent)) (*domain.VATReport, error) {
	panel := s.workspaces.Panel(input.UserID)
	file, err := panel.RetryFile()
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, AnalyzeInput{
		UserID:         input.UserID,
		CompanyID:      input.CompanyID,
		ConversationID: input.ConversationID,
		FileName:       file.Name,
		ContentType:    file.ContentType,
		Data:           file.Data,
		Period:         input.Period,
	}, sink)
}

func (s *analysisService) acquire(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[userID]; busy {
		return false
	}
	s.inFlight[userID] = struct{}{}
	return true
}

func (s *analysisService) release(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, userID)
	s.mu.Unlock()
}

// archiveUpload stores the analyzed file in object storage. Archiving is
// best-effort: failures are logged and the run continues.
func (s *analysisService) archiveUpload(ctx context.Context, input AnalyzeInput, conversationID uuid.UUID) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.FileName), "."))
	fileType := domain.AllowedExtensions[ext]
	contentType := input.ContentType
	if contentType == "" {
		contentType = domain.AllowedFileTypes[fileType]
	}

	key := fmt.Sprintf("companies/%s/uploads/%s/%s", input.CompanyID, uuid.New(), input.FileName)
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(input.Data),
		ContentType: contentType,
		Size:        int64(len(input.Data)),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("file", input.FileName).Msg("archive upload failed")
		return
	}

	upload := &domain.Upload{
		CompanyID:      input.CompanyID,
		ConversationID: &conversationID,
		FileName:       input.FileName,
		FileType:       fileType,
		FileSize:       int64(len(input.Data)),
		Bucket:         s.s3cfg.Bucket,
		ObjectKey:      key,
		ContentType:    contentType,
	}
	if err := s.uploadRepo.Create(ctx, upload); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("recording upload failed")
	}
}

// persistReport appends the assistant message carrying the full report.
// Returns uuid.Nil when persistence failed; the run still completes so the
// user is never shown an error for a report that exists.
func (s *analysisService) persistReport(ctx context.Context, conversationID uuid.UUID, fileName string, rep *domain.VATReport) uuid.UUID {
	metadata, err := json.Marshal(domain.ReportMetadata{
		Type:     domain.ReportType,
		FileName: fileName,
		Period:   rep.Period,
		Report:   rep,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("marshalling report metadata")
		return uuid.Nil
	}

	message := &domain.Message{
		ConversationID: conversationID,
		Role:           domain.MessageRoleAssistant,
		Content:        reportContent(rep),
		Metadata:       metadata,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		s.logger.Error().Err(err).Msg("persisting report message")
		return uuid.Nil
	}
	return message.ID
}

func (s *analysisService) upsertSummary(ctx context.Context, companyID, conversationID, messageID uuid.UUID, rep *domain.VATReport) {
	summary := &domain.ReportSummary{
		CompanyID:      companyID,
		ConversationID: conversationID,
		MessageID:      messageID,
		Period:         rep.Period,
		TotalIncome:    rep.Summary.TotalIncome,
		TotalCosts:     rep.Summary.TotalCosts,
		Result:         rep.Summary.Result,
		VATToPay:       rep.VAT.ToPay,
		VATToRefund:    rep.VAT.ToRefund,
	}
	if rep.AnalysisSummary != nil {
		summary.TransactionCount = rep.AnalysisSummary.TotalTransactions
	}
	if err := s.summaryRepo.Upsert(ctx, summary); err != nil {
		s.logger.Warn().Err(err).Str("message_id", messageID.String()).Msg("upserting report summary failed")
	}
}

func (s *analysisService) audit(ctx context.Context, input AnalyzeInput, conversationID uuid.UUID, status domain.AuditStatus, detail string, elapsed time.Duration) {
	entry := &domain.AnalysisAudit{
		CompanyID:      input.CompanyID,
		UserID:         input.UserID,
		ConversationID: &conversationID,
		FileName:       input.FileName,
		Provider:       s.streamer.Name(),
		Status:         status,
		Detail:         detail,
		DurationMS:     elapsed.Milliseconds(),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("writing analysis audit failed")
	}
}

// reportContent is the chat-visible one-liner; the full report travels in
// the message metadata.
func reportContent(rep *domain.VATReport) string {
	if rep.VAT.ToRefund > 0 {
		return fmt.Sprintf("Momsrapporten för %s är klar. Att få tillbaka: %.2f kr.", rep.Period, rep.VAT.ToRefund)
	}
	return fmt.Sprintf("Momsrapporten för %s är klar. Att betala: %.2f kr.", rep.Period, rep.VAT.ToPay)
}

// validateSpreadsheet rejects files the analyzers cannot handle before any
// state is touched.
func validateSpreadsheet(fileName string, size, maxBytes int64) error {
	if size == 0 {
		return fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}
	if maxBytes > 0 && size > maxBytes {
		return domain.ErrFileTooLarge
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return domain.ErrUnsupportedFileType
	}
	return nil
}
