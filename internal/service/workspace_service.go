package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"britta/internal/domain"
	"britta/internal/port"
	"britta/internal/workspace"
)

// WorkspaceService exposes the per-user workspace panel.
type WorkspaceService interface {
	// OpenPreview validates the attachment, parses it and shows the
	// excel-preview panel.
	OpenPreview(ctx context.Context, userID uuid.UUID, file workspace.File) (*domain.WorkbookPreview, error)
	// ShowReport re-displays a previously persisted report in the panel.
	ShowReport(ctx context.Context, userID, messageID uuid.UUID) (*domain.VATReport, error)
	Snapshot(ctx context.Context, userID uuid.UUID) workspace.PanelSnapshot
	Close(ctx context.Context, userID uuid.UUID)
}

type workspaceService struct {
	workspaces       *workspace.Manager
	messageRepo      port.MessageRepository
	conversationRepo port.ConversationRepository
	maxBytes         int64
}

// NewWorkspaceService creates a new WorkspaceService implementation.
func NewWorkspaceService(workspaces *workspace.Manager, messageRepo port.MessageRepository, conversationRepo port.ConversationRepository, maxFileSizeMB int64) WorkspaceService {
	return &workspaceService{
		workspaces:       workspaces,
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
		maxBytes:         maxFileSizeMB * 1024 * 1024,
	}
}

func (s *workspaceService) OpenPreview(ctx context.Context, userID uuid.UUID, file workspace.File) (*domain.WorkbookPreview, error) {
	if err := validateSpreadsheet(file.Name, int64(len(file.Data)), s.maxBytes); err != nil {
		return nil, err
	}
	return s.workspaces.Panel(userID).OpenExcelArtifact(file)
}

func (s *workspaceService) ShowReport(ctx context.Context, userID, messageID uuid.UUID) (*domain.VATReport, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.conversationRepo.GetByID(ctx, userID, message.ConversationID); err != nil {
		return nil, err
	}
	rep, err := reportFromMessage(message)
	if err != nil {
		return nil, err
	}
	s.workspaces.Panel(userID).OpenVATReport(rep)
	return rep, nil
}

func (s *workspaceService) Snapshot(ctx context.Context, userID uuid.UUID) workspace.PanelSnapshot {
	return s.workspaces.Panel(userID).Snapshot()
}

func (s *workspaceService) Close(ctx context.Context, userID uuid.UUID) {
	s.workspaces.Close(userID)
}

// reportFromMessage unpacks the report envelope stored in an assistant
// message's metadata.
func reportFromMessage(message *domain.Message) (*domain.VATReport, error) {
	if message.Role != domain.MessageRoleAssistant || len(message.Metadata) == 0 {
		return nil, domain.ErrNotFound
	}
	var meta domain.ReportMetadata
	if err := json.Unmarshal(message.Metadata, &meta); err != nil {
		return nil, fmt.Errorf("unpacking report metadata: %w", err)
	}
	if meta.Type != domain.ReportType || meta.Report == nil {
		return nil, domain.ErrNotFound
	}
	return meta.Report, nil
}
