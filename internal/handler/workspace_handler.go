package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"britta/internal/domain"
	"britta/internal/middleware"
	"britta/internal/service"
	"britta/internal/workspace"
)

// WorkspaceHandler handles the workspace panel and analysis endpoints.
type WorkspaceHandler struct {
	workspaceService service.WorkspaceService
	analysisService  service.AnalysisService
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(workspaceService service.WorkspaceService, analysisService service.AnalysisService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService, analysisService: analysisService}
}

// Preview handles POST /api/v1/workspace/preview
func (h *WorkspaceHandler) Preview(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	file, ok := readUpload(c)
	if !ok {
		return
	}

	preview, err := h.workspaceService.OpenPreview(c.Request.Context(), userID, file)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, preview)
}

// Analyze handles POST /api/v1/workspace/analyze and streams progress as
// server-sent events.
func (h *WorkspaceHandler) Analyze(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}
	company, err := middleware.GetCompany(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	file, ok := readUpload(c)
	if !ok {
		return
	}

	conversationID, ok := optionalUUID(c, c.PostForm("conversation_id"))
	if !ok {
		return
	}

	input := service.AnalyzeInput{
		UserID:         userID,
		CompanyID:      company.ID,
		ConversationID: conversationID,
		FileName:       file.Name,
		ContentType:    file.ContentType,
		Data:           file.Data,
		Period:         c.PostForm("period"),
	}

	h.relayAnalysis(c, func(sink func(domain.ProgressEvent)) (*domain.VATReport, error) {
		return h.analysisService.Analyze(c.Request.Context(), input, sink)
	})
}

// Retry handles POST /api/v1/workspace/retry. It re-runs the analysis with
// the file retained by the panel from the failed run.
func (h *WorkspaceHandler) Retry(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}
	company, err := middleware.GetCompany(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	var req struct {
		ConversationID string `json:"conversation_id"`
		Period         string `json:"period"`
	}
	// The body is optional; an empty retry reuses everything from the panel.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	conversationID, ok := optionalUUID(c, req.ConversationID)
	if !ok {
		return
	}

	input := service.RetryInput{
		UserID:         userID,
		CompanyID:      company.ID,
		ConversationID: conversationID,
		Period:         req.Period,
	}

	h.relayAnalysis(c, func(sink func(domain.ProgressEvent)) (*domain.VATReport, error) {
		return h.analysisService.Retry(c.Request.Context(), input, sink)
	})
}

// Snapshot handles GET /api/v1/workspace
func (h *WorkspaceHandler) Snapshot(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	RespondOK(c, h.workspaceService.Snapshot(c.Request.Context(), userID))
}

// Close handles DELETE /api/v1/workspace
func (h *WorkspaceHandler) Close(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	h.workspaceService.Close(c.Request.Context(), userID)
	RespondOK(c, gin.H{"message": "workspace closed"})
}

// ShowReport handles POST /api/v1/workspace/reports/:id/show. It reopens a
// persisted report in the panel.
func (h *WorkspaceHandler) ShowReport(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid message ID")
		return
	}

	rep, err := h.workspaceService.ShowReport(c.Request.Context(), userID, messageID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rep)
}

// relayAnalysis runs an analysis and forwards its progress events as SSE
// frames. The response stays a plain JSON error until the first event: a
// run rejected before streaming (bad file, analysis in flight) keeps its
// HTTP status code. After the first frame, failures arrive as "error"
// events and a successful run ends with a "result" event carrying the
// computed report.
func (h *WorkspaceHandler) relayAnalysis(c *gin.Context, run func(sink func(domain.ProgressEvent)) (*domain.VATReport, error)) {
	type outcome struct {
		report *domain.VATReport
		err    error
	}

	ctx := c.Request.Context()
	events := make(chan domain.ProgressEvent, 16)
	done := make(chan outcome, 1)

	go func() {
		rep, err := run(func(ev domain.ProgressEvent) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		})
		close(events)
		done <- outcome{report: rep, err: err}
	}()

	streaming := false
	for ev := range events {
		if !streaming {
			c.Writer.Header().Set("Content-Type", "text/event-stream")
			c.Writer.Header().Set("Cache-Control", "no-cache")
			c.Writer.Header().Set("Connection", "keep-alive")
			c.Writer.Header().Set("X-Accel-Buffering", "no")
			streaming = true
		}
		c.SSEvent("progress", ev)
		c.Writer.Flush()
	}

	result := <-done
	if result.err != nil {
		if !streaming {
			HandleError(c, result.err)
			return
		}
		_, code, msg := MapDomainError(result.err)
		c.SSEvent("error", gin.H{"code": code, "message": msg})
		c.Writer.Flush()
		return
	}

	c.SSEvent("result", result.report)
	c.Writer.Flush()
}

// readUpload pulls the "file" form field into memory. A missing field or an
// unreadable part answers the request itself and reports ok=false.
func readUpload(c *gin.Context) (workspace.File, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return workspace.File{}, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return workspace.File{}, false
	}

	return workspace.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

// optionalUUID parses an optional UUID form value. Empty input yields nil.
func optionalUUID(c *gin.Context, raw string) (*uuid.UUID, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid conversation ID")
		return nil, false
	}
	return &id, true
}
