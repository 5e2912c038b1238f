package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"britta/internal/middleware"
	"britta/internal/service"
)

// ReportHandler handles persisted report endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// List handles GET /api/v1/reports
func (h *ReportHandler) List(c *gin.Context) {
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

	offset, limit := parsePagination(c)

	summaries, total, err := h.reportService.List(c.Request.Context(), userID, company.ID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, summaries, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/reports/:id where :id is the message holding
// the report.
func (h *ReportHandler) GetByID(c *gin.Context) {
	userID, messageID, ok := reportIdentity(c)
	if !ok {
		return
	}

	rep, err := h.reportService.Get(c.Request.Context(), userID, messageID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rep)
}

// DownloadSIE handles GET /api/v1/reports/:id/sie
func (h *ReportHandler) DownloadSIE(c *gin.Context) {
	userID, messageID, ok := reportIdentity(c)
	if !ok {
		return
	}

	export, err := h.reportService.ExportSIE(c.Request.Context(), userID, messageID)
	if err != nil {
		HandleError(c, err)
		return
	}

	serveExport(c, export)
}

// DownloadCSV handles GET /api/v1/reports/:id/csv
func (h *ReportHandler) DownloadCSV(c *gin.Context) {
	userID, messageID, ok := reportIdentity(c)
	if !ok {
		return
	}

	export, err := h.reportService.ExportCSV(c.Request.Context(), userID, messageID)
	if err != nil {
		HandleError(c, err)
		return
	}

	serveExport(c, export)
}

// Email handles POST /api/v1/reports/:id/email
func (h *ReportHandler) Email(c *gin.Context) {
	userID, messageID, ok := reportIdentity(c)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email" binding:"omitempty,email"`
	}
	// The body is optional; without it the report goes to the account email.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	if err := h.reportService.Email(c.Request.Context(), userID, messageID, req.Email); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "report sent"})
}

func reportIdentity(c *gin.Context) (userID, messageID uuid.UUID, ok bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return uuid.Nil, uuid.Nil, false
	}
	messageID, err = uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid report ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, messageID, true
}

func serveExport(c *gin.Context, export *service.ReportExport) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
