package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"britta/internal/middleware"
	"britta/internal/service"
)

// StatsHandler handles stats endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats handles GET /api/v1/stats for the active company.
func (h *StatsHandler) GetStats(c *gin.Context) {
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

	stats, err := h.statsService.GetCompanyStats(c.Request.Context(), userID, company.ID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, stats)
}
