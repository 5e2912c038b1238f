package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"britta/internal/middleware"
	"britta/internal/service"
)

// ConversationHandler handles conversation and message endpoints.
type ConversationHandler struct {
	conversationService service.ConversationService
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(conversationService service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(c *gin.Context) {
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

	conversations, total, err := h.conversationService.List(c.Request.Context(), userID, company.ID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, conversations, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/conversations/:id
func (h *ConversationHandler) GetByID(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid conversation ID")
		return
	}

	conversation, err := h.conversationService.Get(c.Request.Context(), userID, conversationID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, conversation)
}

// Messages handles GET /api/v1/conversations/:id/messages
func (h *ConversationHandler) Messages(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid conversation ID")
		return
	}

	offset, limit := parsePagination(c)

	messages, total, err := h.conversationService.Messages(c.Request.Context(), userID, conversationID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, messages, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// UpdateTitle handles PUT /api/v1/conversations/:id/title
func (h *ConversationHandler) UpdateTitle(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid conversation ID")
		return
	}

	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "title is required")
		return
	}

	if err := h.conversationService.UpdateTitle(c.Request.Context(), userID, conversationID, req.Title); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "title updated"})
}

// Delete handles DELETE /api/v1/conversations/:id
func (h *ConversationHandler) Delete(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid conversation ID")
		return
	}

	if err := h.conversationService.Delete(c.Request.Context(), userID, conversationID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "conversation deleted"})
}
