package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookline/models"
	"bookline/services/conversation"
)

// ChatHandler is the widget's conversational entry point.
type ChatHandler struct {
	Svc    conversation.ConversationService
	Logger *zap.Logger
}

func NewChatHandler(svc conversation.ConversationService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Svc: svc, Logger: logger}
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.Svc.HandleMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		var storeErr *conversation.StoreUnavailableError
		if errors.As(err, &storeErr) {
			h.Logger.Error("session store unavailable", zap.String("sessionId", req.SessionID), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable, please try again"})
			return
		}
		var timeoutErr *conversation.UpstreamTimeoutError
		if errors.As(err, &timeoutErr) {
			h.Logger.Warn("collaborator timed out", zap.String("sessionId", req.SessionID), zap.Error(err))
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out, please retry", "retryable": true})
			return
		}
		h.Logger.Error("chat turn failed", zap.String("sessionId", req.SessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong handling that message"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
