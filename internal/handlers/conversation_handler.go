package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ksquare-onboarding/internal/agents"
	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
)

// Conversationalist is the intake-chat surface. agents.ConversationAgent
// implements it.
type Conversationalist interface {
	Start(ctx context.Context, sessionID string) (*agents.ConversationReply, error)
	ProcessMessage(ctx context.Context, sessionID, userMessage string) (*agents.ConversationReply, error)
	Status(sessionID string) (*agents.ConversationReply, error)
}

type ConversationHandler struct {
	conversation Conversationalist
	logger       *logger.Logger
}

func NewConversationHandler(conversation Conversationalist, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversation: conversation,
		logger:       log,
	}
}

type startConversationRequest struct {
	SessionID string `json:"session_id"`
}

type conversationMessageRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

func (h *ConversationHandler) StartConversation(c *gin.Context) {
	var request startConversationRequest
	// An empty body is fine; the session id is then generated.
	_ = c.ShouldBindJSON(&request)

	reply, err := h.conversation.Start(c.Request.Context(), request.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *ConversationHandler) ProcessMessage(c *gin.Context) {
	var request conversationMessageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, models.NewValidationError("INVALID_REQUEST_BODY", err.Error()))
		return
	}

	reply, err := h.conversation.ProcessMessage(c.Request.Context(), request.SessionID, request.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *ConversationHandler) GetSessionStatus(c *gin.Context) {
	reply, err := h.conversation.Status(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
