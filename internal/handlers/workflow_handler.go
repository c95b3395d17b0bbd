package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
	"ksquare-onboarding/internal/services"
)

// Orchestrator is the workflow surface the HTTP layer depends on.
// services.Orchestrator implements it; tests substitute mocks.
type Orchestrator interface {
	ExecuteFullWorkflow(ctx context.Context, intake models.IntakeRecord) *models.WorkflowReport
	ExecuteSingleAgent(ctx context.Context, agentName string, intake models.IntakeRecord) (*models.AgentResult, error)
	GetWorkflowStatus(ctx context.Context, workflowID string) (*models.WorkflowState, error)
	GetAllWorkflows(ctx context.Context) ([]*models.WorkflowState, error)
	GetLatestClientWorkflow(ctx context.Context, clientName string) (*models.WorkflowState, error)
	GetDashboardData(ctx context.Context) (*services.DashboardData, error)
	ValidateProgrammeData(intake models.IntakeRecord) models.ValidationResult
	SearchKnowledgeBase(ctx context.Context, query string) (*services.KnowledgeSearchResult, error)
}

type WorkflowHandler struct {
	orchestrator Orchestrator
	logger       *logger.Logger
}

func NewWorkflowHandler(orchestrator Orchestrator, log *logger.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		orchestrator: orchestrator,
		logger:       log,
	}
}

// ExecuteWorkflow runs the full five-stage onboarding pipeline for one intake
// record. A failed workflow still returns its report, with 422 so callers can
// distinguish it without parsing the body.
func (h *WorkflowHandler) ExecuteWorkflow(c *gin.Context) {
	var intake models.IntakeRecord
	if err := c.ShouldBindJSON(&intake); err != nil {
		respondError(c, models.NewValidationError("INVALID_REQUEST_BODY", err.Error()))
		return
	}

	report := h.orchestrator.ExecuteFullWorkflow(c.Request.Context(), intake)

	status := http.StatusOK
	if report.Status == string(models.WorkflowStatusFailed) {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, report)
}

// ValidateProgrammeData checks an intake record without starting a workflow.
func (h *WorkflowHandler) ValidateProgrammeData(c *gin.Context) {
	var intake models.IntakeRecord
	if err := c.ShouldBindJSON(&intake); err != nil {
		respondError(c, models.NewValidationError("INVALID_REQUEST_BODY", err.Error()))
		return
	}

	c.JSON(http.StatusOK, h.orchestrator.ValidateProgrammeData(intake))
}

// ExecuteSingleAgent runs one named agent outside a workflow.
func (h *WorkflowHandler) ExecuteSingleAgent(c *gin.Context) {
	agentName := c.Param("name")

	var intake models.IntakeRecord
	if err := c.ShouldBindJSON(&intake); err != nil {
		respondError(c, models.NewValidationError("INVALID_REQUEST_BODY", err.Error()))
		return
	}

	result, err := h.orchestrator.ExecuteSingleAgent(c.Request.Context(), agentName, intake)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *WorkflowHandler) GetWorkflowStatus(c *gin.Context) {
	workflowID := c.Param("id")

	state, err := h.orchestrator.GetWorkflowStatus(c.Request.Context(), workflowID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *WorkflowHandler) GetAllWorkflows(c *gin.Context) {
	workflows, err := h.orchestrator.GetAllWorkflows(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

// GetLatestClientWorkflow serves the most recent run for one client.
func (h *WorkflowHandler) GetLatestClientWorkflow(c *gin.Context) {
	state, err := h.orchestrator.GetLatestClientWorkflow(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *WorkflowHandler) GetDashboard(c *gin.Context) {
	data, err := h.orchestrator.GetDashboardData(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// SearchKnowledgeBase serves /knowledge/search?q=<query>.
func (h *WorkflowHandler) SearchKnowledgeBase(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondError(c, models.NewValidationError("MISSING_QUERY", "query parameter 'q' is required"))
		return
	}

	result, err := h.orchestrator.SearchKnowledgeBase(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
