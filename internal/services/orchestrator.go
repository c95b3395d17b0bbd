package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ksquare-onboarding/internal/agents"
	"ksquare-onboarding/internal/config"
	"ksquare-onboarding/internal/knowledge"
	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
)

// WorkflowStore is the persistence surface the orchestrator needs: the agent
// store plus workflow state, knowledge-base, and progress-stream operations.
// RedisService implements it.
type WorkflowStore interface {
	agents.Store

	StoreWorkflowState(ctx context.Context, state *models.WorkflowState) error
	GetWorkflowState(ctx context.Context, workflowID string) (*models.WorkflowState, error)
	ListWorkflowStates(ctx context.Context) ([]*models.WorkflowState, error)
	SaveInsight(ctx context.Context, insight models.Insight) error
	SearchInsights(ctx context.Context, query string) ([]models.Insight, error)
	SearchMeetings(ctx context.Context, query string) ([]models.MeetingRecord, error)
	PublishStageUpdate(ctx context.Context, update *models.StageUpdate) error
}

// Orchestrator runs the five onboarding stages in their fixed order, persists
// the workflow state after every transition, and keeps recently run workflows
// in memory for fast status lookups.
type Orchestrator struct {
	store    WorkflowStore
	setup    *agents.SetupAgent
	domain   *agents.DomainAgent
	profile  *agents.ProfileAgent
	meetings *agents.MeetingsAgent
	insights *agents.InsightsAgent

	logger *logger.Logger
	config config.WorkflowConfig

	activeWorkflows sync.Map // workflow id -> *models.WorkflowState
	runningCount    atomic.Int64
	wg              sync.WaitGroup
}

func NewOrchestrator(store WorkflowStore, sentiment agents.SentimentAnalyzer, log *logger.Logger, cfg config.WorkflowConfig) *Orchestrator {
	return &Orchestrator{
		store:    store,
		setup:    agents.NewSetupAgent(store, log),
		domain:   agents.NewDomainAgent(log),
		profile:  agents.NewProfileAgent(store, log),
		meetings: agents.NewMeetingsAgent(store, sentiment, log),
		insights: agents.NewInsightsAgent(log),
		logger:   log,
		config:   cfg,
	}
}

// stageResults carries the typed handoff between stages within one run.
type stageResults struct {
	setup    *models.SetupResult
	domain   *models.DomainKnowledgeResult
	profile  *models.ProfileResult
	meetings *models.MeetingAnalysisResult
	insights *models.InsightBundle
}

// ExecuteFullWorkflow runs all five stages for one intake record. A stage
// failure aborts the remaining stages; the report then names the failing
// stage and carries every result captured before the abort.
func (o *Orchestrator) ExecuteFullWorkflow(ctx context.Context, intake models.IntakeRecord) *models.WorkflowReport {
	o.wg.Add(1)
	defer o.wg.Done()
	o.runningCount.Add(1)
	defer o.runningCount.Add(-1)

	state := models.NewWorkflowState(intake)
	requestID := models.GenerateRequestID()

	o.activeWorkflows.Store(state.ID, state)
	o.persistState(ctx, state)

	o.logger.LogWorkflow(state.ID, intake.ClientName, "workflow_started", 0, nil)

	results := &stageResults{}
	for index, step := range models.WorkflowSteps {
		state.SetStep(step)
		o.persistState(ctx, state)
		o.publishUpdate(ctx, state.ID, requestID, step, models.StageStatusSuccess,
			fmt.Sprintf("Starting %s", step), stageProgress(index, false))

		result, err := o.runStage(ctx, step, intake, results)
		if err != nil {
			state.AddResult(models.NewStageError(step, result.Duration, err))
			state.MarkFailed(err)
			o.persistState(ctx, state)
			o.publishUpdate(ctx, state.ID, requestID, step, models.StageStatusError,
				err.Error(), stageProgress(index, false))

			o.logger.LogWorkflow(state.ID, intake.ClientName, fmt.Sprintf("workflow_failed_at_%s", step), state.Duration(), err)

			return &models.WorkflowReport{
				WorkflowID:       state.ID,
				Status:           string(models.WorkflowStatusFailed),
				ClientName:       intake.ClientName,
				Message:          fmt.Sprintf("workflow failed at stage %s: %s", step, err.Error()),
				ExecutionSeconds: state.Duration().Seconds(),
				PartialResults:   state.AgentResults,
			}
		}

		state.AddResult(result)
		o.persistState(ctx, state)
		o.publishUpdate(ctx, state.ID, requestID, step, models.StageStatusSuccess,
			fmt.Sprintf("Completed %s", step), stageProgress(index, true))
	}

	state.MarkCompleted()
	o.persistState(ctx, state)
	o.storeWorkflowInsights(ctx, intake, results)

	o.logger.LogWorkflow(state.ID, intake.ClientName, "workflow_completed", state.Duration(), nil)

	return &models.WorkflowReport{
		WorkflowID:       state.ID,
		Status:           string(models.WorkflowStatusCompleted),
		ClientName:       intake.ClientName,
		ExecutionSeconds: state.Duration().Seconds(),
		Summary:          buildSummary(results),
		FullResults:      state.AgentResults,
	}
}

// runStage executes one stage under the configured stage timeout and fills the
// matching slot in results. The returned AgentResult carries the duration even
// on failure.
func (o *Orchestrator) runStage(ctx context.Context, step models.WorkflowStep, intake models.IntakeRecord, results *stageResults) (models.AgentResult, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.config.StageTimeout)
	defer cancel()

	startTime := time.Now()
	result := models.AgentResult{
		Stage:  step,
		Status: models.StageStatusSuccess,
	}

	var err error
	switch step {
	case models.StepProgrammeSetup:
		results.setup, err = o.setup.Run(stageCtx, intake)
		result.Setup = results.setup
	case models.StepDomainKnowledge:
		results.domain, err = o.domain.Run(stageCtx, intake.Industry, intake.ProblemStatement, intake.TechStack)
		result.Domain = results.domain
	case models.StepClientProfile:
		results.profile, err = o.profile.Run(stageCtx, intake)
		result.Profile = results.profile
	case models.StepMeetingsAnalysis:
		results.meetings, err = o.meetings.Run(stageCtx, intake.ClientName)
		result.Meetings = results.meetings
	case models.StepActionableInsights:
		results.insights, err = o.insights.Run(stageCtx, intake.ClientName, results.domain, results.profile, results.meetings)
		result.Insights = results.insights
	default:
		err = models.NewInternalError("UNKNOWN_STAGE", fmt.Sprintf("unknown workflow stage: %s", step))
	}

	result.Duration = time.Since(startTime)
	if err != nil {
		return models.AgentResult{Stage: step, Status: models.StageStatusError, Duration: result.Duration}, err
	}
	return result, nil
}

// ExecuteSingleAgent runs one named agent outside a workflow. The insights
// agent needs the upstream stage outputs, so it runs its prerequisites first
// without persisting any workflow state.
func (o *Orchestrator) ExecuteSingleAgent(ctx context.Context, agentName string, intake models.IntakeRecord) (*models.AgentResult, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.config.StageTimeout)
	defer cancel()

	startTime := time.Now()
	result := &models.AgentResult{Status: models.StageStatusSuccess}

	var err error
	switch agentName {
	case agents.AgentProgrammeSetup:
		result.Stage = models.StepProgrammeSetup
		result.Setup, err = o.setup.Run(stageCtx, intake)
	case agents.AgentDomainKnowledge:
		result.Stage = models.StepDomainKnowledge
		result.Domain, err = o.domain.Run(stageCtx, intake.Industry, intake.ProblemStatement, intake.TechStack)
	case agents.AgentClientProfile:
		result.Stage = models.StepClientProfile
		result.Profile, err = o.profile.Run(stageCtx, intake)
	case agents.AgentMeetings:
		result.Stage = models.StepMeetingsAnalysis
		result.Meetings, err = o.meetings.Run(stageCtx, intake.ClientName)
	case agents.AgentActionableInsights:
		result.Stage = models.StepActionableInsights
		result.Insights, err = o.runInsightsStandalone(stageCtx, intake)
	default:
		return nil, models.ErrUnknownAgent.WithMetadata("agent_name", agentName)
	}

	result.Duration = time.Since(startTime)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (o *Orchestrator) runInsightsStandalone(ctx context.Context, intake models.IntakeRecord) (*models.InsightBundle, error) {
	domain, err := o.domain.Run(ctx, intake.Industry, intake.ProblemStatement, intake.TechStack)
	if err != nil {
		return nil, err
	}
	profile, err := o.profile.Run(ctx, intake)
	if err != nil {
		return nil, err
	}
	meetings, err := o.meetings.Run(ctx, intake.ClientName)
	if err != nil {
		return nil, err
	}
	return o.insights.Run(ctx, intake.ClientName, domain, profile, meetings)
}

// GetWorkflowStatus prefers the in-memory record and falls back to the
// persisted state for workflows started by a previous process.
func (o *Orchestrator) GetWorkflowStatus(ctx context.Context, workflowID string) (*models.WorkflowState, error) {
	if value, ok := o.activeWorkflows.Load(workflowID); ok {
		return value.(*models.WorkflowState), nil
	}
	return o.store.GetWorkflowState(ctx, workflowID)
}

// GetAllWorkflows merges the in-memory workflows with the persisted ones,
// newest first.
func (o *Orchestrator) GetAllWorkflows(ctx context.Context) ([]*models.WorkflowState, error) {
	byID := map[string]*models.WorkflowState{}

	persisted, err := o.store.ListWorkflowStates(ctx)
	if err != nil {
		return nil, err
	}
	for _, state := range persisted {
		byID[state.ID] = state
	}

	// In-memory records are authoritative for this process.
	o.activeWorkflows.Range(func(_, value interface{}) bool {
		state := value.(*models.WorkflowState)
		byID[state.ID] = state
		return true
	})

	workflows := make([]*models.WorkflowState, 0, len(byID))
	for _, state := range byID {
		workflows = append(workflows, state)
	}
	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].StartTime.After(workflows[j].StartTime)
	})
	return workflows, nil
}

// WorkflowOverview is one row of the dashboard workflow table.
type WorkflowOverview struct {
	WorkflowID  string                `json:"workflow_id"`
	ClientName  string                `json:"client_name"`
	Status      models.WorkflowStatus `json:"status"`
	CurrentStep models.WorkflowStep   `json:"current_step"`
	StartTime   time.Time             `json:"start_time"`
}

// DashboardData aggregates system-wide workflow metrics.
type DashboardData struct {
	TotalWorkflows     int                `json:"total_workflows"`
	ActiveWorkflows    int                `json:"active_workflows"`
	CompletedWorkflows int                `json:"completed_workflows"`
	FailedWorkflows    int                `json:"failed_workflows"`
	Workflows          []WorkflowOverview `json:"workflows"`
}

func (o *Orchestrator) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	workflows, err := o.GetAllWorkflows(ctx)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{
		TotalWorkflows: len(workflows),
		Workflows:      make([]WorkflowOverview, 0, len(workflows)),
	}
	for _, state := range workflows {
		switch state.Status {
		case models.WorkflowStatusRunning:
			data.ActiveWorkflows++
		case models.WorkflowStatusCompleted:
			data.CompletedWorkflows++
		case models.WorkflowStatusFailed:
			data.FailedWorkflows++
		}
		data.Workflows = append(data.Workflows, WorkflowOverview{
			WorkflowID:  state.ID,
			ClientName:  state.ClientData.ClientName,
			Status:      state.Status,
			CurrentStep: state.CurrentStep,
			StartTime:   state.StartTime,
		})
	}
	return data, nil
}

// ValidateProgrammeData checks an intake record without starting a workflow.
func (o *Orchestrator) ValidateProgrammeData(intake models.IntakeRecord) models.ValidationResult {
	return o.setup.Validate(intake)
}

// KnowledgeSearchResult combines the static industry knowledge with the
// stored insights matching the query.
type KnowledgeSearchResult struct {
	Query            string                       `json:"query"`
	IndustryKnown    bool                         `json:"industry_known"`
	IndustryInsights *knowledge.IndustryKnowledge `json:"industry_insights,omitempty"`
	StoredInsights   []models.Insight             `json:"stored_insights"`
	MatchingMeetings []models.MeetingRecord       `json:"matching_meetings"`
}

func (o *Orchestrator) SearchKnowledgeBase(ctx context.Context, query string) (*KnowledgeSearchResult, error) {
	result := &KnowledgeSearchResult{Query: query}

	if industryKnowledge, known := knowledge.Lookup(query); known {
		result.IndustryKnown = true
		result.IndustryInsights = &industryKnowledge
	}

	stored, err := o.store.SearchInsights(ctx, query)
	if err != nil {
		return nil, err
	}
	result.StoredInsights = stored

	meetings, err := o.store.SearchMeetings(ctx, query)
	if err != nil {
		return nil, err
	}
	result.MatchingMeetings = meetings
	return result, nil
}

// GetLatestClientWorkflow returns the most recent workflow run for a client.
func (o *Orchestrator) GetLatestClientWorkflow(ctx context.Context, clientName string) (*models.WorkflowState, error) {
	workflows, err := o.GetAllWorkflows(ctx)
	if err != nil {
		return nil, err
	}
	for _, state := range workflows {
		if strings.EqualFold(state.ClientData.ClientName, clientName) {
			return state, nil
		}
	}
	return nil, models.ErrWorkflowNotFound.WithMetadata("client_name", clientName)
}

// Close waits for running workflows to finish, up to 30 seconds.
func (o *Orchestrator) Close() error {
	o.logger.Info("Closing Workflow Orchestrator",
		"running_workflows", o.runningCount.Load())

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.logger.Info("Workflow Orchestrator Closed Successfully")
		return nil
	case <-time.After(30 * time.Second):
		return fmt.Errorf("timed out waiting for %d running workflows", o.runningCount.Load())
	}
}

// persistState saves the current snapshot; persistence failures are logged
// and do not interrupt the workflow.
func (o *Orchestrator) persistState(ctx context.Context, state *models.WorkflowState) {
	if err := o.store.StoreWorkflowState(ctx, state); err != nil {
		o.logger.WithError(err).Warn("Failed to persist workflow state",
			"workflow_id", state.ID)
	}
}

func (o *Orchestrator) publishUpdate(ctx context.Context, workflowID, requestID string, stage models.WorkflowStep, status models.StageStatus, message string, progress float64) {
	update := &models.StageUpdate{
		WorkflowID: workflowID,
		RequestID:  requestID,
		Stage:      stage,
		Status:     status,
		Message:    message,
		Progress:   progress,
		Timestamp:  time.Now(),
	}
	if err := o.store.PublishStageUpdate(ctx, update); err != nil {
		o.logger.WithError(err).Warn("Failed to publish stage update",
			"workflow_id", workflowID,
			"stage", stage)
	}
}

// storeWorkflowInsights writes the synthesis output into the knowledge base
// so later searches can surface it. Best effort.
func (o *Orchestrator) storeWorkflowInsights(ctx context.Context, intake models.IntakeRecord, results *stageResults) {
	if results.insights == nil {
		return
	}

	insight := models.Insight{
		ClientName: intake.ClientName,
		Type:       "executive_summary",
		Content:    results.insights.ExecutiveSummary,
		Tags:       []string{intake.Industry, "workflow"},
	}
	if err := o.store.SaveInsight(ctx, insight); err != nil {
		o.logger.WithError(err).Warn("Failed to store workflow insight",
			"client_name", intake.ClientName)
	}
}

func stageProgress(index int, completed bool) float64 {
	step := index
	if completed {
		step++
	}
	return float64(step) / float64(len(models.WorkflowSteps)) * 100.0
}

func buildSummary(results *stageResults) *models.WorkflowSummary {
	summary := &models.WorkflowSummary{}

	if results.setup != nil {
		summary.Setup = models.SetupSummary{
			ValidationPassed:  results.setup.Validation.Valid,
			CompletenessScore: results.setup.Validation.CompletenessScore,
			UseCaseMatch:      results.setup.UseCaseMatch,
		}
	}
	if results.domain != nil {
		summary.Domain = models.DomainSummary{
			Industry:             results.domain.Industry,
			ConfidenceScore:      results.domain.ConfidenceScore,
			BestPracticesCount:   len(results.domain.BestPractices),
			TechCompatibility:    results.domain.TechAnalysis.CompatibilityScore,
			RecommendationsCount: len(results.domain.Recommendations),
		}
	}
	if results.profile != nil && results.profile.ClientProfile != nil {
		profile := results.profile.ClientProfile
		complexity := ""
		if profile.CurrentProject != nil {
			complexity = profile.CurrentProject.ComplexityLevel
		}
		summary.Profile = models.ProfileSummary{
			CompletenessScore: results.profile.CompletenessScore,
			CompanySize:       profile.CompanySize,
			Industry:          profile.Industry,
			ComplexityLevel:   complexity,
			InsightsCount:     len(results.profile.Insights),
		}
	}
	if results.meetings != nil {
		summary.Meetings = models.MeetingsSummary{
			TotalMeetings:     results.meetings.TotalMeetings,
			SentimentCategory: string(results.meetings.Sentiment.Category),
			ActionItemsCount:  len(results.meetings.ActionItems),
			EngagementScore:   results.meetings.EngagementMetrics.EngagementScore,
			TopicsCount:       len(results.meetings.Topics),
		}
	}
	if results.insights != nil {
		summary.Insights = models.InsightsSummary{
			HealthScore:              results.insights.ProjectHealth.OverallScore,
			HealthLevel:              results.insights.ProjectHealth.HealthLevel,
			StrategicRecommendations: len(results.insights.StrategicRecommendations),
			TacticalActions:          len(results.insights.TacticalActions),
			RisksIdentified:          len(results.insights.RiskAssessment.Risks),
			RiskLevel:                results.insights.RiskAssessment.RiskLevel,
		}
	}
	return summary
}
