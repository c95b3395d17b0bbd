package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IntakeRecord is the client-provided tuple that seeds a workflow. A new
// workflow run always takes a fresh record, even for a returning client.
type IntakeRecord struct {
	ClientName       string   `json:"client_name" binding:"required"`
	Industry         string   `json:"industry" binding:"required"`
	ProblemStatement string   `json:"problem_statement" binding:"required"`
	TechStack        []string `json:"tech_stack" binding:"required"`
}

type WorkflowStatus string

const (
	WorkflowStatusRunning   WorkflowStatus = "running"
	WorkflowStatusCompleted WorkflowStatus = "completed"
	WorkflowStatusFailed    WorkflowStatus = "failed"
)

type WorkflowStep string

const (
	StepProgrammeSetup     WorkflowStep = "programme_setup"
	StepDomainKnowledge    WorkflowStep = "domain_knowledge"
	StepClientProfile      WorkflowStep = "client_profile"
	StepMeetingsAnalysis   WorkflowStep = "meetings_analysis"
	StepActionableInsights WorkflowStep = "actionable_insights"
	StepCompleted          WorkflowStep = "completed"
)

// WorkflowSteps is the fixed execution order; the orchestrator never runs
// steps concurrently or out of sequence.
var WorkflowSteps = []WorkflowStep{
	StepProgrammeSetup,
	StepDomainKnowledge,
	StepClientProfile,
	StepMeetingsAnalysis,
	StepActionableInsights,
}

type StageStatus string

const (
	StageStatusSuccess StageStatus = "success"
	StageStatusError   StageStatus = "error"
)

// AgentResult is the tagged per-stage result. Exactly one payload pointer is
// non-nil on success; on error all payloads are nil and Error carries the
// stage failure message.
type AgentResult struct {
	Stage    WorkflowStep  `json:"stage"`
	Status   StageStatus   `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`

	Setup    *SetupResult           `json:"setup,omitempty"`
	Domain   *DomainKnowledgeResult `json:"domain_knowledge,omitempty"`
	Profile  *ProfileResult         `json:"client_profile,omitempty"`
	Meetings *MeetingAnalysisResult `json:"meeting_analysis,omitempty"`
	Insights *InsightBundle         `json:"insights,omitempty"`
}

func NewStageError(stage WorkflowStep, duration time.Duration, err error) AgentResult {
	return AgentResult{
		Stage:    stage,
		Status:   StageStatusError,
		Error:    err.Error(),
		Duration: duration,
	}
}

// WorkflowState is the single mutable record for one workflow run. CurrentStep
// names the step being attempted, so a failed workflow records the step that
// failed. AgentResults only ever grows.
type WorkflowState struct {
	ID           string                       `json:"workflow_id"`
	Status       WorkflowStatus               `json:"status"`
	StartTime    time.Time                    `json:"start_time"`
	EndTime      *time.Time                   `json:"end_time,omitempty"`
	CurrentStep  WorkflowStep                 `json:"current_step"`
	ClientData   IntakeRecord                 `json:"client_data"`
	AgentResults map[WorkflowStep]AgentResult `json:"agent_results"`
	Error        string                       `json:"error,omitempty"`
}

func NewWorkflowState(intake IntakeRecord) *WorkflowState {
	return &WorkflowState{
		ID:           GenerateWorkflowID(),
		Status:       WorkflowStatusRunning,
		StartTime:    time.Now(),
		CurrentStep:  StepProgrammeSetup,
		ClientData:   intake,
		AgentResults: make(map[WorkflowStep]AgentResult),
	}
}

// GenerateWorkflowID keeps the timestamp-derived id format. Two workflows
// started within the same clock second collide; callers that need stronger
// identifiers should key off the request id instead.
func GenerateWorkflowID() string {
	return fmt.Sprintf("workflow_%s", time.Now().Format("20060102_150405"))
}

func GenerateRequestID() string {
	return uuid.New().String()
}

// SetStep advances CurrentStep. Steps are monotonic; the orchestrator only
// calls this moving forward through WorkflowSteps.
func (ws *WorkflowState) SetStep(step WorkflowStep) {
	ws.CurrentStep = step
}

// AddResult records a stage outcome. Keys are only ever added, never replaced
// or removed, within one workflow's lifetime.
func (ws *WorkflowState) AddResult(result AgentResult) {
	if _, exists := ws.AgentResults[result.Stage]; exists {
		return
	}
	ws.AgentResults[result.Stage] = result
}

func (ws *WorkflowState) MarkCompleted() {
	ws.Status = WorkflowStatusCompleted
	ws.CurrentStep = StepCompleted
	now := time.Now()
	ws.EndTime = &now
}

func (ws *WorkflowState) MarkFailed(err error) {
	ws.Status = WorkflowStatusFailed
	ws.Error = err.Error()
	now := time.Now()
	ws.EndTime = &now
}

func (ws *WorkflowState) Duration() time.Duration {
	if ws.EndTime != nil {
		return ws.EndTime.Sub(ws.StartTime)
	}
	return time.Since(ws.StartTime)
}

func (ws *WorkflowState) IsTerminal() bool {
	return ws.Status == WorkflowStatusCompleted || ws.Status == WorkflowStatusFailed
}

// WorkflowReport is the caller-facing outcome of a full workflow run. On
// failure, Message names the failing stage and PartialResults carries every
// stage result captured before the abort.
type WorkflowReport struct {
	WorkflowID       string                       `json:"workflow_id"`
	Status           string                       `json:"status"`
	ClientName       string                       `json:"client_name,omitempty"`
	Message          string                       `json:"message,omitempty"`
	ExecutionSeconds float64                      `json:"execution_time_seconds"`
	Summary          *WorkflowSummary             `json:"summary,omitempty"`
	FullResults      map[WorkflowStep]AgentResult `json:"full_results,omitempty"`
	PartialResults   map[WorkflowStep]AgentResult `json:"partial_results,omitempty"`
}

// WorkflowSummary condenses each stage result into the handful of numbers a
// dashboard cares about.
type WorkflowSummary struct {
	Setup    SetupSummary    `json:"programme_setup"`
	Domain   DomainSummary   `json:"domain_knowledge"`
	Profile  ProfileSummary  `json:"client_profile"`
	Meetings MeetingsSummary `json:"meetings"`
	Insights InsightsSummary `json:"actionable_insights"`
}

type SetupSummary struct {
	ValidationPassed  bool    `json:"validation_passed"`
	CompletenessScore float64 `json:"completeness_score"`
	UseCaseMatch      bool    `json:"use_case_match"`
}

type DomainSummary struct {
	Industry             string  `json:"industry"`
	ConfidenceScore      float64 `json:"confidence_score"`
	BestPracticesCount   int     `json:"best_practices_count"`
	TechCompatibility    float64 `json:"tech_compatibility"`
	RecommendationsCount int     `json:"recommendations_count"`
}

type ProfileSummary struct {
	CompletenessScore float64 `json:"completeness_score"`
	CompanySize       string  `json:"company_size"`
	Industry          string  `json:"industry"`
	ComplexityLevel   string  `json:"complexity_level"`
	InsightsCount     int     `json:"insights_count"`
}

type MeetingsSummary struct {
	TotalMeetings     int     `json:"total_meetings"`
	SentimentCategory string  `json:"sentiment_category"`
	ActionItemsCount  int     `json:"action_items_count"`
	EngagementScore   float64 `json:"engagement_score"`
	TopicsCount       int     `json:"topics_count"`
}

type InsightsSummary struct {
	HealthScore              float64 `json:"project_health_score"`
	HealthLevel              string  `json:"health_level"`
	StrategicRecommendations int     `json:"strategic_recommendations_count"`
	TacticalActions          int     `json:"tactical_actions_count"`
	RisksIdentified          int     `json:"risks_identified"`
	RiskLevel                string  `json:"risk_level"`
}

// StageUpdate is published to the progress stream as each stage starts and
// finishes.
type StageUpdate struct {
	WorkflowID string       `json:"workflow_id"`
	RequestID  string       `json:"request_id"`
	Stage      WorkflowStep `json:"stage"`
	Status     StageStatus  `json:"status"`
	Message    string       `json:"message"`
	Progress   float64      `json:"progress"`
	Timestamp  time.Time    `json:"timestamp"`
}
