package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ksquare-onboarding/internal/agents"
	"ksquare-onboarding/internal/config"
	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(config.LogConfig{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("failed to build test logger: %v", err)
	}
	return log
}

// mockWorkflowStore is an in-memory WorkflowStore with per-operation error
// injection.
type mockWorkflowStore struct {
	useCases []models.UseCase
	profiles map[string]*models.ClientProfile
	meetings map[string][]models.MeetingRecord
	states   map[string]*models.WorkflowState
	insights []models.Insight
	updates  []models.StageUpdate

	useCasesErr error
	profileErr  error
	saveErr     error
}

func newMockWorkflowStore() *mockWorkflowStore {
	return &mockWorkflowStore{
		profiles: map[string]*models.ClientProfile{},
		meetings: map[string][]models.MeetingRecord{},
		states:   map[string]*models.WorkflowState{},
	}
}

func (m *mockWorkflowStore) GetUseCases(ctx context.Context) ([]models.UseCase, error) {
	if m.useCasesErr != nil {
		return nil, m.useCasesErr
	}
	return m.useCases, nil
}

func (m *mockWorkflowStore) GetClientProfile(ctx context.Context, clientName string) (*models.ClientProfile, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	profile, ok := m.profiles[strings.ToLower(clientName)]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	return profile, nil
}

func (m *mockWorkflowStore) SaveClientProfile(ctx context.Context, profile *models.ClientProfile) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.profiles[strings.ToLower(profile.Name)] = profile
	return nil
}

func (m *mockWorkflowStore) GetMeetings(ctx context.Context, clientName string) ([]models.MeetingRecord, error) {
	return m.meetings[strings.ToLower(clientName)], nil
}

func (m *mockWorkflowStore) SaveMeeting(ctx context.Context, meeting models.MeetingRecord) error {
	key := strings.ToLower(meeting.ClientName)
	m.meetings[key] = append([]models.MeetingRecord{meeting}, m.meetings[key]...)
	return nil
}

func (m *mockWorkflowStore) StoreWorkflowState(ctx context.Context, state *models.WorkflowState) error {
	m.states[state.ID] = state
	return nil
}

func (m *mockWorkflowStore) GetWorkflowState(ctx context.Context, workflowID string) (*models.WorkflowState, error) {
	state, ok := m.states[workflowID]
	if !ok {
		return nil, models.ErrWorkflowNotFound
	}
	return state, nil
}

func (m *mockWorkflowStore) ListWorkflowStates(ctx context.Context) ([]*models.WorkflowState, error) {
	states := make([]*models.WorkflowState, 0, len(m.states))
	for _, state := range m.states {
		states = append(states, state)
	}
	return states, nil
}

func (m *mockWorkflowStore) SaveInsight(ctx context.Context, insight models.Insight) error {
	m.insights = append(m.insights, insight)
	return nil
}

func (m *mockWorkflowStore) SearchInsights(ctx context.Context, query string) ([]models.Insight, error) {
	queryLower := strings.ToLower(query)
	matches := []models.Insight{}
	for _, insight := range m.insights {
		if strings.Contains(strings.ToLower(insight.Content), queryLower) {
			matches = append(matches, insight)
		}
	}
	return matches, nil
}

func (m *mockWorkflowStore) SearchMeetings(ctx context.Context, query string) ([]models.MeetingRecord, error) {
	queryLower := strings.ToLower(query)
	matches := []models.MeetingRecord{}
	for _, meetings := range m.meetings {
		for _, meeting := range meetings {
			if strings.Contains(strings.ToLower(meeting.Transcript), queryLower) {
				matches = append(matches, meeting)
			}
		}
	}
	return matches, nil
}

func (m *mockWorkflowStore) PublishStageUpdate(ctx context.Context, update *models.StageUpdate) error {
	m.updates = append(m.updates, *update)
	return nil
}

func gtIntake() models.IntakeRecord {
	return models.IntakeRecord{
		ClientName:       "GT Automotive",
		Industry:         "Automotive",
		ProblemStatement: "Implement a lead management process using Salesforce",
		TechStack:        []string{"Salesforce", "Java"},
	}
}

func newTestOrchestrator(t *testing.T, store *mockWorkflowStore) *Orchestrator {
	t.Helper()
	log := newTestLogger(t)
	return NewOrchestrator(store, NewLexiconSentimentService(log), log, config.WorkflowConfig{
		StageTimeout: 5 * time.Second,
	})
}

func TestExecuteFullWorkflowCompletes(t *testing.T) {
	store := newMockWorkflowStore()
	store.useCases = []models.UseCase{{ID: "uc-automotive-001", ClientName: "GT Automotive"}}
	store.meetings["gt automotive"] = []models.MeetingRecord{{
		ID:         "m-1",
		ClientName: "GT Automotive",
		Transcript: "Discussion on lead management. Action item: Clarify MVP scope by next meeting. Engagement: 70%.",
		Date:       time.Now(),
	}}
	orchestrator := newTestOrchestrator(t, store)

	report := orchestrator.ExecuteFullWorkflow(context.Background(), gtIntake())

	if report.Status != string(models.WorkflowStatusCompleted) {
		t.Fatalf("status = %q, message = %q", report.Status, report.Message)
	}
	if len(report.FullResults) != len(models.WorkflowSteps) {
		t.Errorf("full results = %d stages, want %d", len(report.FullResults), len(models.WorkflowSteps))
	}
	if report.Summary == nil {
		t.Fatal("completed workflow must carry a summary")
	}
	if !report.Summary.Setup.UseCaseMatch {
		t.Error("GT Automotive should match its seeded use case")
	}
	if report.Summary.Meetings.TotalMeetings != 1 {
		t.Errorf("meetings summary = %+v", report.Summary.Meetings)
	}

	// The state snapshot persisted after the final transition is terminal.
	state := store.states[report.WorkflowID]
	if state == nil || state.Status != models.WorkflowStatusCompleted {
		t.Fatalf("persisted state = %+v", state)
	}
	if state.CurrentStep != models.StepCompleted {
		t.Errorf("current step = %q, want completed", state.CurrentStep)
	}

	// The executive summary lands in the knowledge base.
	if len(store.insights) != 1 || store.insights[0].Type != "executive_summary" {
		t.Errorf("insights = %+v", store.insights)
	}
}

func TestExecuteFullWorkflowNoMeetingsStillCompletes(t *testing.T) {
	store := newMockWorkflowStore()
	orchestrator := newTestOrchestrator(t, store)

	report := orchestrator.ExecuteFullWorkflow(context.Background(), gtIntake())

	if report.Status != string(models.WorkflowStatusCompleted) {
		t.Fatalf("no meeting history must not fail the workflow: %q", report.Message)
	}
	if report.Summary.Meetings.TotalMeetings != 0 {
		t.Errorf("total meetings = %d, want 0", report.Summary.Meetings.TotalMeetings)
	}
	if report.Summary.Meetings.SentimentCategory != string(models.SentimentNeutral) {
		t.Errorf("empty history sentiment = %q, want neutral", report.Summary.Meetings.SentimentCategory)
	}
}

func TestExecuteFullWorkflowFailsAtFirstStage(t *testing.T) {
	store := newMockWorkflowStore()
	orchestrator := newTestOrchestrator(t, store)

	report := orchestrator.ExecuteFullWorkflow(context.Background(), models.IntakeRecord{
		ClientName: "X", // too short, and the problem statement is missing
		Industry:   "Automotive",
		TechStack:  []string{"Java"},
	})

	if report.Status != string(models.WorkflowStatusFailed) {
		t.Fatalf("status = %q, want failed", report.Status)
	}
	if !strings.Contains(report.Message, string(models.StepProgrammeSetup)) {
		t.Errorf("message should name the failing stage: %q", report.Message)
	}

	result, ok := report.PartialResults[models.StepProgrammeSetup]
	if !ok || result.Status != models.StageStatusError {
		t.Errorf("partial results missing the failed stage: %+v", report.PartialResults)
	}

	state := store.states[report.WorkflowID]
	if state.CurrentStep != models.StepProgrammeSetup {
		t.Errorf("current step = %q, want the failed step", state.CurrentStep)
	}
	if state.Status != models.WorkflowStatusFailed {
		t.Errorf("state status = %q", state.Status)
	}
}

func TestExecuteFullWorkflowMidStageFailureKeepsPriorResults(t *testing.T) {
	store := newMockWorkflowStore()
	store.profileErr = errors.New("redis connection lost")
	orchestrator := newTestOrchestrator(t, store)

	report := orchestrator.ExecuteFullWorkflow(context.Background(), gtIntake())

	if report.Status != string(models.WorkflowStatusFailed) {
		t.Fatalf("status = %q, want failed", report.Status)
	}
	if !strings.Contains(report.Message, string(models.StepClientProfile)) {
		t.Errorf("message should name client_profile: %q", report.Message)
	}

	// Stages one and two succeeded before the abort.
	for _, step := range []models.WorkflowStep{models.StepProgrammeSetup, models.StepDomainKnowledge} {
		result, ok := report.PartialResults[step]
		if !ok || result.Status != models.StageStatusSuccess {
			t.Errorf("stage %s should be a recorded success: %+v", step, result)
		}
	}
	if _, ok := report.PartialResults[models.StepMeetingsAnalysis]; ok {
		t.Error("stages after the failure must not run")
	}
	if state := store.states[report.WorkflowID]; state.CurrentStep != models.StepClientProfile {
		t.Errorf("current step = %q, want client_profile", state.CurrentStep)
	}
}

func TestExecuteSingleAgentDispatch(t *testing.T) {
	store := newMockWorkflowStore()
	orchestrator := newTestOrchestrator(t, store)

	result, err := orchestrator.ExecuteSingleAgent(context.Background(), agents.AgentDomainKnowledge, gtIntake())
	if err != nil {
		t.Fatalf("single agent run failed: %v", err)
	}
	if result.Stage != models.StepDomainKnowledge || result.Domain == nil {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Domain.Industry != "Automotive" {
		t.Errorf("industry = %q", result.Domain.Industry)
	}

	// No workflow state is created for single-agent runs.
	if len(store.states) != 0 {
		t.Errorf("single agent run persisted %d states", len(store.states))
	}
}

func TestExecuteSingleAgentInsightsRunsPrerequisites(t *testing.T) {
	store := newMockWorkflowStore()
	orchestrator := newTestOrchestrator(t, store)

	result, err := orchestrator.ExecuteSingleAgent(context.Background(), agents.AgentActionableInsights, gtIntake())
	if err != nil {
		t.Fatalf("insights run failed: %v", err)
	}
	if result.Insights == nil || result.Insights.ExecutiveSummary == "" {
		t.Errorf("insights payload missing: %+v", result)
	}
}

func TestExecuteSingleAgentUnknownName(t *testing.T) {
	orchestrator := newTestOrchestrator(t, newMockWorkflowStore())

	_, err := orchestrator.ExecuteSingleAgent(context.Background(), "time_travel", gtIntake())
	if !errors.Is(err, models.ErrUnknownAgent) {
		t.Errorf("expected ErrUnknownAgent, got %v", err)
	}
}

func TestGetWorkflowStatusFallsBackToStore(t *testing.T) {
	store := newMockWorkflowStore()
	persisted := models.NewWorkflowState(gtIntake())
	persisted.ID = "workflow_persisted"
	store.states[persisted.ID] = persisted

	orchestrator := newTestOrchestrator(t, store)

	state, err := orchestrator.GetWorkflowStatus(context.Background(), "workflow_persisted")
	if err != nil {
		t.Fatalf("status lookup failed: %v", err)
	}
	if state.ID != "workflow_persisted" {
		t.Errorf("state id = %q", state.ID)
	}

	if _, err := orchestrator.GetWorkflowStatus(context.Background(), "missing"); !errors.Is(err, models.ErrWorkflowNotFound) {
		t.Errorf("expected ErrWorkflowNotFound, got %v", err)
	}
}

func TestGetDashboardDataCounts(t *testing.T) {
	store := newMockWorkflowStore()

	completed := models.NewWorkflowState(gtIntake())
	completed.ID = "workflow_completed"
	completed.MarkCompleted()

	failed := models.NewWorkflowState(models.IntakeRecord{ClientName: "X"})
	failed.ID = "workflow_failed"
	failed.MarkFailed(errors.New("validation failed"))

	running := models.NewWorkflowState(gtIntake())
	running.ID = "workflow_running"

	for _, state := range []*models.WorkflowState{completed, failed, running} {
		store.states[state.ID] = state
	}

	orchestrator := newTestOrchestrator(t, store)

	data, err := orchestrator.GetDashboardData(context.Background())
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if data.TotalWorkflows != 3 {
		t.Errorf("total = %d, want 3", data.TotalWorkflows)
	}
	if data.CompletedWorkflows != 1 || data.FailedWorkflows != 1 || data.ActiveWorkflows != 1 {
		t.Errorf("counts = %+v", data)
	}
	if len(data.Workflows) != 3 {
		t.Errorf("overview rows = %d, want 3", len(data.Workflows))
	}
}

func TestValidateProgrammeData(t *testing.T) {
	orchestrator := newTestOrchestrator(t, newMockWorkflowStore())

	valid := orchestrator.ValidateProgrammeData(gtIntake())
	if !valid.Valid {
		t.Errorf("seeded intake should validate: %+v", valid)
	}

	invalid := orchestrator.ValidateProgrammeData(models.IntakeRecord{ClientName: "X"})
	if invalid.Valid || len(invalid.Errors) == 0 {
		t.Errorf("short intake should fail: %+v", invalid)
	}
}

func TestSearchKnowledgeBase(t *testing.T) {
	store := newMockWorkflowStore()
	store.insights = []models.Insight{
		{ID: "i-1", Content: "HIPAA compliance requires encryption at rest."},
		{ID: "i-2", Content: "Checkout conversion improves with guest checkout."},
	}
	store.meetings["shoptrend inc."] = []models.MeetingRecord{
		{ID: "m-1", ClientName: "ShopTrend Inc.", Transcript: "Action item: Test checkout flow."},
	}
	orchestrator := newTestOrchestrator(t, store)

	result, err := orchestrator.SearchKnowledgeBase(context.Background(), "healthcare")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !result.IndustryKnown || result.IndustryInsights == nil {
		t.Error("healthcare should resolve to industry knowledge")
	}

	result, err = orchestrator.SearchKnowledgeBase(context.Background(), "checkout")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(result.StoredInsights) != 1 {
		t.Errorf("stored insights = %+v", result.StoredInsights)
	}
	if len(result.MatchingMeetings) != 1 {
		t.Errorf("matching meetings = %+v", result.MatchingMeetings)
	}
	if result.IndustryKnown {
		t.Error("'checkout' is not an industry")
	}
}

func TestGetLatestClientWorkflow(t *testing.T) {
	store := newMockWorkflowStore()

	older := models.NewWorkflowState(gtIntake())
	older.ID = "workflow_older"
	older.StartTime = time.Now().Add(-time.Hour)
	newer := models.NewWorkflowState(gtIntake())
	newer.ID = "workflow_newer"
	store.states[older.ID] = older
	store.states[newer.ID] = newer

	orchestrator := newTestOrchestrator(t, store)

	state, err := orchestrator.GetLatestClientWorkflow(context.Background(), "gt automotive")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if state.ID != "workflow_newer" {
		t.Errorf("state id = %q, want the newest run", state.ID)
	}

	if _, err := orchestrator.GetLatestClientWorkflow(context.Background(), "Nobody Corp"); !errors.Is(err, models.ErrWorkflowNotFound) {
		t.Errorf("expected ErrWorkflowNotFound, got %v", err)
	}
}

func TestOrchestratorCloseIdle(t *testing.T) {
	orchestrator := newTestOrchestrator(t, newMockWorkflowStore())
	if err := orchestrator.Close(); err != nil {
		t.Errorf("idle close should not fail: %v", err)
	}
}
