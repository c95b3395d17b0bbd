package agents

import (
	"context"
	"strings"
	"testing"

	"ksquare-onboarding/internal/models"
)

func domainResultFixture(compatibility, confidence float64) *models.DomainKnowledgeResult {
	return &models.DomainKnowledgeResult{
		Industry: "Healthcare",
		TechAnalysis: models.TechAnalysis{
			CompatibilityScore:      compatibility,
			MissingRecommendedTools: []string{"postgresql", "docker", "kubernetes"},
		},
		ConfidenceScore: confidence,
	}
}

func profileResultFixture(industry, complexity string, completeness float64) *models.ProfileResult {
	return &models.ProfileResult{
		ClientProfile: &models.ClientProfile{
			Name:     "MediCare Solutions",
			Industry: industry,
			CurrentProject: &models.CurrentProject{
				ComplexityLevel: complexity,
			},
		},
		CompletenessScore: completeness,
	}
}

func meetingResultFixture(category models.SentimentCategory, polarity float64) *models.MeetingAnalysisResult {
	return &models.MeetingAnalysisResult{
		ClientName: "MediCare Solutions",
		Sentiment:  models.SentimentResult{Category: category, Polarity: polarity},
		ActionItems: []models.ActionItem{
			{Item: "Finalize encryption plan", Priority: models.PriorityHigh, Type: models.ActionPlanning},
		},
	}
}

func TestInsightsRunRequiresAllInputs(t *testing.T) {
	agent := NewInsightsAgent(newTestLogger(t))

	_, err := agent.Run(context.Background(), "X", nil,
		profileResultFixture("Retail", "Low", 0.5),
		meetingResultFixture(models.SentimentNeutral, 0))
	if err == nil {
		t.Fatal("expected error for missing domain result")
	}
}

func TestInsightsHealthScoreComposition(t *testing.T) {
	agent := NewInsightsAgent(newTestLogger(t))

	// Components: tech 100, sentiment 50 (polarity 0), completeness 90,
	// confidence 80. Average = 80.0, exactly at the excellent boundary.
	bundle, err := agent.Run(context.Background(), "MediCare Solutions",
		domainResultFixture(1.0, 0.8),
		profileResultFixture("Healthcare", "Low", 0.9),
		meetingResultFixture(models.SentimentNeutral, 0))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if bundle.ProjectHealth.OverallScore != 80.0 {
		t.Errorf("overall health = %v, want 80.0", bundle.ProjectHealth.OverallScore)
	}
	if bundle.ProjectHealth.HealthLevel != "excellent" {
		t.Errorf("health level = %q, want excellent at the 80 boundary", bundle.ProjectHealth.HealthLevel)
	}
	if got := bundle.ProjectHealth.ComponentScores["stakeholder_sentiment"]; got != 50.0 {
		t.Errorf("sentiment component = %v, want 50", got)
	}
}

func TestInsightsHealthcareRiskAlwaysPresent(t *testing.T) {
	agent := NewInsightsAgent(newTestLogger(t))

	bundle, err := agent.Run(context.Background(), "MediCare Solutions",
		domainResultFixture(0.9, 0.9),
		profileResultFixture("Healthcare", "Low", 1.0),
		meetingResultFixture(models.SentimentPositive, 0.4))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	foundCompliance := false
	for _, risk := range bundle.RiskAssessment.Risks {
		if risk.Category == "compliance" {
			foundCompliance = true
		}
	}
	if !foundCompliance {
		t.Errorf("healthcare must carry a compliance risk: %+v", bundle.RiskAssessment.Risks)
	}

	// Single high-probability risk scores 0.9 -> high.
	if bundle.RiskAssessment.OverallRiskScore != 0.9 {
		t.Errorf("risk score = %v, want 0.9", bundle.RiskAssessment.OverallRiskScore)
	}
	if bundle.RiskAssessment.RiskLevel != "high" {
		t.Errorf("risk level = %q, want high", bundle.RiskAssessment.RiskLevel)
	}
}

func TestInsightsNoRisksGetsBaselineScore(t *testing.T) {
	agent := NewInsightsAgent(newTestLogger(t))

	// Retail, low complexity, good compatibility, neutral sentiment: no risk
	// rule fires.
	bundle, err := agent.Run(context.Background(), "ShopTrend Inc.",
		domainResultFixture(0.9, 0.9),
		profileResultFixture("Retail", "Low", 0.8),
		meetingResultFixture(models.SentimentNeutral, 0))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(bundle.RiskAssessment.Risks) != 0 {
		t.Fatalf("expected no risks, got %+v", bundle.RiskAssessment.Risks)
	}
	if bundle.RiskAssessment.OverallRiskScore != 0.2 {
		t.Errorf("baseline risk score = %v, want 0.2", bundle.RiskAssessment.OverallRiskScore)
	}
	if bundle.RiskAssessment.RiskLevel != "low" {
		t.Errorf("risk level = %q, want low", bundle.RiskAssessment.RiskLevel)
	}
}

func TestInsightsTacticalActionsFromAllSources(t *testing.T) {
	agent := NewInsightsAgent(newTestLogger(t))

	bundle, err := agent.Run(context.Background(), "MediCare Solutions",
		domainResultFixture(0.2, 0.9),
		profileResultFixture("Healthcare", "High", 0.8),
		meetingResultFixture(models.SentimentNegative, -0.3))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 1 meeting action + 3 missing tools + 1 high-complexity review.
	if len(bundle.TacticalActions) != 5 {
		t.Fatalf("tactical actions = %d, want 5: %+v", len(bundle.TacticalActions), bundle.TacticalActions)
	}

	sources := map[string]int{}
	for _, action := range bundle.TacticalActions {
		sources[action.Source]++
	}
	if sources["meeting_analysis"] != 1 || sources["domain_knowledge"] != 3 || sources["complexity_analysis"] != 1 {
		t.Errorf("unexpected source distribution: %v", sources)
	}

	// The planning-flavored meeting item gets the planning effort estimate.
	if bundle.TacticalActions[0].EstimatedEffort != "2-3 weeks" {
		t.Errorf("effort = %q, want 2-3 weeks for a plan item", bundle.TacticalActions[0].EstimatedEffort)
	}
}

func TestInsightsSentimentDrivenRecommendations(t *testing.T) {
	agent := NewInsightsAgent(newTestLogger(t))

	negative, _ := agent.Run(context.Background(), "X",
		domainResultFixture(0.9, 0.9),
		profileResultFixture("Retail", "Low", 0.8),
		meetingResultFixture(models.SentimentNegative, -0.3))

	foundConcerns := false
	for _, rec := range negative.StrategicRecommendations {
		if rec.Title == "Address Stakeholder Concerns" {
			foundConcerns = true
		}
	}
	if !foundConcerns {
		t.Error("negative sentiment should add stakeholder recommendation")
	}

	positive, _ := agent.Run(context.Background(), "X",
		domainResultFixture(0.9, 0.9),
		profileResultFixture("Retail", "Low", 0.8),
		meetingResultFixture(models.SentimentPositive, 0.3))

	foundMomentum := false
	for _, rec := range positive.StrategicRecommendations {
		if rec.Title == "Leverage Positive Momentum" {
			foundMomentum = true
		}
	}
	if !foundMomentum {
		t.Error("positive sentiment should add momentum recommendation")
	}
}

func TestInsightsHealthcareTimelineStretch(t *testing.T) {
	agent := NewInsightsAgent(newTestLogger(t))

	bundle, err := agent.Run(context.Background(), "MediCare Solutions",
		domainResultFixture(0.9, 0.9),
		profileResultFixture("Healthcare", "Medium", 0.8),
		meetingResultFixture(models.SentimentNeutral, 0))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Medium base 3+12+4+2=21, plus compliance adjustments (+1 planning,
	// +2 testing) = 24.
	if bundle.Timeline.TotalDurationWeeks != 24 {
		t.Errorf("healthcare timeline = %d weeks, want 24", bundle.Timeline.TotalDurationWeeks)
	}
	if bundle.Timeline.Phases["testing"] != 6 {
		t.Errorf("testing phase = %d, want 6", bundle.Timeline.Phases["testing"])
	}

	// Healthcare adds two specialist roles to the medium team of 7.
	if bundle.Resources.TotalTeamSize != 9 {
		t.Errorf("team size = %d, want 9", bundle.Resources.TotalTeamSize)
	}
}

func TestInsightsExecutiveSummaryNamesClientAndHealth(t *testing.T) {
	agent := NewInsightsAgent(newTestLogger(t))

	bundle, _ := agent.Run(context.Background(), "ShopTrend Inc.",
		domainResultFixture(0.9, 0.9),
		profileResultFixture("Retail", "Low", 0.8),
		meetingResultFixture(models.SentimentNeutral, 0))

	if !strings.Contains(bundle.ExecutiveSummary, "ShopTrend Inc.") {
		t.Errorf("summary missing client name: %q", bundle.ExecutiveSummary)
	}
	if !strings.Contains(bundle.ExecutiveSummary, "Risk Level:") {
		t.Errorf("summary missing risk level: %q", bundle.ExecutiveSummary)
	}
}
