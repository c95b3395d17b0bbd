package agents

import (
	"context"
	"testing"
	"time"

	"ksquare-onboarding/internal/models"
)

func TestProfileRunCreatesNewProfile(t *testing.T) {
	store := newMockStore()
	agent := NewProfileAgent(store, newTestLogger(t))

	result, err := agent.Run(context.Background(), models.IntakeRecord{
		ClientName:       "MediCare Solutions",
		Industry:         "Healthcare",
		ProblemStatement: "Develop a patient record system with HIPAA compliance",
		TechStack:        []string{"Python", "AWS"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.ProfileExists {
		t.Error("new client should report profile_exists=false")
	}
	profile := result.ClientProfile
	if profile.Region != "USA, Canada" {
		t.Errorf("region = %q, want healthcare region", profile.Region)
	}
	if profile.PrimaryChallenge != "Healthcare Data Management and Compliance" {
		t.Errorf("primary challenge = %q", profile.PrimaryChallenge)
	}
	if profile.CurrentProject == nil || profile.CurrentProject.ProjectType != "Implementation" {
		t.Errorf("expected Implementation project type, got %+v", profile.CurrentProject)
	}
	if profile.BusinessContext == nil {
		t.Fatal("expected business context")
	}
	if len(store.savedProfiles) != 1 {
		t.Errorf("profile should be persisted exactly once, got %d", len(store.savedProfiles))
	}

	// Healthcare always seats a compliance officer next to the CTO.
	foundCompliance := false
	for _, stakeholder := range profile.Stakeholders {
		if stakeholder.Role == "Compliance Officer" {
			foundCompliance = true
		}
	}
	if !foundCompliance {
		t.Errorf("stakeholders missing compliance officer: %v", profile.Stakeholders)
	}
}

func TestProfileRunEnhancesExistingProfile(t *testing.T) {
	store := newMockStore()
	existing := &models.ClientProfile{
		Name:             "GT Automotive",
		Industry:         "Automotive",
		Founded:          1970,
		Region:           "USA, Latin America",
		Stakeholders:     []models.Stakeholder{{Name: "John Doe", Role: "VP of Product"}},
		TechStack:        []string{"Salesforce", "Java"},
		PrimaryChallenge: "Lead Management and Conversion",
		CreatedAt:        time.Now().Add(-24 * time.Hour),
	}
	store.profiles["gt automotive"] = existing
	agent := NewProfileAgent(store, newTestLogger(t))

	result, err := agent.Run(context.Background(), models.IntakeRecord{
		ClientName:       "GT Automotive",
		Industry:         "Automotive",
		ProblemStatement: "Implement a lead management process using Salesforce",
		TechStack:        []string{"Salesforce", "Python"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.ProfileExists {
		t.Error("returning client should report profile_exists=true")
	}
	profile := result.ClientProfile

	// Identity fields survive; the stored record wins over re-derivation.
	if profile.Founded != 1970 || profile.Region != "USA, Latin America" {
		t.Errorf("stored identity fields must be preserved: %+v", profile)
	}

	// Tech stack is the union, first-seen order, no duplicates.
	want := []string{"Salesforce", "Java", "Python"}
	if len(profile.TechStack) != len(want) {
		t.Fatalf("tech stack = %v, want %v", profile.TechStack, want)
	}
	for i, tech := range want {
		if profile.TechStack[i] != tech {
			t.Errorf("tech stack[%d] = %q, want %q", i, profile.TechStack[i], tech)
		}
	}
}

func TestProfileTechMergeIsIdempotent(t *testing.T) {
	store := newMockStore()
	agent := NewProfileAgent(store, newTestLogger(t))

	intake := models.IntakeRecord{
		ClientName:       "ShopTrend Inc.",
		Industry:         "Retail",
		ProblemStatement: "Optimize e-commerce platform checkout process",
		TechStack:        []string{"Shopify", "Node.js"},
	}

	first, err := agent.Run(context.Background(), intake)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := agent.Run(context.Background(), intake)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if len(first.ClientProfile.TechStack) != len(second.ClientProfile.TechStack) {
		t.Errorf("re-running with identical intake must not grow the stack: %v vs %v",
			first.ClientProfile.TechStack, second.ClientProfile.TechStack)
	}
}

func TestProfileComplexityAssessment(t *testing.T) {
	store := newMockStore()
	agent := NewProfileAgent(store, newTestLogger(t))

	result, err := agent.Run(context.Background(), models.IntakeRecord{
		ClientName:       "Enterprise Corp",
		Industry:         "Finance",
		ProblemStatement: "Complex enterprise integration across multiple distributed systems at scale",
		TechStack:        []string{"Kubernetes", "Microservices"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ClientProfile.CurrentProject.ComplexityLevel != "High" {
		t.Errorf("complexity = %q, want High", result.ClientProfile.CurrentProject.ComplexityLevel)
	}
	if result.ClientProfile.CompanySize != "Large (1000+ employees)" {
		t.Errorf("company size = %q, want Large", result.ClientProfile.CompanySize)
	}
}

func TestProfileCompletenessScoreInRange(t *testing.T) {
	store := newMockStore()
	agent := NewProfileAgent(store, newTestLogger(t))

	result, err := agent.Run(context.Background(), models.IntakeRecord{
		ClientName:       "Basic Co",
		Industry:         "Retail",
		ProblemStatement: "Improve our online store experience",
		TechStack:        []string{"Shopify"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.CompletenessScore <= 0 || result.CompletenessScore > 1 {
		t.Errorf("completeness score out of range: %v", result.CompletenessScore)
	}
}
