package models

import "time"

// SetupResult is the programme-setup stage output: validated intake plus the
// outcome of matching against the seeded use cases.
type SetupResult struct {
	ClientName        string            `json:"client_name"`
	Industry          string            `json:"industry"`
	ProblemStatement  string            `json:"problem_statement"`
	TechStack         []string          `json:"tech_stack"`
	UseCaseMatch      bool              `json:"use_case_match"`
	UseCaseID         string            `json:"use_case_id,omitempty"`
	Validation        ValidationResult  `json:"validation"`
}

type ValidationResult struct {
	Valid             bool     `json:"valid"`
	Message           string   `json:"message"`
	Errors            []string `json:"errors,omitempty"`
	CompletenessScore float64  `json:"completeness_score"`
}

// DomainKnowledgeResult is scoped to one workflow invocation and never
// mutated after the stage returns it.
type DomainKnowledgeResult struct {
	Industry         string       `json:"industry"`
	BestPractices    []string     `json:"best_practices"`
	CommonChallenges []string     `json:"common_challenges"`
	RecommendedTools []string     `json:"recommended_tools"`
	ProblemInsights  []string     `json:"problem_insights"`
	TechAnalysis     TechAnalysis `json:"tech_analysis"`
	Recommendations  []string     `json:"recommendations"`
	ConfidenceScore  float64      `json:"confidence_score"`
}

type TechAnalysis struct {
	CompatibleTools         []string `json:"compatible_tools"`
	MissingRecommendedTools []string `json:"missing_recommended_tools"`
	CompatibilityScore      float64  `json:"compatibility_score"`
	Suggestions             []string `json:"suggestions"`
}

// ClientProfile is the single mutable record per client. The tech stack
// accumulates across workflow runs; project-specific fields are overwritten
// each run.
type ClientProfile struct {
	Name             string           `json:"name"`
	Industry         string           `json:"industry"`
	Founded          int              `json:"founded"`
	CompanySize      string           `json:"company_size"`
	Region           string           `json:"region"`
	Stakeholders     []Stakeholder    `json:"stakeholders"`
	TechStack        []string         `json:"tech_stack"`
	PrimaryChallenge string           `json:"primary_challenge"`
	CurrentProject   *CurrentProject  `json:"current_project,omitempty"`
	BusinessContext  *BusinessContext `json:"business_context,omitempty"`
	ProfileSource    string           `json:"profile_source,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type Stakeholder struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type CurrentProject struct {
	ProblemStatement string   `json:"problem_statement"`
	Technologies     []string `json:"technologies"`
	ProjectType      string   `json:"project_type"`
	ComplexityLevel  string   `json:"complexity_level"`
}

type BusinessContext struct {
	IndustryTrends  []string `json:"industry_trends"`
	BusinessDrivers []string `json:"business_drivers"`
	SuccessMetrics  []string `json:"success_metrics"`
	RiskFactors     []string `json:"risk_factors"`
}

// ProfileResult is the client-profile stage output.
type ProfileResult struct {
	ClientProfile     *ClientProfile `json:"client_profile"`
	CompletenessScore float64        `json:"completeness_score"`
	Insights          []string       `json:"insights"`
	ProfileExists     bool           `json:"profile_exists"`
}

// UseCase is one of the seeded onboarding scenarios loaded at startup.
type UseCase struct {
	ID               string   `json:"id"`
	ClientName       string   `json:"client_name"`
	Industry         string   `json:"industry"`
	ProblemStatement string   `json:"problem_statement"`
	TechStack        []string `json:"tech_stack"`
}

// Insight is a stored knowledge-base record, searchable by content and tags.
type Insight struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Type       string    `json:"insight_type"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
