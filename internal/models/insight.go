package models

import "time"

type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Impact      string `json:"impact"`
}

type TacticalAction struct {
	Title           string     `json:"title"`
	Type            ActionType `json:"type"`
	Priority        string     `json:"priority"`
	Source          string     `json:"source"`
	EstimatedEffort string     `json:"estimated_effort"`
	Dependencies    []string   `json:"dependencies"`
}

type Risk struct {
	Category    string `json:"category"`
	Risk        string `json:"risk"`
	Probability string `json:"probability"`
	Impact      string `json:"impact"`
	Mitigation  string `json:"mitigation"`
}

type RiskAssessment struct {
	Risks            []Risk   `json:"risks"`
	OverallRiskScore float64  `json:"overall_risk_score"`
	RiskLevel        string   `json:"risk_level"`
	TopConcerns      []string `json:"top_concerns"`
}

type SuccessMetric struct {
	Name        string `json:"name"`
	Target      string `json:"target"`
	Measurement string `json:"measurement"`
}

type TimelineRecommendation struct {
	Phases               map[string]int `json:"phases"`
	TotalDurationWeeks   int            `json:"total_duration_weeks"`
	RecommendedStartDate string         `json:"recommended_start_date"`
	CriticalPath         []string       `json:"critical_path"`
	BufferRecommendation string         `json:"buffer_recommendation"`
}

type ResourceRecommendation struct {
	TeamComposition     map[string]int `json:"team_composition"`
	TotalTeamSize       int            `json:"total_team_size"`
	SpecializedRoles    []string       `json:"specialized_roles"`
	ExternalConsultants []string       `json:"external_consultants"`
}

type HealthScore struct {
	OverallScore    float64            `json:"overall_score"`
	HealthLevel     string             `json:"health_level"`
	ComponentScores map[string]float64 `json:"component_scores"`
	Recommendations []string           `json:"recommendations"`
}

// InsightBundle is the synthesis stage output, built from the three prior
// stage results.
type InsightBundle struct {
	ClientName               string                 `json:"client_name"`
	ExecutiveSummary         string                 `json:"executive_summary"`
	StrategicRecommendations []Recommendation       `json:"strategic_recommendations"`
	TacticalActions          []TacticalAction       `json:"tactical_actions"`
	RiskAssessment           RiskAssessment         `json:"risk_assessment"`
	SuccessMetrics           []SuccessMetric        `json:"success_metrics"`
	Timeline                 TimelineRecommendation `json:"timeline_recommendations"`
	Resources                ResourceRecommendation `json:"resource_recommendations"`
	ProjectHealth            HealthScore            `json:"project_health_score"`
	GeneratedAt              time.Time              `json:"generated_at"`
}
