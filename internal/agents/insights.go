package agents

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
	"ksquare-onboarding/internal/scoring"
)

// InsightsAgent synthesizes the domain, profile, and meeting results into the
// final recommendation bundle. It reads the prior stage outputs and never
// touches storage.
type InsightsAgent struct {
	logger *logger.Logger
}

func NewInsightsAgent(log *logger.Logger) *InsightsAgent {
	return &InsightsAgent{logger: log}
}

func (a *InsightsAgent) Run(ctx context.Context, clientName string, domain *models.DomainKnowledgeResult,
	profile *models.ProfileResult, meetings *models.MeetingAnalysisResult) (*models.InsightBundle, error) {

	startTime := time.Now()

	if domain == nil || profile == nil || meetings == nil {
		err := models.NewValidationError("INSIGHTS_MISSING_INPUTS",
			"insight synthesis requires domain, profile, and meeting results")
		a.logger.LogAgent("", AgentActionableInsights, time.Since(startTime), nil, err)
		return nil, err
	}

	industry := profile.ClientProfile.Industry
	complexity := complexityOf(profile)

	strategic := strategicRecommendations(industry, meetings.Sentiment.Category)
	risks := assessRisks(industry, complexity, domain, meetings)
	health := projectHealth(domain, profile, meetings)

	bundle := &models.InsightBundle{
		ClientName:               clientName,
		StrategicRecommendations: strategic,
		TacticalActions:          tacticalActions(domain, meetings, complexity),
		RiskAssessment:           risks,
		SuccessMetrics:           successMetrics(industry),
		Timeline:                 timelineRecommendation(industry, complexity),
		Resources:                resourceRecommendation(industry, complexity),
		ProjectHealth:            health,
		GeneratedAt:              time.Now(),
	}
	bundle.ExecutiveSummary = executiveSummary(clientName, strategic, risks, health)

	a.logger.LogAgent("", AgentActionableInsights, time.Since(startTime), map[string]interface{}{
		"client_name":  clientName,
		"health_score": health.OverallScore,
		"risk_level":   risks.RiskLevel,
	}, nil)

	return bundle, nil
}

func complexityOf(profile *models.ProfileResult) string {
	if profile.ClientProfile != nil && profile.ClientProfile.CurrentProject != nil {
		if level := profile.ClientProfile.CurrentProject.ComplexityLevel; level != "" {
			return strings.ToLower(level)
		}
	}
	return "medium"
}

var strategicByIndustry = map[string][]models.Recommendation{
	"automotive": {
		{
			Title:       "Establish Clear KPI Framework",
			Description: "Define measurable KPIs early to track lead management success",
			Priority:    "high",
			Category:    "strategy",
			Impact:      "Prevents scope creep and ensures measurable outcomes",
		},
		{
			Title:       "Implement Phased Rollout",
			Description: "Deploy Salesforce implementation in phases to minimize risk",
			Priority:    "medium",
			Category:    "implementation",
			Impact:      "Reduces implementation risk and allows for iterative improvements",
		},
	},
	"healthcare": {
		{
			Title:       "Prioritize Compliance Framework",
			Description: "Establish HIPAA compliance as the foundation for all development",
			Priority:    "high",
			Category:    "compliance",
			Impact:      "Ensures regulatory compliance and avoids costly violations",
		},
		{
			Title:       "Implement Security-First Architecture",
			Description: "Design system architecture with security as the primary concern",
			Priority:    "high",
			Category:    "security",
			Impact:      "Protects patient data and maintains trust",
		},
	},
	"retail": {
		{
			Title:       "Focus on Conversion Optimization",
			Description: "Prioritize checkout flow optimization to maximize conversions",
			Priority:    "high",
			Category:    "optimization",
			Impact:      "Directly impacts revenue through improved conversion rates",
		},
		{
			Title:       "Mobile-First Approach",
			Description: "Design and optimize for mobile experience first",
			Priority:    "medium",
			Category:    "user_experience",
			Impact:      "Captures growing mobile commerce market",
		},
	},
}

func strategicRecommendations(industry string, sentiment models.SentimentCategory) []models.Recommendation {
	recommendations := append([]models.Recommendation{}, strategicByIndustry[strings.ToLower(industry)]...)

	switch sentiment {
	case models.SentimentNegative:
		recommendations = append(recommendations, models.Recommendation{
			Title:       "Address Stakeholder Concerns",
			Description: "Proactively address concerns identified in meeting sentiment analysis",
			Priority:    "high",
			Category:    "stakeholder_management",
			Impact:      "Improves stakeholder buy-in and project success probability",
		})
	case models.SentimentPositive:
		recommendations = append(recommendations, models.Recommendation{
			Title:       "Leverage Positive Momentum",
			Description: "Capitalize on positive stakeholder sentiment to accelerate progress",
			Priority:    "medium",
			Category:    "momentum",
			Impact:      "Accelerates project timeline and improves outcomes",
		})
	}

	return recommendations
}

func tacticalActions(domain *models.DomainKnowledgeResult, meetings *models.MeetingAnalysisResult, complexity string) []models.TacticalAction {
	actions := []models.TacticalAction{}

	for _, item := range meetings.ActionItems {
		actions = append(actions, models.TacticalAction{
			Title:           item.Item,
			Type:            item.Type,
			Priority:        string(item.Priority),
			Source:          "meeting_analysis",
			EstimatedEffort: estimateEffort(item.Item),
			Dependencies:    []string{},
		})
	}

	missing := domain.TechAnalysis.MissingRecommendedTools
	if len(missing) > 3 {
		missing = missing[:3]
	}
	for _, tool := range missing {
		actions = append(actions, models.TacticalAction{
			Title:           fmt.Sprintf("Evaluate %s integration", capitalize(tool)),
			Type:            models.ActionGeneral,
			Priority:        "medium",
			Source:          "domain_knowledge",
			EstimatedEffort: "1-2 weeks",
			Dependencies:    []string{"Technical assessment"},
		})
	}

	if complexity == "high" {
		actions = append(actions, models.TacticalAction{
			Title:           "Conduct detailed technical architecture review",
			Type:            models.ActionPlanning,
			Priority:        "high",
			Source:          "complexity_analysis",
			EstimatedEffort: "2-3 weeks",
			Dependencies:    []string{"Stakeholder alignment"},
		})
	}

	return actions
}

func estimateEffort(actionItem string) string {
	actionLower := strings.ToLower(actionItem)
	switch {
	case containsAny(actionLower, []string{"plan", "design", "architect"}):
		return "2-3 weeks"
	case containsAny(actionLower, []string{"implement", "develop", "build"}):
		return "4-6 weeks"
	case containsAny(actionLower, []string{"test", "verify"}):
		return "1-2 weeks"
	default:
		return "1 week"
	}
}

func assessRisks(industry, complexity string, domain *models.DomainKnowledgeResult, meetings *models.MeetingAnalysisResult) models.RiskAssessment {
	risks := []models.Risk{}

	if domain.TechAnalysis.CompatibilityScore < 0.5 {
		risks = append(risks, models.Risk{
			Category:    "technical",
			Risk:        "Low technology stack compatibility",
			Probability: "medium",
			Impact:      "high",
			Mitigation:  "Conduct detailed technical assessment and consider alternative tools",
		})
	}

	if complexity == "high" {
		risks = append(risks, models.Risk{
			Category:    "complexity",
			Risk:        "High project complexity may lead to delays",
			Probability: "medium",
			Impact:      "medium",
			Mitigation:  "Break down into smaller phases and increase testing",
		})
	}

	if meetings.Sentiment.Category == models.SentimentNegative {
		risks = append(risks, models.Risk{
			Category:    "stakeholder",
			Risk:        "Negative stakeholder sentiment may impact project support",
			Probability: "medium",
			Impact:      "high",
			Mitigation:  "Increase communication and address specific concerns",
		})
	}

	if strings.EqualFold(industry, "healthcare") {
		risks = append(risks, models.Risk{
			Category:    "compliance",
			Risk:        "HIPAA compliance requirements may extend timeline",
			Probability: "high",
			Impact:      "medium",
			Mitigation:  "Allocate additional time for compliance review and testing",
		})
	}

	score := scoring.RiskScore(risks)

	topConcerns := []string{}
	for i, risk := range risks {
		if i == 3 {
			break
		}
		topConcerns = append(topConcerns, risk.Risk)
	}

	return models.RiskAssessment{
		Risks:            risks,
		OverallRiskScore: score,
		RiskLevel:        scoring.RiskLevel(score),
		TopConcerns:      topConcerns,
	}
}

var metricsByIndustry = map[string][]models.SuccessMetric{
	"automotive": {
		{Name: "Lead Conversion Rate", Target: "15% improvement", Measurement: "Monthly"},
		{Name: "Sales Cycle Time", Target: "20% reduction", Measurement: "Quarterly"},
		{Name: "User Adoption Rate", Target: "80% within 3 months", Measurement: "Monthly"},
	},
	"healthcare": {
		{Name: "Data Accuracy", Target: "99.5%", Measurement: "Daily"},
		{Name: "Compliance Score", Target: "100%", Measurement: "Monthly"},
		{Name: "System Uptime", Target: "99.9%", Measurement: "Daily"},
	},
	"retail": {
		{Name: "Conversion Rate", Target: "25% improvement", Measurement: "Daily"},
		{Name: "Cart Abandonment Rate", Target: "30% reduction", Measurement: "Weekly"},
		{Name: "Mobile Conversion Rate", Target: "20% improvement", Measurement: "Weekly"},
	},
}

var universalMetrics = []models.SuccessMetric{
	{Name: "Project Timeline Adherence", Target: "95%", Measurement: "Weekly"},
	{Name: "Budget Variance", Target: "<5%", Measurement: "Monthly"},
	{Name: "Stakeholder Satisfaction", Target: "4.5/5", Measurement: "Monthly"},
}

func successMetrics(industry string) []models.SuccessMetric {
	metrics := append([]models.SuccessMetric{}, metricsByIndustry[strings.ToLower(industry)]...)
	return append(metrics, universalMetrics...)
}

var baseTimelines = map[string]map[string]int{
	"low":    {"planning": 2, "development": 8, "testing": 3, "deployment": 1},
	"medium": {"planning": 3, "development": 12, "testing": 4, "deployment": 2},
	"high":   {"planning": 4, "development": 16, "testing": 6, "deployment": 3},
}

func timelineRecommendation(industry, complexity string) models.TimelineRecommendation {
	base, ok := baseTimelines[complexity]
	if !ok {
		base = baseTimelines["medium"]
	}

	phases := make(map[string]int, len(base))
	for phase, weeks := range base {
		phases[phase] = weeks
	}

	// Compliance-heavy work stretches planning and testing.
	if strings.EqualFold(industry, "healthcare") {
		phases["testing"] += 2
		phases["planning"]++
	}

	total := 0
	for _, weeks := range phases {
		total += weeks
	}

	return models.TimelineRecommendation{
		Phases:               phases,
		TotalDurationWeeks:   total,
		RecommendedStartDate: time.Now().Format("2006-01-02"),
		CriticalPath:         []string{"planning", "development", "testing"},
		BufferRecommendation: "20% additional time for unforeseen challenges",
	}
}

var baseTeams = map[string]map[string]int{
	"low":    {"developers": 2, "designers": 1, "project_managers": 1, "qa_engineers": 1},
	"medium": {"developers": 3, "designers": 1, "project_managers": 1, "qa_engineers": 2},
	"high":   {"developers": 5, "designers": 2, "project_managers": 2, "qa_engineers": 3},
}

func resourceRecommendation(industry, complexity string) models.ResourceRecommendation {
	base, ok := baseTeams[complexity]
	if !ok {
		base = baseTeams["medium"]
	}

	team := make(map[string]int, len(base)+2)
	for role, count := range base {
		team[role] = count
	}

	switch strings.ToLower(industry) {
	case "healthcare":
		team["compliance_specialists"] = 1
		team["security_experts"] = 1
	case "automotive":
		team["business_analysts"] = 1
	}

	total := 0
	for _, count := range team {
		total += count
	}

	return models.ResourceRecommendation{
		TeamComposition:     team,
		TotalTeamSize:       total,
		SpecializedRoles:    specializedRoles(industry),
		ExternalConsultants: recommendConsultants(industry, complexity),
	}
}

var specializedRolesByIndustry = map[string][]string{
	"healthcare": {"HIPAA Compliance Specialist", "Healthcare IT Consultant"},
	"automotive": {"CRM Specialist", "Sales Process Analyst"},
	"retail":     {"E-commerce Specialist", "UX/UI Designer"},
}

func specializedRoles(industry string) []string {
	if roles, ok := specializedRolesByIndustry[strings.ToLower(industry)]; ok {
		return roles
	}
	return []string{"Business Analyst"}
}

func recommendConsultants(industry, complexity string) []string {
	if complexity == "high" {
		return []string{"Senior Technical Architect", "Industry Expert"}
	}
	if strings.EqualFold(industry, "healthcare") {
		return []string{"HIPAA Compliance Consultant"}
	}
	return []string{}
}

// projectHealth averages four equally-weighted component scores, each on a
// 0-100 scale.
func projectHealth(domain *models.DomainKnowledgeResult, profile *models.ProfileResult, meetings *models.MeetingAnalysisResult) models.HealthScore {
	techScore := domain.TechAnalysis.CompatibilityScore * 100
	sentimentScore := scoring.SentimentHealthComponent(meetings.Sentiment.Polarity)
	completenessScore := profile.CompletenessScore * 100
	confidenceScore := domain.ConfidenceScore * 100

	overall := (techScore + sentimentScore + completenessScore + confidenceScore) / 4

	return models.HealthScore{
		OverallScore: round1(overall),
		HealthLevel:  scoring.HealthLevel(overall),
		ComponentScores: map[string]float64{
			"technical_compatibility": round1(techScore),
			"stakeholder_sentiment":   round1(sentimentScore),
			"profile_completeness":    round1(completenessScore),
			"domain_knowledge":        round1(confidenceScore),
		},
		Recommendations: healthRecommendations(overall),
	}
}

func healthRecommendations(healthScore float64) []string {
	switch {
	case healthScore < 40:
		return []string{
			"Conduct immediate stakeholder alignment meeting",
			"Review and adjust project scope",
			"Consider bringing in additional expertise",
		}
	case healthScore < 60:
		return []string{
			"Increase communication frequency",
			"Review technical approach",
			"Validate requirements with stakeholders",
		}
	default:
		return []string{
			"Maintain current momentum",
			"Focus on execution excellence",
			"Prepare for scaling",
		}
	}
}

func executiveSummary(clientName string, strategic []models.Recommendation, risks models.RiskAssessment, health models.HealthScore) string {
	topRecommendation := "No specific recommendations"
	if len(strategic) > 0 {
		topRecommendation = strategic[0].Title
	}

	return fmt.Sprintf(
		"Executive Summary for %s: Project Health: %s (%.1f%%). Risk Level: %s. "+
			"Key Recommendation: %s. The project shows %s potential for success with %s risk factors identified. "+
			"Immediate focus should be on %s to ensure optimal outcomes. "+
			"Total Strategic Recommendations: %d. Critical Risks Identified: %d.",
		clientName,
		capitalize(health.HealthLevel), health.OverallScore,
		capitalize(risks.RiskLevel),
		topRecommendation,
		health.HealthLevel, risks.RiskLevel,
		strings.ToLower(topRecommendation),
		len(strategic), len(risks.Risks),
	)
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
