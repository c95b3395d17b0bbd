package agents

import (
	"context"
	"strings"
	"time"

	"ksquare-onboarding/internal/knowledge"
	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
	"ksquare-onboarding/internal/scoring"
)

// DomainAgent maps an industry and problem statement onto the curated
// knowledge base. It keeps no state between runs.
type DomainAgent struct {
	logger *logger.Logger
}

func NewDomainAgent(log *logger.Logger) *DomainAgent {
	return &DomainAgent{logger: log}
}

func (a *DomainAgent) Run(ctx context.Context, industry, problemStatement string, techStack []string) (*models.DomainKnowledgeResult, error) {
	startTime := time.Now()

	entry, known := knowledge.Lookup(industry)

	compatible, missing, compatibilityScore := scoring.TechCompatibility(techStack, entry.RecommendedTools)
	if len(missing) > 3 {
		missing = missing[:3]
	}

	result := &models.DomainKnowledgeResult{
		Industry:         industry,
		BestPractices:    entry.BestPractices,
		CommonChallenges: entry.CommonChallenges,
		RecommendedTools: entry.RecommendedTools,
		ProblemInsights:  problemInsights(problemStatement, entry),
		TechAnalysis: models.TechAnalysis{
			CompatibleTools:         compatible,
			MissingRecommendedTools: missing,
			CompatibilityScore:      compatibilityScore,
			Suggestions:             techSuggestions(industry, techStack),
		},
		Recommendations: domainRecommendations(industry, problemStatement),
		ConfidenceScore: scoring.ConfidenceScore(known),
	}

	a.logger.LogAgent("", AgentDomainKnowledge, time.Since(startTime), map[string]interface{}{
		"industry":            industry,
		"known_industry":      known,
		"compatibility_score": compatibilityScore,
	}, nil)

	return result, nil
}

// problemInsightRules pairs a lowercased trigger substring with the insights
// it contributes. Rules fire independently; several may match one statement.
var problemInsightRules = []struct {
	triggers []string
	insights []string
}{
	{
		triggers: []string{"lead management"},
		insights: []string{
			"Focus on lead qualification and nurturing processes",
			"Consider implementing lead scoring mechanisms",
		},
	},
	{
		triggers: []string{"patient record", "hipaa"},
		insights: []string{
			"Prioritize data security and compliance requirements",
			"Implement comprehensive audit logging",
		},
	},
	{
		triggers: []string{"checkout", "e-commerce"},
		insights: []string{
			"Focus on reducing friction in the purchase process",
			"Consider mobile-first design principles",
		},
	},
	{
		triggers: []string{"salesforce"},
		insights: []string{
			"Leverage Salesforce's built-in automation features",
			"Plan for user training and adoption strategies",
		},
	},
}

func problemInsights(problemStatement string, entry knowledge.IndustryKnowledge) []string {
	problemLower := strings.ToLower(problemStatement)
	insights := []string{}

	for _, rule := range problemInsightRules {
		for _, trigger := range rule.triggers {
			if strings.Contains(problemLower, trigger) {
				insights = append(insights, rule.insights...)
				break
			}
		}
	}

	// Top two best practices round out the insights.
	practices := entry.BestPractices
	if len(practices) > 2 {
		practices = practices[:2]
	}
	insights = append(insights, practices...)

	return insights
}

func techSuggestions(industry string, techStack []string) []string {
	stackSet := make(map[string]bool, len(techStack))
	for _, item := range techStack {
		stackSet[strings.ToLower(strings.TrimSpace(item))] = true
	}
	industryLower := strings.ToLower(industry)

	suggestions := []string{}
	if stackSet["python"] && industryLower == "healthcare" {
		suggestions = append(suggestions, "Consider using Django for HIPAA-compliant web applications")
	}
	if stackSet["salesforce"] {
		suggestions = append(suggestions, "Utilize Salesforce APIs for seamless integration")
	}
	if stackSet["node.js"] && industryLower == "retail" {
		suggestions = append(suggestions, "Consider Express.js for building scalable e-commerce APIs")
	}
	return suggestions
}

// industryRecommendations is keyed by lowercased industry name.
var industryRecommendations = map[string][]string{
	"automotive": {
		"Define KPIs early to avoid project delays",
		"Implement comprehensive lead tracking system",
		"Plan for integration with existing automotive systems",
	},
	"healthcare": {
		"Use AWS RDS for HIPAA-compliant data storage",
		"Implement end-to-end encryption for patient data",
		"Establish regular compliance audit procedures",
	},
	"retail": {
		"Implement one-click checkout to improve conversion rates",
		"Optimize checkout flow for mobile devices",
		"Use A/B testing to validate design changes",
	},
}

func domainRecommendations(industry, problemStatement string) []string {
	recommendations := []string{}
	recommendations = append(recommendations, industryRecommendations[strings.ToLower(industry)]...)

	problemLower := strings.ToLower(problemStatement)
	if strings.Contains(problemLower, "management") {
		recommendations = append(recommendations, "Establish clear process workflows and approval chains")
	}
	if strings.Contains(problemLower, "optimization") {
		recommendations = append(recommendations, "Implement analytics to measure optimization impact")
	}

	return recommendations
}
