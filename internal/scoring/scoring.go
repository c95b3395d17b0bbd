// Package scoring holds the pure scoring heuristics shared by the agents.
// Every function here is deterministic; the rule weights are exported data so
// callers and tests can see exactly what drives a score.
package scoring

import (
	"strings"

	"ksquare-onboarding/internal/models"
)

// Confidence levels for domain knowledge lookups.
const (
	ConfidenceKnownIndustry = 0.9
	ConfidenceGeneric       = 0.6
)

func ConfidenceScore(knownIndustry bool) float64 {
	if knownIndustry {
		return ConfidenceKnownIndustry
	}
	return ConfidenceGeneric
}

// RiskProbabilityWeights maps a risk's probability label to its numeric
// weight. Unknown labels fall back to the medium weight.
var RiskProbabilityWeights = map[string]float64{
	"low":    0.3,
	"medium": 0.6,
	"high":   0.9,
}

// BaselineRiskScore is reported when no risks were identified; absence of
// findings is not absence of risk.
const BaselineRiskScore = 0.2

func RiskScore(risks []models.Risk) float64 {
	if len(risks) == 0 {
		return BaselineRiskScore
	}
	total := 0.0
	for _, risk := range risks {
		weight, ok := RiskProbabilityWeights[risk.Probability]
		if !ok {
			weight = RiskProbabilityWeights["medium"]
		}
		total += weight
	}
	score := total / float64(len(risks))
	if score > 1.0 {
		return 1.0
	}
	return score
}

func RiskLevel(score float64) string {
	switch {
	case score >= 0.7:
		return "high"
	case score >= 0.4:
		return "medium"
	default:
		return "low"
	}
}

func HealthLevel(score float64) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 60:
		return "good"
	case score >= 40:
		return "fair"
	default:
		return "poor"
	}
}

// TechCompatibility compares a client's stack against the recommended tools
// for its industry, case-insensitively. Returned tool names are lowercased.
// The score is |compatible| / max(|recommended|, 1), so it stays in [0, 1]
// even when either list is empty.
func TechCompatibility(techStack, recommendedTools []string) (compatible, missing []string, score float64) {
	stackSet := make(map[string]bool, len(techStack))
	for _, item := range techStack {
		stackSet[strings.ToLower(strings.TrimSpace(item))] = true
	}

	compatible = []string{}
	missing = []string{}
	for _, tool := range recommendedTools {
		key := strings.ToLower(strings.TrimSpace(tool))
		if stackSet[key] {
			compatible = append(compatible, key)
		} else {
			missing = append(missing, key)
		}
	}

	denominator := len(recommendedTools)
	if denominator == 0 {
		denominator = 1
	}
	score = float64(len(compatible)) / float64(denominator)
	return compatible, missing, score
}

// SetupCompleteness averages four per-field fullness ratios for the intake
// tuple. Each ratio saturates at 1.0.
func SetupCompleteness(clientName, industry, problemStatement string, techStack []string) float64 {
	scores := []float64{
		capRatio(len(strings.TrimSpace(clientName)), 20),
		capRatio(len(strings.TrimSpace(industry)), 15),
		capRatio(len(strings.TrimSpace(problemStatement)), 100),
		capRatio(countNonEmpty(techStack), 3),
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}
	return total / float64(len(scores))
}

// ProfileCompleteness scores a profile as the filled fraction of its seven
// core fields, with bonuses for project context (0.1), business context
// (0.1), and two or more stakeholders (0.05), capped at 1.0.
func ProfileCompleteness(profile *models.ClientProfile) float64 {
	if profile == nil {
		return 0
	}

	filled := 0
	if profile.Name != "" {
		filled++
	}
	if profile.Industry != "" {
		filled++
	}
	if profile.Founded != 0 {
		filled++
	}
	if profile.Region != "" {
		filled++
	}
	if len(profile.Stakeholders) > 0 {
		filled++
	}
	if len(profile.TechStack) > 0 {
		filled++
	}
	if profile.PrimaryChallenge != "" {
		filled++
	}

	score := float64(filled) / 7.0

	if profile.CurrentProject != nil {
		score += 0.1
	}
	if profile.BusinessContext != nil {
		score += 0.1
	}
	if len(profile.Stakeholders) >= 2 {
		score += 0.05
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}

// EngagementScore computes a [0, 1] engagement estimate from transcript
// counts. An explicit percentage stated in the transcript overrides the
// computed value entirely.
func EngagementScore(wordCount, questionCount, exclamationCount int, explicitPercentage *int) float64 {
	if explicitPercentage != nil {
		return float64(*explicitPercentage) / 100.0
	}

	base := capRatio(wordCount, 200)
	questionBonus := float64(questionCount) * 0.1
	if questionBonus > 0.3 {
		questionBonus = 0.3
	}
	exclamationBonus := float64(exclamationCount) * 0.05
	if exclamationBonus > 0.2 {
		exclamationBonus = 0.2
	}

	score := base + questionBonus + exclamationBonus
	if score > 1.0 {
		return 1.0
	}
	return score
}

func ParticipationLevel(engagementScore float64) string {
	switch {
	case engagementScore >= 0.8:
		return "high"
	case engagementScore >= 0.6:
		return "medium"
	default:
		return "low"
	}
}

// CategorizeSentiment maps polarity to a category. The thresholds are strict:
// exactly 0.1 or -0.1 is neutral.
func CategorizeSentiment(polarity float64) models.SentimentCategory {
	switch {
	case polarity > 0.1:
		return models.SentimentPositive
	case polarity < -0.1:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// SentimentHealthComponent converts a [-1, 1] polarity to a [0, 100]
// component score, floored at 0.
func SentimentHealthComponent(polarity float64) float64 {
	score := (polarity + 1) * 50
	if score < 0 {
		return 0
	}
	return score
}

func capRatio(value, denominator int) float64 {
	ratio := float64(value) / float64(denominator)
	if ratio > 1.0 {
		return 1.0
	}
	return ratio
}

func countNonEmpty(items []string) int {
	count := 0
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			count++
		}
	}
	return count
}
