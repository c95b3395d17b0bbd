package agents

import (
	"context"
	"errors"
	"strings"
	"time"

	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
	"ksquare-onboarding/internal/scoring"
)

// ProfileAgent builds or enriches the per-client profile. A returning client
// keeps its stored record; tech stacks accumulate across runs while the
// project context is overwritten each time.
type ProfileAgent struct {
	store  Store
	logger *logger.Logger
}

func NewProfileAgent(store Store, log *logger.Logger) *ProfileAgent {
	return &ProfileAgent{store: store, logger: log}
}

func (a *ProfileAgent) Run(ctx context.Context, intake models.IntakeRecord) (*models.ProfileResult, error) {
	startTime := time.Now()

	profile, err := a.store.GetClientProfile(ctx, intake.ClientName)
	profileExists := err == nil
	if err != nil {
		if !errors.Is(err, models.ErrProfileNotFound) {
			wrapped := models.WrapExternalError("profile_lookup", err)
			a.logger.LogAgent("", AgentClientProfile, time.Since(startTime), nil, wrapped)
			return nil, wrapped
		}
		profile = newProfile(intake)
	}

	enhanceProfile(profile, intake)

	if err := a.store.SaveClientProfile(ctx, profile); err != nil {
		wrapped := models.WrapExternalError("profile_save", err)
		a.logger.LogAgent("", AgentClientProfile, time.Since(startTime), nil, wrapped)
		return nil, wrapped
	}

	result := &models.ProfileResult{
		ClientProfile:     profile,
		CompletenessScore: scoring.ProfileCompleteness(profile),
		Insights:          profileInsights(profile, intake.Industry),
		ProfileExists:     profileExists,
	}

	a.logger.LogAgent("", AgentClientProfile, time.Since(startTime), map[string]interface{}{
		"client_name":        intake.ClientName,
		"profile_exists":     profileExists,
		"completeness_score": result.CompletenessScore,
	}, nil)

	return result, nil
}

func newProfile(intake models.IntakeRecord) *models.ClientProfile {
	now := time.Now()
	return &models.ClientProfile{
		Name:             intake.ClientName,
		Industry:         intake.Industry,
		Founded:          estimateFoundingYear(intake.Industry, intake.TechStack),
		CompanySize:      estimateCompanySize(intake.ProblemStatement, intake.TechStack),
		Region:           regionFor(intake.Industry),
		Stakeholders:     generateStakeholders(intake.ProblemStatement, intake.Industry),
		TechStack:        trimAll(intake.TechStack),
		PrimaryChallenge: primaryChallenge(intake.ProblemStatement),
		ProfileSource:    "generated",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// enhanceProfile applies the per-run merge policy: the tech stack grows by
// set union (exact string match), while current_project and business_context
// always reflect the latest run.
func enhanceProfile(profile *models.ClientProfile, intake models.IntakeRecord) {
	newTech := trimAll(intake.TechStack)
	profile.TechStack = mergeTechStacks(profile.TechStack, newTech)

	profile.CurrentProject = &models.CurrentProject{
		ProblemStatement: intake.ProblemStatement,
		Technologies:     newTech,
		ProjectType:      classifyProjectType(intake.ProblemStatement),
		ComplexityLevel:  assessComplexity(intake.ProblemStatement, intake.TechStack),
	}

	profile.BusinessContext = &models.BusinessContext{
		IndustryTrends:  industryTrends(intake.Industry),
		BusinessDrivers: businessDrivers(intake.ProblemStatement),
		SuccessMetrics:  suggestSuccessMetrics(intake.ProblemStatement),
		RiskFactors:     riskFactors(intake.Industry, intake.ProblemStatement),
	}

	profile.UpdatedAt = time.Now()
}

// mergeTechStacks unions two stacks preserving first-seen order. Matching is
// exact; "Node.js" and "node.js" remain distinct entries.
func mergeTechStacks(current, incoming []string) []string {
	seen := make(map[string]bool, len(current)+len(incoming))
	merged := make([]string, 0, len(current)+len(incoming))
	for _, tech := range append(append([]string{}, current...), incoming...) {
		if tech == "" || seen[tech] {
			continue
		}
		seen[tech] = true
		merged = append(merged, tech)
	}
	return merged
}

var companySizeIndicators = []string{
	"enterprise", "scale", "multiple", "integration", "complex",
	"large", "global", "distributed", "microservices",
}

func estimateCompanySize(problemStatement string, techStack []string) string {
	text := strings.ToLower(problemStatement + " " + strings.Join(techStack, " "))
	score := 0
	for _, indicator := range companySizeIndicators {
		if strings.Contains(text, indicator) {
			score++
		}
	}
	switch {
	case score >= 3:
		return "Large (1000+ employees)"
	case score >= 1:
		return "Medium (100-1000 employees)"
	default:
		return "Small (10-100 employees)"
	}
}

var modernTech = []string{"react", "node.js", "kubernetes", "docker", "aws", "microservices"}

func estimateFoundingYear(industry string, techStack []string) int {
	currentYear := time.Now().Year()
	techLower := strings.ToLower(strings.Join(techStack, " "))

	modernScore := 0
	for _, tech := range modernTech {
		if strings.Contains(techLower, tech) {
			modernScore++
		}
	}

	switch {
	case modernScore >= 2:
		return currentYear - (5 + modernScore*2)
	case strings.EqualFold(industry, "automotive") || strings.EqualFold(industry, "healthcare"):
		return currentYear - (20 + modernScore*5)
	default:
		return currentYear - (10 + modernScore*3)
	}
}

var industryRegions = map[string]string{
	"automotive":    "USA, Europe, Asia",
	"healthcare":    "USA, Canada",
	"retail":        "Global",
	"technology":    "USA, Europe",
	"finance":       "USA, Europe, Asia",
	"manufacturing": "USA, Europe, Asia",
}

func regionFor(industry string) string {
	if region, ok := industryRegions[strings.ToLower(industry)]; ok {
		return region
	}
	return "USA"
}

func generateStakeholders(problemStatement, industry string) []models.Stakeholder {
	problemLower := strings.ToLower(problemStatement)

	// Tech projects always get a CTO.
	stakeholders := []models.Stakeholder{{Name: "Technical Lead", Role: "CTO"}}

	if strings.Contains(problemLower, "lead management") || strings.Contains(problemLower, "sales") {
		stakeholders = append(stakeholders, models.Stakeholder{Name: "Sales Director", Role: "VP of Sales"})
	}
	if strings.Contains(problemLower, "patient") || strings.Contains(strings.ToLower(industry), "healthcare") {
		stakeholders = append(stakeholders, models.Stakeholder{Name: "Compliance Officer", Role: "Compliance Officer"})
	}
	if strings.Contains(problemLower, "checkout") || strings.Contains(problemLower, "e-commerce") {
		stakeholders = append(stakeholders, models.Stakeholder{Name: "Marketing Lead", Role: "VP of Marketing"})
	}
	if strings.Contains(problemLower, "product") {
		stakeholders = append(stakeholders, models.Stakeholder{Name: "Product Manager", Role: "VP of Product"})
	}

	if len(stakeholders) < 2 {
		stakeholders = append(stakeholders, models.Stakeholder{Name: "Project Manager", Role: "Project Manager"})
	}

	return stakeholders
}

func primaryChallenge(problemStatement string) string {
	problemLower := strings.ToLower(problemStatement)
	switch {
	case strings.Contains(problemLower, "lead management"):
		return "Lead Management and Conversion"
	case strings.Contains(problemLower, "patient record"):
		return "Healthcare Data Management and Compliance"
	case strings.Contains(problemLower, "checkout"):
		return "E-commerce Conversion Optimization"
	case strings.Contains(problemLower, "optimization"):
		return "Process Optimization"
	case strings.Contains(problemLower, "integration"):
		return "System Integration"
	default:
		return "Digital Transformation"
	}
}

func classifyProjectType(problemStatement string) string {
	problemLower := strings.ToLower(problemStatement)
	switch {
	case strings.Contains(problemLower, "implement") || strings.Contains(problemLower, "develop"):
		return "Implementation"
	case strings.Contains(problemLower, "optimize") || strings.Contains(problemLower, "improve"):
		return "Optimization"
	case strings.Contains(problemLower, "integrate"):
		return "Integration"
	case strings.Contains(problemLower, "migrate"):
		return "Migration"
	default:
		return "Custom Development"
	}
}

var complexityFactors = []string{
	"integration", "compliance", "scale", "multiple", "complex",
	"enterprise", "distributed", "microservices", "real-time",
}

func assessComplexity(problemStatement string, techStack []string) string {
	text := strings.ToLower(problemStatement + " " + strings.Join(techStack, " "))
	score := 0
	for _, factor := range complexityFactors {
		if strings.Contains(text, factor) {
			score++
		}
	}
	switch {
	case score >= 4:
		return "High"
	case score >= 2:
		return "Medium"
	default:
		return "Low"
	}
}

var industryTrendTable = map[string][]string{
	"automotive": {"Digital transformation", "Connected vehicles", "Data analytics"},
	"healthcare": {"Digital health records", "Telemedicine", "AI diagnostics"},
	"retail":     {"Omnichannel experience", "Mobile commerce", "Personalization"},
}

func industryTrends(industry string) []string {
	if trends, ok := industryTrendTable[strings.ToLower(industry)]; ok {
		return trends
	}
	return []string{"Digital transformation", "Cloud adoption"}
}

func businessDrivers(problemStatement string) []string {
	problemLower := strings.ToLower(problemStatement)
	drivers := []string{}

	if strings.Contains(problemLower, "efficiency") || strings.Contains(problemLower, "optimize") {
		drivers = append(drivers, "Operational efficiency")
	}
	if strings.Contains(problemLower, "customer") || strings.Contains(problemLower, "user") {
		drivers = append(drivers, "Customer experience")
	}
	if strings.Contains(problemLower, "cost") || strings.Contains(problemLower, "save") {
		drivers = append(drivers, "Cost reduction")
	}
	if strings.Contains(problemLower, "growth") || strings.Contains(problemLower, "scale") {
		drivers = append(drivers, "Business growth")
	}

	if len(drivers) == 0 {
		return []string{"Digital transformation"}
	}
	return drivers
}

func suggestSuccessMetrics(problemStatement string) []string {
	problemLower := strings.ToLower(problemStatement)
	switch {
	case strings.Contains(problemLower, "lead"):
		return []string{"Lead conversion rate", "Sales cycle time", "Lead quality score"}
	case strings.Contains(problemLower, "checkout"):
		return []string{"Conversion rate", "Cart abandonment rate", "Average order value"}
	case strings.Contains(problemLower, "patient"):
		return []string{"Data accuracy", "Compliance score", "User adoption rate"}
	default:
		return []string{"User adoption rate", "System performance", "ROI"}
	}
}

func riskFactors(industry, problemStatement string) []string {
	risks := []string{}

	if strings.EqualFold(industry, "healthcare") {
		risks = append(risks, "Regulatory compliance", "Data security")
	}
	problemLower := strings.ToLower(problemStatement)
	if strings.Contains(problemLower, "integration") {
		risks = append(risks, "System compatibility")
	}
	if strings.Contains(problemLower, "new") || strings.Contains(problemLower, "implement") {
		risks = append(risks, "User adoption")
	}

	if len(risks) == 0 {
		return []string{"Technical complexity", "Timeline constraints"}
	}
	return risks
}

func profileInsights(profile *models.ClientProfile, industry string) []string {
	insights := []string{}

	age := time.Now().Year() - profile.Founded
	if age < 5 {
		insights = append(insights, "Young company likely focused on rapid growth and scalability")
	} else if age > 20 {
		insights = append(insights, "Established company with potential legacy system challenges")
	}

	if len(profile.TechStack) > 3 {
		insights = append(insights, "Diverse technology stack suggests complex technical requirements")
	}
	if len(profile.Stakeholders) >= 3 {
		insights = append(insights, "Multiple stakeholders indicate need for comprehensive change management")
	}

	switch strings.ToLower(industry) {
	case "healthcare":
		insights = append(insights, "Healthcare industry requires strict compliance and security measures")
	case "retail":
		insights = append(insights, "Retail focus suggests emphasis on customer experience and conversion")
	}

	return insights
}

func trimAll(items []string) []string {
	trimmed := make([]string, 0, len(items))
	for _, item := range items {
		if cleaned := strings.TrimSpace(item); cleaned != "" {
			trimmed = append(trimmed, cleaned)
		}
	}
	return trimmed
}
