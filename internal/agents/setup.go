package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
	"ksquare-onboarding/internal/scoring"
)

// SetupAgent validates the intake tuple and matches it against the seeded
// use cases. It is the only stage allowed to reject a workflow on input
// grounds.
type SetupAgent struct {
	store  Store
	logger *logger.Logger
}

func NewSetupAgent(store Store, log *logger.Logger) *SetupAgent {
	return &SetupAgent{store: store, logger: log}
}

// Validate checks intake sufficiency without touching storage, so it can
// back the standalone validation endpoint too.
func (a *SetupAgent) Validate(intake models.IntakeRecord) models.ValidationResult {
	var errs []string

	if len(strings.TrimSpace(intake.ClientName)) < 2 {
		errs = append(errs, "client name must be at least 2 characters long")
	}
	if len(strings.TrimSpace(intake.Industry)) < 2 {
		errs = append(errs, "industry must be specified")
	}
	if len(strings.TrimSpace(intake.ProblemStatement)) < 10 {
		errs = append(errs, "problem statement must be at least 10 characters long")
	}
	if countNonEmptyEntries(intake.TechStack) == 0 {
		errs = append(errs, "technology stack must be specified")
	}

	if len(errs) > 0 {
		return models.ValidationResult{
			Valid:   false,
			Message: "input validation failed: " + strings.Join(errs, "; "),
			Errors:  errs,
		}
	}

	return models.ValidationResult{
		Valid:   true,
		Message: "input validation successful",
		CompletenessScore: scoring.SetupCompleteness(
			intake.ClientName, intake.Industry, intake.ProblemStatement, intake.TechStack,
		),
	}
}

func (a *SetupAgent) Run(ctx context.Context, intake models.IntakeRecord) (*models.SetupResult, error) {
	startTime := time.Now()

	validation := a.Validate(intake)
	if !validation.Valid {
		err := models.NewValidationError("SETUP_VALIDATION_FAILED", validation.Message)
		a.logger.LogAgent("", AgentProgrammeSetup, time.Since(startTime), nil, err)
		return nil, err
	}

	result := &models.SetupResult{
		ClientName:       intake.ClientName,
		Industry:         intake.Industry,
		ProblemStatement: intake.ProblemStatement,
		TechStack:        intake.TechStack,
		Validation:       validation,
	}

	useCases, err := a.store.GetUseCases(ctx)
	if err != nil {
		wrapped := models.WrapExternalError("use_case_lookup", err)
		a.logger.LogAgent("", AgentProgrammeSetup, time.Since(startTime), nil, wrapped)
		return nil, wrapped
	}

	for _, useCase := range useCases {
		if strings.EqualFold(useCase.ClientName, intake.ClientName) {
			result.UseCaseMatch = true
			result.UseCaseID = useCase.ID
			break
		}
	}

	a.logger.LogAgent("", AgentProgrammeSetup, time.Since(startTime), map[string]interface{}{
		"client_name":        intake.ClientName,
		"use_case_match":     result.UseCaseMatch,
		"completeness_score": validation.CompletenessScore,
	}, nil)

	return result, nil
}

// SetupSummary renders the confirmation text shown after a successful setup.
func SetupSummary(result *models.SetupResult) string {
	match := "No"
	if result.UseCaseMatch {
		match = "Yes"
	}
	return fmt.Sprintf(
		"Programme setup completed for %s (%s). Data completeness: %.2f. Use case match: %s.",
		result.ClientName, result.Industry, result.Validation.CompletenessScore, match,
	)
}

func countNonEmptyEntries(items []string) int {
	count := 0
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			count++
		}
	}
	return count
}
