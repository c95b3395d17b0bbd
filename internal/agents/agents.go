// Package agents implements the five onboarding agents. Each agent is a
// small struct holding its dependencies; all heavy lifting lives in pure
// helpers so the agents stay testable without infrastructure.
package agents

import (
	"context"

	"ksquare-onboarding/internal/models"
)

// Agent names as exposed through the single-agent execution API.
const (
	AgentProgrammeSetup     = "programme_setup"
	AgentDomainKnowledge    = "domain_knowledge"
	AgentClientProfile      = "client_profile"
	AgentMeetings           = "meetings"
	AgentActionableInsights = "actionable_insights"
)

// Store is the persistence surface the agents need. services.RedisService
// satisfies it.
type Store interface {
	GetUseCases(ctx context.Context) ([]models.UseCase, error)
	GetClientProfile(ctx context.Context, clientName string) (*models.ClientProfile, error)
	SaveClientProfile(ctx context.Context, profile *models.ClientProfile) error
	GetMeetings(ctx context.Context, clientName string) ([]models.MeetingRecord, error)
	SaveMeeting(ctx context.Context, meeting models.MeetingRecord) error
}

// SentimentAnalyzer scores a transcript. Implementations degrade to a neutral
// result rather than failing the meeting analysis.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (models.SentimentResult, error)
}

// Extractor pulls structured client fields out of a free-form chat message.
// A degraded implementation may return an empty map.
type Extractor interface {
	Extract(ctx context.Context, message string, known map[string]interface{}) (map[string]interface{}, error)
}
