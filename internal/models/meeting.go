package models

import "time"

// MeetingRecord is a stored meeting, newest first in the store.
type MeetingRecord struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Transcript string    `json:"transcript"`
	Date       time.Time `json:"date"`
}

type SentimentCategory string

const (
	SentimentPositive SentimentCategory = "positive"
	SentimentNeutral  SentimentCategory = "neutral"
	SentimentNegative SentimentCategory = "negative"
)

type SentimentResult struct {
	Polarity     float64            `json:"polarity"`
	Subjectivity float64            `json:"subjectivity"`
	Category     SentimentCategory  `json:"category"`
	Description  string             `json:"description"`
	Confidence   float64            `json:"confidence"`
	Sentences    []SentenceSentiment `json:"sentence_analysis,omitempty"`
}

type SentenceSentiment struct {
	Text     string  `json:"text"`
	Polarity float64 `json:"polarity"`
}

type ActionPriority string

const (
	PriorityLow    ActionPriority = "low"
	PriorityMedium ActionPriority = "medium"
	PriorityHigh   ActionPriority = "high"
)

type ActionType string

const (
	ActionPlanning      ActionType = "planning"
	ActionDevelopment   ActionType = "development"
	ActionTesting       ActionType = "testing"
	ActionReview        ActionType = "review"
	ActionCommunication ActionType = "communication"
	ActionGeneral       ActionType = "general"
)

type ActionItem struct {
	Item     string         `json:"item"`
	Priority ActionPriority `json:"priority"`
	Type     ActionType     `json:"type"`
}

type EngagementMetrics struct {
	// EngagementPercentage is set only when the transcript states it
	// explicitly ("Engagement: 80%"); it then overrides the computed score.
	EngagementPercentage     *int    `json:"engagement_percentage,omitempty"`
	WordCount                int     `json:"word_count"`
	SentenceCount            int     `json:"sentence_count"`
	EstimatedDurationMinutes float64 `json:"estimated_duration_minutes"`
	QuestionCount            int     `json:"question_count"`
	ExclamationCount         int     `json:"exclamation_count"`
	EngagementScore          float64 `json:"engagement_score"`
	ParticipationLevel       string  `json:"participation_level"`
}

type Participant struct {
	Role      string `json:"role"`
	Mentioned bool   `json:"mentioned"`
}

type MeetingHistoryEntry struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
}

type MeetingAnalysisResult struct {
	ClientName        string                `json:"client_name"`
	Sentiment         SentimentResult       `json:"sentiment"`
	ActionItems       []ActionItem          `json:"action_items"`
	EngagementMetrics EngagementMetrics     `json:"engagement_metrics"`
	Topics            []string              `json:"topics"`
	Participants      []Participant         `json:"participants"`
	Summary           string                `json:"summary"`
	TranscriptLength  int                   `json:"transcript_length"`
	TotalMeetings     int                   `json:"total_meetings"`
	MeetingHistory    []MeetingHistoryEntry `json:"meeting_history,omitempty"`
	AnalyzedAt        time.Time             `json:"analysis_timestamp"`
}
