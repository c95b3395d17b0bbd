package agents

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
	"ksquare-onboarding/internal/scoring"
)

// MeetingsAgent analyzes the client's most recent meeting transcript. It
// degrades gracefully: no stored meetings yields an empty neutral result, and
// a failing sentiment backend falls back to neutral instead of aborting.
type MeetingsAgent struct {
	store     Store
	sentiment SentimentAnalyzer
	logger    *logger.Logger
}

func NewMeetingsAgent(store Store, sentiment SentimentAnalyzer, log *logger.Logger) *MeetingsAgent {
	return &MeetingsAgent{store: store, sentiment: sentiment, logger: log}
}

// Run analyzes the latest stored meeting for the client.
func (a *MeetingsAgent) Run(ctx context.Context, clientName string) (*models.MeetingAnalysisResult, error) {
	startTime := time.Now()

	meetings, err := a.store.GetMeetings(ctx, clientName)
	if err != nil {
		wrapped := models.WrapExternalError("meeting_lookup", err)
		a.logger.LogAgent("", AgentMeetings, time.Since(startTime), nil, wrapped)
		return nil, wrapped
	}

	if len(meetings) == 0 {
		a.logger.LogAgent("", AgentMeetings, time.Since(startTime), map[string]interface{}{
			"client_name":    clientName,
			"total_meetings": 0,
		}, nil)
		return emptyMeetingResult(clientName), nil
	}

	// Meetings are stored newest first.
	result := a.AnalyzeTranscript(ctx, clientName, meetings[0].Transcript)
	result.TotalMeetings = len(meetings)
	for _, meeting := range meetings {
		result.MeetingHistory = append(result.MeetingHistory, models.MeetingHistoryEntry{
			ID:   meeting.ID,
			Date: meeting.Date,
		})
	}

	a.logger.LogAgent("", AgentMeetings, time.Since(startTime), map[string]interface{}{
		"client_name":        clientName,
		"total_meetings":     len(meetings),
		"sentiment_category": result.Sentiment.Category,
		"action_items_count": len(result.ActionItems),
	}, nil)

	return result, nil
}

// AnalyzeTranscript runs the full transcript analysis. It never fails; the
// sentiment backend falling over produces a neutral result instead.
func (a *MeetingsAgent) AnalyzeTranscript(ctx context.Context, clientName, transcript string) *models.MeetingAnalysisResult {
	sentiment, err := a.sentiment.Analyze(ctx, transcript)
	if err != nil {
		a.logger.WithError(err).Warn("sentiment analysis unavailable, falling back to neutral")
		sentiment = models.SentimentResult{
			Category:    models.SentimentNeutral,
			Description: "Sentiment analysis unavailable",
		}
	}

	actionItems := ExtractActionItems(transcript)

	return &models.MeetingAnalysisResult{
		ClientName:        clientName,
		Sentiment:         sentiment,
		ActionItems:       actionItems,
		EngagementMetrics: CalculateEngagement(transcript),
		Topics:            extractTopics(transcript),
		Participants:      identifyParticipants(transcript),
		Summary:           meetingSummary(transcript, sentiment, actionItems),
		TranscriptLength:  len(transcript),
		TotalMeetings:     1,
		AnalyzedAt:        time.Now(),
	}
}

func emptyMeetingResult(clientName string) *models.MeetingAnalysisResult {
	return &models.MeetingAnalysisResult{
		ClientName: clientName,
		Sentiment: models.SentimentResult{
			Category:    models.SentimentNeutral,
			Description: "No meetings available for analysis",
		},
		ActionItems: []models.ActionItem{},
		EngagementMetrics: models.EngagementMetrics{
			ParticipationLevel: "low",
		},
		Topics:       []string{},
		Participants: []models.Participant{},
		Summary:      "No meetings found for client",
		AnalyzedAt:   time.Now(),
	}
}

var actionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`action item[s]?:?\s*([^.!?]+)`),
	regexp.MustCompile(`todo[s]?:?\s*([^.!?]+)`),
	regexp.MustCompile(`follow[- ]?up:?\s*([^.!?]+)`),
	regexp.MustCompile(`next step[s]?:?\s*([^.!?]+)`),
	regexp.MustCompile(`need[s]? to\s+([^.!?]+)`),
	regexp.MustCompile(`should\s+([^.!?]+)`),
	regexp.MustCompile(`will\s+([^.!?]+)`),
	regexp.MustCompile(`must\s+([^.!?]+)`),
}

// ExtractActionItems pulls action items from a transcript using the fixed
// pattern set, deduplicates case-insensitively, and keeps at most five.
func ExtractActionItems(transcript string) []models.ActionItem {
	transcriptLower := strings.ToLower(transcript)

	items := []models.ActionItem{}
	seen := map[string]bool{}

	for _, pattern := range actionPatterns {
		for _, match := range pattern.FindAllStringSubmatch(transcriptLower, -1) {
			text := strings.TrimSpace(match[1])
			if len(text) <= 10 {
				continue
			}
			key := strings.ToLower(text)
			if seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, models.ActionItem{
				Item:     capitalize(text),
				Priority: assessActionPriority(text),
				Type:     classifyActionType(text),
			})
			if len(items) == 5 {
				return items
			}
		}
	}

	return items
}

var (
	highPriorityWords   = []string{"urgent", "asap", "immediately", "critical", "must"}
	mediumPriorityWords = []string{"should", "need", "important", "soon"}
)

func assessActionPriority(actionText string) models.ActionPriority {
	actionLower := strings.ToLower(actionText)
	if containsAny(actionLower, highPriorityWords) {
		return models.PriorityHigh
	}
	if containsAny(actionLower, mediumPriorityWords) {
		return models.PriorityMedium
	}
	return models.PriorityLow
}

var actionTypeRules = []struct {
	actionType models.ActionType
	words      []string
}{
	{models.ActionPlanning, []string{"plan", "design", "architect"}},
	{models.ActionDevelopment, []string{"develop", "implement", "build", "code"}},
	{models.ActionTesting, []string{"test", "verify", "validate"}},
	{models.ActionReview, []string{"review", "approve", "check"}},
	{models.ActionCommunication, []string{"meet", "discuss", "call"}},
}

func classifyActionType(actionText string) models.ActionType {
	actionLower := strings.ToLower(actionText)
	for _, rule := range actionTypeRules {
		if containsAny(actionLower, rule.words) {
			return rule.actionType
		}
	}
	return models.ActionGeneral
}

var (
	engagementPattern = regexp.MustCompile(`engagement:?\s*(\d+)%?`)
	sentencePattern   = regexp.MustCompile(`[.!?]+`)
)

// CalculateEngagement derives engagement metrics from raw transcript counts.
// An explicit "Engagement: NN%" in the transcript overrides the computed
// score.
func CalculateEngagement(transcript string) models.EngagementMetrics {
	var explicit *int
	if match := engagementPattern.FindStringSubmatch(strings.ToLower(transcript)); match != nil {
		if value, err := strconv.Atoi(match[1]); err == nil {
			explicit = &value
		}
	}

	wordCount := len(strings.Fields(transcript))
	sentenceCount := len(sentencePattern.Split(transcript, -1))

	// Speaking pace of 150 words per minute, floor of one minute.
	estimatedDuration := math.Max(float64(wordCount)/150.0, 1)
	estimatedDuration = math.Round(estimatedDuration*10) / 10

	questionCount := strings.Count(transcript, "?")
	exclamationCount := strings.Count(transcript, "!")

	score := scoring.EngagementScore(wordCount, questionCount, exclamationCount, explicit)

	return models.EngagementMetrics{
		EngagementPercentage:     explicit,
		WordCount:                wordCount,
		SentenceCount:            sentenceCount,
		EstimatedDurationMinutes: estimatedDuration,
		QuestionCount:            questionCount,
		ExclamationCount:         exclamationCount,
		EngagementScore:          score,
		ParticipationLevel:       scoring.ParticipationLevel(score),
	}
}

var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"Technology", []string{"system", "platform", "software", "application", "tech", "development"}},
	{"Project Management", []string{"timeline", "deadline", "milestone", "project", "scope", "requirements"}},
	{"Business", []string{"revenue", "cost", "roi", "business", "strategy", "market"}},
	{"User Experience", []string{"user", "customer", "experience", "interface", "usability"}},
	{"Security", []string{"security", "compliance", "privacy", "encryption", "audit"}},
	{"Performance", []string{"performance", "speed", "optimization", "efficiency", "scalability"}},
}

func extractTopics(transcript string) []string {
	transcriptLower := strings.ToLower(transcript)
	topics := []string{}
	for _, entry := range topicKeywords {
		if containsAny(transcriptLower, entry.keywords) {
			topics = append(topics, entry.topic)
		}
	}
	return topics
}

var rolePatterns = []struct {
	role     string
	patterns []string
}{
	{"VP of Product", []string{"vp of product", "vice president of product", "product vp"}},
	{"CTO", []string{"cto", "chief technology officer", "tech lead"}},
	{"Marketing Lead", []string{"marketing lead", "marketing director", "marketing manager"}},
	{"Project Manager", []string{"project manager", "pm", "project lead"}},
	{"Developer", []string{"developer", "engineer", "programmer"}},
	{"Designer", []string{"designer", "ux", "ui"}},
}

func identifyParticipants(transcript string) []models.Participant {
	transcriptLower := strings.ToLower(transcript)
	participants := []models.Participant{}
	for _, entry := range rolePatterns {
		if containsAny(transcriptLower, entry.patterns) {
			participants = append(participants, models.Participant{Role: entry.role, Mentioned: true})
		}
	}
	return participants
}

var keyPhraseWords = []string{
	"implementation", "development", "optimization", "integration",
	"requirements", "timeline", "budget", "resources", "testing",
	"deployment", "maintenance", "support", "training", "documentation",
}

func extractKeyPhrases(transcript string) []string {
	transcriptLower := strings.ToLower(transcript)
	phrases := []string{}
	for _, word := range keyPhraseWords {
		if strings.Contains(transcriptLower, word) {
			phrases = append(phrases, capitalize(word))
			if len(phrases) == 5 {
				break
			}
		}
	}
	return phrases
}

func meetingSummary(transcript string, sentiment models.SentimentResult, actionItems []models.ActionItem) string {
	parts := []string{fmt.Sprintf("Meeting sentiment: %s", sentiment.Description)}

	if phrases := extractKeyPhrases(transcript); len(phrases) > 0 {
		if len(phrases) > 3 {
			phrases = phrases[:3]
		}
		parts = append(parts, fmt.Sprintf("Key topics discussed: %s", strings.Join(phrases, ", ")))
	}

	if count := len(actionItems); count > 0 {
		plural := "s"
		if count == 1 {
			plural = ""
		}
		parts = append(parts, fmt.Sprintf("Generated %d action item%s", count, plural))
	}

	return strings.Join(parts, ". ") + "."
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

func capitalize(text string) string {
	if text == "" {
		return text
	}
	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
