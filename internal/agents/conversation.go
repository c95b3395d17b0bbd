package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
)

const (
	conversationWelcome = "Hello! I'm excited to learn about your business and how K-Square can help you succeed. What brings you here today?"

	// A session completes once at least 80% of the client fields are filled.
	conversationCompletionThreshold = 80.0
)

// ConversationAgent runs the free-form intake chat. Field extraction goes
// through the Extractor; a degraded extractor just slows the conversation
// down rather than breaking it.
type ConversationAgent struct {
	extractor Extractor
	sessions  SessionStore
	store     Store
	logger    *logger.Logger
}

func NewConversationAgent(extractor Extractor, sessions SessionStore, store Store, log *logger.Logger) *ConversationAgent {
	return &ConversationAgent{
		extractor: extractor,
		sessions:  sessions,
		store:     store,
		logger:    log,
	}
}

// ConversationReply is the chat response payload.
type ConversationReply struct {
	SessionID            string     `json:"session_id"`
	Message              string     `json:"message"`
	ClientInfo           ClientInfo `json:"client_info"`
	CompletionPercentage float64    `json:"completion_percentage"`
	MissingFields        []string   `json:"missing_fields"`
	IsComplete           bool       `json:"is_complete"`
}

// Start opens a new session. An empty sessionID gets a generated one.
func (a *ConversationAgent) Start(ctx context.Context, sessionID string) (*ConversationReply, error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	session := &ConversationSession{
		SessionID: sessionID,
		CreatedAt: time.Now(),
	}
	session.Messages = append(session.Messages, ConversationMessage{
		Role:      "assistant",
		Content:   conversationWelcome,
		Timestamp: time.Now(),
	})
	a.sessions.Put(session)

	a.logger.Info("conversation session started", "session_id", sessionID)

	return a.reply(session, conversationWelcome), nil
}

// ProcessMessage handles one user turn. An unknown or expired session starts
// over instead of erroring.
func (a *ConversationAgent) ProcessMessage(ctx context.Context, sessionID, userMessage string) (*ConversationReply, error) {
	session, err := a.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			return a.Start(ctx, sessionID)
		}
		return nil, err
	}

	session.Messages = append(session.Messages, ConversationMessage{
		Role:      "user",
		Content:   userMessage,
		Timestamp: time.Now(),
	})

	a.extractInto(ctx, session, userMessage)

	response := a.nextPrompt(session)
	session.Messages = append(session.Messages, ConversationMessage{
		Role:      "assistant",
		Content:   response,
		Timestamp: time.Now(),
	})

	if session.ClientInfo.CompletionPercentage() >= conversationCompletionThreshold && !session.IsComplete {
		session.IsComplete = true
		a.saveCompletedSession(ctx, session)
	}

	a.sessions.Put(session)

	return a.reply(session, response), nil
}

// Status reports the current session state without advancing the dialogue.
func (a *ConversationAgent) Status(sessionID string) (*ConversationReply, error) {
	session, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return a.reply(session, ""), nil
}

func (a *ConversationAgent) reply(session *ConversationSession, message string) *ConversationReply {
	return &ConversationReply{
		SessionID:            session.SessionID,
		Message:              message,
		ClientInfo:           session.ClientInfo,
		CompletionPercentage: session.ClientInfo.CompletionPercentage(),
		MissingFields:        session.ClientInfo.MissingFields(),
		IsComplete:           session.IsComplete,
	}
}

func (a *ConversationAgent) extractInto(ctx context.Context, session *ConversationSession, userMessage string) {
	known := map[string]interface{}{
		"company_name":      session.ClientInfo.CompanyName,
		"industry":          session.ClientInfo.Industry,
		"problem_statement": session.ClientInfo.ProblemStatement,
		"tech_stack":        session.ClientInfo.TechStack,
	}

	extracted, err := a.extractor.Extract(ctx, userMessage, known)
	if err != nil {
		a.logger.WithError(err).Warn("information extraction unavailable", "session_id", session.SessionID)
		return
	}

	info := &session.ClientInfo
	if value := asString(extracted["company_name"]); value != "" {
		info.CompanyName = value
	}
	if value := asString(extracted["industry"]); value != "" {
		info.Industry = value
	}
	if value := asString(extracted["problem_statement"]); value != "" {
		info.ProblemStatement = value
	}
	if values := asStringSlice(extracted["tech_stack"]); len(values) > 0 {
		info.TechStack = values
	}
	if value := asString(extracted["timeline"]); value != "" {
		info.Timeline = value
	}
	if value := asString(extracted["budget"]); value != "" {
		info.Budget = value
	}
	if size := asInt(extracted["team_size"]); size > 0 {
		info.TeamSize = size
	}
	if value := asString(extracted["location"]); value != "" {
		info.Location = value
	}
	if contact := asStringMap(extracted["contact_info"]); len(contact) > 0 {
		if info.ContactInfo == nil {
			info.ContactInfo = map[string]string{}
		}
		for key, value := range contact {
			info.ContactInfo[key] = value
		}
	}
}

// fieldPrompts pairs each missing field with its follow-up question, in
// priority order.
var fieldPrompts = []struct {
	field  string
	prompt string
}{
	{"company_name", "What is the client name?"},
	{"industry", "What industry does the client operate in?"},
	{"problem_statement", "Please describe the problem statement or project requirements."},
	{"tech_stack", "What technologies or tech stack will be used?"},
	{"timeline", "What timeline are you working towards?"},
	{"budget", "Do you have a budget range in mind for this project?"},
	{"team_size", "How large is the team that will be involved?"},
	{"location", "Where is the company or team located?"},
	{"contact_info", "What is the best way to reach you going forward?"},
}

func (a *ConversationAgent) nextPrompt(session *ConversationSession) string {
	if session.ClientInfo.CompletionPercentage() >= conversationCompletionThreshold {
		return "Great! I have all the information needed. Processing your programme setup..."
	}

	missing := map[string]bool{}
	for _, field := range session.ClientInfo.MissingFields() {
		missing[field] = true
	}

	for _, entry := range fieldPrompts {
		if missing[entry.field] {
			return "Thanks for sharing that. " + entry.prompt
		}
	}

	return "Please confirm if this information is complete and accurate."
}

// saveCompletedSession persists the finished conversation as a meeting
// transcript so the meetings stage can pick it up later.
func (a *ConversationAgent) saveCompletedSession(ctx context.Context, session *ConversationSession) {
	if session.ClientInfo.CompanyName == "" {
		return
	}

	var builder strings.Builder
	for i, message := range session.Messages {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(fmt.Sprintf("%s: %s", capitalize(message.Role), message.Content))
	}

	meeting := models.MeetingRecord{
		ID:         uuid.New().String(),
		ClientName: session.ClientInfo.CompanyName,
		Transcript: builder.String(),
		Date:       time.Now(),
	}

	if err := a.store.SaveMeeting(ctx, meeting); err != nil {
		a.logger.WithError(err).Warn("failed to persist completed conversation", "session_id", session.SessionID)
		return
	}

	a.logger.Info("conversation session completed",
		"session_id", session.SessionID,
		"client_name", session.ClientInfo.CompanyName,
	)
}

func asString(value interface{}) string {
	text, _ := value.(string)
	return strings.TrimSpace(text)
}

func asStringSlice(value interface{}) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case []interface{}:
		result := make([]string, 0, len(typed))
		for _, item := range typed {
			if text := asString(item); text != "" {
				result = append(result, text)
			}
		}
		return result
	case string:
		if typed == "" {
			return nil
		}
		parts := strings.Split(typed, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if text := strings.TrimSpace(part); text != "" {
				result = append(result, text)
			}
		}
		return result
	default:
		return nil
	}
}

func asInt(value interface{}) int {
	switch typed := value.(type) {
	case int:
		return typed
	case float64:
		return int(typed)
	default:
		return 0
	}
}

func asStringMap(value interface{}) map[string]string {
	switch typed := value.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		result := make(map[string]string, len(typed))
		for key, item := range typed {
			if text := asString(item); text != "" {
				result[key] = text
			}
		}
		return result
	default:
		return nil
	}
}
