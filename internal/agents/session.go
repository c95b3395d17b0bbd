package agents

import (
	"sync"
	"time"

	"ksquare-onboarding/internal/models"
)

// ClientInfo is the set of fields the conversational intake collects. A
// session is considered complete once 80% of the fields are filled.
type ClientInfo struct {
	CompanyName      string            `json:"company_name,omitempty"`
	Industry         string            `json:"industry,omitempty"`
	ProblemStatement string            `json:"problem_statement,omitempty"`
	TechStack        []string          `json:"tech_stack,omitempty"`
	Timeline         string            `json:"timeline,omitempty"`
	Budget           string            `json:"budget,omitempty"`
	TeamSize         int               `json:"team_size,omitempty"`
	Location         string            `json:"location,omitempty"`
	ContactInfo      map[string]string `json:"contact_info,omitempty"`
}

const clientInfoFieldCount = 9

func (ci *ClientInfo) filledCount() int {
	filled := 0
	if ci.CompanyName != "" {
		filled++
	}
	if ci.Industry != "" {
		filled++
	}
	if ci.ProblemStatement != "" {
		filled++
	}
	if len(ci.TechStack) > 0 {
		filled++
	}
	if ci.Timeline != "" {
		filled++
	}
	if ci.Budget != "" {
		filled++
	}
	if ci.TeamSize > 0 {
		filled++
	}
	if ci.Location != "" {
		filled++
	}
	if len(ci.ContactInfo) > 0 {
		filled++
	}
	return filled
}

func (ci *ClientInfo) CompletionPercentage() float64 {
	return float64(ci.filledCount()) / clientInfoFieldCount * 100
}

func (ci *ClientInfo) MissingFields() []string {
	missing := []string{}
	if ci.CompanyName == "" {
		missing = append(missing, "company_name")
	}
	if ci.Industry == "" {
		missing = append(missing, "industry")
	}
	if ci.ProblemStatement == "" {
		missing = append(missing, "problem_statement")
	}
	if len(ci.TechStack) == 0 {
		missing = append(missing, "tech_stack")
	}
	if ci.Timeline == "" {
		missing = append(missing, "timeline")
	}
	if ci.Budget == "" {
		missing = append(missing, "budget")
	}
	if ci.TeamSize == 0 {
		missing = append(missing, "team_size")
	}
	if ci.Location == "" {
		missing = append(missing, "location")
	}
	if len(ci.ContactInfo) == 0 {
		missing = append(missing, "contact_info")
	}
	return missing
}

// IntakeRecord converts the collected fields into a workflow intake tuple.
func (ci *ClientInfo) IntakeRecord() models.IntakeRecord {
	return models.IntakeRecord{
		ClientName:       ci.CompanyName,
		Industry:         ci.Industry,
		ProblemStatement: ci.ProblemStatement,
		TechStack:        ci.TechStack,
	}
}

type ConversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type ConversationSession struct {
	SessionID    string                `json:"session_id"`
	Messages     []ConversationMessage `json:"messages"`
	ClientInfo   ClientInfo            `json:"client_info"`
	IsComplete   bool                  `json:"is_complete"`
	CreatedAt    time.Time             `json:"created_at"`
	LastActivity time.Time             `json:"last_activity"`
}

// SessionStore holds in-flight conversation sessions. Implementations expire
// idle sessions after their TTL.
type SessionStore interface {
	Get(sessionID string) (*ConversationSession, error)
	Put(session *ConversationSession)
	Delete(sessionID string)
	Close()
}

// MemorySessionStore is the in-process SessionStore. A background sweeper
// reaps sessions idle past the TTL.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*ConversationSession
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	store := &MemorySessionStore{
		sessions: make(map[string]*ConversationSession),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go store.sweep()
	return store
}

func (s *MemorySessionStore) Get(sessionID string) (*ConversationSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, models.ErrSessionNotFound.WithMetadata("session_id", sessionID)
	}
	if time.Since(session.LastActivity) > s.ttl {
		s.Delete(sessionID)
		return nil, models.ErrSessionNotFound.WithMetadata("session_id", sessionID)
	}
	return session, nil
}

func (s *MemorySessionStore) Put(session *ConversationSession) {
	session.LastActivity = time.Now()
	s.mu.Lock()
	s.sessions[session.SessionID] = session
	s.mu.Unlock()
}

func (s *MemorySessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemorySessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemorySessionStore) sweep() {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for id, session := range s.sessions {
				if session.LastActivity.Before(cutoff) {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
