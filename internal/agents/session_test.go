package agents

import (
	"errors"
	"testing"
	"time"

	"ksquare-onboarding/internal/models"
)

func TestMemorySessionStorePutGet(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()

	store.Put(&ConversationSession{SessionID: "s-1", CreatedAt: time.Now()})

	session, err := store.Get("s-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if session.SessionID != "s-1" {
		t.Errorf("session id = %q", session.SessionID)
	}
	if session.LastActivity.IsZero() {
		t.Error("Put should stamp LastActivity")
	}
}

func TestMemorySessionStoreUnknownSession(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()

	_, err := store.Get("missing")
	if !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore(10 * time.Millisecond)
	defer store.Close()

	store.Put(&ConversationSession{SessionID: "s-1"})
	time.Sleep(25 * time.Millisecond)

	if _, err := store.Get("s-1"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("expired session should be gone, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expired session should be evicted, len = %d", store.Len())
	}
}

func TestClientInfoCompletion(t *testing.T) {
	info := &ClientInfo{}
	if got := info.CompletionPercentage(); got != 0 {
		t.Errorf("empty info completion = %v, want 0", got)
	}
	if len(info.MissingFields()) != 9 {
		t.Errorf("missing fields = %d, want 9", len(info.MissingFields()))
	}

	info = &ClientInfo{
		CompanyName:      "ShopTrend Inc.",
		Industry:         "Retail",
		ProblemStatement: "Optimize e-commerce platform checkout process",
		TechStack:        []string{"Shopify", "Node.js"},
		Timeline:         "Q4",
		Budget:           "$200k",
		TeamSize:         8,
		Location:         "Austin, TX",
	}

	// 8 of 9 fields: 88.9%, past the completion threshold.
	got := info.CompletionPercentage()
	if got < 80 || got >= 100 {
		t.Errorf("completion = %v, want within [80, 100)", got)
	}
	if missing := info.MissingFields(); len(missing) != 1 || missing[0] != "contact_info" {
		t.Errorf("missing fields = %v, want [contact_info]", missing)
	}

	intake := info.IntakeRecord()
	if intake.ClientName != "ShopTrend Inc." || len(intake.TechStack) != 2 {
		t.Errorf("intake conversion lost data: %+v", intake)
	}
}
