package agents

import (
	"context"
	"strings"
	"testing"

	"ksquare-onboarding/internal/config"
	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	testLogger, err := logger.New(config.LogConfig{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return testLogger
}

// mockStore is an in-memory Store with per-method error injection.
type mockStore struct {
	useCases []models.UseCase
	profiles map[string]*models.ClientProfile
	meetings map[string][]models.MeetingRecord

	useCasesErr error
	profileErr  error
	saveErr     error
	meetingsErr error

	savedProfiles []*models.ClientProfile
	savedMeetings []models.MeetingRecord
}

func newMockStore() *mockStore {
	return &mockStore{
		profiles: map[string]*models.ClientProfile{},
		meetings: map[string][]models.MeetingRecord{},
	}
}

func (m *mockStore) GetUseCases(ctx context.Context) ([]models.UseCase, error) {
	if m.useCasesErr != nil {
		return nil, m.useCasesErr
	}
	return m.useCases, nil
}

func (m *mockStore) GetClientProfile(ctx context.Context, clientName string) (*models.ClientProfile, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	profile, ok := m.profiles[strings.ToLower(clientName)]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (m *mockStore) SaveClientProfile(ctx context.Context, profile *models.ClientProfile) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.profiles[strings.ToLower(profile.Name)] = profile
	m.savedProfiles = append(m.savedProfiles, profile)
	return nil
}

func (m *mockStore) GetMeetings(ctx context.Context, clientName string) ([]models.MeetingRecord, error) {
	if m.meetingsErr != nil {
		return nil, m.meetingsErr
	}
	return m.meetings[strings.ToLower(clientName)], nil
}

func (m *mockStore) SaveMeeting(ctx context.Context, meeting models.MeetingRecord) error {
	key := strings.ToLower(meeting.ClientName)
	m.meetings[key] = append([]models.MeetingRecord{meeting}, m.meetings[key]...)
	m.savedMeetings = append(m.savedMeetings, meeting)
	return nil
}

// mockSentiment returns a fixed result or a fixed error.
type mockSentiment struct {
	result models.SentimentResult
	err    error
}

func (m *mockSentiment) Analyze(ctx context.Context, text string) (models.SentimentResult, error) {
	if m.err != nil {
		return models.SentimentResult{}, m.err
	}
	return m.result, nil
}

// mockExtractor replays a canned extraction map.
type mockExtractor struct {
	fields map[string]interface{}
	err    error
	calls  int
}

func (m *mockExtractor) Extract(ctx context.Context, message string, known map[string]interface{}) (map[string]interface{}, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.fields, nil
}
