package services

import (
	"context"
	"strings"
	"testing"

	"ksquare-onboarding/internal/models"
)

func TestLexiconAnalyzePositive(t *testing.T) {
	service := NewLexiconSentimentService(newTestLogger(t))

	result, err := service.Analyze(context.Background(), "The demo was great and the team made excellent progress.")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Category != models.SentimentPositive {
		t.Errorf("category = %q, want positive", result.Category)
	}
	if result.Polarity <= 0.1 {
		t.Errorf("polarity = %v, want above the positive threshold", result.Polarity)
	}
	if result.Description != "Positive sentiment detected" {
		t.Errorf("description = %q", result.Description)
	}
}

func TestLexiconAnalyzeNegative(t *testing.T) {
	service := NewLexiconSentimentService(newTestLogger(t))

	result, err := service.Analyze(context.Background(), "The stakeholders are worried about the delayed migration and the blocked integration.")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Category != models.SentimentNegative {
		t.Errorf("category = %q, want negative", result.Category)
	}
	if result.Confidence <= 0 {
		t.Errorf("confidence = %v, want positive magnitude", result.Confidence)
	}
}

func TestLexiconAnalyzeNeutralWithoutSentimentWords(t *testing.T) {
	service := NewLexiconSentimentService(newTestLogger(t))

	result, err := service.Analyze(context.Background(), "The meeting covered the quarterly schedule and staffing plan.")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Category != models.SentimentNeutral {
		t.Errorf("category = %q, want neutral", result.Category)
	}
	if result.Polarity != 0 {
		t.Errorf("polarity = %v, want 0", result.Polarity)
	}
}

func TestLexiconAnalyzeEmptyText(t *testing.T) {
	service := NewLexiconSentimentService(newTestLogger(t))

	result, err := service.Analyze(context.Background(), "")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Category != models.SentimentNeutral || result.Polarity != 0 {
		t.Errorf("empty text should be neutral: %+v", result)
	}
}

func TestSentenceAnalysisLimitAndTruncation(t *testing.T) {
	long := strings.Repeat("a", 150)
	text := "One. Two. Three. Four. Five. Six. " + long + "."

	sentences := analyzeSentences(text)
	if len(sentences) != 5 {
		t.Fatalf("sentence count = %d, want cap of 5", len(sentences))
	}

	truncated := analyzeSentences(long + ".")
	if len(truncated) != 1 {
		t.Fatalf("expected one sentence, got %d", len(truncated))
	}
	if !strings.HasSuffix(truncated[0].Text, "...") || len(truncated[0].Text) != 103 {
		t.Errorf("snippet not truncated to 100+ellipsis: %d chars", len(truncated[0].Text))
	}
}
