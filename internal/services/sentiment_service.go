package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"ksquare-onboarding/internal/config"
	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
	"ksquare-onboarding/internal/scoring"
)

const (
	sentimentSentenceLimit = 5
	sentimentSnippetMaxLen = 100
)

var sentenceSplitPattern = regexp.MustCompile(`[.!?]+`)

// sentimentLexicon maps sentiment-bearing words to polarity weights in
// [-1, 1]. Transcript language is business-meeting English, so the lexicon
// leans on evaluation and progress vocabulary.
var sentimentLexicon = map[string]float64{
	"excellent":   0.9,
	"great":       0.8,
	"good":        0.6,
	"positive":    0.6,
	"happy":       0.7,
	"excited":     0.7,
	"impressive":  0.7,
	"success":     0.6,
	"successful":  0.6,
	"progress":    0.5,
	"improved":    0.5,
	"improvement": 0.5,
	"clear":       0.3,
	"agreed":      0.4,
	"aligned":     0.4,
	"confident":   0.5,
	"helpful":     0.4,
	"productive":  0.5,
	"emphasized":  0.2,
	"opportunity": 0.3,

	"bad":          -0.6,
	"poor":         -0.6,
	"negative":     -0.6,
	"concern":      -0.4,
	"concerned":    -0.5,
	"concerns":     -0.4,
	"worried":      -0.6,
	"problem":      -0.4,
	"problems":     -0.4,
	"issue":        -0.3,
	"issues":       -0.3,
	"blocked":      -0.6,
	"blocker":      -0.6,
	"delay":        -0.5,
	"delayed":      -0.5,
	"risk":         -0.3,
	"risky":        -0.5,
	"frustrated":   -0.7,
	"disappointed": -0.7,
	"unclear":      -0.4,
	"confusion":    -0.4,
	"failed":       -0.7,
	"failure":      -0.7,
}

var wordPattern = regexp.MustCompile(`[a-zA-Z']+`)

// LexiconSentimentService scores text against the built-in lexicon. It is the
// default analyzer and needs no external backend.
type LexiconSentimentService struct {
	logger *logger.Logger
}

func NewLexiconSentimentService(log *logger.Logger) *LexiconSentimentService {
	return &LexiconSentimentService{logger: log}
}

func (service *LexiconSentimentService) Analyze(ctx context.Context, text string) (models.SentimentResult, error) {
	startTime := time.Now()

	polarity, subjectivity := scoreText(text)
	result := buildSentimentResult(text, polarity, subjectivity)

	service.logger.LogService("sentiment", "analyze", time.Since(startTime), map[string]interface{}{
		"backend":  "lexicon",
		"polarity": result.Polarity,
		"category": result.Category,
	}, nil)
	return result, nil
}

// scoreText averages lexicon weights over matched words. Subjectivity is the
// fraction of words that carry sentiment at all.
func scoreText(text string) (polarity, subjectivity float64) {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return 0, 0
	}

	total := 0.0
	matches := 0
	for _, word := range words {
		if weight, ok := sentimentLexicon[word]; ok {
			total += weight
			matches++
		}
	}

	if matches > 0 {
		polarity = total / float64(matches)
	}
	subjectivity = float64(matches) / float64(len(words))
	if subjectivity > 1.0 {
		subjectivity = 1.0
	}
	return polarity, subjectivity
}

func buildSentimentResult(text string, polarity, subjectivity float64) models.SentimentResult {
	category := scoring.CategorizeSentiment(polarity)

	confidence := polarity
	if confidence < 0 {
		confidence = -confidence
	}

	return models.SentimentResult{
		Polarity:     polarity,
		Subjectivity: subjectivity,
		Category:     category,
		Description:  sentimentDescription(category),
		Confidence:   confidence,
		Sentences:    analyzeSentences(text),
	}
}

func sentimentDescription(category models.SentimentCategory) string {
	switch category {
	case models.SentimentPositive:
		return "Positive sentiment detected"
	case models.SentimentNegative:
		return "Negative sentiment detected"
	default:
		return "Neutral sentiment"
	}
}

// analyzeSentences scores the first few sentences individually so callers can
// show where the sentiment comes from. Snippets are truncated for display.
func analyzeSentences(text string) []models.SentenceSentiment {
	sentences := sentenceSplitPattern.Split(text, -1)

	analyzed := []models.SentenceSentiment{}
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if len(analyzed) >= sentimentSentenceLimit {
			break
		}

		snippet := sentence
		if len(snippet) > sentimentSnippetMaxLen {
			snippet = snippet[:sentimentSnippetMaxLen] + "..."
		}
		polarity, _ := scoreText(sentence)
		analyzed = append(analyzed, models.SentenceSentiment{
			Text:     snippet,
			Polarity: polarity,
		})
	}
	return analyzed
}

// RemoteSentimentService calls an external sentiment backend behind a circuit
// breaker. Category and confidence are derived locally from the returned
// polarity so both backends classify identically.
type RemoteSentimentService struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *logger.Logger
}

func NewRemoteSentimentService(cfg config.SentimentConfig, log *logger.Logger) *RemoteSentimentService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sentiment-service",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	return &RemoteSentimentService{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		logger:     log,
	}
}

type remoteSentimentRequest struct {
	Text string `json:"text"`
}

type remoteSentimentResponse struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

func (service *RemoteSentimentService) Analyze(ctx context.Context, text string) (models.SentimentResult, error) {
	startTime := time.Now()

	response, err := service.breaker.Execute(func() (interface{}, error) {
		return service.call(ctx, text)
	})
	if err != nil {
		service.logger.LogService("sentiment", "analyze", time.Since(startTime), map[string]interface{}{
			"backend": "remote",
		}, err)
		return models.SentimentResult{}, models.WrapExternalError("sentiment", err)
	}

	remote := response.(*remoteSentimentResponse)
	result := buildSentimentResult(text, remote.Polarity, remote.Subjectivity)

	service.logger.LogService("sentiment", "analyze", time.Since(startTime), map[string]interface{}{
		"backend":  "remote",
		"polarity": result.Polarity,
		"category": result.Category,
	}, nil)
	return result, nil
}

func (service *RemoteSentimentService) call(ctx context.Context, text string) (*remoteSentimentResponse, error) {
	payload, err := json.Marshal(remoteSentimentRequest{Text: text})
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, service.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")

	httpResponse, err := service.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sentiment service returned status %d", httpResponse.StatusCode)
	}

	var remote remoteSentimentResponse
	if err := json.NewDecoder(httpResponse.Body).Decode(&remote); err != nil {
		return nil, err
	}
	return &remote, nil
}
