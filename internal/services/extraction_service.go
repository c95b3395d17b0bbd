package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"ksquare-onboarding/internal/config"
	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
)

// RuleBasedExtractionService pulls client-intake fields out of free-form chat
// messages with pattern matching. It is the default extractor; a remote NLU
// backend can replace it through configuration.
type RuleBasedExtractionService struct {
	logger *logger.Logger
}

func NewRuleBasedExtractionService(log *logger.Logger) *RuleBasedExtractionService {
	return &RuleBasedExtractionService{logger: log}
}

var (
	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:we(?:'re| are)|this is|company (?:is )?(?:called )?|i work (?:at|for))\s+([A-Z][\w&.' -]{1,40}?)(?:[,.]|\s+(?:and|in|based|we)\b|$)`),
		regexp.MustCompile(`(?i)(?:on behalf of|representing)\s+([A-Z][\w&.' -]{1,40}?)(?:[,.]|$)`),
	}

	locationPattern = regexp.MustCompile(`(?i)(?:based in|located in|headquartered in|from)\s+([A-Z][\w' -]{1,40}?)(?:[.!?,]|\s+(?:and|we|with)\b|$)`)
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	budgetPattern   = regexp.MustCompile(`(?i)\$\s?[\d,]+(?:\.\d+)?\s*(?:k|m|million|thousand)?`)
	teamSizePattern = regexp.MustCompile(`(?i)(?:team of\s+(\d+)|(\d+)\s+(?:people|developers|engineers|person team))`)
	timelinePattern = regexp.MustCompile(`(?i)(q[1-4]\s*'?\d{2,4}|\d+\s*(?:weeks?|months?)|next (?:quarter|month|year)|end of (?:the )?year|asap)`)
	problemPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:we (?:need|want) to|looking to|trying to|our (?:goal|problem) is(?: to)?|help us)\s+([^.!?]{10,})`),
	}
)

// industryKeywords maps message vocabulary to canonical industry names.
var industryKeywords = map[string]string{
	"automotive":    "Automotive",
	"car":           "Automotive",
	"dealership":    "Automotive",
	"healthcare":    "Healthcare",
	"medical":       "Healthcare",
	"hospital":      "Healthcare",
	"patient":       "Healthcare",
	"retail":        "Retail",
	"e-commerce":    "Retail",
	"ecommerce":     "Retail",
	"store":         "Retail",
	"fintech":       "Finance",
	"banking":       "Finance",
	"finance":       "Finance",
	"insurance":     "Insurance",
	"logistics":     "Logistics",
	"manufacturing": "Manufacturing",
	"education":     "Education",
}

// knownTechnologies is matched case-insensitively; the canonical casing is
// what lands in the extracted stack.
var knownTechnologies = []string{
	"Salesforce", "Java", "Python", "JavaScript", "TypeScript", "Node.js",
	"React", "Angular", "Vue", "Django", "Spring", "AWS", "Azure", "GCP",
	"Shopify", "PostgreSQL", "MySQL", "MongoDB", "Redis", "Docker",
	"Kubernetes", "Go", "Ruby", "PHP", ".NET", "Kafka",
}

func (service *RuleBasedExtractionService) Extract(ctx context.Context, message string, known map[string]interface{}) (map[string]interface{}, error) {
	startTime := time.Now()
	extracted := map[string]interface{}{}

	has := func(field string) bool {
		value, ok := known[field]
		if !ok || value == nil {
			return false
		}
		if text, isString := value.(string); isString {
			return strings.TrimSpace(text) != ""
		}
		return true
	}

	if !has("company_name") {
		for _, pattern := range companyPatterns {
			if match := pattern.FindStringSubmatch(message); match != nil {
				extracted["company_name"] = strings.TrimSpace(match[1])
				break
			}
		}
	}

	if !has("industry") {
		messageLower := strings.ToLower(message)
		for keyword, industry := range industryKeywords {
			if strings.Contains(messageLower, keyword) {
				extracted["industry"] = industry
				break
			}
		}
	}

	if !has("problem_statement") {
		for _, pattern := range problemPatterns {
			if match := pattern.FindStringSubmatch(message); match != nil {
				extracted["problem_statement"] = strings.TrimSpace(match[1])
				break
			}
		}
	}

	if stack := extractTechnologies(message); len(stack) > 0 {
		extracted["tech_stack"] = stack
	}

	if !has("timeline") {
		if match := timelinePattern.FindString(message); match != "" {
			extracted["timeline"] = strings.TrimSpace(match)
		}
	}

	if !has("budget") {
		if match := budgetPattern.FindString(message); match != "" {
			extracted["budget"] = strings.TrimSpace(match)
		}
	}

	if !has("team_size") {
		if match := teamSizePattern.FindStringSubmatch(message); match != nil {
			digits := match[1]
			if digits == "" {
				digits = match[2]
			}
			if size, err := strconv.Atoi(digits); err == nil {
				extracted["team_size"] = size
			}
		}
	}

	if !has("location") {
		if match := locationPattern.FindStringSubmatch(message); match != nil {
			extracted["location"] = strings.TrimSpace(match[1])
		}
	}

	if !has("contact_info") {
		if match := emailPattern.FindString(message); match != "" {
			extracted["contact_info"] = match
		}
	}

	service.logger.LogService("extraction", "extract", time.Since(startTime), map[string]interface{}{
		"backend":          "rules",
		"fields_extracted": len(extracted),
	}, nil)
	return extracted, nil
}

func extractTechnologies(message string) []string {
	messageLower := strings.ToLower(message)

	found := []string{}
	for _, tech := range knownTechnologies {
		if strings.Contains(messageLower, strings.ToLower(tech)) {
			found = append(found, tech)
		}
	}
	return found
}

// RemoteExtractionService calls an external NLU backend behind a circuit
// breaker. Extraction is best-effort: callers treat an error as an empty
// result and keep the conversation going.
type RemoteExtractionService struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *logger.Logger
}

func NewRemoteExtractionService(cfg config.ExtractionConfig, log *logger.Logger) *RemoteExtractionService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "extraction-service",
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

	return &RemoteExtractionService{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		logger:     log,
	}
}

type remoteExtractionRequest struct {
	Message string                 `json:"message"`
	Known   map[string]interface{} `json:"known_fields,omitempty"`
}

func (service *RemoteExtractionService) Extract(ctx context.Context, message string, known map[string]interface{}) (map[string]interface{}, error) {
	startTime := time.Now()

	response, err := service.breaker.Execute(func() (interface{}, error) {
		return service.call(ctx, message, known)
	})
	if err != nil {
		service.logger.LogService("extraction", "extract", time.Since(startTime), map[string]interface{}{
			"backend": "remote",
		}, err)
		return nil, models.WrapExternalError("extraction", err)
	}

	fields := response.(map[string]interface{})
	service.logger.LogService("extraction", "extract", time.Since(startTime), map[string]interface{}{
		"backend":          "remote",
		"fields_extracted": len(fields),
	}, nil)
	return fields, nil
}

func (service *RemoteExtractionService) call(ctx context.Context, message string, known map[string]interface{}) (map[string]interface{}, error) {
	payload, err := json.Marshal(remoteExtractionRequest{Message: message, Known: known})
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, service.baseURL+"/extract", bytes.NewReader(payload))
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
		return nil, fmt.Errorf("extraction service returned status %d", httpResponse.StatusCode)
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(httpResponse.Body).Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}
