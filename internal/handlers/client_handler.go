package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ksquare-onboarding/internal/agents"
	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
)

// ClientHandler serves the stored client data directly: profiles, meeting
// history, the seeded use cases, and ad-hoc sentiment analysis.
type ClientHandler struct {
	store     agents.Store
	sentiment agents.SentimentAnalyzer
	logger    *logger.Logger
}

func NewClientHandler(store agents.Store, sentiment agents.SentimentAnalyzer, log *logger.Logger) *ClientHandler {
	return &ClientHandler{
		store:     store,
		sentiment: sentiment,
		logger:    log,
	}
}

func (h *ClientHandler) GetUseCases(c *gin.Context) {
	useCases, err := h.store.GetUseCases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"use_cases": useCases,
		"count":     len(useCases),
	})
}

func (h *ClientHandler) GetClientProfile(c *gin.Context) {
	profile, err := h.store.GetClientProfile(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ClientHandler) GetClientMeetings(c *gin.Context) {
	meetings, err := h.store.GetMeetings(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"client_name": c.Param("name"),
		"meetings":    meetings,
		"count":       len(meetings),
	})
}

type saveMeetingRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

// SaveClientMeeting records a new transcript for the client; the next
// workflow run will analyze it as the latest meeting.
func (h *ClientHandler) SaveClientMeeting(c *gin.Context) {
	var request saveMeetingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, models.NewValidationError("INVALID_REQUEST_BODY", err.Error()))
		return
	}

	meeting := models.MeetingRecord{
		ClientName: c.Param("name"),
		Transcript: request.Transcript,
	}
	if err := h.store.SaveMeeting(c.Request.Context(), meeting); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "saved"})
}

// SentimentDistribution summarizes sentiment across a client's meetings.
type SentimentDistribution struct {
	ClientName      string                           `json:"client_name"`
	TotalMeetings   int                              `json:"total_meetings"`
	Distribution    map[models.SentimentCategory]int `json:"distribution"`
	AveragePolarity float64                          `json:"average_polarity"`
}

// GetClientSentiment analyzes every stored meeting for the client and
// returns the category distribution. Meetings whose analysis fails count as
// neutral.
func (h *ClientHandler) GetClientSentiment(c *gin.Context) {
	clientName := c.Param("name")

	meetings, err := h.store.GetMeetings(c.Request.Context(), clientName)
	if err != nil {
		respondError(c, err)
		return
	}

	distribution := SentimentDistribution{
		ClientName:    clientName,
		TotalMeetings: len(meetings),
		Distribution: map[models.SentimentCategory]int{
			models.SentimentPositive: 0,
			models.SentimentNeutral:  0,
			models.SentimentNegative: 0,
		},
	}

	totalPolarity := 0.0
	for _, meeting := range meetings {
		result, err := h.sentiment.Analyze(c.Request.Context(), meeting.Transcript)
		if err != nil {
			distribution.Distribution[models.SentimentNeutral]++
			continue
		}
		distribution.Distribution[result.Category]++
		totalPolarity += result.Polarity
	}
	if len(meetings) > 0 {
		distribution.AveragePolarity = totalPolarity / float64(len(meetings))
	}

	c.JSON(http.StatusOK, distribution)
}

type analyzeSentimentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *ClientHandler) AnalyzeSentiment(c *gin.Context) {
	var request analyzeSentimentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, models.NewValidationError("INVALID_REQUEST_BODY", err.Error()))
		return
	}

	result, err := h.sentiment.Analyze(c.Request.Context(), request.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
