package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ksquare-onboarding/internal/pkg/logger"
)

// HealthChecker reports backing-store liveness for the health endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type RouterDeps struct {
	Workflow     *WorkflowHandler
	Conversation *ConversationHandler
	Client       *ClientHandler
	Health       HealthChecker
	Logger       *logger.Logger
	Production   bool
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(deps.Logger))

	router.GET("/health", healthHandler(deps.Health))

	api := router.Group("/api/v1")
	{
		workflows := api.Group("/workflows")
		{
			workflows.POST("", deps.Workflow.ExecuteWorkflow)
			workflows.GET("", deps.Workflow.GetAllWorkflows)
			workflows.POST("/validate", deps.Workflow.ValidateProgrammeData)
			workflows.POST("/agents/:name", deps.Workflow.ExecuteSingleAgent)
			workflows.GET("/:id", deps.Workflow.GetWorkflowStatus)
		}

		conversations := api.Group("/conversations")
		{
			conversations.POST("", deps.Conversation.StartConversation)
			conversations.POST("/messages", deps.Conversation.ProcessMessage)
			conversations.GET("/:id", deps.Conversation.GetSessionStatus)
		}

		clients := api.Group("/clients")
		{
			clients.GET("/:name/profile", deps.Client.GetClientProfile)
			clients.GET("/:name/meetings", deps.Client.GetClientMeetings)
			clients.POST("/:name/meetings", deps.Client.SaveClientMeeting)
			clients.GET("/:name/sentiment", deps.Client.GetClientSentiment)
			clients.GET("/:name/workflow", deps.Workflow.GetLatestClientWorkflow)
		}

		api.GET("/usecases", deps.Client.GetUseCases)
		api.GET("/dashboard", deps.Workflow.GetDashboard)
		api.GET("/knowledge/search", deps.Workflow.SearchKnowledgeBase)
		api.POST("/sentiment/analyze", deps.Client.AnalyzeSentiment)
	}

	return router
}

func healthHandler(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health != nil {
			if err := health.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unhealthy",
					"error":  err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		log.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(startTime).Milliseconds(),
			"client_ip", c.ClientIP())
	}
}
