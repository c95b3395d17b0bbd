package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ksquare-onboarding/internal/agents"
	"ksquare-onboarding/internal/config"
	"ksquare-onboarding/internal/handlers"
	"ksquare-onboarding/internal/pkg/logger"
	"ksquare-onboarding/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Starting Client Onboarding Service",
		"environment", cfg.Environment,
		"port", cfg.HTTP.Port)

	redisService, err := services.NewRedisService(cfg.Redis, log)
	if err != nil {
		log.WithError(err).Error("Failed to initialize Redis service")
		os.Exit(1)
	}

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := redisService.SeedUseCases(seedCtx); err != nil {
		cancelSeed()
		log.WithError(err).Error("Failed to seed use cases")
		os.Exit(1)
	}
	cancelSeed()

	sentiment := newSentimentAnalyzer(cfg, log)
	extractor := newExtractor(cfg, log)

	orchestrator := services.NewOrchestrator(redisService, sentiment, log, cfg.Workflow)

	sessions := agents.NewMemorySessionStore(cfg.Workflow.SessionTTL)
	conversation := agents.NewConversationAgent(extractor, sessions, redisService, log)

	router := handlers.NewRouter(handlers.RouterDeps{
		Workflow:     handlers.NewWorkflowHandler(orchestrator, log),
		Conversation: handlers.NewConversationHandler(conversation, log),
		Client:       handlers.NewClientHandler(redisService, sentiment, log),
		Health:       redisService,
		Logger:       log,
		Production:   cfg.IsProduction(),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutdown signal received, draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	if err := orchestrator.Close(); err != nil {
		log.WithError(err).Error("Orchestrator shutdown failed")
	}
	sessions.Close()
	if err := redisService.Close(); err != nil {
		log.WithError(err).Error("Redis shutdown failed")
	}

	log.Info("Shutdown complete")
}

// newSentimentAnalyzer selects the remote backend when configured, the
// built-in lexicon otherwise.
func newSentimentAnalyzer(cfg *config.Config, log *logger.Logger) agents.SentimentAnalyzer {
	if cfg.Sentiment.URL != "" {
		log.Info("Using remote sentiment backend", "url", cfg.Sentiment.URL)
		return services.NewRemoteSentimentService(cfg.Sentiment, log)
	}
	return services.NewLexiconSentimentService(log)
}

func newExtractor(cfg *config.Config, log *logger.Logger) agents.Extractor {
	if cfg.Extraction.URL != "" {
		log.Info("Using remote extraction backend", "url", cfg.Extraction.URL)
		return services.NewRemoteExtractionService(cfg.Extraction, log)
	}
	return services.NewRuleBasedExtractionService(log)
}
