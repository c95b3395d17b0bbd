package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ksquare-onboarding/internal/config"
	"ksquare-onboarding/internal/models"
	"ksquare-onboarding/internal/pkg/logger"
)

const (
	keyUseCases       = "onboarding:usecases"
	keyProfilePrefix  = "onboarding:profile:"
	keyMeetingsPrefix = "onboarding:meetings:"
	keyWorkflowPrefix = "onboarding:workflow:"
	keyWorkflowIndex  = "onboarding:workflows"
	keyInsightsAll    = "onboarding:insights"

	workflowStreamMaxLen = 1024
)

// RedisService is the persistence layer: use cases, client profiles, meeting
// transcripts, workflow state, the knowledge-base insights, and the
// per-workflow progress streams all live in Redis.
type RedisService struct {
	client *redis.Client
	logger *logger.Logger
	config config.RedisConfig
}

func NewRedisService(cfg config.RedisConfig, log *logger.Logger) (*RedisService, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	configureRedisOptions(opt, cfg)

	service := &RedisService{
		client: redis.NewClient(opt),
		logger: log,
		config: cfg,
	}

	if err := service.connectWithRetry(); err != nil {
		return nil, fmt.Errorf("connection to Redis failed: %w", err)
	}

	log.Info("Redis Service Initialized Successfully",
		"url", cfg.URL,
		"pool_size", cfg.PoolSize)

	return service, nil
}

func configureRedisOptions(opt *redis.Options, cfg config.RedisConfig) {
	opt.PoolSize = cfg.PoolSize
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout
	opt.DialTimeout = cfg.DialTimeout
}

// connectWithRetry pings Redis with exponential backoff so a service starting
// alongside its Redis container does not crash-loop.
func (service *RedisService) connectWithRetry() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		pingCtx, pingCancel := context.WithTimeout(ctx, service.config.DialTimeout)
		defer pingCancel()
		return struct{}{}, service.client.Ping(pingCtx).Err()
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(5))

	if err != nil {
		return err
	}

	service.logger.Info("Redis Service Connection Tested Successfully")
	return nil
}

func (service *RedisService) HealthCheck(ctx context.Context) error {
	return service.client.Ping(ctx).Err()
}

func (service *RedisService) Close() error {
	service.logger.Info("Closing Redis Service")

	if err := service.client.Close(); err != nil {
		return fmt.Errorf("close redis failed: %w", err)
	}

	service.logger.Info("Redis Service Closed Successfully")
	return nil
}

// ---- use cases ----

// SeedUseCases loads the three predefined onboarding scenarios, each with its
// reference profile, seeded meeting transcript, and knowledge-base insights.
// Seeding is skipped when use cases already exist.
func (service *RedisService) SeedUseCases(ctx context.Context) error {
	startTime := time.Now()

	exists, err := service.client.Exists(ctx, keyUseCases).Result()
	if err != nil {
		return models.WrapExternalError("redis", err)
	}
	if exists > 0 {
		service.logger.Info("Use cases already loaded")
		return nil
	}

	seeds := seedData()

	useCases := make([]models.UseCase, 0, len(seeds))
	for _, seed := range seeds {
		useCases = append(useCases, seed.useCase)

		if err := service.SaveClientProfile(ctx, seed.profile); err != nil {
			return err
		}
		if err := service.SaveMeeting(ctx, seed.meeting); err != nil {
			return err
		}
		for _, insight := range seed.insights {
			if err := service.SaveInsight(ctx, insight); err != nil {
				return err
			}
		}
	}

	payload, err := json.Marshal(useCases)
	if err != nil {
		return models.NewInternalError("USECASE_MARSHAL_FAILED", "failed to marshal use cases").WithCause(err)
	}
	if err := service.client.Set(ctx, keyUseCases, payload, 0).Err(); err != nil {
		return models.WrapExternalError("redis", err)
	}

	service.logger.LogService("redis", "seed_use_cases", time.Since(startTime), map[string]interface{}{
		"use_cases": len(useCases),
	}, nil)
	return nil
}

func (service *RedisService) GetUseCases(ctx context.Context) ([]models.UseCase, error) {
	startTime := time.Now()

	data, err := service.client.Get(ctx, keyUseCases).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.UseCase{}, nil
		}
		service.logger.LogService("redis", "get_use_cases", time.Since(startTime), nil, err)
		return nil, models.WrapExternalError("redis", err)
	}

	var useCases []models.UseCase
	if err := json.Unmarshal([]byte(data), &useCases); err != nil {
		return nil, models.NewInternalError("USECASE_UNMARSHAL_FAILED", "corrupt use case record").WithCause(err)
	}

	service.logger.LogService("redis", "get_use_cases", time.Since(startTime), map[string]interface{}{
		"count": len(useCases),
	}, nil)
	return useCases, nil
}

// ---- client profiles ----

func profileKey(clientName string) string {
	return keyProfilePrefix + strings.ToLower(strings.TrimSpace(clientName))
}

func (service *RedisService) GetClientProfile(ctx context.Context, clientName string) (*models.ClientProfile, error) {
	startTime := time.Now()
	key := profileKey(clientName)

	data, err := service.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrProfileNotFound.WithMetadata("client_name", clientName)
		}
		service.logger.LogService("redis", "get_client_profile", time.Since(startTime), map[string]interface{}{
			"client_name": clientName,
			"key":         key,
		}, err)
		return nil, models.WrapExternalError("redis", err)
	}

	var profile models.ClientProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, models.NewInternalError("PROFILE_UNMARSHAL_FAILED", "corrupt profile record").WithCause(err)
	}

	service.logger.LogService("redis", "get_client_profile", time.Since(startTime), map[string]interface{}{
		"client_name": clientName,
	}, nil)
	return &profile, nil
}

func (service *RedisService) SaveClientProfile(ctx context.Context, profile *models.ClientProfile) error {
	startTime := time.Now()
	key := profileKey(profile.Name)

	payload, err := json.Marshal(profile)
	if err != nil {
		return models.NewInternalError("PROFILE_MARSHAL_FAILED", "failed to marshal profile").WithCause(err)
	}

	if err := service.client.Set(ctx, key, payload, 0).Err(); err != nil {
		service.logger.LogService("redis", "save_client_profile", time.Since(startTime), map[string]interface{}{
			"client_name": profile.Name,
			"key":         key,
		}, err)
		return models.WrapExternalError("redis", err)
	}

	service.logger.LogService("redis", "save_client_profile", time.Since(startTime), map[string]interface{}{
		"client_name": profile.Name,
	}, nil)
	return nil
}

// ---- meetings ----

func meetingsKey(clientName string) string {
	return keyMeetingsPrefix + strings.ToLower(strings.TrimSpace(clientName))
}

// SaveMeeting prepends the meeting so the newest record is always first.
func (service *RedisService) SaveMeeting(ctx context.Context, meeting models.MeetingRecord) error {
	startTime := time.Now()

	if meeting.ID == "" {
		meeting.ID = uuid.New().String()
	}
	if meeting.Date.IsZero() {
		meeting.Date = time.Now()
	}

	payload, err := json.Marshal(meeting)
	if err != nil {
		return models.NewInternalError("MEETING_MARSHAL_FAILED", "failed to marshal meeting").WithCause(err)
	}

	key := meetingsKey(meeting.ClientName)
	if err := service.client.LPush(ctx, key, payload).Err(); err != nil {
		service.logger.LogService("redis", "save_meeting", time.Since(startTime), map[string]interface{}{
			"client_name": meeting.ClientName,
			"key":         key,
		}, err)
		return models.WrapExternalError("redis", err)
	}

	service.logger.LogService("redis", "save_meeting", time.Since(startTime), map[string]interface{}{
		"client_name": meeting.ClientName,
		"meeting_id":  meeting.ID,
	}, nil)
	return nil
}

// GetMeetings returns the client's meetings newest first.
func (service *RedisService) GetMeetings(ctx context.Context, clientName string) ([]models.MeetingRecord, error) {
	startTime := time.Now()
	key := meetingsKey(clientName)

	entries, err := service.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		service.logger.LogService("redis", "get_meetings", time.Since(startTime), map[string]interface{}{
			"client_name": clientName,
			"key":         key,
		}, err)
		return nil, models.WrapExternalError("redis", err)
	}

	meetings := make([]models.MeetingRecord, 0, len(entries))
	for _, entry := range entries {
		var meeting models.MeetingRecord
		if err := json.Unmarshal([]byte(entry), &meeting); err != nil {
			service.logger.WithError(err).Warn("Failed to parse meeting record", "client_name", clientName)
			continue
		}
		meetings = append(meetings, meeting)
	}

	service.logger.LogService("redis", "get_meetings", time.Since(startTime), map[string]interface{}{
		"client_name": clientName,
		"count":       len(meetings),
	}, nil)
	return meetings, nil
}

// ---- workflow state ----

func workflowKey(workflowID string) string {
	return keyWorkflowPrefix + workflowID
}

// StoreWorkflowState persists the full state snapshot and indexes the
// workflow id, both under the configured TTL.
func (service *RedisService) StoreWorkflowState(ctx context.Context, state *models.WorkflowState) error {
	startTime := time.Now()
	key := workflowKey(state.ID)

	payload, err := json.Marshal(state)
	if err != nil {
		return models.NewInternalError("WORKFLOW_MARSHAL_FAILED", "failed to marshal workflow state").WithCause(err)
	}

	pipe := service.client.Pipeline()
	pipe.Set(ctx, key, payload, service.config.StateTTL)
	pipe.SAdd(ctx, keyWorkflowIndex, state.ID)
	pipe.Expire(ctx, keyWorkflowIndex, service.config.StateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		service.logger.LogService("redis", "store_workflow_state", time.Since(startTime), map[string]interface{}{
			"workflow_id": state.ID,
			"key":         key,
		}, err)
		return models.WrapExternalError("redis", err)
	}

	service.logger.LogService("redis", "store_workflow_state", time.Since(startTime), map[string]interface{}{
		"workflow_id": state.ID,
		"status":      state.Status,
	}, nil)
	return nil
}

func (service *RedisService) GetWorkflowState(ctx context.Context, workflowID string) (*models.WorkflowState, error) {
	startTime := time.Now()
	key := workflowKey(workflowID)

	data, err := service.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrWorkflowNotFound.WithMetadata("workflow_id", workflowID)
		}
		service.logger.LogService("redis", "get_workflow_state", time.Since(startTime), map[string]interface{}{
			"workflow_id": workflowID,
			"key":         key,
		}, err)
		return nil, models.WrapExternalError("redis", err)
	}

	var state models.WorkflowState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, models.NewInternalError("WORKFLOW_UNMARSHAL_FAILED", "corrupt workflow record").WithCause(err)
	}

	service.logger.LogService("redis", "get_workflow_state", time.Since(startTime), map[string]interface{}{
		"workflow_id": workflowID,
	}, nil)
	return &state, nil
}

// ListWorkflowStates returns every indexed workflow still within its TTL.
func (service *RedisService) ListWorkflowStates(ctx context.Context) ([]*models.WorkflowState, error) {
	ids, err := service.client.SMembers(ctx, keyWorkflowIndex).Result()
	if err != nil {
		return nil, models.WrapExternalError("redis", err)
	}

	states := make([]*models.WorkflowState, 0, len(ids))
	for _, id := range ids {
		state, err := service.GetWorkflowState(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrWorkflowNotFound) {
				// Expired state; drop the stale index entry.
				service.client.SRem(ctx, keyWorkflowIndex, id)
				continue
			}
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

// ---- knowledge-base insights ----

func (service *RedisService) SaveInsight(ctx context.Context, insight models.Insight) error {
	if insight.ID == "" {
		insight.ID = uuid.New().String()
	}
	if insight.CreatedAt.IsZero() {
		insight.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(insight)
	if err != nil {
		return models.NewInternalError("INSIGHT_MARSHAL_FAILED", "failed to marshal insight").WithCause(err)
	}
	if err := service.client.RPush(ctx, keyInsightsAll, payload).Err(); err != nil {
		return models.WrapExternalError("redis", err)
	}
	return nil
}

// SearchInsights does a case-insensitive substring match over insight
// content, tags, and client names.
func (service *RedisService) SearchInsights(ctx context.Context, query string) ([]models.Insight, error) {
	startTime := time.Now()

	entries, err := service.client.LRange(ctx, keyInsightsAll, 0, -1).Result()
	if err != nil {
		service.logger.LogService("redis", "search_insights", time.Since(startTime), map[string]interface{}{
			"query": query,
		}, err)
		return nil, models.WrapExternalError("redis", err)
	}

	queryLower := strings.ToLower(query)
	matches := []models.Insight{}
	for _, entry := range entries {
		var insight models.Insight
		if err := json.Unmarshal([]byte(entry), &insight); err != nil {
			service.logger.WithError(err).Warn("Failed to parse insight record")
			continue
		}
		if insightMatches(insight, queryLower) {
			matches = append(matches, insight)
		}
	}

	service.logger.LogService("redis", "search_insights", time.Since(startTime), map[string]interface{}{
		"query":   query,
		"matches": len(matches),
	}, nil)
	return matches, nil
}

func insightMatches(insight models.Insight, queryLower string) bool {
	if queryLower == "" {
		return true
	}
	if strings.Contains(strings.ToLower(insight.Content), queryLower) {
		return true
	}
	if strings.Contains(strings.ToLower(insight.ClientName), queryLower) {
		return true
	}
	for _, tag := range insight.Tags {
		if strings.Contains(strings.ToLower(tag), queryLower) {
			return true
		}
	}
	return false
}

// SearchMeetings scans every client's meeting list for transcripts containing
// the query, case-insensitively.
func (service *RedisService) SearchMeetings(ctx context.Context, query string) ([]models.MeetingRecord, error) {
	startTime := time.Now()
	queryLower := strings.ToLower(query)

	matches := []models.MeetingRecord{}
	iter := service.client.Scan(ctx, 0, keyMeetingsPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		entries, err := service.client.LRange(ctx, iter.Val(), 0, -1).Result()
		if err != nil {
			return nil, models.WrapExternalError("redis", err)
		}
		for _, entry := range entries {
			var meeting models.MeetingRecord
			if err := json.Unmarshal([]byte(entry), &meeting); err != nil {
				continue
			}
			if strings.Contains(strings.ToLower(meeting.Transcript), queryLower) {
				matches = append(matches, meeting)
			}
		}
	}
	if err := iter.Err(); err != nil {
		service.logger.LogService("redis", "search_meetings", time.Since(startTime), map[string]interface{}{
			"query": query,
		}, err)
		return nil, models.WrapExternalError("redis", err)
	}

	service.logger.LogService("redis", "search_meetings", time.Since(startTime), map[string]interface{}{
		"query":   query,
		"matches": len(matches),
	}, nil)
	return matches, nil
}

// ---- progress stream ----

// PublishStageUpdate appends a progress event to the workflow's stream.
// Publishing is best-effort from the orchestrator's point of view; callers
// log and continue on error.
func (service *RedisService) PublishStageUpdate(ctx context.Context, update *models.StageUpdate) error {
	streamName := fmt.Sprintf("workflow:%s:updates", update.WorkflowID)

	values := map[string]interface{}{
		"type":        "stage_update",
		"workflow_id": update.WorkflowID,
		"request_id":  update.RequestID,
		"stage":       string(update.Stage),
		"status":      string(update.Status),
		"message":     update.Message,
		"progress":    fmt.Sprintf("%.2f", update.Progress),
		"timestamp":   update.Timestamp.Format(time.RFC3339),
	}

	if err := service.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		Values: values,
		MaxLen: workflowStreamMaxLen,
		Approx: true,
	}).Err(); err != nil {
		service.logger.LogService("redis", "publish_stage_update", 0, map[string]interface{}{
			"stream_name": streamName,
			"stage":       update.Stage,
			"workflow_id": update.WorkflowID,
		}, err)
		return models.WrapExternalError("redis", err)
	}

	return nil
}
