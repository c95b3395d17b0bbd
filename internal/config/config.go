package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string

	HTTP       HTTPConfig
	Redis      RedisConfig
	Log        LogConfig
	Sentiment  SentimentConfig
	Extraction ExtractionConfig
	Workflow   WorkflowConfig
}

type HTTPConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	StateTTL     time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	Output string // "stdout", "stderr" or a file path (rotated)
}

type SentimentConfig struct {
	// URL of the remote sentiment service; empty selects the built-in
	// lexicon analyzer.
	URL     string
	Timeout time.Duration
}

type ExtractionConfig struct {
	URL     string
	Timeout time.Duration
}

type WorkflowConfig struct {
	StageTimeout time.Duration
	SessionTTL   time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		HTTP: HTTPConfig{
			Port:         getEnvInt("PORT", 8080),
			ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", "redis://localhost:6379"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			StateTTL:     getEnvDuration("WORKFLOW_STATE_TTL", 6*time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Sentiment: SentimentConfig{
			URL:     os.Getenv("SENTIMENT_SERVICE_URL"),
			Timeout: getEnvDuration("SENTIMENT_TIMEOUT", 10*time.Second),
		},
		Extraction: ExtractionConfig{
			URL:     os.Getenv("EXTRACTION_SERVICE_URL"),
			Timeout: getEnvDuration("EXTRACTION_TIMEOUT", 15*time.Second),
		},
		Workflow: WorkflowConfig{
			StageTimeout: getEnvDuration("WORKFLOW_STAGE_TIMEOUT", 30*time.Second),
			SessionTTL:   getEnvDuration("CONVERSATION_SESSION_TTL", 30*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Workflow.StageTimeout <= 0 {
		return fmt.Errorf("WORKFLOW_STAGE_TIMEOUT must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	// Bare integers are taken as seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
