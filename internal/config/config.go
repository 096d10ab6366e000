package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	ServiceAPIKey string

	// Content generation
	GenerationAPIKey  string
	GenerationBaseURL string
	GenerationModel   string

	// Stage execution
	StageTimeout  time.Duration
	StageCooldown time.Duration
	MaxStageFails int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Prompt context
	ContextLimit int

	// Budget closure
	ToleranceMinor int64

	// Pairing placeholders
	Placeholder string

	// Run state
	RunTTL time.Duration

	// Artifacts
	OutputDir string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		ServiceAPIKey: os.Getenv("MGADOC_API_KEY"),

		GenerationAPIKey:  os.Getenv("GENERATION_API_KEY"),
		GenerationBaseURL: envOr("GENERATION_BASE_URL", "https://api.deepseek.com/v1"),
		GenerationModel:   envOr("GENERATION_MODEL", "deepseek-chat"),

		StageTimeout:  envDuration("STAGE_TIMEOUT", 3*time.Minute),
		StageCooldown: envDuration("STAGE_COOLDOWN", 3*time.Second),
		MaxStageFails: envInt("MAX_STAGE_FAILS", 3),

		WorkerCount:  envInt("WORKER_COUNT", 1),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 20),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		ContextLimit: envInt("CONTEXT_LIMIT", 8000),

		ToleranceMinor: envInt64("BUDGET_TOLERANCE_MINOR", 1),

		Placeholder: envOr("PAIRING_PLACEHOLDER", "No disponible"),

		RunTTL: envDuration("RUN_TTL", 24*time.Hour),

		OutputDir: envOr("OUTPUT_DIR", "./output"),
	}

	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = 3 * time.Minute
	}
	if cfg.StageCooldown < 0 {
		cfg.StageCooldown = 3 * time.Second
	}
	if cfg.MaxStageFails <= 0 {
		cfg.MaxStageFails = 3
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 20
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ContextLimit <= 0 {
		cfg.ContextLimit = 8000
	}
	if cfg.ToleranceMinor < 0 {
		cfg.ToleranceMinor = 1
	}
	if cfg.RunTTL <= 0 {
		cfg.RunTTL = 24 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ServiceAPIKey == "" {
		return fmt.Errorf("MGADOC_API_KEY is required")
	}
	if c.GenerationAPIKey == "" {
		return fmt.Errorf("GENERATION_API_KEY is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
