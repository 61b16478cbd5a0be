package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Logging
	LogLevel  string
	LogFormat string

	// AI analysis
	AIProvider      string
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string
	OllamaHost      string
	OllamaModel     string
	AITimeout       time.Duration

	// Worker pool
	WorkerCount     int
	MaxQueueSize    int
	MaxConcurrentAI int

	// Limits
	MaxUploadBytes int64
	AIChunkTokens  int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Review history
	StoreDriver string
	SQLitePath  string
	DatabaseURL string

	// Rules
	DefaultPack string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables already set win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("CLAUSECHECK_API_KEY"),

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "json"),

		AIProvider:      strings.ToLower(envOr("AI_PROVIDER", "none")),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		OllamaHost:      envOr("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:     envOr("OLLAMA_MODEL", "llama3.1"),
		AITimeout:       envDuration("AI_TIMEOUT", 120*time.Second),

		WorkerCount:     envInt("WORKER_COUNT", 4),
		MaxQueueSize:    envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentAI: envInt("MAX_CONCURRENT_AI", 3),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 26214400), // 25MB
		AIChunkTokens:  envInt("AI_CHUNK_TOKENS", 3000),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		StoreDriver: strings.ToLower(envOr("STORE_DRIVER", "sqlite")),
		SQLitePath:  envOr("SQLITE_PATH", "clausecheck.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		DefaultPack: envOr("DEFAULT_PACK", "core"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentAI <= 0 {
		cfg.MaxConcurrentAI = 3
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 26214400
	}
	if cfg.AIChunkTokens <= 0 {
		cfg.AIChunkTokens = 3000
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = 120 * time.Second
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.AIProvider {
	case "none", "":
	case "claude":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER=claude")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
	case "ollama":
		if c.OllamaModel == "" {
			return fmt.Errorf("OLLAMA_MODEL is required when AI_PROVIDER=ollama")
		}
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q (want none, claude, gemini or ollama)", c.AIProvider)
	}

	switch c.StoreDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER=sqlite")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want sqlite or postgres)", c.StoreDriver)
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q (want json or text)", c.LogFormat)
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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
