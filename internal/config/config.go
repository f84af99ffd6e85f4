package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/rag-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Memory backend selection
const (
	MemoryBackendInMemory = "memory"
	MemoryBackendPostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8000"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Vector index configuration
	IndexDir string `env:"INDEX_DIR" envDefault:"./vectorstore"`

	// Chunking configuration
	ChunkSize    int `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"200"`

	// Retrieval configuration
	TopK int `env:"TOP_K" envDefault:"4"`

	// Conversation memory configuration
	MemoryBackend  string        `env:"MEMORY_BACKEND" envDefault:"memory"`
	MemoryMaxTurns int           `env:"MEMORY_MAX_TURNS" envDefault:"20"`
	MemoryTTL      time.Duration `env:"MEMORY_TTL" envDefault:"12h"`

	// Database configuration (used when MEMORY_BACKEND=postgres)
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	EmbeddingConnectorCfg EmbeddingConnectorConfig `envPrefix:"EMBEDDING_"`
	LLMConnectorCfg       LLMConnectorConfig       `envPrefix:"LLM_"`

	// Directory watcher configuration (disabled when empty)
	WatchDir      string        `env:"WATCH_DIR"`
	WatchDebounce time.Duration `env:"WATCH_DEBOUNCE" envDefault:"2s"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type EmbeddingConnectorConfig struct {
	HTTPClientConfig
	Model     string               `env:"MODEL" envDefault:"text-embedding-3-small"`
	BatchSize int                  `env:"BATCH_SIZE" envDefault:"64"`
	Retry     pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	Model       string               `env:"MODEL" envDefault:"google/gemini-flash-1.5"`
	Temperature float64              `env:"TEMPERATURE" envDefault:"0"`
	MaxTokens   int                  `env:"MAX_TOKENS" envDefault:"1024"`
	Retry       pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"API_KEY"`
	Url                   string        `env:"SERVICE_URL" envDefault:"https://openrouter.ai/api/v1"`
}

// LoadConfig reads the env file for the given environment, parses the
// configuration from environment variables and validates it.
func LoadConfig(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	// Single OPENAI_API_KEY (or OPENROUTER_API_KEY) covers both connectors
	// unless a per-connector key was set.
	fallbackKey := os.Getenv("OPENROUTER_API_KEY")
	if fallbackKey == "" {
		fallbackKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.EmbeddingConnectorCfg.Token == "" {
		cfg.EmbeddingConnectorCfg.Token = fallbackKey
	}
	if cfg.LLMConnectorCfg.Token == "" {
		cfg.LLMConnectorCfg.Token = fallbackKey
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", cfg.ChunkSize)
	}

	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d with CHUNK_SIZE=%d",
			cfg.ChunkOverlap, cfg.ChunkSize)
	}

	if cfg.TopK < 1 || cfg.TopK > 50 {
		return fmt.Errorf("TOP_K must be between 1 and 50, got %d", cfg.TopK)
	}

	if cfg.MemoryMaxTurns < 1 || cfg.MemoryMaxTurns > 500 {
		return fmt.Errorf("MEMORY_MAX_TURNS must be between 1 and 500, got %d", cfg.MemoryMaxTurns)
	}

	switch cfg.MemoryBackend {
	case MemoryBackendInMemory:
	case MemoryBackendPostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when MEMORY_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("MEMORY_BACKEND must be %q or %q, got %q",
			MemoryBackendInMemory, MemoryBackendPostgres, cfg.MemoryBackend)
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		return fmt.Errorf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns)
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d",
			cfg.DBMaxConns, cfg.DBMinConns)
	}

	if cfg.EmbeddingConnectorCfg.BatchSize < 1 {
		return fmt.Errorf("EMBEDDING_BATCH_SIZE must be positive, got %d", cfg.EmbeddingConnectorCfg.BatchSize)
	}

	if cfg.LLMConnectorCfg.Temperature < 0 || cfg.LLMConnectorCfg.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %f", cfg.LLMConnectorCfg.Temperature)
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
