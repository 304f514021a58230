package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	WhisperURL     string        `env:"WHISPER_URL,required"`
	WhisperModel   string        `env:"WHISPER_MODEL" envDefault:"large-v3"`
	WhisperTimeout time.Duration `env:"WHISPER_TIMEOUT" envDefault:"5m"`
	Language       string        `env:"LANGUAGE" envDefault:"en"`
	Temperature    float64       `env:"TEMPERATURE" envDefault:"0.0"`

	ChunkDurationMs    int64   `env:"CHUNK_DURATION_MS" envDefault:"60000"`
	ChunkOverlapMs     int64   `env:"CHUNK_OVERLAP_MS" envDefault:"1500"`
	SeamMaxOverlap     int     `env:"SEAM_MAX_OVERLAP" envDefault:"80"`
	BoundaryEpsilonSec float64 `env:"BOUNDARY_EPSILON_SEC" envDefault:"0.01"`
	MaxConcurrency     int     `env:"MAX_CONCURRENCY" envDefault:"4"`
	ChunkRetries       int     `env:"CHUNK_RETRIES" envDefault:"2"`

	DatabaseURL string `env:"DATABASE_URL"`
	WatchDir    string `env:"WATCH_DIR"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Prefix    string `env:"S3_PREFIX"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`

	HTTPAddr     string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile    string
	WhisperURL string
	WatchDir   string
	HTTPAddr   string
	LogLevel   string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	// Load .env file (silent if missing)
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	// The whisper URL override must be visible to env.Parse, or a
	// flag-only invocation would fail the required check.
	if overrides.WhisperURL != "" {
		os.Setenv("WHISPER_URL", overrides.WhisperURL)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if overrides.WatchDir != "" {
		cfg.WatchDir = overrides.WatchDir
	}
	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ChunkDurationMs <= 0 {
		return fmt.Errorf("CHUNK_DURATION_MS must be positive, got %d", c.ChunkDurationMs)
	}
	if c.ChunkOverlapMs < 0 {
		return fmt.Errorf("CHUNK_OVERLAP_MS must not be negative, got %d", c.ChunkOverlapMs)
	}
	if c.ChunkOverlapMs >= c.ChunkDurationMs {
		return fmt.Errorf("CHUNK_OVERLAP_MS (%d) must be smaller than CHUNK_DURATION_MS (%d)", c.ChunkOverlapMs, c.ChunkDurationMs)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("MAX_CONCURRENCY must be at least 1, got %d", c.MaxConcurrency)
	}
	if c.ChunkRetries < 0 {
		return fmt.Errorf("CHUNK_RETRIES must not be negative, got %d", c.ChunkRetries)
	}
	return nil
}

// S3Configured reports whether the S3 transcript sink should be enabled.
func (c *Config) S3Configured() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
