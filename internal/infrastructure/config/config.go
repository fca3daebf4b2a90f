package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Render    RenderConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               string        `envconfig:"PORT" default:"4000"`
	Host               string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	CompressionEnabled bool          `envconfig:"COMPRESSION_ENABLED" default:"true"`
}

// BrowserConfig holds headless browser launch configuration.
type BrowserConfig struct {
	// Environment selects the launch profile: "production"/"prod" uses the
	// packaged binary and serverless arguments, anything else the local browser.
	Environment string `envconfig:"ENV" default:"development"`
	Bin         string `envconfig:"BROWSER_BIN"`
	// Args holds extra space-separated browser flags, e.g. "--lang=it-IT --hide-scrollbars".
	Args     string `envconfig:"BROWSER_ARGS"`
	Leakless bool   `envconfig:"BROWSER_LEAKLESS" default:"false"`
	// BreakerThreshold is the number of consecutive launch failures after
	// which launches fail fast for BreakerCooldown. 0 disables the breaker.
	BreakerThreshold uint32        `envconfig:"BROWSER_BREAKER_THRESHOLD" default:"0"`
	BreakerCooldown  time.Duration `envconfig:"BROWSER_BREAKER_COOLDOWN" default:"30s"`
}

// IsProduction reports whether the production launch profile is selected.
func (b BrowserConfig) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(b.Environment))
	return env == "production" || env == "prod"
}

// RenderConfig holds render operation limits.
type RenderConfig struct {
	NavigationTimeout time.Duration `envconfig:"RENDER_NAV_TIMEOUT" default:"60s"`
	// MaxSessions bounds concurrent browser sessions; 0 means unbounded.
	MaxSessions  int64 `envconfig:"RENDER_MAX_SESSIONS" default:"0"`
	MaxBodyBytes int64 `envconfig:"RENDER_MAX_BODY_BYTES" default:"102400"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"10"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"20"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"false"`
}

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	Enabled      bool     `envconfig:"CORS_ENABLED" default:"false"`
	AllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("invalid config: PORT must not be empty")
	}
	if c.Render.NavigationTimeout <= 0 {
		return fmt.Errorf("invalid config: RENDER_NAV_TIMEOUT must be positive, got %s", c.Render.NavigationTimeout)
	}
	if c.Render.MaxSessions < 0 {
		return fmt.Errorf("invalid config: RENDER_MAX_SESSIONS must not be negative, got %d", c.Render.MaxSessions)
	}
	if c.Render.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid config: RENDER_MAX_BODY_BYTES must be positive, got %d", c.Render.MaxBodyBytes)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               "4000",
			Host:               "0.0.0.0",
			ShutdownTimeout:    30 * time.Second,
			CompressionEnabled: true,
		},
		Browser: BrowserConfig{
			Environment:     "development",
			BreakerCooldown: 30 * time.Second,
		},
		Render: RenderConfig{
			NavigationTimeout: 60 * time.Second,
			MaxSessions:       0,
			MaxBodyBytes:      100 * 1024,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			Burst:             20,
			Enabled:           false,
		},
		CORS: CORSConfig{
			Enabled:      false,
			AllowOrigins: []string{"*"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
