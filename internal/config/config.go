package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration. Field tags carry the full
// DRIVEDECK_* variable names so struct nesting never shapes the lookup keys.
type Config struct {
	Server    ServerConfig
	Media     MediaConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"DRIVEDECK_PORT" default:"9090"`
	Host string `envconfig:"DRIVEDECK_HOST" default:"127.0.0.1"`
}

// MediaConfig holds removable media discovery configuration.
type MediaConfig struct {
	// ScanBases are directories whose immediate children count as candidate
	// mounts. Entries may reference environment variables ($USER).
	ScanBases []string `envconfig:"DRIVEDECK_MEDIA_SCAN_BASES" default:"/media,/run/media/$USER,/mnt,/Volumes"`
	// RootsFile optionally points at a YAML or TOML file of operator-pinned roots.
	RootsFile string `envconfig:"DRIVEDECK_MEDIA_ROOTS_FILE" default:""`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"DRIVEDECK_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"DRIVEDECK_LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"DRIVEDECK_RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"DRIVEDECK_RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"DRIVEDECK_RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "9090",
			Host: "127.0.0.1",
		},
		Media: MediaConfig{
			ScanBases: []string{"/media", "/run/media/$USER", "/mnt", "/Volumes"},
			RootsFile: "",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
