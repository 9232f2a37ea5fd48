// Package config provides 12-factor configuration management for the DriveDeck backend.
//
// Configuration is loaded from DRIVEDECK_* environment variables with
// sensible defaults. CLI flags can override environment variables for
// development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Media: mount scan bases and the optional pinned roots file (YAML or TOML)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - DRIVEDECK_PORT, DRIVEDECK_HOST
//   - DRIVEDECK_MEDIA_SCAN_BASES, DRIVEDECK_MEDIA_ROOTS_FILE
//   - DRIVEDECK_LOG_LEVEL, DRIVEDECK_LOG_DEV
//   - DRIVEDECK_RATE_LIMIT_RPS, DRIVEDECK_RATE_LIMIT_BURST
package config
