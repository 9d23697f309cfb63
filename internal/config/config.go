// Package config provides centralized configuration management for the
// directory service. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Sheet   SheetConfig
	Rate    RateLimitConfig
	Contact ContactConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SheetConfig holds the published-spreadsheet source settings.
type SheetConfig struct {
	// URL is the CSV export URL of the published sheet (required)
	// Supports both SHEET_URL and CSV_URL env vars for compatibility
	URL string `env:"SHEET_URL" envAlt:"CSV_URL" required:"true"`

	// FetchTimeout bounds a single fetch of the export (default: 15s)
	FetchTimeout time.Duration `env:"SHEET_FETCH_TIMEOUT" default:"15s"`

	// RefreshInterval is the background re-fetch cadence;
	// 0 disables automatic refresh (default: 0s)
	RefreshInterval time.Duration `env:"SHEET_REFRESH_INTERVAL" default:"0s"`

	// PageSize is the number of directory entries per page (default: 10)
	PageSize int `env:"SHEET_PAGE_SIZE" default:"10"`
}

// RateLimitConfig holds per-IP request limiting settings.
type RateLimitConfig struct {
	// Enabled toggles rate limiting (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the per-IP request budget (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// ContactConfig holds contact-form settings.
type ContactConfig struct {
	// MaxMessageLen caps the contact message body in bytes (default: 4000)
	MaxMessageLen int `env:"CONTACT_MAX_MESSAGE_LEN" default:"4000"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log output format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}
