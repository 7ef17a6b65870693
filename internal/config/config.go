// Package config provides configuration management for the WOUDC client service.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the complete application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig  `envPrefix:"SERVER_"`
	WOUDC   WOUDCConfig   `envPrefix:"WOUDC_"`
	Logging LoggingConfig `envPrefix:"LOG_"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// WOUDCConfig contains WOUDC service client configuration.
type WOUDCConfig struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://geo.woudc.org/ows"`

	// Protocol selects the service flavor to talk: "wfs" or "ogcapi".
	Protocol string `env:"PROTOCOL" envDefault:"wfs"`

	Timeout  time.Duration `env:"TIMEOUT" envDefault:"120s"`
	PageSize int           `env:"PAGE_SIZE" envDefault:"25000"`

	// DatasetsDir optionally points at a directory of JSON dataset
	// definitions that replace the built-in registry.
	DatasetsDir string `env:"DATASETS_DIR"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// Load parses configuration from environment variables.
// It returns an error if required fields are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}

	opts := env.Options{
		RequiredIfNoDef: true,
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive, got %s", c.Server.ReadTimeout)
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive, got %s", c.Server.WriteTimeout)
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}

	if c.WOUDC.BaseURL == "" {
		return fmt.Errorf("WOUDC base URL is required")
	}

	if c.WOUDC.Protocol != "wfs" && c.WOUDC.Protocol != "ogcapi" {
		return fmt.Errorf("WOUDC protocol must be 'wfs' or 'ogcapi', got %q", c.WOUDC.Protocol)
	}

	if c.WOUDC.Timeout <= 0 {
		return fmt.Errorf("WOUDC timeout must be positive, got %s", c.WOUDC.Timeout)
	}

	if c.WOUDC.PageSize < 1 {
		return fmt.Errorf("WOUDC page size must be at least 1, got %d", c.WOUDC.PageSize)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format %q, must be one of: json, text", c.Logging.Format)
	}

	return nil
}

// Address returns the server listen address in the format "host:port".
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
