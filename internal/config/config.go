// Package config provides environment-based configuration for the orchestration service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds service-level configuration loaded from the environment.
type Config struct {
	Port        int
	DatabaseURL string
	LogMode     string

	// Provider credentials
	GeminiAPIKey string
	OpenAIAPIKey string

	// SettingsCacheTTL bounds how stale a cached provider-settings read may be.
	SettingsCacheTTL time.Duration
	// GenerationTimeout is the per-call budget for one outbound generation
	// attempt. A call exceeding it counts as a transient failure.
	GenerationTimeout time.Duration
}

// Load reads service configuration from environment variables and applies
// defaults. DATABASE_URL is required; provider keys are validated lazily when
// the corresponding provider is first used.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              8080,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		LogMode:           os.Getenv("LOG_MODE"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		SettingsCacheTTL:  30 * time.Second,
		GenerationTimeout: 30 * time.Second,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Port = port
	}

	if ttlStr := os.Getenv("SETTINGS_CACHE_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SETTINGS_CACHE_TTL: %w", err)
		}
		cfg.SettingsCacheTTL = ttl
	}

	if toStr := os.Getenv("GENERATION_TIMEOUT"); toStr != "" {
		timeout, err := time.ParseDuration(toStr)
		if err != nil {
			return nil, fmt.Errorf("invalid GENERATION_TIMEOUT: %w", err)
		}
		cfg.GenerationTimeout = timeout
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates loaded values.
func (c *Config) normalize() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be in range 1-65535, got: %d", c.Port)
	}
	if c.SettingsCacheTTL <= 0 {
		return fmt.Errorf("SETTINGS_CACHE_TTL must be positive, got: %s", c.SettingsCacheTTL)
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive, got: %s", c.GenerationTimeout)
	}
	return nil
}
