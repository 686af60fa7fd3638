package config

import (
	"fmt"
	"os"
	"strconv"
)

// JWTConfig holds configuration for validating session tokens issued by the
// storefront's auth backend. The orchestration service only verifies tokens;
// it never issues them outside of tests.
type JWTConfig struct {
	Secret string
	// ExpirationHours applies only to tokens issued by tests and tooling.
	// Verification honors the expiry carried in the token itself.
	ExpirationHours int
}

// NewJWTConfig creates a JWT configuration from environment variables.
// It reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS (default: 24).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	expirationHours := 24
	if s := os.Getenv("JWT_EXPIRATION_HOURS"); s != "" {
		hours, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		expirationHours = hours
	}

	cfg := &JWTConfig{Secret: secret, ExpirationHours: expirationHours}
	if cfg.ExpirationHours < 1 {
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", cfg.ExpirationHours)
	}
	return cfg, nil
}
