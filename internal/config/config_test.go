package config

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SETTINGS_CACHE_TTL", "")
	t.Setenv("GENERATION_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.SettingsCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.GenerationTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SETTINGS_CACHE_TTL", "1m")
	t.Setenv("GENERATION_TIMEOUT", "45s")
	t.Setenv("GEMINI_API_KEY", "gk")
	t.Setenv("OPENAI_API_KEY", "ok")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, time.Minute, cfg.SettingsCacheTTL)
	assert.Equal(t, 45*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, "gk", cfg.GeminiAPIKey)
	assert.Equal(t, "ok", cfg.OpenAIAPIKey)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PORT", "nope")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PORT", "70000")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("PORT", "")
	t.Setenv("SETTINGS_CACHE_TTL", "-5s")
	_, err = Load()
	assert.Error(t, err)
}

func TestNewJWTConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := NewJWTConfig()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.ExpirationHours)

	t.Setenv("JWT_EXPIRATION_HOURS", "0")
	_, err = NewJWTConfig()
	assert.Error(t, err)
}

func TestNewAgentConfig(t *testing.T) {
	t.Setenv("AGENT_TOKEN", "")
	t.Setenv("SYSTEM_PROFILE_ID", "")
	_, err := NewAgentConfig()
	assert.Error(t, err)

	profileID := uuid.New()
	t.Setenv("AGENT_TOKEN", "tok")
	t.Setenv("SYSTEM_PROFILE_ID", profileID.String())
	cfg, err := NewAgentConfig()
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, profileID, cfg.SystemProfileID)

	t.Setenv("SYSTEM_PROFILE_ID", "not-a-uuid")
	_, err = NewAgentConfig()
	assert.Error(t, err)
}
