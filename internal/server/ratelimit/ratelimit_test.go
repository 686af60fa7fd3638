package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_BurstThenDeny(t *testing.T) {
	l := NewLimiter(Config{Burst: 3, PerMinute: 1})

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("user:a"), "request %d within burst must pass", i)
	}
	assert.False(t, l.Allow("user:a"))
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := NewLimiter(Config{Burst: 1, PerMinute: 1})

	assert.True(t, l.Allow("user:a"))
	assert.False(t, l.Allow("user:a"))
	assert.True(t, l.Allow("user:b"))
}

func TestLimiter_Refills(t *testing.T) {
	l := NewLimiter(Config{Burst: 1, PerMinute: 6000}) // 100 tokens/sec

	assert.True(t, l.Allow("user:a"))
	assert.False(t, l.Allow("user:a"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, l.Allow("user:a"))
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
	cfg := LoadConfig()
	assert.Equal(t, 5, cfg.Burst)
	assert.Equal(t, 120, cfg.PerMinute)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "nope")
	cfg := LoadConfig()
	assert.Equal(t, 10, cfg.Burst)
	assert.Equal(t, 30, cfg.PerMinute)
}
