// Package ratelimit bounds how fast a single caller may trigger generation
// work, using a per-caller token bucket.
package ratelimit

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds the bucket parameters applied to every caller.
type Config struct {
	// Burst is the bucket capacity.
	Burst int
	// PerMinute is the refill rate expressed as requests per minute.
	PerMinute int
}

// LoadConfig reads RATE_LIMIT_BURST and RATE_LIMIT_PER_MINUTE from the
// environment, with defaults sized for interactive analysis traffic.
func LoadConfig() Config {
	cfg := Config{Burst: 10, PerMinute: 30}
	if s := os.Getenv("RATE_LIMIT_BURST"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			cfg.Burst = v
		}
	}
	if s := os.Getenv("RATE_LIMIT_PER_MINUTE"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			cfg.PerMinute = v
		}
	}
	return cfg
}

// bucket is a token bucket refilling at a steady rate.
type bucket struct {
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
}

func (b *bucket) allow(now time.Time) bool {
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	b.lastRefill = now
	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

// Limiter tracks one bucket per caller key (user id or token hash).
type Limiter struct {
	cfg Config

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewLimiter creates a limiter with the given config.
func NewLimiter(cfg Config) *Limiter {
	return &Limiter{cfg: cfg, buckets: make(map[string]*bucket)}
}

// Allow reports whether the caller identified by key may proceed, consuming
// one token if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			capacity:   float64(l.cfg.Burst),
			refillRate: float64(l.cfg.PerMinute) / 60.0,
			tokens:     float64(l.cfg.Burst),
			lastRefill: time.Now(),
		}
		l.buckets[key] = b
	}
	return b.allow(time.Now())
}
