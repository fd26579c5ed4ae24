package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/neocare/neocare/internal/platform/auth"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// IdleTTL drops buckets that have not been touched for this long.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
		IdleTTL:           10 * time.Minute,
	}
}

// tokenBucket implements a token bucket rate limiter.
type tokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(rate float64, burst int) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: time.Now(),
	}
}

func (b *tokenBucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (b *tokenBucket) remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.tokens)
}

func (b *tokenBucket) idleSince(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.lastRefill)
}

func (b *tokenBucket) retryAfter() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refillRate <= 0 {
		return 1
	}
	return int((1-b.tokens)/b.refillRate) + 1
}

// rateLimiterStore holds per-key token buckets.
type rateLimiterStore struct {
	buckets   map[string]*tokenBucket
	mu        sync.RWMutex
	config    RateLimitConfig
	lastSweep time.Time
}

func newRateLimiterStore(cfg RateLimitConfig) *rateLimiterStore {
	return &rateLimiterStore{
		buckets:   make(map[string]*tokenBucket),
		config:    cfg,
		lastSweep: time.Now(),
	}
}

// sweep removes idle buckets. Callers hold the write lock.
func (s *rateLimiterStore) sweep(now time.Time) {
	if s.config.IdleTTL <= 0 || now.Sub(s.lastSweep) < s.config.IdleTTL {
		return
	}
	for k, b := range s.buckets {
		if b.idleSince(now) > s.config.IdleTTL {
			delete(s.buckets, k)
		}
	}
	s.lastSweep = now
}

func (s *rateLimiterStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets)
}

func (s *rateLimiterStore) getBucket(key string) *tokenBucket {
	s.mu.RLock()
	bucket, ok := s.buckets[key]
	s.mu.RUnlock()
	if ok {
		return bucket
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket, ok := s.buckets[key]; ok {
		return bucket
	}
	s.sweep(time.Now())
	bucket = newTokenBucket(s.config.RequestsPerSecond, s.config.BurstSize)
	s.buckets[key] = bucket
	return bucket
}

// rateLimitKey prefers the authenticated user so clinicians sharing a ward
// NAT get separate budgets.
func rateLimitKey(c echo.Context) string {
	if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.RealIP()
}

// RateLimit returns a per-caller token bucket middleware.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return rateLimitWithStore(cfg, newRateLimiterStore(cfg))
}

func rateLimitWithStore(cfg RateLimitConfig, store *rateLimiterStore) echo.MiddlewareFunc {
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bucket := store.getBucket(rateLimitKey(c))
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			if !bucket.allow() {
				h.Set("Retry-After", strconv.Itoa(bucket.retryAfter()))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			h.Set("X-RateLimit-Remaining", strconv.Itoa(bucket.remaining()))
			return next(c)
		}
	}
}
