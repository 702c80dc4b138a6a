package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Rate limiting key patterns:
// - ratelimit:{ip}:auth       - per-minute auth attempts
// - ratelimit:{user_id}:write - per-minute mutating requests

// RateLimitConfig contains configuration for rate limiting
type RateLimitConfig struct {
	AuthLimit   int           // Max auth attempts per window
	AuthWindow  time.Duration // Auth rate limit window
	WriteLimit  int           // Max mutating requests per window
	WriteWindow time.Duration // Write rate limit window
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		AuthLimit:   5,
		AuthWindow:  60 * time.Second,
		WriteLimit:  60,
		WriteWindow: 60 * time.Second,
	}
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{client: client, config: config}
}

// AllowAuth checks whether an IP may attempt authentication.
func (r *RateLimiter) AllowAuth(ctx context.Context, ip string) (*RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:%s:auth", ip)
	return r.checkLimit(ctx, key, r.config.AuthLimit, r.config.AuthWindow)
}

// AllowWrite checks whether a user may issue a mutating request.
func (r *RateLimiter) AllowWrite(ctx context.Context, userID string) (*RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:%s:write", userID)
	return r.checkLimit(ctx, key, r.config.WriteLimit, r.config.WriteWindow)
}

// checkLimit runs a fixed-window counter: INCR plus an expiry on first use.
func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	count := int(incr.Val())
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{
		Allowed:   count <= limit,
		Remaining: remaining,
		ResetIn:   ttl.Val(),
		Limit:     limit,
	}, nil
}
