// Package ratelimit provides fixed-window request limiters.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/LeadFox/internal/pkg/env"
)

// Limiter decides whether one more request for key fits the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// New builds the limiter selected by cfg. The redis backend is shared by every
// instance using the same server; the memory backend only limits this process.
func New(cfg env.RateLimitConfig, client redis.Cmdable) Limiter {
	if cfg.Backend == "redis" && client != nil {
		return NewRedisLimiter(client, "ratelimit:", cfg.Max, cfg.Window)
	}
	return NewMemoryLimiter(cfg.Max, cfg.Window, time.Now)
}
