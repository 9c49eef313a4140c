package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/LeadFox/internal/pkg/env"
)

func TestMemoryLimiterWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute, func() time.Time { return now })

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)

	// other keys have their own window
	ok, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
}

func TestMemoryLimiterSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(1, time.Second, func() time.Time { return now })

	_, _ = l.Allow(ctx, "a")
	_, _ = l.Allow(ctx, "b")
	assert.Equal(t, 2, l.size())

	now = now.Add(2 * time.Second)
	l.Sweep()
	assert.Zero(t, l.size())
}

func TestNewFallsBackToMemory(t *testing.T) {
	l := New(env.RateLimitConfig{Max: 1, Window: time.Minute, Backend: "redis"}, nil)
	assert.IsType(t, &MemoryLimiter{}, l)
}

func TestRedisLimiter(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available:", err)
	}

	prefix := "test:ratelimit:" + uuid.NewString() + ":"
	l := NewRedisLimiter(client, prefix, 2, time.Minute)
	defer client.Del(context.Background(), prefix+"ip")
	for i := 0; i < 2; i++ {
		ok, err := l.Allow(context.Background(), "ip")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(context.Background(), "ip")
	require.NoError(t, err)
	assert.False(t, ok)

	ttl := client.PTTL(context.Background(), prefix+"ip").Val()
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}
