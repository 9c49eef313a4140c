package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "authenticated", cfg.Identity.JWTAudience)
	assert.Equal(t, 8, cfg.Identity.LookupWorkers)
	assert.Equal(t, 5*time.Second, cfg.Identity.LookupTimeout)
	assert.Equal(t, 10, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.Assets.Enabled)
	assert.Empty(t, cfg.Proxy.TrustedProxies)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("IDENTITY_JWT_SECRET", "s3cret")
	t.Setenv("RATE_LIMIT_MAX", "3")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_BACKEND", "memory")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,172.16.0.1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Identity.JWTSecret)
	assert.Equal(t, 3, cfg.RateLimit.Max)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "memory", cfg.RateLimit.Backend)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.1"}, cfg.Proxy.TrustedProxies)
	assert.Equal(t, "X-Forwarded-For", cfg.Proxy.Header)
}

func TestLoadConfigAssetsRequireCredentials(t *testing.T) {
	t.Setenv("ASSETS_S3_ENABLED", "true")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestGetEnvPrefersLoadedMap(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	Env = map[string]string{"APP_PORT": "4000"}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, "4000", GetEnv("APP_PORT", "1"))
	assert.Equal(t, "fallback", GetEnv("LEADFOX_UNSET_KEY", "fallback"))
}
