package env

import (
	"fmt"
	"time"

	cenv "github.com/caarlos0/env/v11"
)

// IdentityConfig configures the hosted auth service.
type IdentityConfig struct {
	// JWTSecret verifies HS256 access tokens issued by the auth service.
	JWTSecret   string `env:"IDENTITY_JWT_SECRET"`
	JWTIssuer   string `env:"IDENTITY_JWT_ISSUER"`
	JWTAudience string `env:"IDENTITY_JWT_AUDIENCE" envDefault:"authenticated"`
	// BaseURL and ServiceKey are used for admin user lookups.
	BaseURL       string        `env:"IDENTITY_URL"`
	ServiceKey    string        `env:"IDENTITY_SERVICE_KEY"`
	LookupTimeout time.Duration `env:"IDENTITY_LOOKUP_TIMEOUT" envDefault:"5s"`
	LookupWorkers int           `env:"IDENTITY_LOOKUP_WORKERS" envDefault:"8"`
}

// RateLimitConfig configures the public submission limiter.
type RateLimitConfig struct {
	Enabled bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Max     int           `env:"RATE_LIMIT_MAX" envDefault:"10"`
	Window  time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	// Backend is "redis" (shared across instances) or "memory" (single process only).
	Backend string `env:"RATE_LIMIT_BACKEND" envDefault:"redis"`
}

// AssetsConfig configures the S3-compatible bucket for site media.
type AssetsConfig struct {
	Enabled         bool   `env:"ASSETS_S3_ENABLED" envDefault:"false"`
	AccessKeyID     string `env:"ASSETS_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"ASSETS_S3_SECRET_ACCESS_KEY"`
	Region          string `env:"ASSETS_S3_REGION" envDefault:"us-east-1"`
	BucketName      string `env:"ASSETS_S3_BUCKET"`
	EndpointURL     string `env:"ASSETS_S3_ENDPOINT_URL"`
	PublicBaseURL   string `env:"ASSETS_PUBLIC_BASE_URL"`
	MaxWidth        int    `env:"ASSETS_MAX_WIDTH" envDefault:"1920"`
}

// MailConfig configures outgoing SMTP notifications.
type MailConfig struct {
	Host       string `env:"SMTP_HOST"`
	Port       string `env:"SMTP_PORT" envDefault:"587"`
	Username   string `env:"SMTP_USERNAME"`
	Password   string `env:"SMTP_PASSWORD"`
	Sender     string `env:"SMTP_SENDER"`
	LeadNotify string `env:"LEAD_NOTIFY_EMAIL"`
	// QueueWorkers deliver queued notifications when Redis is available.
	QueueWorkers int `env:"LEAD_NOTIFY_WORKERS" envDefault:"2"`
}

// ProxyConfig lists the reverse proxies whose forwarding header is believed.
type ProxyConfig struct {
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
	Header         string   `env:"PROXY_HEADER" envDefault:"X-Forwarded-For"`
}

// Config is the typed application configuration.
type Config struct {
	Proxy     ProxyConfig
	Identity  IdentityConfig
	RateLimit RateLimitConfig
	Assets    AssetsConfig
	Mail      MailConfig
}

// LoadConfig parses the typed configuration from the process environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := cenv.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Assets.Enabled {
		if cfg.Assets.AccessKeyID == "" || cfg.Assets.SecretAccessKey == "" || cfg.Assets.BucketName == "" {
			return nil, fmt.Errorf("ASSETS_S3_ACCESS_KEY_ID, ASSETS_S3_SECRET_ACCESS_KEY and ASSETS_S3_BUCKET are required when ASSETS_S3_ENABLED is set")
		}
	}
	if cfg.RateLimit.Max <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must be positive")
	}
	return &cfg, nil
}
