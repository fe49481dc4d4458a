package config

import (
	"time"

	"github.com/tendant/simple-account/pkg/ratelimit"
)

// RateLimitConfig contains per-IP HTTP limits and email resend limits.
type RateLimitConfig struct {
	Enabled           bool    `env:"RATELIMIT_ENABLED" env-default:"true"`
	RequestsPerMinute float64 `env:"RATELIMIT_REQUESTS_PER_MINUTE" env-default:"10"`
	Burst             int     `env:"RATELIMIT_BURST" env-default:"5"`
	TrustForwardedFor bool    `env:"RATELIMIT_TRUST_FORWARDED_FOR" env-default:"false"`

	// At most ResendLimit verification or reset emails per key per ResendWindow.
	ResendLimit  int           `env:"RESEND_LIMIT" env-default:"3"`
	ResendWindow time.Duration `env:"RESEND_WINDOW" env-default:"1h"`
}

// ToMiddlewareConfig converts the per-IP settings for ratelimit.NewMiddleware
func (c RateLimitConfig) ToMiddlewareConfig() ratelimit.Config {
	cfg := ratelimit.DefaultConfig()
	cfg.Enabled = c.Enabled
	cfg.RequestsPerSecond = c.RequestsPerMinute / 60
	cfg.Burst = c.Burst
	cfg.TrustForwardedFor = c.TrustForwardedFor
	return cfg
}
