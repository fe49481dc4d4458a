package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
)

// Config holds per-IP HTTP rate limiting configuration
type Config struct {
	Enabled bool

	// RequestsPerSecond is the sustained rate allowed per client IP.
	RequestsPerSecond float64
	// Burst is the number of requests allowed at once.
	Burst int
	// BucketTTL is how long an idle client's bucket is kept in memory.
	BucketTTL time.Duration
	// TrustForwardedFor reads the client IP from proxy headers before
	// RemoteAddr. Enable only behind a trusted proxy.
	TrustForwardedFor bool
}

// DefaultConfig allows 10 requests per minute per IP with a burst of 5.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		RequestsPerSecond: 10.0 / 60.0,
		Burst:             5,
		BucketTTL:         time.Hour,
	}
}

// NewMiddleware returns a chi-compatible middleware limiting requests per
// client IP. A disabled config yields a pass-through middleware.
func NewMiddleware(cfg Config) func(http.Handler) http.Handler {
	if !cfg.Enabled || cfg.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.BucketTTL <= 0 {
		cfg.BucketTTL = time.Hour
	}

	lmt := tollbooth.NewLimiter(cfg.RequestsPerSecond, &limiter.ExpirableOptions{
		DefaultExpirationTTL: cfg.BucketTTL,
	})
	if cfg.Burst > 0 {
		lmt.SetBurst(cfg.Burst)
	}
	if cfg.TrustForwardedFor {
		lmt.SetIPLookups([]string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"})
	} else {
		lmt.SetIPLookups([]string{"RemoteAddr"})
	}

	body, _ := json.Marshal(map[string]string{
		"error": idmerrors.GetMessage(idmerrors.ErrRateLimitExceeded),
		"code":  string(idmerrors.ErrCodeRateLimitExceeded),
	})
	lmt.SetMessage(string(body))
	lmt.SetMessageContentType("application/json; charset=utf-8")
	lmt.SetOnLimitReached(func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("Rate limit exceeded", "remote", r.RemoteAddr, "method", r.Method, "path", r.URL.Path)
	})

	return func(next http.Handler) http.Handler {
		return tollbooth.LimitHandler(lmt, next)
	}
}
