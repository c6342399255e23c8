package middleware

import (
	"net/http"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
)

// RateLimitConfig configures RateLimit
type RateLimitConfig struct {
	RequestsPerMinute int64
	Store             limiter.Store
	// OnLimitReached writes the response for a rejected request.
	OnLimitReached http.HandlerFunc
}

// RateLimit limits requests per client IP over a one-minute window.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  cfg.RequestsPerMinute,
	}
	opts := []stdlib.Option{}
	if cfg.OnLimitReached != nil {
		opts = append(opts, stdlib.WithLimitReachedHandler(stdlib.LimitReachedHandler(cfg.OnLimitReached)))
	}
	mw := stdlib.NewMiddleware(limiter.New(cfg.Store, rate), opts...)
	return mw.Handler
}
