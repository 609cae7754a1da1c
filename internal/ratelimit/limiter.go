// Package ratelimit enforces a per-client request budget over a fixed
// window, counted in Redis so the budget survives restarts.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"guild-gateway/internal/common/errors"
	"guild-gateway/internal/redis"
)

type Limiter struct {
	redis  *redis.Client
	config *Config
}

type Config struct {
	Max     int           `json:"max"`
	Window  time.Duration `json:"window"`
	Enabled bool          `json:"enabled"`
}

type RateLimit struct {
	Limit     int           `json:"limit"`
	Window    time.Duration `json:"window"`
	Remaining int           `json:"remaining"`
	ResetTime time.Time     `json:"reset_time"`
}

// NewLimiter builds a limiter over redisClient. A nil client disables
// enforcement; requests are then always allowed (degraded mode).
func NewLimiter(redisClient *redis.Client, config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Max:     100,
			Window:  15 * time.Minute,
			Enabled: true,
		}
	}

	return &Limiter{
		redis:  redisClient,
		config: config,
	}
}

func (l *Limiter) CheckLimit(ctx context.Context, key string) (*RateLimit, error) {
	if !l.config.Enabled || l.redis == nil {
		return &RateLimit{
			Limit:     l.config.Max,
			Window:    l.config.Window,
			Remaining: l.config.Max,
			ResetTime: time.Now().Add(l.config.Window),
		}, nil
	}

	_, current, err := l.redis.CheckRateLimit(ctx, fmt.Sprintf("rate_limit:%s", key), l.config.Max, l.config.Window)
	if err != nil {
		return nil, errors.InternalError("failed to check rate limit", err)
	}

	remaining := l.config.Max - current
	if remaining < 0 {
		remaining = 0
	}

	return &RateLimit{
		Limit:     l.config.Max,
		Window:    l.config.Window,
		Remaining: remaining,
		ResetTime: time.Now().Add(l.config.Window),
	}, nil
}

// HTTPMiddleware enforces the limit before any downstream middleware
func (l *Limiter) HTTPMiddleware(keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			key := keyFunc(r)
			if key == "" {
				// If no key, allow the request
				next.ServeHTTP(w, r)
				return
			}

			rateLimit, err := l.CheckLimit(r.Context(), key)
			if err != nil {
				// On error, allow the request rather than block traffic
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rateLimit.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", rateLimit.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", rateLimit.ResetTime.Unix()))

			if rateLimit.Remaining <= 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rateLimit.Window.Seconds())))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IPBasedKey identifies clients by originating IP
func IPBasedKey(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return fmt.Sprintf("ip:%s", ip)
}
