package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-gateway/internal/redis"
)

func setupLimiter(t *testing.T, config *Config) *Limiter {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient(&redis.Config{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewLimiter(client, config)
}

func TestCheckLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("counts down the budget", func(t *testing.T) {
		limiter := setupLimiter(t, &Config{Max: 3, Window: time.Minute, Enabled: true})

		first, err := limiter.CheckLimit(ctx, "ip:10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, 3, first.Limit)
		assert.Equal(t, 3, first.Remaining)

		second, err := limiter.CheckLimit(ctx, "ip:10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, 2, second.Remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter := setupLimiter(t, &Config{Max: 2, Window: time.Minute, Enabled: true})

		_, err := limiter.CheckLimit(ctx, "ip:10.0.0.1")
		require.NoError(t, err)

		other, err := limiter.CheckLimit(ctx, "ip:10.0.0.2")
		require.NoError(t, err)
		assert.Equal(t, 2, other.Remaining)
	})

	t.Run("disabled limiter always allows", func(t *testing.T) {
		limiter := setupLimiter(t, &Config{Max: 1, Window: time.Minute, Enabled: false})

		for i := 0; i < 5; i++ {
			limit, err := limiter.CheckLimit(ctx, "ip:10.0.0.1")
			require.NoError(t, err)
			assert.Equal(t, 1, limit.Remaining)
		}
	})

	t.Run("nil redis always allows", func(t *testing.T) {
		limiter := NewLimiter(nil, &Config{Max: 1, Window: time.Minute, Enabled: true})

		for i := 0; i < 5; i++ {
			limit, err := limiter.CheckLimit(ctx, "ip:10.0.0.1")
			require.NoError(t, err)
			assert.Equal(t, 1, limit.Remaining)
		}
	})

	t.Run("defaults applied for nil config", func(t *testing.T) {
		limiter := NewLimiter(nil, nil)
		limit, err := limiter.CheckLimit(ctx, "ip:10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, 100, limit.Limit)
		assert.Equal(t, 15*time.Minute, limit.Window)
	})
}

func TestHTTPMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("sets rate limit headers", func(t *testing.T) {
		limiter := setupLimiter(t, &Config{Max: 10, Window: time.Minute, Enabled: true})
		handler := limiter.HTTPMiddleware(IPBasedKey)(okHandler)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/users", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("rejects once the budget is spent", func(t *testing.T) {
		limiter := setupLimiter(t, &Config{Max: 2, Window: time.Minute, Enabled: true})
		handler := limiter.HTTPMiddleware(IPBasedKey)(okHandler)

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/users", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/users", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	})

	t.Run("disabled limiter passes everything", func(t *testing.T) {
		limiter := setupLimiter(t, &Config{Max: 1, Window: time.Minute, Enabled: false})
		handler := limiter.HTTPMiddleware(IPBasedKey)(okHandler)

		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/users", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestIPBasedKey(t *testing.T) {
	t.Run("prefers forwarded for", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		req.Header.Set("X-Real-IP", "198.51.100.1")
		assert.Equal(t, "ip:203.0.113.7", IPBasedKey(req))
	})

	t.Run("falls back to real ip", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Real-IP", "198.51.100.1")
		assert.Equal(t, "ip:198.51.100.1", IPBasedKey(req))
	})

	t.Run("falls back to remote addr", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		assert.Equal(t, "ip:"+req.RemoteAddr, IPBasedKey(req))
	})
}
