package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("DISCORD_TOKEN", "token")
}

func TestLoad_Defaults(t *testing.T) {
	validEnv(t)
	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddress)
	assert.Equal(t, "0", cfg.RedisDB)
	assert.Equal(t, "private_messages", cfg.QueueName)
	assert.Equal(t, "", cfg.RabbitMQURL)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, "100", cfg.RateLimitMax)
	assert.Equal(t, "15m", cfg.RateLimitWindow)
}

func TestLoad_Overrides(t *testing.T) {
	validEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("QUEUE_NAME", "dm_queue")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dm_queue", cfg.QueueName)
	assert.False(t, cfg.RateLimitEnabled)
}

func TestValidate(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		validEnv(t)
		cfg := Load()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing api key", func(t *testing.T) {
		validEnv(t)
		t.Setenv("API_KEY", "")
		cfg := Load()
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API_KEY")
	})

	t.Run("missing discord token", func(t *testing.T) {
		validEnv(t)
		t.Setenv("DISCORD_TOKEN", "")
		cfg := Load()
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DISCORD_TOKEN")
	})

	t.Run("invalid port", func(t *testing.T) {
		validEnv(t)
		t.Setenv("PORT", "not-a-port")
		cfg := Load()
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid redis db", func(t *testing.T) {
		validEnv(t)
		t.Setenv("REDIS_DB", "16")
		cfg := Load()
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid rate limit max", func(t *testing.T) {
		validEnv(t)
		t.Setenv("RATE_LIMIT_MAX", "0")
		cfg := Load()
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid rate limit window", func(t *testing.T) {
		validEnv(t)
		t.Setenv("RATE_LIMIT_WINDOW", "15 minutes")
		cfg := Load()
		assert.Error(t, cfg.Validate())
	})

	t.Run("rate limit values ignored when disabled", func(t *testing.T) {
		validEnv(t)
		t.Setenv("RATE_LIMIT_ENABLED", "false")
		t.Setenv("RATE_LIMIT_MAX", "0")
		cfg := Load()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("tls cert without key", func(t *testing.T) {
		validEnv(t)
		t.Setenv("TLS_CERT", "/tmp/cert.pem")
		cfg := Load()
		assert.Error(t, cfg.Validate())
	})
}

func TestTypedGetters(t *testing.T) {
	validEnv(t)
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_POOL_SIZE", "20")
	t.Setenv("RATE_LIMIT_MAX", "250")
	t.Setenv("RATE_LIMIT_WINDOW", "1h")

	cfg := Load()
	assert.Equal(t, 3, cfg.RedisDBNum())
	assert.Equal(t, 20, cfg.RedisPoolSizeNum())
	assert.Equal(t, 250, cfg.RateLimitMaxNum())
	assert.Equal(t, time.Hour, cfg.RateLimitWindowDuration())
}

func TestTypedGetters_Fallbacks(t *testing.T) {
	validEnv(t)
	t.Setenv("REDIS_POOL_SIZE", "garbage")
	t.Setenv("RATE_LIMIT_MAX", "garbage")
	t.Setenv("RATE_LIMIT_WINDOW", "garbage")

	cfg := Load()
	assert.Equal(t, 10, cfg.RedisPoolSizeNum())
	assert.Equal(t, 100, cfg.RateLimitMaxNum())
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindowDuration())
}
