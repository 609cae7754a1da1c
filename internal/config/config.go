// Package config provides configuration management for the guild gateway.
// It handles loading configuration from environment variables with sensible
// defaults and validates the configuration to ensure the gateway starts safely.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 3000)
//   - LOG_LEVEL: Logging level (default: info)
//   - LOG_FILE: Log file path (default: stdout)
//
// Security:
//   - API_KEY: Shared secret expected in the X-API-Key header (required)
//   - TLS_CERT / TLS_KEY: Optional TLS certificate and key paths
//
// Discord:
//   - DISCORD_TOKEN: Bot token for the Discord client (required)
//
// Redis Configuration:
//   - REDIS_ADDRESS: Redis server address (default: localhost:6379)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//
// Rate Limiting:
//   - RATE_LIMIT_ENABLED: Enable rate limiting (default: true)
//   - RATE_LIMIT_MAX: Max requests per window per client (default: 100)
//   - RATE_LIMIT_WINDOW: Rate limit time window (default: 15m)
//
// Message Queue:
//   - RABBITMQ_URL: RabbitMQ connection URL (empty disables the consumer)
//   - QUEUE_NAME: Delivery message queue name (default: private_messages)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the guild gateway.
// All string fields correspond to environment variables that can be set to
// override the default values.
//
// The configuration is loaded using the Load() function and should be
// validated using the Validate() method before use.
type Config struct {
	// Application settings
	Port     string // Server port number
	LogLevel string // Logging level (debug, info, warn, error)
	LogFile  string // Log file path, empty for stdout

	// Security
	APIKey  string // Shared secret for the X-API-Key header
	TLSCert string // TLS certificate path (optional)
	TLSKey  string // TLS key path (optional)

	// Discord client
	DiscordToken string // Bot token

	// Redis configuration for the cache store and rate limiter
	RedisAddress  string // Redis server address (host:port)
	RedisPassword string // Redis authentication password
	RedisDB       string // Redis database number (0-15)
	RedisPoolSize string // Redis connection pool size

	// Rate limiting configuration
	RateLimitEnabled bool   // Whether rate limiting is enabled
	RateLimitMax     string // Max requests per window per client
	RateLimitWindow  string // Rate limiting time window (e.g., "15m")

	// Message queue configuration
	RabbitMQURL string // RabbitMQ connection URL, empty disables the consumer
	QueueName   string // Delivery message queue name
}

// Load creates a new Config instance with values loaded from environment
// variables. If an environment variable is not set, the corresponding
// default value is used.
//
// This function does not validate the configuration - call Validate() on the
// returned Config to ensure all required values are properly set and valid.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		APIKey:  getEnv("API_KEY", ""),
		TLSCert: getEnv("TLS_CERT", ""),
		TLSKey:  getEnv("TLS_KEY", ""),

		DiscordToken: getEnv("DISCORD_TOKEN", ""),

		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
		RedisPoolSize: getEnv("REDIS_POOL_SIZE", "10"),

		RateLimitEnabled: getBoolEnv("RATE_LIMIT_ENABLED", true),
		RateLimitMax:     getEnv("RATE_LIMIT_MAX", "100"),
		RateLimitWindow:  getEnv("RATE_LIMIT_WINDOW", "15m"),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		QueueName:   getEnv("QUEUE_NAME", "private_messages"),
	}
}

// getEnv retrieves an environment variable value or returns a default value
// if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv retrieves a boolean environment variable value or returns a
// default value when unset or unparseable.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate performs validation on the configuration to ensure all required
// fields are present and all values are valid.
//
// The gateway should call this method after loading configuration and
// before starting to ensure safe operation.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY environment variable is required")
	}

	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN environment variable is required")
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	if c.RedisAddress != "" {
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		if poolSize, err := strconv.Atoi(c.RedisPoolSize); err != nil || poolSize < 1 {
			return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
		}
	}

	if c.RateLimitEnabled {
		if max, err := strconv.Atoi(c.RateLimitMax); err != nil || max < 1 {
			return fmt.Errorf("RATE_LIMIT_MAX must be a positive number")
		}
		if _, err := time.ParseDuration(c.RateLimitWindow); err != nil {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be a valid duration (e.g., '15m')")
		}
	}

	if (c.TLSCert == "") != (c.TLSKey == "") {
		return fmt.Errorf("TLS_CERT and TLS_KEY must be set together")
	}

	return nil
}

// RedisDBNum returns the parsed Redis database number.
// Call Validate() first; invalid values fall back to 0.
func (c *Config) RedisDBNum() int {
	db, _ := strconv.Atoi(c.RedisDB)
	return db
}

// RedisPoolSizeNum returns the parsed Redis pool size, defaulting to 10.
func (c *Config) RedisPoolSizeNum() int {
	size, err := strconv.Atoi(c.RedisPoolSize)
	if err != nil || size < 1 {
		return 10
	}
	return size
}

// RateLimitMaxNum returns the parsed per-window request limit, defaulting to 100.
func (c *Config) RateLimitMaxNum() int {
	max, err := strconv.Atoi(c.RateLimitMax)
	if err != nil || max < 1 {
		return 100
	}
	return max
}

// RateLimitWindowDuration returns the parsed rate limit window, defaulting to 15m.
func (c *Config) RateLimitWindowDuration() time.Duration {
	window, err := time.ParseDuration(c.RateLimitWindow)
	if err != nil || window <= 0 {
		return 15 * time.Minute
	}
	return window
}
