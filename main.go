package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"guild-gateway/internal/auth"
	"guild-gateway/internal/cache"
	"guild-gateway/internal/common/logging"
	"guild-gateway/internal/config"
	"guild-gateway/internal/directory"
	"guild-gateway/internal/handlers"
	"guild-gateway/internal/middleware"
	"guild-gateway/internal/rabbitmq"
	"guild-gateway/internal/ratelimit"
	"guild-gateway/internal/redis"
	"guild-gateway/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logging.InitGlobalLogger()
	defer logging.MustSync()
	logger := logging.GetGlobalLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cache store. Connect failure is not fatal: the gateway serves in
	// always-miss mode until Redis comes back and the process restarts.
	var store cache.Store
	redisClient, err := redis.NewClient(&redis.Config{
		Address:  cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDBNum(),
		PoolSize: cfg.RedisPoolSizeNum(),
	})
	if err != nil {
		logger.Warn("Redis unavailable, cache disabled",
			logging.String("address", cfg.RedisAddress),
			logging.NamedError("error", err),
		)
	} else {
		store = redisClient
		defer redisClient.Close()
	}

	dir, err := directory.NewDiscordClient(directory.DiscordConfig{
		Token: cfg.DiscordToken,
	})
	if err != nil {
		log.Fatalf("Failed to create discord client: %v", err)
	}
	defer dir.Close()

	// Supervised login: transient failures retry with backoff, a bad
	// token kills the process instead of looping.
	go func() {
		if err := dir.Connect(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Discord login failed", err)
			logging.MustSync()
			os.Exit(1)
		}
	}()

	consumer := rabbitmq.NewConsumer(cfg.RabbitMQURL, cfg.QueueName, dir)
	if err := consumer.Start(ctx); err != nil {
		logger.Warn("Queue consumer disabled",
			logging.String("queue", cfg.QueueName),
			logging.NamedError("error", err),
		)
	}
	defer consumer.Close()

	limiter := ratelimit.NewLimiter(redisClient, &ratelimit.Config{
		Max:     cfg.RateLimitMaxNum(),
		Window:  cfg.RateLimitWindowDuration(),
		Enabled: cfg.RateLimitEnabled,
	})

	h := handlers.New(dir, store, logger)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handlers.NotFound)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(limiter.HTTPMiddleware(ratelimit.IPBasedKey))
	apiRouter.Use(middleware.LoggingMiddleware)
	apiRouter.Use(auth.RequireAPIKey(cfg.APIKey))
	h.Register(apiRouter)

	srv := server.New(router, cfg.Port, cfg.TLSCert, cfg.TLSKey)
	srv.Start()
	logger.Info("Server started",
		logging.String("port", cfg.Port),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server exited")
}
