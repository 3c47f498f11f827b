package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phambaophuc/ecovision/internal/config"
	"github.com/phambaophuc/ecovision/internal/http/handlers"
	"github.com/phambaophuc/ecovision/internal/http/routes"
	"github.com/phambaophuc/ecovision/internal/metrics"
	"github.com/phambaophuc/ecovision/internal/services/events"
	"github.com/phambaophuc/ecovision/internal/services/identifier"
	"github.com/phambaophuc/ecovision/internal/services/processor"
	"github.com/phambaophuc/ecovision/internal/services/tokens"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	metrics.Init()

	// Initialize services
	imageProcessor := processor.NewImageProcessor(processor.Options{
		MaxFileSize:  cfg.Identify.MaxFileSize,
		MaxDimension: cfg.Identify.MaxDimension,
		AllowedTypes: cfg.Identify.AllowedTypes,
	})

	var recognizer identifier.Recognizer
	gemini, err := identifier.NewGeminiRecognizer(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
	if err != nil {
		logger.Warn("Recognizer unavailable, /api/identify will answer 503", zap.Error(err))
	} else {
		recognizer = gemini
	}
	identifyService := identifier.NewService(imageProcessor, recognizer, cfg.Identify, logger)

	var tokenStore tokens.Store
	if cfg.Redis.Addr != "" {
		redisStore := tokens.NewRedisStore(cfg.Redis, cfg.Identify.TokenTTL)
		defer redisStore.Close()
		tokenStore = redisStore
	} else {
		logger.Warn("REDIS_ADDR not set, keeping access tokens in memory")
		tokenStore = tokens.NewMemoryStore(cfg.Identify.TokenTTL, cfg.Identify.MaxMemoryTokens)
	}

	var publisher events.Publisher = events.NewLogPublisher(logger)
	if cfg.RabbitMQ.URL != "" {
		queue, err := events.NewQueuePublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logger)
		if err != nil {
			logger.Warn("Failed to initialize event queue", zap.Error(err))
			// Continue with log-only events
		} else {
			publisher = queue
		}
	}
	defer publisher.Close()

	// Initialize handlers
	identifyHandler := handlers.NewIdentifyHandler(identifyService, tokenStore, publisher, logger)

	router := routes.NewRouter(identifyHandler, logger, cfg.Identify.MaxFileSize)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
