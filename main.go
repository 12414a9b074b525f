package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/collegehub-edu/portal-service/internal/auth"
	"github.com/collegehub-edu/portal-service/internal/cache"
	"github.com/collegehub-edu/portal-service/internal/config"
	"github.com/collegehub-edu/portal-service/internal/events"
	"github.com/collegehub-edu/portal-service/internal/handlers"
	"github.com/collegehub-edu/portal-service/internal/repositories/postgres"
	"github.com/collegehub-edu/portal-service/internal/services"
	"github.com/collegehub-edu/portal-service/internal/utils"
	"github.com/collegehub-edu/portal-service/internal/validator"
	"github.com/collegehub-edu/portal-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis: %v", err)
		}
	}

	// Initialize repositories
	repo := postgres.NewPostgresRepository(db)

	// Initialize validator
	v := validator.New()

	// Initialize token service
	tokens := auth.NewTokenService(cfg.Auth)

	// Initialize message bus for the email dispatcher
	var bus *events.Bus
	if len(cfg.KafkaBrokers) > 0 {
		bus, err = events.NewKafkaBus(cfg.KafkaBrokers, "portal-service", slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize kafka bus: %v", err)
		}
	} else {
		bus = events.NewGoChannelBus(slogLogger)
	}

	// SMTP is optional; without EMAIL_FROM the delivery worker stays off and
	// bulk sends are rejected at dispatch time.
	var sender services.EmailSender
	smtpSender, err := services.NewSMTPSender(cfg.SMTP)
	if err != nil {
		log.Printf("Warning: email delivery disabled: %v", err)
	} else {
		sender = smtpSender
	}

	// Initialize services
	serviceManager := services.NewServiceManager(services.ServiceManagerDeps{
		Repo:        repo,
		Tokens:      tokens,
		Bus:         bus,
		Sender:      sender,
		StatusCache: cache.NewCacheHelper(redisClient, "approval_status:"),
		Config:      cfg,
		Logger:      slogLogger,
		Validator:   v,
	})

	// Initialize handlers
	limiter := cache.NewRateLimiter(redisClient, cfg.Auth.RateLimitWindow, cfg.Auth.RateLimitRequests)
	handlerManager := handlers.NewHandlerManager(handlers.HandlerManagerDeps{
		Services: serviceManager,
		Repo:     repo,
		Tokens:   tokens,
		Limiter:  limiter,
		Config:   cfg,
		Logger:   logger,
	})

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger, cfg.CORSAllowedOrigins)

	// Setup routes
	handlerManager.SetupRoutes(router)

	// Start the email delivery worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if sender != nil {
		go func() {
			if err := serviceManager.Mailer().RunWorker(workerCtx); err != nil {
				logger.Error("email worker stopped", "error", err)
			}
		}()
	}

	// Create HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Stop the email worker and close the bus
	stopWorker()
	if err := bus.Close(); err != nil {
		log.Printf("Failed to close message bus: %v", err)
	}

	// Close database connection
	if err := repo.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}

	// Close Redis connection
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}
