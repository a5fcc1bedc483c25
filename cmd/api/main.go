package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/meeting-pipeline/pkg/validator"

	"github.com/johnquangdev/meeting-pipeline/internal/adapter/handler"
	"github.com/johnquangdev/meeting-pipeline/internal/adapter/repository"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/meeting-pipeline/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/queue"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/storage"
	meetingUsecase "github.com/johnquangdev/meeting-pipeline/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
	"github.com/johnquangdev/meeting-pipeline/pkg/jwt"
	pkglogger "github.com/johnquangdev/meeting-pipeline/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatalf("Invalid API configuration: %v", err)
	}

	logger, err := pkglogger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	logger.Info("🔧 Initializing dependencies...")

	logger.Info("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	// Production deployments manage schema with cmd/migrate
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			logger.Fatal("DB_AUTO_MIGRATE is enabled in production; run cmd/migrate instead")
		}
		if _, err := database.Migrate(db, migrate.Up, 0, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	logger.Info("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	logger.Info("🗄️ Connecting to object storage...")
	storageClient, err := storage.NewMinIOClient(&cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to create storage client", zap.Error(err))
	}
	bucketCtx, cancelBuckets := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	if err := storageClient.EnsureBuckets(bucketCtx, repositories.BucketRecordings, repositories.BucketExports); err != nil {
		cancelBuckets()
		logger.Fatal("Failed to prepare storage buckets", zap.Error(err))
	}
	cancelBuckets()

	logger.Info("⚙️ Initializing repositories...")
	taskQueue := repository.NewTaskQueue(queue.NewClient(redisClient, queue.ConfigFromWorker(cfg.Worker)))
	meetingService := meetingUsecase.NewMeetingService(
		repository.NewMeetingRepository(db),
		repository.NewTranscriptRepository(db),
		repository.NewActionItemRepository(db),
		repository.NewExportRepository(db),
		storageClient,
		taskQueue,
		cache.NewRunLock(redisClient, cache.DefaultRunLockTTL),
		cfg.Assembly.WebhookSecret,
		logger,
	)

	logger.Info("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)

	logger.Info("🛣️ Setting up routes...")
	router := handler.NewRouter(
		handler.NewMeetingHandler(meetingService, logger),
		handler.NewReviewHandler(meetingService, logger),
		handler.NewWebhookHandler(meetingService, logger),
		httpmw.EchoAuth(jwtManager),
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment))

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("✅ Server stopped gracefully")
}
