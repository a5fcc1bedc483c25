package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/internal/adapter/repository"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/queue"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/exporter"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/summarizer"
	pkgai "github.com/johnquangdev/meeting-pipeline/pkg/ai"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
	pkglogger "github.com/johnquangdev/meeting-pipeline/pkg/logger"
)

const (
	statsInterval       = time.Minute
	maxReportedFailures = 10
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Invalid worker configuration: %v", err)
	}

	logger, err := pkglogger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

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
	if err := storageClient.EnsureBuckets(ctx, repositories.BucketRecordings, repositories.BucketExports); err != nil {
		logger.Fatal("Failed to prepare storage buckets", zap.Error(err))
	}

	logger.Info("🤖 Initializing AI components...")
	gemini, err := pkgai.NewGeminiClient(ctx, &cfg.Gemini, logger)
	if err != nil {
		logger.Fatal("Failed to create Gemini client", zap.Error(err))
	}

	queueCfg := queue.ConfigFromWorker(cfg.Worker)
	orchestrator := pipeline.NewOrchestrator(pipeline.Dependencies{
		Meetings:    repository.NewMeetingRepository(db),
		Transcripts: repository.NewTranscriptRepository(db),
		Summaries:   repository.NewSummaryRepository(db),
		Actions:     repository.NewActionItemRepository(db),
		Exports:     repository.NewExportRepository(db),
		Storage:     storageClient,
		Queue:       repository.NewTaskQueue(queue.NewClient(redisClient, queueCfg)),
		Lock:        cache.NewRunLock(redisClient, cache.DefaultRunLockTTL),
		Transcriber: pkgai.NewAssemblyAIClient(&cfg.Assembly),
		Summarizer:  summarizer.New(gemini, logger),
		Renderer:    exporter.NewRenderer(),
		Webhook: pipeline.WebhookConfig{
			URL:    cfg.GetWebhookURL(),
			Secret: cfg.Assembly.WebhookSecret,
		},
	}, logger)

	go logQueueStats(ctx, queue.NewInspector(redisClient, queueCfg), logger)

	server := queue.NewServer(redisClient, queueCfg, logger)
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, orchestrator)
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Fatal("❌ Worker stopped", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	logger.Info("🛑 Shutting down worker...")

	// Run waits for in-flight tasks once ctx is cancelled
	select {
	case err := <-done:
		if err != nil {
			logger.Error("❌ Worker stopped with error", zap.Error(err))
			return
		}
		logger.Info("✅ Worker stopped gracefully")
	case <-time.After(cfg.Worker.ShutdownTimeout):
		logger.Warn("⚠️ Shutdown timeout exceeded; in-flight tasks will be recovered on next start",
			zap.Duration("timeout", cfg.Worker.ShutdownTimeout))
	}
}

func logQueueStats(ctx context.Context, inspector *queue.Inspector, logger *zap.Logger) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	var lastFailed int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lastFailed = reportQueue(ctx, inspector, logger, lastFailed)
		}
	}
}

// reportQueue logs queue sizes and, when the failed list has grown since
// the last report, the newest failures. It returns the failed count seen.
func reportQueue(ctx context.Context, inspector *queue.Inspector, logger *zap.Logger, lastFailed int64) int64 {
	stats, err := inspector.Stats(ctx)
	if err != nil {
		logger.Warn("⚠️ Failed to read queue stats", zap.Error(err))
		return lastFailed
	}
	logger.Info("📊 Queue stats",
		zap.Int64("pending", stats.Pending),
		zap.Int64("active", stats.Active),
		zap.Int64("scheduled", stats.Scheduled),
		zap.Int64("failed", stats.Failed))

	grown := stats.Failed - lastFailed
	if grown <= 0 {
		return stats.Failed
	}
	if grown > maxReportedFailures {
		grown = maxReportedFailures
	}
	failed, err := inspector.FailedTasks(ctx, grown)
	if err != nil {
		logger.Warn("⚠️ Failed to read failed tasks", zap.Error(err))
		return stats.Failed
	}
	for _, task := range failed {
		logger.Warn("💀 Task in failed list",
			zap.String("task_id", task.ID),
			zap.String("task", task.Name),
			zap.Int("attempt", task.Attempt),
			zap.String("last_error", task.LastError))
	}
	return stats.Failed
}
