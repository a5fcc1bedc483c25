package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/pkg/jobcontext"
)

// promoteScript moves due tasks from the scheduled set back to pending.
// Running it as one script keeps two schedulers from promoting a task twice.
var promoteScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
for _, raw in ipairs(due) do
	redis.call('ZREM', KEYS[1], raw)
	redis.call('LPUSH', KEYS[2], raw)
end
return #due
`)

const promoteBatch = 100

// Server pulls tasks from the queue and hands them to a Handler
type Server struct {
	rdb    redis.UniversalClient
	cfg    Config
	keys   keys
	logger *zap.Logger
	now    func() time.Time
}

// NewServer creates a queue server
func NewServer(rdb redis.UniversalClient, cfg Config, logger *zap.Logger) *Server {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		rdb:    rdb,
		cfg:    cfg,
		keys:   newKeys(cfg),
		logger: logger,
		now:    time.Now,
	}
}

// Run processes tasks until ctx is cancelled, then waits for in-flight tasks
func (s *Server) Run(ctx context.Context, h Handler) error {
	if h == nil {
		return errors.New("queue handler is required")
	}

	recovered, err := s.recoverActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover active tasks: %w", err)
	}
	if recovered > 0 {
		s.logger.Warn("♻️ Recovered tasks left active by a previous run",
			zap.String("queue", s.cfg.Name),
			zap.Int("count", recovered))
	}

	s.logger.Info("🚀 Queue server started",
		zap.String("queue", s.cfg.Name),
		zap.String("server", s.cfg.ServerName),
		zap.Int("concurrency", s.cfg.Concurrency))

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.schedule(ctx)
	}()

	for i := 0; i < s.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.work(ctx, workerID, h)
		}(i)
	}

	<-ctx.Done()
	wg.Wait()

	s.logger.Info("🛑 Queue server stopped", zap.String("queue", s.cfg.Name))
	return nil
}

// recoverActive returns tasks a crashed run left in this server's active list
func (s *Server) recoverActive(ctx context.Context) (int, error) {
	count := 0
	for {
		err := s.rdb.RPopLPush(ctx, s.keys.active, s.keys.pending).Err()
		if errors.Is(err, redis.Nil) {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		count++
	}
}

func (s *Server) schedule(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.promote(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error("❌ Failed to promote scheduled tasks", zap.Error(err))
				}
				continue
			}
			if n > 0 {
				s.logger.Debug("⏰ Promoted scheduled tasks", zap.Int("count", n))
			}
		}
	}
}

func (s *Server) promote(ctx context.Context) (int, error) {
	cutoff := s.now().UnixMilli()
	return promoteScript.Run(ctx, s.rdb,
		[]string{s.keys.scheduled, s.keys.pending},
		cutoff, promoteBatch,
	).Int()
}

func (s *Server) work(ctx context.Context, workerID int, h Handler) {
	for ctx.Err() == nil {
		raw, err := s.rdb.BRPopLPush(ctx, s.keys.pending, s.keys.active, s.cfg.BlockTimeout).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("❌ Failed to claim task", zap.Int("worker_id", workerID), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.cfg.PollInterval):
			}
			continue
		}

		// In-flight tasks finish even when shutdown has started.
		s.process(context.WithoutCancel(ctx), workerID, raw, h)
	}
}

func (s *Server) process(ctx context.Context, workerID int, raw string, h Handler) {
	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		s.logger.Error("❌ Dropping malformed task", zap.Int("worker_id", workerID), zap.Error(err))
		s.moveToFailed(ctx, raw, raw)
		return
	}
	if task.MaxAttempts <= 0 {
		task.MaxAttempts = s.cfg.MaxAttempts
	}
	task.Attempt++

	taskCtx, cancel := jobcontext.Begin(ctx, jobcontext.Metadata{
		TaskID:      task.ID,
		TaskName:    task.Name,
		WorkerID:    workerID,
		Attempt:     task.Attempt,
		MaxAttempts: task.MaxAttempts,
	}, s.cfg.TaskTimeout)
	err := jobcontext.Run(taskCtx, func(ctx context.Context) error {
		return h.ProcessTask(ctx, &task)
	})
	cancel()

	if err == nil {
		if err := s.rdb.LRem(ctx, s.keys.active, 1, raw).Err(); err != nil {
			s.logger.Error("❌ Failed to ack task", zap.String("task_id", task.ID), zap.Error(err))
		}
		return
	}

	task.LastError = err.Error()

	if errors.Is(err, SkipRetry) || task.Attempt >= task.MaxAttempts {
		failedAt := s.now().UTC()
		task.FailedAt = &failedAt
		next, _ := json.Marshal(&task)
		s.logger.Error("💀 Task failed permanently",
			zap.String("task_id", task.ID),
			zap.String("task", task.Name),
			zap.Int("attempt", task.Attempt),
			zap.Error(err))
		s.moveToFailed(ctx, raw, string(next))
		return
	}

	delay := s.retryDelay(task.Attempt)
	next, _ := json.Marshal(&task)
	readyAt := s.now().Add(delay)

	_, txErr := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, s.keys.active, 1, raw)
		pipe.ZAdd(ctx, s.keys.scheduled, redis.Z{Score: float64(readyAt.UnixMilli()), Member: string(next)})
		return nil
	})
	if txErr != nil {
		s.logger.Error("❌ Failed to schedule retry", zap.String("task_id", task.ID), zap.Error(txErr))
		return
	}

	s.logger.Warn("🔁 Task failed, retry scheduled",
		zap.String("task_id", task.ID),
		zap.String("task", task.Name),
		zap.Int("attempt", task.Attempt),
		zap.Duration("backoff", delay),
		zap.Error(err))
}

// retryDelay is BaseDelay after the first failure and doubles from there
func (s *Server) retryDelay(attempt int) time.Duration {
	return jobcontext.CalculateBackoff(attempt-1, s.cfg.BaseDelay)
}

func (s *Server) moveToFailed(ctx context.Context, raw, next string) {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, s.keys.active, 1, raw)
		pipe.LPush(ctx, s.keys.failed, next)
		return nil
	})
	if err != nil {
		s.logger.Error("❌ Failed to move task to failed list", zap.Error(err))
	}
}
