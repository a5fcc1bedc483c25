// Package queue is a Redis-backed durable job queue.
//
// Tasks wait in a pending list and are claimed atomically into a per-server
// active list. Failed tasks are parked in a scheduled sorted set until their
// backoff elapses; tasks that exhaust their attempts land in a failed list.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/johnquangdev/meeting-pipeline/pkg/config"
)

// SkipRetry marks a handler error as permanent. Wrap it to move the task
// straight to the failed list.
var SkipRetry = errors.New("skip retry")

// Task is the unit of work stored in Redis
type Task struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Payload     json.RawMessage `json:"payload"`
	Attempt     int             `json:"attempt"`
	MaxAttempts int             `json:"max_attempts"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`
	LastError   string          `json:"last_error,omitempty"`
	FailedAt    *time.Time      `json:"failed_at,omitempty"`
}

// TaskInfo describes an enqueued task
type TaskInfo struct {
	ID          string
	Name        string
	Queue       string
	MaxAttempts int
	ProcessAt   time.Time
}

// Handler processes a single task delivery
type Handler interface {
	ProcessTask(ctx context.Context, task *Task) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, task *Task) error

// ProcessTask calls f(ctx, task)
func (f HandlerFunc) ProcessTask(ctx context.Context, task *Task) error {
	return f(ctx, task)
}

// Config holds queue settings shared by clients and servers
type Config struct {
	Name         string
	ServerName   string
	Concurrency  int
	MaxAttempts  int
	BaseDelay    time.Duration
	TaskTimeout  time.Duration
	PollInterval time.Duration
	BlockTimeout time.Duration
}

// ConfigFromWorker maps WORKER_* settings onto a queue config
func ConfigFromWorker(w config.WorkerConfig) Config {
	return Config{
		Name:        w.QueueName,
		ServerName:  w.ServerName,
		Concurrency: w.Concurrency,
		MaxAttempts: w.MaxAttempts,
		BaseDelay:   w.BaseDelay,
		TaskTimeout: w.TaskTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "meeting-processing"
	}
	if c.ServerName == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "worker"
		}
		c.ServerName = host
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 5
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.BlockTimeout <= 0 {
		c.BlockTimeout = time.Second
	}
	return c
}

type keys struct {
	pending   string
	active    string
	scheduled string
	failed    string
	prefix    string
}

func newKeys(cfg Config) keys {
	prefix := "queue:" + cfg.Name
	return keys{
		pending:   prefix + ":pending",
		active:    prefix + ":active:" + cfg.ServerName,
		scheduled: prefix + ":scheduled",
		failed:    prefix + ":failed",
		prefix:    prefix,
	}
}
