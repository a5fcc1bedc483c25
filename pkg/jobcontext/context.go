package jobcontext

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type KeyContext string

var (
	keyTaskID      KeyContext = "task_id"
	keyTaskName    KeyContext = "task_name"
	keyWorkerID    KeyContext = "worker_id"
	keyAttempt     KeyContext = "attempt"
	keyMaxAttempts KeyContext = "max_attempts"
	keyStartTime   KeyContext = "task_start_time"
)

// Metadata describes one delivery of a queued task
type Metadata struct {
	TaskID      string
	TaskName    string
	WorkerID    int
	Attempt     int // 1-based
	MaxAttempts int
	StartTime   time.Time
}

// Begin derives a task context carrying metadata, bounded by timeout.
// A zero timeout leaves the parent deadline in place.
func Begin(parentCtx context.Context, meta Metadata, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, timeout)
	} else {
		ctx, cancel = context.WithCancel(parentCtx)
	}

	if meta.StartTime.IsZero() {
		meta.StartTime = time.Now()
	}

	ctx = context.WithValue(ctx, keyTaskID, meta.TaskID)
	ctx = context.WithValue(ctx, keyTaskName, meta.TaskName)
	ctx = context.WithValue(ctx, keyWorkerID, meta.WorkerID)
	ctx = context.WithValue(ctx, keyAttempt, meta.Attempt)
	ctx = context.WithValue(ctx, keyMaxAttempts, meta.MaxAttempts)
	ctx = context.WithValue(ctx, keyStartTime, meta.StartTime)

	return ctx, cancel
}

// Run executes fn once, turning a panic into an error
func Run(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before task execution: %w", ctx.Err())
	}

	return fn(ctx)
}

// GetTaskID extracts task ID from context
func GetTaskID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(keyTaskID).(string)
	return id, ok
}

// GetTaskName extracts task name from context
func GetTaskName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(keyTaskName).(string)
	return name, ok
}

// GetWorkerID extracts worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetAttempt extracts the current attempt number from context
func GetAttempt(ctx context.Context) int {
	attempt, ok := ctx.Value(keyAttempt).(int)
	if !ok {
		return 1
	}
	return attempt
}

// GetMaxAttempts extracts max attempts from context
func GetMaxAttempts(ctx context.Context) int {
	maxAttempts, ok := ctx.Value(keyMaxAttempts).(int)
	if !ok || maxAttempts <= 0 {
		return 3 // default
	}
	return maxAttempts
}

// GetStartTime extracts task start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyStartTime).(time.Time)
	return startTime, ok
}

// IsFinalAttempt reports whether a failure now exhausts the task's retries.
// Contexts without task metadata count as final.
func IsFinalAttempt(ctx context.Context) bool {
	if _, ok := ctx.Value(keyAttempt).(int); !ok {
		return true
	}
	return GetAttempt(ctx) >= GetMaxAttempts(ctx)
}

// FromContext extracts all task metadata from context
func FromContext(ctx context.Context) *Metadata {
	id, _ := GetTaskID(ctx)
	name, _ := GetTaskName(ctx)
	startTime, _ := GetStartTime(ctx)

	return &Metadata{
		TaskID:      id,
		TaskName:    name,
		WorkerID:    GetWorkerID(ctx),
		Attempt:     GetAttempt(ctx),
		MaxAttempts: GetMaxAttempts(ctx),
		StartTime:   startTime,
	}
}

// IsRetryableError checks if an error is worth another attempt
// Retryable errors include: network errors, timeouts, rate limits, 5xx
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "context deadline exceeded") {
		return true
	}

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "eof") {
		return true
	}

	// Database deadlock/lock errors (Postgres)
	if strings.Contains(errStr, "deadlock") ||
		strings.Contains(errStr, "40001") || // serialization_failure
		strings.Contains(errStr, "40p01") { // deadlock_detected
		return true
	}

	// API rate limiting
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "resource_exhausted") ||
		strings.Contains(errStr, "429") {
		return true
	}

	// Server errors (5xx)
	if strings.Contains(errStr, "status 5") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") ||
		strings.Contains(errStr, "unavailable") {
		return true
	}

	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}

// CalculateBackoff calculates exponential backoff duration
func CalculateBackoff(attempt int, baseDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}

	// 2^attempt * baseDelay, max 60 seconds
	backoff := time.Duration(1<<uint(attempt)) * baseDelay

	maxBackoff := 60 * time.Second
	if backoff > maxBackoff {
		backoff = maxBackoff
	}

	return backoff
}
