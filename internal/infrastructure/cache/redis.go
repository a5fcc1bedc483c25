package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/meeting-pipeline/pkg/config"
)

// DefaultRunLockTTL bounds how long a crashed run can block a meeting
const DefaultRunLockTTL = 2 * time.Hour

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// releaseScript deletes the lease only while it still holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock is a per-meeting lease stored in Redis
type RunLock struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRunLock creates a run lock with the given lease duration
func NewRunLock(rdb redis.UniversalClient, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = DefaultRunLockTTL
	}
	return &RunLock{rdb: rdb, ttl: ttl}
}

func runLockKey(meetingID uuid.UUID) string {
	return "meeting:run:" + meetingID.String()
}

// Acquire takes the lease and returns its token. ok is false when a run
// already holds it.
func (l *RunLock) Acquire(ctx context.Context, meetingID uuid.UUID) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, runLockKey(meetingID), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release drops the lease if it still belongs to token. Releasing a free,
// expired or re-acquired lease is a no-op.
func (l *RunLock) Release(ctx context.Context, meetingID uuid.UUID, token string) error {
	if token == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, l.rdb, []string{runLockKey(meetingID)}, token).Err(); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}
