package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client enqueues tasks
type Client struct {
	rdb  redis.UniversalClient
	cfg  Config
	keys keys
}

// NewClient creates a queue client
func NewClient(rdb redis.UniversalClient, cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{rdb: rdb, cfg: cfg, keys: newKeys(cfg)}
}

// Enqueue stores a task with a JSON payload for immediate delivery
func (c *Client) Enqueue(ctx context.Context, name string, payload interface{}) (*TaskInfo, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", name, err)
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.NewString(),
		Name:        name,
		Payload:     body,
		MaxAttempts: c.cfg.MaxAttempts,
		EnqueuedAt:  now,
	}
	raw, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task %s: %w", name, err)
	}

	if err := c.rdb.LPush(ctx, c.keys.pending, raw).Err(); err != nil {
		return nil, fmt.Errorf("failed to enqueue task %s: %w", name, err)
	}

	return &TaskInfo{
		ID:          task.ID,
		Name:        name,
		Queue:       c.cfg.Name,
		MaxAttempts: task.MaxAttempts,
		ProcessAt:   now,
	}, nil
}
