package queue

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Stats is a point-in-time view of queue sizes
type Stats struct {
	Pending   int64 `json:"pending"`
	Active    int64 `json:"active"`
	Scheduled int64 `json:"scheduled"`
	Failed    int64 `json:"failed"`
}

// Inspector reads queue state for operators
type Inspector struct {
	rdb  redis.UniversalClient
	keys keys
}

// NewInspector creates a queue inspector
func NewInspector(rdb redis.UniversalClient, cfg Config) *Inspector {
	return &Inspector{rdb: rdb, keys: newKeys(cfg.withDefaults())}
}

// Stats counts tasks in every state. Active sums all servers.
func (i *Inspector) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	var err error

	if stats.Pending, err = i.rdb.LLen(ctx, i.keys.pending).Result(); err != nil {
		return nil, err
	}
	if stats.Scheduled, err = i.rdb.ZCard(ctx, i.keys.scheduled).Result(); err != nil {
		return nil, err
	}
	if stats.Failed, err = i.rdb.LLen(ctx, i.keys.failed).Result(); err != nil {
		return nil, err
	}

	var cursor uint64
	for {
		activeKeys, next, err := i.rdb.Scan(ctx, cursor, i.keys.prefix+":active:*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range activeKeys {
			n, err := i.rdb.LLen(ctx, key).Result()
			if err != nil {
				return nil, err
			}
			stats.Active += n
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	return &stats, nil
}

// FailedTasks returns up to limit tasks from the failed list, newest first
func (i *Inspector) FailedTasks(ctx context.Context, limit int64) ([]*Task, error) {
	if limit <= 0 {
		limit = 50
	}
	raws, err := i.rdb.LRange(ctx, i.keys.failed, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	tasks := make([]*Task, 0, len(raws))
	for _, raw := range raws {
		var task Task
		if err := json.Unmarshal([]byte(raw), &task); err != nil {
			task = Task{LastError: "malformed task: " + err.Error()}
		}
		tasks = append(tasks, &task)
	}
	return tasks, nil
}
