package repository

import (
	"context"
	"fmt"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/queue"
	ucerr "github.com/johnquangdev/meeting-pipeline/internal/usecase/errors"
)

// TaskQueue enqueues pipeline stages on the Redis job queue
type TaskQueue struct {
	client *queue.Client
}

// NewTaskQueue wraps a queue client
func NewTaskQueue(client *queue.Client) *TaskQueue {
	return &TaskQueue{client: client}
}

// Enqueue pushes one stage for a meeting and returns the task ID
func (q *TaskQueue) Enqueue(ctx context.Context, name entities.TaskName, payload entities.TaskPayload) (string, error) {
	info, err := q.client.Enqueue(ctx, string(name), payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ucerr.ErrEnqueue, err)
	}
	return info.ID, nil
}
