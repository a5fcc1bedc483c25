package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// Storage buckets used by the pipeline
const (
	BucketRecordings = "recordings"
	BucketExports    = "exports"
)

// ObjectStorage is the object store holding recordings and rendered exports
type ObjectStorage interface {
	SignedURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error)
	SignedUploadURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error)
	Upload(ctx context.Context, bucket, object string, data []byte, contentType string) error
}

// TaskQueue enqueues pipeline stages onto the job queue
type TaskQueue interface {
	Enqueue(ctx context.Context, name entities.TaskName, payload entities.TaskPayload) (string, error)
}

// RunLock guards a meeting against overlapping pipeline runs.
// Acquire returns the token of the new lease; Release only frees the
// lease that token belongs to.
type RunLock interface {
	Acquire(ctx context.Context, meetingID uuid.UUID) (token string, ok bool, err error)
	Release(ctx context.Context, meetingID uuid.UUID, token string) error
}
