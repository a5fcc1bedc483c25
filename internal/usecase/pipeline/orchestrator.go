// Package pipeline runs the meeting processing stages delivered by the job queue.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	domainrepo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
	"github.com/johnquangdev/meeting-pipeline/internal/infrastructure/queue"
	ucerr "github.com/johnquangdev/meeting-pipeline/internal/usecase/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/exporter"
	"github.com/johnquangdev/meeting-pipeline/pkg/ai"
	"github.com/johnquangdev/meeting-pipeline/pkg/jobcontext"
)

const (
	maxFailureReasonLength = 500
	recordingURLExpiry     = time.Hour
	failureWriteTimeout    = 10 * time.Second
)

// Transcriber submits recordings for transcription and fetches the results
type Transcriber interface {
	Submit(ctx context.Context, req ai.SubmitRequest) (string, error)
	FetchResult(ctx context.Context, transcriptID string) (*ai.TranscriptResult, error)
	FetchUtterances(ctx context.Context, transcriptID string) ([]entities.Utterance, error)
}

// Summarizer produces a structured summary from transcript text
type Summarizer interface {
	Summarize(ctx context.Context, title, transcript string) (*entities.SummaryContent, error)
}

// Renderer renders a meeting in an export format
type Renderer interface {
	Render(format entities.ExportFormat, doc exporter.Document) (*exporter.Artifact, error)
}

// WebhookConfig is what the transcription provider needs to call us back
type WebhookConfig struct {
	URL    string
	Secret string
}

// Dependencies wires the orchestrator to storage, providers and the queue
type Dependencies struct {
	Meetings    domainrepo.MeetingRepository
	Transcripts domainrepo.TranscriptRepository
	Summaries   domainrepo.SummaryRepository
	Actions     domainrepo.ActionItemRepository
	Exports     domainrepo.ExportRepository
	Storage     domainrepo.ObjectStorage
	Queue       domainrepo.TaskQueue
	Lock        domainrepo.RunLock
	Transcriber Transcriber
	Summarizer  Summarizer
	Renderer    Renderer
	Webhook     WebhookConfig
}

// Orchestrator executes pipeline stages and records failures on the meeting
type Orchestrator struct {
	Dependencies
	logger *zap.Logger
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(deps Dependencies, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{Dependencies: deps, logger: logger}
}

// ProcessTask implements queue.Handler. Errors that redelivery cannot fix
// are wrapped with queue.SkipRetry.
func (o *Orchestrator) ProcessTask(ctx context.Context, task *queue.Task) error {
	var payload entities.TaskPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %w: %v", queue.SkipRetry, ucerr.ErrInvalidPayload, err)
	}
	if payload.MeetingID == uuid.Nil {
		return fmt.Errorf("%w: %w: missing meeting_id", queue.SkipRetry, ucerr.ErrInvalidPayload)
	}

	err := o.Handle(ctx, entities.TaskName(task.Name), payload)
	if err != nil && ucerr.IsPermanent(err) {
		return fmt.Errorf("%w: %w", queue.SkipRetry, err)
	}
	return err
}

// Handle runs one stage for a meeting. A failing stage marks the meeting
// failed and its error is returned unchanged. Unknown task names are
// rejected before the meeting is touched.
func (o *Orchestrator) Handle(ctx context.Context, name entities.TaskName, payload entities.TaskPayload) error {
	if !name.IsValid() {
		o.logger.Error("❌ Unknown task",
			zap.String("task", string(name)),
			zap.String("meeting_id", payload.MeetingID.String()),
		)
		return fmt.Errorf("%w: %s", ucerr.ErrUnknownTask, name)
	}

	start := time.Now()
	taskID, _ := jobcontext.GetTaskID(ctx)
	o.logger.Info("🔄 Processing task",
		zap.String("task", string(name)),
		zap.String("meeting_id", payload.MeetingID.String()),
		zap.String("task_id", taskID),
		zap.Int("worker_id", jobcontext.GetWorkerID(ctx)),
		zap.Int("attempt", jobcontext.GetAttempt(ctx)),
	)

	err := o.dispatch(ctx, name, payload)
	if err != nil {
		o.handleFailure(ctx, name, payload, err)
		return err
	}

	o.logger.Info("✅ Task completed",
		zap.String("task", string(name)),
		zap.String("meeting_id", payload.MeetingID.String()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func (o *Orchestrator) dispatch(ctx context.Context, name entities.TaskName, payload entities.TaskPayload) error {
	switch name {
	case entities.TaskStartTranscription:
		return o.startTranscription(ctx, payload)
	case entities.TaskFetchTranscript:
		return o.fetchTranscript(ctx, payload)
	case entities.TaskSummarizeMeeting:
		return o.summarizeMeeting(ctx, payload)
	case entities.TaskExportMeeting:
		return o.exportMeeting(ctx, payload)
	default:
		return fmt.Errorf("%w: %s", ucerr.ErrUnknownTask, name)
	}
}

// handleFailure records the error on the meeting. The run lock is freed once
// the queue will not redeliver the task; exports never hold it.
func (o *Orchestrator) handleFailure(ctx context.Context, name entities.TaskName, payload entities.TaskPayload, cause error) {
	meetingID := payload.MeetingID
	final := jobcontext.IsFinalAttempt(ctx) || ucerr.IsPermanent(cause)

	o.logger.Error("❌ Task failed",
		zap.String("task", string(name)),
		zap.String("meeting_id", meetingID.String()),
		zap.Int("attempt", jobcontext.GetAttempt(ctx)),
		zap.Bool("final", final),
		zap.Error(cause),
	)

	// The task context may already be cancelled or past its deadline.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureWriteTimeout)
	defer cancel()

	if err := o.Meetings.MarkFailed(writeCtx, meetingID, FailureReason(cause)); err != nil {
		o.logger.Error("❌ Failed to mark meeting as failed",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err),
		)
	}

	if final && name != entities.TaskExportMeeting {
		o.releaseLock(writeCtx, meetingID, payload.RunToken)
	}
}

func (o *Orchestrator) releaseLock(ctx context.Context, meetingID uuid.UUID, token string) {
	if o.Lock == nil {
		return
	}
	if err := o.Lock.Release(ctx, meetingID, token); err != nil {
		o.logger.Warn("⚠️ Failed to release run lock",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err),
		)
	}
}

// FailureReason turns an error into the single-line text stored on a failed
// meeting. Control characters become spaces, runs of whitespace collapse to
// one space and the result is capped at 500 characters.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}
	spaced := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, err.Error())
	clean := strings.Join(strings.Fields(spaced), " ")

	runes := []rune(clean)
	if len(runes) > maxFailureReasonLength {
		runes = runes[:maxFailureReasonLength]
	}
	return string(runes)
}
