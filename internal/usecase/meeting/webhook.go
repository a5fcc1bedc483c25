package meeting

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	ucerr "github.com/johnquangdev/meeting-pipeline/internal/usecase/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-pipeline/pkg/ai"
)

// Transcript statuses reported by the provider callback
const (
	WebhookStatusCompleted = "completed"
	WebhookStatusError     = "error"
)

// WebhookEvent is the body AssemblyAI posts when a transcript changes state
type WebhookEvent struct {
	TranscriptID string `json:"transcript_id"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

// HandleTranscriptionWebhook verifies the shared secret and advances the run:
// a completed transcript is queued for fetching, a provider error fails the meeting.
func (s *meetingService) HandleTranscriptionWebhook(ctx context.Context, secret string, event WebhookEvent) error {
	if !ai.VerifyWebhookSecret(s.webhookSecret, secret) {
		return fmt.Errorf("%w: invalid webhook secret", ucerr.ErrUnauthorized)
	}
	if event.TranscriptID == "" {
		return fmt.Errorf("%w: transcript_id is required", ucerr.ErrInvalidInput)
	}

	transcript, err := s.transcripts.FindByExternalID(ctx, event.TranscriptID)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}
	if transcript == nil {
		return fmt.Errorf("%w: transcript %s", ucerr.ErrNotFound, event.TranscriptID)
	}

	if s.logger != nil {
		s.logger.Info("📩 Transcription webhook received",
			zap.String("meeting_id", transcript.MeetingID.String()),
			zap.String("transcript_id", event.TranscriptID),
			zap.String("status", event.Status),
		)
	}

	switch event.Status {
	case WebhookStatusCompleted:
		_, err := s.queue.Enqueue(ctx, entities.TaskFetchTranscript, entities.TaskPayload{
			MeetingID:              transcript.MeetingID,
			AssemblyAITranscriptID: event.TranscriptID,
			RunToken:               transcript.RunToken,
		})
		return err

	case WebhookStatusError:
		reason := event.Error
		if reason == "" {
			reason = "transcription failed"
		}
		if err := s.meetings.MarkFailed(ctx, transcript.MeetingID, pipeline.FailureReason(errors.New(reason))); err != nil {
			return fmt.Errorf("failed to mark meeting failed: %w", err)
		}
		s.releaseRun(ctx, transcript.MeetingID, transcript.RunToken)
		return nil
	}

	return nil
}
