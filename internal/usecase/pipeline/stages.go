package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	domainrepo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
	ucerr "github.com/johnquangdev/meeting-pipeline/internal/usecase/errors"
	"github.com/johnquangdev/meeting-pipeline/internal/usecase/exporter"
	"github.com/johnquangdev/meeting-pipeline/pkg/ai"
)

// stagePreconditions lists the meeting statuses each stage runs in.
// Stages without an entry run in any status.
var stagePreconditions = map[entities.TaskName][]entities.MeetingStatus{
	entities.TaskStartTranscription: {entities.MeetingStatusUploaded, entities.MeetingStatusProcessing, entities.MeetingStatusFailed},
	entities.TaskFetchTranscript:    {entities.MeetingStatusProcessing, entities.MeetingStatusFailed},
	entities.TaskSummarizeMeeting:   {entities.MeetingStatusProcessing, entities.MeetingStatusFailed},
}

// stageAllowed reports whether a stage may run for a meeting in status
func stageAllowed(name entities.TaskName, status entities.MeetingStatus) bool {
	allowed, ok := stagePreconditions[name]
	if !ok {
		return true
	}
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}

// loadMeeting fetches the meeting and checks the stage precondition.
// A nil meeting with a nil error means the stage should be skipped.
func (o *Orchestrator) loadMeeting(ctx context.Context, name entities.TaskName, meetingID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := o.Meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meeting: %w", err)
	}
	if meeting == nil {
		return nil, fmt.Errorf("%w: meeting %s", ucerr.ErrNotFound, meetingID)
	}
	if !stageAllowed(name, meeting.Status) {
		o.logger.Warn("⏭️ Skipping stage, meeting not in a runnable status",
			zap.String("task", string(name)),
			zap.String("meeting_id", meetingID.String()),
			zap.String("status", string(meeting.Status)),
		)
		return nil, nil
	}
	return meeting, nil
}

func (o *Orchestrator) startTranscription(ctx context.Context, payload entities.TaskPayload) error {
	meeting, err := o.loadMeeting(ctx, entities.TaskStartTranscription, payload.MeetingID)
	if err != nil || meeting == nil {
		return err
	}

	// Trip wire used to exercise the failure path end to end
	if strings.Contains(meeting.Title, "FAIL") {
		return ucerr.ErrTestFailure
	}

	if meeting.RecordingObjectPath == nil || *meeting.RecordingObjectPath == "" {
		return ucerr.ErrRecordingNotAvailable
	}

	audioURL, err := o.Storage.SignedURL(ctx, domainrepo.BucketRecordings, *meeting.RecordingObjectPath, recordingURLExpiry)
	if err != nil {
		return fmt.Errorf("%w: sign recording url: %w", ucerr.ErrStorage, err)
	}

	transcriptID, err := o.Transcriber.Submit(ctx, ai.SubmitRequest{
		AudioURL:           audioURL,
		WebhookURL:         o.Webhook.URL,
		WebhookHeaderName:  ai.WebhookSecretHeader,
		WebhookHeaderValue: o.Webhook.Secret,
	})
	if err != nil {
		return err
	}

	if err := o.Transcripts.UpsertPending(ctx, meeting.ID, transcriptID, payload.RunToken); err != nil {
		return fmt.Errorf("failed to save pending transcript: %w", err)
	}

	if meeting.Status != entities.MeetingStatusProcessing {
		moved, err := o.Meetings.CompareAndSetStatus(ctx, meeting.ID, meeting.Status, entities.MeetingStatusProcessing)
		if err != nil {
			return fmt.Errorf("failed to update meeting status: %w", err)
		}
		if !moved {
			o.logger.Warn("⚠️ Meeting status changed during submission",
				zap.String("meeting_id", meeting.ID.String()),
			)
		}
	}

	o.logger.Info("📤 Submitted recording for transcription",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("transcript_id", transcriptID),
	)
	return nil
}

func (o *Orchestrator) fetchTranscript(ctx context.Context, payload entities.TaskPayload) error {
	if payload.AssemblyAITranscriptID == "" {
		return fmt.Errorf("%w: missing assemblyai_transcript_id", ucerr.ErrInvalidPayload)
	}

	meeting, err := o.loadMeeting(ctx, entities.TaskFetchTranscript, payload.MeetingID)
	if err != nil || meeting == nil {
		return err
	}

	result, err := o.Transcriber.FetchResult(ctx, payload.AssemblyAITranscriptID)
	if err != nil {
		return err
	}
	utterances, err := o.Transcriber.FetchUtterances(ctx, payload.AssemblyAITranscriptID)
	if err != nil {
		return err
	}

	transcript := entities.NewTranscript(meeting.ID, payload.AssemblyAITranscriptID)
	transcript.TextLong = result.Text
	transcript.Segments = utterances
	transcript.Words = result.Words
	transcript.ConfidenceAvg = result.Confidence
	transcript.Status = entities.TranscriptStatusReady

	if err := o.Transcripts.SaveResult(ctx, transcript); err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}

	if _, err := o.Queue.Enqueue(ctx, entities.TaskSummarizeMeeting, entities.TaskPayload{
		MeetingID: meeting.ID,
		RunToken:  payload.RunToken,
	}); err != nil {
		return err
	}

	o.logger.Info("📝 Transcript stored",
		zap.String("meeting_id", meeting.ID.String()),
		zap.Int("utterances", len(utterances)),
		zap.Int("words", len(result.Words)),
	)
	return nil
}

func (o *Orchestrator) summarizeMeeting(ctx context.Context, payload entities.TaskPayload) error {
	meeting, err := o.loadMeeting(ctx, entities.TaskSummarizeMeeting, payload.MeetingID)
	if err != nil || meeting == nil {
		return err
	}

	transcript, err := o.Transcripts.FindByMeetingID(ctx, meeting.ID)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}
	if !transcript.IsReady() {
		return ucerr.ErrMissingTranscript
	}

	content, err := o.Summarizer.Summarize(ctx, meeting.Title, transcript.TextLong)
	if err != nil {
		return err
	}

	if err := o.Summaries.Upsert(ctx, entities.NewSummary(meeting.ID, content)); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	items := entities.NewActionItemsFromSummary(meeting.ID, meeting.WorkspaceID, content.ActionItems)
	if err := o.Actions.ReplaceForMeeting(ctx, meeting.ID, items); err != nil {
		return fmt.Errorf("failed to save action items: %w", err)
	}

	if err := o.Meetings.SetStatus(ctx, meeting.ID, entities.MeetingStatusReady); err != nil {
		return fmt.Errorf("failed to update meeting status: %w", err)
	}

	o.releaseLock(ctx, meeting.ID, payload.RunToken)

	o.logger.Info("🎉 Meeting ready",
		zap.String("meeting_id", meeting.ID.String()),
		zap.Int("action_items", len(items)),
		zap.Int("topics", len(content.Topics)),
	)
	return nil
}

func (o *Orchestrator) exportMeeting(ctx context.Context, payload entities.TaskPayload) error {
	if payload.ExportID == nil || payload.Format == "" {
		return fmt.Errorf("%w: export_id and format are required", ucerr.ErrInvalidPayload)
	}

	meeting, err := o.loadMeeting(ctx, entities.TaskExportMeeting, payload.MeetingID)
	if err != nil || meeting == nil {
		return err
	}

	export, err := o.Exports.FindByID(ctx, *payload.ExportID)
	if err != nil {
		return fmt.Errorf("failed to load export: %w", err)
	}
	if export == nil {
		return fmt.Errorf("%w: export %s", ucerr.ErrNotFound, payload.ExportID)
	}

	transcript, err := o.Transcripts.FindByMeetingID(ctx, meeting.ID)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}
	summary, err := o.Summaries.FindByMeetingID(ctx, meeting.ID)
	if err != nil {
		return fmt.Errorf("failed to load summary: %w", err)
	}

	artifact, err := o.Renderer.Render(payload.Format, exporter.Document{
		Meeting:    meeting,
		Transcript: transcript,
		Summary:    summary,
	})
	if err != nil {
		return err
	}

	objectPath := entities.ExportObjectPath(meeting.WorkspaceID, meeting.ID, export.ID, artifact.Extension)
	if err := o.Storage.Upload(ctx, domainrepo.BucketExports, objectPath, artifact.Data, artifact.ContentType); err != nil {
		return fmt.Errorf("%w: upload export: %w", ucerr.ErrStorage, err)
	}

	if err := o.Exports.UpdateObjectPath(ctx, export.ID, objectPath); err != nil {
		return fmt.Errorf("failed to update export: %w", err)
	}

	o.logger.Info("📦 Export rendered",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("export_id", export.ID.String()),
		zap.String("format", string(payload.Format)),
		zap.Int("bytes", len(artifact.Data)),
	)
	return nil
}
