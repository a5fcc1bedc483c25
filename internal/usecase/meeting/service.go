// Package meeting implements the API side of the pipeline: meeting
// lifecycle triggers, exports, review edits and provider callbacks.
package meeting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	domainrepo "github.com/johnquangdev/meeting-pipeline/internal/domain/repositories"
	ucerr "github.com/johnquangdev/meeting-pipeline/internal/usecase/errors"
)

const (
	uploadURLExpiry   = 15 * time.Minute
	downloadURLExpiry = time.Hour
)

// Service defines the meeting operations exposed over HTTP
type Service interface {
	CreateMeeting(ctx context.Context, userID uuid.UUID, in CreateMeetingInput) (*entities.Meeting, error)
	ListMeetings(ctx context.Context, workspaceID uuid.UUID) ([]*entities.Meeting, error)
	GetMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error)
	CreateUploadURL(ctx context.Context, meetingID uuid.UUID, fileExt string) (*UploadTarget, error)
	MarkUploaded(ctx context.Context, meetingID uuid.UUID, objectPath string, mime *string) (*entities.Meeting, error)

	Process(ctx context.Context, meetingID uuid.UUID) error
	Retry(ctx context.Context, meetingID uuid.UUID) error

	RequestExport(ctx context.Context, userID, meetingID uuid.UUID, format entities.ExportFormat) (*entities.Export, error)
	ListExports(ctx context.Context, meetingID uuid.UUID) ([]ExportView, error)

	UpdateTranscriptText(ctx context.Context, transcriptID uuid.UUID, text string) (*entities.Transcript, error)
	UpdateActionStatus(ctx context.Context, actionID uuid.UUID, status entities.ActionStatus) (*entities.ActionItem, error)
	ListActions(ctx context.Context, workspaceID uuid.UUID) ([]*entities.ActionItem, error)

	HandleTranscriptionWebhook(ctx context.Context, secret string, event WebhookEvent) error
}

// CreateMeetingInput holds the fields of a new meeting
type CreateMeetingInput struct {
	WorkspaceID   uuid.UUID
	Title         string
	Source        entities.MeetingSource
	RecordingMime *string
}

// UploadTarget is where a client should PUT the recording
type UploadTarget struct {
	UploadURL  string `json:"upload_url"`
	ObjectPath string `json:"object_path"`
}

// ExportView is an export with a time-limited download link.
// DownloadURL is empty while the artifact is still being rendered.
type ExportView struct {
	*entities.Export
	DownloadURL string `json:"download_url,omitempty"`
}

type meetingService struct {
	meetings      domainrepo.MeetingRepository
	transcripts   domainrepo.TranscriptRepository
	actions       domainrepo.ActionItemRepository
	exports       domainrepo.ExportRepository
	storage       domainrepo.ObjectStorage
	queue         domainrepo.TaskQueue
	lock          domainrepo.RunLock
	webhookSecret string
	logger        *zap.Logger
}

// NewMeetingService constructs a new meeting service
func NewMeetingService(
	meetings domainrepo.MeetingRepository,
	transcripts domainrepo.TranscriptRepository,
	actions domainrepo.ActionItemRepository,
	exports domainrepo.ExportRepository,
	storage domainrepo.ObjectStorage,
	queue domainrepo.TaskQueue,
	lock domainrepo.RunLock,
	webhookSecret string,
	logger *zap.Logger,
) Service {
	return &meetingService{
		meetings:      meetings,
		transcripts:   transcripts,
		actions:       actions,
		exports:       exports,
		storage:       storage,
		queue:         queue,
		lock:          lock,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// CreateMeeting creates a draft meeting
func (s *meetingService) CreateMeeting(ctx context.Context, userID uuid.UUID, in CreateMeetingInput) (*entities.Meeting, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ucerr.ErrInvalidInput)
	}
	if !in.Source.IsValid() {
		return nil, fmt.Errorf("%w: unknown source %q", ucerr.ErrInvalidInput, in.Source)
	}

	m := entities.NewMeeting(in.WorkspaceID, userID, title, in.Source)
	m.RecordingMime = in.RecordingMime
	if err := s.meetings.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("🆕 Meeting created",
			zap.String("meeting_id", m.ID.String()),
			zap.String("workspace_id", m.WorkspaceID.String()),
		)
	}
	return m, nil
}

// ListMeetings lists the meetings of a workspace, newest first
func (s *meetingService) ListMeetings(ctx context.Context, workspaceID uuid.UUID) ([]*entities.Meeting, error) {
	meetings, err := s.meetings.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, nil
}

// GetMeeting returns a meeting or ErrNotFound
func (s *meetingService) GetMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error) {
	m, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meeting: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: meeting %s", ucerr.ErrNotFound, meetingID)
	}
	return m, nil
}

// CreateUploadURL presigns a PUT for the meeting recording
func (s *meetingService) CreateUploadURL(ctx context.Context, meetingID uuid.UUID, fileExt string) (*UploadTarget, error) {
	m, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(fileExt)), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: file extension is required", ucerr.ErrInvalidInput)
	}

	objectPath := fmt.Sprintf("%s/%s/source.%s", m.WorkspaceID, m.ID, ext)
	url, err := s.storage.SignedUploadURL(ctx, domainrepo.BucketRecordings, objectPath, uploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: presign upload: %w", ucerr.ErrStorage, err)
	}
	return &UploadTarget{UploadURL: url, ObjectPath: objectPath}, nil
}

// MarkUploaded records the uploaded recording and moves the meeting to uploaded
func (s *meetingService) MarkUploaded(ctx context.Context, meetingID uuid.UUID, objectPath string, mime *string) (*entities.Meeting, error) {
	m, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if !m.Status.CanTransition(entities.MeetingStatusUploaded) {
		return nil, fmt.Errorf("%w: cannot mark a %s meeting as uploaded", ucerr.ErrInvalidStatus, m.Status)
	}
	if err := s.meetings.MarkUploaded(ctx, m.ID, objectPath, mime); err != nil {
		return nil, fmt.Errorf("failed to mark meeting uploaded: %w", err)
	}
	return s.GetMeeting(ctx, m.ID)
}

// Process starts a pipeline run. The run lock rejects a second run while
// one is active.
func (s *meetingService) Process(ctx context.Context, meetingID uuid.UUID) error {
	m, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return err
	}
	if m.RecordingObjectPath == nil || !m.Status.CanTransition(entities.MeetingStatusProcessing) {
		return fmt.Errorf("%w: cannot process a %s meeting", ucerr.ErrInvalidStatus, m.Status)
	}

	token, err := s.acquireRun(ctx, m.ID)
	if err != nil {
		return err
	}

	if err := s.meetings.SetStatus(ctx, m.ID, entities.MeetingStatusProcessing); err != nil {
		s.releaseRun(ctx, m.ID, token)
		return fmt.Errorf("failed to update meeting status: %w", err)
	}

	return s.startRun(ctx, m.ID, token)
}

// Retry restarts a failed meeting from the beginning
func (s *meetingService) Retry(ctx context.Context, meetingID uuid.UUID) error {
	m, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return err
	}
	if m.Status != entities.MeetingStatusFailed {
		return fmt.Errorf("%w: only failed meetings can be retried", ucerr.ErrInvalidStatus)
	}

	token, err := s.acquireRun(ctx, m.ID)
	if err != nil {
		return err
	}

	moved, err := s.meetings.CompareAndSetStatus(ctx, m.ID, entities.MeetingStatusFailed, entities.MeetingStatusUploaded)
	if err != nil {
		s.releaseRun(ctx, m.ID, token)
		return fmt.Errorf("failed to update meeting status: %w", err)
	}
	if !moved {
		s.releaseRun(ctx, m.ID, token)
		return fmt.Errorf("%w: meeting is no longer failed", ucerr.ErrInvalidStatus)
	}

	return s.startRun(ctx, m.ID, token)
}

func (s *meetingService) acquireRun(ctx context.Context, meetingID uuid.UUID) (string, error) {
	token, acquired, err := s.lock.Acquire(ctx, meetingID)
	if err != nil {
		return "", err
	}
	if !acquired {
		return "", fmt.Errorf("%w: meeting %s", ucerr.ErrRunInProgress, meetingID)
	}
	return token, nil
}

func (s *meetingService) releaseRun(ctx context.Context, meetingID uuid.UUID, token string) {
	if err := s.lock.Release(ctx, meetingID, token); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to release run lock",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err),
		)
	}
}

// startRun queues the first stage. The lease token rides along in every
// stage payload so only this run can free the lease.
func (s *meetingService) startRun(ctx context.Context, meetingID uuid.UUID, token string) error {
	taskID, err := s.queue.Enqueue(ctx, entities.TaskStartTranscription, entities.TaskPayload{
		MeetingID: meetingID,
		RunToken:  token,
	})
	if err != nil {
		s.releaseRun(ctx, meetingID, token)
		return err
	}

	if s.logger != nil {
		s.logger.Info("🚀 Pipeline run started",
			zap.String("meeting_id", meetingID.String()),
			zap.String("task_id", taskID),
		)
	}
	return nil
}

// RequestExport records an export with a placeholder path and queues the render
func (s *meetingService) RequestExport(ctx context.Context, userID, meetingID uuid.UUID, format entities.ExportFormat) (*entities.Export, error) {
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: %q", ucerr.ErrUnsupportedFormat, format)
	}
	m, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	export := entities.NewExport(m.ID, userID, format, time.Now())
	if err := s.exports.Create(ctx, export); err != nil {
		return nil, fmt.Errorf("failed to create export: %w", err)
	}

	if _, err := s.queue.Enqueue(ctx, entities.TaskExportMeeting, entities.TaskPayload{
		MeetingID: m.ID,
		ExportID:  &export.ID,
		Format:    format,
	}); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("📦 Export requested",
			zap.String("meeting_id", m.ID.String()),
			zap.String("export_id", export.ID.String()),
			zap.String("format", string(format)),
		)
	}
	return export, nil
}

// ListExports lists a meeting's exports, newest first, with download links
func (s *meetingService) ListExports(ctx context.Context, meetingID uuid.UUID) ([]ExportView, error) {
	if _, err := s.GetMeeting(ctx, meetingID); err != nil {
		return nil, err
	}

	exports, err := s.exports.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	views := make([]ExportView, 0, len(exports))
	for _, e := range exports {
		view := ExportView{Export: e}
		if !e.IsPending() {
			url, err := s.storage.SignedURL(ctx, domainrepo.BucketExports, e.ObjectPath, downloadURLExpiry)
			if err != nil {
				return nil, fmt.Errorf("%w: presign download: %w", ucerr.ErrStorage, err)
			}
			view.DownloadURL = url
		}
		views = append(views, view)
	}
	return views, nil
}

// UpdateTranscriptText replaces the transcript text after a manual edit
func (s *meetingService) UpdateTranscriptText(ctx context.Context, transcriptID uuid.UUID, text string) (*entities.Transcript, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text_long must not be empty", ucerr.ErrInvalidInput)
	}
	t, err := s.transcripts.UpdateText(ctx, transcriptID, text)
	if err != nil {
		return nil, fmt.Errorf("failed to update transcript: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: transcript %s", ucerr.ErrNotFound, transcriptID)
	}
	return t, nil
}

// UpdateActionStatus marks an action item open or done
func (s *meetingService) UpdateActionStatus(ctx context.Context, actionID uuid.UUID, status entities.ActionStatus) (*entities.ActionItem, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown action status %q", ucerr.ErrInvalidInput, status)
	}
	item, err := s.actions.UpdateStatus(ctx, actionID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update action: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: action %s", ucerr.ErrNotFound, actionID)
	}
	return item, nil
}

// ListActions lists the action items of a workspace, newest first
func (s *meetingService) ListActions(ctx context.Context, workspaceID uuid.UUID) ([]*entities.ActionItem, error) {
	items, err := s.actions.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	return items, nil
}
