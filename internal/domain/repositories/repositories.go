package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// MeetingRepository defines persistence operations for meetings.
// Find methods return (nil, nil) when the row does not exist.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *entities.Meeting) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*entities.Meeting, error)

	// SetStatus writes status unconditionally; any status other than failed clears failure_reason.
	SetStatus(ctx context.Context, id uuid.UUID, status entities.MeetingStatus) error
	// CompareAndSetStatus moves the meeting from one status to another and reports whether it did.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to entities.MeetingStatus) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	MarkUploaded(ctx context.Context, id uuid.UUID, objectPath string, mime *string) error
}

// TranscriptRepository defines persistence operations for transcripts
type TranscriptRepository interface {
	// UpsertPending records a submitted provider job, keyed by meeting.
	UpsertPending(ctx context.Context, meetingID uuid.UUID, externalID, runToken string) error
	// SaveResult writes the full provider result, keyed by meeting.
	SaveResult(ctx context.Context, transcript *entities.Transcript) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Transcript, error)
	FindByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.Transcript, error)
	FindByExternalID(ctx context.Context, externalID string) (*entities.Transcript, error)
	UpdateText(ctx context.Context, id uuid.UUID, text string) (*entities.Transcript, error)
}

// SummaryRepository defines persistence operations for summaries
type SummaryRepository interface {
	Upsert(ctx context.Context, summary *entities.Summary) error
	FindByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.Summary, error)
}

// ActionItemRepository defines persistence operations for normalized action items
type ActionItemRepository interface {
	// ReplaceForMeeting deletes every action of the meeting and inserts items atomically.
	ReplaceForMeeting(ctx context.Context, meetingID uuid.UUID, items []*entities.ActionItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error)
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.ActionItem, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*entities.ActionItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ActionStatus) (*entities.ActionItem, error)
}

// ExportRepository defines persistence operations for exports
type ExportRepository interface {
	Create(ctx context.Context, export *entities.Export) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Export, error)
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Export, error)
	UpdateObjectPath(ctx context.Context, id uuid.UUID, objectPath string) error
}
