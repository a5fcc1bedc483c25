package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MeetingStatus represents the lifecycle state of a meeting
type MeetingStatus string

const (
	MeetingStatusDraft      MeetingStatus = "draft"      // Created, no recording yet
	MeetingStatusUploaded   MeetingStatus = "uploaded"   // Recording stored, waiting to be processed
	MeetingStatusProcessing MeetingStatus = "processing" // Pipeline run in flight
	MeetingStatusReady      MeetingStatus = "ready"      // Transcript and summary available
	MeetingStatusFailed     MeetingStatus = "failed"     // A stage failed, see FailureReason
)

// meetingTransitions lists the allowed target states per source state.
// Any state may move to failed.
var meetingTransitions = map[MeetingStatus][]MeetingStatus{
	MeetingStatusDraft:      {MeetingStatusUploaded},
	MeetingStatusUploaded:   {MeetingStatusProcessing},
	MeetingStatusProcessing: {MeetingStatusReady},
	MeetingStatusReady:      {MeetingStatusProcessing},
	MeetingStatusFailed:     {MeetingStatusUploaded, MeetingStatusProcessing, MeetingStatusReady},
}

// IsValid reports whether s is a known status
func (s MeetingStatus) IsValid() bool {
	_, ok := meetingTransitions[s]
	return ok
}

// CanTransition reports whether a meeting may move from s to next
func (s MeetingStatus) CanTransition(next MeetingStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if s == next || next == MeetingStatusFailed {
		return true
	}
	for _, allowed := range meetingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MeetingSource describes how the recording was captured
type MeetingSource string

const (
	MeetingSourceRecording MeetingSource = "recording"
	MeetingSourceUpload    MeetingSource = "upload"
)

// IsValid reports whether s is a known meeting source
func (s MeetingSource) IsValid() bool {
	return s == MeetingSourceRecording || s == MeetingSourceUpload
}

// Meeting is the unit of work for the processing pipeline
type Meeting struct {
	ID                  uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	WorkspaceID         uuid.UUID     `json:"workspace_id" gorm:"type:uuid;not null;index"`
	Title               string        `json:"title" gorm:"type:text;not null"`
	Source              MeetingSource `json:"source" gorm:"type:varchar(20);not null"`
	Status              MeetingStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	RecordingObjectPath *string       `json:"recording_object_path,omitempty" gorm:"type:text"`
	RecordingMime       *string       `json:"recording_mime,omitempty" gorm:"type:varchar(100)"`
	FailureReason       *string       `json:"failure_reason,omitempty" gorm:"type:text"`
	CreatedBy           uuid.UUID     `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt           time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// BeforeCreate assigns an ID when the caller did not
func (m *Meeting) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// NewMeeting creates a draft meeting
func NewMeeting(workspaceID, createdBy uuid.UUID, title string, source MeetingSource) *Meeting {
	return &Meeting{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Title:       title,
		Source:      source,
		Status:      MeetingStatusDraft,
		CreatedBy:   createdBy,
	}
}
