package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TranscriptStatus represents the state of the provider transcription
type TranscriptStatus string

const (
	TranscriptStatusProcessing TranscriptStatus = "processing"
	TranscriptStatusReady      TranscriptStatus = "ready"
	TranscriptStatusFailed     TranscriptStatus = "failed"
)

// WordTimestamp represents a single word with time and speaker info
type WordTimestamp struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker,omitempty"`
}

// Utterance is a contiguous stretch of speech by one speaker
type Utterance struct {
	Speaker    string  `json:"speaker"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Transcript is the stored transcript model, one per meeting
type Transcript struct {
	ID                     uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	MeetingID              uuid.UUID        `json:"meeting_id" gorm:"type:uuid;not null;uniqueIndex"`
	AssemblyAITranscriptID string           `json:"assemblyai_transcript_id" gorm:"column:assemblyai_transcript_id;type:varchar(255);index"`
	TextLong               string           `json:"text_long" gorm:"type:text"`
	Segments               []Utterance      `json:"segments_json,omitempty" gorm:"column:segments_json;type:jsonb;serializer:json"`
	Words                  []WordTimestamp  `json:"words_json,omitempty" gorm:"column:words_json;type:jsonb;serializer:json"`
	ConfidenceAvg          *float64         `json:"confidence_avg,omitempty"`
	Status                 TranscriptStatus `json:"status" gorm:"type:varchar(20);not null"`
	RunToken               string           `json:"-" gorm:"type:varchar(64)"`
	CreatedAt              time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt              time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Transcript) TableName() string {
	return "transcripts"
}

// BeforeCreate assigns an ID when the caller did not
func (t *Transcript) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// HasText reports whether the transcript carries usable text
func (t *Transcript) HasText() bool {
	return t != nil && t.TextLong != ""
}

// IsReady reports whether the provider result has been stored and has text
func (t *Transcript) IsReady() bool {
	return t.HasText() && t.Status == TranscriptStatusReady
}

// NewTranscript creates a pending transcript for a submitted provider job
func NewTranscript(meetingID uuid.UUID, externalID string) *Transcript {
	return &Transcript{
		ID:                     uuid.New(),
		MeetingID:              meetingID,
		AssemblyAITranscriptID: externalID,
		Status:                 TranscriptStatusProcessing,
	}
}
