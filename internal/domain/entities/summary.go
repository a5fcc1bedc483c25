package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SummaryPromptVersion tags summaries produced by the current prompt set
const SummaryPromptVersion = "v1"

// Decision is a decision captured in a meeting summary
type Decision struct {
	Decision         string   `json:"decision"`
	Owner            *string  `json:"owner,omitempty"`
	TimestampSeconds *float64 `json:"timestamp_seconds,omitempty"`
	Quote            *string  `json:"quote,omitempty"`
}

// SummaryActionItem is an action item as produced by the model
type SummaryActionItem struct {
	Task             string   `json:"task"`
	Owner            *string  `json:"owner,omitempty"`
	DueDate          *string  `json:"due_date,omitempty"`
	Confidence       float64  `json:"confidence"`
	TimestampSeconds *float64 `json:"timestamp_seconds,omitempty"`
	Quote            *string  `json:"quote,omitempty"`
}

// KeyQuote is a notable quote within a topic
type KeyQuote struct {
	Quote            string   `json:"quote"`
	Speaker          *string  `json:"speaker,omitempty"`
	TimestampSeconds *float64 `json:"timestamp_seconds,omitempty"`
}

// Topic is a discussed subject with its starting time
type Topic struct {
	Title            string     `json:"title"`
	StartTimeSeconds float64    `json:"start_time_seconds"`
	Summary          string     `json:"summary"`
	KeyQuotes        []KeyQuote `json:"key_quotes,omitempty"`
}

// SummaryContent is a validated structured meeting summary
type SummaryContent struct {
	ExecutiveSummary string              `json:"executive_summary"`
	BulletSummary    []string            `json:"bullet_summary"`
	Decisions        []Decision          `json:"decisions"`
	ActionItems      []SummaryActionItem `json:"action_items"`
	Topics           []Topic             `json:"topics"`
	Risks            []string            `json:"risks"`
	Questions        []string            `json:"questions"`
}

// Summary is the persisted summary row, one per meeting
type Summary struct {
	ID            uuid.UUID           `json:"id" gorm:"type:uuid;primaryKey"`
	MeetingID     uuid.UUID           `json:"meeting_id" gorm:"type:uuid;not null;uniqueIndex"`
	ExecSummary   string              `json:"exec_summary" gorm:"type:text"`
	BulletSummary []string            `json:"bullet_summary" gorm:"type:jsonb;serializer:json"`
	Decisions     []Decision          `json:"decisions" gorm:"type:jsonb;serializer:json"`
	ActionItems   []SummaryActionItem `json:"action_items" gorm:"type:jsonb;serializer:json"`
	Topics        []Topic             `json:"topics" gorm:"type:jsonb;serializer:json"`
	Risks         []string            `json:"risks" gorm:"type:jsonb;serializer:json"`
	Questions     []string            `json:"questions" gorm:"type:jsonb;serializer:json"`
	PromptVersion string              `json:"prompt_version" gorm:"type:varchar(20)"`
	CreatedAt     time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Summary) TableName() string {
	return "summaries"
}

// BeforeCreate assigns an ID when the caller did not
func (s *Summary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// NewSummary builds the summary row for a meeting from validated content
func NewSummary(meetingID uuid.UUID, content *SummaryContent) *Summary {
	return &Summary{
		ID:            uuid.New(),
		MeetingID:     meetingID,
		ExecSummary:   content.ExecutiveSummary,
		BulletSummary: content.BulletSummary,
		Decisions:     content.Decisions,
		ActionItems:   content.ActionItems,
		Topics:        content.Topics,
		Risks:         content.Risks,
		Questions:     content.Questions,
		PromptVersion: SummaryPromptVersion,
	}
}
