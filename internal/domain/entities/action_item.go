package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActionStatus is the completion state of an action item
type ActionStatus string

const (
	ActionStatusOpen ActionStatus = "open"
	ActionStatusDone ActionStatus = "done"
)

// IsValid reports whether s is a known action status
func (s ActionStatus) IsValid() bool {
	return s == ActionStatusOpen || s == ActionStatusDone
}

// ActionItem is a normalized action item derived from a summary
type ActionItem struct {
	ID                     uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	MeetingID              uuid.UUID       `json:"meeting_id" gorm:"type:uuid;not null;index"`
	WorkspaceID            uuid.UUID       `json:"workspace_id" gorm:"type:uuid;not null;index"`
	Description            string          `json:"description" gorm:"type:text;not null"`
	OwnerUserID            *uuid.UUID      `json:"owner_user_id" gorm:"type:uuid"`
	DueDate                *datatypes.Date `json:"due_date"`
	Confidence             float64         `json:"confidence"`
	SourceTimestampSeconds *float64        `json:"source_timestamp_seconds"`
	SourceQuote            *string         `json:"source_quote" gorm:"type:text"`
	Status                 ActionStatus    `json:"status" gorm:"type:varchar(10);not null;default:'open'"`
	CreatedAt              time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt              time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ActionItem) TableName() string {
	return "actions"
}

// BeforeCreate assigns an ID when the caller did not
func (a *ActionItem) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// dueDateLayouts are the date shapes models tend to emit
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// NormalizeDueDate parses a free-form due date and truncates it to the calendar day.
// Unparseable values yield nil.
func NormalizeDueDate(raw *string) *datatypes.Date {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			day := datatypes.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
			return &day
		}
	}
	return nil
}

// NewActionItemsFromSummary derives normalized rows from summary action items.
// Owners are free text from the model, so OwnerUserID stays nil.
func NewActionItemsFromSummary(meetingID, workspaceID uuid.UUID, items []SummaryActionItem) []*ActionItem {
	out := make([]*ActionItem, 0, len(items))
	for _, it := range items {
		out = append(out, &ActionItem{
			ID:                     uuid.New(),
			MeetingID:              meetingID,
			WorkspaceID:            workspaceID,
			Description:            it.Task,
			DueDate:                NormalizeDueDate(it.DueDate),
			Confidence:             it.Confidence,
			SourceTimestampSeconds: it.TimestampSeconds,
			SourceQuote:            it.Quote,
			Status:                 ActionStatusOpen,
		})
	}
	return out
}
