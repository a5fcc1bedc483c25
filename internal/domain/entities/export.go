package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExportFormat is a downloadable artifact format
type ExportFormat string

const (
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatDOCX ExportFormat = "docx"
	ExportFormatTXT  ExportFormat = "txt"
	ExportFormatJSON ExportFormat = "json"
)

// IsValid reports whether f is a supported export format
func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportFormatPDF, ExportFormatDOCX, ExportFormatTXT, ExportFormatJSON:
		return true
	}
	return false
}

// Export is a request to render a meeting into a downloadable format
type Export struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	MeetingID  uuid.UUID    `json:"meeting_id" gorm:"type:uuid;not null;index"`
	Format     ExportFormat `json:"format" gorm:"type:varchar(10);not null"`
	CreatedBy  uuid.UUID    `json:"created_by" gorm:"type:uuid;not null"`
	ObjectPath string       `json:"object_path" gorm:"type:text;not null"`
	CreatedAt  time.Time    `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Export) TableName() string {
	return "exports"
}

// BeforeCreate assigns an ID when the caller did not
func (e *Export) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsPending reports whether the artifact has not been rendered yet
func (e *Export) IsPending() bool {
	return strings.HasPrefix(e.ObjectPath, pendingExportPrefix)
}

const pendingExportPrefix = "pending/"

// NewExport creates an export row pointing at a placeholder object path
func NewExport(meetingID, createdBy uuid.UUID, format ExportFormat, now time.Time) *Export {
	return &Export{
		ID:         uuid.New(),
		MeetingID:  meetingID,
		Format:     format,
		CreatedBy:  createdBy,
		ObjectPath: fmt.Sprintf("%s%s/%d.%s", pendingExportPrefix, meetingID, now.UnixMilli(), format),
	}
}

// ExportObjectPath is the final storage path of a rendered export
func ExportObjectPath(workspaceID, meetingID, exportID uuid.UUID, ext string) string {
	return fmt.Sprintf("%s/%s/exports/%s.%s", workspaceID, meetingID, exportID, ext)
}
