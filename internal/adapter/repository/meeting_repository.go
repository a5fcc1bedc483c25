package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// MeetingRepository handles meeting data operations
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create inserts a new meeting
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

// FindByID retrieves a meeting by ID
func (r *MeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

// ListByWorkspace lists meetings of a workspace, newest first
func (r *MeetingRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&meetings).Error
	return meetings, err
}

// SetStatus writes the status unconditionally
func (r *MeetingRepository) SetStatus(ctx context.Context, id uuid.UUID, status entities.MeetingStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(statusUpdates(status)).Error
}

// CompareAndSetStatus moves the meeting from one status to another.
// Returns false when the meeting was not in the expected status.
func (r *MeetingRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to entities.MeetingStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND status = ?", id, from).
		Updates(statusUpdates(to))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkFailed sets the meeting failed with a user-facing reason
func (r *MeetingRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         entities.MeetingStatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now().UTC(),
		}).Error
}

// MarkUploaded records the stored recording and moves the meeting to uploaded
func (r *MeetingRepository) MarkUploaded(ctx context.Context, id uuid.UUID, objectPath string, mime *string) error {
	updates := map[string]interface{}{
		"recording_object_path": objectPath,
		"status":                entities.MeetingStatusUploaded,
		"updated_at":            time.Now().UTC(),
	}
	if mime != nil {
		updates["recording_mime"] = *mime
	}
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func statusUpdates(status entities.MeetingStatus) map[string]interface{} {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if status != entities.MeetingStatusFailed {
		updates["failure_reason"] = nil
	}
	return updates
}
