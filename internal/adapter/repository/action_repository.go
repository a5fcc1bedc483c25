package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// ActionItemRepository handles normalized action item operations
type ActionItemRepository struct {
	db *gorm.DB
}

// NewActionItemRepository creates a new action item repository
func NewActionItemRepository(db *gorm.DB) *ActionItemRepository {
	return &ActionItemRepository{db: db}
}

// ReplaceForMeeting deletes every action item of the meeting and inserts items in one transaction
func (r *ActionItemRepository) ReplaceForMeeting(ctx context.Context, meetingID uuid.UUID, items []*entities.ActionItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", meetingID).Delete(&entities.ActionItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete action items: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to insert action items: %w", err)
		}
		return nil
	})
}

// FindByID retrieves an action item by ID
func (r *ActionItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error) {
	var item entities.ActionItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByMeeting lists the action items of a meeting in insertion order
func (r *ActionItemRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.ActionItem, error) {
	var items []*entities.ActionItem
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// ListByWorkspace lists the action items of a workspace, newest first
func (r *ActionItemRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*entities.ActionItem, error) {
	var items []*entities.ActionItem
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// UpdateStatus sets the completion status of an action item
func (r *ActionItemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ActionStatus) (*entities.ActionItem, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.ActionItem{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}
