package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// ExportRepository handles export data operations
type ExportRepository struct {
	db *gorm.DB
}

// NewExportRepository creates a new export repository
func NewExportRepository(db *gorm.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create inserts a new export request
func (r *ExportRepository) Create(ctx context.Context, export *entities.Export) error {
	if export == nil {
		return errors.New("export cannot be nil")
	}
	return r.db.WithContext(ctx).Create(export).Error
}

// FindByID retrieves an export by ID
func (r *ExportRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Export, error) {
	var export entities.Export
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&export).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &export, nil
}

// ListByMeeting lists the exports of a meeting, newest first
func (r *ExportRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Export, error) {
	var exports []*entities.Export
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at DESC").
		Find(&exports).Error
	return exports, err
}

// UpdateObjectPath points the export at its rendered artifact
func (r *ExportRepository) UpdateObjectPath(ctx context.Context, id uuid.UUID, objectPath string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Export{}).
		Where("id = ?", id).
		Update("object_path", objectPath).Error
}
