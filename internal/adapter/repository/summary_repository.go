package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// SummaryRepository handles summary data operations
type SummaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Upsert stores the summary of a meeting, replacing any previous one
func (r *SummaryRepository) Upsert(ctx context.Context, summary *entities.Summary) error {
	if summary == nil {
		return errors.New("summary cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "meeting_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"exec_summary",
				"bullet_summary",
				"decisions",
				"action_items",
				"topics",
				"risks",
				"questions",
				"prompt_version",
				"updated_at",
			}),
		}).
		Create(summary).Error
}

// FindByMeetingID retrieves the summary of a meeting
func (r *SummaryRepository) FindByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.Summary, error) {
	var summary entities.Summary
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&summary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}
