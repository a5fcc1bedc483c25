package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// TranscriptRepository handles transcript data operations
type TranscriptRepository struct {
	db *gorm.DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// UpsertPending records a submitted provider job and the run that owns it.
// Text and timing columns of an existing row are left untouched.
func (r *TranscriptRepository) UpsertPending(ctx context.Context, meetingID uuid.UUID, externalID, runToken string) error {
	t := entities.NewTranscript(meetingID, externalID)
	t.RunToken = runToken
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meeting_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"assemblyai_transcript_id", "status", "run_token", "updated_at"}),
		}).
		Create(t).Error
}

// SaveResult writes the provider result for the meeting, inserting the row if needed
func (r *TranscriptRepository) SaveResult(ctx context.Context, transcript *entities.Transcript) error {
	if transcript == nil {
		return errors.New("transcript cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "meeting_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"assemblyai_transcript_id",
				"text_long",
				"segments_json",
				"words_json",
				"confidence_avg",
				"status",
				"updated_at",
			}),
		}).
		Create(transcript).Error
}

// FindByID retrieves a transcript by ID
func (r *TranscriptRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Transcript, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByMeetingID retrieves the transcript of a meeting
func (r *TranscriptRepository) FindByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.Transcript, error) {
	return r.findOne(ctx, "meeting_id = ?", meetingID)
}

// FindByExternalID retrieves a transcript by its AssemblyAI transcript ID
func (r *TranscriptRepository) FindByExternalID(ctx context.Context, externalID string) (*entities.Transcript, error) {
	return r.findOne(ctx, "assemblyai_transcript_id = ?", externalID)
}

// UpdateText replaces the transcript text after a manual edit
func (r *TranscriptRepository) UpdateText(ctx context.Context, id uuid.UUID, text string) (*entities.Transcript, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.Transcript{}).
		Where("id = ?", id).
		Update("text_long", text)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *TranscriptRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entities.Transcript, error) {
	var transcript entities.Transcript
	if err := r.db.WithContext(ctx).Where(query, args...).First(&transcript).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transcript, nil
}
