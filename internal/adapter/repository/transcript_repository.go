package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// TranscriptRepository handles examination transcript data operations
type TranscriptRepository struct {
	db *gorm.DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// Save upserts the transcript for a session. A session keeps a single
// transcript; re-running analysis overwrites the previous one.
func (r *TranscriptRepository) Save(ctx context.Context, transcript *entities.ExamTranscript) error {
	if transcript == nil {
		return errors.New("transcript cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"text", "language", "segments", "confidence_score", "model_used", "raw_data", "updated_at",
			}),
		}).
		Create(transcript).Error
}

// FindBySession retrieves the transcript for a session
func (r *TranscriptRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) (*entities.ExamTranscript, error) {
	var transcript entities.ExamTranscript
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&transcript).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transcript, nil
}
