package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// NoteRepository handles clinical note data operations
type NoteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new clinical note repository
func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Save upserts a note keyed by (session_id, author). Saving the AI note
// after a pipeline re-run replaces the previous AI note in place.
func (r *NoteRepository) Save(ctx context.Context, note *entities.ClinicalNote) error {
	if note == nil {
		return errors.New("note cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}, {Name: "author"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"subjective", "objective", "assessment", "plan",
				"codes", "advice", "references", "model_used", "finalized_at", "updated_at",
			}),
		}).
		Create(note).Error
}

// FindBySession retrieves the note a given author wrote for a session
func (r *NoteRepository) FindBySession(ctx context.Context, sessionID uuid.UUID, author entities.NoteAuthor) (*entities.ClinicalNote, error) {
	var note entities.ClinicalNote
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND author = ?", sessionID, author).
		First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrNoteNotFound
		}
		return nil, err
	}
	return &note, nil
}
