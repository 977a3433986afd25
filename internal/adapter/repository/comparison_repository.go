package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// ComparisonRepository handles note comparison data operations
type ComparisonRepository struct {
	db *gorm.DB
}

// NewComparisonRepository creates a new comparison repository
func NewComparisonRepository(db *gorm.DB) *ComparisonRepository {
	return &ComparisonRepository{db: db}
}

// Create appends a comparison record. Records are never updated.
func (r *ComparisonRepository) Create(ctx context.Context, comparison *entities.NoteComparison) error {
	if comparison == nil {
		return errors.New("comparison cannot be nil")
	}
	return r.db.WithContext(ctx).Create(comparison).Error
}

// FindLatestBySession retrieves the most recent comparison for a session
func (r *ComparisonRepository) FindLatestBySession(ctx context.Context, sessionID uuid.UUID) (*entities.NoteComparison, error) {
	var comparison entities.NoteComparison
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		First(&comparison).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrComparisonNotFound
		}
		return nil, err
	}
	return &comparison, nil
}
