package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// SessionRepository handles examination session data operations
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new examination session
func (r *SessionRepository) Create(ctx context.Context, session *entities.ExamSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	return r.db.WithContext(ctx).Create(session).Error
}

// FindByID retrieves a session by ID
func (r *SessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ExamSession, error) {
	var session entities.ExamSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListByPatient retrieves all sessions for a patient, newest first
func (r *SessionRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]entities.ExamSession, error) {
	var sessions []entities.ExamSession
	if err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("started_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Update updates a session record
func (r *SessionRepository) Update(ctx context.Context, session *entities.ExamSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.ExamSession{}).
		Where("id = ?", session.ID).
		Save(session).Error
}
