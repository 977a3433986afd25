package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// SessionRepository defines examination session persistence operations
type SessionRepository interface {
	Create(ctx context.Context, session *entities.ExamSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ExamSession, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]entities.ExamSession, error)
	Update(ctx context.Context, session *entities.ExamSession) error
}

// TranscriptRepository stores per-session examination transcripts
type TranscriptRepository interface {
	Save(ctx context.Context, transcript *entities.ExamTranscript) error
	FindBySession(ctx context.Context, sessionID uuid.UUID) (*entities.ExamTranscript, error)
}
