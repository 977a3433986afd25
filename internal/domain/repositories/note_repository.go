package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// NoteRepository is the "get/put structured note by session id" contract the
// pipeline and comparison services depend on. One note per (session, author).
type NoteRepository interface {
	Save(ctx context.Context, note *entities.ClinicalNote) error
	FindBySession(ctx context.Context, sessionID uuid.UUID, author entities.NoteAuthor) (*entities.ClinicalNote, error)
}

// ComparisonRepository is the "put comparison record keyed by session id"
// contract. Comparison records are append-only.
type ComparisonRepository interface {
	Create(ctx context.Context, comparison *entities.NoteComparison) error
	FindLatestBySession(ctx context.Context, sessionID uuid.UUID) (*entities.NoteComparison, error)
}
