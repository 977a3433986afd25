package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// AnalysisJobRepository manages the async analysis queue. Claim must be
// atomic so that concurrent workers never pick up the same job twice.
type AnalysisJobRepository interface {
	Create(ctx context.Context, job *entities.AnalysisJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.AnalysisJob, error)
	FindLatestBySession(ctx context.Context, sessionID uuid.UUID) (*entities.AnalysisJob, error)
	GetJobsByStatus(ctx context.Context, status entities.AnalysisJobStatus, limit int) ([]entities.AnalysisJob, error)

	// Claim transitions a pending job to the given status and reports whether
	// this caller won the transition.
	Claim(ctx context.Context, id uuid.UUID, to entities.AnalysisJobStatus) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.AnalysisJobStatus) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}
