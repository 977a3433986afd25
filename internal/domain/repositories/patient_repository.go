package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// PatientFilters narrows patient list queries
type PatientFilters struct {
	Search string
	Limit  int
	Offset int
}

// PatientRepository defines patient persistence operations
type PatientRepository interface {
	Create(ctx context.Context, patient *entities.Patient) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Patient, error)
	List(ctx context.Context, filters PatientFilters) ([]entities.Patient, int64, error)
	Update(ctx context.Context, patient *entities.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
}
