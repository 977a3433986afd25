package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// BookingRepository defines booking persistence operations
type BookingRepository interface {
	Create(ctx context.Context, booking *entities.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Booking, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]entities.Booking, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]entities.Booking, error)
	Update(ctx context.Context, booking *entities.Booking) error
}
