package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// BookingRepository handles booking data operations
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create creates a new booking
func (r *BookingRepository) Create(ctx context.Context, booking *entities.Booking) error {
	if booking == nil {
		return errors.New("booking cannot be nil")
	}
	return r.db.WithContext(ctx).Create(booking).Error
}

// FindByID retrieves a booking by ID
func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Booking, error) {
	var booking entities.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// ListByPatient retrieves all bookings for a patient, newest first
func (r *BookingRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]entities.Booking, error) {
	var bookings []entities.Booking
	if err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("scheduled_at DESC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListBetween retrieves bookings scheduled within a time window
func (r *BookingRepository) ListBetween(ctx context.Context, from, to time.Time) ([]entities.Booking, error) {
	var bookings []entities.Booking
	if err := r.db.WithContext(ctx).
		Where("scheduled_at >= ? AND scheduled_at < ?", from, to).
		Order("scheduled_at ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// Update updates a booking record
func (r *BookingRepository) Update(ctx context.Context, booking *entities.Booking) error {
	if booking == nil {
		return errors.New("booking cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.Booking{}).
		Where("id = ?", booking.ID).
		Save(booking).Error
}
