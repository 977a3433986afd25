package entities

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus constants
const (
	BookingStatusScheduled = "scheduled"
	BookingStatusCheckedIn = "checked_in"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Booking is a scheduled examination appointment
type Booking struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PatientID   uuid.UUID `json:"patient_id" gorm:"type:uuid;not null;index"`
	ScheduledAt time.Time `json:"scheduled_at" gorm:"type:timestamp;not null;index"`
	Reason      string    `json:"reason,omitempty" gorm:"type:text"`
	Status      string    `json:"status" gorm:"type:varchar(20);default:'scheduled';index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}

// NewBooking creates a scheduled booking for a patient
func NewBooking(patientID uuid.UUID, scheduledAt time.Time) *Booking {
	return &Booking{
		ID:          uuid.New(),
		PatientID:   patientID,
		ScheduledAt: scheduledAt,
		Status:      BookingStatusScheduled,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}
