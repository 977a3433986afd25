package booking

import "time"

// CreateBookingRequest represents the request to schedule an appointment
type CreateBookingRequest struct {
	PatientID   string    `json:"patient_id" validate:"required,uuid"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Reason      string    `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

// UpdateBookingRequest represents the request to reschedule or update status
type UpdateBookingRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Reason      *string    `json:"reason,omitempty" validate:"omitempty,max=1000"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=scheduled checked_in completed cancelled"`
}

// ListBookingsRequest represents query parameters for listing bookings
type ListBookingsRequest struct {
	PatientID string     `query:"patient_id" validate:"omitempty,uuid"`
	From      *time.Time `query:"from"`
	To        *time.Time `query:"to"`
}
