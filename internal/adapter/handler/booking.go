package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/clinic-assistant/errors"
	dto "github.com/johnquangdev/clinic-assistant/internal/adapter/dto/booking"
	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
	"github.com/johnquangdev/clinic-assistant/internal/domain/repositories"
)

// Booking handles appointment scheduling endpoints
type Booking struct {
	repo        repositories.BookingRepository
	patientRepo repositories.PatientRepository
	logger      *zap.Logger
}

// NewBooking creates a new booking handler
func NewBooking(repo repositories.BookingRepository, patientRepo repositories.PatientRepository, logger *zap.Logger) *Booking {
	return &Booking{repo: repo, patientRepo: patientRepo, logger: logger}
}

// Create schedules a new appointment
func (h *Booking) Create(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrValidation(err.Error()))
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid patient id"))
	}

	ctx := c.Request().Context()
	if _, err := h.patientRepo.FindByID(ctx, patientID); err != nil {
		return HandleError(h.logger, c, err)
	}

	booking := entities.NewBooking(patientID, req.ScheduledAt)
	booking.Reason = req.Reason

	if err := h.repo.Create(ctx, booking); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(h.logger, c, booking)
}

// Get retrieves a booking by ID
func (h *Booking) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid booking id"))
	}

	booking, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, booking)
}

// List retrieves bookings by patient or time window
func (h *Booking) List(c echo.Context) error {
	var req dto.ListBookingsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrValidation(err.Error()))
	}

	ctx := c.Request().Context()

	if req.PatientID != "" {
		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid patient id"))
		}
		bookings, err := h.repo.ListByPatient(ctx, patientID)
		if err != nil {
			return HandleError(h.logger, c, err)
		}
		return HandleSuccess(h.logger, c, bookings)
	}

	// Default window: today
	from := time.Now().Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)
	if req.From != nil {
		from = *req.From
	}
	if req.To != nil {
		to = *req.To
	}

	bookings, err := h.repo.ListBetween(ctx, from, to)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, bookings)
}

// Update reschedules a booking or changes its status
func (h *Booking) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid booking id"))
	}

	var req dto.UpdateBookingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrValidation(err.Error()))
	}

	ctx := c.Request().Context()
	booking, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if req.ScheduledAt != nil {
		booking.ScheduledAt = *req.ScheduledAt
	}
	if req.Reason != nil {
		booking.Reason = *req.Reason
	}
	if req.Status != nil {
		booking.Status = *req.Status
	}

	if err := h.repo.Update(ctx, booking); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, booking)
}
