package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/clinic-assistant/errors"
	"github.com/johnquangdev/clinic-assistant/internal/adapter/dto/common"
	dto "github.com/johnquangdev/clinic-assistant/internal/adapter/dto/patient"
	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
	"github.com/johnquangdev/clinic-assistant/internal/domain/repositories"
)

// Patient handles patient CRUD endpoints
type Patient struct {
	repo   repositories.PatientRepository
	logger *zap.Logger
}

// NewPatient creates a new patient handler
func NewPatient(repo repositories.PatientRepository, logger *zap.Logger) *Patient {
	return &Patient{repo: repo, logger: logger}
}

// Create registers a new patient
func (h *Patient) Create(c echo.Context) error {
	var req dto.CreatePatientRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrValidation(err.Error()))
	}

	patient := entities.NewPatient(req.FullName)
	patient.DateOfBirth = req.DateOfBirth
	patient.Gender = req.Gender
	patient.Phone = req.Phone
	patient.Address = req.Address
	patient.MedicalHistory = req.MedicalHistory

	if err := h.repo.Create(c.Request().Context(), patient); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(h.logger, c, patient)
}

// Get retrieves a patient by ID
func (h *Patient) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid patient id"))
	}

	patient, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, patient)
}

// List retrieves patients with search and pagination
func (h *Patient) List(c echo.Context) error {
	var req dto.ListPatientsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrValidation(err.Error()))
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	patients, total, err := h.repo.List(c.Request().Context(), repositories.PatientFilters{
		Search: req.Search,
		Limit:  req.PageSize,
		Offset: (req.Page - 1) * req.PageSize,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, common.ListResponse{
		Data:       patients,
		Pagination: common.NewPagination(req.Page, req.PageSize, total),
	})
}

// Update updates a patient record
func (h *Patient) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid patient id"))
	}

	var req dto.UpdatePatientRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrValidation(err.Error()))
	}

	ctx := c.Request().Context()
	patient, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if req.FullName != nil {
		patient.FullName = *req.FullName
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.MedicalHistory != nil {
		patient.MedicalHistory = *req.MedicalHistory
	}

	if err := h.repo.Update(ctx, patient); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, patient)
}

// Delete removes a patient record
func (h *Patient) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid patient id"))
	}

	ctx := c.Request().Context()
	if _, err := h.repo.FindByID(ctx, id); err != nil {
		return HandleError(h.logger, c, err)
	}
	if err := h.repo.Delete(ctx, id); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]string{"id": id.String()})
}
