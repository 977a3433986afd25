package handler

import (
	stdErrors "errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/clinic-assistant/errors"
	dto "github.com/johnquangdev/clinic-assistant/internal/adapter/dto/examination"
	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
	"github.com/johnquangdev/clinic-assistant/internal/usecase/examination"
)

// Examination handles the examination session workflow endpoints
type Examination struct {
	service *examination.Service
	logger  *zap.Logger
}

// NewExamination creates a new examination handler
func NewExamination(service *examination.Service, logger *zap.Logger) *Examination {
	return &Examination{service: service, logger: logger}
}

// StartSession opens a new examination session
func (h *Examination) StartSession(c echo.Context) error {
	var req dto.StartSessionRequest
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

	var bookingID *uuid.UUID
	if req.BookingID != "" {
		id, err := uuid.Parse(req.BookingID)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid booking id"))
		}
		bookingID = &id
	}

	session, err := h.service.StartSession(c.Request().Context(), patientID, bookingID, req.Complaint)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(h.logger, c, session)
}

// GetSession retrieves a session by ID
func (h *Examination) GetSession(c echo.Context) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	session, err := h.service.GetSession(c.Request().Context(), sessionID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, session)
}

// ListSessions lists a patient's examination sessions
func (h *Examination) ListSessions(c echo.Context) error {
	patientID, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("patient_id query parameter is required"))
	}

	sessions, err := h.service.ListSessions(c.Request().Context(), patientID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, sessions)
}

// UploadRecording accepts a multipart audio upload and queues analysis
func (h *Examination) UploadRecording(c echo.Context) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	fileHeader, err := c.FormFile("recording")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("recording file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}
	defer file.Close()

	job, err := h.service.ProcessRecording(
		c.Request().Context(),
		sessionID,
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(h.logger, c, job)
}

// Analyze runs the note pipeline synchronously over a manual transcript
func (h *Examination) Analyze(c echo.Context) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrValidation(err.Error()))
	}

	note, err := h.service.RunPipeline(c.Request().Context(), sessionID, req.Transcript)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrAnalysisFailed(err))
	}
	return HandleSuccess(h.logger, c, note)
}

// GetAnalysis polls the AI analysis state for a session
func (h *Examination) GetAnalysis(c echo.Context) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	status, err := h.service.GetAnalysis(c.Request().Context(), sessionID)
	if err != nil {
		// On the polling path a missing AI note just means nothing has been
		// analyzed yet, not an incomplete comparison
		if stdErrors.Is(err, entities.ErrAINoteMissing) {
			return HandleError(h.logger, c, errors.ErrAnalysisNotFound(sessionID.String()))
		}
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, status)
}

// SaveNote upserts the clinician's own SOAP note
func (h *Examination) SaveNote(c echo.Context) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.SaveNoteRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrValidation(err.Error()))
	}

	note, err := h.service.SaveDoctorNote(c.Request().Context(), sessionID, entities.StructuredNote{
		Subjective: req.Subjective,
		Objective:  req.Objective,
		Assessment: req.Assessment,
		Plan:       req.Plan,
	}, req.Codes)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, note)
}

// FinalizeNote validates and finalizes the doctor note, completing the session
func (h *Examination) FinalizeNote(c echo.Context) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	note, err := h.service.FinalizeNote(c.Request().Context(), sessionID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, note)
}

// RunComparison scores the AI note against the doctor note
func (h *Examination) RunComparison(c echo.Context) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	record, err := h.service.RunComparison(c.Request().Context(), sessionID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(h.logger, c, record)
}

// GetComparison retrieves the latest comparison for a session
func (h *Examination) GetComparison(c echo.Context) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	record, err := h.service.GetComparison(c.Request().Context(), sessionID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, record)
}

func (h *Examination) sessionID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidArgument("invalid session id")
	}
	return id, nil
}
