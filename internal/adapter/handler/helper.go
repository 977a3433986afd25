package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/clinic-assistant/errors"
	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// Response shapes
type success struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Info    string `json:"info,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleSuccess writes a standardized success response
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    "OK",
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleCreated writes a standardized 201 response
func HandleCreated(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    "OK",
		Message: "created",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusCreated, resp)
}

// HandleError centralizes error handling and logging. Domain sentinel errors
// are translated to AppError first so handlers can return them directly.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	appErr := toAppError(err)

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.String("app_code", appErr.Code.String()),
			zap.Error(err),
		)
	}

	info := ""
	if appErr.Raw != nil {
		info = appErr.Raw.Error()
	}

	body := errs{
		Code:    appErr.Code.String(),
		Message: appErr.Message,
		Info:    info,
	}

	return c.JSON(appErr.HTTPCode, body)
}

// toAppError maps any error to an AppError with an HTTP status
func toAppError(err error) errors.AppError {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stdErrors.Is(err, entities.ErrPatientNotFound):
		return errors.ErrPatientNotFound("")
	case stdErrors.Is(err, entities.ErrBookingNotFound):
		return errors.ErrBookingNotFound("")
	case stdErrors.Is(err, entities.ErrBookingConflict):
		return errors.ErrBookingConflict("")
	case stdErrors.Is(err, entities.ErrSessionNotFound):
		return errors.ErrSessionNotFound("")
	case stdErrors.Is(err, entities.ErrSessionCompleted):
		return errors.ErrSessionCompleted("")
	case stdErrors.Is(err, entities.ErrNoteNotFound):
		return errors.ErrNoteNotFound("")
	case stdErrors.Is(err, entities.ErrNoteMissingDiagnosis),
		stdErrors.Is(err, entities.ErrNoteMissingCodes):
		return errors.ErrNoteMissingFields(err.Error())
	case stdErrors.Is(err, entities.ErrNoteAlreadyFinalized):
		return errors.ErrValidation(err.Error())
	case stdErrors.Is(err, entities.ErrComparisonNotFound):
		return errors.ErrComparisonNotFound("")
	case stdErrors.Is(err, entities.ErrAINoteMissing),
		stdErrors.Is(err, entities.ErrDoctorNoteMissing):
		return errors.ErrComparisonIncomplete(err.Error())
	case stdErrors.Is(err, entities.ErrInvalidRequest):
		return errors.ErrInvalidArgument(err.Error())
	default:
		return errors.ErrInternal(err)
	}
}
