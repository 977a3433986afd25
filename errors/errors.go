package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies an application error category.
type ErrorCode string

// String implements fmt.Stringer
func (c ErrorCode) String() string {
	return string(c)
}

// Error codes grouped by domain area
const (
	ErrorCode_INTERNAL          ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT  ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_INVALID_PAYLOAD   ErrorCode = "INVALID_PAYLOAD"
	ErrorCode_NOT_FOUND         ErrorCode = "NOT_FOUND"
	ErrorCode_ALREADY_EXISTS    ErrorCode = "ALREADY_EXISTS"
	ErrorCode_VALIDATION_FAILED ErrorCode = "VALIDATION_FAILED"

	ErrorCode_PATIENT_NOT_FOUND ErrorCode = "PATIENT_NOT_FOUND"
	ErrorCode_BOOKING_NOT_FOUND ErrorCode = "BOOKING_NOT_FOUND"
	ErrorCode_BOOKING_CONFLICT  ErrorCode = "BOOKING_CONFLICT"

	ErrorCode_SESSION_NOT_FOUND     ErrorCode = "SESSION_NOT_FOUND"
	ErrorCode_SESSION_COMPLETED     ErrorCode = "SESSION_COMPLETED"
	ErrorCode_NOTE_NOT_FOUND        ErrorCode = "NOTE_NOT_FOUND"
	ErrorCode_NOTE_MISSING_FIELDS   ErrorCode = "NOTE_MISSING_FIELDS"
	ErrorCode_COMPARISON_NOT_FOUND  ErrorCode = "COMPARISON_NOT_FOUND"
	ErrorCode_COMPARISON_INCOMPLETE ErrorCode = "COMPARISON_INCOMPLETE"

	ErrorCode_ANALYSIS_NOT_FOUND      ErrorCode = "ANALYSIS_NOT_FOUND"
	ErrorCode_AI_ANALYSIS_FAILED      ErrorCode = "AI_ANALYSIS_FAILED"
	ErrorCode_AI_TRANSCRIPTION_FAILED ErrorCode = "AI_TRANSCRIPTION_FAILED"
	ErrorCode_AI_SERVICE_UNAVAILABLE  ErrorCode = "AI_SERVICE_UNAVAILABLE"
	ErrorCode_MISSING_RECORDING_URL   ErrorCode = "MISSING_RECORDING_URL"

	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = "INTEGRATION_STORAGE_FAILED"
	ErrorCode_INTEGRATION_CACHE_FAILED   ErrorCode = "INTEGRATION_CACHE_FAILED"

	ErrorCode_DB_CONNECTION_FAILED ErrorCode = "DB_CONNECTION_FAILED"
	ErrorCode_DB_QUERY_FAILED      ErrorCode = "DB_QUERY_FAILED"
)

// AppError là custom error type cho application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrAlreadyExists(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_ALREADY_EXISTS,
		Message:  fmt.Sprintf("%s already exists", resource),
	}
}

func ErrValidation(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_VALIDATION_FAILED,
		Message:  message,
	}
}

// Patient / Booking Errors
func ErrPatientNotFound(patientID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_PATIENT_NOT_FOUND,
		Message:  "Patient not found",
	}.WithDetail("patient_id", patientID)
}

func ErrBookingNotFound(bookingID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_BOOKING_NOT_FOUND,
		Message:  "Booking not found",
	}.WithDetail("booking_id", bookingID)
}

func ErrBookingConflict(slot string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_BOOKING_CONFLICT,
		Message:  "Booking slot is not available",
	}.WithDetail("slot", slot)
}

// Examination Session Errors
func ErrSessionNotFound(sessionID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_SESSION_NOT_FOUND,
		Message:  "Examination session not found",
	}.WithDetail("session_id", sessionID)
}

func ErrSessionCompleted(sessionID string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_SESSION_COMPLETED,
		Message:  "Examination session is already completed",
	}.WithDetail("session_id", sessionID)
}

func ErrNoteNotFound(sessionID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOTE_NOT_FOUND,
		Message:  "Clinical note not found for session",
	}.WithDetail("session_id", sessionID)
}

// ErrNoteMissingFields rejects note finalization before any external call is made.
func ErrNoteMissingFields(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_NOTE_MISSING_FIELDS,
		Message:  message,
	}
}

func ErrComparisonNotFound(sessionID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_COMPARISON_NOT_FOUND,
		Message:  "Comparison not found for session",
	}.WithDetail("session_id", sessionID)
}

// ErrComparisonIncomplete is returned when one side of the comparison does not
// exist yet (e.g., doctor note not finalized or AI analysis not run).
func ErrComparisonIncomplete(message string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_COMPARISON_INCOMPLETE,
		Message:  message,
	}
}

// ErrAnalysisNotFound is returned when a session has neither an AI note nor
// any queued analysis job
func ErrAnalysisNotFound(sessionID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_ANALYSIS_NOT_FOUND,
		Message:  "No analysis is available for this session",
	}.WithDetail("session_id", sessionID)
}

// AI Processing Errors
func ErrAnalysisFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_AI_ANALYSIS_FAILED,
		Message:  "AI analysis failed, please retry",
	}
}

func ErrTranscriptionFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_AI_TRANSCRIPTION_FAILED,
		Message:  "Audio transcription failed",
	}
}

func ErrAIServiceUnavailable(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_AI_SERVICE_UNAVAILABLE,
		Message:  "AI service is unavailable",
	}.WithDetail("service", service)
}

func ErrMissingRecordingURL() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_MISSING_RECORDING_URL,
		Message:  "Missing recording URL",
	}
}

// Integration Errors
func ErrStorageFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_STORAGE_FAILED,
		Message:  "Storage operation failed",
	}
}

func ErrCacheFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_CACHE_FAILED,
		Message:  "Cache operation failed",
	}
}

// Database Errors
func ErrDBConnection(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_CONNECTION_FAILED,
		Message:  "Database connection failed",
	}
}

func ErrDBQuery(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database query failed",
	}
}
