package entities

import "errors"

// Domain errors
var (
	// Patient / booking errors
	ErrPatientNotFound = errors.New("patient not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrBookingConflict = errors.New("booking slot is not available")

	// Session errors
	ErrSessionNotFound  = errors.New("examination session not found")
	ErrSessionCompleted = errors.New("examination session is already completed")

	// Note errors
	ErrNoteNotFound         = errors.New("clinical note not found")
	ErrNoteMissingDiagnosis = errors.New("cannot finalize note without a diagnosis")
	ErrNoteMissingCodes     = errors.New("cannot finalize note without at least one ICD-10 code")
	ErrNoteAlreadyFinalized = errors.New("clinical note is already finalized")

	// Comparison errors
	ErrComparisonNotFound = errors.New("comparison not found")
	ErrAINoteMissing      = errors.New("AI analysis has not produced a note for this session")
	ErrDoctorNoteMissing  = errors.New("doctor note has not been saved for this session")

	// Generic errors
	ErrInvalidRequest = errors.New("invalid request")
)
