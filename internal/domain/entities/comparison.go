package entities

import (
	"time"

	"github.com/google/uuid"
)

// CodeOverlap is the code-set agreement between the AI coder and the doctor
type CodeOverlap struct {
	ExactMatches    []string `json:"exact_matches"`
	AIOnlyCodes     []string `json:"ai_only_codes"`
	DoctorOnlyCodes []string `json:"doctor_only_codes"`
	Score           int      `json:"score"`
}

// NoteComparison scores an AI note/code-set against the clinician's own.
// Records are immutable after creation: a re-score is a new record, never an
// update. SessionID and the note ids are weak back-references, not ownership.
type NoteComparison struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID       uuid.UUID      `json:"session_id" gorm:"type:uuid;not null;index"`
	AINoteID        uuid.UUID      `json:"ai_note_id" gorm:"type:uuid;not null"`
	DoctorNoteID    uuid.UUID      `json:"doctor_note_id" gorm:"type:uuid;not null"`
	MatchScore      int            `json:"match_score"`
	FieldScores     map[string]int `json:"field_scores" gorm:"type:jsonb;serializer:json"`
	CodeOverlap     CodeOverlap    `json:"code_overlap" gorm:"type:jsonb;serializer:json"`
	DifferenceNotes []string       `json:"difference_notes,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt       time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (NoteComparison) TableName() string {
	return "note_comparisons"
}

// NewNoteComparison creates a comparison record referencing both notes
func NewNoteComparison(sessionID, aiNoteID, doctorNoteID uuid.UUID) *NoteComparison {
	return &NoteComparison{
		ID:           uuid.New(),
		SessionID:    sessionID,
		AINoteID:     aiNoteID,
		DoctorNoteID: doctorNoteID,
		CreatedAt:    time.Now(),
	}
}
