package entities

import (
	"time"

	"github.com/google/uuid"
)

// StructuredNote is a SOAP clinical note. Fields may be empty but are never
// null downstream of the pipeline merge.
type StructuredNote struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

// IsEmpty reports whether every SOAP field is blank
func (n StructuredNote) IsEmpty() bool {
	return n.Subjective == "" && n.Objective == "" && n.Assessment == "" && n.Plan == ""
}

// NoteAuthor distinguishes the AI-generated note from the clinician's own.
// The two are distinct records per session, never the same row.
type NoteAuthor string

const (
	NoteAuthorAI     NoteAuthor = "ai"
	NoteAuthorDoctor NoteAuthor = "doctor"
)

// ClinicalNote is the stored note model. A session has at most one note per
// author; the AI note carries advice and references, the doctor note carries
// a finalization timestamp once confirmed.
type ClinicalNote struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID   uuid.UUID  `json:"session_id" gorm:"type:uuid;not null;index:idx_notes_session_author,unique"`
	Author      NoteAuthor `json:"author" gorm:"type:varchar(10);not null;index:idx_notes_session_author,unique"`
	Subjective  string     `json:"subjective" gorm:"type:text"`
	Objective   string     `json:"objective" gorm:"type:text"`
	Assessment  string     `json:"assessment" gorm:"type:text"`
	Plan        string     `json:"plan" gorm:"type:text"`
	Codes       []string   `json:"codes,omitempty" gorm:"type:jsonb;serializer:json"`
	Advice      string     `json:"advice,omitempty" gorm:"type:text"`
	References  []string   `json:"references,omitempty" gorm:"type:jsonb;serializer:json"`
	ModelUsed   string     `json:"model_used,omitempty" gorm:"type:varchar(100)"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty" gorm:"type:timestamp"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ClinicalNote) TableName() string {
	return "clinical_notes"
}

// NewClinicalNote creates a new note for a session
func NewClinicalNote(sessionID uuid.UUID, author NoteAuthor) *ClinicalNote {
	return &ClinicalNote{
		ID:        uuid.New(),
		SessionID: sessionID,
		Author:    author,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Note returns the SOAP view of the stored record
func (c *ClinicalNote) Note() StructuredNote {
	return StructuredNote{
		Subjective: c.Subjective,
		Objective:  c.Objective,
		Assessment: c.Assessment,
		Plan:       c.Plan,
	}
}

// SetNote copies SOAP fields onto the stored record
func (c *ClinicalNote) SetNote(n StructuredNote) {
	c.Subjective = n.Subjective
	c.Objective = n.Objective
	c.Assessment = n.Assessment
	c.Plan = n.Plan
}

// CanFinalize validates the note before finalization. A doctor note must
// carry a diagnosis and at least one ICD-10 code; this check runs before any
// external call is made.
func (c *ClinicalNote) CanFinalize() error {
	if c.Assessment == "" {
		return ErrNoteMissingDiagnosis
	}
	if len(c.Codes) == 0 {
		return ErrNoteMissingCodes
	}
	return nil
}

// AdvisoryResult is the advisor stage output: narrative advice in the note's
// language plus the source identifiers of the retrieved protocol chunks.
type AdvisoryResult struct {
	Narrative  string   `json:"narrative"`
	References []string `json:"references"`
}
