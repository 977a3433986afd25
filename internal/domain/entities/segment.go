package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SpeakerRole is the dialogue role assigned to a transcript segment
type SpeakerRole string

const (
	RoleClinician SpeakerRole = "clinician"
	RolePatient   SpeakerRole = "patient"
	RoleUnlabeled SpeakerRole = "unlabeled"
)

// TranscriptSegment is one utterance of the doctor-patient conversation.
// Start/End/RawText come from the transcription adapter; Role is assigned by
// the speaker attributor and CleanText by the text normalizer. Segment order
// is chronological and must not change once the note pipeline consumes it.
type TranscriptSegment struct {
	Start     float64     `json:"start"`
	End       float64     `json:"end"`
	Role      SpeakerRole `json:"role"`
	RawText   string      `json:"raw_text"`
	CleanText string      `json:"clean_text"`
}

// ExamTranscript is the stored transcript of one examination session
type ExamTranscript struct {
	ID              uuid.UUID                                  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID       uuid.UUID                                  `json:"session_id" gorm:"type:uuid;not null;uniqueIndex"`
	Text            string                                     `json:"text" gorm:"type:text"`
	Language        string                                     `json:"language,omitempty" gorm:"type:varchar(20)"`
	Segments        []TranscriptSegment                        `json:"segments,omitempty" gorm:"type:jsonb;serializer:json"`
	ConfidenceScore float64                                    `json:"confidence_score,omitempty"`
	ModelUsed       string                                     `json:"model_used,omitempty" gorm:"type:varchar(100)"`
	RawData         datatypes.JSONType[map[string]interface{}] `json:"raw_data,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt       time.Time                                  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time                                  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ExamTranscript) TableName() string {
	return "exam_transcripts"
}

// NewExamTranscript creates a new transcript for a session
func NewExamTranscript(sessionID uuid.UUID) *ExamTranscript {
	return &ExamTranscript{
		ID:        uuid.New(),
		SessionID: sessionID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
