package entities

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of an examination session
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
)

// ExamSession is one doctor-patient examination. It owns at most one AI note
// and at most one finalized doctor note; the session completes when the
// clinician finalizes their note.
type ExamSession struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PatientID   uuid.UUID     `json:"patient_id" gorm:"type:uuid;not null;index"`
	BookingID   *uuid.UUID    `json:"booking_id,omitempty" gorm:"type:uuid;index"`
	Complaint   string        `json:"complaint,omitempty" gorm:"type:text"`
	Status      SessionStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	StartedAt   time.Time     `json:"started_at" gorm:"type:timestamp;not null"`
	CompletedAt *time.Time    `json:"completed_at,omitempty" gorm:"type:timestamp"`
	CreatedAt   time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ExamSession) TableName() string {
	return "exam_sessions"
}

// NewExamSession creates an active session for a patient
func NewExamSession(patientID uuid.UUID) *ExamSession {
	now := time.Now()
	return &ExamSession{
		ID:        uuid.New(),
		PatientID: patientID,
		Status:    SessionStatusActive,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Complete marks the session completed at the given time
func (s *ExamSession) Complete(at time.Time) {
	s.Status = SessionStatusCompleted
	s.CompletedAt = &at
}
