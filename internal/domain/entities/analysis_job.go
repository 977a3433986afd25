package entities

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisJobStatus is the processing state of an async analysis job
type AnalysisJobStatus string

const (
	AnalysisJobStatusPending      AnalysisJobStatus = "pending"
	AnalysisJobStatusTranscribing AnalysisJobStatus = "transcribing"
	AnalysisJobStatusAnalyzing    AnalysisJobStatus = "analyzing"
	AnalysisJobStatusCompleted    AnalysisJobStatus = "completed"
	AnalysisJobStatusFailed       AnalysisJobStatus = "failed"
)

// AnalysisJob tracks one audio recording through transcription and the
// clinical note pipeline. Workers claim jobs atomically by conditional
// status update.
type AnalysisJob struct {
	ID           uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionID    uuid.UUID         `json:"session_id" gorm:"type:uuid;not null;index"`
	Status       AnalysisJobStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	RecordingURL string            `json:"recording_url" gorm:"type:text;not null"`
	RetryCount   int               `json:"retry_count" gorm:"default:0"`
	MaxRetries   int               `json:"max_retries" gorm:"default:3"`
	LastError    *string           `json:"last_error,omitempty" gorm:"type:text"`
	StartedAt    *time.Time        `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty" gorm:"type:timestamp"`
	CreatedAt    time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (AnalysisJob) TableName() string {
	return "analysis_jobs"
}

// NewAnalysisJob creates a pending job for a session recording
func NewAnalysisJob(sessionID uuid.UUID, recordingURL string) *AnalysisJob {
	return &AnalysisJob{
		ID:           uuid.New(),
		SessionID:    sessionID,
		Status:       AnalysisJobStatusPending,
		RecordingURL: recordingURL,
		MaxRetries:   3,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}
