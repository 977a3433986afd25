package examination

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
	"github.com/johnquangdev/clinic-assistant/internal/domain/repositories"
	"github.com/johnquangdev/clinic-assistant/internal/infrastructure/cache"
	"github.com/johnquangdev/clinic-assistant/internal/infrastructure/storage"
	"github.com/johnquangdev/clinic-assistant/internal/usecase/comparison"
	pkgai "github.com/johnquangdev/clinic-assistant/pkg/ai"
	"github.com/johnquangdev/clinic-assistant/pkg/config"
	"github.com/johnquangdev/clinic-assistant/pkg/jobcontext"
)

// Transcriber is the speech-to-text surface the examination service depends on
type Transcriber interface {
	Transcribe(ctx context.Context, recordingURL string) (*pkgai.TranscriptionResult, error)
}

// AnalysisStatus is the polled view of a session's AI analysis
type AnalysisStatus struct {
	Status    entities.AnalysisJobStatus `json:"status"`
	Note      *entities.ClinicalNote     `json:"note,omitempty"`
	LastError string                     `json:"last_error,omitempty"`
}

// Service orchestrates the examination workflow: session lifecycle,
// recording intake, the async analysis queue, doctor note finalization, and
// AI-vs-doctor comparison.
type Service struct {
	sessionRepo    repositories.SessionRepository
	transcriptRepo repositories.TranscriptRepository
	noteRepo       repositories.NoteRepository
	comparisonRepo repositories.ComparisonRepository
	jobRepo        repositories.AnalysisJobRepository
	patientRepo    repositories.PatientRepository
	bookingRepo    repositories.BookingRepository

	transcriber   Transcriber
	attributor    *Attributor
	normalizer    *Normalizer
	pipeline      *Pipeline
	comparisonSvc *comparison.Service

	store  *storage.MinIOClient
	cache  cache.Store
	cfg    *config.Config
	logger *zap.Logger

	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
}

// NewService constructs the examination service
func NewService(
	sessionRepo repositories.SessionRepository,
	transcriptRepo repositories.TranscriptRepository,
	noteRepo repositories.NoteRepository,
	comparisonRepo repositories.ComparisonRepository,
	jobRepo repositories.AnalysisJobRepository,
	patientRepo repositories.PatientRepository,
	bookingRepo repositories.BookingRepository,
	transcriber Transcriber,
	attributor *Attributor,
	normalizer *Normalizer,
	pipeline *Pipeline,
	comparisonSvc *comparison.Service,
	store *storage.MinIOClient,
	cacheStore cache.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		sessionRepo:    sessionRepo,
		transcriptRepo: transcriptRepo,
		noteRepo:       noteRepo,
		comparisonRepo: comparisonRepo,
		jobRepo:        jobRepo,
		patientRepo:    patientRepo,
		bookingRepo:    bookingRepo,
		transcriber:    transcriber,
		attributor:     attributor,
		normalizer:     normalizer,
		pipeline:       pipeline,
		comparisonSvc:  comparisonSvc,
		store:          store,
		cache:          cacheStore,
		cfg:            cfg,
		logger:         logger,
		workerStopChan: make(chan struct{}),
	}
}

// StartSession opens an examination session for a patient. When a booking is
// given it is checked in alongside.
func (s *Service) StartSession(ctx context.Context, patientID uuid.UUID, bookingID *uuid.UUID, complaint string) (*entities.ExamSession, error) {
	if _, err := s.patientRepo.FindByID(ctx, patientID); err != nil {
		return nil, err
	}

	session := entities.NewExamSession(patientID)
	session.Complaint = complaint

	if bookingID != nil {
		booking, err := s.bookingRepo.FindByID(ctx, *bookingID)
		if err != nil {
			return nil, err
		}
		session.BookingID = &booking.ID
		booking.Status = entities.BookingStatusCheckedIn
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return nil, err
		}
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("🩺 Examination session started",
			zap.String("session_id", session.ID.String()),
			zap.String("patient_id", patientID.String()),
		)
	}
	return session, nil
}

// GetSession retrieves a session by ID
func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*entities.ExamSession, error) {
	return s.sessionRepo.FindByID(ctx, id)
}

// ListSessions returns a patient's examination sessions, newest first
func (s *Service) ListSessions(ctx context.Context, patientID uuid.UUID) ([]entities.ExamSession, error) {
	if _, err := s.patientRepo.FindByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.sessionRepo.ListByPatient(ctx, patientID)
}

// ProcessRecording stores an uploaded audio recording and queues an analysis
// job for it. Workers pick the job up asynchronously.
func (s *Service) ProcessRecording(ctx context.Context, sessionID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*entities.AnalysisJob, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == entities.SessionStatusCompleted {
		return nil, entities.ErrSessionCompleted
	}

	objectName, err := s.store.UploadRecording(ctx, sessionID, filename, reader, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store recording: %w", err)
	}

	recordingURL, err := s.store.GetFileURL(ctx, objectName, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to build recording URL: %w", err)
	}

	job := entities.NewAnalysisJob(sessionID, recordingURL)
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("🎙️ Recording queued for analysis",
			zap.String("session_id", sessionID.String()),
			zap.String("job_id", job.ID.String()),
		)
	}
	return job, nil
}

// RunPipeline runs the clinical note pipeline synchronously over an
// assembled transcript, stores the AI note, and returns it. This is the
// entry point for manually entered transcripts; recording uploads reach the
// same path through the worker pool.
func (s *Service) RunPipeline(ctx context.Context, sessionID uuid.UUID, transcript string) (*entities.ClinicalNote, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == entities.SessionStatusCompleted {
		return nil, entities.ErrSessionCompleted
	}

	result, err := s.pipeline.Run(ctx, transcript)
	if err != nil {
		return nil, err
	}

	return s.saveAIResult(ctx, sessionID, result)
}

// GetAnalysis returns the AI note for a session if analysis has produced
// one, together with the latest job status for in-flight or failed runs.
func (s *Service) GetAnalysis(ctx context.Context, sessionID uuid.UUID) (*AnalysisStatus, error) {
	if _, err := s.sessionRepo.FindByID(ctx, sessionID); err != nil {
		return nil, err
	}

	if cached, ok := s.getCachedNote(ctx, sessionID); ok {
		return &AnalysisStatus{Status: entities.AnalysisJobStatusCompleted, Note: cached}, nil
	}

	note, err := s.noteRepo.FindBySession(ctx, sessionID, entities.NoteAuthorAI)
	if err == nil {
		s.cacheNote(ctx, note)
		return &AnalysisStatus{Status: entities.AnalysisJobStatusCompleted, Note: note}, nil
	}
	if err != entities.ErrNoteNotFound {
		return nil, err
	}

	job, err := s.jobRepo.FindLatestBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, entities.ErrAINoteMissing
	}

	status := &AnalysisStatus{Status: job.Status}
	if job.Status == entities.AnalysisJobStatusFailed && job.LastError != nil {
		status.LastError = *job.LastError
	}
	return status, nil
}

// SaveDoctorNote upserts the clinician's own note for a session
func (s *Service) SaveDoctorNote(ctx context.Context, sessionID uuid.UUID, note entities.StructuredNote, codes []string) (*entities.ClinicalNote, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == entities.SessionStatusCompleted {
		return nil, entities.ErrSessionCompleted
	}

	record, err := s.noteRepo.FindBySession(ctx, sessionID, entities.NoteAuthorDoctor)
	if err != nil {
		if err != entities.ErrNoteNotFound {
			return nil, err
		}
		record = entities.NewClinicalNote(sessionID, entities.NoteAuthorDoctor)
	}
	if record.FinalizedAt != nil {
		return nil, entities.ErrNoteAlreadyFinalized
	}

	record.SetNote(note)
	record.Codes = entities.NormalizeCodeSet(codes)
	record.UpdatedAt = time.Now()

	if err := s.noteRepo.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// FinalizeNote validates and finalizes the doctor note, completing the
// session. Validation runs before anything is written: a note without a
// diagnosis or without codes is rejected outright.
func (s *Service) FinalizeNote(ctx context.Context, sessionID uuid.UUID) (*entities.ClinicalNote, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	note, err := s.noteRepo.FindBySession(ctx, sessionID, entities.NoteAuthorDoctor)
	if err != nil {
		if err == entities.ErrNoteNotFound {
			return nil, entities.ErrDoctorNoteMissing
		}
		return nil, err
	}
	if note.FinalizedAt != nil {
		return nil, entities.ErrNoteAlreadyFinalized
	}
	if err := note.CanFinalize(); err != nil {
		return nil, err
	}

	now := time.Now()
	note.FinalizedAt = &now
	note.UpdatedAt = now
	if err := s.noteRepo.Save(ctx, note); err != nil {
		return nil, err
	}

	session.Complete(now)
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("✅ Doctor note finalized",
			zap.String("session_id", sessionID.String()),
		)
	}
	return note, nil
}

// RunComparison scores the session's AI note against the doctor note and
// persists the result. Every run appends a fresh record.
func (s *Service) RunComparison(ctx context.Context, sessionID uuid.UUID) (*entities.NoteComparison, error) {
	aiNote, err := s.noteRepo.FindBySession(ctx, sessionID, entities.NoteAuthorAI)
	if err != nil {
		if err == entities.ErrNoteNotFound {
			return nil, entities.ErrAINoteMissing
		}
		return nil, err
	}

	doctorNote, err := s.noteRepo.FindBySession(ctx, sessionID, entities.NoteAuthorDoctor)
	if err != nil {
		if err == entities.ErrNoteNotFound {
			return nil, entities.ErrDoctorNoteMissing
		}
		return nil, err
	}

	result, err := s.comparisonSvc.Compare(ctx, aiNote.Note(), doctorNote.Note(), aiNote.Codes, doctorNote.Codes)
	if err != nil {
		return nil, err
	}

	record := entities.NewNoteComparison(sessionID, aiNote.ID, doctorNote.ID)
	record.MatchScore = result.MatchScore
	record.FieldScores = result.FieldScores
	record.CodeOverlap = result.CodeOverlap
	record.DifferenceNotes = result.DifferenceNotes

	if err := s.comparisonRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// GetComparison retrieves the most recent comparison for a session
func (s *Service) GetComparison(ctx context.Context, sessionID uuid.UUID) (*entities.NoteComparison, error) {
	return s.comparisonRepo.FindLatestBySession(ctx, sessionID)
}

// StartWorkerPool starts background workers that process queued analysis jobs
func (s *Service) StartWorkerPool(ctx context.Context, workerCount int) error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}

	s.isWorkerPoolRunning = true
	s.workerStopChan = make(chan struct{})

	if s.logger != nil {
		s.logger.Info("🚀 Starting analysis worker pool",
			zap.Int("worker_count", workerCount),
		)
	}

	for i := 0; i < workerCount; i++ {
		s.workerWg.Add(1)
		go s.analysisWorker(ctx, i)
	}

	return nil
}

// StopWorkerPool gracefully stops all worker goroutines
func (s *Service) StopWorkerPool() error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if !s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	if s.logger != nil {
		s.logger.Info("🛑 Stopping analysis worker pool...")
	}

	close(s.workerStopChan)
	s.workerWg.Wait()
	s.isWorkerPoolRunning = false

	if s.logger != nil {
		s.logger.Info("✅ Analysis worker pool stopped")
	}
	return nil
}

// analysisWorker polls for pending jobs and runs the full analysis chain
func (s *Service) analysisWorker(parentCtx context.Context, workerID int) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	if s.logger != nil {
		s.logger.Info("👷 Analysis worker started", zap.Int("worker_id", workerID))
	}

	for {
		select {
		case <-s.workerStopChan:
			if s.logger != nil {
				s.logger.Info("👷 Analysis worker stopping", zap.Int("worker_id", workerID))
			}
			return

		case <-ticker.C:
			jobs, err := s.jobRepo.GetJobsByStatus(parentCtx, entities.AnalysisJobStatusPending, 5)
			if err != nil {
				if s.logger != nil {
					s.logger.Error("❌ Failed to poll analysis jobs",
						zap.Int("worker_id", workerID),
						zap.Error(err),
					)
				}
				continue
			}

			for _, job := range jobs {
				claimed, err := s.jobRepo.Claim(parentCtx, job.ID, entities.AnalysisJobStatusTranscribing)
				if err != nil {
					if s.logger != nil {
						s.logger.Error("❌ Failed to claim job",
							zap.String("job_id", job.ID.String()),
							zap.Error(err),
						)
					}
					continue
				}
				if !claimed {
					// Another worker got there first
					continue
				}

				if s.logger != nil {
					s.logger.Info("👷 Worker claimed analysis job",
						zap.Int("worker_id", workerID),
						zap.String("job_id", job.ID.String()),
						zap.String("session_id", job.SessionID.String()),
					)
				}

				jobCtx, cancel := jobcontext.JobBegin(parentCtx, job.ID, "analysis", workerID)
				err = jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
					return s.processJob(ctx, &job)
				})
				cancel()

				s.finishJob(parentCtx, job.ID, err)
			}
		}
	}
}

// finishJob records the job outcome. A failed status write would leave the
// job stuck in a claimed state, so it is logged for operators.
func (s *Service) finishJob(ctx context.Context, jobID uuid.UUID, jobErr error) {
	if jobErr != nil {
		if s.logger != nil {
			s.logger.Error("❌ Analysis job failed after retries",
				zap.String("job_id", jobID.String()),
				zap.Error(jobErr),
			)
		}
		if err := s.jobRepo.MarkFailed(ctx, jobID, jobErr.Error()); err != nil && s.logger != nil {
			s.logger.Error("❌ Failed to mark job as failed",
				zap.String("job_id", jobID.String()),
				zap.Error(err),
			)
		}
		return
	}

	if s.logger != nil {
		s.logger.Info("✅ Analysis job completed",
			zap.String("job_id", jobID.String()),
		)
	}
	if err := s.jobRepo.MarkCompleted(ctx, jobID); err != nil && s.logger != nil {
		s.logger.Error("❌ Failed to mark job as completed",
			zap.String("job_id", jobID.String()),
			zap.Error(err),
		)
	}
}

// processJob runs one recording through transcription, attribution,
// normalization, and the clinical note pipeline
func (s *Service) processJob(ctx context.Context, job *entities.AnalysisJob) error {
	// Transient provider errors are retried with exponential backoff before
	// the job itself fails
	var result *pkgai.TranscriptionResult
	transcribeFn := func() error {
		var err error
		result, err = s.transcriber.Transcribe(ctx, job.RecordingURL)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(transcribeFn, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}
	if len(result.Segments) == 0 {
		return fmt.Errorf("transcription produced no segments")
	}

	segments := make([]entities.TranscriptSegment, 0, len(result.Segments))
	for _, seg := range result.Segments {
		segments = append(segments, entities.TranscriptSegment{
			Start:   seg.Start,
			End:     seg.End,
			Role:    entities.RoleUnlabeled,
			RawText: seg.Text,
		})
	}

	segments = s.attributor.Attribute(ctx, segments)
	segments = s.normalizer.Normalize(ctx, segments)

	transcript := entities.NewExamTranscript(job.SessionID)
	transcript.Text = result.Text
	transcript.Language = result.Language
	transcript.Segments = segments
	transcript.ModelUsed = "assemblyai"
	if err := s.transcriptRepo.Save(ctx, transcript); err != nil {
		return fmt.Errorf("failed to store transcript: %w", err)
	}

	if err := s.jobRepo.UpdateStatus(ctx, job.ID, entities.AnalysisJobStatusAnalyzing); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to update job status", zap.Error(err))
	}

	pipelineResult, err := s.pipeline.Run(ctx, formatTranscript(segments))
	if err != nil {
		return err
	}

	if _, err := s.saveAIResult(ctx, job.SessionID, pipelineResult); err != nil {
		return err
	}
	return nil
}

// saveAIResult persists the pipeline output as the session's AI note and
// caches it for polling
func (s *Service) saveAIResult(ctx context.Context, sessionID uuid.UUID, result *PipelineResult) (*entities.ClinicalNote, error) {
	note := entities.NewClinicalNote(sessionID, entities.NoteAuthorAI)
	note.SetNote(result.Note)
	note.Codes = result.Codes
	note.Advice = result.Advice
	note.References = result.References
	note.ModelUsed = s.cfg.Groq.Model

	if err := s.noteRepo.Save(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to store AI note: %w", err)
	}

	s.cacheNote(ctx, note)
	return note, nil
}

func (s *Service) cacheNote(ctx context.Context, note *entities.ClinicalNote) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(note)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, analysisCacheKey(note.SessionID), string(payload), s.cfg.Pipeline.ResultCacheTTL); err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to cache analysis result", zap.Error(err))
		}
	}
}

func (s *Service) getCachedNote(ctx context.Context, sessionID uuid.UUID) (*entities.ClinicalNote, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, ok, err := s.cache.Get(ctx, analysisCacheKey(sessionID))
	if err != nil || !ok {
		return nil, false
	}
	var note entities.ClinicalNote
	if err := json.Unmarshal([]byte(payload), &note); err != nil {
		return nil, false
	}
	return &note, true
}

func analysisCacheKey(sessionID uuid.UUID) string {
	return "analysis:" + sessionID.String()
}

// formatTranscript renders the segment sequence as speaker-labelled lines
// for the note pipeline prompt
func formatTranscript(segments []entities.TranscriptSegment) string {
	var sb strings.Builder
	for _, seg := range segments {
		text := seg.CleanText
		if text == "" {
			text = seg.RawText
		}

		label := "Không rõ"
		switch seg.Role {
		case entities.RoleClinician:
			label = "Bác sĩ"
		case entities.RolePatient:
			label = "Bệnh nhân"
		}

		minutes := int(seg.Start) / 60
		seconds := int(seg.Start) % 60
		sb.WriteString(fmt.Sprintf("[%02d:%02d %s]: %s\n", minutes, seconds, label, text))
	}
	return sb.String()
}
