package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
	"github.com/johnquangdev/clinic-assistant/internal/usecase/examination"
	"github.com/johnquangdev/clinic-assistant/pkg/config"
)

// fakeSessionRepo serves one fixed active session
type fakeSessionRepo struct {
	session *entities.ExamSession
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *entities.ExamSession) error {
	return nil
}

func (f *fakeSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.ExamSession, error) {
	if f.session != nil && f.session.ID == id {
		return f.session, nil
	}
	return nil, entities.ErrSessionNotFound
}

func (f *fakeSessionRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]entities.ExamSession, error) {
	return nil, nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, session *entities.ExamSession) error {
	return nil
}

// fakeNoteRepo has no stored notes
type fakeNoteRepo struct{}

func (f *fakeNoteRepo) Save(ctx context.Context, note *entities.ClinicalNote) error { return nil }

func (f *fakeNoteRepo) FindBySession(ctx context.Context, sessionID uuid.UUID, author entities.NoteAuthor) (*entities.ClinicalNote, error) {
	return nil, entities.ErrNoteNotFound
}

// fakeAnalysisJobRepo serves one fixed latest job, or none
type fakeAnalysisJobRepo struct {
	latest *entities.AnalysisJob
}

func (f *fakeAnalysisJobRepo) Create(ctx context.Context, job *entities.AnalysisJob) error {
	return nil
}

func (f *fakeAnalysisJobRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.AnalysisJob, error) {
	return nil, nil
}

func (f *fakeAnalysisJobRepo) FindLatestBySession(ctx context.Context, sessionID uuid.UUID) (*entities.AnalysisJob, error) {
	return f.latest, nil
}

func (f *fakeAnalysisJobRepo) GetJobsByStatus(ctx context.Context, status entities.AnalysisJobStatus, limit int) ([]entities.AnalysisJob, error) {
	return nil, nil
}

func (f *fakeAnalysisJobRepo) Claim(ctx context.Context, id uuid.UUID, to entities.AnalysisJobStatus) (bool, error) {
	return false, nil
}

func (f *fakeAnalysisJobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.AnalysisJobStatus) error {
	return nil
}

func (f *fakeAnalysisJobRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeAnalysisJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return nil
}

func analysisTestHandler(session *entities.ExamSession, jobRepo *fakeAnalysisJobRepo) *Examination {
	svc := examination.NewService(
		&fakeSessionRepo{session: session},
		nil,
		&fakeNoteRepo{},
		nil,
		jobRepo,
		nil,
		nil,
		nil,
		nil,
		nil,
		nil,
		nil,
		nil,
		nil,
		&config.Config{},
		nil,
	)
	return NewExamination(svc, nil)
}

func analysisRequest(e *echo.Echo, sessionID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/sessions/:id/analysis")
	c.SetParamNames("id")
	c.SetParamValues(sessionID.String())
	return c, rec
}

func TestGetAnalysis_NoAnalysisIsNotFound(t *testing.T) {
	t.Parallel()

	session := entities.NewExamSession(uuid.New())
	h := analysisTestHandler(session, &fakeAnalysisJobRepo{})

	c, rec := analysisRequest(echo.New(), session.ID)
	if err := h.GetAnalysis(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Code != "ANALYSIS_NOT_FOUND" {
		t.Fatalf("expected ANALYSIS_NOT_FOUND, got %q", body.Code)
	}
}

func TestGetAnalysis_PendingJobReportsStatus(t *testing.T) {
	t.Parallel()

	session := entities.NewExamSession(uuid.New())
	job := entities.NewAnalysisJob(session.ID, "http://storage/recording.mp3")
	h := analysisTestHandler(session, &fakeAnalysisJobRepo{latest: job})

	c, rec := analysisRequest(echo.New(), session.ID)
	if err := h.GetAnalysis(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data struct {
			Status entities.AnalysisJobStatus `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Data.Status != entities.AnalysisJobStatusPending {
		t.Fatalf("expected pending status, got %q", body.Data.Status)
	}
}
