package comparison

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
	pkgai "github.com/johnquangdev/clinic-assistant/pkg/ai"
)

// Service scores an AI-generated note and code set against the clinician's
// own. Field scores come from embedding similarity; code agreement is Jaccard
// over normalized codes. All scoring is deterministic given the embeddings.
type Service struct {
	embedder pkgai.Embedder
	logger   *zap.Logger
}

// NewService creates a comparison service
func NewService(embedder pkgai.Embedder, logger *zap.Logger) *Service {
	return &Service{embedder: embedder, logger: logger}
}

// Result is the computed comparison before persistence
type Result struct {
	MatchScore      int
	FieldScores     map[string]int
	CodeOverlap     entities.CodeOverlap
	DifferenceNotes []string
}

// Weighting: diagnosis and treatment plan dominate clinical correctness,
// narrative history-taking carries the remainder.
const (
	weightAssessment = 0.30
	weightPlan       = 0.30
	weightCodes      = 0.30
	weightNarrative  = 0.10

	differenceThreshold = 80
)

// Compare scores the AI note/codes against the doctor note/codes. Rounding
// to integers happens only at the boundary; intermediate math stays in
// floating point.
func (s *Service) Compare(ctx context.Context, aiNote, doctorNote entities.StructuredNote, aiCodes, doctorCodes []string) (*Result, error) {
	fields := map[string][2]string{
		"subjective": {aiNote.Subjective, doctorNote.Subjective},
		"objective":  {aiNote.Objective, doctorNote.Objective},
		"assessment": {aiNote.Assessment, doctorNote.Assessment},
		"plan":       {aiNote.Plan, doctorNote.Plan},
	}

	rawScores := make(map[string]float64, len(fields))
	for name, pair := range fields {
		score, err := s.fieldSimilarity(ctx, pair[0], pair[1])
		if err != nil {
			return nil, fmt.Errorf("failed to score %s field: %w", name, err)
		}
		rawScores[name] = score
	}

	overlap, codeScore := compareCodes(aiCodes, doctorCodes)

	matchScore := rawScores["assessment"]*weightAssessment +
		rawScores["plan"]*weightPlan +
		codeScore*weightCodes +
		(rawScores["subjective"]+rawScores["objective"])/2*weightNarrative

	fieldScores := make(map[string]int, len(rawScores))
	for name, score := range rawScores {
		fieldScores[name] = roundScore(score)
	}
	overlap.Score = roundScore(codeScore)

	result := &Result{
		MatchScore:  roundScore(matchScore),
		FieldScores: fieldScores,
		CodeOverlap: overlap,
	}
	result.DifferenceNotes = buildDifferenceNotes(fieldScores, overlap)

	if s.logger != nil {
		s.logger.Info("✅ Notes compared",
			zap.Int("match_score", result.MatchScore),
			zap.Int("code_score", overlap.Score),
		)
	}
	return result, nil
}

// fieldSimilarity maps a pair of field texts to [0,100]. Identical strings
// score 100 and empty strings score 0 without touching the embedding
// backend.
func (s *Service) fieldSimilarity(ctx context.Context, aiText, doctorText string) (float64, error) {
	if aiText == doctorText {
		if aiText == "" {
			return 0, nil
		}
		return 100, nil
	}
	if aiText == "" || doctorText == "" {
		return 0, nil
	}

	vectors, err := s.embedder.EmbedBatch(ctx, []string{aiText, doctorText})
	if err != nil {
		return 0, err
	}
	if len(vectors) != 2 {
		return 0, fmt.Errorf("expected 2 embeddings, got %d", len(vectors))
	}

	sim := cosineSimilarity(vectors[0], vectors[1])
	if sim < 0 {
		sim = 0
	}
	return sim * 100, nil
}

// compareCodes normalizes both code lists and computes Jaccard agreement.
// An empty union counts as full agreement: neither side assigned codes, so
// they vacuously agree.
func compareCodes(aiCodes, doctorCodes []string) (entities.CodeOverlap, float64) {
	ai := entities.NormalizeCodeSet(aiCodes)
	doctor := entities.NormalizeCodeSet(doctorCodes)

	doctorSet := make(map[string]bool, len(doctor))
	for _, code := range doctor {
		doctorSet[code] = true
	}
	aiSet := make(map[string]bool, len(ai))
	for _, code := range ai {
		aiSet[code] = true
	}

	overlap := entities.CodeOverlap{
		ExactMatches:    []string{},
		AIOnlyCodes:     []string{},
		DoctorOnlyCodes: []string{},
	}
	for _, code := range ai {
		if doctorSet[code] {
			overlap.ExactMatches = append(overlap.ExactMatches, code)
		} else {
			overlap.AIOnlyCodes = append(overlap.AIOnlyCodes, code)
		}
	}
	for _, code := range doctor {
		if !aiSet[code] {
			overlap.DoctorOnlyCodes = append(overlap.DoctorOnlyCodes, code)
		}
	}

	union := len(overlap.ExactMatches) + len(overlap.AIOnlyCodes) + len(overlap.DoctorOnlyCodes)
	if union == 0 {
		return overlap, 100
	}
	return overlap, float64(len(overlap.ExactMatches)) / float64(union) * 100
}

// buildDifferenceNotes produces the deterministic review checklist. Rule
// based on purpose: reviewers need the same notes for the same inputs.
func buildDifferenceNotes(fieldScores map[string]int, overlap entities.CodeOverlap) []string {
	var notes []string
	if fieldScores["assessment"] < differenceThreshold {
		notes = append(notes, fmt.Sprintf("Assessment differs from the doctor's diagnosis (similarity %d%%)", fieldScores["assessment"]))
	}
	if fieldScores["plan"] < differenceThreshold {
		notes = append(notes, fmt.Sprintf("Treatment plan differs from the doctor's plan (similarity %d%%)", fieldScores["plan"]))
	}
	for _, code := range overlap.AIOnlyCodes {
		notes = append(notes, fmt.Sprintf("Code %s suggested by AI only", code))
	}
	for _, code := range overlap.DoctorOnlyCodes {
		notes = append(notes, fmt.Sprintf("Code %s assigned by doctor only", code))
	}
	return notes
}

func roundScore(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	// Zero-magnitude vectors carry no direction to compare
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
