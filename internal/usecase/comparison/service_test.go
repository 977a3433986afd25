package comparison

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// fakeEmbedder returns canned vectors per text, with a default for anything
// unknown. Setting failAll simulates a provider outage.
type fakeEmbedder struct {
	vectors map[string][]float32
	failAll bool
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failAll {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failAll {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = []float32{1, 0, 0}
		}
	}
	return out, nil
}

func TestCompare_IdenticalNotes(t *testing.T) {
	t.Parallel()

	// Identical text must short-circuit to 100 without touching the backend
	embedder := &fakeEmbedder{failAll: true}
	svc := NewService(embedder, nil)

	note := entities.StructuredNote{
		Subjective: "Đau thượng vị 3 ngày",
		Objective:  "Bụng mềm, ấn đau thượng vị",
		Assessment: "Viêm dạ dày cấp",
		Plan:       "PPI 4 tuần, kiêng rượu bia",
	}
	codes := []string{"K29.7"}

	result, err := svc.Compare(context.Background(), note, note, codes, codes)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.MatchScore != 100 {
		t.Fatalf("expected match score 100, got %d", result.MatchScore)
	}
	for field, score := range result.FieldScores {
		if score != 100 {
			t.Fatalf("expected %s score 100, got %d", field, score)
		}
	}
	if embedder.calls != 0 {
		t.Fatalf("expected no embedding calls for identical text, got %d", embedder.calls)
	}
	if len(result.DifferenceNotes) != 0 {
		t.Fatalf("expected no difference notes, got %v", result.DifferenceNotes)
	}
}

func TestCompare_EmptyNotes(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeEmbedder{}, nil)

	result, err := svc.Compare(context.Background(), entities.StructuredNote{}, entities.StructuredNote{}, nil, nil)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	for field, score := range result.FieldScores {
		if score != 0 {
			t.Fatalf("expected %s score 0 for empty fields, got %d", field, score)
		}
	}
	// Neither side assigned codes, so the code dimension vacuously agrees
	if result.CodeOverlap.Score != 100 {
		t.Fatalf("expected code score 100 for empty code sets, got %d", result.CodeOverlap.Score)
	}
	// 0.30*0 + 0.30*0 + 0.30*100 + 0.10*0 = 30
	if result.MatchScore != 30 {
		t.Fatalf("expected match score 30, got %d", result.MatchScore)
	}
}

func TestCompare_OneSideEmptyField(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeEmbedder{}, nil)

	ai := entities.StructuredNote{Assessment: "Viêm dạ dày cấp"}
	doctor := entities.StructuredNote{}

	result, err := svc.Compare(context.Background(), ai, doctor, nil, nil)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.FieldScores["assessment"] != 0 {
		t.Fatalf("expected assessment score 0 when one side is empty, got %d", result.FieldScores["assessment"])
	}
}

func TestCompare_EmbeddingSimilarity(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"Viêm dạ dày cấp":    {1, 0, 0},
		"Viêm dạ dày HP (+)": {1, 0, 0},
		"Tăng huyết áp":      {0, 1, 0},
	}}
	svc := NewService(embedder, nil)

	// Parallel vectors score 100
	ai := entities.StructuredNote{Assessment: "Viêm dạ dày cấp"}
	doctor := entities.StructuredNote{Assessment: "Viêm dạ dày HP (+)"}
	result, err := svc.Compare(context.Background(), ai, doctor, nil, nil)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.FieldScores["assessment"] != 100 {
		t.Fatalf("expected assessment score 100 for parallel vectors, got %d", result.FieldScores["assessment"])
	}

	// Orthogonal vectors score 0 and trigger a difference note
	doctor.Assessment = "Tăng huyết áp"
	result, err = svc.Compare(context.Background(), ai, doctor, nil, nil)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.FieldScores["assessment"] != 0 {
		t.Fatalf("expected assessment score 0 for orthogonal vectors, got %d", result.FieldScores["assessment"])
	}
	found := false
	for _, note := range result.DifferenceNotes {
		if strings.Contains(note, "Assessment differs") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an assessment difference note, got %v", result.DifferenceNotes)
	}
}

func TestCompare_ZeroMagnitudeVectors(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"text a": {0, 0, 0},
		"text b": {0, 0, 0},
	}}
	svc := NewService(embedder, nil)

	ai := entities.StructuredNote{Plan: "text a"}
	doctor := entities.StructuredNote{Plan: "text b"}
	result, err := svc.Compare(context.Background(), ai, doctor, nil, nil)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.FieldScores["plan"] != 0 {
		t.Fatalf("expected plan score 0 for zero-magnitude vectors, got %d", result.FieldScores["plan"])
	}
}

func TestCompare_EmbedderFailure(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeEmbedder{failAll: true}, nil)

	ai := entities.StructuredNote{Assessment: "Viêm dạ dày cấp"}
	doctor := entities.StructuredNote{Assessment: "Viêm dạ dày HP (+)"}
	if _, err := svc.Compare(context.Background(), ai, doctor, nil, nil); err == nil {
		t.Fatal("expected error when embedding backend fails")
	}
}

func TestCompareCodes_NormalizedMatch(t *testing.T) {
	t.Parallel()

	// "K29.7" and "K29.7 - Gastritis" are the same code after normalization
	overlap, score := compareCodes([]string{"K29.7"}, []string{"K29.7 - Gastritis"})
	if score != 100 {
		t.Fatalf("expected score 100, got %f", score)
	}
	if len(overlap.ExactMatches) != 1 || overlap.ExactMatches[0] != "K29.7" {
		t.Fatalf("expected exact match K29.7, got %v", overlap.ExactMatches)
	}
	if len(overlap.AIOnlyCodes) != 0 || len(overlap.DoctorOnlyCodes) != 0 {
		t.Fatalf("expected no one-sided codes, got ai=%v doctor=%v", overlap.AIOnlyCodes, overlap.DoctorOnlyCodes)
	}
}

func TestCompareCodes_Disjoint(t *testing.T) {
	t.Parallel()

	overlap, score := compareCodes([]string{"K29.7"}, []string{"I10"})
	if score != 0 {
		t.Fatalf("expected score 0, got %f", score)
	}
	if len(overlap.AIOnlyCodes) != 1 || overlap.AIOnlyCodes[0] != "K29.7" {
		t.Fatalf("expected AI-only K29.7, got %v", overlap.AIOnlyCodes)
	}
	if len(overlap.DoctorOnlyCodes) != 1 || overlap.DoctorOnlyCodes[0] != "I10" {
		t.Fatalf("expected doctor-only I10, got %v", overlap.DoctorOnlyCodes)
	}
}

func TestCompareCodes_PartialOverlap(t *testing.T) {
	t.Parallel()

	// Jaccard: 1 shared of 3 in the union
	_, score := compareCodes([]string{"K29.7", "R10.1"}, []string{"K29.7", "I10"})
	want := 100.0 / 3.0
	if score < want-0.001 || score > want+0.001 {
		t.Fatalf("expected score %f, got %f", want, score)
	}
}

func TestCompare_DisjointCodeNotes(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeEmbedder{}, nil)

	note := entities.StructuredNote{Assessment: "Viêm dạ dày cấp", Plan: "PPI 4 tuần"}
	result, err := svc.Compare(context.Background(), note, note, []string{"K29.7"}, []string{"I10"})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	var aiOnly, doctorOnly bool
	for _, n := range result.DifferenceNotes {
		if strings.Contains(n, "K29.7 suggested by AI only") {
			aiOnly = true
		}
		if strings.Contains(n, "I10 assigned by doctor only") {
			doctorOnly = true
		}
	}
	if !aiOnly || !doctorOnly {
		t.Fatalf("expected both one-sided code notes, got %v", result.DifferenceNotes)
	}
}

func TestCompare_ScoreBounds(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeEmbedder{}, nil)

	cases := []struct {
		ai, doctor           entities.StructuredNote
		aiCodes, doctorCodes []string
	}{
		{},
		{ai: entities.StructuredNote{Subjective: "a"}, doctor: entities.StructuredNote{Subjective: "a"}},
		{aiCodes: []string{"K29.7"}, doctorCodes: []string{"I10", "E11.9"}},
	}
	for _, c := range cases {
		result, err := svc.Compare(context.Background(), c.ai, c.doctor, c.aiCodes, c.doctorCodes)
		if err != nil {
			t.Fatalf("Compare failed: %v", err)
		}
		if result.MatchScore < 0 || result.MatchScore > 100 {
			t.Fatalf("match score %d out of range", result.MatchScore)
		}
		for field, score := range result.FieldScores {
			if score < 0 || score > 100 {
				t.Fatalf("%s score %d out of range", field, score)
			}
		}
	}
}

func TestRoundScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want int
	}{
		{in: -5, want: 0},
		{in: 0, want: 0},
		{in: 49.5, want: 50},
		{in: 49.4, want: 49},
		{in: 100, want: 100},
		{in: 105, want: 100},
	}
	for _, tt := range tests {
		if got := roundScore(tt.in); got != tt.want {
			t.Fatalf("roundScore(%f) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
