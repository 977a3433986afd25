package examination

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// fakeLLM scripts CompleteChat responses for the agent tests. The respond
// function receives the full prompt so tests can branch per stage. Callers
// may invoke it concurrently, matching the pipeline fan-out.
type fakeLLM struct {
	respond func(prompt string, jsonMode bool) (string, error)

	mu    sync.Mutex
	calls int
}

func (f *fakeLLM) CompleteChat(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.respond(prompt, jsonMode)
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func segmentsFixture() []entities.TranscriptSegment {
	return []entities.TranscriptSegment{
		{Start: 0, End: 4, RawText: "Chào anh, anh bị sao?"},
		{Start: 4, End: 10, RawText: "Tôi bị đau bụng mấy ngày nay"},
		{Start: 10, End: 15, RawText: "Để tôi xem nào"},
	}
}

func TestHeuristicRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want entities.SpeakerRole
	}{
		{text: "Anh bị sao, đau ở đâu?", want: entities.RoleClinician},
		{text: "Tôi kê đơn thuốc cho anh", want: entities.RoleClinician},
		{text: "Tôi bị đau bụng từ hôm qua", want: entities.RolePatient},
		{text: "Tôi tên Nam", want: entities.RolePatient},
		{text: "Có sốt không?", want: entities.RoleClinician},
		{text: "Vâng ạ", want: entities.RoleUnlabeled},
	}
	for _, tt := range tests {
		if got := heuristicRole(tt.text); got != tt.want {
			t.Fatalf("heuristicRole(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestAttribute_NilLLMUsesHeuristics(t *testing.T) {
	t.Parallel()

	a := NewAttributor(nil, nil)
	got := a.Attribute(context.Background(), segmentsFixture())

	if got[0].Role != entities.RoleClinician {
		t.Fatalf("expected clinician for question, got %q", got[0].Role)
	}
	if got[1].Role != entities.RolePatient {
		t.Fatalf("expected patient for symptom narration, got %q", got[1].Role)
	}
	if got[2].Role != entities.RoleUnlabeled {
		t.Fatalf("expected unlabeled, got %q", got[2].Role)
	}
}

func TestAttribute_LLMRefinement(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{respond: func(prompt string, jsonMode bool) (string, error) {
		// Refine the unlabeled third segment, with one out-of-range index
		// that must be ignored
		return `[{"index": 2, "role": "bác sĩ"}, {"index": 99, "role": "patient"}]`, nil
	}}
	a := NewAttributor(llm, nil)

	got := a.Attribute(context.Background(), segmentsFixture())
	if got[2].Role != entities.RoleClinician {
		t.Fatalf("expected refined clinician role, got %q", got[2].Role)
	}
	if got[0].Role != entities.RoleClinician || got[1].Role != entities.RolePatient {
		t.Fatal("heuristic roles for segments absent from the response must be kept")
	}
	if llm.callCount() != 1 {
		t.Fatalf("expected 1 refinement call, got %d", llm.callCount())
	}
}

func TestAttribute_LLMFailureKeepsHeuristics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		respond func(prompt string, jsonMode bool) (string, error)
	}{
		{
			name: "call error",
			respond: func(prompt string, jsonMode bool) (string, error) {
				return "", fmt.Errorf("rate limited")
			},
		},
		{
			name: "unparseable response",
			respond: func(prompt string, jsonMode bool) (string, error) {
				return "tôi không chắc", nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAttributor(&fakeLLM{respond: tt.respond}, nil)
			got := a.Attribute(context.Background(), segmentsFixture())
			if got[0].Role != entities.RoleClinician || got[1].Role != entities.RolePatient {
				t.Fatalf("expected heuristic roles to survive failure, got %q/%q", got[0].Role, got[1].Role)
			}
			if len(got) != 3 {
				t.Fatalf("expected all segments back, got %d", len(got))
			}
		})
	}
}

func TestAttribute_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	input := segmentsFixture()
	a := NewAttributor(nil, nil)
	a.Attribute(context.Background(), input)

	for i, seg := range input {
		if seg.Role != "" {
			t.Fatalf("input segment %d mutated: role %q", i, seg.Role)
		}
	}
}

func TestAttribute_EmptyInput(t *testing.T) {
	t.Parallel()

	a := NewAttributor(&fakeLLM{respond: func(string, bool) (string, error) {
		t.Fatal("no LLM call expected for empty input")
		return "", nil
	}}, nil)
	if got := a.Attribute(context.Background(), nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
