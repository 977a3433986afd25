package examination

import (
	"reflect"
	"testing"
)

func TestParseSOAPResponse(t *testing.T) {
	t.Parallel()

	p := NewParser()

	tests := []struct {
		name     string
		response string
		wantErr  bool
	}{
		{
			name:     "plain JSON",
			response: `{"subjective": "đau bụng", "objective": "", "assessment": "viêm dạ dày", "plan": "PPI"}`,
		},
		{
			name:     "markdown fenced",
			response: "```json\n{\"subjective\": \"đau bụng\", \"assessment\": \"viêm dạ dày\"}\n```",
		},
		{
			name:     "bare fence",
			response: "```\n{\"plan\": \"tái khám sau 1 tuần\"}\n```",
		},
		{
			name:     "all fields empty",
			response: `{"subjective": "", "objective": "", "assessment": "", "plan": ""}`,
			wantErr:  true,
		},
		{
			name:     "not JSON",
			response: "Xin lỗi, tôi không thể tạo bệnh án.",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note, err := p.ParseSOAPResponse(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got note %+v", note)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if note.IsEmpty() {
				t.Fatal("expected non-empty note")
			}
		})
	}
}

func TestParseCodesResponse(t *testing.T) {
	t.Parallel()

	p := NewParser()

	tests := []struct {
		name     string
		response string
		want     []string
		wantErr  bool
	}{
		{
			name:     "codes wrapper",
			response: `{"codes": ["K29.7 - Viêm dạ dày", "R10.1"]}`,
			want:     []string{"K29.7 - Viêm dạ dày", "R10.1"},
		},
		{
			name:     "icd_codes wrapper",
			response: `{"icd_codes": ["I10"]}`,
			want:     []string{"I10"},
		},
		{
			name:     "bare array",
			response: `["K29.7"]`,
			want:     []string{"K29.7"},
		},
		{
			name:     "array embedded in prose",
			response: `Các mã phù hợp là ["K29.7", "R10.1"] dựa trên chẩn đoán.`,
			want:     []string{"K29.7", "R10.1"},
		},
		{
			name:     "fenced wrapper",
			response: "```json\n{\"codes\": [\"J06.9\"]}\n```",
			want:     []string{"J06.9"},
		},
		{
			name:     "no codes anywhere",
			response: "Không đủ thông tin.",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseCodesResponse(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRoleAssignments(t *testing.T) {
	t.Parallel()

	p := NewParser()

	got, err := p.ParseRoleAssignments(`Kết quả: [{"index": 0, "role": "clinician"}, {"index": 1, "role": "patient"}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(got))
	}
	if got[0].Index != 0 || got[0].Role != "clinician" {
		t.Fatalf("unexpected first assignment %+v", got[0])
	}
	if got[1].Index != 1 || got[1].Role != "patient" {
		t.Fatalf("unexpected second assignment %+v", got[1])
	}

	if _, err := p.ParseRoleAssignments("no array here"); err == nil {
		t.Fatal("expected error for response without an array")
	}
}

func TestFirstJSONArray(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare array", in: `[1, 2, 3]`, want: `[1, 2, 3]`},
		{name: "embedded", in: `prefix ["a"] suffix`, want: `["a"]`},
		{name: "nested arrays", in: `[[1], [2]]`, want: `[[1], [2]]`},
		{name: "bracket inside string", in: `["a]b", "c"]`, want: `["a]b", "c"]`},
		{name: "escaped quote inside string", in: `["a\"]", "b"]`, want: `["a\"]", "b"]`},
		{name: "unbalanced", in: `[1, 2`, want: ""},
		{name: "no array", in: `{"a": 1}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstJSONArray(tt.in); got != tt.want {
				t.Fatalf("firstJSONArray(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	p := NewParser()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "empty defaults to vi", text: "", want: "vi"},
		{name: "vietnamese with diacritics", text: "Bệnh nhân đau thượng vị ba ngày, không sốt", want: "vi"},
		{name: "vietnamese without diacritics", text: "toi bi dau bung may ngay nay roi khong an duoc", want: "vi"},
		{name: "english", text: "Patient reports epigastric pain for three days without fever", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.DetectLanguage(tt.text); got != tt.want {
				t.Fatalf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a": 1}`, want: `{"a": 1}`},
		{name: "json fence", in: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "bare fence", in: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "whitespace", in: "  {\"a\": 1}  ", want: `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Fatalf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
