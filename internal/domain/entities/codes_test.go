package entities

import (
	"reflect"
	"testing"
)

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare code", in: "K29.7", want: "K29.7"},
		{name: "lowercase", in: "k29.7", want: "K29.7"},
		{name: "code with description", in: "K29.7 - Viêm dạ dày", want: "K29.7"},
		{name: "code with dash no spaces", in: "I10-Essential hypertension", want: "I10"},
		{name: "surrounding whitespace", in: "  j06.9  ", want: "J06.9"},
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCode(tt.in); got != tt.want {
				t.Fatalf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeCodeSet(t *testing.T) {
	t.Parallel()

	got := NormalizeCodeSet([]string{
		"k29.7 - Viêm dạ dày",
		"K29.7",
		"",
		"  ",
		"i10 - Tăng huyết áp",
		"K29.7 - Gastritis",
	})
	want := []string{"K29.7", "I10"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeCodeSet = %v, want %v", got, want)
	}
}

func TestNormalizeCodeSet_Empty(t *testing.T) {
	t.Parallel()

	if got := NormalizeCodeSet(nil); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
}

func TestCanFinalize(t *testing.T) {
	t.Parallel()

	note := &ClinicalNote{Assessment: "Viêm dạ dày cấp", Codes: []string{"K29.7"}}
	if err := note.CanFinalize(); err != nil {
		t.Fatalf("expected finalizable note, got %v", err)
	}

	noDiagnosis := &ClinicalNote{Codes: []string{"K29.7"}}
	if err := noDiagnosis.CanFinalize(); err != ErrNoteMissingDiagnosis {
		t.Fatalf("expected ErrNoteMissingDiagnosis, got %v", err)
	}

	noCodes := &ClinicalNote{Assessment: "Viêm dạ dày cấp"}
	if err := noCodes.CanFinalize(); err != ErrNoteMissingCodes {
		t.Fatalf("expected ErrNoteMissingCodes, got %v", err)
	}
}
