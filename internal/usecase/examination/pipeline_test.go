package examination

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/johnquangdev/clinic-assistant/internal/usecase/knowledge"
	"github.com/johnquangdev/clinic-assistant/pkg/config"
)

// flatEmbedder returns the same unit vector for every text, which is enough
// to drive the retriever without a real embedding backend
type flatEmbedder struct{}

func (flatEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (flatEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func emptyRetriever(t *testing.T) *knowledge.Retriever {
	t.Helper()
	return knowledge.NewRetriever(flatEmbedder{}, &config.KnowledgeConfig{
		DocumentsDir: t.TempDir(),
		ChunkSize:    1000,
		ChunkOverlap: 200,
		TopK:         3,
	}, nil)
}

const soapResponse = `{"subjective": "Đau thượng vị 3 ngày", "objective": "Bụng mềm", "assessment": "Viêm dạ dày cấp", "plan": "PPI 4 tuần"}`

// scriptedLLM routes each stage prompt to its canned behavior
func scriptedLLM(scribe, coder, advisor func() (string, error)) *fakeLLM {
	return &fakeLLM{respond: func(prompt string, jsonMode bool) (string, error) {
		switch {
		case strings.Contains(prompt, "thư ký y khoa"):
			return scribe()
		case strings.Contains(prompt, "ICD-10"):
			return coder()
		case strings.Contains(prompt, "bác sĩ tư vấn"):
			return advisor()
		}
		return "", fmt.Errorf("unexpected prompt: %s", prompt)
	}}
}

func ok(s string) func() (string, error) {
	return func() (string, error) { return s, nil }
}

func fail(msg string) func() (string, error) {
	return func() (string, error) { return "", fmt.Errorf("%s", msg) }
}

func TestPipelineRun_Success(t *testing.T) {
	t.Parallel()

	llm := scriptedLLM(
		ok(soapResponse),
		ok(`{"codes": ["K29.7 - Viêm dạ dày"]}`),
		ok("Theo dõi triệu chứng, tái khám sau 2 tuần."),
	)
	p := NewPipeline(llm, emptyRetriever(t), nil)

	result, err := p.Run(context.Background(), "[00:05 Bệnh nhân]: Tôi bị đau bụng")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Note.Assessment != "Viêm dạ dày cấp" {
		t.Fatalf("unexpected assessment %q", result.Note.Assessment)
	}
	if len(result.Codes) != 1 || result.Codes[0] != "K29.7 - Viêm dạ dày" {
		t.Fatalf("unexpected codes %v", result.Codes)
	}
	if result.Advice == "" {
		t.Fatal("expected advice")
	}
	if len(result.References) != 0 {
		t.Fatalf("expected no references for empty corpus, got %v", result.References)
	}
	if llm.callCount() != 3 {
		t.Fatalf("expected 3 LLM calls, got %d", llm.callCount())
	}
}

func TestPipelineRun_EmptyTranscript(t *testing.T) {
	t.Parallel()

	p := NewPipeline(&fakeLLM{respond: func(string, bool) (string, error) {
		t.Fatal("no LLM call expected for empty transcript")
		return "", nil
	}}, emptyRetriever(t), nil)

	if _, err := p.Run(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty transcript")
	}
}

func TestPipelineRun_ScribeFailureYieldsMarker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scribe func() (string, error)
	}{
		{name: "call failure", scribe: fail("model down")},
		{name: "unparseable response", scribe: ok("xin lỗi, không tạo được")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := scriptedLLM(
				tt.scribe,
				ok(`{"codes": []}`),
				ok("Không đủ dữ liệu, đề nghị nhập bệnh án thủ công."),
			)
			p := NewPipeline(llm, emptyRetriever(t), nil)

			result, err := p.Run(context.Background(), "[00:05 Bệnh nhân]: Tôi bị đau bụng")
			if err != nil {
				t.Fatalf("scribe failure must not abort the pipeline: %v", err)
			}
			if result.Note.Plan != ScribeFailureMarker {
				t.Fatalf("expected failure marker in plan, got %q", result.Note.Plan)
			}
			if result.Note.Subjective != "" || result.Note.Assessment != "" {
				t.Fatal("failed scribe must leave other fields empty")
			}
		})
	}
}

func TestPipelineRun_CoderFailureYieldsSentinel(t *testing.T) {
	t.Parallel()

	llm := scriptedLLM(
		ok(soapResponse),
		fail("model down"),
		ok("Theo dõi triệu chứng."),
	)
	p := NewPipeline(llm, emptyRetriever(t), nil)

	result, err := p.Run(context.Background(), "[00:05 Bệnh nhân]: Tôi bị đau bụng")
	if err != nil {
		t.Fatalf("coder failure must not abort the pipeline: %v", err)
	}
	if len(result.Codes) != 1 || result.Codes[0] != CoderFailureCode {
		t.Fatalf("expected sentinel code, got %v", result.Codes)
	}
	if result.Advice == "" {
		t.Fatal("advisor output must survive a coder failure")
	}
}

func TestPipelineRun_CoderEmptySetIsNotFailure(t *testing.T) {
	t.Parallel()

	llm := scriptedLLM(
		ok(soapResponse),
		ok(`{"codes": []}`),
		ok("Theo dõi triệu chứng."),
	)
	p := NewPipeline(llm, emptyRetriever(t), nil)

	result, err := p.Run(context.Background(), "[00:05 Bệnh nhân]: Tôi bị đau bụng")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Codes) != 0 {
		t.Fatalf("expected empty code set, got %v", result.Codes)
	}
}

func TestPipelineRun_AdvisorFailurePropagates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		advisor func() (string, error)
	}{
		{name: "call failure", advisor: fail("model down")},
		{name: "empty advice", advisor: ok("   ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := scriptedLLM(
				ok(soapResponse),
				ok(`{"codes": ["K29.7"]}`),
				tt.advisor,
			)
			p := NewPipeline(llm, emptyRetriever(t), nil)

			if _, err := p.Run(context.Background(), "[00:05 Bệnh nhân]: Tôi bị đau bụng"); err == nil {
				t.Fatal("expected advisor failure to propagate")
			}
		})
	}
}

func TestPipelineRun_ReferencesFromCorpus(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := "Phác đồ điều trị viêm dạ dày: PPI liều chuẩn trong 4 tuần."
	if err := os.WriteFile(filepath.Join(dir, "viem-da-day.md"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	var advisorPrompt string
	llm := &fakeLLM{respond: func(prompt string, jsonMode bool) (string, error) {
		switch {
		case strings.Contains(prompt, "thư ký y khoa"):
			return soapResponse, nil
		case strings.Contains(prompt, "ICD-10"):
			return `{"codes": ["K29.7"]}`, nil
		case strings.Contains(prompt, "bác sĩ tư vấn"):
			advisorPrompt = prompt
			return "Dùng PPI theo phác đồ.", nil
		}
		return "", fmt.Errorf("unexpected prompt")
	}}

	retriever := knowledge.NewRetriever(flatEmbedder{}, &config.KnowledgeConfig{
		DocumentsDir: dir,
		ChunkSize:    1000,
		ChunkOverlap: 200,
		TopK:         3,
	}, nil)
	p := NewPipeline(llm, retriever, nil)

	result, err := p.Run(context.Background(), "[00:05 Bệnh nhân]: Tôi bị đau bụng")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.References) != 1 || result.References[0] != "viem-da-day.md" {
		t.Fatalf("expected the document as reference, got %v", result.References)
	}
	if !strings.Contains(advisorPrompt, "PPI liều chuẩn") {
		t.Fatal("retrieved chunk text must reach the advisor prompt")
	}
}
