package examination

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
	"github.com/johnquangdev/clinic-assistant/internal/usecase/knowledge"
)

// Sentinel markers for recoverable-but-visible stage failures. A clinician
// reviewing the note must be able to tell "generation failed" apart from
// "legitimately empty".
const (
	// ScribeFailureMarker lands in the plan field of an otherwise empty
	// note when SOAP generation fails.
	ScribeFailureMarker = "[Tạo bệnh án tự động thất bại - vui lòng nhập thủ công]"

	// CoderFailureCode is the single entry returned when code extraction
	// fails, as opposed to an empty set meaning "no codes needed".
	CoderFailureCode = "CODING_FAILED"
)

// PipelineResult is the full output of one clinical note pipeline run
type PipelineResult struct {
	Note       entities.StructuredNote
	Codes      []string
	Advice     string
	References []string
}

// Pipeline is the fixed three-stage note agent graph: Scribe turns the
// transcript into a SOAP note, then Coder and Advisor fan out concurrently
// from the Scribe output and join before the result is returned.
//
// Failure policy is asymmetric per stage: Scribe and Coder degrade to
// sentinel-marked output, the Advisor propagates. Advice without successful
// retrieval and generation has no safe degraded form, while a failed note or
// code set can still be completed by hand.
type Pipeline struct {
	llm       ChatCompleter
	retriever *knowledge.Retriever
	parser    *Parser
	logger    *zap.Logger
}

// NewPipeline creates the clinical note pipeline
func NewPipeline(llm ChatCompleter, retriever *knowledge.Retriever, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		llm:       llm,
		retriever: retriever,
		parser:    NewParser(),
		logger:    logger,
	}
}

// Run executes Scribe, then Coder and Advisor concurrently, and returns once
// both complete. The returned error is non-nil only for an Advisor failure
// or a cancelled context.
func (p *Pipeline) Run(ctx context.Context, transcript string) (*PipelineResult, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("transcript is empty")
	}

	note := p.runScribe(ctx, transcript)

	result := &PipelineResult{Note: note}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.Codes = p.runCoder(gctx, note)
		return nil
	})
	g.Go(func() error {
		advice, references, err := p.runAdvisor(gctx, note)
		if err != nil {
			return err
		}
		result.Advice = advice
		result.References = references
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("advisory stage failed: %w", err)
	}

	if p.logger != nil {
		p.logger.Info("✅ Clinical note pipeline completed",
			zap.Int("code_count", len(result.Codes)),
			zap.Int("reference_count", len(result.References)),
		)
	}
	return result, nil
}

// runScribe turns the raw transcript into a SOAP note. On any call or parse
// failure it returns an empty note with the plan field set to the failure
// marker so the caller sees the failure without the pipeline aborting.
func (p *Pipeline) runScribe(ctx context.Context, transcript string) entities.StructuredNote {
	prompt := fmt.Sprintf(`Bạn là thư ký y khoa. Từ hội thoại khám bệnh sau, tạo bệnh án SOAP.
Trả về duy nhất một JSON object với đúng 4 key:
{"subjective": "...", "objective": "...", "assessment": "...", "plan": "..."}
- subjective: triệu chứng, bệnh sử theo lời bệnh nhân
- objective: dấu hiệu khám được, sinh hiệu nếu có
- assessment: chẩn đoán
- plan: hướng điều trị, thuốc, hẹn tái khám
Key nào không có thông tin thì để chuỗi rỗng.

Hội thoại:
%s`, transcript)

	response, err := p.llm.CompleteChat(ctx, prompt, true)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("❌ Scribe call failed", zap.Error(err))
		}
		return entities.StructuredNote{Plan: ScribeFailureMarker}
	}

	note, err := p.parser.ParseSOAPResponse(response)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("❌ Scribe response unparseable", zap.Error(err))
		}
		return entities.StructuredNote{Plan: ScribeFailureMarker}
	}

	return note
}

// runCoder extracts ICD-10 codes from the assessment and subjective text.
// Failure yields the sentinel code, never an empty set.
func (p *Pipeline) runCoder(ctx context.Context, note entities.StructuredNote) []string {
	prompt := fmt.Sprintf(`Từ chẩn đoán và triệu chứng sau, liệt kê mã ICD-10 phù hợp.
Trả về duy nhất một JSON object dạng {"codes": ["K29.7 - Viêm dạ dày", ...]}.
Nếu không đủ thông tin để gán mã, trả về {"codes": []}.

Chẩn đoán: %s
Triệu chứng: %s`, note.Assessment, note.Subjective)

	response, err := p.llm.CompleteChat(ctx, prompt, true)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("❌ Coder call failed", zap.Error(err))
		}
		return []string{CoderFailureCode}
	}

	codes, err := p.parser.ParseCodesResponse(response)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("❌ Coder response unparseable", zap.Error(err))
		}
		return []string{CoderFailureCode}
	}

	return codes
}

// runAdvisor retrieves protocol context for the note and generates narrative
// advice in the note's language. Errors propagate to the orchestrator.
func (p *Pipeline) runAdvisor(ctx context.Context, note entities.StructuredNote) (string, []string, error) {
	chunks, err := p.retriever.Retrieve(ctx, note.Subjective)
	if err != nil {
		return "", nil, fmt.Errorf("failed to retrieve protocol context: %w", err)
	}

	lang := "tiếng Việt"
	if p.parser.DetectLanguage(note.Subjective+" "+note.Assessment) == "en" {
		lang = "English"
	}

	var contextBlock strings.Builder
	references := make([]string, 0, len(chunks))
	seen := make(map[string]bool)
	for _, chunk := range chunks {
		contextBlock.WriteString(fmt.Sprintf("--- Nguồn: %s ---\n%s\n\n", chunk.Source, chunk.Text))
		if !seen[chunk.Source] {
			seen[chunk.Source] = true
			references = append(references, chunk.Source)
		}
	}
	if contextBlock.Len() == 0 {
		contextBlock.WriteString("(không có tài liệu tham khảo)\n")
	}

	prompt := fmt.Sprintf(`Bạn là bác sĩ tư vấn. Dựa trên bệnh án và phác đồ tham khảo dưới đây,
đưa ra lời khuyên điều trị và theo dõi cho bác sĩ khám. Toàn bộ câu trả lời phải viết bằng %s,
bất kể ngôn ngữ của tài liệu tham khảo.

Bệnh án:
- Triệu chứng: %s
- Khám: %s
- Chẩn đoán: %s
- Hướng điều trị: %s

Phác đồ tham khảo:
%s`, lang, note.Subjective, note.Objective, note.Assessment, note.Plan, contextBlock.String())

	advice, err := p.llm.CompleteChat(ctx, prompt, false)
	if err != nil {
		return "", nil, fmt.Errorf("advisory generation failed: %w", err)
	}

	advice = strings.TrimSpace(advice)
	if advice == "" {
		return "", nil, fmt.Errorf("advisory generation returned empty response")
	}

	return advice, references, nil
}
