package examination

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// Normalizer corrects domain-specific mis-transcriptions segment by segment
// with a constrained LLM rewrite. Segments run strictly in sequence with a
// small delay between calls to stay under the provider's rate limit. Any
// per-segment failure keeps that segment's raw text; no failure crosses
// segment boundaries.
type Normalizer struct {
	llm    ChatCompleter
	delay  time.Duration
	logger *zap.Logger
}

// NewNormalizer creates a normalizer. A nil ChatCompleter copies raw text
// through unchanged.
func NewNormalizer(llm ChatCompleter, delay time.Duration, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		llm:    llm,
		delay:  delay,
		logger: logger,
	}
}

// Normalize fills CleanText on every segment. The returned slice is a copy;
// the input is never mutated.
func (n *Normalizer) Normalize(ctx context.Context, segments []entities.TranscriptSegment) []entities.TranscriptSegment {
	out := make([]entities.TranscriptSegment, len(segments))
	copy(out, segments)

	for i := range out {
		out[i].CleanText = out[i].RawText

		if n.llm == nil || strings.TrimSpace(out[i].RawText) == "" {
			continue
		}

		if i > 0 && n.delay > 0 {
			select {
			case <-ctx.Done():
				// Remaining segments keep raw text
				return out
			case <-time.After(n.delay):
			}
		}

		corrected, err := n.correctSegment(ctx, out[i].RawText)
		if err != nil {
			if n.logger != nil {
				n.logger.Warn("⚠️ Segment correction failed, keeping raw text",
					zap.Int("segment", i),
					zap.Error(err),
				)
			}
			continue
		}
		out[i].CleanText = corrected
	}

	return out
}

func (n *Normalizer) correctSegment(ctx context.Context, raw string) (string, error) {
	prompt := fmt.Sprintf(`Sửa lỗi nhận dạng giọng nói trong câu hội thoại khám bệnh sau.
Chỉ sửa từ y khoa bị nhận dạng sai (ví dụ: "da dày" -> "dạ dày", "viêm họng hạch" -> "viêm họng hạt").
KHÔNG tóm tắt, KHÔNG thêm nội dung, KHÔNG bỏ nội dung, giữ nguyên độ dài và ý nghĩa.
Trả về duy nhất câu đã sửa, không giải thích.

Câu: %s`, raw)

	response, err := n.llm.CompleteChat(ctx, prompt, false)
	if err != nil {
		return "", err
	}

	corrected := strings.TrimSpace(response)
	if corrected == "" {
		return "", fmt.Errorf("empty correction response")
	}

	// A rewrite that balloons or collapses the text broke the contract,
	// keep the original in that case
	if len(corrected) > 3*len(raw) || len(corrected) < len(raw)/3 {
		return "", fmt.Errorf("correction diverged too far from input")
	}

	return corrected, nil
}
