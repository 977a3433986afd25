package examination

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// ChatCompleter is the LLM surface the examination agents depend on
type ChatCompleter interface {
	CompleteChat(ctx context.Context, prompt string, jsonMode bool) (string, error)
}

// Attributor assigns dialogue roles to transcript segments. A cheap
// heuristic pass sets defaults, then a single optional LLM call refines
// them. The stage is advisory only: every failure path returns the input
// segments with whatever roles they already carry.
type Attributor struct {
	llm    ChatCompleter
	parser *Parser
	logger *zap.Logger
}

// NewAttributor creates an attributor. Pass a nil ChatCompleter to skip the
// LLM refinement pass, which keeps the heuristic defaults.
func NewAttributor(llm ChatCompleter, logger *zap.Logger) *Attributor {
	return &Attributor{
		llm:    llm,
		parser: NewParser(),
		logger: logger,
	}
}

// Attribute assigns a role to every segment. The returned slice is a copy;
// the input is never mutated.
func (a *Attributor) Attribute(ctx context.Context, segments []entities.TranscriptSegment) []entities.TranscriptSegment {
	if len(segments) == 0 {
		return segments
	}

	out := make([]entities.TranscriptSegment, len(segments))
	copy(out, segments)

	for i := range out {
		if out[i].Role == "" || out[i].Role == entities.RoleUnlabeled {
			out[i].Role = heuristicRole(out[i].RawText)
		}
	}

	if a.llm == nil {
		return out
	}

	response, err := a.llm.CompleteChat(ctx, a.buildPrompt(out), false)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("⚠️ Role refinement call failed, keeping heuristic roles", zap.Error(err))
		}
		return out
	}

	assignments, err := a.parser.ParseRoleAssignments(response)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("⚠️ Role refinement response unusable, keeping heuristic roles", zap.Error(err))
		}
		return out
	}

	// Indices absent from the response keep their prior role
	for _, as := range assignments {
		if as.Index < 0 || as.Index >= len(out) {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(as.Role)) {
		case "clinician", "doctor", "bác sĩ", "bac si":
			out[as.Index].Role = entities.RoleClinician
		case "patient", "bệnh nhân", "benh nhan":
			out[as.Index].Role = entities.RolePatient
		}
	}

	return out
}

func (a *Attributor) buildPrompt(segments []entities.TranscriptSegment) string {
	var sb strings.Builder
	sb.WriteString("Đây là hội thoại khám bệnh giữa bác sĩ và bệnh nhân. ")
	sb.WriteString("Phân loại vai trò người nói cho từng câu:\n")
	sb.WriteString("- Câu tự giới thiệu bản thân, kể triệu chứng => patient\n")
	sb.WriteString("- Câu hỏi khám bệnh, chẩn đoán, kê đơn => clinician\n\n")
	for i, seg := range segments {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", i, seg.RawText))
	}
	sb.WriteString("\nTrả về duy nhất một JSON array dạng [{\"index\": 0, \"role\": \"clinician\"}, ...] cho tất cả các câu.")
	return sb.String()
}

// heuristicRole is the rule-based default before LLM refinement. Questions
// and prescription phrasing read as the clinician; self-description and
// symptom narration read as the patient.
func heuristicRole(text string) entities.SpeakerRole {
	lower := strings.ToLower(text)

	clinicianMarkers := []string{
		"anh bị", "chị bị", "em bị sao", "đau ở đâu", "bao lâu rồi",
		"có sốt không", "tiền sử", "kê đơn", "uống thuốc", "chẩn đoán",
		"tái khám", "xét nghiệm", "khám",
	}
	for _, m := range clinicianMarkers {
		if strings.Contains(lower, m) {
			return entities.RoleClinician
		}
	}

	patientMarkers := []string{
		"tôi bị", "tôi đau", "tôi thấy", "em bị", "tôi tên", "tôi là",
		"mấy ngày nay", "từ hôm qua",
	}
	for _, m := range patientMarkers {
		if strings.Contains(lower, m) {
			return entities.RolePatient
		}
	}

	if strings.Contains(text, "?") {
		return entities.RoleClinician
	}

	return entities.RoleUnlabeled
}
