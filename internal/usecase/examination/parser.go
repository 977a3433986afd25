package examination

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/johnquangdev/clinic-assistant/internal/domain/entities"
)

// Parser handles parsing and validation of LLM responses
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseSOAPResponse parses a strict-JSON SOAP note from the model response.
// The model might wrap the JSON in markdown code blocks.
func (p *Parser) ParseSOAPResponse(response string) (entities.StructuredNote, error) {
	cleaned := extractJSON(response)

	var note entities.StructuredNote
	if err := json.Unmarshal([]byte(cleaned), &note); err != nil {
		return entities.StructuredNote{}, fmt.Errorf("failed to parse SOAP response: %w", err)
	}

	if note.IsEmpty() {
		return entities.StructuredNote{}, fmt.Errorf("SOAP response has no content")
	}

	return note, nil
}

// ParseCodesResponse extracts ICD-10 codes from the model response. The
// expected shape is {"codes": [...]} but models drift: tolerate an
// "icd_codes" key or a bare JSON array as fallbacks.
func (p *Parser) ParseCodesResponse(response string) ([]string, error) {
	cleaned := extractJSON(response)

	var wrapper struct {
		Codes    []string `json:"codes"`
		ICDCodes []string `json:"icd_codes"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapper); err == nil {
		if len(wrapper.Codes) > 0 {
			return wrapper.Codes, nil
		}
		if len(wrapper.ICDCodes) > 0 {
			return wrapper.ICDCodes, nil
		}
	}

	var bare []string
	if err := json.Unmarshal([]byte(cleaned), &bare); err == nil {
		return bare, nil
	}

	// Last resort: the array may be embedded in surrounding prose
	if arr := firstJSONArray(cleaned); arr != "" {
		if err := json.Unmarshal([]byte(arr), &bare); err == nil {
			return bare, nil
		}
	}

	return nil, fmt.Errorf("no codes found in response")
}

// roleAssignment is one entry of the attributor model response
type roleAssignment struct {
	Index int    `json:"index"`
	Role  string `json:"role"`
}

// ParseRoleAssignments locates the first well-formed JSON array in the
// response and decodes {index, role} pairs from it
func (p *Parser) ParseRoleAssignments(response string) ([]roleAssignment, error) {
	arr := firstJSONArray(extractJSON(response))
	if arr == "" {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var assignments []roleAssignment
	if err := json.Unmarshal([]byte(arr), &assignments); err != nil {
		return nil, fmt.Errorf("failed to parse role assignments: %w", err)
	}
	return assignments, nil
}

// DetectLanguage guesses the primary language of a clinical text. The
// advisor prompt uses this to force its output into the note's language.
func (p *Parser) DetectLanguage(text string) string {
	if text == "" {
		return "vi"
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return "vi"
	}

	// Sample first 500 words for performance
	sampleSize := 500
	if len(words) > sampleSize {
		words = words[:sampleSize]
	}

	vnWords := 0
	for _, word := range words {
		if isVietnameseWord(word) {
			vnWords++
		}
	}

	if float64(vnWords)/float64(len(words)) > 0.15 {
		return "vi"
	}
	return "en"
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}

// firstJSONArray returns the first balanced top-level JSON array substring,
// or "" when none exists. String literals are skipped so brackets inside
// quoted text do not break the balance count.
func firstJSONArray(content string) string {
	start := strings.Index(content, "[")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}
	return ""
}

// isVietnameseWord checks if a word contains Vietnamese diacritics
func isVietnameseWord(word string) bool {
	vnChars := "àáảãạăằắẳẵặâầấẩẫậèéẻẽẹêềếểễệìíỉĩịòóỏõọôồốổỗộơờớởỡợùúủũụưừứửữựỳýỷỹỵđĐ"
	word = strings.ToLower(word)

	for _, char := range word {
		if strings.ContainsRune(vnChars, char) {
			return true
		}
	}

	// Common Vietnamese words without diacritics
	commonVN := []string{
		"toi", "ban", "cua", "cho", "nay", "khi", "co", "khong", "voi", "la",
		"nhu", "hay", "can", "phai", "rat", "roi", "thi", "se", "duoc", "tu",
	}

	for _, vn := range commonVN {
		if word == vn {
			return true
		}
	}

	return false
}
