package entities

import "strings"

// NormalizeCode reduces a code entry to its bare ICD-10 code: the leading
// token, uppercased, with any " - description" suffix stripped.
// "k29.7 - Viêm dạ dày" and "K29.7" both normalize to "K29.7".
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if idx := strings.IndexAny(code, " -"); idx > 0 {
		code = code[:idx]
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeCodeSet normalizes every entry and removes duplicates while
// preserving first-seen order. Empty entries are dropped.
func NormalizeCodeSet(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	result := make([]string, 0, len(codes))
	for _, c := range codes {
		n := NormalizeCode(c)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		result = append(result, n)
	}
	return result
}
