package docstore

import (
	"regexp"
	"strings"
)

// SnippetWindow is the approximate snippet length in characters, split
// evenly around the first match.
const SnippetWindow = 160

const ellipsis = "…"

var whitespaceRe = regexp.MustCompile(`\s+`)

// BuildSnippet returns a ~160-character window of body centered on the
// first case-insensitive occurrence of term, with an ellipsis on each
// clipped edge. A title-only match (term absent from body) yields the
// first 160 characters of the body, or the title when the body is
// empty.
func BuildSnippet(body, term, title string) string {
	normalized := strings.TrimSpace(whitespaceRe.ReplaceAllString(body, " "))
	if normalized == "" {
		return title
	}

	runes := []rune(normalized)
	idx := runeIndexFold(normalized, term)
	if idx < 0 {
		if len(runes) <= SnippetWindow {
			return normalized
		}
		return string(runes[:SnippetWindow]) + ellipsis
	}

	start := idx - SnippetWindow/2
	if start < 0 {
		start = 0
	}
	end := start + SnippetWindow
	if end > len(runes) {
		end = len(runes)
		if start = end - SnippetWindow; start < 0 {
			start = 0
		}
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = ellipsis + snippet
	}
	if end < len(runes) {
		snippet += ellipsis
	}
	return snippet
}

// runeIndexFold finds the rune index of the first case-insensitive
// occurrence of term in s, or -1.
func runeIndexFold(s, term string) int {
	if term == "" {
		return -1
	}
	byteIdx := strings.Index(strings.ToLower(s), strings.ToLower(term))
	if byteIdx < 0 {
		return -1
	}
	return len([]rune(s[:byteIdx]))
}
