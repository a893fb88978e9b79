package citegraph

import "strings"

// defaultSnippetLen is the approximate maximum character length for a snippet.
const defaultSnippetLen = 400

// extractSnippet returns a window of text centered near the first query
// term occurrence. The window starts 100 characters before the match so
// the term appears in context, with ellipses marking truncation.
func extractSnippet(text, query string, maxLen int) string {
	if text == "" {
		return ""
	}
	if maxLen <= 0 {
		maxLen = defaultSnippetLen
	}

	textLower := strings.ToLower(text)
	bestPos := 0
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) <= 2 {
			continue
		}
		if pos := strings.Index(textLower, w); pos != -1 {
			bestPos = pos - 100
			if bestPos < 0 {
				bestPos = 0
			}
			break
		}
	}

	end := bestPos + maxLen
	if end > len(text) {
		end = len(text)
	}
	snippet := text[bestPos:end]

	// Byte-offset slicing can cut a multi-byte rune at either edge.
	snippet = strings.ToValidUTF8(snippet, "")

	if bestPos > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet = snippet + "..."
	}
	return strings.TrimSpace(snippet)
}
