// Package extract turns court decision PDFs and plain text into normalized
// document text plus lightweight metadata (title, docket, language).
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Result holds extracted document text and best-effort metadata. Title,
// Docket, and Language are empty when the heuristics find nothing.
type Result struct {
	Text     string `json:"text"`
	Title    string `json:"title,omitempty"`
	Docket   string `json:"docket,omitempty"`
	Language string `json:"language,omitempty"`
	Hash     string `json:"hash"`
	Pages    int    `json:"pages,omitempty"`
}

// PDF extracts text from a PDF file page by page. Pages that fail to
// extract are skipped; the error is only returned when the file itself
// cannot be opened.
func PDF(ctx context.Context, path string) (*Result, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	var parts []string

	for i := 1; i <= totalPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}

	return FromText(strings.Join(parts, "\n\n"), totalPages), nil
}

// FromText normalizes already-extracted text and derives metadata from it.
func FromText(text string, pages int) *Result {
	text = NormalizeText(text)
	return &Result{
		Text:     text,
		Title:    GuessTitle(text),
		Docket:   GuessDocket(text),
		Language: GuessLanguage(text),
		Hash:     HashText(text),
		Pages:    pages,
	}
}

// NormalizeText collapses runs of horizontal whitespace and excess blank
// lines while keeping paragraph breaks.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = reHorizWS.ReplaceAllString(text, " ")
	text = reBlankRuns.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var (
	reHorizWS   = regexp.MustCompile(`[ \t\f\v]+`)
	reBlankRuns = regexp.MustCompile(`\n{3,}`)
)

// HashText returns the hex SHA-256 of the text, used for change detection
// on re-ingest.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// GuessTitle returns the first reasonably sized non-empty line.
func GuessTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 10 || len(line) > 200 {
			continue
		}
		return line
	}
	return ""
}

// Docket shapes seen across federal and cantonal registers. Tried in
// order from most to least specific.
var docketPatterns = []*regexp.Regexp{
	// Federal style: 1C_123/2024, 5A_100/2021
	regexp.MustCompile(`\b\d{1,2}[A-Z]_\d{1,4}/\d{4}\b`),
	// Cantonal dotted style: ST.2022.111, KG.2021.5-SK3
	regexp.MustCompile(`\b[A-Z]{1,3}\.?\d{4}\.\d{1,4}(?:-[A-Z]{1,4}\d?)?\b`),
	// Compact register codes: PS250322, AB12345
	regexp.MustCompile(`\b[A-Z]{2}\d{5,6}\b`),
}

// GuessDocket scans the first part of the document for a docket number.
func GuessDocket(text string) string {
	head := text
	if len(head) > 4000 {
		head = head[:4000]
	}
	for _, re := range docketPatterns {
		if m := re.FindString(head); m != "" {
			return m
		}
	}
	return ""
}

// Stopwords per language for the frequency vote in GuessLanguage. These
// are function words common in Swiss court decisions.
var langMarkers = map[string][]string{
	"de": {"der", "die", "das", "und", "nicht", "eine", "wird", "gemäss", "sowie"},
	"fr": {"le", "la", "les", "des", "une", "est", "dans", "pour", "selon"},
	"it": {"il", "della", "che", "una", "per", "sono", "nel", "secondo", "gli"},
}

// GuessLanguage votes on stopword frequency over the first few thousand
// characters. Returns "" when no language stands out.
func GuessLanguage(text string) string {
	sample := strings.ToLower(text)
	if len(sample) > 4000 {
		sample = sample[:4000]
	}
	words := strings.Fields(sample)
	if len(words) < 10 {
		return ""
	}

	counts := make(map[string]int, len(langMarkers))
	for _, w := range words {
		w = strings.Trim(w, ".,;:()'\"")
		for lang, markers := range langMarkers {
			for _, m := range markers {
				if w == m {
					counts[lang]++
				}
			}
		}
	}

	best, bestN := "", 0
	for lang, n := range counts {
		if n > bestN {
			best, bestN = lang, n
		}
	}
	if bestN < 3 {
		return ""
	}
	return best
}
