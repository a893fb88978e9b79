// Package cite recognizes Swiss legal citations in free-form decision text.
//
// Three pattern families are supported: neutral references to published
// federal supreme court decisions (BGE/ATF/DTF collections), federal docket
// numbers, and statutory article references. Extraction is best-effort and
// never fails: text with no recognizable citations yields an empty result.
package cite

import (
	"regexp"
	"sort"
	"strings"
)

// Kind classifies a citation match.
type Kind string

const (
	// KindNeutral is a reference to a published federal decision via
	// collection marker + volume + part + page (e.g. "BGE 144 III 93").
	KindNeutral Kind = "neutral_reference"

	// KindDocket is a court-assigned case identifier
	// (e.g. "1C_123/2024").
	KindDocket Kind = "docket_number"

	// KindArticle is a statutory article reference
	// (e.g. "Art. 41 OR").
	KindArticle Kind = "statutory_article"
)

// Match is a single recognized citation within a source text.
// Start and End are byte offsets into the source; End is exclusive.
type Match struct {
	Text       string `json:"text"`
	Kind       Kind   `json:"kind"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Normalized string `json:"normalized,omitempty"`
}

// ---------------------------------------------------------------------------
// Pattern families
// ---------------------------------------------------------------------------

var (
	// reNeutral matches published-collection references in all three
	// official languages: BGE (German), ATF (French), DTF (Italian).
	// An optional paragraph suffix ("E. 4.2" / "consid. 3") is part of
	// the display text but never of the normalized form.
	reNeutral = regexp.MustCompile(
		`\b(BGE|ATF|DTF)\s+(\d{1,3})\s+([IVX]+[ab]?)\s+(\d{1,4})(?:\s+(?:E\.|consid\.)\s*\d+(?:\.\d+)*)?`)

	// reDocket matches federal docket numbers: chamber code, underscore,
	// case number, slash, filing year. The common chamber shape is
	// digit+letter ("1C", "5A"); letter-leading register codes with an
	// embedded digit are accepted as well.
	reDocket = regexp.MustCompile(
		`\b(\d{1,2}[A-Z]|[A-Z]{1,2}\d[A-Z]?)_(\d{1,4})/(\d{4})\b`)

	// reArticle matches statutory article references against a fixed set
	// of well-known statute abbreviations (German and French/Italian
	// short titles). Paragraph, number, and letter qualifiers between the
	// article number and the statute code are carried in the match text.
	reArticle = regexp.MustCompile(
		`\b[Aa]rt\.?\s+\d+[a-z]?(?:\s+(?:Abs\.|al\.|Ziff\.|lit\.|let\.|para\.?)\s*\d*[a-z]?)*` +
			`\s+(?:OR|ZGB|StGB|BV|ZPO|StPO|BGG|SchKG|VwVG|ATSG|IPRG|DSG|CO|CC|CP|Cst|LP|CPC|CPP|LTF)\b`)
)

// Extract scans text for citations of all three pattern families and
// returns the surviving matches ordered by start offset.
//
// Each family is scanned independently (a single regexp scan cannot
// self-overlap), the candidates are merged and sorted by start offset,
// and cross-family overlaps are resolved first-match-wins: walking the
// sorted list once, a candidate survives only if it starts at or after
// the end of the previously kept match. The result is therefore always
// sorted and pairwise non-overlapping.
func Extract(text string) []Match {
	if text == "" {
		return nil
	}

	var candidates []Match
	candidates = append(candidates, extractNeutral(text)...)
	candidates = append(candidates, extractDockets(text)...)
	candidates = append(candidates, extractArticles(text)...)
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		// Same start: prefer the longer candidate.
		return candidates[i].End > candidates[j].End
	})

	kept := candidates[:0]
	lastEnd := 0
	for _, c := range candidates {
		if c.Start < lastEnd {
			continue
		}
		kept = append(kept, c)
		lastEnd = c.End
	}
	return kept
}

// ToSearchQuery returns the canonical search string for a match: the
// normalized form when one exists, otherwise the raw matched text. The
// result is stable across spacing and suffix variance in the source.
func ToSearchQuery(m Match) string {
	if m.Normalized != "" {
		return m.Normalized
	}
	return m.Text
}

// extractNeutral finds collection references. The normalized form is the
// four core tokens joined by single spaces, dropping any paragraph suffix.
func extractNeutral(text string) []Match {
	locs := reNeutral.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		marker := text[loc[2]:loc[3]]
		volume := text[loc[4]:loc[5]]
		part := text[loc[6]:loc[7]]
		page := text[loc[8]:loc[9]]
		matches = append(matches, Match{
			Text:       text[loc[0]:loc[1]],
			Kind:       KindNeutral,
			Start:      loc[0],
			End:        loc[1],
			Normalized: strings.Join([]string{marker, volume, part, page}, " "),
		})
	}
	return matches
}

// extractDockets finds docket numbers. The matched text is already the
// canonical chamber_number/year form, so it doubles as the normalized form.
func extractDockets(text string) []Match {
	locs := reDocket.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		m := text[loc[0]:loc[1]]
		matches = append(matches, Match{
			Text:       m,
			Kind:       KindDocket,
			Start:      loc[0],
			End:        loc[1],
			Normalized: m,
		})
	}
	return matches
}

// extractArticles finds statutory article references. Articles carry no
// normalized form; downstream search uses the raw text.
func extractArticles(text string) []Match {
	locs := reArticle.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		matches = append(matches, Match{
			Text:  text[loc[0]:loc[1]],
			Kind:  KindArticle,
			Start: loc[0],
			End:   loc[1],
		})
	}
	return matches
}
