package store

import (
	"context"
	"fmt"
	"strings"
)

// Hit is a search result: a decision plus its ranking score. Content is
// included so callers can build snippets.
type Hit struct {
	Decision
	Score float64 `json:"score"`
}

// Filters narrows a search. Zero values mean no restriction; dates are
// ISO strings compared lexically.
type Filters struct {
	Level    string `json:"level,omitempty"`
	Canton   string `json:"canton,omitempty"`
	Language string `json:"language,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}

// Ranking bonuses subtracted from the BM25 rank (lower rank = better).
const (
	titleMatchBonus  = 2.0
	docketMatchBonus = 3.0
)

// Column list prefixed with the decisions alias, for queries that join
// the FTS table and would otherwise hit ambiguous column names.
const hitColumns = `d.id, d.source_id, d.source_name, d.level, d.canton, d.court, d.chamber,
	d.language, d.docket, d.decision_date, d.title, d.url, d.pdf_url, d.content_text, d.content_hash`

func (f Filters) clause(params *[]any) string {
	var b strings.Builder
	if f.Level != "" {
		b.WriteString(" AND d.level = ?")
		*params = append(*params, f.Level)
	}
	if f.Canton != "" {
		b.WriteString(" AND d.canton = ?")
		*params = append(*params, f.Canton)
	}
	if f.Language != "" {
		b.WriteString(" AND d.language = ?")
		*params = append(*params, f.Language)
	}
	if f.DateFrom != "" {
		b.WriteString(" AND d.decision_date >= ?")
		*params = append(*params, f.DateFrom)
	}
	if f.DateTo != "" {
		b.WriteString(" AND d.decision_date <= ?")
		*params = append(*params, f.DateTo)
	}
	return b.String()
}

// Search performs a full-text search over title, docket, and content with
// BM25 ranking plus title/docket match bonuses. The query is sanitised
// into quoted FTS5 tokens so user input can never produce a syntax error.
func (s *Store) Search(ctx context.Context, query string, f Filters, limit, offset int) ([]Hit, error) {
	fts := sanitizeFTSQuery(query)
	if fts == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	lower := strings.ToLower(strings.TrimSpace(query))
	params := []any{lower, lower, fts}
	filterSQL := f.clause(&params)
	params = append(params, limit, offset)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT `+hitColumns+`,
			(f.rank
				- CASE WHEN instr(lower(d.title), ?) > 0 THEN %g ELSE 0 END
				- CASE WHEN instr(lower(d.docket), ?) > 0 THEN %g ELSE 0 END
			) AS final_rank
		FROM decisions_fts f
		JOIN decisions d ON d.doc_id = f.rowid
		WHERE decisions_fts MATCH ?%s
		ORDER BY final_rank
		LIMIT ? OFFSET ?
	`, titleMatchBonus, docketMatchBonus, filterSQL), params...)
	if err != nil {
		return nil, fmt.Errorf("fts search: %w", err)
	}
	defer rows.Close()

	return scanHits(rows)
}

// SearchByCitation finds decisions matching a normalized citation string:
// exact docket match first, then a phrase search over content. This is
// the target of citation clicks, so an exact docket hit always ranks on
// top.
func (s *Store) SearchByCitation(ctx context.Context, reference string, limit int) ([]Hit, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+hitColumns+`,
			CASE
				WHEN d.docket = ? THEN -100.0
				WHEN d.docket LIKE ? THEN -80.0
				ELSE -50.0
			END AS final_rank
		FROM decisions d
		WHERE d.docket = ? OR d.docket LIKE ? OR d.title LIKE ?
		ORDER BY final_rank, d.decision_date DESC
		LIMIT ?
	`, reference, "%"+reference+"%", reference, "%"+reference+"%", "%"+reference+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("citation docket search: %w", err)
	}
	hits, err := scanHits(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(hits) > 0 {
		return hits, nil
	}

	// No docket/title match: fall back to an exact-phrase content search.
	return s.CitingDecisions(ctx, reference, limit, 0)
}

// CitingDecisions finds decisions whose text cites the given reference,
// preferring recorded citation relationships and falling back to an FTS
// phrase match over content.
func (s *Store) CitingDecisions(ctx context.Context, reference string, limit, offset int) ([]Hit, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+hitColumns+`, -90.0 AS final_rank
		FROM citations c
		JOIN decisions d ON d.id = c.citing_id
		WHERE c.reference = ?
		ORDER BY d.decision_date DESC
		LIMIT ? OFFSET ?
	`, reference, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("recorded citation lookup: %w", err)
	}
	hits, err := scanHits(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(hits) > 0 {
		return hits, nil
	}

	frows, err := s.db.QueryContext(ctx, `
		SELECT `+hitColumns+`, f.rank AS final_rank
		FROM decisions_fts f
		JOIN decisions d ON d.doc_id = f.rowid
		WHERE decisions_fts MATCH ?
		ORDER BY final_rank
		LIMIT ? OFFSET ?
	`, phraseQuery(reference), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("citation phrase search: %w", err)
	}
	defer frows.Close()
	return scanHits(frows)
}

// Suggest returns typeahead suggestions by docket or title prefix.
func (s *Store) Suggest(ctx context.Context, prefix string, limit int) ([]Decision, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 8
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+hitColumns+` FROM decisions d
		WHERE d.docket LIKE ? OR d.title LIKE ?
		ORDER BY d.decision_date DESC
		LIMIT ?
	`, prefix+"%", prefix+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		var d Decision
		if err := rows.Scan(&d.ID, &d.SourceID, &d.SourceName, &d.Level, &d.Canton,
			&d.Court, &d.Chamber, &d.Language, &d.Docket, &d.DecisionDate,
			&d.Title, &d.URL, &d.PDFURL, &d.ContentText, &d.ContentHash); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type scannable interface {
	Next() bool
	Scan(...any) error
	Err() error
}

func scanHits(rows scannable) ([]Hit, error) {
	var hits []Hit
	for rows.Next() {
		var h Hit
		var rank float64
		if err := rows.Scan(&h.ID, &h.SourceID, &h.SourceName, &h.Level, &h.Canton,
			&h.Court, &h.Chamber, &h.Language, &h.Docket, &h.DecisionDate,
			&h.Title, &h.URL, &h.PDFURL, &h.ContentText, &h.ContentHash, &rank); err != nil {
			return nil, err
		}
		// FTS5 rank is negative (lower = better); convert to a positive
		// score so bigger means better for callers.
		h.Score = -rank
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// sanitizeFTSQuery turns free-form user input into a safe FTS5 query by
// quoting every token. Operators, parentheses, and stray quotes in the
// input become literal terms instead of syntax errors.
func sanitizeFTSQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		quoted = append(quoted, `"`+f+`"`)
	}
	return strings.Join(quoted, " ")
}

// phraseQuery wraps a reference in FTS5 phrase quotes so multi-token
// citations match as a unit.
func phraseQuery(reference string) string {
	return `"` + strings.ReplaceAll(reference, `"`, "") + `"`
}
