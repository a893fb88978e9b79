// Package store persists court decisions and their citation relationships
// in SQLite, with FTS5 full-text search over title, docket, and content.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lexsearch/citegraph/network"
)

// Decision represents a row in the decisions table.
type Decision struct {
	ID           string `json:"id"`
	SourceID     string `json:"source_id,omitempty"`
	SourceName   string `json:"source_name,omitempty"`
	Level        string `json:"level"`
	Canton       string `json:"canton,omitempty"`
	Court        string `json:"court,omitempty"`
	Chamber      string `json:"chamber,omitempty"`
	Language     string `json:"language,omitempty"`
	Docket       string `json:"docket,omitempty"`
	DecisionDate string `json:"decision_date,omitempty"`
	Title        string `json:"title"`
	URL          string `json:"url,omitempty"`
	PDFURL       string `json:"pdf_url,omitempty"`
	ContentText  string `json:"content_text,omitempty"`
	ContentHash  string `json:"content_hash,omitempty"`
}

// Citation represents a row in the citations table: a reference extracted
// from the citing decision's text. CitedID is empty until the reference
// resolves to a stored decision.
type Citation struct {
	CitingID  string `json:"citing_id"`
	CitedID   string `json:"cited_id,omitempty"`
	Reference string `json:"reference"`
	Kind      string `json:"kind"`
}

// Stats summarises the store contents.
type Stats struct {
	Decisions int64            `json:"decisions"`
	Citations int64            `json:"citations"`
	ByLevel   map[string]int64 `json:"by_level"`
	ByCanton  map[string]int64 `json:"by_canton"`
}

// Store wraps the SQLite database for all citegraph persistence.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at the given path and
// initialises the schema including the FTS5 virtual table.
func Open(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying database handle for diagnostics.
func (s *Store) DB() *sql.DB {
	return s.db
}

// --- Decision operations ---

// UpsertDecision inserts or replaces a decision by its public id.
func (s *Store) UpsertDecision(ctx context.Context, d Decision) error {
	if d.ID == "" {
		return fmt.Errorf("upserting decision: empty id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions (id, source_id, source_name, level, canton, court, chamber,
			language, docket, decision_date, title, url, pdf_url, content_text, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			source_name = excluded.source_name,
			level = excluded.level,
			canton = excluded.canton,
			court = excluded.court,
			chamber = excluded.chamber,
			language = excluded.language,
			docket = excluded.docket,
			decision_date = excluded.decision_date,
			title = excluded.title,
			url = excluded.url,
			pdf_url = excluded.pdf_url,
			content_text = excluded.content_text,
			content_hash = excluded.content_hash,
			updated_at = CURRENT_TIMESTAMP
	`, d.ID, d.SourceID, d.SourceName, d.Level, d.Canton, d.Court, d.Chamber,
		d.Language, d.Docket, d.DecisionDate, d.Title, d.URL, d.PDFURL,
		d.ContentText, d.ContentHash)
	if err != nil {
		return fmt.Errorf("upserting decision %s: %w", d.ID, err)
	}
	return nil
}

const decisionColumns = `id, source_id, source_name, level, canton, court, chamber,
	language, docket, decision_date, title, url, pdf_url, content_text, content_hash`

func scanDecision(row interface{ Scan(...any) error }) (Decision, error) {
	var d Decision
	err := row.Scan(&d.ID, &d.SourceID, &d.SourceName, &d.Level, &d.Canton,
		&d.Court, &d.Chamber, &d.Language, &d.Docket, &d.DecisionDate,
		&d.Title, &d.URL, &d.PDFURL, &d.ContentText, &d.ContentHash)
	return d, err
}

// GetDecision returns a decision by its public id, or sql.ErrNoRows.
func (s *Store) GetDecision(ctx context.Context, id string) (*Decision, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+decisionColumns+` FROM decisions WHERE id = ?`, id)
	d, err := scanDecision(row)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDecisionByDocket returns the decision matching docket exactly, or
// sql.ErrNoRows.
func (s *Store) GetDecisionByDocket(ctx context.Context, docket string) (*Decision, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+decisionColumns+` FROM decisions WHERE docket = ? LIMIT 1`, docket)
	d, err := scanDecision(row)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDecisions returns decisions ordered by decision date, newest first.
func (s *Store) ListDecisions(ctx context.Context, limit, offset int) ([]Decision, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+decisionColumns+` FROM decisions
		ORDER BY decision_date DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDecision removes a decision and, via cascade, its outgoing
// citations.
func (s *Store) DeleteDecision(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM decisions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting decision %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- Citation operations ---

// ReplaceCitations replaces all outgoing citations of a decision in one
// transaction, re-resolving each reference against stored dockets.
func (s *Store) ReplaceCitations(ctx context.Context, citingID string, cits []Citation) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM citations WHERE citing_id = ?`, citingID); err != nil {
			return fmt.Errorf("clearing citations: %w", err)
		}
		for _, c := range cits {
			citedID := sql.NullString{String: c.CitedID, Valid: c.CitedID != ""}
			if !citedID.Valid {
				// Try to resolve the reference to a stored decision by
				// docket; unresolved references stay NULL.
				var id string
				err := tx.QueryRowContext(ctx,
					`SELECT id FROM decisions WHERE docket = ? LIMIT 1`,
					c.Reference).Scan(&id)
				if err == nil && id != citingID {
					citedID = sql.NullString{String: id, Valid: true}
				}
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO citations (citing_id, cited_id, reference, kind)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(citing_id, reference) DO UPDATE SET
					cited_id = excluded.cited_id,
					kind = excluded.kind
			`, citingID, citedID, c.Reference, c.Kind); err != nil {
				return fmt.Errorf("inserting citation %q: %w", c.Reference, err)
			}
		}
		return nil
	})
}

// CitationsFor returns the citation relationship records for a decision's
// ego network: resolved outgoing citations (kind cites) plus incoming
// citations from other decisions (kind cited_by). Unresolved references
// are omitted since they cannot become graph nodes.
func (s *Store) CitationsFor(ctx context.Context, decisionID string) ([]network.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, COALESCE(NULLIF(d.docket, ''), d.title), d.level, COALESCE(d.decision_date, ''), 'cites'
		FROM citations c
		JOIN decisions d ON d.id = c.cited_id
		WHERE c.citing_id = ?
		UNION ALL
		SELECT d.id, COALESCE(NULLIF(d.docket, ''), d.title), d.level, COALESCE(d.decision_date, ''), 'cited_by'
		FROM citations c
		JOIN decisions d ON d.id = c.citing_id
		WHERE c.cited_id = ?
	`, decisionID, decisionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []network.Record
	for rows.Next() {
		var r network.Record
		var level, kind string
		if err := rows.Scan(&r.ID, &r.Label, &level, &r.Date, &kind); err != nil {
			return nil, err
		}
		r.Level = network.Level(level)
		r.Kind = network.EdgeKind(kind)
		records = append(records, r)
	}
	return records, rows.Err()
}

// UnresolvedReferences returns the distinct references that have not yet
// resolved to a stored decision, most frequent first.
func (s *Store) UnresolvedReferences(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT reference FROM citations
		WHERE cited_id IS NULL
		GROUP BY reference
		ORDER BY COUNT(*) DESC, reference
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// --- Stats ---

// GetStats returns aggregate counts over the store.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByLevel: make(map[string]int64), ByCanton: make(map[string]int64)}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM decisions`).Scan(&st.Decisions); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM citations`).Scan(&st.Citations); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT level, COUNT(*) FROM decisions GROUP BY level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var level string
		var n int64
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		st.ByLevel[level] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	crows, err := s.db.QueryContext(ctx, `
		SELECT canton, COUNT(*) FROM decisions
		WHERE canton IS NOT NULL AND canton != ''
		GROUP BY canton
	`)
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var canton string
		var n int64
		if err := crows.Scan(&canton, &n); err != nil {
			return nil, err
		}
		st.ByCanton[canton] = n
	}
	return st, crows.Err()
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
