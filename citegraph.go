// Package citegraph recognizes Swiss legal citations in court decision
// text, stores decisions with their citation relationships, and lays out
// interactive citation networks.
package citegraph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/lexsearch/citegraph/cite"
	"github.com/lexsearch/citegraph/extract"
	"github.com/lexsearch/citegraph/layout"
	"github.com/lexsearch/citegraph/network"
	"github.com/lexsearch/citegraph/store"
)

// Engine is the main entry point for citation recognition, search, and
// network layout over a decision corpus.
type Engine interface {
	// Ingest extracts text from a PDF, recognizes citations, and stores
	// the decision. Returns the decision ID. Skips re-ingestion when the
	// content hash is unchanged.
	Ingest(ctx context.Context, path string, opts ...IngestOption) (string, error)

	// IngestText stores a decision from already-extracted text.
	IngestText(ctx context.Context, d store.Decision) (string, error)

	// Annotate segments text into literal runs and recognized citations.
	Annotate(text string) *Annotation

	// Search runs full-text search and attaches query-centered snippets.
	Search(ctx context.Context, query string, f store.Filters, limit, offset int) ([]Result, error)

	// SearchByCitation resolves a citation reference to matching decisions.
	SearchByCitation(ctx context.Context, reference string, limit int) ([]Result, error)

	// CitingDecisions finds decisions whose text cites the reference.
	CitingDecisions(ctx context.Context, reference string, limit, offset int) ([]Result, error)

	// Network builds the ego citation network around a decision.
	Network(ctx context.Context, decisionID string) (*network.Graph, error)

	// Layout runs the force simulation to completion for a graph.
	Layout(g *network.Graph) map[string]layout.Position

	// Decision returns a stored decision by ID.
	Decision(ctx context.Context, id string) (*store.Decision, error)

	// ListDecisions returns stored decisions, newest first.
	ListDecisions(ctx context.Context, limit, offset int) ([]store.Decision, error)

	// Delete removes a decision and its outgoing citations.
	Delete(ctx context.Context, id string) error

	// Suggest returns typeahead suggestions for a docket or title prefix.
	Suggest(ctx context.Context, prefix string, limit int) ([]store.Decision, error)

	// Stats returns aggregate corpus counts.
	Stats(ctx context.Context) (*store.Stats, error)

	// Store returns the underlying store for diagnostic access.
	Store() *store.Store

	// Close cleanly shuts down the engine.
	Close() error
}

// Annotation is the result of citation recognition over a text: the flat
// match list plus the segment stream for rendering linked text.
type Annotation struct {
	Matches  []cite.Match   `json:"matches"`
	Segments []cite.Segment `json:"segments"`
}

// Result is a search hit with a query-centered snippet.
type Result struct {
	store.Hit
	Snippet string `json:"snippet"`
}

// IngestOption configures ingestion behavior.
type IngestOption func(*ingestOptions)

type ingestOptions struct {
	force    bool
	decision store.Decision
}

// WithForceReingest forces re-ingestion even if the content hash matches.
func WithForceReingest() IngestOption {
	return func(o *ingestOptions) { o.force = true }
}

// WithDecisionMeta pre-fills decision metadata that cannot be derived
// from the document text (source, level, canton, court, URL).
func WithDecisionMeta(d store.Decision) IngestOption {
	return func(o *ingestOptions) { o.decision = d }
}

// engine is the concrete implementation of Engine.
type engine struct {
	cfg   Config
	store *store.Store
}

// New creates a new citegraph engine with the given configuration.
func New(cfg Config) (Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	dbPath := cfg.resolveDBPath()

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return &engine{cfg: cfg, store: s}, nil
}

// Ingest processes a PDF document through extraction, recognition, and
// storage.
func (e *engine) Ingest(ctx context.Context, path string, opts ...IngestOption) (string, error) {
	options := &ingestOptions{}
	for _, o := range opts {
		o(options)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	if strings.ToLower(filepath.Ext(absPath)) != ".pdf" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(absPath))
	}

	slog.Info("ingest: extracting document", "file", filepath.Base(absPath))
	start := time.Now()

	res, err := extract.PDF(ctx, absPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if res.Text == "" {
		return "", ErrEmptyDocument
	}

	d := options.decision
	d.ContentText = res.Text
	d.ContentHash = res.Hash
	if d.Docket == "" {
		d.Docket = res.Docket
	}
	if d.Title == "" {
		d.Title = res.Title
	}
	if d.Language == "" {
		d.Language = res.Language
	}
	if d.ID == "" {
		d.ID = deriveID(d.Docket, res.Hash)
	}

	if !options.force {
		existing, err := e.store.GetDecision(ctx, d.ID)
		if err == nil && existing.ContentHash == d.ContentHash {
			slog.Info("ingest: content unchanged", "id", d.ID)
			return d.ID, nil
		}
	}

	id, err := e.IngestText(ctx, d)
	if err != nil {
		return "", err
	}
	slog.Info("ingest: decision ready",
		"id", id, "docket", d.Docket, "pages", res.Pages,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return id, nil
}

// IngestText stores the decision and replaces its recorded citations with
// the ones recognized in its text.
func (e *engine) IngestText(ctx context.Context, d store.Decision) (string, error) {
	if d.ID == "" {
		d.ID = deriveID(d.Docket, extract.HashText(d.ContentText))
	}
	if d.ContentHash == "" {
		d.ContentHash = extract.HashText(d.ContentText)
	}
	if d.Level == "" {
		d.Level = string(network.LevelFederal)
	}
	if err := e.store.UpsertDecision(ctx, d); err != nil {
		return "", err
	}

	matches := cite.Extract(d.ContentText)
	cits := make([]store.Citation, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		ref := cite.ToSearchQuery(m)
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		cits = append(cits, store.Citation{
			Reference: ref,
			Kind:      string(m.Kind),
		})
	}
	if err := e.store.ReplaceCitations(ctx, d.ID, cits); err != nil {
		return "", fmt.Errorf("recording citations: %w", err)
	}
	slog.Debug("ingest: citations recorded", "id", d.ID, "count", len(cits))
	return d.ID, nil
}

// Annotate segments text into literal runs and recognized citations.
func (e *engine) Annotate(text string) *Annotation {
	return &Annotation{
		Matches:  cite.Extract(text),
		Segments: cite.Linkify(text),
	}
}

// Search runs full-text search and attaches query-centered snippets.
func (e *engine) Search(ctx context.Context, query string, f store.Filters, limit, offset int) ([]Result, error) {
	if limit <= 0 {
		limit = e.cfg.SearchLimit
	}
	hits, err := e.store.Search(ctx, query, f, limit, offset)
	if err != nil {
		return nil, err
	}
	return e.toResults(hits, query), nil
}

// SearchByCitation resolves a citation reference to matching decisions.
func (e *engine) SearchByCitation(ctx context.Context, reference string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = e.cfg.SearchLimit
	}
	hits, err := e.store.SearchByCitation(ctx, reference, limit)
	if err != nil {
		return nil, err
	}
	return e.toResults(hits, reference), nil
}

// CitingDecisions finds decisions whose text cites the reference.
func (e *engine) CitingDecisions(ctx context.Context, reference string, limit, offset int) ([]Result, error) {
	if limit <= 0 {
		limit = e.cfg.SearchLimit
	}
	hits, err := e.store.CitingDecisions(ctx, reference, limit, offset)
	if err != nil {
		return nil, err
	}
	return e.toResults(hits, reference), nil
}

func (e *engine) toResults(hits []store.Hit, query string) []Result {
	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			Hit:     h,
			Snippet: extractSnippet(h.ContentText, query, e.cfg.SnippetLen),
		}
		// Content stays out of API payloads; the snippet carries context.
		results[i].ContentText = ""
	}
	return results
}

// Network builds the ego citation network around a decision.
func (e *engine) Network(ctx context.Context, decisionID string) (*network.Graph, error) {
	d, err := e.store.GetDecision(ctx, decisionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDecisionNotFound, decisionID)
		}
		return nil, err
	}

	records, err := e.store.CitationsFor(ctx, decisionID)
	if err != nil {
		return nil, fmt.Errorf("loading citations: %w", err)
	}

	label := d.Docket
	if label == "" {
		label = d.Title
	}
	g := network.Build(d.ID, label, network.Level(d.Level), records)
	g.Focal().Date = d.DecisionDate
	return g, nil
}

// Layout runs the force simulation to completion for a graph.
func (e *engine) Layout(g *network.Graph) map[string]layout.Position {
	return layout.Run(g, layout.Config{
		Width:          e.cfg.LayoutWidth,
		Height:         e.cfg.LayoutHeight,
		Margin:         e.cfg.LayoutMargin,
		ChargeStrength: e.cfg.ChargeStrength,
	})
}

// Decision returns a stored decision by ID.
func (e *engine) Decision(ctx context.Context, id string) (*store.Decision, error) {
	d, err := e.store.GetDecision(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDecisionNotFound, id)
	}
	return d, err
}

// ListDecisions returns stored decisions, newest first.
func (e *engine) ListDecisions(ctx context.Context, limit, offset int) ([]store.Decision, error) {
	return e.store.ListDecisions(ctx, limit, offset)
}

// Delete removes a decision and its outgoing citations.
func (e *engine) Delete(ctx context.Context, id string) error {
	err := e.store.DeleteDecision(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrDecisionNotFound, id)
	}
	return err
}

// Suggest returns typeahead suggestions for a docket or title prefix.
func (e *engine) Suggest(ctx context.Context, prefix string, limit int) ([]store.Decision, error) {
	return e.store.Suggest(ctx, prefix, limit)
}

// Stats returns aggregate corpus counts.
func (e *engine) Stats(ctx context.Context) (*store.Stats, error) {
	return e.store.GetStats(ctx)
}

// Store returns the underlying store for diagnostic access.
func (e *engine) Store() *store.Store {
	return e.store
}

// Close shuts down the engine.
func (e *engine) Close() error {
	return e.store.Close()
}

// deriveID builds a stable decision ID from the docket when present,
// falling back to a content hash prefix.
func deriveID(docket, hash string) string {
	if docket != "" {
		id := strings.ToLower(docket)
		for _, r := range []string{"/", " ", "."} {
			id = strings.ReplaceAll(id, r, "-")
		}
		return id
	}
	if len(hash) > 16 {
		hash = hash[:16]
	}
	return "doc-" + hash
}
