//go:build cgo

package citegraph

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lexsearch/citegraph/network"
	"github.com/lexsearch/citegraph/store"
)

func newTestEngine(t *testing.T) Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "test.db")
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestIngestTextAndSearch(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	id, err := e.IngestText(ctx, store.Decision{
		Docket:       "1C_123/2024",
		Title:        "Urteil vom 15. März 2024",
		Level:        "federal",
		DecisionDate: "2024-03-15",
		ContentText:  "Das Bundesgericht verweigert die Baubewilligung. Vgl. BGE 144 II 281 und Art. 8 ZGB.",
	})
	if err != nil {
		t.Fatalf("ingesting: %v", err)
	}
	if id != "1c_123-2024" {
		t.Errorf("derived id = %q, want 1c_123-2024", id)
	}

	results, err := e.Search(ctx, "Baubewilligung", store.Filters{}, 10, 0)
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Snippet == "" {
		t.Error("expected a snippet")
	}
	if results[0].ContentText != "" {
		t.Error("content text must not leak into results")
	}
}

func TestIngestTextRecordsCitations(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	citedID, err := e.IngestText(ctx, store.Decision{
		Docket:      "5A_100/2021",
		Title:       "Zitierter Entscheid",
		Level:       "federal",
		ContentText: "Erwägungen des zitierten Entscheids.",
	})
	if err != nil {
		t.Fatalf("ingesting cited: %v", err)
	}

	citingID, err := e.IngestText(ctx, store.Decision{
		Docket:      "1C_123/2024",
		Title:       "Zitierender Entscheid",
		Level:       "federal",
		ContentText: "Unter Verweis auf 5A_100/2021 wird die Beschwerde abgewiesen.",
	})
	if err != nil {
		t.Fatalf("ingesting citing: %v", err)
	}

	g, err := e.Network(ctx, citingID)
	if err != nil {
		t.Fatalf("building network: %v", err)
	}
	if len(g.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(g.Nodes))
	}
	if !g.Nodes[0].Focal || g.Nodes[0].ID != citingID {
		t.Errorf("first node = %+v, want focal %s", g.Nodes[0], citingID)
	}
	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(g.Edges))
	}
	if g.Edges[0].SourceID != citingID || g.Edges[0].TargetID != citedID {
		t.Errorf("edge = %+v, want %s -> %s", g.Edges[0], citingID, citedID)
	}
	if g.Edges[0].Kind != network.KindCites {
		t.Errorf("edge kind = %q, want cites", g.Edges[0].Kind)
	}

	// The cited decision sees the same relationship mirrored.
	back, err := e.Network(ctx, citedID)
	if err != nil {
		t.Fatalf("building reverse network: %v", err)
	}
	if len(back.Edges) != 1 || back.Edges[0].Kind != network.KindCitedBy {
		t.Fatalf("reverse edges = %+v, want one cited_by", back.Edges)
	}
}

func TestNetworkNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Network(context.Background(), "missing")
	if !errors.Is(err, ErrDecisionNotFound) {
		t.Fatalf("expected ErrDecisionNotFound, got %v", err)
	}
}

func TestLayoutPlacesAllNodes(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for _, d := range []store.Decision{
		{Docket: "5A_100/2021", Title: "A", Level: "federal", ContentText: "Inhalt A."},
		{Docket: "1C_123/2024", Title: "B", Level: "federal",
			ContentText: "Verweis auf 5A_100/2021 in den Erwägungen."},
	} {
		if _, err := e.IngestText(ctx, d); err != nil {
			t.Fatalf("ingesting %s: %v", d.Docket, err)
		}
	}

	g, err := e.Network(ctx, "1c_123-2024")
	if err != nil {
		t.Fatalf("building network: %v", err)
	}
	pos := e.Layout(g)
	if len(pos) != len(g.Nodes) {
		t.Fatalf("positions = %d, want %d", len(pos), len(g.Nodes))
	}
	cfg := DefaultConfig()
	for id, p := range pos {
		if p.X < cfg.LayoutMargin || p.X > cfg.LayoutWidth-cfg.LayoutMargin ||
			p.Y < cfg.LayoutMargin || p.Y > cfg.LayoutHeight-cfg.LayoutMargin {
			t.Errorf("node %s out of bounds: %+v", id, p)
		}
	}
}

func TestDeleteDecision(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	id, err := e.IngestText(ctx, store.Decision{
		Docket: "1C_1/2020", Title: "Entscheid", Level: "federal", ContentText: "Text.",
	})
	if err != nil {
		t.Fatalf("ingesting: %v", err)
	}
	if err := e.Delete(ctx, id); err != nil {
		t.Fatalf("deleting: %v", err)
	}
	if _, err := e.Decision(ctx, id); !errors.Is(err, ErrDecisionNotFound) {
		t.Fatalf("expected ErrDecisionNotFound after delete, got %v", err)
	}
	if err := e.Delete(ctx, id); !errors.Is(err, ErrDecisionNotFound) {
		t.Fatalf("expected ErrDecisionNotFound for second delete, got %v", err)
	}
}

func TestIngestUnsupportedFormat(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Ingest(context.Background(), "decision.docx")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestStats(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.IngestText(ctx, store.Decision{
		Docket: "1C_1/2020", Title: "Entscheid", Level: "federal",
		ContentText: "Verweis auf BGE 100 Ia 1.",
	}); err != nil {
		t.Fatalf("ingesting: %v", err)
	}

	st, err := e.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Decisions != 1 {
		t.Errorf("decisions = %d, want 1", st.Decisions)
	}
	if st.Citations != 1 {
		t.Errorf("citations = %d, want 1", st.Citations)
	}
}
