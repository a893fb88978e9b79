package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lexsearch/citegraph"
	"github.com/lexsearch/citegraph/export"
	"github.com/lexsearch/citegraph/store"
)

type handler struct {
	engine citegraph.Engine
}

func newHandler(e citegraph.Engine) *handler {
	return &handler{engine: e}
}

// POST /ingest
// Accepts multipart PDF upload or JSON with a file path or raw text.
func (h *handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	// Try multipart upload first
	if err := r.ParseMultipartForm(100 << 20); err == nil { // 100MB max
		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()

			// Sanitise filename to prevent path traversal.
			safeName := filepath.Base(header.Filename)

			tmpPath := filepath.Join(os.TempDir(), safeName)
			dst, err := os.Create(tmpPath)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to process file")
				slog.Error("creating temp file", "error", err)
				return
			}
			if _, err := io.Copy(dst, file); err != nil {
				dst.Close()
				writeError(w, http.StatusInternalServerError, "failed to save file")
				slog.Error("saving uploaded file", "error", err)
				return
			}
			dst.Close()
			defer os.Remove(tmpPath)

			id, err := h.engine.Ingest(ctx, tmpPath)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "ingestion failed")
				slog.Error("ingest error", "file", safeName, "error", err)
				return
			}

			writeJSON(w, http.StatusOK, map[string]any{
				"decision_id": id,
				"filename":    safeName,
			})
			return
		}
	}

	// JSON body: either a file path or an already-extracted decision.
	var req struct {
		Path     string          `json:"path,omitempty"`
		Decision *store.Decision `json:"decision,omitempty"`
		Force    bool            `json:"force,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: expected multipart file or JSON body")
		return
	}

	if req.Decision != nil {
		if req.Decision.ContentText == "" {
			writeError(w, http.StatusBadRequest, "decision content_text is required")
			return
		}
		id, err := h.engine.IngestText(ctx, *req.Decision)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "ingestion failed")
			slog.Error("ingest error", "decision_id", req.Decision.ID, "error", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"decision_id": id})
		return
	}

	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path or decision is required")
		return
	}

	absPath, err := filepath.Abs(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusBadRequest, "path must be an existing file")
		return
	}

	var opts []citegraph.IngestOption
	if req.Force {
		opts = append(opts, citegraph.WithForceReingest())
	}

	id, err := h.engine.Ingest(ctx, absPath, opts...)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, citegraph.ErrUnsupportedFormat) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "ingestion failed")
		slog.Error("ingest error", "path", absPath, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"decision_id": id,
		"path":        absPath,
	})
}

// POST /search
func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query   string        `json:"query"`
		Filters store.Filters `json:"filters,omitempty"`
		Limit   int           `json:"limit,omitempty"`
		Offset  int           `json:"offset,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Limit < 0 || req.Limit > 100 {
		req.Limit = 0 // use default
	}

	results, err := h.engine.Search(r.Context(), req.Query, req.Filters, req.Limit, req.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search failed")
		slog.Error("search error", "query", req.Query, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"results": results,
	})
}

// POST /annotate
// Recognizes citations in arbitrary text.
func (h *handler) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	writeJSON(w, http.StatusOK, h.engine.Annotate(req.Text))
}

// GET /decisions/{id}/annotate
func (h *handler) handleAnnotateDecision(w http.ResponseWriter, r *http.Request) {
	d, err := h.engine.Decision(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDecisionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Annotate(d.ContentText))
}

// GET /decisions
func (h *handler) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	decisions, err := h.engine.ListDecisions(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list decisions")
		slog.Error("list decisions error", "error", err)
		return
	}
	// Keep list payloads small.
	for i := range decisions {
		decisions[i].ContentText = ""
	}
	writeJSON(w, http.StatusOK, map[string]any{"decisions": decisions})
}

// GET /decisions/{id}
func (h *handler) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	d, err := h.engine.Decision(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDecisionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// GET /decisions/{id}/citations
func (h *handler) handleCitations(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.engine.Decision(r.Context(), id); err != nil {
		writeDecisionError(w, err)
		return
	}
	records, err := h.engine.Store().CitationsFor(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load citations")
		slog.Error("citations error", "decision_id", id, "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"decision_id": id,
		"citations":   records,
	})
}

// GET /decisions/{id}/network
// Optional ?layout=true runs the force simulation server-side and attaches
// node positions.
func (h *handler) handleNetwork(w http.ResponseWriter, r *http.Request) {
	g, err := h.engine.Network(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDecisionError(w, err)
		return
	}

	resp := map[string]any{"graph": g}
	if r.URL.Query().Get("layout") == "true" {
		resp["positions"] = h.engine.Layout(g)
	}
	writeJSON(w, http.StatusOK, resp)
}

// DELETE /decisions/{id}
func (h *handler) handleDeleteDecision(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDecisionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GET /citing/{ref...}
// The reference is taken from the remaining path so dockets containing
// slashes (1C_123/2024) work without encoding.
func (h *handler) handleCiting(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")
	if ref == "" {
		writeError(w, http.StatusBadRequest, "reference is required")
		return
	}
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	results, err := h.engine.CitingDecisions(r.Context(), ref, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup failed")
		slog.Error("citing error", "reference", ref, "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reference": ref,
		"results":   results,
	})
}

// GET /suggest?q=prefix
func (h *handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", 8)

	decisions, err := h.engine.Suggest(r.Context(), prefix, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "suggest failed")
		slog.Error("suggest error", "prefix", prefix, "error", err)
		return
	}
	suggestions := make([]map[string]string, 0, len(decisions))
	for _, d := range decisions {
		suggestions = append(suggestions, map[string]string{
			"id":     d.ID,
			"docket": d.Docket,
			"title":  d.Title,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// POST /export
// Exports search results or a decision's citation network as XLSX.
func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query      string        `json:"query,omitempty"`
		Filters    store.Filters `json:"filters,omitempty"`
		Limit      int           `json:"limit,omitempty"`
		DecisionID string        `json:"decision_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	switch {
	case req.DecisionID != "":
		g, err := h.engine.Network(r.Context(), req.DecisionID)
		if err != nil {
			writeDecisionError(w, err)
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="network.xlsx"`)
		if err := export.Network(w, g); err != nil {
			slog.Error("export error", "decision_id", req.DecisionID, "error", err)
		}

	case req.Query != "":
		if req.Limit <= 0 || req.Limit > 1000 {
			req.Limit = 500
		}
		hits, err := h.engine.Store().Search(r.Context(), req.Query, req.Filters, req.Limit, 0)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "search failed")
			slog.Error("export search error", "query", req.Query, "error", err)
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="results.xlsx"`)
		if err := export.SearchResults(w, hits); err != nil {
			slog.Error("export error", "query", req.Query, "error", err)
		}

	default:
		writeError(w, http.StatusBadRequest, "query or decision_id is required")
	}
}

// GET /stats
func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		slog.Error("stats error", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func writeDecisionError(w http.ResponseWriter, err error) {
	if errors.Is(err, citegraph.ErrDecisionNotFound) {
		writeError(w, http.StatusNotFound, "decision not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
	slog.Error("decision lookup error", "error", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf("%s", msg)})
}
