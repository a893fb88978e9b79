package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexsearch/citegraph"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML)")
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := citegraph.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = citegraph.LoadConfig(*configPath)
		if err != nil {
			slog.Error("loading config", "error", err)
			os.Exit(1)
		}
	}

	// Override from environment variables.
	if v := os.Getenv("CITEGRAPH_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CITEGRAPH_ADDR"); v != "" {
		*addr = v
	}

	apiKey := os.Getenv("CITEGRAPH_API_KEY")
	corsOrigins := os.Getenv("CITEGRAPH_CORS_ORIGINS")

	engine, err := citegraph.New(cfg)
	if err != nil {
		slog.Error("creating engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	h := newHandler(engine)
	mux := http.NewServeMux()

	mux.HandleFunc("POST /ingest", h.handleIngest)
	mux.HandleFunc("POST /search", h.handleSearch)
	mux.HandleFunc("POST /annotate", h.handleAnnotate)
	mux.HandleFunc("POST /export", h.handleExport)
	mux.HandleFunc("GET /decisions", h.handleListDecisions)
	mux.HandleFunc("GET /decisions/{id}", h.handleGetDecision)
	mux.HandleFunc("GET /decisions/{id}/annotate", h.handleAnnotateDecision)
	mux.HandleFunc("GET /decisions/{id}/citations", h.handleCitations)
	mux.HandleFunc("GET /decisions/{id}/network", h.handleNetwork)
	mux.HandleFunc("DELETE /decisions/{id}", h.handleDeleteDecision)
	mux.HandleFunc("GET /citing/{ref...}", h.handleCiting)
	mux.HandleFunc("GET /suggest", h.handleSuggest)
	mux.HandleFunc("GET /stats", h.handleStats)
	mux.HandleFunc("GET /health", h.handleHealth)

	// Middleware chain: recovery -> cors -> auth -> logging -> mux
	var handler http.Handler = mux
	handler = logMiddleware(handler)
	handler = authMiddleware(apiKey, handler)
	handler = corsMiddleware(corsOrigins, handler)
	handler = recoveryMiddleware(handler)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // ingest and export can be long
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
