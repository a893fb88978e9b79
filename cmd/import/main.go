// Command import ingests court decisions into the citegraph database.
//
// PDF or text files (directories are walked recursively):
//
//	go run -tags sqlite_fts5 ./cmd/import \
//	  --db ./corpus.db \
//	  --level federal \
//	  ./decisions/
//
// JSONL with one decision object per line:
//
//	go run -tags sqlite_fts5 ./cmd/import \
//	  --db ./corpus.db \
//	  --jsonl ./decisions.jsonl
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lexsearch/citegraph"
	"github.com/lexsearch/citegraph/extract"
	"github.com/lexsearch/citegraph/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config file (YAML)")
		dbPath     = flag.String("db", "", "Path to SQLite database (overrides config)")
		jsonlPath  = flag.String("jsonl", "", "Path to JSONL file with one decision object per line")
		level      = flag.String("level", "federal", "Court level: federal or cantonal")
		canton     = flag.String("canton", "", "Canton code for cantonal decisions (e.g. GR, ZH)")
		court      = flag.String("court", "", "Court name")
		sourceName = flag.String("source", "", "Source name (e.g. Bundesgericht)")
		force      = flag.Bool("force", false, "Re-ingest even if content is unchanged")
		verbose    = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	if flag.NArg() == 0 && *jsonlPath == "" {
		fmt.Fprintln(os.Stderr, "usage: import [flags] <file-or-directory>...")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *level != "federal" && *level != "cantonal" {
		slog.Error("invalid level", "level", *level)
		os.Exit(2)
	}

	cfg := citegraph.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = citegraph.LoadConfig(*configPath)
		if err != nil {
			slog.Error("loading config", "error", err)
			os.Exit(1)
		}
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	engine, err := citegraph.New(cfg)
	if err != nil {
		slog.Error("creating engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	meta := store.Decision{
		Level:      *level,
		Canton:     *canton,
		Court:      *court,
		SourceName: *sourceName,
	}

	ctx := context.Background()
	start := time.Now()
	var ok, failed int

	if *jsonlPath != "" {
		ok, failed = importJSONL(ctx, engine, *jsonlPath, meta)
	} else {
		paths, err := collectFiles(flag.Args())
		if err != nil {
			slog.Error("collecting files", "error", err)
			os.Exit(1)
		}
		if len(paths) == 0 {
			slog.Error("no PDF or text files found", "args", flag.Args())
			os.Exit(1)
		}
		ok, failed = importFiles(ctx, engine, paths, meta, *force)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		slog.Error("loading stats", "error", err)
		os.Exit(1)
	}

	slog.Info("import complete",
		"ingested", ok,
		"failed", failed,
		"decisions", stats.Decisions,
		"citations", stats.Citations,
		"elapsed", time.Since(start).Round(time.Millisecond))

	if failed > 0 {
		os.Exit(1)
	}
}

func importFiles(ctx context.Context, engine citegraph.Engine, paths []string, meta store.Decision, force bool) (ok, failed int) {
	for _, path := range paths {
		var id string
		var err error

		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			opts := []citegraph.IngestOption{citegraph.WithDecisionMeta(meta)}
			if force {
				opts = append(opts, citegraph.WithForceReingest())
			}
			id, err = engine.Ingest(ctx, path, opts...)
		} else {
			id, err = ingestTextFile(ctx, engine, path, meta)
		}

		if err != nil {
			slog.Error("ingest failed", "file", path, "error", err)
			failed++
			continue
		}
		slog.Info("ingested", "file", filepath.Base(path), "id", id)
		ok++
	}
	return ok, failed
}

// ingestTextFile reads a plain-text decision and stores it with metadata
// derived from the text where the flags leave gaps.
func ingestTextFile(ctx context.Context, engine citegraph.Engine, path string, meta store.Decision) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	res := extract.FromText(string(data), 0)
	if res.Text == "" {
		return "", fmt.Errorf("%s: no text content", path)
	}

	d := meta
	d.ContentText = res.Text
	d.ContentHash = res.Hash
	d.Docket = res.Docket
	d.Title = res.Title
	d.Language = res.Language
	if d.Title == "" {
		d.Title = filepath.Base(path)
	}
	return engine.IngestText(ctx, d)
}

// importJSONL reads one decision JSON object per line. Lines that fail to
// parse or store are logged and counted, not fatal.
func importJSONL(ctx context.Context, engine citegraph.Engine, path string, meta store.Decision) (ok, failed int) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("opening JSONL file", "path", path, "error", err)
		return 0, 1
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 64<<20)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		d := meta
		if err := json.Unmarshal([]byte(text), &d); err != nil {
			slog.Error("invalid JSON line", "line", line, "error", err)
			failed++
			continue
		}
		if d.ContentText == "" {
			slog.Error("decision without content_text", "line", line, "id", d.ID)
			failed++
			continue
		}

		id, err := engine.IngestText(ctx, d)
		if err != nil {
			slog.Error("ingest failed", "line", line, "error", err)
			failed++
			continue
		}
		slog.Debug("ingested", "line", line, "id", id)
		ok++
	}
	if err := scanner.Err(); err != nil {
		slog.Error("reading JSONL file", "path", path, "error", err)
		failed++
	}
	return ok, failed
}

// collectFiles expands arguments into a flat list of PDF and text file
// paths, walking directories recursively.
func collectFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".pdf", ".txt":
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return paths, nil
}
