// Package runner drives batch outline extraction: it scans an input
// directory for PDF files, runs the extraction pipeline over a bounded
// worker pool, and writes one JSON outline per input file.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/extractor"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/observability"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ocr"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/outline"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/schema"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/scripting"
)

// Config wires the pipeline stages for a run.
type Config struct {
	InputDir  string
	OutputDir string
	// Workers bounds concurrent file processing; values below 1 mean 1.
	Workers int
	// Extractor overrides page extraction limits; zero value uses defaults.
	Extractor extractor.Config
	// Outline tunes heading detection; zero value uses defaults.
	Outline outline.Config
	// Validator checks each result against the output contract. Nil skips
	// validation.
	Validator *schema.Validator
	// Filter is the post-detection rules stage. Nil means no filtering.
	Filter scripting.Engine
	// OCR recognizes page images on documents without any text. Nil
	// disables recognition.
	OCR ocr.Engine

	Logger *slog.Logger
}

// Stats summarizes one run.
type Stats struct {
	Processed  int
	Successful int
	Failed     int
	Duration   time.Duration
}

type Runner struct {
	cfg       Config
	log       *slog.Logger
	extractor *extractor.Extractor
	builder   *outline.Builder
}

func New(cfg Config) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	log := cfg.Logger
	if log == nil {
		log = observability.New("runner")
	}
	return &Runner{
		cfg:       cfg,
		log:       log,
		extractor: extractor.New(cfg.Extractor),
		builder:   outline.NewBuilder(cfg.Outline),
	}
}

// Run processes the configured input. When InputDir names a single .pdf
// file it is processed alone; otherwise every *.pdf in the directory is
// processed concurrently. Per-file failures are reflected in Stats, not
// in the returned error.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	runID := uuid.NewString()
	log := r.log.With(slog.String("run_id", runID))

	if info, err := os.Stat(r.cfg.InputDir); err == nil && !info.IsDir() &&
		strings.EqualFold(filepath.Ext(r.cfg.InputDir), ".pdf") {
		return r.runSingle(ctx, log, r.cfg.InputDir)
	}
	return r.runDirectory(ctx, log)
}

func (r *Runner) runSingle(ctx context.Context, log *slog.Logger, path string) (Stats, error) {
	start := time.Now()
	stats := Stats{Processed: 1}
	if r.processFile(ctx, log, path) {
		stats.Successful = 1
	} else {
		stats.Failed = 1
	}
	stats.Duration = time.Since(start)
	return stats, nil
}

func (r *Runner) runDirectory(ctx context.Context, log *slog.Logger) (Stats, error) {
	files, err := listPDFs(r.cfg.InputDir)
	if err != nil {
		return Stats{}, fmt.Errorf("scan input dir: %w", err)
	}
	if len(files) == 0 {
		log.Warn("no PDF files found", slog.String("dir", r.cfg.InputDir))
		return Stats{}, nil
	}
	log.Info("starting run",
		slog.Int("files", len(files)),
		slog.Int("workers", r.cfg.Workers))

	start := time.Now()
	stats := Stats{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, path := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			ok := r.processFile(ctx, log, path)
			mu.Lock()
			stats.Processed++
			if ok {
				stats.Successful++
			} else {
				stats.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	stats.Duration = time.Since(start)

	log.Info("run complete",
		slog.Int("processed", stats.Processed),
		slog.Int("successful", stats.Successful),
		slog.Int("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// processFile runs the full pipeline for one input. Extraction errors
// degrade to a fallback result that is still written; only rules,
// validation, and write errors fail the file.
func (r *Runner) processFile(ctx context.Context, log *slog.Logger, path string) bool {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(r.cfg.OutputDir, stem+".json")
	log = log.With(slog.String("file", filepath.Base(path)))
	start := time.Now()

	result := r.extractOutline(ctx, log, path, stem)

	if r.cfg.Filter != nil {
		filtered, err := r.cfg.Filter.Filter(ctx, result.Outline)
		if err != nil {
			log.Error("rules filter failed", slog.Any("error", err))
			return false
		}
		result.Outline = filtered
	}

	if r.cfg.Validator != nil {
		if err := r.cfg.Validator.ValidateValue(result); err != nil {
			log.Error("output validation failed", slog.Any("error", err))
			return false
		}
	}

	if err := writeResult(outPath, result); err != nil {
		log.Error("write failed", slog.Any("error", err))
		return false
	}
	log.Info("wrote outline",
		slog.Int("headings", len(result.Outline)),
		slog.Duration("elapsed", time.Since(start)))
	return true
}

// extractOutline never fails: extraction errors and panics produce a
// fallback result so the batch always emits one JSON per input.
func (r *Runner) extractOutline(ctx context.Context, log *slog.Logger, path, stem string) (result outline.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("extraction panicked", slog.Any("panic", rec))
			result = fallbackResult(stem)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("read failed", slog.Any("error", err))
		return fallbackResult(stem)
	}
	doc, err := r.extractor.Extract(ctx, bytes.NewReader(data))
	if err != nil {
		log.Error("extraction failed", slog.Any("error", err))
		return fallbackResult(stem)
	}

	result = r.builder.Build(doc, stem)
	if r.cfg.OCR != nil {
		r.applyOCRTitle(ctx, log, doc, stem, &result)
	}
	return result
}

// applyOCRTitle recovers a title for scanned documents. When no page
// carries text but images exist, the first recognized line replaces a
// filename-derived title.
func (r *Runner) applyOCRTitle(ctx context.Context, log *slog.Logger, doc *extractor.Document, stem string, result *outline.Result) {
	for _, page := range doc.Pages {
		if len(page.Blocks) > 0 {
			return
		}
	}
	results, err := ocr.RecognizePages(ctx, r.cfg.OCR, doc.Pages)
	if err != nil {
		log.Warn("ocr failed", slog.Any("error", err))
		return
	}
	for _, res := range results {
		line, _, _ := strings.Cut(res.PlainText, "\n")
		if line = strings.TrimSpace(line); line != "" {
			result.Title = line + "  "
			return
		}
	}
}

// listPDFs matches the .pdf extension case-insensitively.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

func fallbackResult(stem string) outline.Result {
	title := stem
	if title == "" {
		title = "Processing Failed"
	}
	return outline.Result{Title: title, Outline: []outline.Entry{}}
}

// writeResult emits four-space-indented JSON with HTML escaping off, so
// heading text like "Terms & Conditions" survives byte for byte.
func writeResult(path string, result outline.Result) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
