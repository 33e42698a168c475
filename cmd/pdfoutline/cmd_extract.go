package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/config"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/observability"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ocr"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/runner"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/schema"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/scripting"
)

var extractCmd = &cobra.Command{
	Use:   "extract [input] [output]",
	Short: "Extract outlines from PDFs into JSON files",
	Long: `Processes every *.pdf in the input directory and writes a <name>.json
outline next to each into the output directory. When the input path is a
single .pdf file, only that file is processed.

Input and output default to INPUT_DIR and OUTPUT_DIR; positional
arguments override them.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		settings.InputDir = args[0]
	}
	if len(args) > 1 {
		settings.OutputDir = args[1]
	}

	observability.Init(observability.ParseLevel(settings.LogLevel), settings.LogFormat)
	log := observability.New("extract")
	log.Info("starting",
		slog.String("input", settings.InputDir),
		slog.String("output", settings.OutputDir))

	// A broken or missing schema file disables validation rather than
	// blocking the batch.
	validator, err := loadValidator(settings.SchemaPath)
	if err != nil {
		log.Warn("schema unavailable, skipping validation", slog.Any("error", err))
		validator = nil
	}

	cfg := runner.Config{
		InputDir:  settings.InputDir,
		OutputDir: settings.OutputDir,
		Workers:   settings.Workers,
		Outline:   settings.Profile.OutlineConfig(),
		Validator: validator,
	}
	if settings.RulesFile != "" {
		eng, err := scripting.LoadFile(settings.RulesFile)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		cfg.Filter = eng
	}
	if settings.OCREnabled {
		cfg.OCR = ocr.DefaultEngine()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := runner.New(cfg).Run(ctx)
	if err != nil {
		return err
	}

	if settings.PostSleep > 0 {
		log.Info("sleeping before exit", slog.Duration("duration", settings.PostSleep))
		select {
		case <-time.After(settings.PostSleep):
		case <-ctx.Done():
		}
	}
	if stats.Failed > 0 {
		log.Error("run finished with failures", slog.Int("failed", stats.Failed))
		os.Exit(1)
	}
	return nil
}

func loadValidator(path string) (*schema.Validator, error) {
	if path == "" {
		return schema.Default(), nil
	}
	v, err := schema.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return v, nil
}
