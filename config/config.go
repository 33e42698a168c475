// Package config assembles runtime settings from the environment and an
// optional YAML tuning profile. Environment variables mirror the container
// contract: input/output come from mounted volumes and every knob has a
// working default so the binary runs with no configuration at all.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings carries the runtime configuration for a processing run.
type Settings struct {
	// InputDir is scanned for *.pdf files. A path ending in .pdf selects
	// single-file mode instead.
	InputDir string
	// OutputDir receives one <stem>.json per input file.
	OutputDir string
	// Workers bounds concurrent file processing.
	Workers int
	// SchemaPath points at the output contract; empty uses the embedded copy.
	SchemaPath string
	// RulesFile points at an optional JavaScript filter script.
	RulesFile string
	// OCREnabled turns on image recognition for pages without text.
	OCREnabled bool
	// PostSleep keeps the process alive after a run, for containers whose
	// orchestrator restarts exited tasks.
	PostSleep time.Duration
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is "json" or "text".
	LogFormat string
	// Profile holds detector tuning loaded from TUNING_FILE, if set.
	Profile *Profile
}

// Load reads .env (when present), then the environment, then the optional
// tuning profile. Missing .env is not an error.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Settings{}, fmt.Errorf("load .env: %w", err)
	}

	s := Settings{
		InputDir:   envString("INPUT_DIR", "/app/input"),
		OutputDir:  envString("OUTPUT_DIR", "/app/output"),
		SchemaPath: envString("SCHEMA_PATH", ""),
		RulesFile:  envString("RULES_FILE", ""),
		LogLevel:   envString("LOG_LEVEL", "info"),
		LogFormat:  envString("LOG_FORMAT", "json"),
	}

	var err error
	if s.Workers, err = envInt("WORKERS", runtime.GOMAXPROCS(0)); err != nil {
		return Settings{}, err
	}
	if s.Workers < 1 {
		s.Workers = 1
	}
	if s.OCREnabled, err = envBool("OCR_ENABLED", false); err != nil {
		return Settings{}, err
	}
	if s.PostSleep, err = envDuration("POST_SLEEP", 0); err != nil {
		return Settings{}, err
	}

	if path := os.Getenv("TUNING_FILE"); path != "" {
		p, err := LoadProfile(path)
		if err != nil {
			return Settings{}, err
		}
		s.Profile = &p
	}
	return s, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return b, nil
}

// envDuration accepts Go duration strings and bare integers (seconds), the
// latter for compatibility with plain shell configuration.
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return d, nil
}
