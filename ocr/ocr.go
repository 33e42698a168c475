// Package ocr defines a small abstraction for plugging OCR engines into the
// outline pipeline. Scanned documents produce pages with images but no text
// operators; recognition over those images is the only way to recover block
// text for heading detection. The interfaces are provider-agnostic so engines
// can be backed by native libraries or remote services.
package ocr

import (
	"context"
	"fmt"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/extractor"
)

// Input encapsulates a single image submitted for recognition.
type Input struct {
	// ID is an optional caller-provided identifier echoed back in the Result.
	ID string
	// Image is the encoded image payload.
	Image []byte
	// Format declares the image content type (e.g. "jpeg", "png").
	Format string
	// PageIndex links the input back to the zero-based page it came from.
	PageIndex int
	// DPI carries the effective dots-per-inch; zero means unknown.
	DPI int
	// Languages lists trained-data hints (e.g. "eng", "deu").
	Languages []string
	// Metadata passes engine-specific knobs (e.g. "tessedit_pageseg_mode")
	// without hard-coding them into the API surface.
	Metadata map[string]string
}

// Result captures recognition output for a single input image.
type Result struct {
	// InputID mirrors the Input.ID that produced this result.
	InputID string
	// PlainText contains the linearized text extracted from the image.
	PlainText string
	// Confidence is the mean word confidence in [0,1]; zero means unknown.
	Confidence float64
}

// Engine is the provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

var defaultEngine Engine = noopEngine{}

// DefaultEngine returns the process-wide engine. Without a provider import it
// is a no-op that returns empty results.
func DefaultEngine() Engine { return defaultEngine }

// SetDefaultEngine installs the process-wide engine. Provider packages call
// this from init.
func SetDefaultEngine(engine Engine) { defaultEngine = engine }

// RecognizePages runs recognition over every image on the given pages and
// returns results in page order. Pages without images contribute nothing.
func RecognizePages(ctx context.Context, engine Engine, pages []extractor.Page, opts ...InputOption) ([]Result, error) {
	var results []Result
	for _, page := range pages {
		for i, img := range page.Images {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			in := InputFromImage(page.Number-1, i, img, opts...)
			res, err := engine.Recognize(ctx, in)
			if err != nil {
				return nil, fmt.Errorf("recognize %s: %w", in.ID, err)
			}
			results = append(results, res)
		}
	}
	return results, nil
}

type noopEngine struct{}

func (noopEngine) Name() string { return "noop" }

func (noopEngine) Recognize(ctx context.Context, input Input) (Result, error) {
	return Result{InputID: input.ID}, nil
}
