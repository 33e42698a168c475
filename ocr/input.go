package ocr

import (
	"fmt"
	"strconv"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/extractor"
)

// InputOption mutates an OCR input before submission.
type InputOption func(*Input)

// WithLanguages sets language hints on the input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI overrides the DPI value on the input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithMetadata sets provider-specific metadata for the input. The map is
// copied so later caller mutation does not leak into the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// WithTesseractPSM sets the page segmentation mode variable for Tesseract.
// See https://tesseract-ocr.github.io/tessdoc/ImproveQuality.html#page-segmentation-method for values.
func WithTesseractPSM(mode int) InputOption {
	return func(in *Input) {
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata["tessedit_pageseg_mode"] = strconv.Itoa(mode)
	}
}

// InputFromImage converts an extracted page image into an OCR input. The
// generated ID is stable for an image index on a page so results can be
// correlated back to their source.
func InputFromImage(pageIndex, imageIndex int, img extractor.Image, opts ...InputOption) Input {
	in := Input{
		ID:        fmt.Sprintf("page-%d-img-%d", pageIndex, imageIndex),
		Image:     img.Data,
		Format:    img.Format,
		PageIndex: pageIndex,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}
