// Package decoded wraps a raw document with filter-decoded stream payloads.
// Extraction code works against this layer so it never sees compressed bytes.
package decoded

import (
	"context"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
)

// Document is a raw document whose streams have been run through their
// filter chains. Streams that failed to decode are listed in Failed.
type Document struct {
	Raw     *raw.Document
	Streams map[raw.ObjectRef][]byte
	Failed  map[raw.ObjectRef]error
}

// StreamData returns the decoded payload for a stream object reference.
func (d *Document) StreamData(ref raw.ObjectRef) ([]byte, bool) {
	data, ok := d.Streams[ref]
	return data, ok
}

// Resolve follows references through the underlying raw document.
func (d *Document) Resolve(obj raw.Object) raw.Object {
	return d.Raw.Resolve(obj)
}

// Decoder produces a decoded document from a raw one.
type Decoder interface {
	Decode(ctx context.Context, doc *raw.Document) (*Document, error)
}
