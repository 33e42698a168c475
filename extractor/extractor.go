// Package extractor turns a PDF into page-level content: positioned text
// blocks with font attributes, embedded bookmark outlines, page images,
// and document metadata.
package extractor

import (
	"context"
	"fmt"
	"io"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/contentstream"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/filters"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/decoded"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/parser"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/recovery"
)

type Config struct {
	Parser   parser.Config
	Decoder  decoded.Config
	Recovery recovery.Strategy
	MaxPages int
}

// Document is the extracted view of one PDF.
type Document struct {
	Pages     []Page
	Bookmarks []Bookmark
	Metadata  raw.DocumentMetadata
	Version   string
}

// Page holds the content of a single page. Number is 1-based.
type Page struct {
	Number int
	Width  float64
	Height float64
	Blocks []TextBlock
	Images []Image
}

// TextBlock is one run of text with uniform font attributes.
type TextBlock struct {
	Text     string
	FontName string
	FontSize float64
	Bold     bool
	Italic   bool
	X, Y     float64
	Page     int
}

// Image is an image XObject referenced by a page. Only DCT (JPEG) data is
// carried through; other formats are noted but not converted.
type Image struct {
	Data   []byte
	Format string
}

type Extractor struct {
	cfg Config
}

func New(cfg Config) *Extractor {
	if cfg.Recovery == nil {
		cfg.Recovery = recovery.NewLenientStrategy()
	}
	if cfg.Parser.Recovery == nil {
		cfg.Parser.Recovery = cfg.Recovery
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 10000
	}
	return &Extractor{cfg: cfg}
}

func (e *Extractor) Extract(ctx context.Context, r io.ReaderAt) (*Document, error) {
	rawDoc, err := parser.New(e.cfg.Parser).Parse(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	dec, err := decoded.NewDecoder(e.cfg.Decoder).Decode(ctx, rawDoc)
	if err != nil {
		return nil, fmt.Errorf("decode streams: %w", err)
	}
	return e.ExtractDecoded(ctx, dec)
}

// ExtractDecoded runs extraction over an already-decoded document.
func (e *Extractor) ExtractDecoded(ctx context.Context, dec *decoded.Document) (*Document, error) {
	rawDoc := dec.Raw
	out := &Document{
		Metadata: rawDoc.Metadata,
		Version:  rawDoc.Version,
	}

	catalog, err := e.catalog(rawDoc)
	if err != nil {
		return nil, err
	}
	pageRefs, err := e.collectPages(rawDoc, catalog)
	if err != nil {
		return nil, err
	}

	pageIndex := make(map[raw.ObjectRef]int, len(pageRefs))
	for i, pr := range pageRefs {
		pageIndex[pr.ref] = i + 1
	}

	interp := contentstream.NewInterpreter(contentstream.Config{Recovery: e.cfg.Recovery})
	for i, pr := range pageRefs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := Page{Number: i + 1}
		page.Width, page.Height = mediaBoxSize(rawDoc, pr.dict, pr.inherited)

		fonts := loadFonts(ctx, dec, pr.resources(rawDoc))
		content := pageContent(dec, pr.dict)
		spans, serr := interp.Spans(ctx, content)
		if serr != nil {
			if e.fail(serr, i+1) {
				return nil, fmt.Errorf("page %d content: %w", i+1, serr)
			}
		}
		page.Blocks = spansToBlocks(spans, fonts, i+1)
		page.Images = pageImages(dec, pr.resources(rawDoc))
		out.Pages = append(out.Pages, page)
	}

	out.Bookmarks = extractBookmarks(rawDoc, catalog, pageIndex)
	return out, nil
}

func (e *Extractor) fail(err error, page int) bool {
	if e.cfg.Recovery == nil {
		return true
	}
	loc := recovery.Location{Component: "extractor", ObjectNum: page}
	return e.cfg.Recovery.OnError(err, loc) == recovery.ActionFail
}

func (e *Extractor) catalog(doc *raw.Document) (raw.Dictionary, error) {
	if doc.Trailer == nil {
		return nil, fmt.Errorf("document has no trailer")
	}
	rootObj, ok := doc.Trailer.Get(raw.NameObj{Val: "Root"})
	if !ok {
		return nil, fmt.Errorf("trailer has no Root")
	}
	catalog, ok := doc.Resolve(rootObj).(raw.Dictionary)
	if !ok {
		return nil, fmt.Errorf("Root is not a dictionary")
	}
	return catalog, nil
}

// pageRef is a leaf of the page tree together with inherited attributes.
type pageRef struct {
	ref       raw.ObjectRef
	dict      raw.Dictionary
	inherited raw.Dictionary
}

func (pr pageRef) resources(doc *raw.Document) raw.Dictionary {
	if obj, ok := pr.dict.Get(raw.NameObj{Val: "Resources"}); ok {
		if d, ok := doc.Resolve(obj).(raw.Dictionary); ok {
			return d
		}
	}
	if pr.inherited != nil {
		if obj, ok := pr.inherited.Get(raw.NameObj{Val: "Resources"}); ok {
			if d, ok := doc.Resolve(obj).(raw.Dictionary); ok {
				return d
			}
		}
	}
	return nil
}

// collectPages walks the page tree depth first, carrying inheritable
// attributes down and guarding against reference cycles.
func (e *Extractor) collectPages(doc *raw.Document, catalog raw.Dictionary) ([]pageRef, error) {
	pagesObj, ok := catalog.Get(raw.NameObj{Val: "Pages"})
	if !ok {
		return nil, fmt.Errorf("catalog has no Pages")
	}
	var out []pageRef
	visited := make(map[raw.ObjectRef]bool)

	var walk func(obj raw.Object, inherited raw.Dictionary) error
	walk = func(obj raw.Object, inherited raw.Dictionary) error {
		if len(out) >= e.cfg.MaxPages {
			return nil
		}
		var ref raw.ObjectRef
		if r, ok := obj.(raw.Reference); ok {
			ref = r.Ref()
			if visited[ref] {
				return nil
			}
			visited[ref] = true
		}
		node, ok := doc.Resolve(obj).(raw.Dictionary)
		if !ok {
			return nil
		}
		nodeType := ""
		if t, ok := node.Get(raw.NameObj{Val: "Type"}); ok {
			if n, ok := doc.Resolve(t).(raw.Name); ok {
				nodeType = n.Value()
			}
		}
		kidsObj, hasKids := node.Get(raw.NameObj{Val: "Kids"})
		if nodeType == "Page" || (!hasKids && nodeType != "Pages") {
			out = append(out, pageRef{ref: ref, dict: node, inherited: mergeInherited(node, inherited)})
			return nil
		}
		kids, ok := doc.Resolve(kidsObj).(raw.Array)
		if !ok {
			return nil
		}
		next := mergeInherited(node, inherited)
		for i := 0; i < kids.Len(); i++ {
			kid, _ := kids.Get(i)
			if err := walk(kid, next); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(pagesObj, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Inheritable page attributes, PDF 7.7.3.4.
var inheritable = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

func mergeInherited(node, parent raw.Dictionary) raw.Dictionary {
	merged := raw.Dict()
	if parent != nil {
		for _, key := range inheritable {
			if v, ok := parent.Get(raw.NameObj{Val: key}); ok {
				merged.Set(raw.NameObj{Val: key}, v)
			}
		}
	}
	for _, key := range inheritable {
		if v, ok := node.Get(raw.NameObj{Val: key}); ok {
			merged.Set(raw.NameObj{Val: key}, v)
		}
	}
	return merged
}

func mediaBoxSize(doc *raw.Document, page, inherited raw.Dictionary) (w, h float64) {
	w, h = 612, 792 // US Letter default
	box, ok := page.Get(raw.NameObj{Val: "MediaBox"})
	if !ok && inherited != nil {
		box, ok = inherited.Get(raw.NameObj{Val: "MediaBox"})
	}
	if !ok {
		return w, h
	}
	arr, ok := doc.Resolve(box).(raw.Array)
	if !ok || arr.Len() < 4 {
		return w, h
	}
	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		obj, _ := arr.Get(i)
		n, ok := doc.Resolve(obj).(raw.Number)
		if !ok {
			return w, h
		}
		vals[i] = n.Float()
	}
	return vals[2] - vals[0], vals[3] - vals[1]
}

// pageContent concatenates a page's content streams. /Contents may be a
// single stream or an array of streams.
func pageContent(dec *decoded.Document, page raw.Dictionary) []byte {
	obj, ok := page.Get(raw.NameObj{Val: "Contents"})
	if !ok {
		return nil
	}
	var refs []raw.ObjectRef
	switch c := obj.(type) {
	case raw.Reference:
		if arr, ok := dec.Resolve(c).(raw.Array); ok {
			refs = arrayRefs(arr)
		} else {
			refs = []raw.ObjectRef{c.Ref()}
		}
	case raw.Array:
		refs = arrayRefs(c)
	}
	var out []byte
	for _, ref := range refs {
		if data, ok := dec.StreamData(ref); ok {
			out = append(out, data...)
			out = append(out, '\n')
		}
	}
	return out
}

func arrayRefs(arr raw.Array) []raw.ObjectRef {
	var refs []raw.ObjectRef
	for i := 0; i < arr.Len(); i++ {
		if obj, ok := arr.Get(i); ok {
			if r, ok := obj.(raw.Reference); ok {
				refs = append(refs, r.Ref())
			}
		}
	}
	return refs
}

// pageImages collects image XObjects from the page resources. JPEG
// payloads pass through intact for downstream OCR.
func pageImages(dec *decoded.Document, resources raw.Dictionary) []Image {
	if resources == nil {
		return nil
	}
	xobjObj, ok := resources.Get(raw.NameObj{Val: "XObject"})
	if !ok {
		return nil
	}
	xobjs, ok := dec.Resolve(xobjObj).(raw.Dictionary)
	if !ok {
		return nil
	}
	var out []Image
	for _, key := range xobjs.Keys() {
		obj, _ := xobjs.Get(key)
		ref, ok := obj.(raw.Reference)
		if !ok {
			continue
		}
		stream, ok := dec.Resolve(ref).(raw.Stream)
		if !ok {
			continue
		}
		dict := stream.Dictionary()
		if sub, ok := dict.Get(raw.NameObj{Val: "Subtype"}); ok {
			if n, ok := sub.(raw.Name); !ok || n.Value() != "Image" {
				continue
			}
		} else {
			continue
		}
		format := "raw"
		names, _ := filters.ExtractFilters(dict)
		for _, n := range names {
			if n == "DCTDecode" {
				format = "jpeg"
			}
		}
		if data, ok := dec.StreamData(ref.Ref()); ok {
			out = append(out, Image{Data: data, Format: format})
		}
	}
	return out
}
