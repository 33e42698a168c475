// Package parser turns PDF bytes into a raw object graph. It drives the
// scanner and xref layers: the xref table says where objects live, the
// loader reads them, and the result is a raw.Document keyed by reference.
package parser

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/recovery"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/scanner"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/xref"
)

type Config struct {
	Scanner    scanner.Config
	XRef       xref.ResolverConfig
	Recovery   recovery.Strategy
	MaxObjects int
}

// New returns a parser for complete documents.
func New(cfg Config) raw.Parser {
	if cfg.MaxObjects <= 0 {
		cfg.MaxObjects = 1 << 20
	}
	if cfg.Scanner.Recovery == nil {
		cfg.Scanner.Recovery = cfg.Recovery
	}
	if cfg.XRef.Recovery == nil {
		cfg.XRef.Recovery = cfg.Recovery
	}
	return &docParser{cfg: cfg}
}

type docParser struct {
	cfg Config
}

var headerRe = regexp.MustCompile(`%PDF-(\d+\.\d+)`)

func (p *docParser) Parse(ctx context.Context, r io.ReaderAt) (*raw.Document, error) {
	version, err := readHeader(r)
	if err != nil {
		if p.fail(err, recovery.Location{Component: "parser:header"}) {
			return nil, err
		}
		version = "1.4"
	}

	resolver := xref.NewResolver(p.cfg.XRef)
	tbl, err := resolver.Resolve(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("resolve xref: %w", err)
	}

	doc := &raw.Document{
		Objects: make(map[raw.ObjectRef]raw.Object),
		Trailer: resolver.Trailer(),
		Version: version,
	}

	ld := newLoader(r, tbl, p.cfg)
	nums := tbl.Objects()
	if len(nums) > p.cfg.MaxObjects {
		return nil, fmt.Errorf("object count %d exceeds limit %d", len(nums), p.cfg.MaxObjects)
	}
	for _, num := range nums {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		obj, gen, err := ld.load(ctx, num)
		if err != nil {
			if p.fail(err, recovery.Location{ObjectNum: num, Component: "parser:object"}) {
				return nil, fmt.Errorf("load object %d: %w", num, err)
			}
			continue
		}
		doc.Objects[raw.ObjectRef{Num: num, Gen: gen}] = obj
	}

	p.fillMetadata(doc)
	p.applyCatalogVersion(doc)
	return doc, nil
}

// fail reports err to the recovery strategy and says whether to abort.
func (p *docParser) fail(err error, loc recovery.Location) bool {
	if p.cfg.Recovery == nil {
		return true
	}
	return p.cfg.Recovery.OnError(err, loc) == recovery.ActionFail
}

// readHeader finds the %PDF-m.n marker within the first kilobyte. Some
// producers put junk before it, which readers are expected to tolerate.
func readHeader(r io.ReaderAt) (string, error) {
	buf := make([]byte, 1024)
	n, err := r.ReadAt(buf, 0)
	if n == 0 && err != nil {
		return "", err
	}
	m := headerRe.FindSubmatch(buf[:n])
	if m == nil {
		return "", fmt.Errorf("PDF header not found")
	}
	return string(m[1]), nil
}

func (p *docParser) fillMetadata(doc *raw.Document) {
	if doc.Trailer == nil {
		return
	}
	infoObj, ok := doc.Trailer.Get(raw.NameObj{Val: "Info"})
	if !ok {
		return
	}
	info, ok := doc.Resolve(infoObj).(raw.Dictionary)
	if !ok {
		return
	}
	get := func(key string) string {
		obj, ok := info.Get(raw.NameObj{Val: key})
		if !ok {
			return ""
		}
		s, ok := doc.Resolve(obj).(raw.String)
		if !ok {
			return ""
		}
		return DecodeTextString(s.Value())
	}
	doc.Metadata.Title = get("Title")
	doc.Metadata.Author = get("Author")
	doc.Metadata.Subject = get("Subject")
	doc.Metadata.Creator = get("Creator")
	doc.Metadata.Producer = get("Producer")
	if kw := get("Keywords"); kw != "" {
		for _, part := range strings.FieldsFunc(kw, func(r rune) bool { return r == ',' || r == ';' }) {
			if part = strings.TrimSpace(part); part != "" {
				doc.Metadata.Keywords = append(doc.Metadata.Keywords, part)
			}
		}
	}
}

// applyCatalogVersion honors a /Version entry in the catalog, which
// overrides the header when it names a later version.
func (p *docParser) applyCatalogVersion(doc *raw.Document) {
	if doc.Trailer == nil {
		return
	}
	rootObj, ok := doc.Trailer.Get(raw.NameObj{Val: "Root"})
	if !ok {
		return
	}
	catalog, ok := doc.Resolve(rootObj).(raw.Dictionary)
	if !ok {
		return
	}
	if v, ok := catalog.Get(raw.NameObj{Val: "Version"}); ok {
		if name, ok := doc.Resolve(v).(raw.Name); ok && name.Value() > doc.Version {
			doc.Version = name.Value()
		}
	}
}
