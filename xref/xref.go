// Package xref locates and parses cross-reference information: classic
// tables, xref streams (PDF 1.5+), hybrid files, and incremental-update
// chains. A repair scan reconstructs the table for files with broken xrefs.
package xref

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/filters"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/recovery"
)

// Table maps object numbers to their location in the file: either a direct
// byte offset or a slot inside an object stream.
type Table interface {
	Lookup(objNum int) (offset int64, gen int, found bool)
	ObjStream(objNum int) (streamNum int, idx int, ok bool)
	Objects() []int
	Type() string
}

// Resolver locates and parses xref information in a PDF.
type Resolver interface {
	Resolve(ctx context.Context, r io.ReaderAt) (Table, error)
	Trailer() raw.Dictionary
}

type ResolverConfig struct {
	MaxXRefDepth int
	Recovery     recovery.Strategy
}

// NewResolver returns a resolver handling both table and stream xrefs.
func NewResolver(cfg ResolverConfig) Resolver {
	if cfg.MaxXRefDepth <= 0 {
		cfg.MaxXRefDepth = 32
	}
	return &resolver{cfg: cfg}
}

type entry struct {
	offset    int64
	gen       int
	inStream  bool
	streamNum int
	streamIdx int
}

type table struct {
	entries map[int]entry
	kind    string
}

func (t *table) Lookup(objNum int) (int64, int, bool) {
	e, ok := t.entries[objNum]
	if !ok || e.inStream {
		return 0, 0, false
	}
	return e.offset, e.gen, true
}

func (t *table) ObjStream(objNum int) (int, int, bool) {
	e, ok := t.entries[objNum]
	if !ok || !e.inStream {
		return 0, 0, false
	}
	return e.streamNum, e.streamIdx, true
}

func (t *table) Objects() []int {
	nums := make([]int, 0, len(t.entries))
	for n := range t.entries {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

func (t *table) Type() string { return t.kind }

type resolver struct {
	cfg     ResolverConfig
	trailer raw.Dictionary
}

func (r *resolver) Trailer() raw.Dictionary { return r.trailer }

func (r *resolver) Resolve(ctx context.Context, rd io.ReaderAt) (Table, error) {
	data, err := readAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	tbl, err := r.resolveFromStartxref(ctx, data)
	if err == nil {
		return tbl, nil
	}
	if r.cfg.Recovery != nil {
		action := r.cfg.Recovery.OnError(err, recovery.Location{Component: "xref"})
		if action == recovery.ActionFix || action == recovery.ActionSkip {
			return r.repair(ctx, data)
		}
	}
	return nil, err
}

func (r *resolver) resolveFromStartxref(ctx context.Context, data []byte) (Table, error) {
	start := bytes.LastIndex(data, []byte("startxref"))
	if start < 0 {
		return nil, errors.New("startxref not found")
	}
	offset, err := firstInt(data[start+len("startxref"):])
	if err != nil {
		return nil, fmt.Errorf("parse startxref: %w", err)
	}

	tbl := &table{entries: make(map[int]entry)}
	seen := make(map[int64]bool)

	for depth := 0; offset > 0 && depth < r.cfg.MaxXRefDepth; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if offset >= int64(len(data)) {
			return nil, fmt.Errorf("xref offset out of range: %d", offset)
		}
		if seen[offset] {
			break
		}
		seen[offset] = true

		var trailer raw.Dictionary
		var next int64
		var xrefStm int64
		if isClassicTableAt(data, offset) {
			trailer, next, xrefStm, err = r.parseClassicTable(data, offset, tbl)
		} else {
			trailer, next, err = r.parseXRefStream(ctx, data, offset, tbl)
		}
		if err != nil {
			return nil, err
		}
		if r.trailer == nil {
			r.trailer = trailer
		}
		// Hybrid files point at an additional xref stream carrying the
		// compressed-object entries.
		if xrefStm > 0 && !seen[xrefStm] && xrefStm < int64(len(data)) {
			seen[xrefStm] = true
			if _, _, serr := r.parseXRefStream(ctx, data, xrefStm, tbl); serr != nil {
				return nil, serr
			}
		}
		offset = next
	}
	if len(tbl.entries) == 0 {
		return nil, errors.New("no xref entries found")
	}
	if tbl.kind == "" {
		tbl.kind = "table"
	}
	return tbl, nil
}

func isClassicTableAt(data []byte, offset int64) bool {
	rest := data[offset:]
	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\r' || rest[i] == '\n' || rest[i] == '\t') {
		i++
	}
	return bytes.HasPrefix(rest[i:], []byte("xref"))
}

// parseClassicTable reads "xref" subsections followed by a trailer dict.
// Returns the trailer, the /Prev offset, and the /XRefStm offset if present.
func (r *resolver) parseClassicTable(data []byte, offset int64, tbl *table) (raw.Dictionary, int64, int64, error) {
	lines := newLineReader(data[offset:])
	first, ok := lines.next()
	if !ok || strings.TrimSpace(first) != "xref" {
		return nil, 0, 0, errors.New("xref keyword not found at offset")
	}
	if tbl.kind == "" {
		tbl.kind = "table"
	}

	for {
		line, ok := lines.next()
		if !ok {
			return nil, 0, 0, errors.New("unterminated xref table")
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "trailer" {
			break
		}
		var startNum, count int
		if _, err := fmt.Sscanf(line, "%d %d", &startNum, &count); err != nil {
			return nil, 0, 0, fmt.Errorf("bad xref subsection header %q: %w", line, err)
		}
		for i := 0; i < count; i++ {
			entryLine, ok := lines.next()
			if !ok {
				return nil, 0, 0, errors.New("truncated xref subsection")
			}
			entryLine = strings.TrimSpace(entryLine)
			if entryLine == "" {
				i--
				continue
			}
			var off int64
			var gen int
			var kind string
			if _, err := fmt.Sscanf(entryLine, "%d %d %s", &off, &gen, &kind); err != nil {
				return nil, 0, 0, fmt.Errorf("bad xref entry %q: %w", entryLine, err)
			}
			objNum := startNum + i
			if kind != "n" {
				continue
			}
			// Newest-first resolution: earlier tables in the chain win.
			if _, exists := tbl.entries[objNum]; !exists {
				tbl.entries[objNum] = entry{offset: off, gen: gen}
			}
		}
	}

	trailer, err := parseDictAt(data, offset+int64(lines.pos), r.cfg.Recovery)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("parse trailer: %w", err)
	}
	return trailer, dictInt(trailer, "Prev"), dictInt(trailer, "XRefStm"), nil
}

// parseXRefStream reads an "N G obj << /Type /XRef ... >> stream" object.
func (r *resolver) parseXRefStream(ctx context.Context, data []byte, offset int64, tbl *table) (raw.Dictionary, int64, error) {
	obj, err := parseIndirectAt(data, offset, r.cfg.Recovery)
	if err != nil {
		return nil, 0, fmt.Errorf("parse xref stream object: %w", err)
	}
	stream, ok := obj.(raw.Stream)
	if !ok {
		return nil, 0, errors.New("xref offset does not point at a stream")
	}
	dict := stream.Dictionary()

	payload := stream.RawData()
	names, params := filters.ExtractFilters(dict)
	if len(names) > 0 {
		decoded, err := filters.NewDefault(filters.Limits{}).Decode(ctx, payload, names, params)
		if err != nil {
			return nil, 0, fmt.Errorf("decode xref stream: %w", err)
		}
		payload = decoded
	}

	widths, err := wArray(dict)
	if err != nil {
		return nil, 0, err
	}
	rowLen := widths[0] + widths[1] + widths[2]
	if rowLen <= 0 {
		return nil, 0, errors.New("xref stream has zero row width")
	}

	index := indexPairs(dict)
	if tbl.kind == "" || tbl.kind == "table" {
		if len(tbl.entries) == 0 {
			tbl.kind = "stream"
		}
	}

	pos := 0
	for p := 0; p+1 < len(index); p += 2 {
		start, count := index[p], index[p+1]
		for i := 0; i < count; i++ {
			if pos+rowLen > len(payload) {
				return nil, 0, errors.New("xref stream data truncated")
			}
			row := payload[pos : pos+rowLen]
			pos += rowLen

			typ := 1 // default when W[0] == 0
			if widths[0] > 0 {
				typ = int(beInt(row[:widths[0]]))
			}
			f2 := beInt(row[widths[0] : widths[0]+widths[1]])
			f3 := beInt(row[widths[0]+widths[1]:])
			objNum := start + i
			if _, exists := tbl.entries[objNum]; exists {
				continue
			}
			switch typ {
			case 1:
				tbl.entries[objNum] = entry{offset: f2, gen: int(f3)}
			case 2:
				tbl.entries[objNum] = entry{inStream: true, streamNum: int(f2), streamIdx: int(f3)}
			}
		}
	}
	return dict, dictInt(dict, "Prev"), nil
}

func wArray(dict raw.Dictionary) ([3]int, error) {
	var widths [3]int
	obj, ok := dict.Get(raw.NameObj{Val: "W"})
	if !ok {
		return widths, errors.New("xref stream missing W")
	}
	arr, ok := obj.(*raw.ArrayObj)
	if !ok || arr.Len() < 3 {
		return widths, errors.New("xref stream W malformed")
	}
	for i := 0; i < 3; i++ {
		n, ok := arr.Items[i].(raw.Number)
		if !ok {
			return widths, errors.New("xref stream W malformed")
		}
		widths[i] = int(n.Int())
	}
	return widths, nil
}

func indexPairs(dict raw.Dictionary) []int {
	if obj, ok := dict.Get(raw.NameObj{Val: "Index"}); ok {
		if arr, ok := obj.(*raw.ArrayObj); ok {
			pairs := make([]int, 0, arr.Len())
			for _, item := range arr.Items {
				if n, ok := item.(raw.Number); ok {
					pairs = append(pairs, int(n.Int()))
				}
			}
			if len(pairs) >= 2 {
				return pairs
			}
		}
	}
	return []int{0, int(dictInt64(dict, "Size"))}
}

func beInt(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

func dictInt(dict raw.Dictionary, key string) int64 { return dictInt64(dict, key) }

func dictInt64(dict raw.Dictionary, key string) int64 {
	if dict == nil {
		return 0
	}
	if obj, ok := dict.Get(raw.NameObj{Val: key}); ok {
		if n, ok := obj.(raw.Number); ok {
			return n.Int()
		}
	}
	return 0
}

func firstInt(data []byte) (int64, error) {
	lines := newLineReader(data)
	for {
		line, ok := lines.next()
		if !ok {
			return 0, errors.New("no value found")
		}
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		return strconv.ParseInt(text, 10, 64)
	}
}

// lineReader splits on CR, LF, or CRLF while tracking the byte position,
// which bufio.Scanner does not expose.
type lineReader struct {
	data []byte
	pos  int
}

func newLineReader(data []byte) *lineReader { return &lineReader{data: data} }

func (lr *lineReader) next() (string, bool) {
	if lr.pos >= len(lr.data) {
		return "", false
	}
	start := lr.pos
	for lr.pos < len(lr.data) && lr.data[lr.pos] != '\r' && lr.data[lr.pos] != '\n' {
		lr.pos++
	}
	line := string(lr.data[start:lr.pos])
	if lr.pos < len(lr.data) {
		if lr.data[lr.pos] == '\r' {
			lr.pos++
			if lr.pos < len(lr.data) && lr.data[lr.pos] == '\n' {
				lr.pos++
			}
		} else {
			lr.pos++
		}
	}
	return line, true
}

func readAll(r io.ReaderAt) ([]byte, error) {
	if br, ok := r.(*bytes.Reader); ok {
		out := make([]byte, br.Size())
		if _, err := br.ReadAt(out, 0); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return out, nil
	}
	var out []byte
	buf := make([]byte, 256*1024)
	var off int64
	for {
		n, err := r.ReadAt(buf, off)
		out = append(out, buf[:n]...)
		off += int64(n)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		if n == 0 {
			return out, nil
		}
	}
}
