package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/filters"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/scanner"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/xref"
)

// loader reads individual indirect objects, directly addressed or packed
// into object streams. Results are cached per object number.
type loader struct {
	r       io.ReaderAt
	tbl     xref.Table
	cfg     Config
	cache   map[int]loaded
	objStms map[int]*objStm
	filters *filters.Pipeline
}

type loaded struct {
	obj raw.Object
	gen int
}

// objStm is a decoded object stream with its member offset table.
type objStm struct {
	data    []byte
	offsets map[int]int64
}

func newLoader(r io.ReaderAt, tbl xref.Table, cfg Config) *loader {
	return &loader{
		r:       r,
		tbl:     tbl,
		cfg:     cfg,
		cache:   make(map[int]loaded),
		objStms: make(map[int]*objStm),
		filters: filters.NewDefault(filters.Limits{MaxDecompressedSize: cfg.Scanner.MaxStreamLength}),
	}
}

func (l *loader) load(ctx context.Context, num int) (raw.Object, int, error) {
	if c, ok := l.cache[num]; ok {
		return c.obj, c.gen, nil
	}
	if offset, gen, ok := l.tbl.Lookup(num); ok {
		obj, err := l.parseAt(ctx, offset, num)
		if err != nil {
			return nil, 0, err
		}
		l.cache[num] = loaded{obj: obj, gen: gen}
		return obj, gen, nil
	}
	if streamNum, idx, ok := l.tbl.ObjStream(num); ok {
		obj, err := l.loadFromObjStm(ctx, streamNum, num, idx)
		if err != nil {
			return nil, 0, err
		}
		l.cache[num] = loaded{obj: obj}
		return obj, 0, nil
	}
	return nil, 0, fmt.Errorf("object %d not in xref", num)
}

// parseAt reads "num gen obj <object> endobj" at a byte offset.
func (l *loader) parseAt(ctx context.Context, offset int64, wantNum int) (raw.Object, error) {
	sc := scanner.New(l.r, l.cfg.Scanner)
	if err := sc.SeekTo(offset); err != nil {
		return nil, err
	}
	num, _, err := readObjHeader(sc)
	if err != nil {
		return nil, err
	}
	if num != wantNum {
		return nil, fmt.Errorf("offset holds object %d, expected %d", num, wantNum)
	}

	obj, err := nextObject(sc)
	if err != nil {
		return nil, err
	}
	dict, ok := obj.(*raw.DictObj)
	if !ok {
		return obj, nil
	}

	// A dictionary may be a stream header. Resolve /Length before letting
	// the scanner consume the payload; producers routinely make it indirect.
	length, lerr := l.resolveLength(ctx, dict)
	if lerr == nil && length >= 0 {
		sc.SetStreamLength(length)
	}
	tok, err := sc.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dict, nil
		}
		return nil, err
	}
	if tok.Type == scanner.TokenStream {
		return raw.NewStream(dict, tok.Bytes), nil
	}
	return dict, nil
}

// resolveLength returns the stream length, following one indirect hop.
// Returns -1 when the dictionary has no usable /Length.
func (l *loader) resolveLength(ctx context.Context, dict raw.Dictionary) (int64, error) {
	obj, ok := dict.Get(raw.NameObj{Val: "Length"})
	if !ok {
		return -1, nil
	}
	if n, ok := obj.(raw.Number); ok {
		return n.Int(), nil
	}
	ref, ok := obj.(raw.Reference)
	if !ok {
		return -1, nil
	}
	offset, _, found := l.tbl.Lookup(ref.Ref().Num)
	if !found {
		return -1, fmt.Errorf("length object %d not in xref", ref.Ref().Num)
	}
	sc := scanner.New(l.r, l.cfg.Scanner)
	if err := sc.SeekTo(offset); err != nil {
		return -1, err
	}
	if _, _, err := readObjHeader(sc); err != nil {
		return -1, err
	}
	tok, err := sc.Next()
	if err != nil {
		return -1, err
	}
	if tok.Type != scanner.TokenNumber {
		return -1, errors.New("length object is not a number")
	}
	return tok.Int, nil
}

// loadFromObjStm extracts one member of an object stream (PDF 7.5.7).
func (l *loader) loadFromObjStm(ctx context.Context, streamNum, num, idx int) (raw.Object, error) {
	stm, err := l.objStream(ctx, streamNum)
	if err != nil {
		return nil, err
	}
	offset, ok := stm.offsets[num]
	if !ok {
		return nil, fmt.Errorf("object %d not listed in object stream %d", num, streamNum)
	}
	sc := scanner.New(bytes.NewReader(stm.data), l.cfg.Scanner)
	if err := sc.SeekTo(offset); err != nil {
		return nil, err
	}
	return nextObject(sc)
}

func (l *loader) objStream(ctx context.Context, streamNum int) (*objStm, error) {
	if stm, ok := l.objStms[streamNum]; ok {
		return stm, nil
	}
	obj, _, err := l.load(ctx, streamNum)
	if err != nil {
		return nil, fmt.Errorf("load object stream %d: %w", streamNum, err)
	}
	stream, ok := obj.(raw.Stream)
	if !ok {
		return nil, fmt.Errorf("object %d is not a stream", streamNum)
	}
	dict := stream.Dictionary()

	data := stream.RawData()
	names, params := filters.ExtractFilters(dict)
	if len(names) > 0 {
		data, err = l.filters.Decode(ctx, data, names, params)
		if err != nil {
			return nil, fmt.Errorf("decode object stream %d: %w", streamNum, err)
		}
	}

	n := dictIntValue(dict, "N")
	first := dictIntValue(dict, "First")
	if n <= 0 || first <= 0 || first > int64(len(data)) {
		return nil, fmt.Errorf("object stream %d has bad N/First", streamNum)
	}

	// The header is N pairs of "objnum offset" relative to /First.
	stm := &objStm{data: data, offsets: make(map[int]int64, n)}
	sc := scanner.New(bytes.NewReader(data[:first]), l.cfg.Scanner)
	for i := int64(0); i < n; i++ {
		numTok, err := sc.Next()
		if err != nil {
			return nil, fmt.Errorf("object stream %d header truncated: %w", streamNum, err)
		}
		offTok, err := sc.Next()
		if err != nil {
			return nil, fmt.Errorf("object stream %d header truncated: %w", streamNum, err)
		}
		if numTok.Type != scanner.TokenNumber || offTok.Type != scanner.TokenNumber {
			return nil, fmt.Errorf("object stream %d header malformed", streamNum)
		}
		stm.offsets[int(numTok.Int)] = first + offTok.Int
	}
	l.objStms[streamNum] = stm
	return stm, nil
}

func readObjHeader(sc scanner.Scanner) (num, gen int, err error) {
	tok, err := sc.Next()
	if err != nil {
		return 0, 0, err
	}
	if tok.Type != scanner.TokenNumber {
		return 0, 0, fmt.Errorf("expected object number, got %q", tok.Str)
	}
	num = int(tok.Int)
	tok, err = sc.Next()
	if err != nil {
		return 0, 0, err
	}
	if tok.Type != scanner.TokenNumber {
		return 0, 0, errors.New("expected generation number")
	}
	gen = int(tok.Int)
	tok, err = sc.Next()
	if err != nil {
		return 0, 0, err
	}
	if tok.Type != scanner.TokenKeyword || tok.Str != "obj" {
		return 0, 0, fmt.Errorf("expected obj keyword, got %q", tok.Str)
	}
	return num, gen, nil
}

func dictIntValue(dict raw.Dictionary, key string) int64 {
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
