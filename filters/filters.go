// Package filters implements the stream decode filters needed to read
// real-world PDFs: Flate (with predictors), LZW, the ASCII codecs, and
// RunLength. DCTDecode passes through untouched so JPEG payloads stay usable.
package filters

import (
	"bytes"
	"compress/flate"
	"compress/lzw"
	"compress/zlib"
	"context"
	stdascii85 "encoding/ascii85"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
)

type Decoder interface {
	Name() string
	Decode(ctx context.Context, input []byte, params raw.Dictionary) ([]byte, error)
}

type Limits struct {
	MaxDecompressedSize int64
}

type Pipeline struct {
	decoders []Decoder
	limits   Limits
}

// NewPipeline constructs a pipeline with the provided decoders and limits.
func NewPipeline(decoders []Decoder, limits Limits) *Pipeline {
	return &Pipeline{decoders: decoders, limits: limits}
}

// NewDefault returns a pipeline covering every filter this module decodes.
func NewDefault(limits Limits) *Pipeline {
	return NewPipeline([]Decoder{
		NewFlateDecoder(),
		NewLZWDecoder(),
		NewASCII85Decoder(),
		NewASCIIHexDecoder(),
		NewRunLengthDecoder(),
		NewDCTPassthrough(),
	}, limits)
}

func (p *Pipeline) findDecoder(name string) Decoder {
	for _, d := range p.decoders {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// Decode applies the filter chain in order. DecodeParms are matched to
// filters positionally.
func (p *Pipeline) Decode(ctx context.Context, input []byte, filterNames []string, params []raw.Dictionary) ([]byte, error) {
	data := input
	for i, name := range filterNames {
		dec := p.findDecoder(name)
		if dec == nil {
			return nil, fmt.Errorf("unknown filter %q", name)
		}
		var param raw.Dictionary
		if i < len(params) {
			param = params[i]
		}
		out, err := dec.Decode(ctx, data, param)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if p.limits.MaxDecompressedSize > 0 && int64(len(out)) > p.limits.MaxDecompressedSize {
			return nil, errors.New("decompressed size exceeds limit")
		}
		data = out
	}
	return data, nil
}

// ExtractFilters reads Filter and DecodeParms entries from a stream dictionary.
func ExtractFilters(dict raw.Dictionary) ([]string, []raw.Dictionary) {
	var names []string
	var params []raw.Dictionary

	filterObj, ok := dict.Get(raw.NameObj{Val: "Filter"})
	if !ok {
		return names, params
	}
	switch f := filterObj.(type) {
	case raw.Name:
		names = append(names, f.Value())
	case *raw.ArrayObj:
		for _, item := range f.Items {
			if n, ok := item.(raw.Name); ok {
				names = append(names, n.Value())
			}
		}
	}
	if len(names) == 0 {
		return names, params
	}
	if pObj, ok := dict.Get(raw.NameObj{Val: "DecodeParms"}); ok {
		switch p := pObj.(type) {
		case raw.Dictionary:
			params = append(params, p)
		case *raw.ArrayObj:
			for _, item := range p.Items {
				if d, ok := item.(raw.Dictionary); ok {
					params = append(params, d)
				} else {
					params = append(params, nil)
				}
			}
		}
	}
	return names, params
}

func intParam(params raw.Dictionary, key string, def int) int {
	if params == nil {
		return def
	}
	obj, ok := params.Get(raw.NameObj{Val: key})
	if !ok {
		return def
	}
	if n, ok := obj.(raw.Number); ok {
		return int(n.Int())
	}
	return def
}

type flateDecoder struct{}

func NewFlateDecoder() Decoder    { return flateDecoder{} }
func (flateDecoder) Name() string { return "FlateDecode" }

// Decode handles FlateDecode. PDF flate payloads carry a zlib wrapper
// (RFC 1950), but broken producers emit raw deflate, so fall back to that.
func (flateDecoder) Decode(ctx context.Context, in []byte, params raw.Dictionary) ([]byte, error) {
	var out bytes.Buffer
	zr, err := zlib.NewReader(bytes.NewReader(in))
	if err == nil {
		_, err = io.Copy(&out, zr)
		zr.Close()
	}
	if err != nil {
		out.Reset()
		fr := flate.NewReader(bytes.NewReader(in))
		if _, ferr := io.Copy(&out, fr); ferr != nil {
			fr.Close()
			return nil, err
		}
		fr.Close()
	}
	return applyPredictor(out.Bytes(), params)
}

type lzwDecoder struct{}

func NewLZWDecoder() Decoder    { return lzwDecoder{} }
func (lzwDecoder) Name() string { return "LZWDecode" }

func (lzwDecoder) Decode(ctx context.Context, in []byte, params raw.Dictionary) ([]byte, error) {
	if intParam(params, "EarlyChange", 1) == 1 {
		// PDF defaults to early code-length change; handled by the dedicated
		// reader below.
		data, err := lzwEarlyChangeDecode(in)
		if err != nil {
			return nil, err
		}
		return applyPredictor(data, params)
	}
	r := lzw.NewReader(bytes.NewReader(in), lzw.MSB, 8)
	defer r.Close()
	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return applyPredictor(out.Bytes(), params)
}

type ascii85Decoder struct{}

func NewASCII85Decoder() Decoder    { return ascii85Decoder{} }
func (ascii85Decoder) Name() string { return "ASCII85Decode" }

func (ascii85Decoder) Decode(ctx context.Context, in []byte, params raw.Dictionary) ([]byte, error) {
	trimmed := bytes.TrimSpace(in)
	if bytes.HasPrefix(trimmed, []byte("<~")) {
		trimmed = trimmed[2:]
	}
	if i := bytes.Index(trimmed, []byte("~>")); i >= 0 {
		trimmed = trimmed[:i]
	}
	out := make([]byte, len(trimmed)*2)
	n, _, err := stdascii85.Decode(out, trimmed, true)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

type asciiHexDecoder struct{}

func NewASCIIHexDecoder() Decoder    { return asciiHexDecoder{} }
func (asciiHexDecoder) Name() string { return "ASCIIHexDecode" }

func (asciiHexDecoder) Decode(ctx context.Context, in []byte, params raw.Dictionary) ([]byte, error) {
	compact := make([]byte, 0, len(in))
	for _, c := range in {
		if c == '>' {
			break
		}
		if c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20 {
			continue
		}
		compact = append(compact, c)
	}
	// odd length pads with 0 per PDF 7.4.2
	if len(compact)%2 == 1 {
		compact = append(compact, '0')
	}
	result := make([]byte, hex.DecodedLen(len(compact)))
	n, err := hex.Decode(result, compact)
	if err != nil {
		return nil, err
	}
	return result[:n], nil
}

type runLengthDecoder struct{}

func NewRunLengthDecoder() Decoder    { return runLengthDecoder{} }
func (runLengthDecoder) Name() string { return "RunLengthDecode" }

// Decode implements RunLengthDecode per PDF 7.4.5: a length byte n<128 copies
// n+1 literals, n>128 repeats the next byte 257-n times, 128 terminates.
func (runLengthDecoder) Decode(ctx context.Context, in []byte, params raw.Dictionary) ([]byte, error) {
	var out bytes.Buffer
	i := 0
	for i < len(in) {
		n := int(in[i])
		i++
		if n == 128 {
			break
		}
		if n < 128 {
			count := n + 1
			if i+count > len(in) {
				return nil, errors.New("runlength literal run truncated")
			}
			out.Write(in[i : i+count])
			i += count
			continue
		}
		if i >= len(in) {
			return nil, errors.New("runlength repeat run truncated")
		}
		out.Write(bytes.Repeat(in[i:i+1], 257-n))
		i++
	}
	return out.Bytes(), nil
}

type dctPassthrough struct{}

// NewDCTPassthrough keeps DCTDecode (JPEG) payloads as-is so image consumers
// can hand them straight to a JPEG-aware sink.
func NewDCTPassthrough() Decoder    { return dctPassthrough{} }
func (dctPassthrough) Name() string { return "DCTDecode" }

func (dctPassthrough) Decode(ctx context.Context, in []byte, params raw.Dictionary) ([]byte, error) {
	return in, nil
}

// lzwEarlyChangeDecode implements LZW with the PDF default EarlyChange=1,
// where the code width grows one code sooner than the standard algorithm.
func lzwEarlyChangeDecode(in []byte) ([]byte, error) {
	const (
		clearCode = 256
		eodCode   = 257
	)
	var out bytes.Buffer

	table := make([][]byte, 258, 4096)
	for i := 0; i < 256; i++ {
		table[i] = []byte{byte(i)}
	}
	width := 9
	var prev []byte

	var bitBuf uint32
	var bitCount int
	pos := 0
	readCode := func() (int, bool) {
		for bitCount < width {
			if pos >= len(in) {
				return 0, false
			}
			bitBuf = bitBuf<<8 | uint32(in[pos])
			bitCount += 8
			pos++
		}
		code := int(bitBuf >> uint(bitCount-width))
		bitCount -= width
		bitBuf &= (1 << uint(bitCount)) - 1
		return code, true
	}

	for {
		code, ok := readCode()
		if !ok {
			break
		}
		if code == eodCode {
			break
		}
		if code == clearCode {
			table = table[:258]
			width = 9
			prev = nil
			continue
		}
		var entry []byte
		switch {
		case code < len(table) && table[code] != nil:
			entry = table[code]
		case code == len(table) && prev != nil:
			entry = append(append([]byte(nil), prev...), prev[0])
		default:
			return nil, fmt.Errorf("lzw: invalid code %d", code)
		}
		out.Write(entry)
		if prev != nil {
			table = append(table, append(append([]byte(nil), prev...), entry[0]))
		}
		prev = entry
		// EarlyChange widens one entry before the table fills.
		switch len(table) + 1 {
		case 512:
			width = 10
		case 1024:
			width = 11
		case 2048:
			width = 12
		}
	}
	return out.Bytes(), nil
}
