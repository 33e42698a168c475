package extractor

import (
	"bytes"
	"context"
	"strings"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/decoded"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/parser"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/scanner"
)

// FontDescriptor flag bits, PDF 9.8.2.
const (
	flagSerif     = 1 << 1
	flagItalic    = 1 << 6
	flagForceBold = 1 << 18
)

// fontInfo carries what outline detection needs from a font: a readable
// name, bold/italic attributes, and a byte-to-text decoding.
type fontInfo struct {
	baseName  string
	bold      bool
	italic    bool
	composite bool // Type0: two-byte codes
	toUnicode map[uint32]string
	codeBytes int // 0 = unknown, use composite flag
}

// loadFonts builds fontInfo for every entry of the page's /Font resource.
func loadFonts(ctx context.Context, dec *decoded.Document, resources raw.Dictionary) map[string]*fontInfo {
	fonts := make(map[string]*fontInfo)
	if resources == nil {
		return fonts
	}
	fontDictObj, ok := resources.Get(raw.NameObj{Val: "Font"})
	if !ok {
		return fonts
	}
	fontDict, ok := dec.Resolve(fontDictObj).(raw.Dictionary)
	if !ok {
		return fonts
	}
	for _, key := range fontDict.Keys() {
		obj, _ := fontDict.Get(key)
		fd, ok := dec.Resolve(obj).(raw.Dictionary)
		if !ok {
			continue
		}
		fonts[key.Value()] = loadFont(ctx, dec, fd)
	}
	return fonts
}

func loadFont(ctx context.Context, dec *decoded.Document, fd raw.Dictionary) *fontInfo {
	fi := &fontInfo{}

	if sub, ok := fd.Get(raw.NameObj{Val: "Subtype"}); ok {
		if n, ok := dec.Resolve(sub).(raw.Name); ok && n.Value() == "Type0" {
			fi.composite = true
		}
	}
	if bf, ok := fd.Get(raw.NameObj{Val: "BaseFont"}); ok {
		if n, ok := dec.Resolve(bf).(raw.Name); ok {
			fi.baseName = stripSubsetPrefix(n.Value())
		}
	}

	lower := strings.ToLower(fi.baseName)
	fi.bold = strings.Contains(lower, "bold") || strings.Contains(lower, "black") ||
		strings.Contains(lower, "heavy")
	fi.italic = strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")

	if desc := fontDescriptor(dec, fd); desc != nil {
		if f, ok := desc.Get(raw.NameObj{Val: "Flags"}); ok {
			if n, ok := dec.Resolve(f).(raw.Number); ok {
				flags := n.Int()
				fi.bold = fi.bold || flags&flagForceBold != 0
				fi.italic = fi.italic || flags&flagItalic != 0
			}
		}
		// StemV above 120 is a strong weight signal when the name says
		// nothing.
		if !fi.bold {
			if sv, ok := desc.Get(raw.NameObj{Val: "StemV"}); ok {
				if n, ok := dec.Resolve(sv).(raw.Number); ok && n.Float() > 120 {
					fi.bold = true
				}
			}
		}
	}

	if tu, ok := fd.Get(raw.NameObj{Val: "ToUnicode"}); ok {
		if ref, ok := tu.(raw.Reference); ok {
			if data, ok := dec.StreamData(ref.Ref()); ok {
				fi.toUnicode, fi.codeBytes = parseCMap(ctx, data)
			}
		}
	}
	return fi
}

// fontDescriptor resolves the descriptor, descending into the descendant
// font for Type0.
func fontDescriptor(dec *decoded.Document, fd raw.Dictionary) raw.Dictionary {
	if d, ok := fd.Get(raw.NameObj{Val: "FontDescriptor"}); ok {
		if dict, ok := dec.Resolve(d).(raw.Dictionary); ok {
			return dict
		}
	}
	if df, ok := fd.Get(raw.NameObj{Val: "DescendantFonts"}); ok {
		if arr, ok := dec.Resolve(df).(raw.Array); ok && arr.Len() > 0 {
			item, _ := arr.Get(0)
			if desc, ok := dec.Resolve(item).(raw.Dictionary); ok {
				return fontDescriptor(dec, desc)
			}
		}
	}
	return nil
}

// stripSubsetPrefix removes the "ABCDEF+" tag producers put on embedded
// subset fonts.
func stripSubsetPrefix(name string) string {
	if len(name) > 7 && name[6] == '+' {
		allUpper := true
		for i := 0; i < 6; i++ {
			if name[i] < 'A' || name[i] > 'Z' {
				allUpper = false
				break
			}
		}
		if allUpper {
			return name[7:]
		}
	}
	return name
}

// decode maps shown string bytes to text using the font's ToUnicode CMap
// when present. Without one, composite fonts are undecodable and simple
// fonts fall back to a Latin interpretation.
func (fi *fontInfo) decode(b []byte) string {
	if fi == nil {
		return parser.DecodeTextString(b)
	}
	if len(fi.toUnicode) > 0 {
		width := fi.codeBytes
		if width == 0 {
			width = 1
			if fi.composite {
				width = 2
			}
		}
		var sb strings.Builder
		for i := 0; i+width <= len(b); i += width {
			var code uint32
			for j := 0; j < width; j++ {
				code = code<<8 | uint32(b[i+j])
			}
			if s, ok := fi.toUnicode[code]; ok {
				sb.WriteString(s)
			} else if !fi.composite && code >= 0x20 && code < 0x7F {
				sb.WriteByte(byte(code))
			}
		}
		return sb.String()
	}
	if fi.composite {
		// Two-byte codes without a CMap; keep any ASCII payload.
		var sb strings.Builder
		for i := 0; i+2 <= len(b); i += 2 {
			code := uint32(b[i])<<8 | uint32(b[i+1])
			if code >= 0x20 && code < 0x7F {
				sb.WriteByte(byte(code))
			}
		}
		return sb.String()
	}
	return parser.DecodeTextString(b)
}

// parseCMap reads bfchar and bfrange sections from a ToUnicode CMap
// stream. Returns the code-to-text map and the observed code width.
func parseCMap(ctx context.Context, data []byte) (map[uint32]string, int) {
	out := make(map[uint32]string)
	codeBytes := 0
	sc := scanner.New(bytes.NewReader(data), scanner.Config{})

	var pending []scanner.Token
	mode := ""
	for {
		if ctx.Err() != nil {
			return out, codeBytes
		}
		tok, err := sc.Next()
		if err != nil {
			break
		}
		if tok.Type == scanner.TokenKeyword {
			switch tok.Str {
			case "begincodespacerange", "beginbfchar", "beginbfrange":
				mode = tok.Str
				pending = pending[:0]
			case "endcodespacerange":
				if len(pending) >= 1 && pending[0].Type == scanner.TokenString {
					codeBytes = len(pending[0].Bytes)
				}
				mode = ""
			case "endbfchar":
				for i := 0; i+1 < len(pending); i += 2 {
					src, dst := pending[i], pending[i+1]
					if src.Type == scanner.TokenString && dst.Type == scanner.TokenString {
						out[beUint(src.Bytes)] = utf16beToString(dst.Bytes)
						if codeBytes == 0 {
							codeBytes = len(src.Bytes)
						}
					}
				}
				mode = ""
			case "endbfrange":
				applyBFRanges(out, pending, &codeBytes)
				mode = ""
			default:
				if mode == "" {
					pending = pending[:0]
				}
			}
			continue
		}
		if mode != "" && len(pending) < 3*512 {
			pending = append(pending, tok)
		}
	}
	return out, codeBytes
}

// applyBFRanges handles both destination forms: a start string that
// increments, or an explicit array of destinations.
func applyBFRanges(out map[uint32]string, pending []scanner.Token, codeBytes *int) {
	i := 0
	for i < len(pending) {
		if i+2 >= len(pending) {
			return
		}
		lo, hi := pending[i], pending[i+1]
		if lo.Type != scanner.TokenString || hi.Type != scanner.TokenString {
			i++
			continue
		}
		if *codeBytes == 0 {
			*codeBytes = len(lo.Bytes)
		}
		loV, hiV := beUint(lo.Bytes), beUint(hi.Bytes)
		if hiV < loV || hiV-loV > 1<<16 {
			return
		}
		dst := pending[i+2]
		switch dst.Type {
		case scanner.TokenString:
			base := beUint(dst.Bytes)
			for c := loV; c <= hiV; c++ {
				out[c] = string(rune(base + (c - loV)))
			}
			i += 3
		case scanner.TokenArray:
			// Tokens after '[' are individual destination strings.
			c := loV
			j := i + 3
			for j < len(pending) && pending[j].Type == scanner.TokenString && c <= hiV {
				out[c] = utf16beToString(pending[j].Bytes)
				c++
				j++
			}
			i = j
		default:
			i += 3
		}
	}
}

func beUint(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

// utf16beToString decodes a CMap destination value, which is UTF-16BE
// without a BOM.
func utf16beToString(b []byte) string {
	if len(b) == 1 {
		return string(rune(b[0]))
	}
	var sb strings.Builder
	for i := 0; i+2 <= len(b); i += 2 {
		u := rune(b[i])<<8 | rune(b[i+1])
		if u >= 0xD800 && u <= 0xDBFF && i+4 <= len(b) {
			lo := rune(b[i+2])<<8 | rune(b[i+3])
			if lo >= 0xDC00 && lo <= 0xDFFF {
				sb.WriteRune(((u - 0xD800) << 10) + (lo - 0xDC00) + 0x10000)
				i += 2
				continue
			}
		}
		sb.WriteRune(u)
	}
	return sb.String()
}

