package parser

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	utf16BOM = []byte{0xFE, 0xFF}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// DecodeTextString converts a PDF text string (PDF 7.9.2.2) to Go UTF-8.
// UTF-16BE is signaled by a BOM; everything else is treated as a single-byte
// Latin encoding, which keeps the printable range of PDFDocEncoding intact.
func DecodeTextString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if bytes.HasPrefix(b, utf16BOM) {
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(b)
		if err == nil {
			return string(out)
		}
		return ""
	}
	if bytes.HasPrefix(b, utf8BOM) {
		return string(b[len(utf8BOM):])
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
