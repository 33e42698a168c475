package parser

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/recovery"
)

type pdfBuilder struct {
	buf     bytes.Buffer
	offsets map[int]int64
}

func newPDFBuilder() *pdfBuilder {
	b := &pdfBuilder{offsets: make(map[int]int64)}
	b.buf.WriteString("%PDF-1.4\n")
	return b
}

func (b *pdfBuilder) addObject(num int, body string) {
	b.offsets[num] = int64(b.buf.Len())
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

func (b *pdfBuilder) addStream(num int, dict, payload string) {
	b.offsets[num] = int64(b.buf.Len())
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nstream\n%s\nendstream\nendobj\n", num, dict, payload)
}

func (b *pdfBuilder) finishClassic(maxObj int, trailerExtra string) []byte {
	start := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", maxObj+1)
	b.buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxObj; i++ {
		if off, ok := b.offsets[i]; ok {
			fmt.Fprintf(&b.buf, "%010d 00000 n \n", off)
		} else {
			b.buf.WriteString("0000000000 65535 f \n")
		}
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n",
		maxObj+1, trailerExtra, start)
	return b.buf.Bytes()
}

func parseDoc(t *testing.T, data []byte) *raw.Document {
	t.Helper()
	p := New(Config{Recovery: recovery.NewStrictStrategy()})
	doc, err := p.Parse(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestParseClassicDocument(t *testing.T) {
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.addObject(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	doc := parseDoc(t, b.finishClassic(3, ""))

	if doc.Version != "1.4" {
		t.Errorf("Version = %q, want 1.4", doc.Version)
	}
	if len(doc.Objects) != 3 {
		t.Errorf("loaded %d objects, want 3", len(doc.Objects))
	}

	rootObj, ok := doc.Trailer.Get(raw.NameObj{Val: "Root"})
	if !ok {
		t.Fatal("trailer missing Root")
	}
	catalog, ok := doc.Resolve(rootObj).(raw.Dictionary)
	if !ok {
		t.Fatal("Root does not resolve to a dictionary")
	}
	pagesObj, _ := catalog.Get(raw.NameObj{Val: "Pages"})
	pages, ok := doc.Resolve(pagesObj).(raw.Dictionary)
	if !ok {
		t.Fatal("Pages does not resolve")
	}
	if n := dictIntValue(pages, "Count"); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestIndirectStreamLength(t *testing.T) {
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [] /Count 0 >>")
	b.addStream(3, "<< /Length 5 0 R >>", "HELLO")
	b.addObject(5, "5")
	doc := parseDoc(t, b.finishClassic(5, ""))

	obj := doc.Objects[raw.ObjectRef{Num: 3}]
	stream, ok := obj.(raw.Stream)
	if !ok {
		t.Fatalf("object 3 is %T, want stream", obj)
	}
	if got := string(stream.RawData()); got != "HELLO" {
		t.Errorf("payload = %q, want HELLO", got)
	}
}

func TestObjectStreamMembers(t *testing.T) {
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [] /Count 0 >>")

	member7 := "<< /A 1 >>"
	member8 := "(hello)"
	header := fmt.Sprintf("7 0 8 %d ", len(member7)+1)
	stmData := header + member7 + " " + member8
	b.addStream(6, fmt.Sprintf("<< /Type /ObjStm /N 2 /First %d /Length %d >>",
		len(header), len(stmData)), stmData)

	// W [1 4 2] xref stream covering objects 0..8.
	row := func(typ byte, f2 int64, f3 int) []byte {
		return []byte{typ,
			byte(f2 >> 24), byte(f2 >> 16), byte(f2 >> 8), byte(f2),
			byte(f3 >> 8), byte(f3)}
	}
	var xr []byte
	xr = append(xr, row(0, 0, 0xFFFF)...)
	xr = append(xr, row(1, b.offsets[1], 0)...)
	xr = append(xr, row(1, b.offsets[2], 0)...)
	xr = append(xr, row(0, 0, 0)...) // 3 free
	var start int64
	xr = append(xr, row(1, 0, 0)...) // 4, patched below
	xr = append(xr, row(0, 0, 0)...) // 5 free
	xr = append(xr, row(1, b.offsets[6], 0)...)
	xr = append(xr, row(2, 6, 0)...)
	xr = append(xr, row(2, 6, 1)...)

	start = int64(b.buf.Len())
	self := row(1, start, 0)
	copy(xr[4*7:], self)
	fmt.Fprintf(&b.buf,
		"4 0 obj\n<< /Type /XRef /Size 9 /W [1 4 2] /Root 1 0 R /Length %d >>\nstream\n", len(xr))
	b.buf.Write(xr)
	fmt.Fprintf(&b.buf, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", start)

	doc := parseDoc(t, b.buf.Bytes())

	d, ok := doc.Objects[raw.ObjectRef{Num: 7}].(raw.Dictionary)
	if !ok {
		t.Fatalf("object 7 is %T, want dictionary", doc.Objects[raw.ObjectRef{Num: 7}])
	}
	if v := dictIntValue(d, "A"); v != 1 {
		t.Errorf("7./A = %d, want 1", v)
	}
	s, ok := doc.Objects[raw.ObjectRef{Num: 8}].(raw.String)
	if !ok {
		t.Fatalf("object 8 is %T, want string", doc.Objects[raw.ObjectRef{Num: 8}])
	}
	if got := string(s.Value()); got != "hello" {
		t.Errorf("object 8 = %q, want hello", got)
	}
}

func TestInfoMetadata(t *testing.T) {
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [] /Count 0 >>")
	// UTF-16BE "Hi" with BOM, hex form.
	b.addObject(4, "<< /Title <FEFF00480069> /Author (Jane Doe) /Keywords (pdf, outline; headings) >>")
	doc := parseDoc(t, b.finishClassic(4, " /Info 4 0 R"))

	if doc.Metadata.Title != "Hi" {
		t.Errorf("Title = %q, want Hi", doc.Metadata.Title)
	}
	if doc.Metadata.Author != "Jane Doe" {
		t.Errorf("Author = %q, want Jane Doe", doc.Metadata.Author)
	}
	want := []string{"pdf", "outline", "headings"}
	if len(doc.Metadata.Keywords) != len(want) {
		t.Fatalf("Keywords = %v, want %v", doc.Metadata.Keywords, want)
	}
	for i, kw := range want {
		if doc.Metadata.Keywords[i] != kw {
			t.Errorf("Keywords[%d] = %q, want %q", i, doc.Metadata.Keywords[i], kw)
		}
	}
}

func TestDecodeTextString(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, ""},
		{"ascii", []byte("Plain Title"), "Plain Title"},
		{"utf16be", []byte{0xFE, 0xFF, 0x00, 'H', 0x00, 'i'}, "Hi"},
		{"utf16be_nonlatin", []byte{0xFE, 0xFF, 0x30, 0x42}, "あ"},
		{"latin1", []byte{'C', 'a', 'f', 0xE9}, "Café"},
		{"utf8bom", []byte{0xEF, 0xBB, 0xBF, 'o', 'k'}, "ok"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DecodeTextString(tc.in); got != tc.want {
				t.Errorf("DecodeTextString(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestBrokenObjectLenient(t *testing.T) {
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [] /Count 0 >>")
	b.addObject(3, "<< /Broken")
	data := b.finishClassic(3, "")

	strict := New(Config{Recovery: recovery.NewStrictStrategy()})
	if _, err := strict.Parse(context.Background(), bytes.NewReader(data)); err == nil {
		t.Error("strict parse should fail on a truncated object")
	}

	lenient := recovery.NewLenientStrategy()
	p := New(Config{Recovery: lenient})
	doc, err := p.Parse(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("lenient parse: %v", err)
	}
	if _, ok := doc.Objects[raw.ObjectRef{Num: 1}]; !ok {
		t.Error("object 1 missing after lenient parse")
	}
	if len(lenient.Recorded()) == 0 {
		t.Error("lenient strategy recorded no errors")
	}
}
