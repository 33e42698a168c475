package xref

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

func (b *pdfBuilder) writeClassicXRef(maxObj int, trailerExtra string) int64 {
	start := int64(b.buf.Len())
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", maxObj+1)
	b.buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxObj; i++ {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", b.offsets[i])
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n",
		maxObj+1, trailerExtra, start)
	return start
}

func buildClassicPDF() ([]byte, map[int]int64) {
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.addObject(3, "<< /Type /Page /Parent 2 0 R >>")
	b.writeClassicXRef(3, "")
	return b.buf.Bytes(), b.offsets
}

func resolve(t *testing.T, data []byte, strat recovery.Strategy) (Table, Resolver) {
	t.Helper()
	r := NewResolver(ResolverConfig{Recovery: strat})
	tbl, err := r.Resolve(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return tbl, r
}

func TestClassicTable(t *testing.T) {
	data, offsets := buildClassicPDF()
	tbl, r := resolve(t, data, nil)

	if tbl.Type() != "table" {
		t.Errorf("Type = %q, want table", tbl.Type())
	}
	for num := 1; num <= 3; num++ {
		off, gen, ok := tbl.Lookup(num)
		if !ok {
			t.Fatalf("object %d not found", num)
		}
		if off != offsets[num] || gen != 0 {
			t.Errorf("object %d: offset %d gen %d, want %d 0", num, off, gen, offsets[num])
		}
	}
	if _, _, ok := tbl.Lookup(0); ok {
		t.Error("free object 0 should not resolve")
	}

	trailer := r.Trailer()
	if trailer == nil {
		t.Fatal("no trailer")
	}
	root, ok := trailer.Get(raw.NameObj{Val: "Root"})
	if !ok {
		t.Fatal("trailer missing Root")
	}
	ref, ok := root.(raw.Reference)
	if !ok || ref.Ref().Num != 1 {
		t.Errorf("Root = %v, want ref to 1", root)
	}
}

func TestIncrementalUpdateChain(t *testing.T) {
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.addObject(3, "<< /Type /Page /Parent 2 0 R >>")
	firstXRef := b.writeClassicXRef(3, "")

	oldOffset3 := b.offsets[3]
	b.addObject(3, "<< /Type /Page /Parent 2 0 R /Rotate 90 >>")
	newOffset3 := b.offsets[3]

	start := int64(b.buf.Len())
	fmt.Fprintf(&b.buf, "xref\n3 1\n%010d 00000 n \ntrailer\n<< /Size 4 /Root 1 0 R /Prev %d >>\nstartxref\n%d\n%%%%EOF\n",
		newOffset3, firstXRef, start)

	tbl, _ := resolve(t, b.buf.Bytes(), nil)

	off, _, ok := tbl.Lookup(3)
	if !ok {
		t.Fatal("object 3 not found")
	}
	if off != newOffset3 {
		t.Errorf("object 3 offset %d, want updated %d (old %d)", off, newOffset3, oldOffset3)
	}
	// Objects only in the previous table still resolve.
	if off, _, ok := tbl.Lookup(1); !ok || off != b.offsets[1] {
		t.Errorf("object 1 offset %d ok=%v, want %d", off, ok, b.offsets[1])
	}
}

func buildXRefStreamPDF() ([]byte, map[int]int64) {
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.addObject(3, "<< /Type /Page /Parent 2 0 R >>")

	// W [1 4 2]: one type byte, four offset bytes, two gen/index bytes.
	row := func(typ byte, f2 int64, f3 int) []byte {
		return []byte{typ,
			byte(f2 >> 24), byte(f2 >> 16), byte(f2 >> 8), byte(f2),
			byte(f3 >> 8), byte(f3)}
	}
	var data []byte
	data = append(data, row(0, 0, 0xFFFF)...)
	for i := 1; i <= 3; i++ {
		data = append(data, row(1, b.offsets[i], 0)...)
	}
	data = append(data, row(2, 6, 0)...) // object 5 lives in object stream 6

	start := int64(b.buf.Len())
	b.offsets[4] = start
	fmt.Fprintf(&b.buf,
		"4 0 obj\n<< /Type /XRef /Size 6 /W [1 4 2] /Index [0 4 5 1] /Root 1 0 R /Length %d >>\nstream\n",
		len(data))
	b.buf.Write(data)
	fmt.Fprintf(&b.buf, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", start)
	return b.buf.Bytes(), b.offsets
}

func TestXRefStream(t *testing.T) {
	data, offsets := buildXRefStreamPDF()
	tbl, r := resolve(t, data, nil)

	if tbl.Type() != "stream" {
		t.Errorf("Type = %q, want stream", tbl.Type())
	}
	for num := 1; num <= 3; num++ {
		off, _, ok := tbl.Lookup(num)
		if !ok || off != offsets[num] {
			t.Errorf("object %d: offset %d ok=%v, want %d", num, off, ok, offsets[num])
		}
	}
	streamNum, idx, ok := tbl.ObjStream(5)
	if !ok {
		t.Fatal("object 5 should be in an object stream")
	}
	if streamNum != 6 || idx != 0 {
		t.Errorf("object 5 in stream %d index %d, want 6 0", streamNum, idx)
	}
	// Compressed entries never resolve to direct offsets.
	if _, _, ok := tbl.Lookup(5); ok {
		t.Error("Lookup(5) should fail for a compressed object")
	}

	if root, ok := r.Trailer().Get(raw.NameObj{Val: "Root"}); !ok {
		t.Error("trailer missing Root")
	} else if ref, ok := root.(raw.Reference); !ok || ref.Ref().Num != 1 {
		t.Errorf("Root = %v, want ref to 1", root)
	}
}

func TestRepairBrokenStartxref(t *testing.T) {
	data, offsets := buildClassicPDF()
	// Point startxref far past the end of the file.
	broken := bytes.Replace(data, []byte("startxref"), []byte("startxref\n999999\n%old"), 1)

	strict := NewResolver(ResolverConfig{Recovery: recovery.NewStrictStrategy()})
	if _, err := strict.Resolve(context.Background(), bytes.NewReader(broken)); err == nil {
		t.Error("strict resolve should fail on broken startxref")
	}

	lenient := recovery.NewLenientStrategy()
	tbl, r := resolve(t, broken, lenient)
	if tbl.Type() != "repaired" {
		t.Errorf("Type = %q, want repaired", tbl.Type())
	}
	for num := 1; num <= 3; num++ {
		off, _, ok := tbl.Lookup(num)
		if !ok || off != offsets[num] {
			t.Errorf("object %d: offset %d ok=%v, want %d", num, off, ok, offsets[num])
		}
	}
	if root, ok := r.Trailer().Get(raw.NameObj{Val: "Root"}); !ok {
		t.Error("repaired trailer missing Root")
	} else if ref, ok := root.(raw.Reference); !ok || ref.Ref().Num != 1 {
		t.Errorf("Root = %v, want ref to 1", root)
	}
}

func TestRepairNoStartxref(t *testing.T) {
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Count 0 /Kids [] >>")

	tbl, _ := resolve(t, b.buf.Bytes(), recovery.NewLenientStrategy())
	if _, _, ok := tbl.Lookup(1); !ok {
		t.Error("object 1 not recovered")
	}
	if _, _, ok := tbl.Lookup(2); !ok {
		t.Error("object 2 not recovered")
	}
}
