package extractor

import (
	"bytes"
	"context"
	"fmt"
	"testing"
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

func (b *pdfBuilder) addStream(num int, extraDict, payload string) {
	b.offsets[num] = int64(b.buf.Len())
	fmt.Fprintf(&b.buf, "%d 0 obj\n<< /Length %d%s >>\nstream\n%s\nendstream\nendobj\n",
		num, len(payload), extraDict, payload)
}

func (b *pdfBuilder) finish(maxObj int, trailerExtra string) []byte {
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

func extract(t *testing.T, data []byte) *Document {
	t.Helper()
	doc, err := New(Config{}).Extract(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return doc
}

func buildSinglePage(content, fontDict string) []byte {
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 612 792] >>")
	b.addObject(3, "<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	b.addObject(4, fontDict)
	b.addStream(5, "", content)
	return b.finish(5, "")
}

func TestExtractTextBlocks(t *testing.T) {
	content := "BT /F1 18 Tf 72 700 Td (Chapter One) Tj 0 -40 Td /F1 11 Tf (Body text here.) Tj ET"
	doc := extract(t, buildSinglePage(content,
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold >>"))

	if len(doc.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(doc.Pages))
	}
	page := doc.Pages[0]
	if page.Number != 1 {
		t.Errorf("page number = %d, want 1", page.Number)
	}
	if page.Width != 612 || page.Height != 792 {
		t.Errorf("page size = %v x %v, want 612 x 792", page.Width, page.Height)
	}
	if len(page.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2: %+v", len(page.Blocks), page.Blocks)
	}
	h := page.Blocks[0]
	if h.Text != "Chapter One" || h.FontSize != 18 || !h.Bold {
		t.Errorf("heading block = %+v", h)
	}
	if h.FontName != "Helvetica-Bold" {
		t.Errorf("FontName = %q, want Helvetica-Bold", h.FontName)
	}
	body := page.Blocks[1]
	if body.Text != "Body text here." || body.FontSize != 11 {
		t.Errorf("body block = %+v", body)
	}
}

func TestSameLineSpansMerge(t *testing.T) {
	content := "BT /F1 12 Tf 72 700 Td (Hello) Tj ( ) Tj (World) Tj ET"
	doc := extract(t, buildSinglePage(content,
		"<< /Type /Font /Subtype /Type1 /BaseFont /Times-Roman >>"))

	blocks := doc.Pages[0].Blocks
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1: %+v", len(blocks), blocks)
	}
	if blocks[0].Text != "Hello World" {
		t.Errorf("Text = %q, want Hello World", blocks[0].Text)
	}
	if blocks[0].Bold || blocks[0].Italic {
		t.Errorf("Times-Roman flagged bold=%v italic=%v", blocks[0].Bold, blocks[0].Italic)
	}
}

func TestToUnicodeDecoding(t *testing.T) {
	cmap := `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
1 begincodespacerange
<00> <FF>
endcodespacerange
3 beginbfchar
<01> <0048>
<02> <0069>
<03> <0021>
endbfchar
endcmap
end
end`
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 612 792] >>")
	b.addObject(3, "<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	b.addObject(4, "<< /Type /Font /Subtype /TrueType /BaseFont /ABCDEF+CustomSans /ToUnicode 6 0 R >>")
	b.addStream(5, "", "BT /F1 14 Tf 72 700 Td <010203> Tj ET")
	b.addStream(6, "", cmap)
	doc := extract(t, b.finish(6, ""))

	blocks := doc.Pages[0].Blocks
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Text != "Hi!" {
		t.Errorf("Text = %q, want Hi!", blocks[0].Text)
	}
	if blocks[0].FontName != "CustomSans" {
		t.Errorf("FontName = %q, want CustomSans (subset prefix stripped)", blocks[0].FontName)
	}
}

func TestBFRangeDecoding(t *testing.T) {
	cmap := `begincmap
1 begincodespacerange
<00> <FF>
endcodespacerange
1 beginbfrange
<41> <43> <0061>
endbfrange
endcmap`
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.addObject(3, "<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	b.addObject(4, "<< /Type /Font /Subtype /TrueType /BaseFont /Mapped /ToUnicode 6 0 R >>")
	b.addStream(5, "", "BT /F1 10 Tf 72 700 Td (ABC) Tj ET")
	b.addStream(6, "", cmap)
	doc := extract(t, b.finish(6, ""))

	blocks := doc.Pages[0].Blocks
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Text != "abc" {
		t.Errorf("Text = %q, want abc", blocks[0].Text)
	}
}

func TestMultiPageAndMetadata(t *testing.T) {
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 /MediaBox [0 0 595 842] /Resources << /Font << /F1 7 0 R >> >> >>")
	b.addObject(3, "<< /Type /Page /Parent 2 0 R /Contents 5 0 R >>")
	b.addObject(4, "<< /Type /Page /Parent 2 0 R /Contents 6 0 R >>")
	b.addStream(5, "", "BT /F1 12 Tf 50 780 Td (page one) Tj ET")
	b.addStream(6, "", "BT /F1 12 Tf 50 780 Td (page two) Tj ET")
	b.addObject(7, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	b.addObject(8, "<< /Title (Sample Doc) /Author (A. Writer) >>")
	doc := extract(t, b.finish(8, " /Info 8 0 R"))

	if len(doc.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(doc.Pages))
	}
	// Inherited MediaBox and Resources from the Pages node.
	if doc.Pages[1].Width != 595 {
		t.Errorf("inherited width = %v, want 595", doc.Pages[1].Width)
	}
	if got := doc.Pages[1].Blocks[0].Text; got != "page two" {
		t.Errorf("page 2 text = %q", got)
	}
	if doc.Metadata.Title != "Sample Doc" {
		t.Errorf("Title = %q, want Sample Doc", doc.Metadata.Title)
	}
}

func TestBookmarks(t *testing.T) {
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R /Outlines 6 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>")
	b.addObject(3, "<< /Type /Page /Parent 2 0 R >>")
	b.addObject(4, "<< /Type /Page /Parent 2 0 R >>")
	b.addObject(6, "<< /Type /Outlines /First 7 0 R /Last 9 0 R >>")
	b.addObject(7, "<< /Title (Introduction) /Parent 6 0 R /Next 9 0 R /First 8 0 R /Dest [3 0 R /XYZ 0 792 0] >>")
	b.addObject(8, "<< /Title (Background) /Parent 7 0 R /A << /S /GoTo /D [4 0 R /Fit] >> >>")
	b.addObject(9, "<< /Title (Conclusion) /Parent 6 0 R /Prev 7 0 R /Dest [4 0 R /XYZ 0 792 0] >>")
	doc := extract(t, b.finish(9, ""))

	want := []Bookmark{
		{Level: 1, Title: "Introduction", Page: 1},
		{Level: 2, Title: "Background", Page: 2},
		{Level: 1, Title: "Conclusion", Page: 2},
	}
	if len(doc.Bookmarks) != len(want) {
		t.Fatalf("got %d bookmarks, want %d: %+v", len(doc.Bookmarks), len(want), doc.Bookmarks)
	}
	for i, w := range want {
		if doc.Bookmarks[i] != w {
			t.Errorf("bookmark %d = %+v, want %+v", i, doc.Bookmarks[i], w)
		}
	}
}

func TestPageImages(t *testing.T) {
	jpeg := "\xff\xd8\xff\xe0fakejpegdata\xff\xd9"
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.addObject(3, "<< /Type /Page /Parent 2 0 R /Resources << /XObject << /Im1 4 0 R >> >> >>")
	b.addStream(4, " /Type /XObject /Subtype /Image /Filter /DCTDecode /Width 2 /Height 2", jpeg)
	doc := extract(t, b.finish(4, ""))

	images := doc.Pages[0].Images
	if len(images) != 1 {
		t.Fatalf("got %d images, want 1", len(images))
	}
	if images[0].Format != "jpeg" {
		t.Errorf("Format = %q, want jpeg", images[0].Format)
	}
	if string(images[0].Data) != jpeg {
		t.Errorf("image data mismatch")
	}
}
