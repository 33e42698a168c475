package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/outline"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/schema"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/scripting"
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

func (b *pdfBuilder) addStream(num int, payload string) {
	b.offsets[num] = int64(b.buf.Len())
	fmt.Fprintf(&b.buf, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		num, len(payload), payload)
}

func (b *pdfBuilder) finish(maxObj int) []byte {
	start := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", maxObj+1)
	b.buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxObj; i++ {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", b.offsets[i])
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		maxObj+1, start)
	return b.buf.Bytes()
}

// reportPDF has a large title line, one mid-size heading and enough body
// text to anchor the font-size median.
func reportPDF() []byte {
	content := "BT /F1 20 Tf 72 760 Td (Annual Report) Tj " +
		"/F1 16 Tf 0 -60 Td (Overview Section) Tj " +
		"/F1 10 Tf 0 -40 Td (The first paragraph of regular body text.) Tj " +
		"0 -14 Td (The second paragraph of regular body text.) Tj " +
		"0 -14 Td (The third paragraph of regular body text.) Tj " +
		"0 -14 Td (The fourth paragraph of regular body text.) Tj " +
		"0 -14 Td (The fifth paragraph of regular body text.) Tj ET"
	b := newPDFBuilder()
	b.addObject(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.addObject(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 612 792] >>")
	b.addObject(3, "<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	b.addObject(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	b.addStream(5, content)
	return b.finish(5)
}

func readResult(t *testing.T, path string) outline.Result {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if !bytes.Contains(data, []byte("\n    \"title\"")) {
		t.Errorf("output is not four-space indented:\n%s", data)
	}
	var res outline.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
	return res
}

func TestRunDirectory(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	if err := os.WriteFile(filepath.Join(in, "report.pdf"), reportPDF(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(in, "broken.pdf"), []byte("not a pdf at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(Config{
		InputDir:  in,
		OutputDir: out,
		Workers:   2,
		Validator: schema.Default(),
	})
	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 2 || stats.Failed != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	res := readResult(t, filepath.Join(out, "report.json"))
	if res.Title != "Annual Report  " {
		t.Errorf("title = %q", res.Title)
	}
	want := []outline.Entry{
		{Level: "H1", Text: "Annual Report ", Page: 0},
		{Level: "H2", Text: "Overview Section ", Page: 0},
	}
	if diff := cmp.Diff(want, res.Outline); diff != "" {
		t.Errorf("outline mismatch (-want +got):\n%s", diff)
	}

	// A corrupt input still gets a fallback JSON and does not fail the run.
	broken := readResult(t, filepath.Join(out, "broken.json"))
	if broken.Title != "broken" {
		t.Errorf("fallback title = %q", broken.Title)
	}
	if broken.Outline == nil || len(broken.Outline) != 0 {
		t.Errorf("fallback outline = %#v", broken.Outline)
	}
}

func TestRunSingleFileMode(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	pdf := filepath.Join(in, "solo.pdf")
	if err := os.WriteFile(pdf, reportPDF(), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(Config{InputDir: pdf, OutputDir: out})
	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 1 || stats.Successful != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(out, "solo.json")); err != nil {
		t.Errorf("single-file output missing: %v", err)
	}
}

func TestRunAppliesRulesFilter(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	if err := os.WriteFile(filepath.Join(in, "report.pdf"), reportPDF(), 0o644); err != nil {
		t.Fatal(err)
	}
	eng, err := scripting.NewEngine(`function accept(entry) { return entry.level === "H1"; }`)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	r := New(Config{InputDir: in, OutputDir: out, Filter: eng})
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	res := readResult(t, filepath.Join(out, "report.json"))
	if len(res.Outline) != 1 || res.Outline[0].Level != "H1" {
		t.Errorf("filtered outline = %+v", res.Outline)
	}
}

type failingFilter struct{}

func (failingFilter) Filter(ctx context.Context, entries []outline.Entry) ([]outline.Entry, error) {
	return nil, errors.New("rule blew up")
}

func TestRunCountsFilterFailures(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	if err := os.WriteFile(filepath.Join(in, "report.pdf"), reportPDF(), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(Config{InputDir: in, OutputDir: out, Filter: failingFilter{}})
	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Failed != 1 || stats.Successful != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(out, "report.json")); !os.IsNotExist(err) {
		t.Errorf("failed file should not produce output, stat err = %v", err)
	}
}

// damagedPDF carries a dangling startxref so every reader goes through
// the lenient repair path.
func damagedPDF() []byte {
	return append(reportPDF(), []byte("\nstartxref\n999999\n%%EOF\n")...)
}

func TestRunDamagedFilesConcurrently(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("damaged%d.pdf", i)
		if err := os.WriteFile(filepath.Join(in, name), damagedPDF(), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	r := New(Config{
		InputDir:  in,
		OutputDir: out,
		Workers:   4,
		Validator: schema.Default(),
	})
	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 6 || stats.Failed != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	for i := 0; i < 6; i++ {
		res := readResult(t, filepath.Join(out, fmt.Sprintf("damaged%d.json", i)))
		if res.Title != "Annual Report  " {
			t.Errorf("damaged%d title = %q", i, res.Title)
		}
	}
}

func TestWriteResultKeepsAmpersands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	res := outline.Result{
		Title: "Terms & Conditions  ",
		Outline: []outline.Entry{
			{Level: "H1", Text: "Q&A <Appendix> ", Page: 0},
		},
	}
	if err := writeResult(path, res); err != nil {
		t.Fatalf("writeResult: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte(`&`)) || bytes.Contains(data, []byte(`<`)) {
		t.Errorf("output is HTML-escaped:\n%s", data)
	}
	if !bytes.Contains(data, []byte("Terms & Conditions")) || !bytes.Contains(data, []byte("Q&A <Appendix>")) {
		t.Errorf("text not preserved:\n%s", data)
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	r := New(Config{InputDir: t.TempDir(), OutputDir: t.TempDir()})
	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 0 || stats.Failed != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}
