package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/config"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/extractor"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/outline"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/schema"
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Verify the container is able to process files",
	Long: `Checks that the configured schema loads, that a built-in synthetic PDF
round-trips through the extraction pipeline, and that the input and output
directories exist. Exits non-zero when any check fails, which container
orchestrators surface as an unhealthy instance.`,
	RunE: runHealthcheck,
}

func runHealthcheck(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	validator, err := loadValidator(settings.SchemaPath)
	if err != nil {
		return err
	}
	if err := selfTest(cmd.Context(), validator); err != nil {
		return fmt.Errorf("pipeline self-test: %w", err)
	}
	// The input may be a single .pdf file; the output must be a directory.
	if _, err := os.Stat(settings.InputDir); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	info, err := os.Stat(settings.OutputDir)
	if err != nil {
		return fmt.Errorf("stat output: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output %s is not a directory", settings.OutputDir)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

// selfTest extracts a synthetic single-page document and validates the
// result against the active schema.
func selfTest(ctx context.Context, validator *schema.Validator) error {
	doc, err := extractor.New(extractor.Config{}).Extract(ctx, bytes.NewReader(selfTestPDF()))
	if err != nil {
		return err
	}
	if len(doc.Pages) != 1 {
		return fmt.Errorf("got %d pages, want 1", len(doc.Pages))
	}
	result := outline.NewBuilder(outline.Config{}).Build(doc, "healthcheck")
	if result.Title == "" {
		return fmt.Errorf("empty title from synthetic document")
	}
	if validator != nil {
		if err := validator.ValidateValue(result); err != nil {
			return err
		}
	}
	return nil
}

// selfTestPDF builds a minimal one-page document with a title line and a
// body line.
func selfTestPDF() []byte {
	var buf bytes.Buffer
	offsets := make(map[int]int64)
	buf.WriteString("%PDF-1.4\n")
	add := func(num int, body string) {
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	content := "BT /F1 18 Tf 72 760 Td (Pipeline Self Test) Tj " +
		"/F1 10 Tf 0 -40 Td (Body text for the health check.) Tj ET"
	add(1, "<< /Type /Catalog /Pages 2 0 R >>")
	add(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 612 792] >>")
	add(3, "<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	add(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	offsets[5] = int64(buf.Len())
	fmt.Fprintf(&buf, "5 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(content), content)

	start := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", start)
	return buf.Bytes()
}
