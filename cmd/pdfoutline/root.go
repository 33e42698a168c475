// pdfoutline extracts structured outlines from PDF documents.
//
// Usage:
//
//	pdfoutline extract [input-dir] [output-dir]
//	pdfoutline healthcheck
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "pdfoutline",
	Short: "PDF outline extraction",
	Long: "pdfoutline parses PDF files, detects headings from font statistics and\n" +
		"embedded bookmarks, and writes one JSON outline per document.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(healthcheckCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
