package outline

import (
	"math"
	"sort"
	"strings"
)

// TitleExtractor picks a document title through a chain of strategies:
// largest font near the top of the first page, then document metadata,
// then the first meaningful line, then the filename.
type TitleExtractor struct {
	strategy string
}

func NewTitleExtractor() *TitleExtractor { return &TitleExtractor{} }

// Strategy names the approach that produced the last title.
func (te *TitleExtractor) Strategy() string { return te.strategy }

func (te *TitleExtractor) ExtractWithFallback(blocks []Block, metadataTitle, filename string) string {
	if title, ok := te.fromLargestFont(blocks); ok {
		te.strategy = "font_size"
		return title + "  "
	}
	if isValidTitle(metadataTitle) {
		te.strategy = "metadata"
		return strings.TrimSpace(metadataTitle) + "  "
	}
	if title, ok := te.fromFirstLine(blocks); ok {
		te.strategy = "first_line"
		return title + "  "
	}
	if filename != "" {
		stem := strings.TrimSuffix(filename, ".pdf")
		stem = strings.ReplaceAll(stem, "_", " ")
		stem = strings.ReplaceAll(stem, "-", " ")
		if stem = strings.TrimSpace(stem); stem != "" {
			te.strategy = "filename"
			return stem + "  "
		}
	}
	te.strategy = "default"
	return "Untitled Document"
}

// fromLargestFont looks at the top 15% of the first page and takes the
// largest text there, merging neighbors of near-equal size.
func (te *TitleExtractor) fromLargestFont(blocks []Block) (string, bool) {
	var firstPage []Block
	for _, b := range blocks {
		if b.Page == 0 {
			firstPage = append(firstPage, b)
		}
	}
	if len(firstPage) == 0 {
		return "", false
	}

	pageHeight := firstPage[0].PageHeight
	if pageHeight <= 0 {
		pageHeight = 792
	}
	cutoff := pageHeight * 0.15

	var upper []Block
	for _, b := range firstPage {
		if b.Top <= cutoff {
			upper = append(upper, b)
		}
	}
	if len(upper) == 0 {
		sorted := append([]Block(nil), firstPage...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Top < sorted[j].Top })
		if len(sorted) > 3 {
			sorted = sorted[:3]
		}
		upper = sorted
	}

	maxSize := upper[0].FontSize
	for _, b := range upper {
		if b.FontSize > maxSize {
			maxSize = b.FontSize
		}
	}
	titleIdx := -1
	for i, b := range upper {
		if b.FontSize == maxSize && (titleIdx < 0 || b.Top < upper[titleIdx].Top) {
			titleIdx = i
		}
	}
	titleBlock := upper[titleIdx]

	parts := []string{titleBlock.Text}
	for i, b := range upper {
		if i == titleIdx {
			continue
		}
		if math.Abs(b.FontSize-maxSize) <= 1.0 && math.Abs(b.Top-titleBlock.Top) <= 30 {
			parts = append(parts, b.Text)
		}
	}
	candidate := strings.TrimSpace(strings.Join(parts, " "))
	if isValidTitle(candidate) {
		return candidate, true
	}
	return "", false
}

// fromFirstLine scans the first blocks in reading order for a line that
// is not boilerplate.
func (te *TitleExtractor) fromFirstLine(blocks []Block) (string, bool) {
	sorted := append([]Block(nil), blocks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}
		return sorted[i].Top < sorted[j].Top
	})
	if len(sorted) > 20 {
		sorted = sorted[:20]
	}
	for _, b := range sorted {
		text := strings.TrimSpace(b.Text)
		if len(text) < 3 {
			continue
		}
		if pageNumberRe.MatchString(text) || copyrightRe.MatchString(text) {
			continue
		}
		if isValidTitle(text) && !isStopWordOnly(text) {
			return text, true
		}
	}
	return "", false
}

var invalidTitleSubstrings = []string{
	"page ", "document", "draft", "version", "table of contents", "toc", "index",
}

func isValidTitle(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 3 {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, bad := range invalidTitleSubstrings {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	if alphaRatio(text) < 0.3 {
		return false
	}
	if tableContentRe.MatchString(text) {
		return false
	}
	return true
}
