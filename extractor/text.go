package extractor

import (
	"math"
	"strings"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/contentstream"
)

// spansToBlocks decodes span bytes through their fonts and merges spans
// that sit on the same baseline with the same attributes into one block.
func spansToBlocks(spans []contentstream.Span, fonts map[string]*fontInfo, page int) []TextBlock {
	var blocks []TextBlock
	for _, span := range spans {
		fi := fonts[span.Font]
		text := decodeSpan(span, fi)
		if strings.TrimSpace(text) == "" {
			continue
		}
		block := TextBlock{
			Text:     text,
			FontSize: round2(span.Size),
			X:        span.X,
			Y:        span.Y,
			Page:     page,
		}
		if fi != nil {
			block.FontName = fi.baseName
			block.Bold = fi.bold
			block.Italic = fi.italic
		}
		if n := len(blocks); n > 0 && sameLine(&blocks[n-1], &block) {
			prev := &blocks[n-1]
			if needsSpace(prev.Text, block.Text) {
				prev.Text += " "
			}
			prev.Text += block.Text
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}

func decodeSpan(span contentstream.Span, fi *fontInfo) string {
	var sb strings.Builder
	for _, chunk := range span.Chunks {
		sb.WriteString(fi.decode(chunk))
	}
	return sb.String()
}

// sameLine merges spans whose baselines coincide and whose font
// attributes match; a show operation split across Tj calls stays one
// block.
func sameLine(a, b *TextBlock) bool {
	if a.Page != b.Page || a.Bold != b.Bold || a.Italic != b.Italic {
		return false
	}
	if a.FontName != b.FontName {
		return false
	}
	if math.Abs(a.FontSize-b.FontSize) > 0.1 {
		return false
	}
	return math.Abs(a.Y-b.Y) < 2.0
}

func needsSpace(left, right string) bool {
	if left == "" || right == "" {
		return false
	}
	return !strings.HasSuffix(left, " ") && !strings.HasPrefix(right, " ")
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
