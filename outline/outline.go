// Package outline derives a document outline from extracted text blocks:
// a title plus a list of leveled headings. Embedded bookmark trees are
// trusted when present; otherwise headings are detected from font size
// statistics and layout.
package outline

import (
	"fmt"
	"strings"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/extractor"
)

// Entry is one outline item. Level is "H1".."H6"; Page is 0-based.
type Entry struct {
	Level string `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Result is the full output for one document.
type Result struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
}

type Config struct {
	HeadingThreshold float64
	MinLength        int
	MaxLength        int
	MaxLevel         int
}

// Builder assembles outline results from extracted documents.
type Builder struct {
	cfg      Config
	detector *HeadingDetector
	titles   *TitleExtractor
}

func NewBuilder(cfg Config) *Builder {
	if cfg.HeadingThreshold <= 0 {
		cfg.HeadingThreshold = 1.15
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = 3
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = 200
	}
	if cfg.MaxLevel <= 0 || cfg.MaxLevel > 6 {
		cfg.MaxLevel = 3
	}
	return &Builder{
		cfg:      cfg,
		detector: NewHeadingDetector(cfg),
		titles:   NewTitleExtractor(),
	}
}

// Build produces the outline for one document. filename is the source
// file's stem, used as a title fallback.
func (b *Builder) Build(doc *extractor.Document, filename string) Result {
	blocks := flattenBlocks(doc)
	title := b.titles.ExtractWithFallback(blocks, doc.Metadata.Title, filename)

	if len(doc.Bookmarks) > 0 {
		return Result{Title: title, Outline: b.fromBookmarks(doc.Bookmarks)}
	}
	if shouldHaveEmptyOutline(blocks) {
		return Result{Title: title, Outline: []Entry{}}
	}

	raw := b.detector.Detect(blocks)
	filtered := filterCandidates(raw, b.cfg.MinLength, b.cfg.MaxLength)
	out := make([]Entry, 0, len(filtered))
	for _, h := range filtered {
		out = append(out, Entry{Level: h.Level, Text: h.Text, Page: h.Page})
	}
	return Result{Title: title, Outline: out}
}

// fromBookmarks converts an embedded outline tree, which is authoritative
// when the producer bothered to write one.
func (b *Builder) fromBookmarks(bookmarks []extractor.Bookmark) []Entry {
	out := make([]Entry, 0, len(bookmarks))
	for _, bm := range bookmarks {
		text := strings.TrimSpace(bm.Title)
		if text == "" {
			continue
		}
		level := bm.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		page := bm.Page - 1
		if page < 0 {
			page = 0
		}
		out = append(out, Entry{
			Level: fmt.Sprintf("H%d", level),
			Text:  text,
			Page:  page,
		})
	}
	return out
}

// Block is a text block in the form heading detection works on. Page is
// 0-based and Top is the distance from the top edge of the page.
type Block struct {
	Text       string
	FontSize   float64
	Bold       bool
	Italic     bool
	Page       int
	Top        float64
	X          float64
	PageHeight float64
}

func flattenBlocks(doc *extractor.Document) []Block {
	var out []Block
	for _, page := range doc.Pages {
		height := page.Height
		if height <= 0 {
			height = 792
		}
		for _, tb := range page.Blocks {
			out = append(out, Block{
				Text:       tb.Text,
				FontSize:   tb.FontSize,
				Bold:       tb.Bold,
				Italic:     tb.Italic,
				Page:       page.Number - 1,
				Top:        height - tb.Y,
				X:          tb.X,
				PageHeight: height,
			})
		}
	}
	return out
}

var formIndicators = []string{"application", "form", "grant", "ltc", "government", "servant"}

// shouldHaveEmptyOutline flags documents that are forms rather than
// structured prose; their field labels would otherwise masquerade as
// headings.
func shouldHaveEmptyOutline(blocks []Block) bool {
	if len(blocks) == 0 {
		return true
	}
	n := len(blocks)
	if n > 20 {
		n = 20
	}
	var sb strings.Builder
	for _, b := range blocks[:n] {
		sb.WriteString(strings.ToLower(b.Text))
		sb.WriteByte(' ')
	}
	content := sb.String()
	count := 0
	for _, ind := range formIndicators {
		if strings.Contains(content, ind) {
			count++
		}
	}
	return count >= 3
}
