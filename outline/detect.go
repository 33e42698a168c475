package outline

import (
	"fmt"
	"regexp"
	"strings"
)

// Heading is a raw heading candidate before filtering.
type Heading struct {
	Level    string
	Text     string
	Page     int
	FontSize float64
	Bold     bool
}

// HeadingDetector finds heading candidates by comparing each block's font
// size against the document's body size.
type HeadingDetector struct {
	cfg       Config
	clusterer *FontClusterer
	stats     FontStatistics
	levels    map[float64]int
}

func NewHeadingDetector(cfg Config) *HeadingDetector {
	return &HeadingDetector{cfg: cfg, clusterer: NewFontClusterer()}
}

var numberingDepthRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)[.)]?\s+\S`)

// Detect returns heading candidates in reading order. A block is a
// heading when its font size clears bodySize*threshold, or when it is
// bold at body size or above and short enough to plausibly be one.
func (hd *HeadingDetector) Detect(blocks []Block) []Heading {
	hd.stats = AnalyzeFontDistribution(blocks)
	hd.levels = hd.clusterer.HeadingLevels(
		hd.stats.SizeCounts, hd.stats.BodySize, hd.cfg.HeadingThreshold, hd.cfg.MaxLevel)

	cutoff := hd.stats.BodySize * hd.cfg.HeadingThreshold
	var out []Heading
	for _, b := range blocks {
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}
		bySize := b.FontSize >= cutoff
		byWeight := b.Bold && b.FontSize >= hd.stats.BodySize && len(text) <= 100
		if !bySize && !byWeight {
			continue
		}
		if len(text) > 100 && !numberingDepthRe.MatchString(text) {
			continue
		}
		out = append(out, Heading{
			Level:    hd.level(b, text),
			Text:     text,
			Page:     b.Page,
			FontSize: b.FontSize,
			Bold:     b.Bold,
		})
	}
	return out
}

// level picks the heading tier: a numbering prefix like "2.1.3" fixes the
// depth outright; otherwise the font size cluster decides.
func (hd *HeadingDetector) level(b Block, text string) string {
	if m := numberingDepthRe.FindStringSubmatch(text); m != nil {
		depth := strings.Count(m[1], ".") + 1
		if depth > hd.cfg.MaxLevel {
			depth = hd.cfg.MaxLevel
		}
		return fmt.Sprintf("H%d", depth)
	}
	if lvl, ok := hd.levels[b.FontSize]; ok {
		return fmt.Sprintf("H%d", lvl)
	}
	// Bold at body size with no size cluster: deepest tier.
	return fmt.Sprintf("H%d", hd.cfg.MaxLevel)
}

// Stats exposes the distribution computed by the last Detect call.
func (hd *HeadingDetector) Stats() FontStatistics { return hd.stats }
