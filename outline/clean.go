package outline

import (
	"regexp"
	"strings"
	"unicode"
)

// Cleaning and validation patterns for heading and title text.
var (
	sectionNumbersRe = regexp.MustCompile(`^\s*\d+(?:\.\d+)*\s+`)
	numberingRe      = regexp.MustCompile(`(?i)^\s*(?:\d+(?:[.)]|\s+)|\d+(?:\.\d+)+\s*|[IVXLCDM]+\.\s*|[a-zA-Z]\.\s*)`)
	bulletsRe        = regexp.MustCompile(`^\s*[-•▪▫◦‣⁃]\s*`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	tableContentRe   = regexp.MustCompile(`.*[:;]\s*$|^[^a-zA-Z\x{4e00}-\x{9fff}]{3,}$`)
	copyrightRe      = regexp.MustCompile(`(?i)©.*|copyright.*|\d{4}.*board`)
	pageNumberRe     = regexp.MustCompile(`(?i)^\s*(?:page\s+)?\d+(?:\s+of\s+\d+)?\s*$`)
	wordRe           = regexp.MustCompile(`\b\w+\b`)
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true,
	"page": true, "document": true, "file": true, "untitled": true,
	"draft": true, "version": true, "v": true, "pdf": true,
}

// CleanHeadingText strips numbering, bullets, and trailing punctuation
// artifacts from a heading candidate.
func CleanHeadingText(text string) string {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return ""
	}
	cleaned = strings.TrimSpace(sectionNumbersRe.ReplaceAllString(cleaned, ""))
	cleaned = strings.TrimSpace(numberingRe.ReplaceAllString(cleaned, ""))
	cleaned = strings.TrimSpace(bulletsRe.ReplaceAllString(cleaned, ""))
	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
	return strings.TrimRight(cleaned, ".-_:")
}

func alphaRatio(text string) float64 {
	if text == "" {
		return 0
	}
	alpha := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	return float64(alpha) / float64(len([]rune(text)))
}

func isStopWordOnly(text string) bool {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if !stopWords[w] {
			return false
		}
	}
	return true
}

var formWords = []string{"application", "form", "grant", "ltc"}

// filterCandidates drops noise from raw headings: too short or long,
// page numbers, copyright footers, table fragments, low-alpha runs, and
// duplicates. When the very first surviving candidate reads like a form
// field label the whole outline is discarded.
func filterCandidates(headings []Heading, minLen, maxLen int) []Heading {
	var out []Heading
	seen := make(map[string]bool)
	for _, h := range headings {
		text := strings.TrimSpace(h.Text)
		if n := len([]rune(text)); text == "" || n < minLen || n > maxLen {
			continue
		}
		if pageNumberRe.MatchString(text) || copyrightRe.MatchString(text) {
			continue
		}
		if tableContentRe.MatchString(text) {
			continue
		}
		if alphaRatio(text) < 0.3 {
			continue
		}
		cleaned := CleanHeadingText(text)
		if cleaned == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(cleaned))
		if seen[key] {
			continue
		}
		seen[key] = true

		if len(out) == 0 {
			lower := strings.ToLower(text)
			for _, w := range formWords {
				if strings.Contains(lower, w) {
					return nil
				}
			}
		}

		h.Text = cleaned + " "
		out = append(out, h)
	}
	return out
}
