// Package lang detects the dominant script of a text and its writing direction.
// The result is metadata only; scoring never branches on it.
package lang

import (
	"strings"
	"unicode"
)

const (
	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

// Result describes a detected language.
type Result struct {
	Language   string  `json:"language"`
	Direction  string  `json:"direction"`
	Confidence float64 `json:"confidence"`
}

var scripts = []struct {
	table *unicode.RangeTable
	lang  string
	dir   string
}{
	{unicode.Hebrew, "he", DirectionRTL},
	{unicode.Arabic, "ar", DirectionRTL},
	{unicode.Cyrillic, "ru", DirectionLTR},
	{unicode.Greek, "el", DirectionLTR},
	{unicode.Han, "zh", DirectionLTR},
	{unicode.Latin, "en", DirectionLTR},
}

// Detect counts letters per script and picks the dominant one. Empty or
// letterless input yields English/ltr with zero confidence.
func Detect(text string) Result {
	counts := make([]int, len(scripts))
	total := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		total++
		for i, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[i]++
				break
			}
		}
	}
	if total == 0 {
		return Result{Language: "en", Direction: DirectionLTR}
	}
	best := len(scripts) - 1
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return Result{
		Language:   scripts[best].lang,
		Direction:  scripts[best].dir,
		Confidence: float64(counts[best]) / float64(total),
	}
}

// Resolve prefers an explicit hint ("he", "en-US") over detection.
func Resolve(hint, text string) Result {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return Detect(text)
	}
	base := hint
	if idx := strings.IndexAny(base, "-_"); idx > 0 {
		base = base[:idx]
	}
	dir := DirectionLTR
	switch base {
	case "he", "iw", "ar", "fa", "ur", "yi":
		dir = DirectionRTL
	}
	return Result{Language: base, Direction: dir, Confidence: 1}
}
