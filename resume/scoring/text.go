package scoring

import (
	"regexp"
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true, "by": true,
	"for": true, "from": true, "has": true, "have": true, "in": true, "is": true, "it": true, "its": true,
	"of": true, "on": true, "or": true, "our": true, "that": true, "the": true, "their": true, "this": true,
	"to": true, "we": true, "will": true, "with": true, "you": true, "your": true, "who": true, "all": true,
	"can": true, "into": true, "across": true, "about": true, "than": true, "more": true, "other": true,
	"years": true, "year": true, "experience": true, "strong": true, "ability": true, "work": true,
}

var (
	metricPattern = regexp.MustCompile(`\d|%|\$|€|£|₪`)
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern  = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// tokenize lowercases text and splits it into word tokens. Characters common
// in technology names (+ # .) are kept inside tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.')
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// contentTerms returns stemmed, stopword-free tokens.
func contentTerms(text string) []string {
	tokens := tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if stopwords[t] || len([]rune(t)) < 2 {
			continue
		}
		out = append(out, stem(t))
	}
	return out
}

// stem strips a few common English suffixes. Good enough for overlap scoring.
func stem(token string) string {
	for _, suffix := range []string{"ing", "ed", "es", "s"} {
		if len(token) > len(suffix)+3 && strings.HasSuffix(token, suffix) {
			return strings.TrimSuffix(token, suffix)
		}
	}
	return token
}

func normalizeSpace(text string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(strings.ToLower(text), " "))
}

// containsFold reports a case-insensitive substring match.
func containsFold(haystackLower, needle string) bool {
	needle = normalizeSpace(needle)
	if needle == "" {
		return false
	}
	return strings.Contains(haystackLower, needle)
}

// containsWord reports a case-insensitive whole-word match.
func containsWord(haystackLower, needle string) bool {
	needle = normalizeSpace(needle)
	if needle == "" {
		return false
	}
	idx := 0
	for {
		pos := strings.Index(haystackLower[idx:], needle)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(needle)
		if !wordByteAt(haystackLower, start-1) && !wordByteAt(haystackLower, end) {
			return true
		}
		idx = start + 1
	}
}

func wordByteAt(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func hasMetric(text string) bool {
	return metricPattern.MatchString(text)
}

func termFrequencies(terms []string) map[string]float64 {
	out := make(map[string]float64, len(terms))
	for _, t := range terms {
		out[t]++
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func slugify(input string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(input)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "item"
	}
	return out
}

func truncate(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
