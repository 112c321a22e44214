package jobs

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Extractor turns raw job text into a Description.
type Extractor interface {
	Extract(ctx context.Context, text string) (Description, error)
}

// HeuristicExtractor extracts sections by heading and bullet layout. It never
// fails and is deterministic.
type HeuristicExtractor struct{}

type section int

const (
	sectionNone section = iota
	sectionRequirements
	sectionResponsibilities
	sectionOther
)

var (
	bulletPrefix  = regexp.MustCompile(`^\s*(?:[-*•·▪–]|\d+[.)])\s*`)
	titlePrefix   = regexp.MustCompile(`(?i)^(?:job\s+title|position|role|title)\s*[:\-]\s*`)
	splitKeywords = regexp.MustCompile(`\s*(?:,|;|\band\b|\bor\b)\s*`)
)

var requirementHeadings = []string{
	"requirements", "required", "must have", "must-have", "qualifications",
	"what you bring", "what we're looking for", "what we are looking for", "skills", "דרישות",
}

var responsibilityHeadings = []string{
	"responsibilities", "what you'll do", "what you will do", "the role", "your role",
	"duties", "in this role", "תחומי אחריות",
}

var otherHeadings = []string{
	"benefits", "about us", "about the company", "perks", "nice to have", "bonus", "why join",
}

// Extract implements Extractor.
func (HeuristicExtractor) Extract(ctx context.Context, text string) (Description, error) {
	if err := ctx.Err(); err != nil {
		return Description{}, err
	}
	desc := Description{RawText: text, Source: SourceHeuristic}
	current := sectionNone
	var requirementLines []string
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		if desc.Title == "" {
			if m := titlePrefix.FindStringIndex(line); m != nil {
				desc.Title = strings.TrimSpace(line[m[1]:])
				continue
			}
		}
		if next, ok := classifyHeading(line); ok {
			current = next
			continue
		}
		isBullet := bulletPrefix.MatchString(line)
		content := strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		switch current {
		case sectionRequirements:
			requirementLines = append(requirementLines, content)
		case sectionResponsibilities:
			desc.Responsibilities = append(desc.Responsibilities, content)
		case sectionNone:
			if desc.Title == "" && !isBullet && looksLikeTitle(content) {
				desc.Title = content
			}
		}
	}

	for _, line := range requirementLines {
		desc.MustHave = append(desc.MustHave, requirementTerms(line)...)
	}
	desc.MustHave = dedupeFold(desc.MustHave)
	if len(desc.MustHave) == 0 {
		desc.MustHave = KeywordsFromText(text)
	}
	if len(desc.MustHave) > 20 {
		desc.MustHave = desc.MustHave[:20]
	}
	if len(desc.Responsibilities) > 10 {
		desc.Responsibilities = desc.Responsibilities[:10]
	}
	return desc, nil
}

func classifyHeading(line string) (section, bool) {
	if len([]rune(line)) > 60 {
		return sectionNone, false
	}
	normalized := strings.ToLower(strings.TrimRight(strings.TrimSpace(line), ":"))
	normalized = strings.TrimSpace(strings.Trim(normalized, "#*"))
	match := func(headings []string) bool {
		for _, h := range headings {
			if normalized == h || strings.HasPrefix(normalized, h+" ") {
				return true
			}
		}
		return false
	}
	switch {
	case match(requirementHeadings):
		return sectionRequirements, true
	case match(responsibilityHeadings):
		return sectionResponsibilities, true
	case match(otherHeadings):
		return sectionOther, true
	default:
		return sectionNone, false
	}
}

func looksLikeTitle(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > 8 {
		return false
	}
	return !strings.HasSuffix(line, ".")
}

// requirementTerms reduces a requirement sentence to short keyword phrases.
// "3+ years with Go, Kafka and PostgreSQL" → [Go Kafka PostgreSQL].
func requirementTerms(line string) []string {
	line = strings.TrimSuffix(strings.TrimSpace(line), ".")
	if idx := strings.LastIndex(strings.ToLower(line), " with "); idx >= 0 {
		line = line[idx+len(" with "):]
	} else if idx := strings.LastIndex(strings.ToLower(line), " in "); idx >= 0 && len(strings.Fields(line)) > 4 {
		line = line[idx+len(" in "):]
	}
	var out []string
	for _, part := range splitKeywords.Split(line, -1) {
		part = strings.Trim(strings.TrimSpace(part), "().")
		if part == "" || len(strings.Fields(part)) > 4 {
			continue
		}
		out = append(out, part)
	}
	return out
}

var knownTerms = []string{
	"go", "golang", "python", "java", "javascript", "typescript", "rust", "c++", "c#", "ruby", "php", "kotlin", "swift", "scala",
	"sql", "postgresql", "mysql", "mongodb", "redis", "kafka", "rabbitmq", "elasticsearch",
	"aws", "gcp", "azure", "docker", "kubernetes", "terraform", "linux", "git", "ci/cd",
	"react", "node.js", "graphql", "rest", "grpc", "microservices",
	"machine learning", "data analysis", "excel", "tableau", "figma",
	"agile", "scrum", "leadership", "communication", "project management", "product management",
}

// KeywordsFromText finds known skill terms and capitalized technical tokens in
// free text. The result is sorted case-insensitively for determinism.
func KeywordsFromText(text string) []string {
	lower := " " + strings.ToLower(text) + " "
	found := make([]string, 0, 16)
	for _, term := range knownTerms {
		if containsTerm(lower, term) {
			found = append(found, term)
		}
	}
	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';' || r == '(' || r == ')' || r == ':'
	}) {
		token = strings.Trim(token, ".!?\"'")
		if isTechToken(token) {
			found = append(found, token)
		}
	}
	out := dedupeFold(found)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

func containsTerm(haystack, term string) bool {
	idx := 0
	for {
		pos := strings.Index(haystack[idx:], term)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(term)
		if !isWordRune(haystack, start-1) && !isWordRune(haystack, end) {
			return true
		}
		idx = start + 1
	}
}

func isWordRune(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// isTechToken matches tokens such as "PostgreSQL", "gRPC" or "K8s": mixed case
// inside the word or letters combined with digits.
func isTechToken(token string) bool {
	if len(token) < 2 || len(token) > 30 {
		return false
	}
	var upperInside, lower, digit, letter bool
	for i, r := range token {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLetter(r):
			letter = true
			if unicode.IsLower(r) {
				lower = true
			} else if i > 0 && unicode.IsUpper(r) {
				upperInside = true
			}
		}
	}
	if !letter {
		return false
	}
	return (upperInside && lower) || digit
}
