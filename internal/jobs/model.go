package jobs

import "strings"

// Description is the structured view of a job posting used for scoring.
type Description struct {
	Title            string   `json:"title"`
	MustHave         []string `json:"must_have"`
	Responsibilities []string `json:"responsibilities"`
	RawText          string   `json:"raw_text,omitempty"`
	Source           string   `json:"source,omitempty"`
}

const (
	SourceHeuristic = "heuristic"
	SourceLLM       = "llm"
	SourceProvided  = "provided"
)

// IsEmpty reports whether nothing about the job is known.
func (d Description) IsEmpty() bool {
	return strings.TrimSpace(d.Title) == "" &&
		len(d.MustHave) == 0 &&
		len(d.Responsibilities) == 0 &&
		strings.TrimSpace(d.RawText) == ""
}

// Completeness scores how much structure was extracted, in [0,1].
func (d Description) Completeness() float64 {
	score := 0.0
	if strings.TrimSpace(d.Title) != "" {
		score += 0.3
	}
	score += 0.4 * minFloat(float64(len(d.MustHave))/5, 1)
	score += 0.3 * minFloat(float64(len(d.Responsibilities))/3, 1)
	return score
}

// Keywords returns must-have terms, falling back to capitalized or technical
// tokens from the raw text when extraction produced none.
func (d Description) Keywords() []string {
	if len(d.MustHave) > 0 {
		return dedupeFold(d.MustHave)
	}
	return KeywordsFromText(d.RawText)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func dedupeFold(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}
