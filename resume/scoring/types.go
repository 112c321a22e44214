package scoring

import (
	"fmt"
	"math"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/patch"
)

// Version identifies the weight set. Before/after reports are only comparable
// when both carry the same version.
const Version = "ats-v1"

// LowConfidenceThreshold marks reports whose inputs were too thin to trust.
const LowConfidenceThreshold = 0.5

// WeakSubscoreThreshold selects subscores that generate suggestions.
const WeakSubscoreThreshold = 70

const (
	KeywordExact        = "keyword_exact"
	KeywordPhrase       = "keyword_phrase"
	SemanticRelevance   = "semantic_relevance"
	TitleAlignment      = "title_alignment"
	MetricsPresence     = "metrics_presence"
	SectionCompleteness = "section_completeness"
	FormatParseability  = "format_parseability"
	RecencyFit          = "recency_fit"
)

// Names lists subscores in their canonical order.
var Names = []string{
	KeywordExact, KeywordPhrase, SemanticRelevance, TitleAlignment,
	MetricsPresence, SectionCompleteness, FormatParseability, RecencyFit,
}

// Weights maps subscore names to their share of the overall score.
type Weights map[string]float64

// DefaultWeights is the ats-v1 weight set.
func DefaultWeights() Weights {
	return Weights{
		KeywordExact:        0.25,
		KeywordPhrase:       0.10,
		SemanticRelevance:   0.15,
		TitleAlignment:      0.10,
		MetricsPresence:     0.10,
		SectionCompleteness: 0.10,
		FormatParseability:  0.10,
		RecencyFit:          0.10,
	}
}

// Validate checks that every subscore has a weight and that they sum to 1.
func (w Weights) Validate() error {
	sum := 0.0
	for _, name := range Names {
		v, ok := w[name]
		if !ok {
			return fmt.Errorf("missing weight for %s", name)
		}
		if v < 0 {
			return fmt.Errorf("negative weight for %s", name)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("weights sum to %.4f, want 1", sum)
	}
	return nil
}

// Subscores holds the eight named metrics, each in [0,100].
type Subscores map[string]int

// Suggestion is one actionable improvement derived from a weak subscore.
type Suggestion struct {
	ID            string      `json:"id"`
	Number        int         `json:"number"`
	Text          string      `json:"text"`
	EstimatedGain int         `json:"estimated_gain"`
	QuickWin      bool        `json:"quick_win"`
	Category      string      `json:"category"`
	Targets       []string    `json:"targets"`
	Patch         patch.Patch `json:"patch,omitempty"`
}

// Report is the output of a scoring pass.
type Report struct {
	Score          int          `json:"score"`
	Subscores      Subscores    `json:"subscores"`
	Suggestions    []Suggestion `json:"suggestions"`
	Confidence     float64      `json:"confidence"`
	LowConfidence  bool         `json:"low_confidence"`
	ScoringVersion string       `json:"scoring_version"`
	Warnings       []string     `json:"warnings,omitempty"`
}

// Suggestion returns the suggestion with the given id.
func (r Report) Suggestion(id string) (Suggestion, bool) {
	for _, s := range r.Suggestions {
		if s.ID == id {
			return s, true
		}
	}
	return Suggestion{}, false
}

// SuggestionByNumber resolves a 1-based tip number.
func (r Report) SuggestionByNumber(n int) (Suggestion, bool) {
	if n < 1 || n > len(r.Suggestions) {
		return Suggestion{}, false
	}
	return r.Suggestions[n-1], true
}

// Delta compares two reports produced with the same scoring version.
type Delta struct {
	Score     int            `json:"score"`
	Subscores map[string]int `json:"subscores"`
}

// Compare returns after minus before. Reports from different versions are rejected.
func Compare(before, after Report) (Delta, error) {
	if before.ScoringVersion != after.ScoringVersion {
		return Delta{}, fmt.Errorf("scoring version mismatch: %s vs %s", before.ScoringVersion, after.ScoringVersion)
	}
	d := Delta{Score: after.Score - before.Score, Subscores: make(map[string]int, len(Names))}
	for _, name := range Names {
		d.Subscores[name] = after.Subscores[name] - before.Subscores[name]
	}
	return d, nil
}
