// Package scoring implements the ATS match score: eight weighted subscores,
// suggestion generation and diminishing-returns aggregation of applied gains.
package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/jobs"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
)

// Engine scores documents against job descriptions. An Engine is safe for
// concurrent use once constructed.
type Engine struct {
	Weights Weights
	Version string
	Now     func() time.Time
}

// NewEngine returns an engine with the ats-v1 weights.
func NewEngine() *Engine {
	return &Engine{Weights: DefaultWeights(), Version: Version, Now: time.Now}
}

// input is the immutable snapshot every subscore reads. Nothing here is
// written after prepare returns.
type input struct {
	doc        *model.Document
	text       string
	lower      string
	lines      []string
	job        jobs.Description
	keywords   []string
	phrases    []string
	jobTerms   map[string]float64
	textTerms  map[string]float64
	validation error
	now        time.Time
}

func (in input) empty() bool {
	return strings.TrimSpace(in.text) == ""
}

// Score scores a structured document. It only fails when ctx is done.
func (e *Engine) Score(ctx context.Context, doc model.Document, job jobs.Description) (Report, error) {
	snapshot := doc.Clone()
	in := e.prepare(&snapshot, snapshot.Text(), job)
	in.validation = snapshot.Validate()
	return e.run(ctx, in)
}

// ScoreText scores raw resume text, for example extracted from a PDF.
func (e *Engine) ScoreText(ctx context.Context, text string, job jobs.Description) (Report, error) {
	return e.run(ctx, e.prepare(nil, text, job))
}

func (e *Engine) prepare(doc *model.Document, text string, job jobs.Description) input {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	jobText := strings.Join(append(append([]string{job.Title, job.RawText}, job.MustHave...), job.Responsibilities...), "\n")
	return input{
		doc:       doc,
		text:      text,
		lower:     normalizeSpace(text),
		lines:     lines,
		job:       job,
		keywords:  job.Keywords(),
		phrases:   jobPhrases(job),
		jobTerms:  termFrequencies(contentTerms(jobText)),
		textTerms: termFrequencies(contentTerms(text)),
		now:       now,
	}
}

type subscoreFunc func(input) int

var subscoreFuncs = map[string]subscoreFunc{
	KeywordExact:        keywordExactScore,
	KeywordPhrase:       keywordPhraseScore,
	SemanticRelevance:   semanticRelevanceScore,
	TitleAlignment:      titleAlignmentScore,
	MetricsPresence:     metricsPresenceScore,
	SectionCompleteness: sectionCompletenessScore,
	FormatParseability:  formatParseabilityScore,
	RecencyFit:          recencyFitScore,
}

func (e *Engine) run(ctx context.Context, in input) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	weights := e.Weights
	if weights == nil {
		weights = DefaultWeights()
	}
	version := e.Version
	if version == "" {
		version = Version
	}

	values := make([]int, len(Names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range Names {
		fn := subscoreFuncs[name]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			values[i] = clampInt(fn(in), 0, 100)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("compute subscores: %w", err)
	}

	subs := make(Subscores, len(Names))
	total := 0.0
	for i, name := range Names {
		subs[name] = values[i]
		total += weights[name] * float64(values[i])
	}

	report := Report{
		Score:          clampInt(int(math.Round(total)), 0, 100),
		Subscores:      subs,
		ScoringVersion: version,
	}
	report.Suggestions = buildSuggestions(in, subs, weights)
	report.Confidence, report.Warnings = confidence(in, subs)
	report.LowConfidence = report.Confidence < LowConfidenceThreshold
	return report, nil
}

// confidence blends job extraction completeness (40%) with resume parse
// quality (60%).
func confidence(in input, subs Subscores) (float64, []string) {
	var warnings []string
	jobPart := in.job.Completeness()
	if in.job.IsEmpty() {
		warnings = append(warnings, "no job description provided; keyword subscores use neutral values")
	}

	resumePart := 0.0
	switch {
	case in.empty():
		warnings = append(warnings, "resume text is empty")
	case in.doc != nil:
		resumePart = float64(subs[SectionCompleteness]) / 100
		if in.validation != nil {
			resumePart *= 0.7
			warnings = append(warnings, "resume has formatting problems: "+in.validation.Error())
		}
	default:
		words := len(strings.Fields(in.text))
		resumePart = math.Min(1, float64(words)/150) * 0.8
	}

	value := math.Round((0.4*jobPart+0.6*resumePart)*100) / 100
	if value < LowConfidenceThreshold {
		warnings = append(warnings, fmt.Sprintf(
			"low confidence %.2f (job extraction completeness %.2f, resume parse quality %.2f)",
			value, jobPart, resumePart))
	}
	return value, warnings
}

// jobPhrases collects multi-word must-have terms and adjacent content-word
// pairs from the responsibilities.
func jobPhrases(job jobs.Description) []string {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		p = normalizeSpace(p)
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}
	for _, k := range job.Keywords() {
		if len(strings.Fields(k)) > 1 {
			add(k)
		}
	}
	for _, resp := range job.Responsibilities {
		tokens := tokenize(resp)
		for i := 0; i+1 < len(tokens); i++ {
			a, b := tokens[i], tokens[i+1]
			if stopwords[a] || stopwords[b] || len(a) < 2 || len(b) < 2 {
				continue
			}
			add(a + " " + b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(strings.Fields(out[i])) > len(strings.Fields(out[j]))
	})
	if len(out) > 15 {
		out = out[:15]
	}
	return out
}
