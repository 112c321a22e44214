package scoring

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/patch"
)

const (
	maxSuggestionsPerSubscore = 3
	minGain                   = 1
	maxGain                   = 15
)

type suggestionFunc func(in input, value int, weight float64) []Suggestion

var suggestionFuncs = map[string]suggestionFunc{
	KeywordExact:        keywordSuggestions,
	KeywordPhrase:       phraseSuggestions,
	SemanticRelevance:   semanticSuggestions,
	TitleAlignment:      titleSuggestions,
	MetricsPresence:     metricsSuggestions,
	SectionCompleteness: sectionSuggestions,
	FormatParseability:  formatSuggestions,
	RecencyFit:          recencySuggestions,
}

// buildSuggestions walks weak subscores from weakest to strongest and derives
// up to three suggestions for each. Numbers are assigned 1..n in output order.
func buildSuggestions(in input, subs Subscores, weights Weights) []Suggestion {
	weak := make([]string, 0, len(Names))
	for _, name := range Names {
		if subs[name] < WeakSubscoreThreshold {
			weak = append(weak, name)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		return subs[weak[i]] < subs[weak[j]]
	})

	var candidates []Suggestion
	for _, name := range weak {
		items := suggestionFuncs[name](in, subs[name], weights[name])
		if len(items) > maxSuggestionsPerSubscore {
			items = items[:maxSuggestionsPerSubscore]
		}
		for i := range items {
			items[i].Category = name
			items[i].EstimatedGain = clampInt(items[i].EstimatedGain, minGain, maxGain)
		}
		candidates = append(candidates, items...)
	}

	out := dedupe(candidates)
	for i := range out {
		out[i].Number = i + 1
	}
	return out
}

func dedupe(items []Suggestion) []Suggestion {
	seen := make(map[string]bool, len(items))
	out := make([]Suggestion, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}

// gainFor spreads the weighted deficit of a subscore over the suggestions
// that address it.
func gainFor(weight float64, deficit float64, parts int) int {
	if parts < 1 {
		parts = 1
	}
	return int(math.Round(weight * deficit / float64(parts)))
}

func capped(n int) int {
	if n > maxSuggestionsPerSubscore {
		return maxSuggestionsPerSubscore
	}
	return n
}

func keywordSuggestions(in input, _ int, weight float64) []Suggestion {
	if len(in.keywords) == 0 {
		return nil
	}
	missing := missingKeywords(in)
	gain := gainFor(weight, 100, len(in.keywords))
	out := make([]Suggestion, 0, capped(len(missing)))
	for _, k := range missing {
		s := Suggestion{
			ID:            "kw-" + slugify(k),
			Text:          fmt.Sprintf("Add %q to your technical skills if you have used it; the job lists it as required", k),
			EstimatedGain: gain,
			QuickWin:      true,
			Targets:       []string{"skills.technical"},
		}
		if in.doc != nil {
			s.Patch = patch.Patch{patch.AppendUnique("skills.technical", k)}
		}
		out = append(out, s)
	}
	return out
}

func phraseSuggestions(in input, value int, weight float64) []Suggestion {
	missing := missingPhrases(in)
	if len(in.phrases) == 0 {
		return nil
	}
	gain := gainFor(weight, 100, len(in.phrases))
	out := make([]Suggestion, 0, capped(len(missing)))
	for _, p := range missing {
		out = append(out, Suggestion{
			ID:            "phrase-" + slugify(p),
			Text:          fmt.Sprintf("Work the phrase %q into a relevant achievement or your summary", p),
			EstimatedGain: gain,
			Targets:       []string{"summary", "experience"},
		})
	}
	return out
}

func semanticSuggestions(in input, value int, weight float64) []Suggestion {
	deficit := float64(100 - value)
	var uncovered []string
	for _, resp := range in.job.Responsibilities {
		terms := uniqueTerms(contentTerms(resp))
		if len(terms) == 0 {
			continue
		}
		hits := 0
		for _, t := range terms {
			if in.textTerms[t] > 0 {
				hits++
			}
		}
		if float64(hits)/float64(len(terms)) < 0.5 {
			uncovered = append(uncovered, resp)
		}
	}
	if len(uncovered) == 0 {
		return []Suggestion{{
			ID:            "semantic-summary",
			Text:          "Rewrite your summary to mirror the focus and vocabulary of the job description",
			EstimatedGain: gainFor(weight, deficit, 1),
			Targets:       []string{"summary"},
		}}
	}
	parts := capped(len(uncovered))
	out := make([]Suggestion, 0, parts)
	for _, resp := range uncovered {
		out = append(out, Suggestion{
			ID:            "semantic-" + slugify(truncate(resp, 40)),
			Text:          fmt.Sprintf("Describe experience that matches this responsibility: %q", truncate(resp, 120)),
			EstimatedGain: gainFor(weight, deficit, parts),
			Targets:       []string{"experience"},
		})
	}
	return out
}

func titleSuggestions(in input, value int, weight float64) []Suggestion {
	title := strings.TrimSpace(in.job.Title)
	if title == "" {
		return nil
	}
	s := Suggestion{
		ID:            "title-headline",
		Text:          fmt.Sprintf("Align your headline with the target role %q", title),
		EstimatedGain: gainFor(weight, float64(100-value), 1),
		QuickWin:      true,
		Targets:       []string{"contact.headline"},
	}
	if in.doc != nil {
		s.Patch = patch.Patch{patch.Set("contact.headline", title)}
	}
	return []Suggestion{s}
}

func metricsSuggestions(in input, value int, weight float64) []Suggestion {
	deficit := float64(100 - value)
	var plain []bullet
	for _, b := range bullets(in) {
		if !hasMetric(b.text) {
			plain = append(plain, b)
		}
	}
	if len(plain) == 0 {
		return []Suggestion{{
			ID:            "metrics-add-achievements",
			Text:          "Add achievement bullets with measurable results to each role",
			EstimatedGain: gainFor(weight, deficit, 1),
			Targets:       []string{"experience"},
		}}
	}
	parts := capped(len(plain))
	out := make([]Suggestion, 0, parts)
	for i, b := range plain {
		id := "metrics-" + strconv.Itoa(i)
		var targets []string
		if b.target != "" {
			id = "metrics-" + slugify(b.target)
			targets = []string{b.target}
		}
		out = append(out, Suggestion{
			ID:            id,
			Text:          fmt.Sprintf("Quantify this achievement with numbers, percentages or time saved: %q", truncate(b.text, 80)),
			EstimatedGain: gainFor(weight, deficit, parts),
			Targets:       targets,
		})
	}
	return out
}

var sectionAdvice = map[string]struct {
	text     string
	quickWin bool
	target   string
}{
	"experience": {"Add a work experience section with roles, dates and achievements", false, "experience"},
	"skills":     {"Add a skills section listing the tools and technologies you use", true, "skills.technical"},
	"summary":    {"Add a two to three sentence professional summary", false, "summary"},
	"education":  {"Add your education or relevant certifications", true, "education"},
	"contact":    {"Add your name and an email address or phone number", true, "contact"},
}

func sectionSuggestions(in input, value int, weight float64) []Suggestion {
	var out []Suggestion
	for _, c := range sectionChecks(in) {
		points := c.points
		switch {
		case c.present && c.partial > 0:
			points = c.points - c.partial
		case c.present:
			continue
		}
		advice := sectionAdvice[c.name]
		text := advice.text
		if c.present {
			text = "Add achievement bullets to your experience entries"
		}
		s := Suggestion{
			ID:            "section-" + c.name,
			Text:          text,
			EstimatedGain: gainFor(weight, float64(points), 1),
			QuickWin:      advice.quickWin,
			Targets:       []string{advice.target},
		}
		if c.name == "skills" && in.doc != nil {
			if found := keywordsInText(in); len(found) > 0 {
				s.Patch = patch.Patch{patch.AppendUnique("skills.technical", found...)}
			}
		}
		out = append(out, s)
	}
	return out
}

// keywordsInText returns job keywords the resume already mentions, which are
// safe to list as skills.
func keywordsInText(in input) []string {
	var out []string
	for _, k := range in.keywords {
		if containsFold(in.lower, k) {
			out = append(out, k)
		}
	}
	return out
}

func formatSuggestions(in input, value int, weight float64) []Suggestion {
	issues := formatIssues(in)
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].penalty > issues[j].penalty
	})
	out := make([]Suggestion, 0, capped(len(issues)))
	for _, issue := range issues {
		var targets []string
		if issue.target != "" {
			targets = []string{issue.target}
		}
		out = append(out, Suggestion{
			ID:            "format-" + issue.id,
			Text:          issue.text,
			EstimatedGain: gainFor(weight, float64(issue.penalty), 1),
			QuickWin:      true,
			Targets:       targets,
		})
	}
	return out
}

func recencySuggestions(in input, value int, weight float64) []Suggestion {
	deficit := float64(100 - value)
	if in.doc == nil || len(in.doc.Experience) == 0 {
		return []Suggestion{{
			ID:            "recency-dates",
			Text:          "Show dates for your roles, with your most recent position first",
			EstimatedGain: gainFor(weight, deficit, 1),
			QuickWin:      true,
			Targets:       []string{"experience"},
		}}
	}
	idx, at, ok := mostRecentRole(in)
	var out []Suggestion
	if !ok {
		out = append(out, Suggestion{
			ID:            "recency-dates",
			Text:          "Add dates to your most recent role so recency can be judged",
			EstimatedGain: gainFor(weight, deficit, 2),
			QuickWin:      true,
			Targets:       []string{"experience[0]"},
		})
		idx = 0
	} else if recencyBase(at, in.now) < 100 {
		out = append(out, Suggestion{
			ID:            "recency-stale",
			Text:          "Lead with recent, relevant work; roles that ended over two years ago weigh less",
			EstimatedGain: gainFor(weight, deficit, 2),
			Targets:       []string{"experience"},
		})
	}
	if _, missing := recentRoleCoverage(in, idx); len(missing) > 0 {
		if len(missing) > 3 {
			missing = missing[:3]
		}
		target := "experience[" + strconv.Itoa(idx) + "].achievements"
		out = append(out, Suggestion{
			ID:            "recency-coverage",
			Text:          "Show how your latest role used " + strings.Join(missing, ", "),
			EstimatedGain: gainFor(weight, deficit, 2),
			Targets:       []string{target},
		})
	}
	return out
}
