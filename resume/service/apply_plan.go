package service

import (
	"strconv"
	"strings"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/scoring"
)

// ApplyPlan splits requested suggestions by what can be done automatically.
type ApplyPlan struct {
	Patchable    []scoring.Suggestion `json:"patchable"`
	NeedsRewrite []scoring.Suggestion `json:"needs_rewrite"`
	Unknown      []string             `json:"unknown"`
}

// BuildApplyPlan resolves refs against report. A ref is a suggestion id
// ("kw-kafka"), a tip number ("2") or "#2". Duplicates are ignored and request
// order is preserved.
func BuildApplyPlan(report scoring.Report, refs []string) ApplyPlan {
	plan := ApplyPlan{
		Patchable:    make([]scoring.Suggestion, 0, len(refs)),
		NeedsRewrite: make([]scoring.Suggestion, 0),
		Unknown:      make([]string, 0),
	}
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		s, ok := resolveRef(report, ref)
		if !ok {
			if trimmed := strings.TrimSpace(ref); trimmed != "" {
				plan.Unknown = append(plan.Unknown, trimmed)
			}
			continue
		}
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		if len(s.Patch) > 0 {
			plan.Patchable = append(plan.Patchable, s)
		} else {
			plan.NeedsRewrite = append(plan.NeedsRewrite, s)
		}
	}
	return plan
}

// PinRefs replaces tip numbers and ids that resolve in report with the
// suggestion id, so a later re-score that renumbers suggestions still finds
// them. Refs that do not resolve are kept as given.
func PinRefs(report scoring.Report, refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if s, ok := resolveRef(report, ref); ok {
			out = append(out, s.ID)
			continue
		}
		out = append(out, ref)
	}
	return out
}

func resolveRef(report scoring.Report, ref string) (scoring.Suggestion, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return scoring.Suggestion{}, false
	}
	if s, ok := report.Suggestion(ref); ok {
		return s, true
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		return report.SuggestionByNumber(n)
	}
	return scoring.Suggestion{}, false
}
