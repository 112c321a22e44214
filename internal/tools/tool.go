// Package tools defines the validate/execute contract for agent tools, the
// registry that holds them and the executor that runs them under a deadline.
package tools

import (
	"context"
	"math"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/jobs"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/llm"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/patch"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/scoring"
)

// Tool names.
const (
	NameATSScorer         = "ats_scorer"
	NameContentRewriter   = "content_rewriter"
	NameColorCustomizer   = "color_customizer"
	NameSkillAdder        = "skill_adder"
	NameDesignRecommender = "design_recommender"
	NameApplySuggestions  = "apply_suggestions"
)

// Args are loosely typed tool arguments as produced by rules or a model.
type Args map[string]any

// String returns the trimmed string form of key.
func (a Args) String(key string) string {
	return llm.CoerceString(a[key])
}

// Strings returns key as a list, splitting comma separated strings.
func (a Args) Strings(key string) []string {
	return llm.CoerceStrings(a[key])
}

// Bool reports whether key is truthy.
func (a Args) Bool(key string) bool {
	return llm.CoerceBool(a[key])
}

// Map returns key as a string map.
func (a Args) Map(key string) map[string]string {
	out := map[string]string{}
	switch v := a[key].(type) {
	case map[string]string:
		for k, val := range v {
			out[k] = val
		}
	case map[string]any:
		for k, val := range v {
			out[k] = llm.CoerceString(val)
		}
	}
	return out
}

// Int returns key as an int when it holds a whole number.
func (a Args) Int(key string) (int, bool) {
	f := llm.CoerceFloat(a[key])
	if math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Input is everything a tool may read. Tools never modify it.
type Input struct {
	UserID   string
	Document model.Document
	Args     Args
	Job      jobs.Description
	// Report is the latest score of Document, when one is available.
	Report   *scoring.Report
	Language string
}

// DesignChange is a template or color change requested by a tool. It is
// applied by the design service, never to the document.
type DesignChange struct {
	TemplateID string            `json:"template_id,omitempty"`
	Colors     map[string]string `json:"colors,omitempty"`
}

// Result describes a mutation that has not been applied.
type Result struct {
	Success   bool           `json:"success"`
	Patch     patch.Patch    `json:"patch,omitempty"`
	Rationale string         `json:"rationale"`
	Warnings  []string       `json:"warnings,omitempty"`
	Design    *DesignChange  `json:"design,omitempty"`
	Artifacts map[string]any `json:"artifacts,omitempty"`
}

// Tool is a pluggable agent capability. Execute must be pure: it describes a
// change and leaves persistence to the caller.
type Tool interface {
	Name() string
	Description() string
	Validate(args Args) error
	Execute(ctx context.Context, in Input) (Result, error)
}
