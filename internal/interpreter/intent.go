// Package interpreter turns free-text commands into ordered intents using
// pattern rules first and an optional model as fallback.
package interpreter

import (
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/jobs"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/tools"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/scoring"
)

// Kind tags an intent as executable or not.
type Kind string

const (
	KindResolved           Kind = "resolved"
	KindNeedsClarification Kind = "needs_clarification"
)

// Source records which stage produced an intent.
type Source string

const (
	SourceRule Source = "rule"
	SourceLLM  Source = "llm"
	SourceNone Source = "none"
)

// DefaultThreshold is the minimum confidence for executing an intent.
const DefaultThreshold = 0.5

// Intent is one interpreted step. A NeedsClarification intent carries no
// executable tool call.
type Intent struct {
	Kind                Kind       `json:"kind"`
	Tool                string     `json:"tool,omitempty"`
	Args                tools.Args `json:"args,omitempty"`
	Confidence          float64    `json:"confidence"`
	ClarificationPrompt string     `json:"clarification_prompt,omitempty"`
	Source              Source     `json:"source"`
	Segment             string     `json:"segment"`
}

// NeedsClarification reports whether the intent must not be executed.
func (i Intent) NeedsClarification() bool {
	return i.Kind == KindNeedsClarification
}

// Request is the input to Interpret.
type Request struct {
	Command      string
	Document     model.Document
	Job          jobs.Description
	LanguageHint string
	// Suggestions from the latest score, used to resolve "apply all quick wins".
	Suggestions []scoring.Suggestion
}

// Interpretation is the ordered intent list plus nonfatal errors such as a
// failed model call.
type Interpretation struct {
	Intents  []Intent `json:"intents"`
	Language string   `json:"language"`
	Errors   []error  `json:"-"`
}

// Resolved returns the executable intents in order.
func (in Interpretation) Resolved() []Intent {
	out := make([]Intent, 0, len(in.Intents))
	for _, i := range in.Intents {
		if !i.NeedsClarification() {
			out = append(out, i)
		}
	}
	return out
}

// Clarifications returns the prompts of unresolved intents.
func (in Interpretation) Clarifications() []string {
	var out []string
	for _, i := range in.Intents {
		if i.NeedsClarification() && i.ClarificationPrompt != "" {
			out = append(out, i.ClarificationPrompt)
		}
	}
	return out
}
