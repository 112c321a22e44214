// Package agent runs a command against a user's resume: interpret, execute
// tools, diff, score and commit one version.
package agent

import (
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/design"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/history"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/interpreter"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/jobs"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/apperr"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/tools"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/patch"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/scoring"
)

// Options tune a single run.
type Options struct {
	// DryRun computes everything but persists nothing.
	DryRun       bool   `json:"dry_run"`
	LanguageHint string `json:"language_hint,omitempty"`
}

// RunRequest is the input to Run. Document replaces the stored head document
// as the starting point, and its changes against the head are committed with
// the run; Job overrides extraction from JobText. A non-empty BaseVersionID must match
// the current head or the run fails with a conflict.
type RunRequest struct {
	UserID        string            `json:"user_id"`
	Command       string            `json:"command"`
	Document      *model.Document   `json:"document,omitempty"`
	JobText       string            `json:"job_text,omitempty"`
	Job           *jobs.Description `json:"job,omitempty"`
	BaseVersionID string            `json:"base_version_id,omitempty"`
	Options       Options           `json:"options"`
}

// Action records one executed intent.
type Action struct {
	Tool      string              `json:"tool"`
	Segment   string              `json:"segment"`
	Args      tools.Args          `json:"args,omitempty"`
	Success   bool                `json:"success"`
	Rationale string              `json:"rationale,omitempty"`
	Warnings  []string            `json:"warnings,omitempty"`
	Patch     patch.Patch         `json:"patch,omitempty"`
	Design    *tools.DesignChange `json:"design,omitempty"`
	Error     *apperr.Detail      `json:"error,omitempty"`
}

// A supplied RunRequest.Document that differs from the stored head is reported
// as an IntentDiff with these values instead of an action index.
const (
	DocumentEditAction = -1
	DocumentEditTool   = "document_edit"
)

// IntentDiff is the diff contributed by one action, computed against the
// document as it was right before that action.
type IntentDiff struct {
	Action  int               `json:"action"`
	Tool    string            `json:"tool"`
	Entries []patch.DiffEntry `json:"entries"`
	Summary patch.DiffSummary `json:"summary"`
}

// ATSReport pairs the before and after scores of a run.
type ATSReport struct {
	Before scoring.Report  `json:"before"`
	After  *scoring.Report `json:"after,omitempty"`
	Delta  *scoring.Delta  `json:"delta,omitempty"`
}

// Errors splits run errors by severity.
type Errors struct {
	Fatal    *apperr.Detail  `json:"fatal,omitempty"`
	Nonfatal []apperr.Detail `json:"nonfatal"`
}

// AgentResult is the outcome of Run. After a fatal error it carries only the
// state computed before the failure and nothing has been persisted.
type AgentResult struct {
	Intents        []interpreter.Intent `json:"intents"`
	Actions        []Action             `json:"actions"`
	Diffs          []IntentDiff         `json:"diffs"`
	Diff           []patch.DiffEntry    `json:"diff"`
	ATSReport      ATSReport            `json:"ats_report"`
	Artifacts      map[string]any       `json:"artifacts"`
	Language       string               `json:"language"`
	Direction      string               `json:"direction"`
	JobLanguage    string               `json:"job_language,omitempty"`
	Job            jobs.Description     `json:"job"`
	Document       model.Document       `json:"document"`
	Version        *history.Version     `json:"version,omitempty"`
	Committed      bool                 `json:"committed"`
	DryRun         bool                 `json:"dry_run"`
	Design         *design.State        `json:"design,omitempty"`
	Clarifications []string             `json:"clarifications,omitempty"`
	Errors         Errors               `json:"errors"`
}

func (r *AgentResult) nonfatal(err error) {
	r.Errors.Nonfatal = append(r.Errors.Nonfatal, apperr.DetailOf(err))
}

func (r *AgentResult) fatal(err error) {
	d := apperr.DetailOf(err)
	r.Errors.Fatal = &d
}

// ScoreRequest scores a document or raw resume text without touching history.
type ScoreRequest struct {
	Document   *model.Document   `json:"document,omitempty"`
	ResumeText string            `json:"resume_text,omitempty"`
	JobText    string            `json:"job_text,omitempty"`
	Job        *jobs.Description `json:"job,omitempty"`
}

// ApplyRequest applies scored suggestions to a document. When Document is nil
// the user's head document is used.
type ApplyRequest struct {
	UserID        string            `json:"user_id,omitempty"`
	Document      *model.Document   `json:"document,omitempty"`
	JobText       string            `json:"job_text,omitempty"`
	Job           *jobs.Description `json:"job,omitempty"`
	SuggestionIDs []string          `json:"suggestion_ids"`
}

// ApplyResult is the patched document with the aggregated score delta.
type ApplyResult struct {
	Document    model.Document       `json:"document"`
	ScoreDelta  int                  `json:"score_delta"`
	Before      scoring.Report       `json:"before"`
	After       *scoring.Report      `json:"after,omitempty"`
	Applied     []scoring.Suggestion `json:"applied"`
	Aggregation scoring.Aggregation  `json:"aggregation"`
	Diff        []patch.DiffEntry    `json:"diff"`
	Unknown     []string             `json:"unknown,omitempty"`
}

// HistoryView is the user's stack with the full entry log.
type HistoryView struct {
	Stack   history.Stack    `json:"stack"`
	Current *history.Version `json:"current,omitempty"`
	Entries []history.Entry  `json:"entries"`
}
