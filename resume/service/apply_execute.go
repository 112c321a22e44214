package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/jobs"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/patch"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/scoring"
)

// ErrNothingToApply is returned when none of the requested suggestions carry a patch.
var ErrNothingToApply = errors.New("no requested suggestion can be applied automatically")

// ApplyExecutionResult represents the outcome of applying suggestions.
type ApplyExecutionResult struct {
	Document    model.Document       `json:"document"`
	Applied     []scoring.Suggestion `json:"applied"`
	Plan        ApplyPlan            `json:"plan"`
	Aggregation scoring.Aggregation  `json:"aggregation"`
	ScoreDelta  int                  `json:"score_delta"`
	Diff        []patch.DiffEntry    `json:"diff"`
	After       *scoring.Report      `json:"after,omitempty"`
}

// ExecuteApply applies the patches of the referenced suggestions in order and
// estimates the combined gain with the diminishing-returns aggregation. When
// engine is non-nil the result also carries a measured after-score.
func ExecuteApply(ctx context.Context, engine *scoring.Engine, doc model.Document, job jobs.Description, before scoring.Report, refs []string) (ApplyExecutionResult, error) {
	plan := BuildApplyPlan(before, refs)
	if len(plan.Patchable) == 0 {
		return ApplyExecutionResult{Document: doc, Plan: plan, Aggregation: scoring.Aggregate(before.Score, nil)}, ErrNothingToApply
	}

	current := doc
	applied := make([]scoring.Suggestion, 0, len(plan.Patchable))
	gains := make([]int, 0, len(plan.Patchable))
	for _, s := range plan.Patchable {
		next, err := patch.Apply(current, s.Patch)
		if err != nil {
			return ApplyExecutionResult{}, fmt.Errorf("apply suggestion %s: %w", s.ID, err)
		}
		current = next
		applied = append(applied, s)
		gains = append(gains, s.EstimatedGain)
	}

	diff, err := patch.ComputeDiff(doc, current, patch.DiffOptions{})
	if err != nil {
		return ApplyExecutionResult{}, err
	}
	agg := scoring.Aggregate(before.Score, gains)
	result := ApplyExecutionResult{
		Document:    current,
		Applied:     applied,
		Plan:        plan,
		Aggregation: agg,
		ScoreDelta:  agg.ScoreDelta(),
		Diff:        diff,
	}
	if engine != nil {
		after, err := engine.Score(ctx, current, job)
		if err != nil {
			return ApplyExecutionResult{}, err
		}
		result.After = &after
	}
	return result, nil
}
