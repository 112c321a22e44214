package tools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/apperr"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/patch"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/scoring"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/service"
)

// ApplySuggestions applies the patches of suggestions from the latest score
// and reports the diminishing-returns estimate of the combined gain.
type ApplySuggestions struct {
	Engine *scoring.Engine
}

func (ApplySuggestions) Name() string { return NameApplySuggestions }

func (ApplySuggestions) Description() string {
	return `apply score suggestions; args {"suggestions": ["<id>" or "<tip number>"]}`
}

func (ApplySuggestions) Validate(args Args) error {
	if len(suggestionRefs(args)) == 0 {
		return errors.New("suggestions is required")
	}
	return nil
}

func suggestionRefs(args Args) []string {
	refs := args.Strings("suggestions")
	if n, ok := args.Int("tip"); ok {
		refs = append(refs, strconv.Itoa(n))
	}
	return refs
}

func (t ApplySuggestions) Execute(ctx context.Context, in Input) (Result, error) {
	report := in.Report
	if report == nil {
		scored, err := t.Engine.Score(ctx, in.Document, in.Job)
		if err != nil {
			return Result{}, err
		}
		report = &scored
	}

	plan := service.BuildApplyPlan(*report, suggestionRefs(in.Args))
	res := Result{Success: true}
	for _, ref := range plan.Unknown {
		res.Warnings = append(res.Warnings, fmt.Sprintf("suggestion %s was not found", ref))
	}
	for _, s := range plan.NeedsRewrite {
		res.Warnings = append(res.Warnings, fmt.Sprintf("suggestion %d (%s) needs a manual rewrite", s.Number, s.ID))
	}
	if len(plan.Patchable) == 0 {
		return Result{}, apperr.InvalidArgs(NameApplySuggestions, service.ErrNothingToApply)
	}

	var combined patch.Patch
	gains := make([]int, 0, len(plan.Patchable))
	ids := make([]string, 0, len(plan.Patchable))
	for _, s := range plan.Patchable {
		combined = append(combined, s.Patch...)
		gains = append(gains, s.EstimatedGain)
		ids = append(ids, s.ID)
	}
	agg := scoring.Aggregate(report.Score, gains)
	res.Patch = combined
	res.Rationale = fmt.Sprintf("applied %s; estimated score %d -> %d (%+d)", strings.Join(ids, ", "), agg.OldScore, agg.NewScore, agg.ScoreDelta())
	res.Artifacts = map[string]any{
		"applied_suggestions": ids,
		"aggregation":         agg,
		"estimated_delta":     agg.ScoreDelta(),
	}
	return res, nil
}
