package tools

import (
	"context"
	"fmt"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/scoring"
)

// ATSScorer scores the document against the job. It is read-only.
type ATSScorer struct {
	Engine *scoring.Engine
}

func (ATSScorer) Name() string { return NameATSScorer }

func (ATSScorer) Description() string {
	return "score the resume against the job description (read-only); no args"
}

func (ATSScorer) Validate(Args) error { return nil }

func (t ATSScorer) Execute(ctx context.Context, in Input) (Result, error) {
	report, err := t.Engine.Score(ctx, in.Document, in.Job)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		Success:   true,
		Rationale: fmt.Sprintf("ATS match score is %d (%s)", report.Score, report.ScoringVersion),
		Artifacts: map[string]any{"ats_report": report},
	}
	if report.LowConfidence {
		res.Warnings = append(res.Warnings, "score confidence is low; add a fuller job description or resume")
	}
	return res, nil
}
