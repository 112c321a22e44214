package tools

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/design"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/jobs"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/llm"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/apperr"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/patch"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/scoring"
)

type fakeTool struct {
	name     string
	validate func(Args) error
	execute  func(context.Context, Input) (Result, error)
}

func (f fakeTool) Name() string        { return f.name }
func (f fakeTool) Description() string { return "fake" }

func (f fakeTool) Validate(args Args) error {
	if f.validate == nil {
		return nil
	}
	return f.validate(args)
}

func (f fakeTool) Execute(ctx context.Context, in Input) (Result, error) {
	return f.execute(ctx, in)
}

func sampleDocument() model.Document {
	return model.Document{
		Contact: model.Contact{Name: "Dana Levi", Email: "dana@example.com", Headline: "Backend Engineer"},
		Summary: "Backend engineer who cut checkout latency by 40% across 12 services.",
		Skills:  model.Skills{Technical: []string{"Go", "PostgreSQL"}, Soft: []string{"Mentoring"}},
		Experience: []model.Experience{
			{Title: "Backend Engineer", Company: "Acme", Start: "2021-03", End: "Present",
				Achievements: []string{"Cut p99 latency by 40%", "Led migration to gRPC"}},
			{Title: "Software Engineer", Company: "Beta", Start: "2018-01", End: "2021-02",
				Achievements: []string{"Built billing exports"}},
		},
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(SkillAdder{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(SkillAdder{}); !errors.Is(err, ErrDuplicateTool) {
		t.Fatalf("expected ErrDuplicateTool, got %v", err)
	}
	if _, err := r.Get("nope"); !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestDefaultRegistryNames(t *testing.T) {
	r, err := NewDefaultRegistry(nil, nil)
	if err != nil {
		t.Fatalf("NewDefaultRegistry: %v", err)
	}
	want := []string{NameApplySuggestions, NameATSScorer, NameColorCustomizer, NameContentRewriter, NameDesignRecommender, NameSkillAdder}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	if len(r.Catalog()) != len(want) {
		t.Fatalf("catalog should list every tool")
	}
}

func TestExecutorValidationError(t *testing.T) {
	r, _ := NewDefaultRegistry(nil, nil)
	ex := NewExecutor(r, time.Second, nil)
	_, err := ex.Execute(context.Background(), NameSkillAdder, Input{Document: sampleDocument(), Args: Args{}})
	if apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected validation_error, got %v", err)
	}
	_, err = ex.Execute(context.Background(), "teleporter", Input{})
	if apperr.CodeOf(err) != apperr.CodeValidation || !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected unknown tool validation error, got %v", err)
	}
}

func TestExecutorTimeoutIsExternalAndNotRetried(t *testing.T) {
	var calls int32
	r := NewRegistry()
	_ = r.Register(fakeTool{name: "slow", execute: func(ctx context.Context, _ Input) (Result, error) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(time.Second):
			return Result{Success: true}, nil
		}
	}})
	ex := NewExecutor(r, 20*time.Millisecond, nil)

	_, err := ex.Execute(context.Background(), "slow", Input{})
	if apperr.CodeOf(err) != apperr.CodeExternalService {
		t.Fatalf("expected external_service, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline in chain, got %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestExecutorClassifiesFailures(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(fakeTool{name: "boom", execute: func(context.Context, Input) (Result, error) {
		return Result{}, errors.New("boom")
	}})
	_ = r.Register(fakeTool{name: "panics", execute: func(context.Context, Input) (Result, error) {
		panic("bad state")
	}})
	ex := NewExecutor(r, time.Second, nil)
	for _, name := range []string{"boom", "panics"} {
		_, err := ex.Execute(context.Background(), name, Input{})
		if apperr.CodeOf(err) != apperr.CodeTool {
			t.Fatalf("%s: expected tool_error, got %v", name, err)
		}
	}
}

func TestSkillAdderDeduplicates(t *testing.T) {
	tool := SkillAdder{}
	args := Args{"skills": []string{"go", "Kafka", "kafka", " Terraform "}}
	if err := tool.Validate(args); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	res, err := tool.Execute(context.Background(), Input{Document: sampleDocument(), Args: args})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := patch.Patch{patch.AppendUnique("skills.technical", "Kafka", "Terraform")}
	if !reflect.DeepEqual(res.Patch, want) {
		t.Fatalf("unexpected patch %+v", res.Patch)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected duplicate warnings, got %v", res.Warnings)
	}
}

func TestSkillAdderNothingNew(t *testing.T) {
	res, err := SkillAdder{}.Execute(context.Background(), Input{Document: sampleDocument(), Args: Args{"skills": "mentoring", "category": "soft"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Patch.IsEmpty() {
		t.Fatalf("expected empty patch, got %+v", res.Patch)
	}
	if err := (SkillAdder{}).Validate(Args{"skills": "x", "category": "magic"}); err == nil {
		t.Fatalf("expected invalid category error")
	}
}

func TestColorCustomizer(t *testing.T) {
	tool := ColorCustomizer{}
	args := Args{"colors": map[string]any{"primary": "navy", "headers": "#FFF"}}
	if err := tool.Validate(args); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	res, err := tool.Execute(context.Background(), Input{Args: args})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Design == nil || res.Design.Colors["primary"] != "#000080" || res.Design.Colors["headings"] != "#ffffff" {
		t.Fatalf("unexpected design change %+v", res.Design)
	}
	if !res.Patch.IsEmpty() {
		t.Fatalf("color changes must not patch the document")
	}
}

func TestColorCustomizerRejectsMalformed(t *testing.T) {
	r, _ := NewDefaultRegistry(nil, nil)
	ex := NewExecutor(r, time.Second, nil)
	_, err := ex.Execute(context.Background(), NameColorCustomizer, Input{Args: Args{"target": "primary", "color": "sort of teal-ish"}})
	if apperr.CodeOf(err) != apperr.CodeValidation || !errors.Is(err, design.ErrInvalidColor) {
		t.Fatalf("expected invalid color validation error, got %v", err)
	}
}

func TestContentRewriterSetsPatch(t *testing.T) {
	var prompt string
	completer := llm.CompleterFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return `{"text": "Backend engineer who cut checkout latency by 40%.", "rationale": "tightened"}`, nil
	})
	tool := ContentRewriter{Completer: completer}
	res, err := tool.Execute(context.Background(), Input{Document: sampleDocument(), Args: Args{}, Job: jobs.Description{Title: "Staff Engineer"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Patch) != 1 || res.Patch[0].Path != "summary" || res.Patch[0].Op != patch.OpSet {
		t.Fatalf("unexpected patch %+v", res.Patch)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected a dropped-figure warning for 12, got %v", res.Warnings)
	}
	if prompt == "" || res.Rationale != "tightened" {
		t.Fatalf("unexpected rationale %q", res.Rationale)
	}
}

func TestContentRewriterRequiresLLM(t *testing.T) {
	_, err := ContentRewriter{Completer: llm.PlaceholderClient{}}.Execute(context.Background(), Input{Document: sampleDocument(), Args: Args{}})
	if apperr.CodeOf(err) != apperr.CodeExternalService {
		t.Fatalf("expected external_service, got %v", err)
	}
	if err := (ContentRewriter{}).Validate(Args{"path": "experience[x]"}); err == nil {
		t.Fatalf("expected invalid path error")
	}
}

func TestDesignRecommenderTechnicalRole(t *testing.T) {
	in := Input{
		Document: sampleDocument(),
		Args:     Args{"apply": true},
		Job:      jobs.Description{Title: "Senior Backend Engineer"},
	}
	res, err := DesignRecommender{}.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	rec := res.Artifacts["design_recommendation"].(Recommendation)
	if rec.TemplateID != design.TemplateTechnical {
		t.Fatalf("expected technical template, got %s (%s)", rec.TemplateID, rec.Reasoning)
	}
	if rec.Confidence <= 0 || rec.Confidence > 1 || rec.Reasoning == "" {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
	if res.Design == nil || res.Design.TemplateID != design.TemplateTechnical {
		t.Fatalf("apply should request a template assignment")
	}
}

func TestDesignRecommenderPenalizesCreativeOnWeakFormat(t *testing.T) {
	in := Input{
		Document: model.Document{Contact: model.Contact{Headline: "Brand Designer"}},
		Args:     Args{},
		Report:   &scoring.Report{Subscores: scoring.Subscores{scoring.FormatParseability: 40}},
	}
	res, err := DesignRecommender{}.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	rec := res.Artifacts["design_recommendation"].(Recommendation)
	if rec.TemplateID == design.TemplateCreative {
		t.Fatalf("weak format score should steer away from creative, got %+v", rec)
	}
	if res.Design != nil {
		t.Fatalf("recommendation without apply must not assign a template")
	}
}

func TestApplySuggestionsAggregates(t *testing.T) {
	report := &scoring.Report{
		Score:          58,
		ScoringVersion: scoring.Version,
		Suggestions: []scoring.Suggestion{
			{ID: "kw-kafka", Number: 1, EstimatedGain: 10, Patch: patch.Patch{patch.AppendUnique("skills.technical", "Kafka")}},
			{ID: "kw-terraform", Number: 2, EstimatedGain: 8, Patch: patch.Patch{patch.AppendUnique("skills.technical", "Terraform")}},
			{ID: "title-headline", Number: 3, EstimatedGain: 12, Patch: patch.Patch{patch.Set("contact.headline", "Platform Engineer")}},
			{ID: "metrics-add-achievements", Number: 4, EstimatedGain: 5},
		},
	}
	res, err := ApplySuggestions{}.Execute(context.Background(), Input{Document: sampleDocument(), Args: Args{"suggestions": []string{"1", "2", "#3", "4"}}, Report: report})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	agg := res.Artifacts["aggregation"].(scoring.Aggregation)
	if agg.NewScore != 83 || agg.FinalGain != 25 {
		t.Fatalf("unexpected aggregation %+v", agg)
	}
	if len(res.Patch) != 3 || len(res.Warnings) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	if res.Artifacts["estimated_delta"] != 25 {
		t.Fatalf("expected estimated_delta 25, got %v", res.Artifacts["estimated_delta"])
	}

	_, err = ApplySuggestions{}.Execute(context.Background(), Input{Document: sampleDocument(), Args: Args{"suggestions": "4"}, Report: report})
	if apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected validation error when nothing is patchable, got %v", err)
	}
}

func TestApplySuggestionsCapsDeltaNearMaximum(t *testing.T) {
	report := &scoring.Report{
		Score:          95,
		ScoringVersion: scoring.Version,
		Suggestions: []scoring.Suggestion{
			{ID: "kw-kafka", Number: 1, EstimatedGain: 10, Patch: patch.Patch{patch.AppendUnique("skills.technical", "Kafka")}},
		},
	}
	res, err := ApplySuggestions{}.Execute(context.Background(), Input{Document: sampleDocument(), Args: Args{"suggestions": []string{"1"}}, Report: report})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	agg := res.Artifacts["aggregation"].(scoring.Aggregation)
	if agg.FinalGain != 10 || agg.NewScore != 100 {
		t.Fatalf("unexpected aggregation %+v", agg)
	}
	if res.Artifacts["estimated_delta"] != 5 {
		t.Fatalf("expected estimated_delta 5, got %v", res.Artifacts["estimated_delta"])
	}
	if !strings.Contains(res.Rationale, "95 -> 100 (+5)") {
		t.Fatalf("unexpected rationale %q", res.Rationale)
	}
}

func TestDesignRecommenderExplicitTemplate(t *testing.T) {
	tool := DesignRecommender{}
	if err := tool.Validate(Args{"template": "baroque"}); !errors.Is(err, design.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
	res, err := tool.Execute(context.Background(), Input{Args: Args{"template": "Minimal"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Design == nil || res.Design.TemplateID != design.TemplateMinimal {
		t.Fatalf("unexpected design change %+v", res.Design)
	}
}
