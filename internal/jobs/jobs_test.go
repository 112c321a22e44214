package jobs

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/llm"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/apperr"
)

const postingText = `Senior Backend Engineer

About us
We build payroll software.

Responsibilities:
- Design and operate Go services
- Own the billing pipeline

Requirements:
- 5+ years with Go, Kafka and PostgreSQL
- Experience in Kubernetes
- Strong communication

Benefits
- Remote friendly`

func TestHeuristicExtractSections(t *testing.T) {
	desc, err := HeuristicExtractor{}.Extract(context.Background(), postingText)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if desc.Title != "Senior Backend Engineer" {
		t.Fatalf("unexpected title %q", desc.Title)
	}
	wantMust := []string{"Go", "Kafka", "PostgreSQL", "Experience in Kubernetes", "Strong communication"}
	if !reflect.DeepEqual(desc.MustHave, wantMust) {
		t.Fatalf("unexpected must_have %v", desc.MustHave)
	}
	if len(desc.Responsibilities) != 2 {
		t.Fatalf("unexpected responsibilities %v", desc.Responsibilities)
	}
	if desc.Completeness() < 0.85 {
		t.Fatalf("expected near-complete extraction, got %v", desc.Completeness())
	}
}

func TestHeuristicFallsBackToKnownTerms(t *testing.T) {
	desc, err := HeuristicExtractor{}.Extract(context.Background(), "We need someone who knows golang, Docker and gRPC.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	found := map[string]bool{}
	for _, k := range desc.MustHave {
		found[k] = true
	}
	if !found["golang"] || !found["docker"] {
		t.Fatalf("expected known terms, got %v", desc.MustHave)
	}
}

func TestCompletenessEmpty(t *testing.T) {
	if got := (Description{}).Completeness(); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if !(Description{}).IsEmpty() {
		t.Fatalf("expected empty")
	}
}

func TestServiceUsesLLMWhenAvailable(t *testing.T) {
	completer := llm.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return "```json\n{\"title\":\"Data Engineer\",\"must_have\":[\"Spark\",\"spark\",\"Airflow\"],\"responsibilities\":\"Build pipelines\"}\n```", nil
	})
	svc := NewService(completer, nil)
	desc, err := svc.Extract(context.Background(), "Data Engineer wanted")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if desc.Source != SourceLLM || desc.Title != "Data Engineer" {
		t.Fatalf("unexpected description %+v", desc)
	}
	if !reflect.DeepEqual(desc.MustHave, []string{"Spark", "Airflow"}) {
		t.Fatalf("unexpected must_have %v", desc.MustHave)
	}
}

func TestServiceFallsBackOnLLMFailure(t *testing.T) {
	completer := llm.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", context.DeadlineExceeded
	})
	svc := NewService(completer, nil)
	desc, err := svc.Extract(context.Background(), postingText)
	if apperr.CodeOf(err) != apperr.CodeExternalService {
		t.Fatalf("expected external_service error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped deadline error, got %v", err)
	}
	if desc.Source != SourceHeuristic || desc.Title == "" {
		t.Fatalf("expected heuristic fallback, got %+v", desc)
	}
}

func TestServiceWithoutLLMIsHeuristic(t *testing.T) {
	svc := NewService(llm.PlaceholderClient{}, nil)
	if svc.Primary != nil {
		t.Fatalf("placeholder must not be wired as primary")
	}
	desc, err := svc.Extract(context.Background(), "   ")
	if err != nil || !desc.IsEmpty() {
		t.Fatalf("expected empty description, got %+v %v", desc, err)
	}
}
