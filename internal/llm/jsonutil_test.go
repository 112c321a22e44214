package llm

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose", raw: "Sure! Here it is: {\"a\":1} hope that helps", want: `{"a":1}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.raw); got != tt.want {
				t.Fatalf("ExtractJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCoercions(t *testing.T) {
	data, err := DecodeObject("```{\"confidence\":\"0.8\",\"apply\":\"yes\",\"skills\":\"Go, Kafka\"}```")
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if got := CoerceFloat(data["confidence"]); got != 0.8 {
		t.Fatalf("unexpected confidence %v", got)
	}
	if !CoerceBool(data["apply"]) {
		t.Fatalf("expected apply=true")
	}
	if got := CoerceStrings(data["skills"]); !reflect.DeepEqual(got, []string{"Go", "Kafka"}) {
		t.Fatalf("unexpected skills %v", got)
	}
	if !math.IsNaN(CoerceFloat(nil)) {
		t.Fatalf("expected NaN for missing number")
	}
}

func TestRenderPromptSubstitutes(t *testing.T) {
	out := RenderPrompt(PromptJobExtract, map[string]string{"JOB_TEXT": "Senior Go Engineer"})
	if !strings.Contains(out, "Senior Go Engineer") || strings.Contains(out, "{{JOB_TEXT}}") {
		t.Fatalf("placeholder not substituted: %q", out)
	}
}

func TestPlaceholderIsUnavailable(t *testing.T) {
	if Available(PlaceholderClient{}) || Available(nil) {
		t.Fatalf("placeholder must not count as available")
	}
	_, err := PlaceholderClient{}.Complete(context.Background(), "x")
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	fn := CompleterFunc(func(context.Context, string) (string, error) { return "ok", nil })
	if !Available(fn) {
		t.Fatalf("expected func completer to be available")
	}
}
