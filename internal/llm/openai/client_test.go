package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestCompleteOmitsTemperatureForGPT5(t *testing.T) {
	oldURL := apiURL
	t.Cleanup(func() { apiURL = oldURL })

	var bodyMu sync.Mutex
	var lastBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		bodyMu.Lock()
		lastBody = payload
		bodyMu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"tool\":\"ats_scorer\"}"}}]}`))
	}))
	defer server.Close()
	apiURL = server.URL

	for _, model := range []string{"gpt-5-mini", "gpt-4o-mini"} {
		client, err := NewClient("test-key", model, time.Second, nil)
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}
		out, err := client.Complete(context.Background(), "score my resume")
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if out != `{"tool":"ats_scorer"}` {
			t.Fatalf("unexpected content %q", out)
		}
		bodyMu.Lock()
		_, hasTemp := lastBody["temperature"]
		bodyMu.Unlock()
		if hasTemp != !isGPT5(model) {
			t.Fatalf("model %s: temperature present=%v", model, hasTemp)
		}
	}
}

func TestCompleteSurfacesHTTPErrors(t *testing.T) {
	oldURL := apiURL
	t.Cleanup(func() { apiURL = oldURL })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer server.Close()
	apiURL = server.URL

	client, err := NewClient("test-key", "gpt-4o-mini", time.Second, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected 429 error, got %v", err)
	}
}

func TestPromptHashTracksContent(t *testing.T) {
	base := hashPromptString(promptStringFromMessages(buildMessages("make my summary punchier")))
	cases := []struct {
		name   string
		prompt string
		same   bool
	}{
		{name: "identical", prompt: "make my summary punchier", same: true},
		{name: "different command", prompt: "add Go to skills", same: false},
		{name: "trailing space", prompt: "make my summary punchier ", same: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := hashPromptString(promptStringFromMessages(buildMessages(tc.prompt)))
			if (got == base) != tc.same {
				t.Fatalf("hash equality for %q = %v, want %v", tc.prompt, got == base, tc.same)
			}
		})
	}
	if promptStringFromMessages(nil) != "" {
		t.Fatalf("expected empty prompt string for no messages")
	}
}
