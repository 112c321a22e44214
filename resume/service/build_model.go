package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/llm"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
)

// ErrNoCompleter is returned when document building is requested without an LLM.
var ErrNoCompleter = errors.New("llm client is not configured")

// BuildDocument converts plain resume text into a structured Document by
// asking the model once. The output must pass the document schema and field
// validation; it is never retried.
func BuildDocument(ctx context.Context, completer llm.Completer, resumeText string) (model.Document, error) {
	if !llm.Available(completer) {
		return model.Document{}, ErrNoCompleter
	}
	if strings.TrimSpace(resumeText) == "" {
		return model.Document{}, model.ErrEmptyDocument
	}

	prompt := llm.RenderPrompt(llm.PromptResumeParse, map[string]string{"RESUME_TEXT": resumeText})
	raw, err := completer.Complete(ctx, prompt)
	if err != nil {
		return model.Document{}, err
	}

	doc, err := model.Parse([]byte(llm.ExtractJSON(raw)))
	if err != nil {
		return model.Document{}, fmt.Errorf("parse model output: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return model.Document{}, fmt.Errorf("validate model output: %w", err)
	}
	return doc, nil
}
