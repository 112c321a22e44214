package tools

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/llm"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/apperr"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/patch"
)

var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?%?`)

// ContentRewriter asks the model to rewrite the text at one path.
type ContentRewriter struct {
	Completer llm.Completer
}

func (ContentRewriter) Name() string { return NameContentRewriter }

func (ContentRewriter) Description() string {
	return `rewrite one text field; args {"path": "summary" | "experience[i].achievements[j]" | "contact.headline", "instruction": string}`
}

func rewritePath(args Args) string {
	if p := args.String("path"); p != "" {
		return p
	}
	return "summary"
}

func (ContentRewriter) Validate(args Args) error {
	return patch.ValidatePath(rewritePath(args))
}

func (t ContentRewriter) Execute(ctx context.Context, in Input) (Result, error) {
	if !llm.Available(t.Completer) {
		return Result{}, apperr.External(NameContentRewriter, llm.ErrNotImplemented)
	}
	path := rewritePath(in.Args)
	current, err := patch.Get(in.Document, path)
	if err != nil {
		return Result{}, apperr.InvalidArgs(NameContentRewriter, err)
	}
	text, ok := current.(string)
	if !ok || strings.TrimSpace(text) == "" {
		return Result{}, apperr.InvalidArgs(NameContentRewriter, fmt.Errorf("%s has no text to rewrite", path))
	}

	instruction := in.Args.String("instruction")
	if instruction == "" {
		instruction = "Make it concise and results-oriented."
	}
	language := in.Language
	if language == "" {
		language = "en"
	}
	prompt := llm.RenderPrompt(llm.PromptRewrite, map[string]string{
		"LANGUAGE":     language,
		"INSTRUCTION":  instruction,
		"PATH":         path,
		"JOB_TITLE":    in.Job.Title,
		"JOB_KEYWORDS": strings.Join(in.Job.Keywords(), ", "),
		"TEXT":         text,
	})
	raw, err := t.Completer.Complete(ctx, prompt)
	if err != nil {
		return Result{}, apperr.External(NameContentRewriter, err)
	}
	data, err := llm.DecodeObject(raw)
	if err != nil {
		return Result{}, err
	}
	rewritten := llm.CoerceString(data["text"])
	if rewritten == "" {
		return Result{}, errors.New("model returned empty text")
	}

	res := Result{
		Success:   true,
		Rationale: llm.CoerceString(data["rationale"]),
	}
	if res.Rationale == "" {
		res.Rationale = "rewrote " + path
	}
	if rewritten == text {
		res.Warnings = append(res.Warnings, "rewrite produced identical text")
		return res, nil
	}
	for _, n := range numberPattern.FindAllString(text, -1) {
		if !strings.Contains(rewritten, n) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("rewrite dropped the figure %q", n))
		}
	}
	res.Patch = patch.Patch{patch.Set(path, rewritten)}
	return res, nil
}
