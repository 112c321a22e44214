package jobs

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/llm"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/apperr"
)

// ErrEmptyExtraction is returned when the model response carries no usable fields.
var ErrEmptyExtraction = errors.New("job extraction returned no fields")

// LLMExtractor asks a completion model for {title, must_have, responsibilities}.
type LLMExtractor struct {
	Completer llm.Completer
}

// Extract implements Extractor.
func (e LLMExtractor) Extract(ctx context.Context, text string) (Description, error) {
	prompt := llm.RenderPrompt(llm.PromptJobExtract, map[string]string{"JOB_TEXT": text})
	raw, err := e.Completer.Complete(ctx, prompt)
	if err != nil {
		return Description{}, err
	}
	data, err := llm.DecodeObject(raw)
	if err != nil {
		return Description{}, err
	}
	desc := Description{
		Title:            llm.CoerceString(data["title"]),
		MustHave:         dedupeFold(llm.CoerceStrings(data["must_have"])),
		Responsibilities: llm.CoerceStrings(data["responsibilities"]),
		RawText:          text,
		Source:           SourceLLM,
	}
	if desc.Title == "" && len(desc.MustHave) == 0 && len(desc.Responsibilities) == 0 {
		return Description{}, ErrEmptyExtraction
	}
	return desc, nil
}

// Service resolves job descriptions, preferring the model when configured and
// falling back to heuristics.
type Service struct {
	Primary   Extractor
	Heuristic HeuristicExtractor
	Logger    *zap.Logger
}

// NewService wires an LLM extractor when completer is usable.
func NewService(completer llm.Completer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{Logger: logger}
	if llm.Available(completer) {
		s.Primary = LLMExtractor{Completer: completer}
	}
	return s
}

// Extract returns the best available description. When the primary extractor
// fails the heuristic result is returned together with an external_service
// error the caller may record as nonfatal.
func (s *Service) Extract(ctx context.Context, text string) (Description, error) {
	if strings.TrimSpace(text) == "" {
		return Description{}, nil
	}
	if s.Primary != nil {
		desc, err := s.Primary.Extract(ctx, text)
		if err == nil {
			return desc, nil
		}
		s.logger().Warn("job extraction fell back to heuristics", zap.Error(err))
		fallback, herr := s.Heuristic.Extract(context.WithoutCancel(ctx), text)
		if herr != nil {
			return Description{}, herr
		}
		return fallback, apperr.External("job_extraction", err)
	}
	return s.Heuristic.Extract(ctx, text)
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
