package interpreter

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/lang"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/llm"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/apperr"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/metrics"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/tools"
)

// DefaultTimeout bounds a single model classification call.
const DefaultTimeout = 15 * time.Second

// ErrEmptyCommand is returned for blank commands.
var ErrEmptyCommand = errors.New("command is empty")

const fallbackPrompt = "I did not understand that. Try for example \"add Kafka to technical skills\", \"rewrite my summary\", \"apply tips 1 and 2\" or \"make the headings navy\"."

// Interpreter classifies command segments. Registry is used to validate model
// picks and to describe tools in the prompt; Completer may be nil.
type Interpreter struct {
	Registry  *tools.Registry
	Completer llm.Completer
	Threshold float64
	Timeout   time.Duration
	Logger    *zap.Logger
}

// New returns an Interpreter with default threshold and timeout.
func New(registry *tools.Registry, completer llm.Completer, logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{
		Registry:  registry,
		Completer: completer,
		Threshold: DefaultThreshold,
		Timeout:   DefaultTimeout,
		Logger:    logger,
	}
}

// Interpret splits the command into segments and resolves each one. Intents
// keep command order. A failed model call is reported in Errors and turns the
// segment into a clarification.
func (i *Interpreter) Interpret(ctx context.Context, req Request) (Interpretation, error) {
	command := strings.TrimSpace(req.Command)
	if command == "" {
		return Interpretation{}, apperr.InvalidArgs("interpreter", ErrEmptyCommand)
	}
	language := lang.Resolve(req.LanguageHint, command)
	out := Interpretation{Language: language.Language}

	for _, segment := range SplitCommand(command) {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		intents, err := i.interpretSegment(ctx, segment, req, language.Language)
		if err != nil {
			out.Errors = append(out.Errors, err)
		}
		for _, intent := range intents {
			metrics.IncIntent(string(intent.Source), string(intent.Kind))
		}
		out.Intents = append(out.Intents, intents...)
	}
	return out, nil
}

func (i *Interpreter) interpretSegment(ctx context.Context, segment string, req Request, language string) ([]Intent, error) {
	for _, r := range rules {
		intents, ok := r.match(segment, req)
		if !ok {
			continue
		}
		i.Logger.Debug("command matched rule", zap.String("rule", r.name), zap.String("segment", segment))
		return i.gate(intents), nil
	}
	if !llm.Available(i.Completer) {
		return []Intent{clarify(fallbackPrompt, segment, SourceNone)}, nil
	}
	intent, err := i.classify(ctx, segment, req, language)
	if err != nil {
		i.Logger.Warn("model classification failed", zap.String("segment", segment), zap.Error(err))
		return []Intent{clarify(fallbackPrompt, segment, SourceLLM)}, apperr.External("interpreter", err)
	}
	return i.gate([]Intent{intent}), nil
}

// gate downgrades resolved intents below the confidence threshold.
func (i *Interpreter) gate(intents []Intent) []Intent {
	threshold := i.threshold()
	for idx, intent := range intents {
		if intent.Kind == KindResolved && intent.Confidence < threshold {
			intents[idx].Kind = KindNeedsClarification
			if intents[idx].ClarificationPrompt == "" {
				intents[idx].ClarificationPrompt = "Did you mean to run " + intent.Tool + "? Please rephrase the command more specifically."
			}
		}
	}
	return intents
}

func (i *Interpreter) classify(ctx context.Context, segment string, req Request, language string) (Intent, error) {
	timeout := i.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var catalog []string
	if i.Registry != nil {
		catalog = i.Registry.Catalog()
	}
	prompt := llm.RenderPrompt(llm.PromptInterpret, map[string]string{
		"TOOLS":     "- " + strings.Join(catalog, "\n- "),
		"LANGUAGE":  language,
		"HEADLINE":  req.Document.Contact.Headline,
		"JOB_TITLE": req.Job.Title,
		"COMMAND":   segment,
	})
	raw, err := i.Completer.Complete(callCtx, prompt)
	if err != nil {
		return Intent{}, err
	}
	data, err := llm.DecodeObject(raw)
	if err != nil {
		return Intent{}, err
	}
	return i.intentFromModel(data, segment), nil
}

func (i *Interpreter) intentFromModel(data map[string]any, segment string) Intent {
	clarification := llm.CoerceString(data["clarification"])
	if clarification == "" {
		clarification = fallbackPrompt
	}
	name := llm.CoerceString(data["tool"])
	confidence := llm.CoerceFloat(data["confidence"])
	if math.IsNaN(confidence) {
		confidence = 0
	}
	confidence = math.Max(0, math.Min(1, confidence))

	if name == "" || i.Registry == nil {
		return Intent{Kind: KindNeedsClarification, ClarificationPrompt: clarification, Source: SourceLLM, Segment: segment}
	}
	if _, err := i.Registry.Get(name); err != nil {
		i.Logger.Info("model picked unknown tool", zap.String("tool", name))
		return Intent{Kind: KindNeedsClarification, ClarificationPrompt: clarification, Source: SourceLLM, Segment: segment}
	}
	args := tools.Args{}
	if raw, ok := data["args"].(map[string]any); ok {
		for k, v := range raw {
			args[k] = v
		}
	}
	intent := Intent{
		Kind:       KindResolved,
		Tool:       name,
		Args:       args,
		Confidence: confidence,
		Source:     SourceLLM,
		Segment:    segment,
	}
	if confidence < i.threshold() {
		intent.ClarificationPrompt = clarification
	}
	return intent
}

func (i *Interpreter) threshold() float64 {
	if i.Threshold <= 0 {
		return DefaultThreshold
	}
	return i.Threshold
}
