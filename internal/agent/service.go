package agent

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/design"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/history"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/interpreter"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/jobs"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/lang"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/llm"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/locks"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/apperr"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/metrics"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/telemetry"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/tools"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/patch"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/scoring"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/service"
)

const tracerName = "github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/agent"

// Run outcomes used for metrics and telemetry.
const (
	OutcomeCommitted     = "committed"
	OutcomeUnchanged     = "unchanged"
	OutcomeDryRun        = "dry_run"
	OutcomeClarification = "clarification"
	OutcomeFatal         = "fatal"
)

// Deps are the collaborators of Service. Jobs, Design, Completer and Sink
// are optional.
type Deps struct {
	History     *history.Service
	Design      *design.Service
	Interpreter *interpreter.Interpreter
	Executor    *tools.Executor
	Jobs        jobs.Extractor
	Engine      *scoring.Engine
	Completer   llm.Completer
	Locker      locks.Locker
	Sink        telemetry.Sink
	Logger      *zap.Logger
}

// Service is the run orchestrator. It owns the commit boundary: nothing is
// persisted until every intent has executed and the after score is known.
type Service struct {
	History     *history.Service
	Design      *design.Service
	Interpreter *interpreter.Interpreter
	Executor    *tools.Executor
	Jobs        jobs.Extractor
	Engine      *scoring.Engine
	Completer   llm.Completer
	Locker      locks.Locker
	Sink        telemetry.Sink
	Logger      *zap.Logger
	tracer      trace.Tracer
}

// NewService fills defaults for optional dependencies.
func NewService(deps Deps) *Service {
	s := &Service{
		History:     deps.History,
		Design:      deps.Design,
		Interpreter: deps.Interpreter,
		Executor:    deps.Executor,
		Jobs:        deps.Jobs,
		Engine:      deps.Engine,
		Completer:   deps.Completer,
		Locker:      deps.Locker,
		Sink:        deps.Sink,
		Logger:      deps.Logger,
		tracer:      otel.Tracer(tracerName),
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	if s.Engine == nil {
		s.Engine = scoring.NewEngine()
	}
	if s.Locker == nil {
		s.Locker = locks.NewMemory()
	}
	if s.Sink == nil {
		s.Sink = telemetry.NopSink{}
	}
	if s.Jobs == nil {
		s.Jobs = jobs.HeuristicExtractor{}
	}
	return s
}

// Run interprets req.Command and executes the resulting intents in order
// against the user's current document. Nonfatal errors are collected in the
// result. A fatal error stops the batch, persists nothing and is returned
// together with the partial result.
func (s *Service) Run(ctx context.Context, req RunRequest) (*AgentResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "agent.run", trace.WithAttributes(
		attribute.String("user_id", req.UserID),
		attribute.Bool("dry_run", req.Options.DryRun),
	))
	defer span.End()

	result := &AgentResult{
		Intents:   []interpreter.Intent{},
		Actions:   []Action{},
		Diffs:     []IntentDiff{},
		Diff:      []patch.DiffEntry{},
		Artifacts: map[string]any{},
		DryRun:    req.Options.DryRun,
		Errors:    Errors{Nonfatal: []apperr.Detail{}},
	}
	err := s.run(ctx, req, result)
	if err != nil {
		result.fatal(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperr.CodeOf(err)))
	}

	outcome := outcomeOf(result, err)
	elapsed := time.Since(start)
	metrics.ObserveRun(outcome, elapsed)
	span.SetAttributes(attribute.String("outcome", outcome))
	s.Sink.Emit(telemetry.Event{
		Name:      "agent.run.completed",
		UserID:    req.UserID,
		RequestID: telemetry.RequestID(ctx),
		Fields: map[string]any{
			"outcome":  outcome,
			"intents":  len(result.Intents),
			"actions":  len(result.Actions),
			"nonfatal": len(result.Errors.Nonfatal),
			"duration": elapsed.Milliseconds(),
		},
	})
	s.Logger.Info("agent run finished",
		zap.String("user_id", req.UserID),
		zap.String("request_id", telemetry.RequestID(ctx)),
		zap.String("outcome", outcome),
		zap.Int("actions", len(result.Actions)),
		zap.Int("nonfatal", len(result.Errors.Nonfatal)),
		zap.Duration("elapsed", elapsed),
	)
	return result, err
}

func (s *Service) run(ctx context.Context, req RunRequest, result *AgentResult) error {
	if strings.TrimSpace(req.UserID) == "" {
		return apperr.Validation("agent", "user_id is required")
	}
	if strings.TrimSpace(req.Command) == "" {
		return apperr.Validation("agent", "command is required")
	}
	if !req.Options.DryRun {
		release, err := s.lock(ctx, req.UserID)
		if err != nil {
			return err
		}
		defer release()
	}

	head, err := s.History.Head(ctx, req.UserID)
	if err != nil {
		return apperr.Persistence("history", err)
	}
	baseID := head.Stack.CurrentVersionID()
	if req.BaseVersionID != "" && req.BaseVersionID != baseID {
		return apperr.Conflict("agent", fmt.Errorf("%w: base %q, current %q", history.ErrConflict, req.BaseVersionID, baseID))
	}
	// Diffs are always taken against the stored head; a supplied document is
	// recorded as its own contribution ahead of the actions.
	stored := head.Document()
	doc := stored
	if req.Document != nil {
		doc = req.Document.Clone()
	}
	if err := doc.Validate(); err != nil {
		return apperr.InvalidArgs("document", err)
	}
	result.Document = doc
	if req.Document != nil {
		entries, err := patch.ComputeDiff(stored, doc, patch.DiffOptions{})
		if err != nil {
			return apperr.Mutation("diff", err)
		}
		if len(entries) > 0 {
			result.Diffs = append(result.Diffs, IntentDiff{
				Action:  DocumentEditAction,
				Tool:    DocumentEditTool,
				Entries: entries,
				Summary: patch.Summarize(entries),
			})
		}
	}

	docLang := lang.Resolve(req.Options.LanguageHint, doc.Text())
	result.Language, result.Direction = docLang.Language, docLang.Direction

	job, err := s.resolveJob(ctx, req.Job, req.JobText)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		result.nonfatal(err)
	}
	result.Job = job
	if strings.TrimSpace(job.RawText) != "" {
		result.JobLanguage = lang.Detect(job.RawText).Language
	}

	before, err := s.score(ctx, doc, job)
	if err != nil {
		return err
	}
	result.ATSReport.Before = before

	interp, err := s.Interpreter.Interpret(ctx, interpreter.Request{
		Command:      req.Command,
		Document:     doc,
		Job:          job,
		LanguageHint: req.Options.LanguageHint,
		Suggestions:  before.Suggestions,
	})
	if err != nil {
		return err
	}
	for _, e := range interp.Errors {
		result.nonfatal(e)
	}
	result.Intents = interp.Intents
	result.Clarifications = interp.Clarifications()

	current, designChanges, err := s.execute(ctx, req.UserID, doc, job, before, result, interp.Resolved())
	if err != nil {
		return err
	}

	full, err := patch.ComputeDiff(stored, current, patch.DiffOptions{})
	if err != nil {
		return apperr.Mutation("diff", err)
	}
	result.Diff = full
	after := before
	if len(full) > 0 {
		if after, err = s.score(ctx, current, job); err != nil {
			return err
		}
	}
	delta, err := scoring.Compare(before, after)
	if err != nil {
		return fmt.Errorf("compare scores: %w", err)
	}
	result.ATSReport.After = &after
	result.ATSReport.Delta = &delta
	metrics.ObserveScore(after.Score)

	if req.Options.DryRun {
		result.Document = current
		return nil
	}

	result.Version = head.Version
	if len(full) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		committed, err := s.commit(ctx, history.CommitRequest{
			UserID:         req.UserID,
			BaseVersionID:  baseID,
			Document:       current,
			ChangeSummary:  changeSummary(result),
			ScoringVersion: after.ScoringVersion,
			ATSScore:       after.Score,
			Artifacts:      commitArtifacts(result, delta),
		})
		if err != nil {
			return err
		}
		result.Version = &committed.Version
		result.Committed = true
	}
	result.Document = current

	if len(designChanges) > 0 {
		state, err := s.applyDesign(ctx, req.UserID, designChanges)
		if err != nil {
			result.nonfatal(err)
		} else {
			result.Design = &state
		}
	}
	return nil
}

// execute runs intents in order. Tool failures are nonfatal; a patch that
// cannot be applied is fatal because later steps depend on it.
func (s *Service) execute(ctx context.Context, userID string, doc model.Document, job jobs.Description, before scoring.Report, result *AgentResult, intents []interpreter.Intent) (model.Document, []tools.DesignChange, error) {
	current := doc
	report, stale := before, false
	var designChanges []tools.DesignChange
	for _, intent := range intents {
		if err := ctx.Err(); err != nil {
			return doc, nil, err
		}
		args := intent.Args
		if stale && needsReport(intent.Tool) {
			fresh, err := s.score(ctx, current, job)
			if err != nil {
				return doc, nil, err
			}
			report, stale = fresh, false
		}
		if intent.Tool == tools.NameApplySuggestions {
			// Tip numbers refer to the suggestions the command was read against.
			args = pinSuggestionRefs(args, before)
		}
		action := Action{Tool: intent.Tool, Segment: intent.Segment, Args: args}
		res, err := s.Executor.Execute(ctx, intent.Tool, tools.Input{
			UserID:   userID,
			Document: current,
			Args:     args,
			Job:      job,
			Report:   &report,
			Language: result.Language,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return doc, nil, ctxErr
			}
			detail := apperr.DetailOf(err)
			action.Error = &detail
			result.Actions = append(result.Actions, action)
			result.nonfatal(err)
			continue
		}

		action.Success = res.Success
		action.Rationale = res.Rationale
		action.Warnings = res.Warnings
		action.Patch = res.Patch
		action.Design = res.Design
		idx := len(result.Actions)
		result.Actions = append(result.Actions, action)
		for k, v := range res.Artifacts {
			result.Artifacts[k] = v
		}
		if res.Design != nil {
			designChanges = append(designChanges, *res.Design)
		}
		if res.Patch.IsEmpty() {
			continue
		}

		next, err := patch.Apply(current, res.Patch)
		if err != nil {
			return doc, nil, apperr.Mutation(intent.Tool, err)
		}
		if err := next.Validate(); err != nil {
			return doc, nil, apperr.Mutation(intent.Tool, err)
		}
		entries, err := patch.ComputeDiff(current, next, patch.DiffOptions{})
		if err != nil {
			return doc, nil, apperr.Mutation(intent.Tool, err)
		}
		result.Diffs = append(result.Diffs, IntentDiff{
			Action:  idx,
			Tool:    intent.Tool,
			Entries: entries,
			Summary: patch.Summarize(entries),
		})
		current = next
		stale = true
	}
	return current, designChanges, nil
}

// needsReport lists the tools that read Input.Report.
func needsReport(tool string) bool {
	return tool == tools.NameApplySuggestions || tool == tools.NameDesignRecommender
}

func pinSuggestionRefs(args tools.Args, report scoring.Report) tools.Args {
	refs := args.Strings("suggestions")
	if n, ok := args.Int("tip"); ok {
		refs = append(refs, strconv.Itoa(n))
	}
	out := make(tools.Args, len(args))
	for k, v := range args {
		if k != "tip" {
			out[k] = v
		}
	}
	out["suggestions"] = service.PinRefs(report, refs)
	return out
}

func (s *Service) lock(ctx context.Context, userID string) (func(), error) {
	release, err := s.Locker.Lock(ctx, locks.UserKey(userID))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperr.Conflict("locks", err)
	}
	return release, nil
}

func (s *Service) resolveJob(ctx context.Context, override *jobs.Description, text string) (jobs.Description, error) {
	if override != nil {
		desc := *override
		if desc.Source == "" {
			desc.Source = jobs.SourceProvided
		}
		if desc.RawText == "" {
			desc.RawText = text
		}
		return desc, nil
	}
	if strings.TrimSpace(text) == "" {
		return jobs.Description{}, nil
	}
	return s.Jobs.Extract(ctx, text)
}

func (s *Service) score(ctx context.Context, doc model.Document, job jobs.Description) (scoring.Report, error) {
	ctx, span := s.tracer.Start(ctx, "agent.score")
	defer span.End()
	report, err := s.Engine.Score(ctx, doc, job)
	if err != nil {
		span.RecordError(err)
		return scoring.Report{}, fmt.Errorf("score document: %w", err)
	}
	span.SetAttributes(attribute.Int("score", report.Score))
	return report, nil
}

func (s *Service) commit(ctx context.Context, req history.CommitRequest) (history.CommitResult, error) {
	ctx, span := s.tracer.Start(ctx, "agent.commit")
	defer span.End()
	res, err := s.History.Commit(ctx, req)
	if err != nil {
		metrics.IncHistoryOp("commit", "error")
		span.RecordError(err)
		switch {
		case errors.Is(err, history.ErrConflict):
			return history.CommitResult{}, apperr.Conflict("history", err)
		case ctx.Err() != nil:
			return history.CommitResult{}, err
		default:
			return history.CommitResult{}, apperr.Persistence("history", err)
		}
	}
	metrics.IncHistoryOp("commit", "ok")
	span.SetAttributes(attribute.String("version_id", res.Version.ID))
	return res, nil
}

func (s *Service) applyDesign(ctx context.Context, userID string, changes []tools.DesignChange) (design.State, error) {
	if s.Design == nil {
		return design.State{}, errNoDesign
	}
	var state design.State
	for _, change := range changes {
		var err error
		if change.TemplateID != "" {
			if state, err = s.Design.AssignTemplate(ctx, userID, change.TemplateID); err != nil {
				return design.State{}, classifyDesign("design", err)
			}
		}
		if len(change.Colors) > 0 {
			if state, err = s.Design.Customize(ctx, userID, change.Colors); err != nil {
				return design.State{}, classifyDesign("design", err)
			}
		}
	}
	return state, nil
}

func outcomeOf(result *AgentResult, err error) string {
	switch {
	case err != nil:
		return OutcomeFatal
	case result.DryRun:
		return OutcomeDryRun
	case result.Committed:
		return OutcomeCommitted
	case len(result.Actions) == 0 && len(result.Clarifications) > 0:
		return OutcomeClarification
	default:
		return OutcomeUnchanged
	}
}

func changeSummary(result *AgentResult) string {
	parts := make([]string, 0, len(result.Diffs))
	for _, d := range result.Diffs {
		if d.Action == DocumentEditAction {
			parts = append(parts, "document edit")
			continue
		}
		parts = append(parts, result.Actions[d.Action].Segment)
	}
	return strings.Join(parts, "; ")
}

func commitArtifacts(result *AgentResult, delta scoring.Delta) map[string]any {
	out := make(map[string]any, len(result.Artifacts)+2)
	for k, v := range result.Artifacts {
		out[k] = v
	}
	toolNames := make([]string, 0, len(result.Actions))
	for _, a := range result.Actions {
		if a.Error == nil {
			toolNames = append(toolNames, a.Tool)
		}
	}
	out["tools"] = toolNames
	out["score_delta"] = delta.Score
	return out
}
