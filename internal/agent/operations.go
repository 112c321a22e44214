package agent

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/design"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/history"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/jobs"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/apperr"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/metrics"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/telemetry"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/scoring"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/service"
)

var errNoDesign = apperr.Persistence("design", errors.New("design store is not configured"))

// Undo moves the user's history one version back.
func (s *Service) Undo(ctx context.Context, userID string) (history.Head, error) {
	return s.move(ctx, "undo", userID, s.History.Undo)
}

// Redo moves the user's history one version forward.
func (s *Service) Redo(ctx context.Context, userID string) (history.Head, error) {
	return s.move(ctx, "redo", userID, s.History.Redo)
}

func (s *Service) move(ctx context.Context, op, userID string, step func(context.Context, string) (history.Head, error)) (history.Head, error) {
	if strings.TrimSpace(userID) == "" {
		return history.Head{}, apperr.Validation(op, "user_id is required")
	}
	ctx, span := s.tracer.Start(ctx, "agent."+op)
	defer span.End()

	head, err := step(ctx, userID)
	if err != nil {
		metrics.IncHistoryOp(op, "error")
		span.RecordError(err)
		return history.Head{}, classifyHistory(op, err)
	}
	metrics.IncHistoryOp(op, "ok")
	s.Sink.Emit(telemetry.Event{
		Name:      "agent.history." + op,
		UserID:    userID,
		RequestID: telemetry.RequestID(ctx),
		Fields:    map[string]any{"version_id": head.Stack.CurrentVersionID()},
	})
	return head, nil
}

// ListHistory returns the user's stack, current version and every committed entry.
func (s *Service) ListHistory(ctx context.Context, userID string) (HistoryView, error) {
	if strings.TrimSpace(userID) == "" {
		return HistoryView{}, apperr.Validation("history", "user_id is required")
	}
	head, err := s.History.Head(ctx, userID)
	if err != nil {
		return HistoryView{}, apperr.Persistence("history", err)
	}
	entries, err := s.History.Entries(ctx, userID)
	if err != nil {
		return HistoryView{}, apperr.Persistence("history", err)
	}
	return HistoryView{Stack: head.Stack, Current: head.Version, Entries: entries}, nil
}

// Import commits doc as a new version on top of the user's head.
func (s *Service) Import(ctx context.Context, userID string, doc model.Document) (history.CommitResult, error) {
	if strings.TrimSpace(userID) == "" {
		return history.CommitResult{}, apperr.Validation("import", "user_id is required")
	}
	if err := doc.Validate(); err != nil {
		return history.CommitResult{}, apperr.InvalidArgs("document", err)
	}
	release, err := s.lock(ctx, userID)
	if err != nil {
		return history.CommitResult{}, err
	}
	defer release()

	head, err := s.History.Head(ctx, userID)
	if err != nil {
		return history.CommitResult{}, apperr.Persistence("history", err)
	}
	report, err := s.score(ctx, doc, jobs.Description{})
	if err != nil {
		return history.CommitResult{}, err
	}
	return s.commit(ctx, history.CommitRequest{
		UserID:         userID,
		BaseVersionID:  head.Stack.CurrentVersionID(),
		Document:       doc,
		ChangeSummary:  "import",
		ScoringVersion: report.ScoringVersion,
		ATSScore:       report.Score,
	})
}

// ImportText structures raw resume text with the LLM and imports the result.
// Without a configured LLM the call fails with an external_service error.
func (s *Service) ImportText(ctx context.Context, userID, text string) (history.CommitResult, error) {
	if strings.TrimSpace(userID) == "" {
		return history.CommitResult{}, apperr.Validation("import", "user_id is required")
	}
	if strings.TrimSpace(text) == "" {
		return history.CommitResult{}, apperr.Validation("import", "resume text is required")
	}
	doc, err := service.BuildDocument(ctx, s.Completer, text)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return history.CommitResult{}, err
	case err != nil:
		return history.CommitResult{}, apperr.External("llm", err)
	}
	return s.Import(ctx, userID, doc)
}

// Score rates a document or raw resume text against a job. It reads nothing
// from and writes nothing to history.
func (s *Service) Score(ctx context.Context, req ScoreRequest) (scoring.Report, error) {
	if req.Document == nil && strings.TrimSpace(req.ResumeText) == "" {
		return scoring.Report{}, apperr.Validation("score", "document or resume_text is required")
	}
	job, err := s.resolveJob(ctx, req.Job, req.JobText)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return scoring.Report{}, ctxErr
		}
		s.Logger.Warn("job extraction degraded", zap.Error(err))
	}
	if req.Document == nil {
		return s.Engine.ScoreText(ctx, req.ResumeText, job)
	}
	if err := req.Document.Validate(); err != nil {
		return scoring.Report{}, apperr.InvalidArgs("document", err)
	}
	report, err := s.score(ctx, *req.Document, job)
	if err == nil {
		metrics.ObserveScore(report.Score)
	}
	return report, err
}

// ApplySuggestions applies the patches of the referenced suggestions to a
// document and reports the aggregated score delta. The result is not committed.
func (s *Service) ApplySuggestions(ctx context.Context, req ApplyRequest) (ApplyResult, error) {
	if len(req.SuggestionIDs) == 0 {
		return ApplyResult{}, apperr.Validation("apply_suggestions", "suggestion_ids is required")
	}
	var doc model.Document
	switch {
	case req.Document != nil:
		doc = req.Document.Clone()
	case strings.TrimSpace(req.UserID) != "":
		head, err := s.History.Head(ctx, req.UserID)
		if err != nil {
			return ApplyResult{}, apperr.Persistence("history", err)
		}
		doc = head.Document()
	default:
		return ApplyResult{}, apperr.Validation("apply_suggestions", "document or user_id is required")
	}
	if err := doc.Validate(); err != nil {
		return ApplyResult{}, apperr.InvalidArgs("document", err)
	}
	job, err := s.resolveJob(ctx, req.Job, req.JobText)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ApplyResult{}, ctxErr
		}
		s.Logger.Warn("job extraction degraded", zap.Error(err))
	}
	before, err := s.score(ctx, doc, job)
	if err != nil {
		return ApplyResult{}, err
	}

	res, err := service.ExecuteApply(ctx, s.Engine, doc, job, before, req.SuggestionIDs)
	if err != nil {
		if errors.Is(err, service.ErrNothingToApply) {
			return ApplyResult{}, apperr.InvalidArgs("apply_suggestions", err)
		}
		return ApplyResult{}, apperr.Mutation("apply_suggestions", err)
	}
	return ApplyResult{
		Document:    res.Document,
		ScoreDelta:  res.ScoreDelta,
		Before:      before,
		After:       res.After,
		Applied:     res.Applied,
		Aggregation: res.Aggregation,
		Diff:        res.Diff,
		Unknown:     res.Plan.Unknown,
	}, nil
}

// DesignState returns the user's template and color customization.
func (s *Service) DesignState(ctx context.Context, userID string) (design.State, error) {
	if s.Design == nil {
		return design.State{}, errNoDesign
	}
	state, err := s.Design.Current(ctx, userID)
	if err != nil {
		return design.State{}, classifyDesign("design", err)
	}
	return state, nil
}

// UndoDesign swaps back to the previous color customization.
func (s *Service) UndoDesign(ctx context.Context, userID string) (design.State, error) {
	if s.Design == nil {
		return design.State{}, errNoDesign
	}
	return s.designOp(ctx, "design_undo", userID, s.Design.Undo)
}

// RevertDesign clears every color customization.
func (s *Service) RevertDesign(ctx context.Context, userID string) (design.State, error) {
	if s.Design == nil {
		return design.State{}, errNoDesign
	}
	return s.designOp(ctx, "design_revert", userID, s.Design.Revert)
}

func (s *Service) designOp(ctx context.Context, op, userID string, fn func(context.Context, string) (design.State, error)) (design.State, error) {
	if strings.TrimSpace(userID) == "" {
		return design.State{}, apperr.Validation(op, "user_id is required")
	}
	state, err := fn(ctx, userID)
	if err != nil {
		metrics.IncHistoryOp(op, "error")
		return design.State{}, classifyDesign(op, err)
	}
	metrics.IncHistoryOp(op, "ok")
	return state, nil
}

func classifyHistory(op string, err error) error {
	switch {
	case history.IsUserActionable(err):
		return apperr.History(op, err)
	case errors.Is(err, history.ErrConflict):
		return apperr.Conflict(op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return apperr.Persistence(op, err)
	}
}

func classifyDesign(op string, err error) error {
	switch {
	case errors.Is(err, design.ErrNothingToUndo):
		return apperr.History(op, err)
	case errors.Is(err, design.ErrInvalidColor), errors.Is(err, design.ErrInvalidTarget), errors.Is(err, design.ErrUnknownTemplate):
		return apperr.InvalidArgs(op, err)
	case errors.Is(err, design.ErrConflict):
		return apperr.Conflict(op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return apperr.Persistence(op, err)
	}
}

// Version returns one of the user's versions. Unknown ids and versions owned by
// another user both yield history.ErrNotFound.
func (s *Service) Version(ctx context.Context, userID, id string) (history.Version, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return history.Version{}, apperr.Validation("version", "user_id and version id are required")
	}
	v, err := s.History.Version(ctx, userID, id)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, history.ErrNotFound):
		return history.Version{}, err
	default:
		return history.Version{}, apperr.Persistence("version", err)
	}
}
