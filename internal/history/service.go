package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/locks"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
)

// Head is the user's stack plus the version it currently points at.
type Head struct {
	Stack   Stack    `json:"stack"`
	Version *Version `json:"version,omitempty"`
}

// Document returns the current document, or an empty one before any commit.
func (h Head) Document() model.Document {
	if h.Version == nil {
		return model.Document{}
	}
	return h.Version.Document.Clone()
}

// CommitRequest describes a new version to append on top of BaseVersionID.
type CommitRequest struct {
	UserID         string
	BaseVersionID  string
	Document       model.Document
	ChangeSummary  string
	ScoringVersion string
	ATSScore       int
	Artifacts      map[string]any
}

// CommitResult is what Commit persisted.
type CommitResult struct {
	Version Version `json:"version"`
	Entry   Entry   `json:"entry"`
	Stack   Stack   `json:"stack"`
}

// Service coordinates the version log and the per-user stack.
type Service struct {
	Store  Store
	Locker locks.Locker
	Logger *zap.Logger
	Now    func() time.Time
	NewID  func() string
}

// NewService wires a Service with UUIDv7 ids.
func NewService(store Store, locker locks.Locker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = locks.NewMemory()
	}
	return &Service{
		Store:  store,
		Locker: locker,
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
		NewID:  func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// Head loads the user's stack and current version.
func (s *Service) Head(ctx context.Context, userID string) (Head, error) {
	st, err := s.Store.LoadStack(ctx, userID)
	if err != nil {
		return Head{}, err
	}
	return s.headFor(ctx, st)
}

func (s *Service) headFor(ctx context.Context, st Stack) (Head, error) {
	h := Head{Stack: st}
	if st.Current == nil {
		return h, nil
	}
	v, err := s.Store.GetVersion(ctx, st.Current.VersionID)
	if err != nil {
		return Head{}, fmt.Errorf("load current version %s: %w", st.Current.VersionID, err)
	}
	h.Version = &v
	return h, nil
}

// Commit appends a version and pushes its entry. The caller must hold
// locks.UserKey(req.UserID). A base that no longer matches the stack yields
// ErrConflict and nothing is written.
func (s *Service) Commit(ctx context.Context, req CommitRequest) (CommitResult, error) {
	st, err := s.Store.LoadStack(ctx, req.UserID)
	if err != nil {
		return CommitResult{}, err
	}
	if st.CurrentVersionID() != req.BaseVersionID {
		return CommitResult{}, fmt.Errorf("%w: base %q, current %q", ErrConflict, req.BaseVersionID, st.CurrentVersionID())
	}

	now := s.Now()
	v := Version{
		ID:             s.NewID(),
		UserID:         req.UserID,
		Document:       req.Document.Clone(),
		ChangeSummary:  req.ChangeSummary,
		ScoringVersion: req.ScoringVersion,
		CreatedAt:      now,
	}
	if req.BaseVersionID != "" {
		base := req.BaseVersionID
		v.PreviousVersionID = &base
	}
	e := Entry{
		ID:        s.NewID(),
		VersionID: v.ID,
		ATSScore:  req.ATSScore,
		Artifacts: req.Artifacts,
		CreatedAt: now,
	}
	next := st.Push(e)

	if err := ctx.Err(); err != nil {
		return CommitResult{}, err
	}
	if err := s.Store.Commit(ctx, v, e, next, st.Revision); err != nil {
		return CommitResult{}, err
	}
	next.Revision = st.Revision + 1
	s.Logger.Info("version committed",
		zap.String("user_id", req.UserID),
		zap.String("version_id", v.ID),
		zap.Int("ats_score", req.ATSScore),
		zap.Int64("revision", next.Revision),
	)
	return CommitResult{Version: v, Entry: e, Stack: next}, nil
}

// Undo moves the stack one step back.
func (s *Service) Undo(ctx context.Context, userID string) (Head, error) {
	return s.move(ctx, userID, Stack.Undo)
}

// Redo moves the stack one step forward.
func (s *Service) Redo(ctx context.Context, userID string) (Head, error) {
	return s.move(ctx, userID, Stack.Redo)
}

func (s *Service) move(ctx context.Context, userID string, step func(Stack) (Stack, error)) (Head, error) {
	release, err := s.Locker.Lock(ctx, locks.UserKey(userID))
	if err != nil {
		return Head{}, err
	}
	defer release()

	st, err := s.Store.LoadStack(ctx, userID)
	if err != nil {
		return Head{}, err
	}
	next, err := step(st)
	if err != nil {
		return Head{}, err
	}
	if err := s.Store.SaveStack(ctx, next, st.Revision); err != nil {
		return Head{}, err
	}
	next.Revision = st.Revision + 1
	return s.headFor(ctx, next)
}

// Entries lists every committed entry for the user, including ones pruned
// from the stack by a later commit.
func (s *Service) Entries(ctx context.Context, userID string) ([]Entry, error) {
	return s.Store.ListEntries(ctx, userID)
}

// Versions lists the user's version log, oldest first.
func (s *Service) Versions(ctx context.Context, userID string) ([]Version, error) {
	return s.Store.ListVersions(ctx, userID)
}

// Version returns one version owned by userID.
func (s *Service) Version(ctx context.Context, userID, id string) (Version, error) {
	v, err := s.Store.GetVersion(ctx, id)
	if err != nil {
		return Version{}, err
	}
	if v.UserID != userID {
		return Version{}, ErrNotFound
	}
	return v, nil
}

// IsUserActionable reports errors the caller can fix by changing the request.
func IsUserActionable(err error) bool {
	return errors.Is(err, ErrNoPreviousVersion) || errors.Is(err, ErrNoFutureVersion)
}
