// Package history stores immutable resume versions and the per-user
// past/current/future stack used for multi-level undo and redo.
package history

import (
	"time"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
)

// Version is an immutable document snapshot linked to its predecessor.
type Version struct {
	ID                string         `json:"id"`
	UserID            string         `json:"user_id"`
	PreviousVersionID *string        `json:"previous_version_id"`
	Document          model.Document `json:"document_snapshot"`
	ChangeSummary     string         `json:"change_summary"`
	ScoringVersion    string         `json:"scoring_version"`
	CreatedAt         time.Time      `json:"created_at"`
}

// Entry records one committed change on the stack.
type Entry struct {
	ID        string         `json:"id"`
	VersionID string         `json:"version_id"`
	ATSScore  int            `json:"ats_score"`
	Artifacts map[string]any `json:"artifacts,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Stack is the per-user undo/redo state. The top of Past and Future is the
// last element. Revision increases on every save.
type Stack struct {
	UserID   string  `json:"user_id"`
	Past     []Entry `json:"past"`
	Current  *Entry  `json:"current"`
	Future   []Entry `json:"future"`
	Revision int64   `json:"revision"`
}

// CurrentVersionID returns the version the stack points at, or "".
func (s Stack) CurrentVersionID() string {
	if s.Current == nil {
		return ""
	}
	return s.Current.VersionID
}

// Push makes e current, moves the old current into Past and clears Future.
func (s Stack) Push(e Entry) Stack {
	next := s.clone()
	if next.Current != nil {
		next.Past = append(next.Past, *next.Current)
	}
	next.Current = &e
	next.Future = nil
	return next
}

// Undo moves Current onto Future and pops Past into Current.
func (s Stack) Undo() (Stack, error) {
	if len(s.Past) == 0 {
		return s, ErrNoPreviousVersion
	}
	next := s.clone()
	top := next.Past[len(next.Past)-1]
	next.Past = trim(next.Past[:len(next.Past)-1])
	if next.Current != nil {
		next.Future = append(next.Future, *next.Current)
	}
	next.Current = &top
	return next, nil
}

// Redo mirrors Undo using Future.
func (s Stack) Redo() (Stack, error) {
	if len(s.Future) == 0 {
		return s, ErrNoFutureVersion
	}
	next := s.clone()
	top := next.Future[len(next.Future)-1]
	next.Future = trim(next.Future[:len(next.Future)-1])
	if next.Current != nil {
		next.Past = append(next.Past, *next.Current)
	}
	next.Current = &top
	return next, nil
}

func (s Stack) clone() Stack {
	out := Stack{UserID: s.UserID, Revision: s.Revision}
	out.Past = append([]Entry(nil), s.Past...)
	out.Future = append([]Entry(nil), s.Future...)
	if s.Current != nil {
		cur := *s.Current
		out.Current = &cur
	}
	return out
}

func trim(entries []Entry) []Entry {
	if len(entries) == 0 {
		return nil
	}
	return entries
}
