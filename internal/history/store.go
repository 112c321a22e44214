package history

import "context"

// VersionStore is the append-only version log.
type VersionStore interface {
	AppendVersion(ctx context.Context, v Version) error
	GetVersion(ctx context.Context, id string) (Version, error)
	ListVersions(ctx context.Context, userID string) ([]Version, error)
}

// StackStore persists stacks with optimistic revision checks.
type StackStore interface {
	// LoadStack returns an empty stack with revision 0 when none exists.
	LoadStack(ctx context.Context, userID string) (Stack, error)
	// SaveStack writes s when the stored revision equals expectedRevision.
	SaveStack(ctx context.Context, s Stack, expectedRevision int64) error
}

// Committer writes a new version, its entry and the updated stack together.
// Either everything is visible afterwards or nothing is.
type Committer interface {
	Commit(ctx context.Context, v Version, e Entry, s Stack, expectedRevision int64) error
	ListEntries(ctx context.Context, userID string) ([]Entry, error)
}

// Store is the full persistence surface used by Service.
type Store interface {
	VersionStore
	StackStore
	Committer
}

// SplitStore combines a version store with a separately hosted stack store,
// such as Postgres versions and a Redis stack. Commit appends the version
// first; when the stack save then fails the version stays stored but is
// unreachable from the stack.
type SplitStore struct {
	VersionStore
	Stacks  StackStore
	Entries interface {
		AppendEntry(ctx context.Context, userID string, e Entry) error
		ListEntries(ctx context.Context, userID string) ([]Entry, error)
	}
}

// LoadStack implements StackStore.
func (s SplitStore) LoadStack(ctx context.Context, userID string) (Stack, error) {
	return s.Stacks.LoadStack(ctx, userID)
}

// SaveStack implements StackStore.
func (s SplitStore) SaveStack(ctx context.Context, st Stack, expectedRevision int64) error {
	return s.Stacks.SaveStack(ctx, st, expectedRevision)
}

// Commit implements Committer.
func (s SplitStore) Commit(ctx context.Context, v Version, e Entry, st Stack, expectedRevision int64) error {
	if err := s.AppendVersion(ctx, v); err != nil {
		return err
	}
	if s.Entries != nil {
		if err := s.Entries.AppendEntry(ctx, v.UserID, e); err != nil {
			return err
		}
	}
	return s.Stacks.SaveStack(ctx, st, expectedRevision)
}

// ListEntries implements Committer.
func (s SplitStore) ListEntries(ctx context.Context, userID string) ([]Entry, error) {
	if s.Entries == nil {
		return nil, nil
	}
	return s.Entries.ListEntries(ctx, userID)
}
