package history

import (
	"context"
	"sync"
)

// MemoryStore keeps versions and stacks in process. It is single-instance
// only; multi-instance deployments use the Postgres or Redis stores.
type MemoryStore struct {
	mu       sync.RWMutex
	versions map[string]Version
	byUser   map[string][]string
	entries  map[string][]Entry
	stacks   map[string]Stack
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		versions: make(map[string]Version),
		byUser:   make(map[string][]string),
		entries:  make(map[string][]Entry),
		stacks:   make(map[string]Stack),
	}
}

// AppendVersion implements VersionStore.
func (m *MemoryStore) AppendVersion(ctx context.Context, v Version) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendVersionLocked(v)
	return nil
}

func (m *MemoryStore) appendVersionLocked(v Version) {
	v.Document = v.Document.Clone()
	m.versions[v.ID] = v
	m.byUser[v.UserID] = append(m.byUser[v.UserID], v.ID)
}

// GetVersion implements VersionStore.
func (m *MemoryStore) GetVersion(ctx context.Context, id string) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.versions[id]
	if !ok {
		return Version{}, ErrNotFound
	}
	v.Document = v.Document.Clone()
	return v, nil
}

// ListVersions implements VersionStore in append order.
func (m *MemoryStore) ListVersions(ctx context.Context, userID string) ([]Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.byUser[userID]
	out := make([]Version, 0, len(ids))
	for _, id := range ids {
		v := m.versions[id]
		v.Document = v.Document.Clone()
		out = append(out, v)
	}
	return out, nil
}

// LoadStack implements StackStore.
func (m *MemoryStore) LoadStack(ctx context.Context, userID string) (Stack, error) {
	if err := ctx.Err(); err != nil {
		return Stack{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stacks[userID]
	if !ok {
		return Stack{UserID: userID}, nil
	}
	return s.clone(), nil
}

// SaveStack implements StackStore.
func (m *MemoryStore) SaveStack(ctx context.Context, s Stack, expectedRevision int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveStackLocked(s, expectedRevision)
}

func (m *MemoryStore) saveStackLocked(s Stack, expectedRevision int64) error {
	if m.stacks[s.UserID].Revision != expectedRevision {
		return ErrConflict
	}
	next := s.clone()
	next.Revision = expectedRevision + 1
	m.stacks[s.UserID] = next
	return nil
}

// Commit implements Committer under a single lock.
func (m *MemoryStore) Commit(ctx context.Context, v Version, e Entry, s Stack, expectedRevision int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stacks[s.UserID].Revision != expectedRevision {
		return ErrConflict
	}
	m.appendVersionLocked(v)
	m.entries[v.UserID] = append(m.entries[v.UserID], e)
	return m.saveStackLocked(s, expectedRevision)
}

// ListEntries implements Committer in commit order.
func (m *MemoryStore) ListEntries(ctx context.Context, userID string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Entry(nil), m.entries[userID]...), nil
}
