package design

import (
	"context"
	"sync"
)

// MemoryStore keeps design state in process. It is single-instance only.
type MemoryStore struct {
	mu             sync.RWMutex
	assignments    map[string]Assignment
	customizations map[string]Customization
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assignments:    make(map[string]Assignment),
		customizations: make(map[string]Customization),
	}
}

// LoadAssignment implements Store.
func (s *MemoryStore) LoadAssignment(ctx context.Context, userID string) (Assignment, error) {
	if err := ctx.Err(); err != nil {
		return Assignment{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[userID]
	if !ok {
		return NewAssignment(userID), nil
	}
	a.CustomizationID = copyPtr(a.CustomizationID)
	a.PreviousCustomizationID = copyPtr(a.PreviousCustomizationID)
	return a, nil
}

// SaveAssignment implements Store.
func (s *MemoryStore) SaveAssignment(ctx context.Context, a Assignment, expectedRevision int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignments[a.UserID].Revision != expectedRevision {
		return ErrConflict
	}
	a.Revision = expectedRevision + 1
	a.CustomizationID = copyPtr(a.CustomizationID)
	a.PreviousCustomizationID = copyPtr(a.PreviousCustomizationID)
	s.assignments[a.UserID] = a
	return nil
}

// CreateCustomization implements Store.
func (s *MemoryStore) CreateCustomization(ctx context.Context, c Customization) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customizations[c.ID] = cloneCustomization(c)
	return nil
}

// GetCustomization implements Store.
func (s *MemoryStore) GetCustomization(ctx context.Context, id string) (Customization, error) {
	if err := ctx.Err(); err != nil {
		return Customization{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customizations[id]
	if !ok {
		return Customization{}, ErrNotFound
	}
	return cloneCustomization(c), nil
}

func cloneCustomization(c Customization) Customization {
	colors := make(map[string]string, len(c.Colors))
	for k, v := range c.Colors {
		colors[k] = v
	}
	c.Colors = colors
	return c
}
