package design

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/locks"
)

// State is an assignment together with its resolved customization.
type State struct {
	Assignment    Assignment     `json:"assignment"`
	Customization *Customization `json:"customization,omitempty"`
}

// Colors returns the active color overrides.
func (s State) Colors() map[string]string {
	if s.Customization == nil {
		return map[string]string{}
	}
	return s.Customization.Colors
}

// Service applies design changes under a per-user lock.
type Service struct {
	Store  Store
	Locker locks.Locker
	Logger *zap.Logger
	Now    func() time.Time
	NewID  func() string
}

// NewService wires a Service with default clock and id generator.
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

// Current returns the user's design state.
func (s *Service) Current(ctx context.Context, userID string) (State, error) {
	a, err := s.Store.LoadAssignment(ctx, userID)
	if err != nil {
		return State{}, err
	}
	return s.resolve(ctx, a)
}

// Customize stores a new immutable customization that layers colors over the
// active ones and makes it current.
func (s *Service) Customize(ctx context.Context, userID string, colors map[string]string) (State, error) {
	normalized, err := NormalizeColors(colors)
	if err != nil {
		return State{}, err
	}
	return s.mutate(ctx, userID, func(a Assignment) (Assignment, error) {
		merged := map[string]string{}
		if a.CustomizationID != nil {
			prev, err := s.Store.GetCustomization(ctx, *a.CustomizationID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return a, err
			}
			for k, v := range prev.Colors {
				merged[k] = v
			}
		}
		for k, v := range normalized {
			merged[k] = v
		}
		c := Customization{
			ID:         s.NewID(),
			UserID:     userID,
			TemplateID: a.TemplateID,
			Colors:     merged,
			CreatedAt:  s.Now(),
		}
		if err := s.Store.CreateCustomization(ctx, c); err != nil {
			return a, err
		}
		return a.Customize(c.ID), nil
	})
}

// AssignTemplate switches the user's template.
func (s *Service) AssignTemplate(ctx context.Context, userID, templateID string) (State, error) {
	if !IsTemplate(templateID) {
		return State{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, templateID)
	}
	return s.mutate(ctx, userID, func(a Assignment) (Assignment, error) {
		return a.WithTemplate(templateID), nil
	})
}

// Undo swaps the current and previous customization.
func (s *Service) Undo(ctx context.Context, userID string) (State, error) {
	return s.mutate(ctx, userID, func(a Assignment) (Assignment, error) {
		return a.Undo()
	})
}

// Revert drops all customization for the user.
func (s *Service) Revert(ctx context.Context, userID string) (State, error) {
	return s.mutate(ctx, userID, func(a Assignment) (Assignment, error) {
		return a.Revert(), nil
	})
}

func (s *Service) mutate(ctx context.Context, userID string, fn func(Assignment) (Assignment, error)) (State, error) {
	release, err := s.Locker.Lock(ctx, locks.DesignKey(userID))
	if err != nil {
		return State{}, err
	}
	defer release()

	current, err := s.Store.LoadAssignment(ctx, userID)
	if err != nil {
		return State{}, err
	}
	next, err := fn(current)
	if err != nil {
		return State{}, err
	}
	next.UpdatedAt = s.Now()
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	if err := s.Store.SaveAssignment(ctx, next, current.Revision); err != nil {
		return State{}, err
	}
	next.Revision = current.Revision + 1
	s.Logger.Debug("design assignment updated",
		zap.String("user_id", userID),
		zap.String("template_id", next.TemplateID),
		zap.Int64("revision", next.Revision),
	)
	return s.resolve(ctx, next)
}

func (s *Service) resolve(ctx context.Context, a Assignment) (State, error) {
	state := State{Assignment: a}
	if a.CustomizationID == nil {
		return state, nil
	}
	c, err := s.Store.GetCustomization(ctx, *a.CustomizationID)
	if err != nil {
		return State{}, err
	}
	state.Customization = &c
	return state, nil
}

// NormalizeColors validates every target and value, returning hex values.
func NormalizeColors(colors map[string]string) (map[string]string, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("%w: no colors given", ErrInvalidColor)
	}
	out := make(map[string]string, len(colors))
	for target, value := range colors {
		t, err := ParseTarget(target)
		if err != nil {
			return nil, err
		}
		hex, err := ParseColor(value)
		if err != nil {
			return nil, err
		}
		out[t] = hex
	}
	return out, nil
}
