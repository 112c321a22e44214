// Package design holds template assignment and color customizations. Its undo
// model is a single-level swap, separate from the content history stack.
package design

import (
	"sort"
	"time"
)

// Template identifiers.
const (
	TemplateClassic   = "classic"
	TemplateModern    = "modern"
	TemplateMinimal   = "minimal"
	TemplateExecutive = "executive"
	TemplateTechnical = "technical"
	TemplateCreative  = "creative"
)

// Templates lists every known template.
var Templates = []string{TemplateClassic, TemplateModern, TemplateMinimal, TemplateExecutive, TemplateTechnical, TemplateCreative}

// DefaultTemplate is used before anything has been assigned.
const DefaultTemplate = TemplateClassic

// IsTemplate reports whether id names a known template.
func IsTemplate(id string) bool {
	for _, t := range Templates {
		if t == id {
			return true
		}
	}
	return false
}

// Customization is an immutable set of color overrides.
type Customization struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	TemplateID string            `json:"template_id"`
	Colors     map[string]string `json:"colors"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Assignment is a user's current template and customization pointer plus
// exactly one step of undo.
type Assignment struct {
	UserID                  string    `json:"user_id"`
	TemplateID              string    `json:"template_id"`
	CustomizationID         *string   `json:"customization_id"`
	PreviousCustomizationID *string   `json:"previous_customization_id"`
	Revision                int64     `json:"revision"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// NewAssignment returns the default assignment for a user.
func NewAssignment(userID string) Assignment {
	return Assignment{UserID: userID, TemplateID: DefaultTemplate}
}

// Customize points the assignment at id, remembering the current pointer as
// the single undo step.
func (a Assignment) Customize(id string) Assignment {
	next := a
	next.PreviousCustomizationID = copyPtr(a.CustomizationID)
	next.CustomizationID = &id
	return next
}

// Undo swaps current and previous. A second undo therefore restores the
// state the first one left.
func (a Assignment) Undo() (Assignment, error) {
	if a.PreviousCustomizationID == nil {
		return a, ErrNothingToUndo
	}
	next := a
	next.CustomizationID, next.PreviousCustomizationID = copyPtr(a.PreviousCustomizationID), copyPtr(a.CustomizationID)
	return next, nil
}

// Revert clears both pointers, returning to the bare template.
func (a Assignment) Revert() Assignment {
	next := a
	next.CustomizationID = nil
	next.PreviousCustomizationID = nil
	return next
}

// WithTemplate switches templates. Customization pointers are kept.
func (a Assignment) WithTemplate(templateID string) Assignment {
	next := a
	next.TemplateID = templateID
	return next
}

func copyPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func sortLongestFirst(items []string) {
	sort.Slice(items, func(i, j int) bool {
		if len(items[i]) != len(items[j]) {
			return len(items[i]) > len(items[j])
		}
		return items[i] < items[j]
	})
}
