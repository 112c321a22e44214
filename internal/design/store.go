package design

import "context"

// Store persists assignments and immutable customizations.
type Store interface {
	// LoadAssignment returns the stored assignment or NewAssignment with revision 0.
	LoadAssignment(ctx context.Context, userID string) (Assignment, error)
	// SaveAssignment writes a when the stored revision equals expectedRevision
	// and returns ErrConflict otherwise.
	SaveAssignment(ctx context.Context, a Assignment, expectedRevision int64) error
	CreateCustomization(ctx context.Context, c Customization) error
	GetCustomization(ctx context.Context, id string) (Customization, error)
}
