package design

import "errors"

var (
	// ErrInvalidColor is returned for color input that cannot be parsed exactly.
	ErrInvalidColor = errors.New("invalid color")
	// ErrInvalidTarget is returned for an unknown color target.
	ErrInvalidTarget = errors.New("invalid color target")
	// ErrUnknownTemplate is returned for a template id outside Templates.
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrNothingToUndo is returned when no previous customization is recorded.
	ErrNothingToUndo = errors.New("no previous customization")
	// ErrNotFound is returned when a customization does not exist.
	ErrNotFound = errors.New("customization not found")
	// ErrConflict is returned when the stored assignment revision moved.
	ErrConflict = errors.New("design assignment changed concurrently")
)
