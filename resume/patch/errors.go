package patch

import "errors"

var (
	// ErrInvalidPath indicates a path that cannot be parsed.
	ErrInvalidPath = errors.New("invalid path")
	// ErrPathNotFound indicates a path that does not resolve inside the document.
	ErrPathNotFound = errors.New("path not found")
	// ErrIndexOutOfRange indicates an index past the end of an array.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrTypeMismatch indicates an operation that does not fit the node type at path.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnknownOp indicates an unsupported patch operation.
	ErrUnknownOp = errors.New("unknown patch operation")
)
