// Package apperr defines the error taxonomy shared by the agent components.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Code is a stable, client-facing error code.
type Code string

const (
	CodeValidation      Code = "validation_error"
	CodeTool            Code = "tool_error"
	CodeExternalService Code = "external_service"
	CodeHistory         Code = "history_error"
	CodeConflict        Code = "conflict"
	CodePersistence     Code = "persistence_error"
	CodeMutation        Code = "mutation_error"
	CodeInternal        Code = "internal_error"
)

// Error is a classified error. Op names the component or tool that failed.
type Error struct {
	Code    Code
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.message(), e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.message())
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.message(), e.Err)
	default:
		return e.message()
	}
}

func (e *Error) message() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code so errors.Is(err, &Error{Code: CodeConflict}) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Op == "" && t.Message == "" && t.Err == nil
}

func newError(code Code, op, message string, err error) *Error {
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

// Validation reports bad input. Never retried.
func Validation(op, message string) *Error {
	return newError(CodeValidation, op, message, nil)
}

// InvalidArgs wraps an argument validation failure from a tool or parser.
func InvalidArgs(op string, err error) *Error {
	return newError(CodeValidation, op, "invalid arguments", err)
}

// Tool reports a tool execution failure.
func Tool(op string, err error) *Error {
	return newError(CodeTool, op, "tool execution failed", err)
}

// External reports an LLM or other dependency failure, including timeouts.
func External(op string, err error) *Error {
	message := "external service failed"
	if errors.Is(err, context.DeadlineExceeded) {
		message = "external service timed out"
	}
	return newError(CodeExternalService, op, message, err)
}

// History reports a user-actionable undo/redo condition.
func History(op string, err error) *Error {
	return newError(CodeHistory, op, "", err)
}

// Conflict reports a lost optimistic concurrency race.
func Conflict(op string, err error) *Error {
	return newError(CodeConflict, op, "concurrent modification", err)
}

// Persistence reports a failed store write or read.
func Persistence(op string, err error) *Error {
	return newError(CodePersistence, op, "persistence failed", err)
}

// Mutation reports a failure applying a patch to the document.
func Mutation(op string, err error) *Error {
	return newError(CodeMutation, op, "mutation failed", err)
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Detail is the serializable form used in results and HTTP responses.
type Detail struct {
	Code    Code   `json:"code"`
	Op      string `json:"op,omitempty"`
	Message string `json:"message"`
}

// DetailOf converts any error into a Detail.
func DetailOf(err error) Detail {
	var e *Error
	if errors.As(err, &e) {
		return Detail{Code: e.Code, Op: e.Op, Message: err.Error()}
	}
	return Detail{Code: CodeInternal, Message: err.Error()}
}
