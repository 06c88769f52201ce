package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for the task result taxonomy. Every failure
// a component can produce is caught at that component's boundary and carried
// as a TaggedError; nothing propagates past the dispatcher as a panic.
type ErrorKind string

const (
	ErrInput           ErrorKind = "input"
	ErrToolUnavailable ErrorKind = "tool_unavailable"
	ErrNetwork         ErrorKind = "network"
	ErrTimeout         ErrorKind = "timeout"
	ErrParse           ErrorKind = "parse"
	ErrNotFound        ErrorKind = "not_found"
	ErrSerialization   ErrorKind = "serialization"
)

// TaggedError is a failure value carrying its taxonomy kind.
type TaggedError struct {
	Kind ErrorKind
	Err  error
}

func (e *TaggedError) Error() string {
	return e.Err.Error()
}

func (e *TaggedError) Unwrap() error {
	return e.Err
}

// Errorf builds a TaggedError from a format string.
func Errorf(kind ErrorKind, format string, args ...interface{}) error {
	return &TaggedError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Tag wraps err with a kind, preserving the chain. Tagging nil returns nil.
func Tag(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &TaggedError{Kind: kind, Err: err}
}

// KindOf extracts the taxonomy kind from an error chain. Untagged errors
// default to ErrNetwork only at call sites that decide so; here they report
// an empty kind.
func KindOf(err error) ErrorKind {
	var tagged *TaggedError
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// TruncateMessage bounds an error message for inclusion in user-visible
// output. Tool stderr tails can run to many kilobytes.
func TruncateMessage(msg string, max int) string {
	if max <= 0 || len(msg) <= max {
		return msg
	}
	return msg[:max]
}
