package graph

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes graph store failures.
type ErrorCode string

const (
	// CodeInvalidNode: an operation named a node that does not exist or
	// cannot take part (e.g. both endpoints of a line being the same node).
	CodeInvalidNode ErrorCode = "INVALID_NODE"

	// CodeUnknownLine: an operation named a line that does not exist.
	CodeUnknownLine ErrorCode = "UNKNOWN_LINE"

	// CodeDuplicateLine: a line with the same ordered endpoints exists.
	CodeDuplicateLine ErrorCode = "DUPLICATE_LINE"

	// CodeInvalidLevel: bulk-loaded level data is malformed.
	CodeInvalidLevel ErrorCode = "INVALID_LEVEL"
)

// Sentinels for errors.Is. A concrete *Error matches the sentinel with the
// same code.
var (
	ErrInvalidNode   = &Error{Code: CodeInvalidNode}
	ErrUnknownLine   = &Error{Code: CodeUnknownLine}
	ErrDuplicateLine = &Error{Code: CodeDuplicateLine}
	ErrInvalidLevel  = &Error{Code: CodeInvalidLevel}
)

// Error is returned by every failing store operation. The store is left
// unchanged whenever an Error is returned.
type Error struct {
	Code    ErrorCode
	Message string

	// Node and Line identify the offending entity when known.
	Node NodeID
	Line LineID

	// Err is an underlying cause (used by level loading).
	Err error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	switch {
	case e.Node != 0 && e.Line != 0:
		msg += fmt.Sprintf(" (node=%d, line=%d)", e.Node, e.Line)
	case e.Node != 0:
		msg += fmt.Sprintf(" (node=%d)", e.Node)
	case e.Line != 0:
		msg += fmt.Sprintf(" (line=%d)", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// IsInvalidNode reports whether err is an INVALID_NODE error.
func IsInvalidNode(err error) bool { return errors.Is(err, ErrInvalidNode) }

// IsUnknownLine reports whether err is an UNKNOWN_LINE error.
func IsUnknownLine(err error) bool { return errors.Is(err, ErrUnknownLine) }

// IsDuplicateLine reports whether err is a DUPLICATE_LINE error.
func IsDuplicateLine(err error) bool { return errors.Is(err, ErrDuplicateLine) }

// IsInvalidLevel reports whether err is an INVALID_LEVEL error.
func IsInvalidLevel(err error) bool { return errors.Is(err, ErrInvalidLevel) }

func invalidNode(id NodeID, format string, args ...any) *Error {
	return &Error{Code: CodeInvalidNode, Node: id, Message: fmt.Sprintf(format, args...)}
}

func unknownLine(id LineID) *Error {
	return &Error{Code: CodeUnknownLine, Line: id, Message: "line does not exist"}
}

func invalidLevel(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidLevel, Message: fmt.Sprintf(format, args...)}
}
