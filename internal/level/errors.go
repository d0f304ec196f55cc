package level

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sigil/internal/graph"
)

// Error reports a level that could not be read or built.
//
// Every Error matches graph.ErrInvalidLevel. When the failure came from the
// graph itself, Err carries the underlying *graph.Error.
type Error struct {
	Path    string
	Field   string
	Message string

	// Line and Column are 1-based; zero when unknown.
	Line   int
	Column int

	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", e.Path, e.Line, e.Column)
	}
	switch {
	case loc != "" && e.Field != "":
		return fmt.Sprintf("%s: %s: %s", loc, e.Field, msg)
	case loc != "":
		return fmt.Sprintf("%s: %s", loc, msg)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, msg)
	}
	return msg
}

// Unwrap exposes the graph error, or ErrInvalidLevel when there is none.
func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return graph.ErrInvalidLevel
}

// withPath stamps a path onto err if it is a level error.
func withPath(err error, path string) error {
	var le *Error
	if errors.As(err, &le) && le.Path == "" {
		le.Path = path
	}
	return err
}

// fromCUE converts a CUE error, keeping the first position.
func fromCUE(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Field: "cue", Message: err.Error()}
	}
	first := errs[0]
	le := &Error{Field: "cue", Message: first.Error()}
	if pos := cueerrors.Positions(first); len(pos) > 0 {
		le.setPos(pos[0])
	}
	return le
}

func (e *Error) setPos(p token.Pos) {
	if !p.IsValid() {
		return
	}
	e.Line, e.Column = p.Line(), p.Column()
	if e.Path == "" {
		e.Path = p.Filename()
	}
}
