package engine

import (
	"errors"
	"fmt"
)

// ErrNoLevel is returned by inputs sent to a session before Load.
var ErrNoLevel = errors.New("engine: no level loaded")

// DivergenceError reports that a replayed step produced a snapshot whose
// hash differs from the journaled one.
type DivergenceError struct {
	SessionID string
	Seq       int64
	Expected  string
	Got       string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("replay diverged: session %s seq %d: expected %s, got %s",
		e.SessionID, e.Seq, short(e.Expected), short(e.Got))
}

// IsDivergence reports whether err is (or wraps) a DivergenceError.
func IsDivergence(err error) bool {
	var de *DivergenceError
	return errors.As(err, &de)
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
