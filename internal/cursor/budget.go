package cursor

import (
	"errors"
	"fmt"
)

// DefaultMaxCollisions bounds the collisions resolved in one step.
const DefaultMaxCollisions = 256

// Budget counts collisions within a single movement step.
//
// Every resolved crossing can create lines (fan-out, cloning) that lie on the
// remaining path, so a step has no structural bound on its length. Budget
// turns a runaway cascade into an error instead of a hang.
type Budget struct {
	max     int
	current int
}

// NewBudget creates a budget allowing max collisions.
func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// Check counts one collision and fails once the limit is passed.
func (b *Budget) Check() error {
	b.current++
	if b.current > b.max {
		return &CollisionsExceededError{Collisions: b.current, Limit: b.max}
	}
	return nil
}

// Current returns the number of collisions counted so far.
func (b *Budget) Current() int {
	return b.current
}

// Max returns the limit.
func (b *Budget) Max() int {
	return b.max
}

// CollisionsExceededError aborts a step whose cascade ran past the budget.
type CollisionsExceededError struct {
	Collisions int
	Limit      int
}

func (e *CollisionsExceededError) Error() string {
	return fmt.Sprintf("step exceeded collision budget: %d collisions > %d limit",
		e.Collisions, e.Limit)
}

// IsCollisionsExceeded reports whether err is a CollisionsExceededError.
// Uses errors.As to handle wrapped errors.
func IsCollisionsExceeded(err error) bool {
	var ce *CollisionsExceededError
	return errors.As(err, &ce)
}
