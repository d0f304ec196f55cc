package rules

import (
	"errors"
	"fmt"

	"github.com/roach88/sigil/internal/graph"
)

// Collision is one cursor crossing to resolve.
type Collision struct {
	Aura Aura         `json:"aura"`
	Line graph.LineID `json:"line"`
	Node graph.NodeID `json:"node"`
}

// EffectKind names a single state transition.
type EffectKind string

const (
	EffectReject     EffectKind = "reject"     // Triangle refused an entering crossing
	EffectFlip       EffectKind = "flip"       // line direction at Node set to exiting
	EffectReconnect  EffectKind = "reconnect"  // line endpoint moved from Node to Target
	EffectConnect    EffectKind = "connect"    // new line created
	EffectDisconnect EffectKind = "disconnect" // line removed
	EffectClone      EffectKind = "clone"      // Node cloned as Target
	EffectDestroy    EffectKind = "destroy"    // Node removed
	EffectToggle     EffectKind = "toggle"     // rune bit of Node set to Active
	EffectPrune      EffectKind = "prune"      // entering line removed from Triangle Node
)

// Effect is one applied transition. Unused fields are zero.
type Effect struct {
	Kind   EffectKind   `json:"kind"`
	Node   graph.NodeID `json:"node,omitempty"`
	Line   graph.LineID `json:"line,omitempty"`
	Target graph.NodeID `json:"target,omitempty"`
	Active bool         `json:"active,omitempty"`
}

func (e Effect) String() string {
	switch e.Kind {
	case EffectReconnect:
		return fmt.Sprintf("%s line=%d %d->%d", e.Kind, e.Line, e.Node, e.Target)
	case EffectClone:
		return fmt.Sprintf("%s node=%d as=%d", e.Kind, e.Node, e.Target)
	case EffectToggle:
		return fmt.Sprintf("%s node=%d active=%t", e.Kind, e.Node, e.Active)
	case EffectDestroy:
		return fmt.Sprintf("%s node=%d", e.Kind, e.Node)
	default:
		return fmt.Sprintf("%s line=%d node=%d", e.Kind, e.Line, e.Node)
	}
}

// Outcome is the committed result of one collision.
type Outcome struct {
	Collision Collision `json:"collision"`

	// Rejected is set when shape resolution refused the crossing; no aura
	// effect was applied.
	Rejected bool `json:"rejected,omitempty"`

	Effects []Effect `json:"effects"`
}

// Count returns how many effects of the given kind the outcome holds.
func (o Outcome) Count(kind EffectKind) int {
	n := 0
	for _, e := range o.Effects {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// ErrRuleConflict matches every *ConflictError via errors.Is.
var ErrRuleConflict = errors.New("RULE_CONFLICT")

// ConflictError reports that shape and aura resolution targeted the same
// entity with contradictory operations. The collision was not applied.
type ConflictError struct {
	Collision Collision
	Shape     graph.Shape
	Message   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("RULE_CONFLICT: %s (node=%d, line=%d, shape=%s, aura=%s)",
		e.Message, e.Collision.Node, e.Collision.Line, e.Shape, e.Collision.Aura)
}

// Is matches ErrRuleConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrRuleConflict
}

// IsRuleConflict reports whether err is a rule conflict.
// Uses errors.Is to handle wrapped errors.
func IsRuleConflict(err error) bool {
	return errors.Is(err, ErrRuleConflict)
}
