package harness

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/sigil/internal/engine"
	"github.com/roach88/sigil/internal/graph"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", formatEvent(ev))
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	snap := result.Final
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: result.Trace}
	}

	switch a.Type {
	case AssertSolved:
		if snap.Solved != *a.Value {
			return fail(fmt.Sprintf("solved=%t", *a.Value), fmt.Sprintf("solved=%t", snap.Solved))
		}

	case AssertNodeCount:
		if len(snap.Nodes) != *a.Count {
			return fail(fmt.Sprintf("%d nodes", *a.Count), fmt.Sprintf("%d nodes", len(snap.Nodes)))
		}

	case AssertLineCount:
		if len(snap.Lines) != *a.Count {
			return fail(fmt.Sprintf("%d lines", *a.Count), fmt.Sprintf("%d lines", len(snap.Lines)))
		}

	case AssertNode:
		n, ok := snap.Node(a.Node)
		if !ok {
			return fail(fmt.Sprintf("node %d", a.Node), "no such node")
		}
		return matchFields(fmt.Sprintf("node %d", a.Node), nodeFields(n), a.Expect, fail)

	case AssertLine:
		l, ok := lineView(snap, a.Line)
		if !ok {
			return fail(fmt.Sprintf("line %d", a.Line), "no such line")
		}
		return matchFields(fmt.Sprintf("line %d", a.Line), lineFields(l), a.Expect, fail)

	case AssertCursor:
		return matchFields("cursor", map[string]any{
			"x":    snap.Cursor.Position.X,
			"y":    snap.Cursor.Position.Y,
			"aura": snap.Cursor.Aura.String(),
		}, a.Expect, fail)

	case AssertEffectCount:
		if got := result.EffectCount(a.Effect); got != *a.Count {
			return fail(fmt.Sprintf("%d %s effects", *a.Count, a.Effect), fmt.Sprintf("%d", got))
		}

	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
	return nil
}

func nodeFields(n engine.NodeView) map[string]any {
	return map[string]any{
		"shape":     n.Shape.String(),
		"glyph":     n.Glyph.String(),
		"rune":      n.RuneActive,
		"selected":  n.Selected,
		"connected": n.Connected,
		"looped":    n.Looped,
		"enclosed":  n.Enclosed,
		"satisfied": n.Satisfied,
		"x":         n.Position.X,
		"y":         n.Position.Y,
	}
}

func lineFields(l engine.LineView) map[string]any {
	return map[string]any{
		"from":           float64(l.From),
		"to":             float64(l.To),
		"directed":       l.Directed,
		"from_direction": l.FromDirection,
		"to_direction":   l.ToDirection,
	}
}

func lineView(snap engine.Snapshot, id graph.LineID) (engine.LineView, bool) {
	for _, l := range snap.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return engine.LineView{}, false
}

// matchFields checks every expected field against actual (subset match).
func matchFields(what string, actual, expected map[string]any, fail func(expected, actual string) error) error {
	for _, key := range sortedKeys(expected) {
		got, ok := actual[key]
		if !ok {
			return fail(fmt.Sprintf("%s.%s", what, key), "unknown field")
		}
		if !valuesEqual(got, expected[key]) {
			return fail(fmt.Sprintf("%s.%s = %v", what, key, expected[key]), fmt.Sprintf("%v", got))
		}
	}
	return nil
}

// valuesEqual compares a field value with a YAML-decoded expectation.
// Numbers compare within graph.Epsilon whatever their Go type.
func valuesEqual(actual, expected any) bool {
	if a, ok := toFloat(actual); ok {
		e, ok := toFloat(expected)
		return ok && math.Abs(a-e) <= graph.Epsilon
	}
	return reflect.DeepEqual(actual, expected)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
