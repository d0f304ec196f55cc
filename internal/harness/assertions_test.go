package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func pentagonResult(t *testing.T) *Result {
	t.Helper()
	result, err := Run(context.Background(), load(t, "pentagon.yaml"))
	require.NoError(t, err)
	return result
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	result := pentagonResult(t)

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertSolved, Value: ptr(false)},
		{Type: AssertNodeCount, Count: ptr(5)},
		{Type: AssertLineCount, Count: ptr(6)},
		{Type: AssertNode, Node: 5, Expect: map[string]any{"shape": "pentagon", "x": 1, "y": 1.0, "rune": false}},
		{Type: AssertLine, Line: 6, Expect: map[string]any{"from": 5, "to": 4}},
		{Type: AssertCursor, Expect: map[string]any{"aura": "circle", "x": 0.25, "y": -1}},
		{Type: AssertEffectCount, Effect: "flip", Count: ptr(2)},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Fail(t *testing.T) {
	result := pentagonResult(t)

	tests := []struct {
		name      string
		assertion Assertion
		contains  string
	}{
		{"solved", Assertion{Type: AssertSolved, Value: ptr(true)}, "Expected: solved=true"},
		{"node count", Assertion{Type: AssertNodeCount, Count: ptr(4)}, "Actual: 5 nodes"},
		{"line count", Assertion{Type: AssertLineCount, Count: ptr(3)}, "Actual: 6 lines"},
		{"missing node", Assertion{Type: AssertNode, Node: 9, Expect: map[string]any{"rune": true}}, "no such node"},
		{"node field", Assertion{Type: AssertNode, Node: 1, Expect: map[string]any{"glyph": "phi"}}, "node 1.glyph = phi"},
		{"unknown field", Assertion{Type: AssertNode, Node: 1, Expect: map[string]any{"colour": "red"}}, "unknown field"},
		{"missing line", Assertion{Type: AssertLine, Line: 42}, "no such line"},
		{"line field", Assertion{Type: AssertLine, Line: 3, Expect: map[string]any{"to": 2}}, "Actual: 4"},
		{"cursor", Assertion{Type: AssertCursor, Expect: map[string]any{"aura": "square"}}, "cursor.aura = square"},
		{"effects", Assertion{Type: AssertEffectCount, Effect: "destroy", Count: ptr(1)}, "1 destroy effects"},
		{"unknown type", Assertion{Type: "vibes"}, "unknown assertion type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(result, []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.contains)
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	result := pentagonResult(t)
	errs := EvaluateAssertions(result, []Assertion{{Type: AssertSolved, Value: ptr(true)}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Full trace:")
	assert.Contains(t, errs[0], "1 move 0.75,0 ok end=0.25,-1")
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(1.0, 1))
	assert.True(t, valuesEqual(0.1+0.2, 0.3))
	assert.False(t, valuesEqual(1.0, "1"))
	assert.True(t, valuesEqual("exiting", "exiting"))
	assert.True(t, valuesEqual(true, true))
	assert.False(t, valuesEqual(true, []any{true}))
}
