package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/journal"
)

func load(t *testing.T, file string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join(scenariosDir, file))
	require.NoError(t, err)
	return s
}

func TestScenarios(t *testing.T) {
	files, err := Discover(scenariosDir, "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)

			result, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.True(t, result.Replayed)
		})
	}
}

func TestRun_Trace(t *testing.T) {
	result, err := Run(context.Background(), load(t, "severance.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "scenario-severance", result.SessionID)
	assert.Equal(t, "severance", result.Level)
	require.Len(t, result.Trace, 4)

	mv := result.Trace[0]
	assert.Equal(t, int64(1), mv.Seq)
	assert.Equal(t, KindMove, mv.Kind)
	assert.Equal(t, "0,2", mv.Args)
	assert.Equal(t, OutcomeOK, mv.Outcome)
	require.NotNil(t, mv.End)
	assert.Equal(t, graph.Pt(2, 1), *mv.End)
	require.Len(t, mv.Hits, 1)
	assert.Equal(t, []string{"destroy node=2", "disconnect line=1 node=2"}, mv.Hits[0].Effects)

	assert.Equal(t, "circle", result.Trace[1].Args)
	assert.Equal(t, "1 on", result.Trace[2].Args)
	assert.Equal(t, int64(4), result.Trace[3].Seq)

	assert.Equal(t, 1, result.EffectCount("destroy"))
	assert.Equal(t, 0, result.EffectCount("clone"))
	assert.NotEmpty(t, result.FinalHash)
}

func TestRun_Refusal(t *testing.T) {
	result, err := Run(context.Background(), load(t, "hexagon_budget.yaml"))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	ev := result.Trace[0]
	assert.Equal(t, OutcomeRefused, ev.Outcome)
	assert.Equal(t, CodeCollisionBudget, ev.Code)
	assert.Equal(t, int64(0), ev.Seq, "refused steps do not advance seq")
	assert.Nil(t, ev.End)

	assert.Equal(t, OutcomeNoop, result.Trace[2].Outcome)
}

func TestRun_UnexpectedRefusalFails(t *testing.T) {
	s := load(t, "hexagon_budget.yaml")
	s.Steps[0].Expect = nil

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "steps[0] move: unexpectedly refused")
}

func TestRun_FailedExpectations(t *testing.T) {
	s := load(t, "severance.yaml")
	hits, stopped := 3, true
	s.Steps[0].Expect = &StepExpect{
		Hits:    &hits,
		Stopped: &stopped,
		Effects: map[string]int{"clone": 1},
		Error:   CodeRuleConflict,
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors, `steps[0] move: expected refusal "rule_conflict", got "none"`)
	assert.Contains(t, result.Errors, "steps[0] move: expected 3 hits, got 1")
	assert.Contains(t, result.Errors, "steps[0] move: expected stopped=true, got false")
	assert.Contains(t, result.Errors, "steps[0] move: expected 1 clone effects, got 0")
}

func TestRun_PureDriver(t *testing.T) {
	result, err := Run(context.Background(), load(t, "triangle.yaml"), WithDriver(journal.DriverPure))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.True(t, result.Replayed)
}

func TestRun_BadDriver(t *testing.T) {
	_, err := Run(context.Background(), load(t, "triangle.yaml"), WithDriver("postgres"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in-memory journal")
}

func TestErrorCode(t *testing.T) {
	assert.Empty(t, ErrorCode(nil))
	assert.Empty(t, ErrorCode(assert.AnError))
	assert.True(t, knownCode(CodeInvalidNode))
	assert.False(t, knownCode("nope"))
}
