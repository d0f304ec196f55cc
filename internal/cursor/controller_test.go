package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/rules"
)

type fixture struct {
	store *graph.Store
	ctl   *Controller
}

func (f fixture) node(t *testing.T, shape graph.Shape, x, y float64) graph.NodeID {
	t.Helper()
	id, err := f.store.AddNode(graph.Node{Shape: shape, Position: graph.Pt(x, y)})
	require.NoError(t, err)
	return id
}

func (f fixture) connect(t *testing.T, from, to graph.NodeID) graph.LineID {
	t.Helper()
	id, err := f.store.Connect(from, to)
	require.NoError(t, err)
	return id
}

func newFixture(t *testing.T, aura rules.Aura, x, y float64, opts ...Option) fixture {
	t.Helper()
	s := graph.New()
	ctl, err := New(s, rules.New(), Cursor{Aura: aura, Position: graph.Pt(x, y)}, opts...)
	require.NoError(t, err)
	return fixture{store: s, ctl: ctl}
}

func TestMove_SingleCrossing(t *testing.T) {
	f := newFixture(t, rules.AuraSquare, -1, 0)
	a := f.node(t, graph.ShapeCircle, 0, -1)
	b := f.node(t, graph.ShapeCircle, 0, 1)
	l := f.connect(t, a, b)

	step, err := f.ctl.Move(graph.Pt(2, 0))
	require.NoError(t, err)

	require.Len(t, step.Hits, 1)
	x := step.Hits[0].Crossing
	assert.Equal(t, l, x.Line)
	assert.Equal(t, a, x.Node, "equidistant endpoints resolve to the lower id")
	assert.InDelta(t, 0.5, x.T, 1e-9)
	assert.True(t, x.Point.Near(graph.Pt(0, 0)))

	n, _ := f.store.Node(a)
	assert.True(t, n.RuneActive)
	assert.Equal(t, graph.Pt(1, 0), f.ctl.Cursor().Position)
	assert.False(t, step.Stopped)
}

func TestMove_AffectsNearerEndpoint(t *testing.T) {
	f := newFixture(t, rules.AuraSquare, -1, 1)
	a := f.node(t, graph.ShapeCircle, 0, -1)
	b := f.node(t, graph.ShapeCircle, 0, 2)
	f.connect(t, a, b)

	step, err := f.ctl.Move(graph.Pt(2, 0))
	require.NoError(t, err)
	require.Len(t, step.Hits, 1)
	assert.Equal(t, b, step.Hits[0].Crossing.Node)
}

func TestMove_NearestFirst(t *testing.T) {
	f := newFixture(t, rules.AuraSquare, 0, 0)
	// Created far line first so ids disagree with distance.
	far := f.connect(t, f.node(t, graph.ShapeCircle, 3, -1), f.node(t, graph.ShapeCircle, 3, 1))
	near := f.connect(t, f.node(t, graph.ShapeCircle, 1, -1), f.node(t, graph.ShapeCircle, 1, 1))

	step, err := f.ctl.Move(graph.Pt(4, 0))
	require.NoError(t, err)
	require.Len(t, step.Hits, 2)
	assert.Equal(t, near, step.Hits[0].Crossing.Line)
	assert.Equal(t, far, step.Hits[1].Crossing.Line)
}

func TestMove_TieBrokenByLineID(t *testing.T) {
	f := newFixture(t, rules.AuraSquare, 0, 0)
	first := f.connect(t, f.node(t, graph.ShapeCircle, 1, -1), f.node(t, graph.ShapeCircle, 1, 1))
	second := f.connect(t, f.node(t, graph.ShapeCircle, 0.5, -1), f.node(t, graph.ShapeCircle, 1.5, 1))

	xs := f.ctl.Crossings(graph.Pt(2, 0))
	require.Len(t, xs, 2)
	assert.Equal(t, first, xs[0].Line)
	assert.Equal(t, second, xs[1].Line)

	step, err := f.ctl.Move(graph.Pt(2, 0))
	require.NoError(t, err)
	require.Len(t, step.Hits, 2)
	assert.Equal(t, first, step.Hits[0].Crossing.Line)
	assert.Equal(t, second, step.Hits[1].Crossing.Line)
}

func TestMove_TriangleRejectionStopsCursor(t *testing.T) {
	f := newFixture(t, rules.AuraSquare, -1, -0.5)
	tri := f.node(t, graph.ShapeTriangle, 0, -1)
	top := f.node(t, graph.ShapeCircle, 0, 1)
	in := f.connect(t, top, tri)
	beyond := f.connect(t, f.node(t, graph.ShapeCircle, 0.5, -2), f.node(t, graph.ShapeCircle, 0.5, 2))

	step, err := f.ctl.Move(graph.Pt(2, 0))
	require.NoError(t, err)

	assert.True(t, step.Stopped)
	require.Len(t, step.Hits, 1)
	assert.True(t, step.Hits[0].Outcome.Rejected)
	assert.True(t, step.End.Near(graph.Pt(0, -0.5)))
	assert.Equal(t, step.End, f.ctl.Cursor().Position)

	_, ok := f.store.Line(in)
	assert.False(t, ok, "rejected line is removed")
	_, ok = f.store.Line(beyond)
	assert.True(t, ok, "lines past the stop are not reached")
	n, _ := f.store.Node(tri)
	assert.False(t, n.RuneActive)
}

func TestMove_RecomputesAfterMutation(t *testing.T) {
	f := newFixture(t, rules.AuraTriangle, 0, 0)
	a := f.node(t, graph.ShapeCircle, 1, -1)
	b := f.node(t, graph.ShapeCircle, 1, 2)
	c := f.node(t, graph.ShapeCircle, 3, 1)
	f.connect(t, a, b)
	f.connect(t, a, c)

	require.Len(t, f.ctl.Crossings(graph.Pt(4, 0)), 2)

	step, err := f.ctl.Move(graph.Pt(4, 0))
	require.NoError(t, err)

	// Destroying a removes the second line before the cursor reaches it.
	require.Len(t, step.Hits, 1)
	assert.Equal(t, a, step.Hits[0].Crossing.Node)
	assert.Equal(t, 0, f.store.LineCount())
	_, ok := f.store.Node(a)
	assert.False(t, ok)
}

func TestMove_RestingOnLineDoesNotCollide(t *testing.T) {
	f := newFixture(t, rules.AuraSquare, 0, 0)
	f.connect(t, f.node(t, graph.ShapeCircle, 0, -1), f.node(t, graph.ShapeCircle, 0, 1))

	step, err := f.ctl.Move(graph.Pt(1, 0))
	require.NoError(t, err)
	assert.Empty(t, step.Hits)
}

func TestMove_ZeroDelta(t *testing.T) {
	f := newFixture(t, rules.AuraSquare, 0, 0)
	step, err := f.ctl.Move(graph.Pt(0, 0))
	require.NoError(t, err)
	assert.Empty(t, step.Hits)
	assert.Equal(t, graph.Pt(0, 0), step.End)
}

func TestMove_ErrorRestoresState(t *testing.T) {
	t.Run("rule conflict", func(t *testing.T) {
		f := newFixture(t, rules.AuraTriangle, 0, 0)
		hex := f.node(t, graph.ShapeHexagon, 1, -1)
		f.connect(t, f.node(t, graph.ShapeCircle, -3, -1), hex)
		f.connect(t, hex, f.node(t, graph.ShapeCircle, 1, 2))
		before := f.store.LevelData()

		_, err := f.ctl.Move(graph.Pt(2, 0))
		require.Error(t, err)
		assert.True(t, rules.IsRuleConflict(err))
		assert.Equal(t, before, f.store.LevelData())
		assert.Equal(t, graph.Pt(0, 0), f.ctl.Cursor().Position)
	})

	t.Run("collision budget", func(t *testing.T) {
		f := newFixture(t, rules.AuraSquare, 0, 0, WithMaxCollisions(1))
		f.connect(t, f.node(t, graph.ShapeCircle, 1, -1), f.node(t, graph.ShapeCircle, 1, 1))
		f.connect(t, f.node(t, graph.ShapeCircle, 2, -1), f.node(t, graph.ShapeCircle, 2, 1))
		before := f.store.LevelData()

		_, err := f.ctl.Move(graph.Pt(3, 0))
		require.Error(t, err)
		assert.True(t, IsCollisionsExceeded(err))
		assert.Equal(t, before, f.store.LevelData(), "toggle from the first hit is undone")
		assert.Equal(t, graph.Pt(0, 0), f.ctl.Cursor().Position)
	})
}

func TestSelectAura(t *testing.T) {
	f := newFixture(t, rules.AuraCircle, 2, 3)

	require.NoError(t, f.ctl.SelectAura(rules.AuraTriangle))
	assert.Equal(t, Cursor{Aura: rules.AuraTriangle, Position: graph.Pt(2, 3)}, f.ctl.Cursor())

	assert.Error(t, f.ctl.SelectAura(rules.Aura(9)))
	assert.Equal(t, rules.AuraTriangle, f.ctl.Cursor().Aura)
}

func TestNew_Validates(t *testing.T) {
	_, err := New(graph.New(), rules.New(), Cursor{})
	assert.Error(t, err)
	_, err = New(nil, rules.New(), Cursor{Aura: rules.AuraCircle})
	assert.Error(t, err)
}

func TestBudget(t *testing.T) {
	b := NewBudget(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Check(), "collision %d", i+1)
	}
	err := b.Check()
	require.Error(t, err)

	var ce *CollisionsExceededError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 4, ce.Collisions)
	assert.Equal(t, 3, ce.Limit)
	assert.Equal(t, 4, b.Current())
	assert.Equal(t, 3, b.Max())
}
