package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squareLoop builds a 4-node loop around (1,1) plus a centre node (id 5)
// and a detached outsider (id 6).
//
//	1(0,0) -> 2(2,0)
//	^          |
//	4(0,2) <- 3(2,2)      5 at (1,1), 6 at (5,5)
func squareLoop(t *testing.T) *Store {
	t.Helper()
	s := New()
	positions := []Point{Pt(0, 0), Pt(2, 0), Pt(2, 2), Pt(0, 2), Pt(1, 1), Pt(5, 5)}
	for _, p := range positions {
		_, err := s.AddNode(Node{Shape: ShapeCircle, Position: p})
		require.NoError(t, err)
	}
	mustConnect(t, s, 1, 2)
	mustConnect(t, s, 2, 3)
	mustConnect(t, s, 3, 4)
	mustConnect(t, s, 4, 1)
	return s
}

func TestIsConnected(t *testing.T) {
	s := squareLoop(t)
	assert.True(t, s.IsConnected(1))
	assert.False(t, s.IsConnected(5))
	assert.False(t, s.IsConnected(99))
}

func TestIsLooped(t *testing.T) {
	s := squareLoop(t)
	for id := NodeID(1); id <= 4; id++ {
		assert.True(t, s.IsLooped(id), "node %d", id)
	}
	assert.False(t, s.IsLooped(5))

	// A tail hanging off the loop is not on it.
	mustConnect(t, s, 3, 6)
	assert.False(t, s.IsLooped(6))

	// Breaking the loop clears every member.
	id, ok := s.FindLine(4, 1)
	require.True(t, ok)
	require.NoError(t, s.Disconnect(id))
	for id := NodeID(1); id <= 4; id++ {
		assert.False(t, s.IsLooped(id), "node %d", id)
	}
}

func TestIsLooped_ParallelLines(t *testing.T) {
	s := newTestStore(t, ShapeCircle, ShapeCircle)
	mustConnect(t, s, 1, 2)
	assert.False(t, s.IsLooped(1))
	mustConnect(t, s, 2, 1)
	assert.True(t, s.IsLooped(1))
}

func TestLoops(t *testing.T) {
	s := squareLoop(t)
	loops, complete := s.Loops()
	require.True(t, complete)
	require.Len(t, loops, 1)
	assert.Equal(t, []NodeID{1, 2, 3, 4}, loops[0])

	// A chord splits the square into two triangles: three simple cycles.
	mustConnect(t, s, 1, 3)
	loops, complete = s.Loops()
	require.True(t, complete)
	assert.Len(t, loops, 3)
}

func TestLoops_Budget(t *testing.T) {
	s := squareLoop(t)
	mustConnect(t, s, 1, 3)
	s.SetLoopBudget(1)

	loops, complete := s.Loops()
	assert.False(t, complete)
	assert.Len(t, loops, 1)
}

func TestIsEnclosed(t *testing.T) {
	s := squareLoop(t)
	assert.True(t, s.IsEnclosed(5))
	assert.False(t, s.IsEnclosed(6))
	assert.False(t, s.IsEnclosed(1), "nodes on the loop are not enclosed by it")
	assert.Len(t, s.EnclosingLoops(5), 1)

	id, _ := s.FindLine(2, 3)
	require.NoError(t, s.Disconnect(id))
	assert.False(t, s.IsEnclosed(5), "open loops do not enclose")
}

func TestEnclosedImpliesLooped(t *testing.T) {
	s := squareLoop(t)
	mustConnect(t, s, 1, 3)
	for _, n := range s.Nodes() {
		for _, loop := range s.EnclosingLoops(n.ID) {
			for _, member := range loop {
				assert.True(t, s.IsLooped(member), "member %d of loop enclosing %d", member, n.ID)
			}
		}
	}
}

func TestSatisfied(t *testing.T) {
	s := New()
	add := func(glyph Glyph, p Point) NodeID {
		id, err := s.AddNode(Node{Shape: ShapeCircle, Glyph: glyph, Position: p})
		require.NoError(t, err)
		return id
	}
	a := add(GlyphAlpha, Pt(0, 0))
	b := add(GlyphSigma, Pt(4, 0))
	c := add(GlyphPhi, Pt(2, 4))
	d := add(GlyphDelta, Pt(2, 1))
	e := add(GlyphNone, Pt(9, 9))

	assert.False(t, s.Satisfied(a))
	assert.True(t, s.Satisfied(c))
	assert.True(t, s.Satisfied(e))

	mustConnect(t, s, a, b)
	mustConnect(t, s, b, c)
	assert.True(t, s.Satisfied(a))
	assert.False(t, s.Satisfied(b))
	assert.False(t, s.Satisfied(c))
	assert.False(t, s.Satisfied(d))

	mustConnect(t, s, c, a)
	assert.True(t, s.Satisfied(b))
	assert.True(t, s.Satisfied(d))
}
