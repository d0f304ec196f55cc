package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/render"
	"github.com/roach88/sigil/internal/testutil"
)

func TestRasterise(t *testing.T) {
	a := Rasterise()
	assert.Equal(t, 2*cell, a.Orb.Bounds().Dx())
	assert.Equal(t, 5*cell, a.Orb.Bounds().Dy())
	assert.Equal(t, 4*cell, a.Glyph.Bounds().Dx())

	// Cell centres: hollow when inactive, filled when active.
	for row := 0; row < 5; row++ {
		cy := row*cell + cell/2
		assert.Zero(t, a.Orb.RGBAAt(cell/2, cy).A, "row %d inactive centre", row)
		assert.Equal(t, uint8(255), a.Orb.RGBAAt(cell+cell/2, cy).A, "row %d active centre", row)
	}

	// Alpha is a dot, sigma a ring.
	assert.Equal(t, uint8(255), a.Glyph.RGBAAt(cell/2, cell/2).A)
	assert.Zero(t, a.Glyph.RGBAAt(cell+cell/2, cell/2).A)

	assert.Same(t, a.Line, a.Image(render.AtlasLine))
	assert.Same(t, a.Orb, a.Image(render.AtlasOrb))
}

func TestShapeMask(t *testing.T) {
	tri := shapeMask(graph.ShapeTriangle, 0.4)
	assert.True(t, tri(graph.Pt(0.5, 0.2)), "apex points up")
	assert.False(t, tri(graph.Pt(0.5, 0.92)))
	circle := shapeMask(graph.ShapeCircle, 0.4)
	assert.True(t, circle(graph.Pt(0.85, 0.5)))
	assert.False(t, circle(graph.Pt(0.95, 0.5)))
}

func TestBatches(t *testing.T) {
	s := testutil.NewSession(t, "severance.toml")

	frame, err := render.Build(s.Snapshot(), render.Viewport{HalfWidth: 4, HalfHeight: 4})
	require.NoError(t, err)

	atlases := Rasterise()
	batches := Batches(frame, 800, 600, atlases)

	// line | orbs | glyphs | cursor (orb atlas)
	require.Len(t, batches, 4)
	assert.Equal(t, render.AtlasLine, batches[0].Atlas)
	assert.Equal(t, render.AtlasOrb, batches[1].Atlas)
	assert.Equal(t, render.AtlasGlyph, batches[2].Atlas)
	assert.Equal(t, render.AtlasOrb, batches[3].Atlas)
	assert.Len(t, batches[1].Vertices, 8)
	assert.Len(t, batches[1].Indices, 12)

	// Node 1 sits at the centre; its bottom-left corner is 0.4 units off.
	v := batches[1].Vertices[0]
	assert.InDelta(t, 400-0.1*400, v.DstX, 1e-3)
	assert.InDelta(t, 300+0.1*300, v.DstY, 1e-3)
	assert.InDelta(t, 0.5*float32(2*cell), v.SrcX, 1e-3)
	assert.InDelta(t, 0.2*float32(5*cell), v.SrcY, 1e-3)
	assert.Equal(t, render.DefaultPalette.Orb[0], v.ColorR)
}
