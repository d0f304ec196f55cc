package render

import (
	"fmt"
	"math"

	"github.com/roach88/sigil/internal/engine"
	"github.com/roach88/sigil/internal/graph"
)

// Viewport maps a world rectangle onto clip space [-1, 1]². World y grows
// upward, as does clip y.
type Viewport struct {
	Center     graph.Point
	HalfWidth  float64
	HalfHeight float64
}

// Validate checks the viewport has a positive area.
func (v Viewport) Validate() error {
	if !(v.HalfWidth > 0) || !(v.HalfHeight > 0) {
		return fmt.Errorf("render: viewport extents must be positive, got %gx%g", v.HalfWidth, v.HalfHeight)
	}
	return nil
}

// ToClip maps a world point to clip space.
func (v Viewport) ToClip(p graph.Point) (x, y float32) {
	return float32((p.X - v.Center.X) / v.HalfWidth),
		float32((p.Y - v.Center.Y) / v.HalfHeight)
}

// FromClip maps a clip-space point back to the world.
func (v Viewport) FromClip(x, y float32) graph.Point {
	return graph.Pt(
		v.Center.X+float64(x)*v.HalfWidth,
		v.Center.Y+float64(y)*v.HalfHeight,
	)
}

// Fit returns the smallest viewport with the given width/height aspect
// that shows every node and the cursor, padded by margin world units.
func Fit(snap engine.Snapshot, aspect, margin float64) Viewport {
	if !(aspect > 0) {
		aspect = 1
	}
	minX, minY := snap.Cursor.Position.X, snap.Cursor.Position.Y
	maxX, maxY := minX, minY
	for _, n := range snap.Nodes {
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X)
		maxY = math.Max(maxY, n.Position.Y)
	}

	hw := (maxX-minX)/2 + margin
	hh := (maxY-minY)/2 + margin
	hw = math.Max(hw, NodeSize)
	hh = math.Max(hh, NodeSize)
	if hw/hh > aspect {
		hh = hw / aspect
	} else {
		hw = hh * aspect
	}
	return Viewport{
		Center:     graph.Pt((minX+maxX)/2, (minY+maxY)/2),
		HalfWidth:  hw,
		HalfHeight: hh,
	}
}
