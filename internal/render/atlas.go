package render

import (
	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/rules"
)

// Atlas names the texture a quad samples.
type Atlas int

const (
	AtlasLine Atlas = iota
	AtlasOrb
	AtlasGlyph
)

func (a Atlas) String() string {
	switch a {
	case AtlasLine:
		return "line"
	case AtlasOrb:
		return "orb"
	case AtlasGlyph:
		return "glyph"
	default:
		return "atlas(?)"
	}
}

// Rect is a region of an atlas in normalised texture coordinates. A
// negative Height samples the region upside down from Y.
type Rect struct {
	X, Y          float32
	Width, Height float32
}

// Orb atlas layout: two columns (inactive, active) by five shape rows.
const (
	orbCellWidth  = 0.5
	orbCellHeight = 0.2
)

var orbRows = map[graph.Shape]float32{
	graph.ShapeCircle:   0,
	graph.ShapeTriangle: 1,
	graph.ShapeSquare:   2,
	graph.ShapePentagon: 3,
	graph.ShapeHexagon:  4,
}

// OrbRect returns the atlas cell for a sigil of the given shape.
func OrbRect(shape graph.Shape, active bool) Rect {
	x := float32(0)
	if active {
		x = orbCellWidth
	}
	return Rect{
		X:      x,
		Y:      orbRows[shape] * orbCellHeight,
		Width:  orbCellWidth,
		Height: orbCellHeight,
	}
}

// The glyph atlas is stored bottom-up, hence the negative height.
var glyphColumns = map[graph.Glyph]float32{
	graph.GlyphAlpha: 0,
	graph.GlyphSigma: 0.25,
	graph.GlyphDelta: 0.5,
	graph.GlyphPhi:   0.75,
}

// GlyphRect returns the atlas cell for a glyph. ok is false for GlyphNone.
func GlyphRect(g graph.Glyph) (r Rect, ok bool) {
	x, ok := glyphColumns[g]
	if !ok {
		return Rect{}, false
	}
	return Rect{X: x, Y: 1, Width: 0.25, Height: -1}, true
}

// CursorRect returns the orb cell drawn for a cursor of aura a. Auras share
// rows with the shape of the same name and always use the active column.
func CursorRect(a rules.Aura) Rect {
	shape := graph.ShapeCircle
	switch a {
	case rules.AuraTriangle:
		shape = graph.ShapeTriangle
	case rules.AuraSquare:
		shape = graph.ShapeSquare
	}
	return OrbRect(shape, true)
}
