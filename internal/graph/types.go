package graph

import (
	"fmt"
	"strings"
)

// NodeID identifies a sigil for the lifetime of a level.
type NodeID int64

// LineID identifies a line for the lifetime of a level.
type LineID int64

// Shape is the fixed outline of a sigil. The set is closed.
type Shape int

const (
	ShapeCircle Shape = iota + 1
	ShapeTriangle
	ShapeSquare
	ShapePentagon
	ShapeHexagon
)

var shapeNames = map[Shape]string{
	ShapeCircle:   "circle",
	ShapeTriangle: "triangle",
	ShapeSquare:   "square",
	ShapePentagon: "pentagon",
	ShapeHexagon:  "hexagon",
}

// Shapes lists every shape in declaration order.
var Shapes = []Shape{ShapeCircle, ShapeTriangle, ShapeSquare, ShapePentagon, ShapeHexagon}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// Valid reports whether s is one of the five shapes.
func (s Shape) Valid() bool {
	_, ok := shapeNames[s]
	return ok
}

// Directional reports whether lines at this shape have entry/exit meaning.
func (s Shape) Directional() bool {
	return s == ShapeTriangle || s == ShapePentagon || s == ShapeHexagon
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid shape %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(text []byte) error {
	parsed, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseShape parses a shape name, ignoring case.
func ParseShape(name string) (Shape, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, s := range Shapes {
		if shapeNames[s] == want {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", name)
}

// Glyph is the rune drawn inside a sigil. Each glyph names a structural
// condition; an active rune asks for its condition to hold.
type Glyph int

const (
	GlyphNone  Glyph = iota
	GlyphAlpha       // connected to at least one line
	GlyphSigma       // part of a loop
	GlyphDelta       // enclosed by a loop
	GlyphPhi         // not connected to any line
)

var glyphNames = map[Glyph]string{
	GlyphNone:  "none",
	GlyphAlpha: "alpha",
	GlyphSigma: "sigma",
	GlyphDelta: "delta",
	GlyphPhi:   "phi",
}

func (g Glyph) String() string {
	if name, ok := glyphNames[g]; ok {
		return name
	}
	return fmt.Sprintf("glyph(%d)", int(g))
}

// MarshalText implements encoding.TextMarshaler.
func (g Glyph) MarshalText() ([]byte, error) {
	if _, ok := glyphNames[g]; !ok {
		return nil, fmt.Errorf("invalid glyph %d", int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Glyph) UnmarshalText(text []byte) error {
	parsed, err := ParseGlyph(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseGlyph parses a glyph name, ignoring case. The empty string is GlyphNone.
func ParseGlyph(name string) (Glyph, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return GlyphNone, nil
	}
	for g, n := range glyphNames {
		if n == want {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown glyph %q", name)
}

// Direction is the role a line plays at one of its endpoints.
type Direction int

const (
	Entering Direction = iota + 1
	Exiting
)

func (d Direction) String() string {
	switch d {
	case Entering:
		return "entering"
	case Exiting:
		return "exiting"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Entering {
		return Exiting
	}
	return Entering
}

// Node is a sigil. Shape and Position never change after placement.
type Node struct {
	ID         NodeID
	Shape      Shape
	Glyph      Glyph
	RuneActive bool
	Position   Point

	// Selected is owned by external input; rules only read it.
	Selected bool
}

// Line joins two distinct nodes.
type Line struct {
	ID   LineID
	From NodeID
	To   NodeID

	// FromFlipped and ToFlipped invert the direction at that endpoint.
	FromFlipped bool
	ToFlipped   bool
}

// Has reports whether n is an endpoint of l.
func (l Line) Has(n NodeID) bool {
	return l.From == n || l.To == n
}

// Other returns the endpoint opposite n. n must be an endpoint.
func (l Line) Other(n NodeID) NodeID {
	if l.From == n {
		return l.To
	}
	return l.From
}

// DirectionAt returns the line's direction at endpoint n.
// ok is false when n is not an endpoint.
func (l Line) DirectionAt(n NodeID) (dir Direction, ok bool) {
	switch n {
	case l.From:
		dir = Exiting
		if l.FromFlipped {
			dir = Entering
		}
		return dir, true
	case l.To:
		dir = Entering
		if l.ToFlipped {
			dir = Exiting
		}
		return dir, true
	}
	return 0, false
}
