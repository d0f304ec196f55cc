package render

import (
	"math"

	"github.com/roach88/sigil/internal/engine"
	"github.com/roach88/sigil/internal/graph"
)

// Sizes in world units.
const (
	NodeSize   = 0.8
	GlyphSize  = 0.45
	CursorSize = 0.5
	LineWidth  = 0.15

	// LineRepeat is how many world units one copy of the line texture
	// spans along a line.
	LineRepeat = 0.8
)

// Color is straight RGBA in [0, 1].
type Color [4]float32

// Palette holds every colour Build uses.
type Palette struct {
	Line          Color
	LineEntering  Color
	LineExiting   Color
	Orb           Color
	OrbSelected   Color
	GlyphInactive Color
	GlyphMet      Color
	GlyphUnmet    Color
	Cursor        Color
	Solved        Color
}

// DefaultPalette is used unless WithPalette overrides it.
var DefaultPalette = Palette{
	Line:          Color{0.55, 0.55, 0.6, 1},
	LineEntering:  Color{0.95, 0.75, 0.3, 1},
	LineExiting:   Color{0.35, 0.6, 0.95, 1},
	Orb:           Color{1, 1, 1, 1},
	OrbSelected:   Color{1, 0.9, 0.5, 1},
	GlyphInactive: Color{0.4, 0.4, 0.45, 1},
	GlyphMet:      Color{0.45, 0.95, 0.55, 1},
	GlyphUnmet:    Color{0.95, 0.4, 0.4, 1},
	Cursor:        Color{0.85, 0.7, 1, 0.9},
	Solved:        Color{0.6, 1, 0.7, 1},
}

// Layer orders quads back to front.
type Layer int

const (
	LayerLines Layer = iota
	LayerOrbs
	LayerGlyphs
	LayerCursor
)

// Vertex is one corner of a quad.
type Vertex struct {
	X, Y  float32 // clip space
	U, V  float32 // atlas coordinates
	Color Color
}

// Quad is four vertices, counter-clockwise from the bottom left of the
// unrotated sprite.
type Quad struct {
	Layer    Layer
	Atlas    Atlas
	Vertices [4]Vertex
}

// Frame is everything needed to draw one snapshot.
type Frame struct {
	Viewport Viewport
	Quads    []Quad
}

// Option configures Build.
type Option func(*builder)

// WithPalette replaces the colours.
func WithPalette(p Palette) Option {
	return func(b *builder) {
		b.palette = p
	}
}

// WithTime scrolls the line texture; t is in seconds.
func WithTime(t float64) Option {
	return func(b *builder) {
		b.time = t
	}
}

type builder struct {
	vp      Viewport
	palette Palette
	time    float64
	quads   []Quad
}

// Build lays out snap in vp. Quads come out in layer order, each layer in
// node or line id order.
func Build(snap engine.Snapshot, vp Viewport, opts ...Option) (Frame, error) {
	if err := vp.Validate(); err != nil {
		return Frame{}, err
	}
	b := &builder{vp: vp, palette: DefaultPalette}
	for _, opt := range opts {
		opt(b)
	}

	pos := make(map[graph.NodeID]graph.Point, len(snap.Nodes))
	for _, n := range snap.Nodes {
		pos[n.ID] = n.Position
	}
	for _, l := range snap.Lines {
		b.line(l, pos[l.From], pos[l.To])
	}
	for _, n := range snap.Nodes {
		b.orb(n)
	}
	for _, n := range snap.Nodes {
		b.glyph(n, snap.Solved)
	}
	b.sprite(LayerCursor, AtlasOrb, snap.Cursor.Position, CursorSize, CursorRect(snap.Cursor.Aura), b.palette.Cursor)

	return Frame{Viewport: vp, Quads: b.quads}, nil
}

func (b *builder) line(l engine.LineView, a, c graph.Point) {
	d := c.Sub(a)
	length := math.Hypot(d.X, d.Y)
	if length == 0 {
		return
	}
	n := graph.Pt(-d.Y/length, d.X/length).Scale(LineWidth / 2)

	colA, colC := b.palette.Line, b.palette.Line
	if l.Directed {
		colA = b.directionColor(l.FromDirection)
		colC = b.directionColor(l.ToDirection)
	}

	u0 := float32(-b.time)
	u1 := u0 + float32(length/LineRepeat)
	corners := [4]graph.Point{a.Sub(n), c.Sub(n), c.Add(n), a.Add(n)}
	uvs := [4][2]float32{{u0, 0}, {u1, 0}, {u1, 1}, {u0, 1}}
	cols := [4]Color{colA, colC, colC, colA}

	q := Quad{Layer: LayerLines, Atlas: AtlasLine}
	for i, p := range corners {
		x, y := b.vp.ToClip(p)
		q.Vertices[i] = Vertex{X: x, Y: y, U: uvs[i][0], V: uvs[i][1], Color: cols[i]}
	}
	b.quads = append(b.quads, q)
}

func (b *builder) directionColor(dir string) Color {
	switch dir {
	case graph.Entering.String():
		return b.palette.LineEntering
	case graph.Exiting.String():
		return b.palette.LineExiting
	default:
		return b.palette.Line
	}
}

func (b *builder) orb(n engine.NodeView) {
	col := b.palette.Orb
	if n.Selected {
		col = b.palette.OrbSelected
	}
	b.sprite(LayerOrbs, AtlasOrb, n.Position, NodeSize, OrbRect(n.Shape, n.RuneActive), col)
}

func (b *builder) glyph(n engine.NodeView, solved bool) {
	r, ok := GlyphRect(n.Glyph)
	if !ok {
		return
	}
	col := b.palette.GlyphInactive
	switch {
	case solved:
		col = b.palette.Solved
	case !n.RuneActive:
	case n.Satisfied:
		col = b.palette.GlyphMet
	default:
		col = b.palette.GlyphUnmet
	}
	b.sprite(LayerGlyphs, AtlasGlyph, n.Position, GlyphSize, r, col)
}

// sprite appends an axis-aligned square of side size centred on p.
func (b *builder) sprite(layer Layer, atlas Atlas, p graph.Point, size float64, r Rect, col Color) {
	h := size / 2
	corners := [4]graph.Point{
		p.Add(graph.Pt(-h, -h)),
		p.Add(graph.Pt(h, -h)),
		p.Add(graph.Pt(h, h)),
		p.Add(graph.Pt(-h, h)),
	}
	// Texture v grows downward, so the bottom of the sprite samples Y+Height.
	uvs := [4][2]float32{
		{r.X, r.Y + r.Height},
		{r.X + r.Width, r.Y + r.Height},
		{r.X + r.Width, r.Y},
		{r.X, r.Y},
	}
	q := Quad{Layer: layer, Atlas: atlas}
	for i, c := range corners {
		x, y := b.vp.ToClip(c)
		q.Vertices[i] = Vertex{X: x, Y: y, U: uvs[i][0], V: uvs[i][1], Color: col}
	}
	b.quads = append(b.quads, q)
}

// Indices returns triangle indices for n quads, two triangles each, in the
// order Vertices produces them.
func Indices(n int) []uint16 {
	idx := make([]uint16, 0, n*6)
	for i := 0; i < n; i++ {
		base := uint16(i * 4)
		idx = append(idx, base, base+1, base+2, base, base+2, base+3)
	}
	return idx
}

// Vertices flattens the quads of one atlas, in frame order.
func (f Frame) Vertices(atlas Atlas) []Vertex {
	var out []Vertex
	for _, q := range f.Quads {
		if q.Atlas == atlas {
			out = append(out, q.Vertices[:]...)
		}
	}
	return out
}

// Count returns the number of quads in a layer.
func (f Frame) Count(layer Layer) int {
	n := 0
	for _, q := range f.Quads {
		if q.Layer == layer {
			n++
		}
	}
	return n
}
