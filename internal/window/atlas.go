package window

import (
	"image"
	"image/color"
	"math"

	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/render"
)

// Atlas cell size in pixels.
const cell = 128

// Atlases holds the three rasterised textures.
type Atlases struct {
	Orb   *image.RGBA
	Glyph *image.RGBA
	Line  *image.RGBA
}

// Rasterise draws every atlas. Shapes are white so vertex colours tint them.
func Rasterise() Atlases {
	return Atlases{
		Orb:   orbAtlas(),
		Glyph: glyphAtlas(),
		Line:  lineAtlas(),
	}
}

// Image returns the atlas a quad samples.
func (a Atlases) Image(atlas render.Atlas) *image.RGBA {
	switch atlas {
	case render.AtlasOrb:
		return a.Orb
	case render.AtlasGlyph:
		return a.Glyph
	default:
		return a.Line
	}
}

var shapeSides = map[graph.Shape]int{
	graph.ShapeTriangle: 3,
	graph.ShapeSquare:   4,
	graph.ShapePentagon: 5,
	graph.ShapeHexagon:  6,
}

// orbAtlas lays shapes out to match render.OrbRect: two columns, five
// rows, inactive shapes as outlines and active ones filled.
func orbAtlas() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2*cell, 5*cell))
	for _, shape := range []graph.Shape{
		graph.ShapeCircle, graph.ShapeTriangle, graph.ShapeSquare,
		graph.ShapePentagon, graph.ShapeHexagon,
	} {
		for _, active := range []bool{false, true} {
			r := render.OrbRect(shape, active)
			ox := int(math.Round(float64(r.X) * float64(img.Bounds().Dx())))
			oy := int(math.Round(float64(r.Y) * float64(img.Bounds().Dy())))
			inside := shapeMask(shape, 0.42)
			hole := shapeMask(shape, 0.32)
			fill(img, ox, oy, func(p graph.Point) bool {
				return inside(p) && (active || !hole(p))
			})
		}
	}
	return img
}

// shapeMask returns a membership test for a shape of the given radius
// centred in a unit cell.
func shapeMask(shape graph.Shape, radius float64) func(graph.Point) bool {
	centre := graph.Pt(0.5, 0.5)
	sides, ok := shapeSides[shape]
	if !ok {
		return func(p graph.Point) bool { return p.Dist(centre) <= radius }
	}
	poly := make([]graph.Point, sides)
	for i := range poly {
		// Start at the top so triangles point up.
		a := math.Pi/2 + 2*math.Pi*float64(i)/float64(sides)
		if sides == 4 {
			a += math.Pi / 4
		}
		poly[i] = centre.Add(graph.Pt(math.Cos(a), -math.Sin(a)).Scale(radius))
	}
	return func(p graph.Point) bool { return graph.PointInPolygon(p, poly) }
}

// glyphAtlas draws the four rune marks left to right: alpha, sigma, delta
// and phi.
func glyphAtlas() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4*cell, cell))
	centre := graph.Pt(0.5, 0.5)
	ring := func(p graph.Point) bool {
		d := p.Dist(centre)
		return d <= 0.4 && d >= 0.3
	}
	marks := []func(graph.Point) bool{
		// alpha: a solid dot
		func(p graph.Point) bool { return p.Dist(centre) <= 0.2 },
		// sigma: a ring
		ring,
		// delta: a hollow triangle
		func(p graph.Point) bool {
			return shapeMask(graph.ShapeTriangle, 0.42)(p) && !shapeMask(graph.ShapeTriangle, 0.26)(p)
		},
		// phi: a ring crossed by a bar
		func(p graph.Point) bool { return ring(p) || (math.Abs(p.X-0.5) <= 0.05 && math.Abs(p.Y-0.5) <= 0.45) },
	}
	for i, mark := range marks {
		fill(img, i*cell, 0, mark)
	}
	return img
}

// lineAtlas is a single strip whose alpha ramps along u, so scrolling u
// shows the flow of a line.
func lineAtlas() *image.RGBA {
	const w, h = 64, 16
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		a := uint8(128 + 127*x/(w-1))
		for y := 0; y < h; y++ {
			edge := math.Abs(float64(y)+0.5-h/2) / (h / 2)
			img.SetRGBA(x, y, premultiplied(a, 1-edge*edge))
		}
	}
	return img
}

// fill sets every pixel of the cell at (ox, oy) whose centre passes in.
func fill(img *image.RGBA, ox, oy int, in func(graph.Point) bool) {
	for y := 0; y < cell; y++ {
		for x := 0; x < cell; x++ {
			p := graph.Pt((float64(x)+0.5)/cell, (float64(y)+0.5)/cell)
			if in(p) {
				img.SetRGBA(ox+x, oy+y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}
}

func premultiplied(a uint8, k float64) color.RGBA {
	v := uint8(float64(a) * k)
	return color.RGBA{R: v, G: v, B: v, A: v}
}
